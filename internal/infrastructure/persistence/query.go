package persistence

import (
	"strings"

	"github.com/pozinox/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPagination applies offset and limit when the filter asks for a page
func applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// likePattern builds a case-insensitive substring pattern for LOWER(col) LIKE ?
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}
