package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/pozinox/backend/internal/domain/shared"
)

// MaxCategoryNameLength bounds category names
const MaxCategoryNameLength = 100

// Category groups steel products (plates, tubes, profiles...)
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
	Active      bool
}

// NewCategory creates a new active category
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	category := &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       description,
		Active:            true,
	}
	category.AddDomainEvent(NewCategoryCreatedEvent(category))

	return category, nil
}

// Update changes the category's name and description
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = name
	c.Description = description
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryUpdatedEvent(c))

	return nil
}

// SetActive toggles category visibility in the public catalog
func (c *Category) SetActive(active bool) {
	if c.Active == active {
		return
	}
	c.Active = active
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewCategoryUpdatedEvent(c))
}

// MarkDeleted records the deletion event before the repository removes the row
func (c *Category) MarkDeleted(productCount int64) {
	c.AddDomainEvent(NewCategoryDeletedEvent(c, productCount))
}

func validateCategoryName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxCategoryNameLength {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
