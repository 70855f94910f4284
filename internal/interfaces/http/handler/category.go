package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/pozinox/backend/internal/application/catalog"
	"github.com/pozinox/backend/internal/domain/shared"
	"github.com/pozinox/backend/internal/interfaces/http/dto"
)

// CategoryHandler handles category administration endpoints
type CategoryHandler struct {
	BaseHandler
	categoryService *catalogapp.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *catalogapp.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List lists all categories, active or not
func (h *CategoryHandler) List(c *gin.Context) {
	var filter catalogapp.CategoryListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	categories, total, err := h.categoryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, categories, total, filter.Page, filter.PageSize)
}

// Get returns a category by ID
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID format")
		return
	}
	category, err := h.categoryService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// Create godoc
// @Summary      Create a category
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateCategoryRequest true "Category"
// @Success      201 {object} APIResponse[catalogapp.CategoryResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req catalogapp.CreateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, category)
}

// Update applies a partial update to a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID format")
		return
	}
	var req catalogapp.UpdateCategoryRequest
	if !h.BindJSON(c, &req) {
		return
	}
	category, err := h.categoryService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, category)
}

// DeletePreview godoc
// @Summary      Preview a category deletion
// @Description  Reports how many products would be deleted along with the category
// @Tags         admin-categories
// @Produce      json
// @Param        id path string true "Category ID"
// @Success      200 {object} APIResponse[catalogapp.CategoryDeletion]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/categories/{id}/delete-preview [get]
func (h *CategoryHandler) DeletePreview(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID format")
		return
	}
	preview, err := h.categoryService.DeletePreview(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Delete godoc
// @Summary      Delete a category
// @Description  A category that still has products is only deleted with force=true; otherwise 409 with the product count
// @Tags         admin-categories
// @Produce      json
// @Param        id    path  string true  "Category ID"
// @Param        force query bool   false "Delete dependent products too"
// @Success      200 {object} APIResponse[catalogapp.CategoryDeletion]
// @Failure      409 {object} APIResponse[catalogapp.CategoryDeletion]
// @Security     BearerAuth
// @Router       /admin/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid category ID format")
		return
	}
	result, err := h.categoryService.Delete(c.Request.Context(), id, queryBool(c, "force"))
	if err != nil {
		var domainErr *shared.DomainError
		if result != nil && errors.As(err, &domainErr) {
			// keep the product count next to the error so the client can confirm
			resp := dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, getRequestID(c))
			resp.Data = result
			c.JSON(http.StatusConflict, resp)
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
