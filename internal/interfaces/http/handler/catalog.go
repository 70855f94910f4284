package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/pozinox/backend/internal/application/catalog"
)

// CatalogHandler serves the public storefront catalog
type CatalogHandler struct {
	BaseHandler
	productService  *catalogapp.ProductService
	categoryService *catalogapp.CategoryService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(productService *catalogapp.ProductService, categoryService *catalogapp.CategoryService) *CatalogHandler {
	return &CatalogHandler{
		productService:  productService,
		categoryService: categoryService,
	}
}

// Home godoc
// @Summary      Storefront landing data
// @Description  Newest active products and a selection of active categories
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[catalogapp.HomeResponse]
// @Router       /catalog/home [get]
func (h *CatalogHandler) Home(c *gin.Context) {
	home, err := h.productService.Home(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, home)
}

// ListProducts godoc
// @Summary      Search the catalog
// @Description  Lists active products filtered by text, category and steel type
// @Tags         catalog
// @Produce      json
// @Param        search      query string false "Name, code or description"
// @Param        category_id query string false "Category ID"
// @Param        steel_type  query string false "stainless, carbon, galvanized or structural"
// @Param        page        query int    false "Page number" default(1)
// @Param        page_size   query int    false "Page size" default(20)
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	categoryID, ok := parseUUIDQuery(c, "category_id")
	if !ok {
		h.BadRequest(c, "Invalid category ID format")
		return
	}
	filter.CategoryID = categoryID

	products, total, err := h.productService.ListPublic(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// GetProduct godoc
// @Summary      Get a product
// @Description  Returns an active product; inactive products are not found
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Product ID"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	product, err := h.productService.GetActiveByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListCategories lists active categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var filter catalogapp.CategoryListFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	active := true
	filter.Active = &active

	categories, total, err := h.categoryService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, categories, total, filter.Page, filter.PageSize)
}
