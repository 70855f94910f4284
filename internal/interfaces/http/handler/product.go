package handler

import (
	"io"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/pozinox/backend/internal/application/catalog"
)

// ProductHandler handles product administration endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// List godoc
// @Summary      List products
// @Description  Lists all products including inactive ones
// @Tags         admin-products
// @Produce      json
// @Param        search      query string false "Name, code or description"
// @Param        category_id query string false "Category ID"
// @Param        steel_type  query string false "Steel type"
// @Param        active      query bool   false "Active flag"
// @Param        low_stock   query bool   false "Only products at or below minimum stock"
// @Success      200 {object} APIResponse[[]catalogapp.ProductResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [get]
func (h *ProductHandler) List(c *gin.Context) {
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

	products, total, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, products, total, filter.Page, filter.PageSize)
}

// Get returns a product by ID
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Create godoc
// @Summary      Create a product
// @Tags         admin-products
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateProductRequest true "Product"
// @Success      201 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update applies a partial update to a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	var req catalogapp.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}
	product, err := h.productService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete removes a product and its image
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// UploadImage godoc
// @Summary      Upload a product image
// @Description  Replaces the product image. Multipart field "image"; JPEG, PNG, WebP or GIF up to 5 MB.
// @Tags         admin-products
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     string true "Product ID"
// @Param        image formData file   true "Image file"
// @Success      200 {object} APIResponse[catalogapp.ProductResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/products/{id}/image [post]
func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	header, err := c.FormFile("image")
	if err != nil {
		h.BadRequest(c, "Missing image file")
		return
	}
	file, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable image file")
		return
	}
	defer file.Close()

	// one byte past the limit is enough for the size check
	data, err := io.ReadAll(io.LimitReader(file, catalogapp.MaxImageSize+1))
	if err != nil {
		h.BadRequest(c, "Unreadable image file")
		return
	}

	product, err := h.productService.UploadImage(c.Request.Context(), id, catalogapp.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// RemoveImage deletes the product image
func (h *ProductHandler) RemoveImage(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		h.BadRequest(c, "Invalid product ID format")
		return
	}
	product, err := h.productService.RemoveImage(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}
