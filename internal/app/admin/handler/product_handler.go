package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"painelloja/internal/app/admin/config"
	"painelloja/internal/app/admin/entity"
	"painelloja/internal/app/admin/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ProductHandler handles the product HTTP endpoints. Create and
// update are multipart forms because they may carry an image file.
type ProductHandler struct {
	catalogService service.CatalogServiceInterface
	validator      *validator.Validate
	pagination     config.PaginationConfig
}

func NewProductHandler(catalogService service.CatalogServiceInterface, pagination config.PaginationConfig) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		validator:      validator.New(),
		pagination:     pagination,
	}
}

// Create handles POST /products (multipart form).
func (h *ProductHandler) Create(c *gin.Context) {
	req, image, ok := h.bindProductForm(c)
	if !ok {
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), req, image)
	if err != nil {
		h.respondProductError(c, err, "Failed to create product")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
	page, pageSize := parsePagination(c, h.pagination)

	resp, err := h.catalogService.ListProducts(c.Request.Context(), page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Update handles PUT /products/:id (multipart form).
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	createReq, image, ok := h.bindProductForm(c)
	if !ok {
		return
	}
	req := entity.UpdateProductRequest(*createReq)

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, &req, image)
	if err != nil {
		h.respondProductError(c, err, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Product deleted successfully"})
}

// bindProductForm reads the multipart fields and the optional image
// file, runs validation and writes the error response itself when
// something is off.
func (h *ProductHandler) bindProductForm(c *gin.Context) (*entity.CreateProductRequest, *entity.ImageUpload, bool) {
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return nil, nil, false
	}

	categoryID, err := uuid.Parse(c.PostForm("category_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category ID"})
		return nil, nil, false
	}

	req := &entity.CreateProductRequest{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
		Price:       price,
		CategoryID:  categoryID,
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return nil, nil, false
	}

	image, ok := h.readImage(c)
	if !ok {
		return nil, nil, false
	}

	return req, image, true
}

// readImage extracts the optional "image" file from the form. A
// missing file is fine; a broken upload is a 400.
func (h *ProductHandler) readImage(c *gin.Context) (*entity.ImageUpload, bool) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload"})
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image upload"})
		return nil, false
	}

	return &entity.ImageUpload{
		Data:        data,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}, true
}

func (h *ProductHandler) respondProductError(c *gin.Context, err error, generic string) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
	case errors.Is(err, service.ErrInvalidImageType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded file must be an image"})
	case errors.Is(err, service.ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Uploaded image exceeds the size limit"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": generic})
	}
}
