package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

// ImageSaver guarda un archivo subido y devuelve el nombre con el que quedó
type ImageSaver interface {
	Save(field string, header *multipart.FileHeader) (string, error)
}

type ProductHandler struct {
	catalog CatalogService
	images  ImageSaver
}

func NewProductHandler(catalog CatalogService, images ImageSaver) *ProductHandler {
	return &ProductHandler{catalog: catalog, images: images}
}

func catalogParams(c *gin.Context) service.CatalogParams {
	return service.CatalogParams{
		Search: c.Query("search"),
		Sort:   c.Query("sort"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
		All:    c.Query("limit") == "all",
	}
}

// GET /api/products/public
func (h *ProductHandler) PublicProducts(c *gin.Context) {
	page, err := h.catalog.PublicProducts(c.Request.Context(), catalogParams(c))
	if err != nil {
		respondError(c, err, "Failed to fetch public products")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GET /api/products/recommendations
func (h *ProductHandler) Recommendations(c *gin.Context) {
	page, err := h.catalog.Recommendations(c.Request.Context(), catalogParams(c))
	if err != nil {
		respondError(c, err, "Failed to fetch recommended products")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GET /api/products
// Sin ?page devuelve el catálogo completo como arreglo
func (h *ProductHandler) ListProducts(c *gin.Context) {
	params := catalogParams(c)
	paginated := c.Query("page") != ""
	params.All = params.All || !paginated

	page, err := h.catalog.AdminProducts(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to fetch products")
		return
	}

	if !paginated {
		c.JSON(http.StatusOK, page.Products)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to fetch product")
		return
	}

	c.JSON(http.StatusOK, product)
}

// POST /api/products (JSON o multipart con "image")
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if !h.bind(c, &input) {
		return
	}

	image, ok := h.saveImage(c)
	if !ok {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), input, image)
	if err != nil {
		respondError(c, err, "Product creation failed")
		return
	}

	c.JSON(http.StatusCreated, product)
}

// PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var update models.ProductUpdate
	if !h.bind(c, &update) {
		return
	}

	image, ok := h.saveImage(c)
	if !ok {
		return
	}
	if image != "" {
		update.Image = &image
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err, "Product update failed")
		return
	}

	c.JSON(http.StatusOK, product)
}

// DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Product deletion failed")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted"})
}

// --- Métodos auxiliares ---

// bind acepta tanto JSON como formularios multipart
func (h *ProductHandler) bind(c *gin.Context, target any) bool {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return bindJSON(c, target)
	}
	if err := c.ShouldBind(target); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingMessage(err)})
		return false
	}
	return true
}

// saveImage devuelve "" si el request no trae archivo
func (h *ProductHandler) saveImage(c *gin.Context) (string, bool) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return "", true
	}

	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid image upload"})
		return "", false
	}

	name, err := h.images.Save("image", header)
	if err != nil {
		respondError(c, err, "Failed to save image")
		return "", false
	}
	return name, true
}
