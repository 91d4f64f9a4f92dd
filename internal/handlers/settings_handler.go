package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/models"
)

type SettingsHandler struct {
	settings SettingsService
	images   ImageSaver
}

func NewSettingsHandler(settings SettingsService, images ImageSaver) *SettingsHandler {
	return &SettingsHandler{settings: settings, images: images}
}

// GET /api/portal-settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch portal settings")
		return
	}

	c.JSON(http.StatusOK, settings)
}

// PUT /api/portal-settings
func (h *SettingsHandler) Update(c *gin.Context) {
	var update models.PortalSettingsUpdate
	if !bindJSON(c, &update) {
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), update)
	if err != nil {
		respondError(c, err, "Failed to update portal settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portal settings updated successfully", "settings": settings})
}

// POST /api/portal-settings/upload-logo
func (h *SettingsHandler) UploadLogo(c *gin.Context) {
	header, err := c.FormFile("logo")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file uploaded"})
		return
	}

	filename, err := h.images.Save("logo", header)
	if err != nil {
		respondError(c, err, "Failed to upload logo")
		return
	}

	if _, err := h.settings.SetLogo(c.Request.Context(), filename); err != nil {
		respondError(c, err, "Failed to upload logo")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logo uploaded successfully", "logo": filename})
}

// POST /api/portal-settings/reset
func (h *SettingsHandler) Reset(c *gin.Context) {
	settings, err := h.settings.Reset(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to reset portal settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Portal settings reset to default", "settings": settings})
}
