package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/logger"
	"storefront-api/internal/middleware"
	"storefront-api/internal/models"
)

// ErrorResponse es el cuerpo de todas las respuestas de error
type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// respondError traduce la taxonomía de apperrors a HTTP. Los 500 se
// registran con la causa y el cliente solo ve el mensaje genérico
func respondError(c *gin.Context, err error, fallback string) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error(fallback, zap.Error(err))
	}
	c.JSON(status, ErrorResponse{Error: apperrors.PublicMessage(err, fallback)})
}

// bindJSON responde 400 y devuelve false si el cuerpo no es válido
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: bindingMessage(err)})
		return false
	}
	return true
}

// queryInt devuelve 0 si el parámetro falta o no es numérico; los
// servicios aplican sus valores por defecto
func queryInt(c *gin.Context, key string) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return value
}

// currentUser falla con 401 si la ruta no pasó por Authenticate
func currentUser(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized access"})
		return nil, false
	}
	return user, true
}
