package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/auth"
	"storefront-api/internal/logger"
	"storefront-api/internal/models"
)

const principalKey = "principal"

// Authenticator resuelve un bearer token al usuario autenticado
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
}

// Authenticate exige un bearer token válido y guarda el Principal en el contexto
func Authenticate(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access. Token invalid or missing."})
			return
		}

		principal, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := apperrors.HTTPStatus(err)
			if status == http.StatusInternalServerError {
				logger.FromContext(c.Request.Context()).Error("authentication failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(status, gin.H{"error": apperrors.PublicMessage(err, "Internal server error")})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// Require corta con 403 si el rol del usuario no concede la capacidad
func Require(capability auth.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized access"})
			return
		}
		if !principal.Can(capability) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

func GetPrincipal(c *gin.Context) (*auth.Principal, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*auth.Principal)
	return principal, ok && principal != nil
}

// CurrentUser asume que Authenticate ya corrió en la cadena
func CurrentUser(c *gin.Context) *models.User {
	principal, ok := GetPrincipal(c)
	if !ok {
		return nil
	}
	return principal.User
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
