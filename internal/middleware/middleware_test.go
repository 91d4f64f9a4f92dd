package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/auth"
	"storefront-api/internal/logger"
	"storefront-api/internal/mocks"
	"storefront-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(authenticator Authenticator, capability auth.Capability) *gin.Engine {
	router := gin.New()
	router.GET("/secure", Authenticate(authenticator), Require(capability), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": CurrentUser(c).Email})
	})
	return router
}

func get(router http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	admin := &auth.Principal{User: &models.User{ID: primitive.NewObjectID(), Email: "admin@example.com", Role: models.RoleAdmin}}
	customer := &auth.Principal{User: &models.User{ID: primitive.NewObjectID(), Email: "c@example.com", Role: models.RoleCustomer}}

	cases := []struct {
		name   string
		header string
		setup  func(m *mocks.MockAuthService)
		status int
	}{
		{name: "missing header", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized},
		{
			name:   "invalid token",
			header: "Bearer bad",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "bad").Return(nil, apperrors.Unauthorized("Unauthorized access. Token invalid or missing."))
			},
			status: http.StatusUnauthorized,
		},
		{
			name:   "blocked user",
			header: "Bearer blocked",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "blocked").Return(nil, apperrors.Forbidden("Account is blocked. Please contact support."))
			},
			status: http.StatusForbidden,
		},
		{
			name:   "store failure",
			header: "Bearer any",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "any").Return(nil, apperrors.Internal("load user", errors.New("timeout")))
			},
			status: http.StatusInternalServerError,
		},
		{
			name:   "customer lacks capability",
			header: "Bearer customer",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "customer").Return(customer, nil)
			},
			status: http.StatusForbidden,
		},
		{
			name:   "admin allowed",
			header: "Bearer admin",
			setup: func(m *mocks.MockAuthService) {
				m.EXPECT().Authenticate(gomock.Any(), "admin").Return(admin, nil)
			},
			status: http.StatusOK,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := mocks.NewMockAuthService(gomock.NewController(t))
			if tc.setup != nil {
				tc.setup(svc)
			}

			w := get(protectedRouter(svc, auth.CapManageOrders), tc.header)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusInternalServerError {
				assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
			}
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	router := gin.New()
	router.Use(RequestID(zap.New(core)), RequestLogger())
	router.GET("/ping", func(c *gin.Context) {
		logger.FromContext(c.Request.Context()).Info("inside handler")
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "req-123", w.Body.String())
	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
	}
	assert.Equal(t, "HTTP request completed", logs.All()[1].Message)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestPrincipalHelpersWithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetPrincipal(c)
	assert.False(t, ok)
	assert.Nil(t, CurrentUser(c))

	ctx := context.Background()
	assert.NotNil(t, logger.FromContext(ctx))
}
