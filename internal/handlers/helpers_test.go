package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-api/internal/auth"
	"storefront-api/internal/middleware"
	"storefront-api/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidation()
}

type stubAuthenticator struct {
	principal *auth.Principal
}

func (s stubAuthenticator) Authenticate(context.Context, string) (*auth.Principal, error) {
	return s.principal, nil
}

func principalFor(role models.Role) *auth.Principal {
	return &auth.Principal{User: &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Jane",
		LastName:  "Smith",
		Email:     "jane@example.com",
		Role:      role,
	}}
}

// signedIn antepone Authenticate con un usuario fijo
func signedIn(p *auth.Principal, h gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{middleware.Authenticate(stubAuthenticator{principal: p}), h}
}

func perform(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), target))
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	decode(t, w, &body)
	return body.Error
}
