package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/mocks"
	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

func customerRouter(t *testing.T) (*gin.Engine, *mocks.MockCustomerService, *mocks.MockAuthService, *models.User) {
	t.Helper()
	ctrl := gomock.NewController(t)
	customers := mocks.NewMockCustomerService(ctrl)
	authSvc := mocks.NewMockAuthService(ctrl)
	h := NewCustomerHandler(customers, authSvc)
	p := principalFor(models.RoleCustomer)

	router := gin.New()
	router.GET("/api/customers/me", signedIn(p, h.Me)...)
	router.PUT("/api/customers/update-profile", signedIn(p, h.UpdateMe)...)
	router.GET("/api/customers", h.List)
	router.GET("/api/customers/:id", h.Get)
	router.POST("/api/customers", h.Create)
	router.PUT("/api/customers/:id", h.Update)
	router.PUT("/api/customers/:id/reset-password", h.ResetPassword)
	router.PUT("/api/customers/:id/enable-portal", h.EnablePortal)
	router.PUT("/api/customers/:id/disable-portal", h.DisablePortal)
	router.PATCH("/api/customers/:id/block", h.Block)
	router.PATCH("/api/customers/:id/unblock", h.Unblock)
	router.DELETE("/api/customers/:id", h.Delete)
	return router, customers, authSvc, p.User
}

func TestCustomers_List(t *testing.T) {
	router, customers, _, _ := customerRouter(t)

	customers.EXPECT().List(gomock.Any(), service.CustomerListParams{Query: "doe", Status: "active", Page: 2}).
		Return(&service.CustomerPage{Customers: []*models.User{}, Total: 6, TotalPages: 2, CurrentPage: 2}, nil)

	w := perform(router, http.MethodGet, "/api/customers?query=doe&status=active&page=2", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"customers":[],"total":6,"totalPages":2,"currentPage":2}`, w.Body.String())
}

func TestCustomers_UpdateMeAllowsEmail(t *testing.T) {
	router, _, authSvc, user := customerRouter(t)
	email := "new@example.com"

	authSvc.EXPECT().UpdateProfile(gomock.Any(), user.ID.Hex(), models.ProfileUpdate{Email: &email}, true).Return(user, nil)

	w := perform(router, http.MethodPut, "/api/customers/update-profile", gin.H{"email": email})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCustomers_ResetPassword(t *testing.T) {
	router, customers, _, _ := customerRouter(t)
	id := primitive.NewObjectID().Hex()
	customers.EXPECT().ResetPassword(gomock.Any(), id).Return("a1b2c3d4", nil)

	w := perform(router, http.MethodPut, "/api/customers/"+id+"/reset-password", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Password reset successfully","temporaryPassword":"a1b2c3d4"}`, w.Body.String())
}

func TestCustomers_Toggles(t *testing.T) {
	router, customers, _, _ := customerRouter(t)
	id := primitive.NewObjectID().Hex()
	user := &models.User{}

	customers.EXPECT().SetPortalAccess(gomock.Any(), id, true).Return(user, nil)
	customers.EXPECT().SetPortalAccess(gomock.Any(), id, false).Return(user, nil)
	customers.EXPECT().SetBlocked(gomock.Any(), id, true).Return(user, nil)
	customers.EXPECT().SetBlocked(gomock.Any(), id, false).Return(nil, apperrors.NotFound("customer", id))

	cases := []struct {
		method, path, message string
		status                int
	}{
		{http.MethodPut, "/enable-portal", "Portal access enabled", http.StatusOK},
		{http.MethodPut, "/disable-portal", "Portal access disabled", http.StatusOK},
		{http.MethodPatch, "/block", "Customer blocked successfully", http.StatusOK},
		{http.MethodPatch, "/unblock", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		w := perform(router, tc.method, "/api/customers/"+id+tc.path, nil)
		assert.Equal(t, tc.status, w.Code, tc.path)
		if tc.message != "" {
			assert.Contains(t, w.Body.String(), tc.message)
		}
	}
}

func TestCustomers_CreateAndDelete(t *testing.T) {
	router, customers, _, _ := customerRouter(t)
	id := primitive.NewObjectID()

	customers.EXPECT().Create(gomock.Any(), models.CreateCustomerInput{
		FirstName: "John", LastName: "Doe", Email: "john@example.com", Password: "secret1",
	}).Return(&models.User{ID: id, Email: "john@example.com"}, nil)
	customers.EXPECT().Delete(gomock.Any(), id.Hex()).Return(nil)

	w := perform(router, http.MethodPost, "/api/customers", gin.H{
		"first_name": "John", "last_name": "Doe", "email": "john@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "Customer created successfully")

	w = perform(router, http.MethodDelete, "/api/customers/"+id.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCustomers_Me(t *testing.T) {
	router, _, authSvc, user := customerRouter(t)
	authSvc.EXPECT().Profile(gomock.Any(), user.ID.Hex()).Return(user, nil)

	w := perform(router, http.MethodGet, "/api/customers/me", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.Email)
}
