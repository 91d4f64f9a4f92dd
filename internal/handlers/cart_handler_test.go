package handlers

import (
	"context"
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
)

func cartRouter(t *testing.T) (*gin.Engine, *mocks.MockCartService, *models.User) {
	t.Helper()
	svc := mocks.NewMockCartService(gomock.NewController(t))
	h := NewCartHandler(svc)
	p := principalFor(models.RoleCustomer)

	router := gin.New()
	router.POST("/api/cart", signedIn(p, h.AddItem)...)
	router.GET("/api/cart", signedIn(p, h.GetCart)...)
	router.PUT("/api/cart/:itemId", signedIn(p, h.UpdateItem)...)
	router.DELETE("/api/cart/:itemId", signedIn(p, h.RemoveItem)...)
	return router, svc, p.User
}

func TestCart_Add(t *testing.T) {
	router, svc, user := cartRouter(t)
	productID := primitive.NewObjectID()

	svc.EXPECT().AddItem(gomock.Any(), user.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ primitive.ObjectID, input models.AddToCartInput) (*models.Cart, error) {
			assert.Nil(t, input.Quantity)
			return &models.Cart{UserID: user.ID, Items: []models.CartItem{{ProductID: productID, Quantity: 1}}}, nil
		})

	w := perform(router, http.MethodPost, "/api/cart", gin.H{"productId": productID.Hex()})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Added to cart"`)
}

func TestCart_AddRequiresProduct(t *testing.T) {
	router, _, _ := cartRouter(t)

	w := perform(router, http.MethodPost, "/api/cart", gin.H{"quantity": 2})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "productId is required", errorBody(t, w))
}

func TestCart_GetEmpty(t *testing.T) {
	router, svc, user := cartRouter(t)
	svc.EXPECT().GetCart(gomock.Any(), user.ID).Return([]models.CartLine{}, nil)

	w := perform(router, http.MethodGet, "/api/cart", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCart_UpdateAndRemove(t *testing.T) {
	router, svc, user := cartRouter(t)
	itemID := primitive.NewObjectID().Hex()

	svc.EXPECT().UpdateItem(gomock.Any(), user.ID, itemID, 4).Return(&models.CartItem{Quantity: 4}, nil)
	svc.EXPECT().RemoveItem(gomock.Any(), user.ID, itemID).Return(apperrors.NotFound("cart", ""))

	w := perform(router, http.MethodPut, "/api/cart/"+itemID, gin.H{"quantity": 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"quantity":4`)

	w = perform(router, http.MethodDelete, "/api/cart/"+itemID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "cart not found", errorBody(t, w))
}
