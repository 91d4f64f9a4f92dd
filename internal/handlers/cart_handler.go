package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/models"
)

type CartHandler struct {
	carts CartService
}

func NewCartHandler(carts CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

// POST /api/cart
func (h *CartHandler) AddItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input models.AddToCartInput
	if !bindJSON(c, &input) {
		return
	}

	cart, err := h.carts.AddItem(c.Request.Context(), user.ID, input)
	if err != nil {
		respondError(c, err, "Failed to add to cart")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Added to cart", "cart": cart})
}

// GET /api/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	lines, err := h.carts.GetCart(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err, "Failed to load cart")
		return
	}

	c.JSON(http.StatusOK, lines)
}

// PUT /api/cart/:itemId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input models.UpdateCartItemInput
	if !bindJSON(c, &input) {
		return
	}

	item, err := h.carts.UpdateItem(c.Request.Context(), user.ID, c.Param("itemId"), input.Quantity)
	if err != nil {
		respondError(c, err, "Failed to update cart item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated", "item": item})
}

// DELETE /api/cart/:itemId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.carts.RemoveItem(c.Request.Context(), user.ID, c.Param("itemId")); err != nil {
		respondError(c, err, "Failed to remove item")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Item removed from cart"})
}
