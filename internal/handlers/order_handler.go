package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

type OrderHandler struct {
	orders OrderService
}

func NewOrderHandler(orders OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// POST /api/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input models.PlaceOrderInput
	if !bindJSON(c, &input) {
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), user.ID, input)
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	view, err := h.orders.View(c.Request.Context(), order)
	if err != nil {
		respondError(c, err, "Internal server error")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully!",
		"order":   view,
	})
}

// GET /api/orders/my
func (h *OrderHandler) MyOrders(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.orders.MyOrders(c.Request.Context(), user.ID, service.MyOrdersParams{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Sort:   c.Query("sort"),
	})
	if err != nil {
		respondError(c, err, "Failed to fetch orders")
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GET /api/orders
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, err := h.orders.ListOrders(c.Request.Context(), service.OrderListParams{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer"),
		ProductID:  c.Query("product"),
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		Sort:       c.Query("sort"),
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err, "Failed to get orders")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GET /api/orders/stats
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.orders.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get order statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GET /api/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get order")
		return
	}

	c.JSON(http.StatusOK, order)
}

// PUT /api/orders/:id
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var update models.OrderUpdate
	if !bindJSON(c, &update) {
		return
	}

	order, err := h.orders.UpdateOrder(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err, "Failed to update order")
		return
	}

	view, err := h.orders.View(c.Request.Context(), order)
	if err != nil {
		respondError(c, err, "Failed to update order")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated",
		"order":   view,
	})
}

// DELETE /api/orders/:id
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.orders.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete order")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Order deleted"})
}
