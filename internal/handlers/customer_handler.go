package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

type CustomerHandler struct {
	customers CustomerService
	auth      AuthService
}

func NewCustomerHandler(customers CustomerService, auth AuthService) *CustomerHandler {
	return &CustomerHandler{customers: customers, auth: auth}
}

// GET /api/customers/me
func (h *CustomerHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.auth.Profile(c.Request.Context(), user.ID.Hex())
	if err != nil {
		respondError(c, err, "Failed to load profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// PUT /api/customers/update-profile (incluye email)
func (h *CustomerHandler) UpdateMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var update models.ProfileUpdate
	if !bindJSON(c, &update) {
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), user.ID.Hex(), update, true)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, updated)
}

// GET /api/customers
func (h *CustomerHandler) List(c *gin.Context) {
	page, err := h.customers.List(c.Request.Context(), service.CustomerListParams{
		Query:  c.Query("query"),
		Status: c.Query("status"),
		Sort:   c.Query("sort"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	})
	if err != nil {
		respondError(c, err, "Failed to fetch customers")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GET /api/customers/:id
func (h *CustomerHandler) Get(c *gin.Context) {
	customer, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Error fetching customer details")
		return
	}

	c.JSON(http.StatusOK, customer)
}

// POST /api/customers
func (h *CustomerHandler) Create(c *gin.Context) {
	var input models.CreateCustomerInput
	if !bindJSON(c, &input) {
		return
	}

	customer, err := h.customers.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Customer created successfully", "customer": customer})
}

// PUT /api/customers/:id
func (h *CustomerHandler) Update(c *gin.Context) {
	var update models.ProfileUpdate
	if !bindJSON(c, &update) {
		return
	}

	customer, err := h.customers.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondError(c, err, "Failed to update customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer updated successfully", "customer": customer})
}

// PUT /api/customers/:id/reset-password
func (h *CustomerHandler) ResetPassword(c *gin.Context) {
	temporary, err := h.customers.ResetPassword(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to reset password")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully", "temporaryPassword": temporary})
}

// PUT /api/customers/:id/enable-portal
func (h *CustomerHandler) EnablePortal(c *gin.Context) {
	h.setPortalAccess(c, true, "Portal access enabled", "Failed to enable portal access")
}

// PUT /api/customers/:id/disable-portal
func (h *CustomerHandler) DisablePortal(c *gin.Context) {
	h.setPortalAccess(c, false, "Portal access disabled", "Failed to disable portal access")
}

// PATCH /api/customers/:id/block
func (h *CustomerHandler) Block(c *gin.Context) {
	h.setBlocked(c, true, "Customer blocked successfully", "Failed to block customer")
}

// PATCH /api/customers/:id/unblock
func (h *CustomerHandler) Unblock(c *gin.Context) {
	h.setBlocked(c, false, "Customer unblocked successfully", "Failed to unblock customer")
}

// DELETE /api/customers/:id
func (h *CustomerHandler) Delete(c *gin.Context) {
	if err := h.customers.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err, "Failed to delete customer")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Customer deleted successfully"})
}

func (h *CustomerHandler) setPortalAccess(c *gin.Context, enabled bool, message, failure string) {
	if _, err := h.customers.SetPortalAccess(c.Request.Context(), c.Param("id"), enabled); err != nil {
		respondError(c, err, failure)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

func (h *CustomerHandler) setBlocked(c *gin.Context, blocked bool, message, failure string) {
	if _, err := h.customers.SetBlocked(c.Request.Context(), c.Param("id"), blocked); err != nil {
		respondError(c, err, failure)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}
