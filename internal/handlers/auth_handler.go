package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-api/internal/models"
)

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	session, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Customer registered successfully",
		"token":   session.Token,
		"user":    session.User.Public(),
	})
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	session, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   session.Token,
		"user":    session.User.Public(),
	})
}

// GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	profile, err := h.auth.Profile(c.Request.Context(), user.ID.Hex())
	if err != nil {
		respondError(c, err, "Failed to get profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// PUT /api/auth/profile (solo nombre y apellido)
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var update models.ProfileUpdate
	if !bindJSON(c, &update) {
		return
	}

	updated, err := h.auth.UpdateProfile(c.Request.Context(), user.ID.Hex(), update, false)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    updated.Public(),
	})
}

// PUT /api/auth/change-password y /api/customers/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var input models.ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), user.ID.Hex(), input); err != nil {
		respondError(c, err, "Failed to change password")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Password changed successfully"})
}

// POST /api/auth/seed-admin
func (h *AuthHandler) SeedAdmin(c *gin.Context) {
	admin, err := h.auth.SeedAdmin(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to create admin user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Admin user created successfully",
		"admin":   admin.Public(),
	})
}

// POST /api/auth/impersonate/:customerId y /api/customers/:id/impersonate
func (h *AuthHandler) Impersonate(c *gin.Context) {
	admin, ok := currentUser(c)
	if !ok {
		return
	}

	customerID := c.Param("customerId")
	if customerID == "" {
		customerID = c.Param("id")
	}

	session, err := h.auth.Impersonate(c.Request.Context(), admin, customerID)
	if err != nil {
		respondError(c, err, "Failed to impersonate customer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Now impersonating " + session.User.Name(),
		"token":    session.Token,
		"customer": session.User.Public(),
	})
}
