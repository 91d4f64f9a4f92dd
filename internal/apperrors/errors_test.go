package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", Validation("items", "order must contain at least one item"), http.StatusBadRequest},
		{"stock", &InsufficientStockError{ProductName: "Laptop"}, http.StatusBadRequest},
		{"not found", NotFound("product", "abc"), http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", NotFound("order", "")), http.StatusNotFound},
		{"conflict", Conflict("Order was modified by another request"), http.StatusConflict},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("role customer: %w", ErrForbidden), http.StatusForbidden},
		{"internal", Internal("insert order", errors.New("socket closed")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestInternal_KeepsClassifiedErrors(t *testing.T) {
	nf := NotFound("product", "abc")
	assert.Same(t, nf, Internal("reserve", nf))
	assert.Nil(t, Internal("noop", nil))

	cause := errors.New("timeout")
	wrapped := Internal("find order", cause)
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, "find order: timeout", wrapped.Error())
}

func TestPublicMessage_HidesInternalDetails(t *testing.T) {
	assert.Equal(t, "Failed to get orders", PublicMessage(errors.New("connection refused"), "Failed to get orders"))
	assert.Equal(t, "not enough stock for Laptop",
		PublicMessage(&InsufficientStockError{ProductName: "Laptop"}, "x"))
	assert.Equal(t, "product not found: 42", NotFound("product", "42").Error())
	assert.Equal(t, "order not found", NotFound("order", "").Error())
}

func TestAccessError(t *testing.T) {
	unauth := Unauthorized("Invalid credentials")
	forbidden := Forbidden("Account is blocked. Please contact support.")

	assert.ErrorIs(t, unauth, ErrUnauthorized)
	assert.NotErrorIs(t, unauth, ErrForbidden)
	assert.ErrorIs(t, forbidden, ErrForbidden)
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(unauth))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(forbidden))
	assert.Equal(t, "Invalid credentials", PublicMessage(unauth, "x"))
	assert.True(t, Classified(forbidden))
}
