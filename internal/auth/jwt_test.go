package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-api/internal/models"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", 24*time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
}

func TestIssueAndValidate(t *testing.T) {
	m := newManager(t)
	user := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer}

	token, err := m.Issue(user)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, models.RoleCustomer, claims.Role)
	assert.False(t, claims.IsImpersonation)
}

func TestValidate_Expired(t *testing.T) {
	m := newManager(t)
	m.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	token, err := m.Issue(&models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := newManager(t).Issue(&models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin})
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret", time.Hour)
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x", Role: models.RoleAdmin})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newManager(t).Validate(token)
	assert.Error(t, err)
}

func TestIssueImpersonation(t *testing.T) {
	m := newManager(t)
	customer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer}

	token, err := m.IssueImpersonation(customer, "admin-1", time.Hour)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.IsImpersonation)
	assert.Equal(t, "admin-1", claims.ImpersonatedBy)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestCapabilities(t *testing.T) {
	admin := &Principal{User: &models.User{Role: models.RoleAdmin}}
	customer := &Principal{User: &models.User{Role: models.RoleCustomer}}

	assert.True(t, admin.Can(CapManageOrders))
	assert.True(t, admin.Can(CapShop))
	assert.False(t, admin.Can(CapCustomerSelf))

	assert.True(t, customer.Can(CapShop))
	assert.True(t, customer.Can(CapCustomerSelf))
	assert.False(t, customer.Can(CapManageCatalog))

	var nobody *Principal
	assert.False(t, nobody.Can(CapShop))
	assert.False(t, RoleCan("guest", CapShop))
}
