package service_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/mocks"
	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

func newCustomerService(t *testing.T) (*service.CustomerService, *mocks.MockUserStore) {
	t.Helper()
	users := mocks.NewMockUserStore(gomock.NewController(t))
	return service.NewCustomerService(users), users
}

func TestCustomers_ListDefaults(t *testing.T) {
	svc, users := newCustomerService(t)

	users.EXPECT().
		List(gomock.Any(), models.CustomerFilter{Query: "doe", Status: "blocked"}, models.Page{Number: 1, Size: 5}).
		Return([]*models.User{{FirstName: "John"}}, int64(11), nil)

	page, err := svc.List(context.Background(), service.CustomerListParams{Query: "doe", Status: "blocked"})

	require.NoError(t, err)
	assert.Len(t, page.Customers, 1)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestCustomers_ListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newCustomerService(t)

	_, err := svc.List(context.Background(), service.CustomerListParams{Status: "vip"})

	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}

func TestCustomers_ResetPassword(t *testing.T) {
	svc, users := newCustomerService(t)
	customer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer}

	var stored string
	users.EXPECT().FindByID(gomock.Any(), customer.ID).Return(customer, nil)
	users.EXPECT().Patch(gomock.Any(), customer.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ primitive.ObjectID, patch service.UserPatch) (*models.User, error) {
			stored = *patch.PasswordHash
			return customer, nil
		})

	temporary, err := svc.ResetPassword(context.Background(), customer.ID.Hex())

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), temporary)
	check := models.User{Password: stored}
	assert.True(t, check.CheckPassword(temporary))
}

func TestCustomers_AdminAccountsAreNotCustomers(t *testing.T) {
	svc, users := newCustomerService(t)
	admin := &models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin}

	users.EXPECT().FindByID(gomock.Any(), admin.ID).Return(admin, nil)

	_, err := svc.SetBlocked(context.Background(), admin.ID.Hex(), true)

	assert.Equal(t, 404, apperrors.HTTPStatus(err))
}

func TestCustomers_BlockAndPortalAccess(t *testing.T) {
	svc, users := newCustomerService(t)
	customer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer, HasPortalAccess: true}

	users.EXPECT().FindByID(gomock.Any(), customer.ID).Return(customer, nil).Times(2)
	users.EXPECT().Patch(gomock.Any(), customer.ID, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ primitive.ObjectID, patch service.UserPatch) (*models.User, error) {
			if patch.IsBlocked != nil {
				customer.IsBlocked = *patch.IsBlocked
			}
			if patch.HasPortalAccess != nil {
				customer.HasPortalAccess = *patch.HasPortalAccess
			}
			return customer, nil
		}).Times(2)

	blocked, err := svc.SetBlocked(context.Background(), customer.ID.Hex(), true)
	require.NoError(t, err)
	assert.True(t, blocked.IsBlocked)

	disabled, err := svc.SetPortalAccess(context.Background(), customer.ID.Hex(), false)
	require.NoError(t, err)
	assert.False(t, disabled.HasPortalAccess)
}

func TestCustomers_Delete(t *testing.T) {
	svc, users := newCustomerService(t)
	customer := &models.User{ID: primitive.NewObjectID(), Role: models.RoleCustomer}

	users.EXPECT().FindByID(gomock.Any(), customer.ID).Return(customer, nil)
	users.EXPECT().Delete(gomock.Any(), customer.ID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), customer.ID.Hex()))
}

func TestCustomers_CreateDuplicateEmail(t *testing.T) {
	svc, users := newCustomerService(t)

	users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperrors.Validation("email", "Email already registered"))

	_, err := svc.Create(context.Background(), models.CreateCustomerInput{
		FirstName: "John", LastName: "Doe", Email: "john@example.com", Password: "secret1",
	})

	assert.Equal(t, 400, apperrors.HTTPStatus(err))
	assert.Equal(t, "Email already registered", err.Error())
}
