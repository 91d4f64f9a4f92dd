package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/logger"
	"storefront-api/internal/models"
)

// CustomerListParams son los filtros crudos del listado de clientes
type CustomerListParams struct {
	Query  string
	Status string
	Sort   string
	Page   int
	Limit  int
}

type CustomerPage struct {
	Customers   []*models.User `json:"customers"`
	Total       int64          `json:"total"`
	TotalPages  int64          `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// CustomerService es la administración de clientes. Las operaciones sobre
// un id que no es de un cliente responden como si no existiera.
type CustomerService struct {
	users UserStore
}

func NewCustomerService(users UserStore) *CustomerService {
	return &CustomerService{users: users}
}

func (s *CustomerService) List(ctx context.Context, params CustomerListParams) (*CustomerPage, error) {
	if params.Status != "" && params.Status != "blocked" && params.Status != "active" {
		return nil, apperrors.Validation("status", "status must be blocked or active")
	}

	page := models.NewPage(params.Page, params.Limit, defaultCustomerPageSize)
	users, total, err := s.users.List(ctx, models.CustomerFilter{
		Query:  params.Query,
		Status: params.Status,
		Sort:   params.Sort,
	}, page)
	if err != nil {
		return nil, apperrors.Internal("list customers", err)
	}
	if users == nil {
		users = []*models.User{}
	}

	return &CustomerPage{
		Customers:   users,
		Total:       total,
		TotalPages:  models.TotalPages(total, page.Size),
		CurrentPage: page.Number,
	}, nil
}

func (s *CustomerService) findCustomer(ctx context.Context, rawID string) (*models.User, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return nil, apperrors.NotFound("customer", rawID)
		}
		return nil, apperrors.Internal("find customer", err)
	}
	if user.Role != models.RoleCustomer {
		return nil, apperrors.NotFound("customer", rawID)
	}
	return user, nil
}

func (s *CustomerService) Get(ctx context.Context, rawID string) (*models.User, error) {
	return s.findCustomer(ctx, rawID)
}

func (s *CustomerService) Create(ctx context.Context, input models.CreateCustomerInput) (*models.User, error) {
	user, err := newUser(input.FirstName, input.LastName, input.Email, input.Password, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Internal("create customer", err)
	}
	return user, nil
}

func (s *CustomerService) Update(ctx context.Context, rawID string, update models.ProfileUpdate) (*models.User, error) {
	patch := UserPatch{
		FirstName: nonEmpty(update.FirstName),
		LastName:  nonEmpty(update.LastName),
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return nil, apperrors.Validation("email", "email cannot be empty")
		}
		patch.Email = &email
	}
	return s.patch(ctx, rawID, patch)
}

// ResetPassword asigna una contraseña temporal de 8 caracteres hex y la
// devuelve una única vez
func (s *CustomerService) ResetPassword(ctx context.Context, rawID string) (string, error) {
	customer, err := s.findCustomer(ctx, rawID)
	if err != nil {
		return "", err
	}

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", apperrors.Internal("generate password", err)
	}
	temporary := hex.EncodeToString(buf)

	if err := customer.SetPassword(temporary); err != nil {
		return "", apperrors.Internal("hash password", err)
	}
	if _, err := s.users.Patch(ctx, customer.ID, UserPatch{PasswordHash: &customer.Password}); err != nil {
		return "", apperrors.Internal("reset password", err)
	}

	logger.FromContext(ctx).Info("customer password reset", zap.String("customer_id", customer.ID.Hex()))
	return temporary, nil
}

func (s *CustomerService) SetPortalAccess(ctx context.Context, rawID string, enabled bool) (*models.User, error) {
	return s.patch(ctx, rawID, UserPatch{HasPortalAccess: &enabled})
}

func (s *CustomerService) SetBlocked(ctx context.Context, rawID string, blocked bool) (*models.User, error) {
	return s.patch(ctx, rawID, UserPatch{IsBlocked: &blocked})
}

func (s *CustomerService) Delete(ctx context.Context, rawID string) error {
	customer, err := s.findCustomer(ctx, rawID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, customer.ID); err != nil {
		return apperrors.Internal("delete customer", err)
	}
	return nil
}

func (s *CustomerService) patch(ctx context.Context, rawID string, patch UserPatch) (*models.User, error) {
	customer, err := s.findCustomer(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return s.patchByID(ctx, customer.ID, patch)
}

func (s *CustomerService) patchByID(ctx context.Context, id primitive.ObjectID, patch UserPatch) (*models.User, error) {
	user, err := s.users.Patch(ctx, id, patch)
	if err != nil {
		return nil, apperrors.Internal("update customer", err)
	}
	return user, nil
}
