package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/auth"
	"storefront-api/internal/logger"
	"storefront-api/internal/models"
)

const (
	seedAdminEmail    = "admin@example.com"
	seedAdminPassword = "admin123"
)

// RegistrationPolicy decide si se aceptan altas públicas
type RegistrationPolicy interface {
	RegistrationOpen(ctx context.Context) (bool, error)
}

// Session es la respuesta de login, registro e impersonación
type Session struct {
	Token string
	User  *models.User
}

type AuthService struct {
	users            UserStore
	tokens           *auth.TokenManager
	registration     RegistrationPolicy
	impersonationTTL time.Duration
}

func NewAuthService(users UserStore, tokens *auth.TokenManager, registration RegistrationPolicy, impersonationTTL time.Duration) *AuthService {
	return &AuthService{
		users:            users,
		tokens:           tokens,
		registration:     registration,
		impersonationTTL: impersonationTTL,
	}
}

func (s *AuthService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, apperrors.Internal("issue token", err)
	}
	return &Session{Token: token, User: user}, nil
}

// Register crea un cliente y devuelve su sesión
func (s *AuthService) Register(ctx context.Context, input models.RegisterInput) (*Session, error) {
	if s.registration != nil {
		open, err := s.registration.RegistrationOpen(ctx)
		if err != nil {
			return nil, err
		}
		if !open {
			return nil, apperrors.Forbidden("Customer registration is disabled")
		}
	}

	user, err := newUser(input.FirstName, input.LastName, input.Email, input.Password, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.Internal("register user", err)
	}

	logger.FromContext(ctx).Info("customer registered", zap.String("user_id", user.ID.Hex()))
	return s.session(user)
}

// Login valida credenciales y estado de la cuenta
func (s *AuthService) Login(ctx context.Context, input models.LoginInput) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, apperrors.Internal("find user", err)
	}

	if user.IsBlocked {
		return nil, apperrors.Forbidden("Account is blocked. Please contact support.")
	}
	if !user.HasPortalAccess {
		return nil, apperrors.Forbidden("Portal access is disabled. Please contact support.")
	}
	if !user.CheckPassword(input.Password) {
		return nil, apperrors.Unauthorized("Invalid credentials")
	}

	return s.session(user)
}

// Authenticate resuelve el usuario de un token bearer
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperrors.Unauthorized("Unauthorized access. Token invalid or missing.")
	}

	id, err := parseID("id", claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("Unauthorized access. Token invalid or missing.")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return nil, apperrors.Unauthorized("Unauthorized access. Token invalid or missing.")
		}
		return nil, apperrors.Internal("load user", err)
	}
	if user.IsBlocked {
		return nil, apperrors.Forbidden("Account is blocked. Please contact support.")
	}

	return &auth.Principal{
		User:            user,
		ImpersonatedBy:  claims.ImpersonatedBy,
		IsImpersonation: claims.IsImpersonation,
	}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	id, err := parseID("id", userID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("load profile", err)
	}
	return user, nil
}

// UpdateProfile cambia nombre y, si allowEmail, el email
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate, allowEmail bool) (*models.User, error) {
	id, err := parseID("id", userID)
	if err != nil {
		return nil, err
	}

	patch := UserPatch{
		FirstName: nonEmpty(update.FirstName),
		LastName:  nonEmpty(update.LastName),
	}
	if allowEmail && update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return nil, apperrors.Validation("email", "email cannot be empty")
		}
		patch.Email = &email
	}

	user, err := s.users.Patch(ctx, id, patch)
	if err != nil {
		return nil, apperrors.Internal("update profile", err)
	}
	return user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, input models.ChangePasswordInput) error {
	id, err := parseID("id", userID)
	if err != nil {
		return err
	}
	if len(input.NewPassword) < 6 {
		return apperrors.Validation("newPassword", "New password must be at least 6 characters")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return apperrors.Internal("load user", err)
	}
	if !user.CheckPassword(input.CurrentPassword) {
		return apperrors.Validation("currentPassword", "Current password is incorrect")
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		return apperrors.Internal("hash password", err)
	}
	if _, err := s.users.Patch(ctx, id, UserPatch{PasswordHash: &user.Password}); err != nil {
		return apperrors.Internal("change password", err)
	}
	return nil
}

// SeedAdmin crea el administrador por defecto si todavía no existe
func (s *AuthService) SeedAdmin(ctx context.Context) (*models.User, error) {
	_, err := s.users.FindByEmail(ctx, seedAdminEmail)
	if err == nil {
		return nil, apperrors.Validation("email", "Admin user already exists")
	}
	var notFound *apperrors.NotFoundError
	if !errors.As(err, &notFound) {
		return nil, apperrors.Internal("find admin", err)
	}

	admin, err := newUser("Admin", "User", seedAdminEmail, seedAdminPassword, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, apperrors.Internal("create admin", err)
	}

	logger.FromContext(ctx).Info("admin user seeded", zap.String("user_id", admin.ID.Hex()))
	return admin, nil
}

// Impersonate emite un token corto para actuar como un cliente
func (s *AuthService) Impersonate(ctx context.Context, admin *models.User, customerID string) (*Session, error) {
	id, err := parseID("customerId", customerID)
	if err != nil {
		return nil, err
	}

	customer, err := s.users.FindByID(ctx, id)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return nil, apperrors.NotFound("customer", customerID)
		}
		return nil, apperrors.Internal("find customer", err)
	}
	if customer.Role != models.RoleCustomer {
		return nil, apperrors.Validation("customerId", "Can only impersonate customers")
	}

	token, err := s.tokens.IssueImpersonation(customer, admin.ID.Hex(), s.impersonationTTL)
	if err != nil {
		return nil, apperrors.Internal("issue impersonation token", err)
	}

	logger.FromContext(ctx).Info("impersonation started",
		zap.String("admin_id", admin.ID.Hex()),
		zap.String("customer_id", customer.ID.Hex()))
	return &Session{Token: token, User: customer}, nil
}

func newUser(firstName, lastName, email, password string, role models.Role) (*models.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = normalizeEmail(email)
	if firstName == "" || lastName == "" || email == "" || password == "" {
		return nil, apperrors.Validation("user", "All fields are required")
	}
	if len(password) < 6 {
		return nil, apperrors.Validation("password", "Password must be at least 6 characters")
	}

	user := &models.User{
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		Role:            role,
		HasPortalAccess: true,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, apperrors.Internal("hash password", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// nonEmpty descarta punteros a cadenas vacías, que no deben borrar el valor
func nonEmpty(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
