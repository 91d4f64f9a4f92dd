package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-api/internal/models"
)

// Claims es el contenido del token de acceso
type Claims struct {
	UserID          string      `json:"id"`
	Role            models.Role `json:"role"`
	ImpersonatedBy  string      `json:"impersonatedBy,omitempty"`
	IsImpersonation bool        `json:"isImpersonation,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager firma y valida tokens HS256
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is required")
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue genera un token de sesión normal
func (m *TokenManager) Issue(user *models.User) (string, error) {
	return m.sign(Claims{UserID: user.ID.Hex(), Role: user.Role}, m.ttl)
}

// IssueImpersonation genera un token corto para que un admin actúe como cliente
func (m *TokenManager) IssueImpersonation(customer *models.User, adminID string, ttl time.Duration) (string, error) {
	return m.sign(Claims{
		UserID:          customer.ID.Hex(),
		Role:            customer.Role,
		ImpersonatedBy:  adminID,
		IsImpersonation: true,
	}, ttl)
}

func (m *TokenManager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := m.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Validate verifica firma, algoritmo y expiración
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithTimeFunc(m.now),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
