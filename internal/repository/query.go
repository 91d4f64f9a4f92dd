package repository

import (
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/service"
)

const (
	readTimeout  = 3 * time.Second
	writeTimeout = 5 * time.Second
	queryTimeout = 10 * time.Second
)

var sortFieldPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ParseSort interpreta "campo" (asc) o "-campo" (desc); vacío usa el default
func ParseSort(sort string, fallback bson.D) (bson.D, error) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return fallback, nil
	}

	order := 1
	if strings.HasPrefix(sort, "-") {
		order = -1
		sort = sort[1:]
	}

	if !sortFieldPattern.MatchString(sort) {
		return nil, apperrors.Validation("sort", "invalid sort field: %q", sort)
	}

	return bson.D{{Key: sort, Value: order}}, nil
}

// containsPattern arma un regex literal, sin distinguir mayúsculas
func containsPattern(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

var (
	_ service.ProductStore  = (*ProductRepository)(nil)
	_ service.OrderStore    = (*OrderRepository)(nil)
	_ service.CounterStore  = (*CounterRepository)(nil)
	_ service.CartStore     = (*CartRepository)(nil)
	_ service.UserStore     = (*UserRepository)(nil)
	_ service.SettingsStore = (*SettingsRepository)(nil)
)
