package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
)

// Eventos publicados por OrderService
const (
	EventOrderPlaced  = "order.placed"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

const (
	defaultOrderPageSize    = 20
	defaultCustomerPageSize = 5
	defaultProductPageSize  = 20
)

// Recorder recibe las métricas de negocio
type Recorder interface {
	OrderPlaced(amount float64)
	StockRejected(reason string)
}

type nopRecorder struct{}

func (nopRecorder) OrderPlaced(float64)  {}
func (nopRecorder) StockRejected(string) {}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, *models.Order) error { return nil }

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Set(context.Context, string, any) error         { return nil }
func (nopCache) DeleteByPrefix(context.Context, string) error   { return nil }

// parseID convierte un id hexadecimal; field se usa en el mensaje de error
func parseID(field, raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, apperrors.Validation(field, "invalid %s: %q", field, raw)
	}
	return id, nil
}

// parseOptionalID devuelve nil si raw está vacío
func parseOptionalID(field, raw string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseDate acepta YYYY-MM-DD o RFC3339. Con endOfDay una fecha sin hora
// cubre el día completo.
func parseDate(field, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperrors.Validation(field, "invalid date: %q", raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return &t, nil
}

// detached conserva los valores del contexto pero no su cancelación; se usa
// para compensaciones que deben terminar aunque el cliente corte la request
func detached(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
