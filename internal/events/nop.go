package events

import (
	"context"

	"go.uber.org/zap"

	"storefront-api/internal/models"
)

// LogPublisher registra los eventos en el log; se usa cuando no hay brokers
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, eventType string, order *models.Order) error {
	p.log.Debug("order event",
		zap.String("event", eventType),
		zap.String("order_id", order.ID.Hex()),
		zap.String("order_number", order.OrderNumber))
	return nil
}

func (p *LogPublisher) Close() error { return nil }
