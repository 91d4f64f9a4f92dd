package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

type captureWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

var (
	_ service.EventPublisher = (*KafkaPublisher)(nil)
	_ service.EventPublisher = (*LogPublisher)(nil)
)

func TestKafkaPublisher_Publish(t *testing.T) {
	placed := &captureWriter{}
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &KafkaPublisher{
		writers: map[string]messageWriter{service.EventOrderPlaced: placed},
		now:     func() time.Time { return fixed },
	}
	order := &models.Order{
		ID:          primitive.NewObjectID(),
		CustomerID:  primitive.NewObjectID(),
		OrderNumber: "ORD0007",
		Status:      models.OrderStatusPending,
		TotalAmount: 25,
	}

	require.NoError(t, p.Publish(context.Background(), service.EventOrderPlaced, order))

	require.Len(t, placed.messages, 1)
	msg := placed.messages[0]
	assert.Equal(t, order.ID.Hex(), string(msg.Key))

	var event OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, "order.placed", event.Type)
	assert.Equal(t, "ORD0007", event.OrderNumber)
	assert.Equal(t, 25.0, event.TotalAmount)
	assert.True(t, fixed.Equal(event.OccurredAt))
}

func TestKafkaPublisher_Errors(t *testing.T) {
	failing := &captureWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{
		writers: map[string]messageWriter{service.EventOrderDeleted: failing},
		now:     time.Now,
	}
	order := &models.Order{ID: primitive.NewObjectID()}

	assert.ErrorContains(t, p.Publish(context.Background(), service.EventOrderDeleted, order), "broker down")
	assert.Error(t, p.Publish(context.Background(), "order.refunded", order))

	require.NoError(t, p.Close())
	assert.True(t, failing.closed)
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.order-placed", Topic("storefront", service.EventOrderPlaced))
	assert.ElementsMatch(t, []string{
		"shop.order-placed", "shop.order-updated", "shop.order-deleted",
	}, Topics("shop"))
}

func TestLogPublisher(t *testing.T) {
	p := NewLogPublisher(zap.NewNop())
	assert.NoError(t, p.Publish(context.Background(), service.EventOrderUpdated, &models.Order{}))
	assert.NoError(t, p.Close())
}
