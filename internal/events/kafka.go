package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

// Sufijos de tópico por tipo de evento; el prefijo sale de KAFKA_TOPIC_PREFIX
var topicSuffixes = map[string]string{
	service.EventOrderPlaced:  "order-placed",
	service.EventOrderUpdated: "order-updated",
	service.EventOrderDeleted: "order-deleted",
}

// OrderEvent es el mensaje publicado para cada cambio de pedido
type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"orderId"`
	OrderNumber string             `json:"orderNumber"`
	CustomerID  string             `json:"customerId"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount float64            `json:"totalAmount"`
	Items       []models.OrderItem `json:"items"`
	OccurredAt  time.Time          `json:"occurredAt"`
}

func NewOrderEvent(eventType string, order *models.Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     order.ID.Hex(),
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID.Hex(),
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Items:       order.Items,
		OccurredAt:  at,
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher escribe eventos de pedidos, un writer por tópico
type KafkaPublisher struct {
	writers map[string]messageWriter
	now     func() time.Time
}

// Topic arma el nombre del tópico de un tipo de evento
func Topic(prefix, eventType string) string {
	return prefix + "." + topicSuffixes[eventType]
}

// Topics lista todos los tópicos que usa el publisher
func Topics(prefix string) []string {
	out := make([]string, 0, len(topicSuffixes))
	for eventType := range topicSuffixes {
		out = append(out, Topic(prefix, eventType))
	}
	return out
}

// NewKafkaWriter crea un writer con la configuración mínima necesaria
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
}

func NewKafkaPublisher(brokers []string, prefix string) *KafkaPublisher {
	writers := make(map[string]messageWriter, len(topicSuffixes))
	for eventType := range topicSuffixes {
		writers[eventType] = NewKafkaWriter(brokers, Topic(prefix, eventType))
	}
	return &KafkaPublisher{writers: writers, now: time.Now}
}

// Publish usa el id del pedido como clave para que todos sus eventos
// caigan en la misma partición y conserven el orden
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, order *models.Order) error {
	writer, ok := p.writers[eventType]
	if !ok {
		return fmt.Errorf("unknown event type %q", eventType)
	}

	value, err := json.Marshal(NewOrderEvent(eventType, order, p.now()))
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}

	msg := kafka.Message{
		Key:   []byte(order.ID.Hex()),
		Value: value,
		Time:  p.now(),
	}
	if err := writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event: %w", eventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	var errs []error
	for _, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CreateTopics crea los tópicos a través del controller del cluster, con 3
// particiones y replicación 1
func CreateTopics(brokerAddr string, topics []string) error {
	conn, err := kafka.Dial("tcp", brokerAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}

	controllerConn, err := kafka.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return err
	}
	defer controllerConn.Close()

	topicConfigs := make([]kafka.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		topicConfigs = append(topicConfigs, kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     3,
			ReplicationFactor: 1,
		})
	}

	return controllerConn.CreateTopics(topicConfigs...)
}
