package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "In progress"
	OrderStatusComplete   OrderStatus = "Complete"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

var orderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusInProgress,
	OrderStatusComplete,
	OrderStatusShipped,
	OrderStatusDelivered,
}

func (s OrderStatus) Valid() bool {
	for _, known := range orderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func OrderStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderStatuses...)
}

type OrderItem struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	ProductID primitive.ObjectID `json:"product" bson:"product"`
	Quantity  int                `json:"quantity" bson:"quantity"`
	Price     float64            `json:"price" bson:"price"`
}

func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

type ShippingAddress struct {
	AddressLine1 string `json:"addressLine1,omitempty" bson:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty" bson:"addressLine2,omitempty"`
	City         string `json:"city,omitempty" bson:"city,omitempty"`
	State        string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode      string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	Country      string `json:"country,omitempty" bson:"country,omitempty"`
	Phone        string `json:"phone,omitempty" bson:"phone,omitempty"`
}

type BillingAddress struct {
	AddressLine1 string `json:"addressLine1,omitempty" bson:"addressLine1,omitempty"`
	AddressLine2 string `json:"addressLine2,omitempty" bson:"addressLine2,omitempty"`
	City         string `json:"city,omitempty" bson:"city,omitempty"`
	State        string `json:"state,omitempty" bson:"state,omitempty"`
	ZipCode      string `json:"zipCode,omitempty" bson:"zipCode,omitempty"`
	Country      string `json:"country,omitempty" bson:"country,omitempty"`
}

type Order struct {
	ID              primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CustomerID      primitive.ObjectID `json:"customerId" bson:"customerId"`
	Items           []OrderItem        `json:"items" bson:"items"`
	TotalAmount     float64            `json:"totalAmount" bson:"totalAmount"`
	Status          OrderStatus        `json:"status" bson:"status"`
	ShippingAddress *ShippingAddress   `json:"shippingAddress,omitempty" bson:"shippingAddress,omitempty"`
	BillingAddress  *BillingAddress    `json:"billingAddress,omitempty" bson:"billingAddress,omitempty"`
	OrderNumber     string             `json:"orderNumber" bson:"orderNumber"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
	// Version se incrementa en cada escritura; los documentos heredados no lo tienen
	Version int64 `json:"-" bson:"__v"`
}

// OrderTotal suma precio × cantidad de cada línea
func OrderTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// FormatOrderNumber genera el número legible a partir de la secuencia
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD%04d", seq)
}

// ParseOrderNumber extrae la secuencia de un número ORDnnnn
func ParseOrderNumber(number string) (int64, bool) {
	digits, ok := strings.CutPrefix(number, "ORD")
	if !ok || digits == "" {
		return 0, false
	}
	seq, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// OrderLine es una línea solicitada por el cliente
type OrderLine struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderInput struct {
	Items           []OrderLine      `json:"items"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	BillingAddress  *BillingAddress  `json:"billingAddress"`
}

// OrderUpdate usa punteros: nil significa "no modificar"
type OrderUpdate struct {
	Status          *OrderStatus     `json:"status"`
	Items           []OrderLine      `json:"items"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	BillingAddress  *BillingAddress  `json:"billingAddress"`
}

// OrderFilter agrupa los filtros de consulta de pedidos
type OrderFilter struct {
	Status     OrderStatus
	CustomerID *primitive.ObjectID
	ProductID  *primitive.ObjectID
	ProductIn  []primitive.ObjectID
	StartDate  *time.Time
	EndDate    *time.Time
	Sort       string
}

// OrderItemView es una línea con el producto poblado
type OrderItemView struct {
	ID       primitive.ObjectID `json:"_id"`
	Product  any                `json:"product"`
	Quantity int                `json:"quantity"`
	Price    float64            `json:"price"`
}

type OrderView struct {
	ID              primitive.ObjectID `json:"_id"`
	CustomerID      any                `json:"customerId"`
	Items           []OrderItemView    `json:"items"`
	TotalAmount     float64            `json:"totalAmount"`
	Status          OrderStatus        `json:"status"`
	ShippingAddress *ShippingAddress   `json:"shippingAddress,omitempty"`
	BillingAddress  *BillingAddress    `json:"billingAddress,omitempty"`
	OrderNumber     string             `json:"orderNumber"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type StatusBreakdown struct {
	Status      OrderStatus `json:"_id" bson:"_id"`
	Count       int64       `json:"count" bson:"count"`
	TotalAmount float64     `json:"totalAmount" bson:"totalAmount"`
}

type OrderStats struct {
	StatusBreakdown []StatusBreakdown `json:"statusBreakdown"`
	TotalOrders     int64             `json:"totalOrders"`
	TotalRevenue    float64           `json:"totalRevenue"`
}
