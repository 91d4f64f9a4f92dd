package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	ProductID primitive.ObjectID `json:"productId" bson:"productId"`
	Name      string             `json:"name" bson:"name"`
	Price     float64            `json:"price" bson:"price"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Items     []CartItem         `json:"items" bson:"items"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CartLine es la representación de una línea al listar el carrito
type CartLine struct {
	ID          primitive.ObjectID `json:"_id"`
	ProductID   primitive.ObjectID `json:"productId"`
	ProductName string             `json:"productName"`
	Price       float64            `json:"price"`
	Quantity    int                `json:"quantity"`
	Total       float64            `json:"total"`
}

func (i CartItem) Line() CartLine {
	return CartLine{
		ID:          i.ID,
		ProductID:   i.ProductID,
		ProductName: i.Name,
		Price:       i.Price,
		Quantity:    i.Quantity,
		Total:       i.Price * float64(i.Quantity),
	}
}

type AddToCartInput struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  *int   `json:"quantity"`
}

type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required"`
}
