package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product representa un producto en el catálogo
type Product struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	Description   string             `json:"description" bson:"description"`
	Price         float64            `json:"price" bson:"price"`
	StockQuantity int                `json:"stock_quantity" bson:"stock_quantity"`
	Image         string             `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// ProductInput es el cuerpo aceptado al crear un producto
type ProductInput struct {
	Name          string  `json:"name" form:"name" binding:"required"`
	Description   string  `json:"description" form:"description"`
	Price         float64 `json:"price" form:"price" binding:"gte=0"`
	StockQuantity int     `json:"stock_quantity" form:"stock_quantity" binding:"gte=0"`
}

// ProductUpdate representa los campos actualizables de un producto
type ProductUpdate struct {
	Name          *string  `json:"name,omitempty" form:"name"`
	Description   *string  `json:"description,omitempty" form:"description"`
	Price         *float64 `json:"price,omitempty" form:"price" binding:"omitempty,gte=0"`
	StockQuantity *int     `json:"stock_quantity,omitempty" form:"stock_quantity" binding:"omitempty,gte=0"`
	Image         *string  `json:"-" form:"-"`
}

// ProductSummary es la vista reducida que se incrusta en pedidos
type ProductSummary struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64            `json:"price" bson:"price"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
}

func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Image:       p.Image,
	}
}
