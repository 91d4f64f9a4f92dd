package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-api/internal/models"
)

// ErrDuplicateOrderNumber indica colisión en el índice único de orderNumber
var ErrDuplicateOrderNumber = errors.New("order number already taken")

// ErrOrderModified indica que el pedido cambió desde que se leyó
var ErrOrderModified = errors.New("order was modified concurrently")

// OrderSequence es el nombre del contador de números de pedido
const OrderSequence = "orders"

//go:generate mockgen -destination=../mocks/mock_stores.go -package=mocks storefront-api/internal/service UserStore,SettingsStore

// ProductQuery describe un listado del catálogo; Page nil devuelve todo
type ProductQuery struct {
	Search string
	Sort   string
	Page   *models.Page
}

type ProductStore interface {
	Create(ctx context.Context, product *models.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Product, error)
	FindIDsByName(ctx context.Context, term string) ([]primitive.ObjectID, error)
	List(ctx context.Context, query ProductQuery) ([]*models.Product, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, update models.ProductUpdate) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Reserve descuenta stock solo si hay suficiente y devuelve el producto actualizado
	Reserve(ctx context.Context, id primitive.ObjectID, quantity int) (*models.Product, error)
	Release(ctx context.Context, id primitive.ObjectID, quantity int) error
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	Find(ctx context.Context, filter models.OrderFilter, page *models.Page) ([]*models.Order, int64, error)
	// Replace y Delete solo aplican si el documento sigue en la versión leída;
	// si no devuelven ErrOrderModified
	Replace(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, order *models.Order) error
	Count(ctx context.Context) (int64, error)
	// HighestOrderSequence devuelve la mayor secuencia ORDnnnn guardada
	HighestOrderSequence(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
}

type CounterStore interface {
	Next(ctx context.Context, name string) (int64, error)
	EnsureAtLeast(ctx context.Context, name string, value int64) error
}

type CartStore interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	IncrementItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error)
	PushItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) (bool, error)
	SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error
	PullItem(ctx context.Context, userID, itemID primitive.ObjectID) error
}

// UserPatch aplica solo los campos no nulos
type UserPatch struct {
	FirstName       *string
	LastName        *string
	Email           *string
	PasswordHash    *string
	IsBlocked       *bool
	HasPortalAccess *bool
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, filter models.CustomerFilter, page models.Page) ([]*models.User, int64, error)
	Patch(ctx context.Context, id primitive.ObjectID, patch UserPatch) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type SettingsStore interface {
	Get(ctx context.Context) (*models.PortalSettings, error)
	Save(ctx context.Context, settings *models.PortalSettings) error
	DeleteAll(ctx context.Context) error
}

// EventPublisher emite eventos del ciclo de vida de pedidos
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, order *models.Order) error
}

// CatalogCache guarda páginas del catálogo público
type CatalogCache interface {
	Get(ctx context.Context, key string, target any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
