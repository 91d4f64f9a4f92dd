package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-api/internal/auth"
	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

//go:generate mockgen -destination=../mocks/mock_handlers.go -package=mocks storefront-api/internal/handlers OrderService,CartService,CatalogService,AuthService,CustomerService,SettingsService

type OrderService interface {
	PlaceOrder(ctx context.Context, customerID primitive.ObjectID, input models.PlaceOrderInput) (*models.Order, error)
	View(ctx context.Context, order *models.Order) (*models.OrderView, error)
	UpdateOrder(ctx context.Context, id string, update models.OrderUpdate) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	ListOrders(ctx context.Context, params service.OrderListParams) (*service.OrderPage, error)
	MyOrders(ctx context.Context, customerID primitive.ObjectID, params service.MyOrdersParams) ([]models.OrderView, error)
	GetOrder(ctx context.Context, id string) (*models.OrderView, error)
	Stats(ctx context.Context) (*models.OrderStats, error)
}

type CartService interface {
	AddItem(ctx context.Context, userID primitive.ObjectID, input models.AddToCartInput) (*models.Cart, error)
	GetCart(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error)
	UpdateItem(ctx context.Context, userID primitive.ObjectID, itemID string, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, userID primitive.ObjectID, itemID string) error
}

type CatalogService interface {
	PublicProducts(ctx context.Context, params service.CatalogParams) (*service.ProductPage, error)
	Recommendations(ctx context.Context, params service.CatalogParams) (*service.ProductPage, error)
	AdminProducts(ctx context.Context, params service.CatalogParams) (*service.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, input models.ProductInput, image string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, update models.ProductUpdate) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type AuthService interface {
	Register(ctx context.Context, input models.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, input models.LoginInput) (*service.Session, error)
	Authenticate(ctx context.Context, token string) (*auth.Principal, error)
	Profile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate, allowEmail bool) (*models.User, error)
	ChangePassword(ctx context.Context, userID string, input models.ChangePasswordInput) error
	SeedAdmin(ctx context.Context) (*models.User, error)
	Impersonate(ctx context.Context, admin *models.User, customerID string) (*service.Session, error)
}

type CustomerService interface {
	List(ctx context.Context, params service.CustomerListParams) (*service.CustomerPage, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, input models.CreateCustomerInput) (*models.User, error)
	Update(ctx context.Context, id string, update models.ProfileUpdate) (*models.User, error)
	ResetPassword(ctx context.Context, id string) (string, error)
	SetPortalAccess(ctx context.Context, id string, enabled bool) (*models.User, error)
	SetBlocked(ctx context.Context, id string, blocked bool) (*models.User, error)
	Delete(ctx context.Context, id string) error
}

type SettingsService interface {
	Get(ctx context.Context) (*models.PortalSettings, error)
	Update(ctx context.Context, update models.PortalSettingsUpdate) (*models.PortalSettings, error)
	SetLogo(ctx context.Context, filename string) (*models.PortalSettings, error)
	Reset(ctx context.Context) (*models.PortalSettings, error)
}

var (
	_ OrderService    = (*service.OrderService)(nil)
	_ CartService     = (*service.CartService)(nil)
	_ CatalogService  = (*service.CatalogService)(nil)
	_ AuthService     = (*service.AuthService)(nil)
	_ CustomerService = (*service.CustomerService)(nil)
	_ SettingsService = (*service.SettingsService)(nil)
)
