package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront-api/internal/auth"
	"storefront-api/internal/handlers"
	"storefront-api/internal/metrics"
	"storefront-api/internal/middleware"
)

// Handlers agrupa los handlers HTTP ya construidos
type Handlers struct {
	Auth      *handlers.AuthHandler
	Products  *handlers.ProductHandler
	Orders    *handlers.OrderHandler
	Cart      *handlers.CartHandler
	Customers *handlers.CustomerHandler
	Settings  *handlers.SettingsHandler
	Health    *handlers.HealthHandler
}

type Options struct {
	Logger        *zap.Logger
	Authenticator middleware.Authenticator
	Metrics       *metrics.Metrics
	UploadDir     string
}

// NewRouter arma el engine con middlewares globales y todas las rutas
func NewRouter(h Handlers, opts Options) *gin.Engine {
	handlers.RegisterValidation()

	router := gin.New()
	router.Use(
		middleware.RequestID(opts.Logger),
		middleware.Recovery(),
		middleware.RequestLogger(),
	)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	RegisterRoutes(router, h, opts.Authenticator)

	if opts.UploadDir != "" {
		router.Static("/uploads", opts.UploadDir)
	}
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Error: "Route not found"})
	})
	return router
}

func RegisterRoutes(router *gin.Engine, h Handlers, authenticator middleware.Authenticator) {
	protect := middleware.Authenticate(authenticator)
	can := middleware.Require

	router.GET("/health", h.Health.Health)

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
		authRoutes.POST("/seed-admin", h.Auth.SeedAdmin)
		authRoutes.GET("/profile", protect, h.Auth.Profile)
		authRoutes.PUT("/profile", protect, h.Auth.UpdateProfile)
		authRoutes.PUT("/change-password", protect, h.Auth.ChangePassword)
		authRoutes.POST("/impersonate/:customerId", protect, can(auth.CapImpersonate), h.Auth.Impersonate)
	}

	products := api.Group("/products")
	{
		products.GET("/public", h.Products.PublicProducts)
		products.GET("/recommendations", protect, can(auth.CapCustomerSelf), h.Products.Recommendations)
		products.GET("/:id", h.Products.GetProduct)

		admin := products.Group("", protect, can(auth.CapManageCatalog))
		admin.GET("", h.Products.ListProducts)
		admin.POST("", h.Products.CreateProduct)
		admin.PUT("/:id", h.Products.UpdateProduct)
		admin.DELETE("/:id", h.Products.DeleteProduct)
	}

	customers := api.Group("/customers", protect)
	{
		self := customers.Group("", can(auth.CapCustomerSelf))
		self.GET("/me", h.Customers.Me)
		self.PUT("/update-profile", h.Customers.UpdateMe)
		self.PUT("/change-password", h.Auth.ChangePassword)

		admin := customers.Group("", can(auth.CapManageCustomers))
		admin.GET("", h.Customers.List)
		admin.GET("/:id", h.Customers.Get)
		admin.POST("", h.Customers.Create)
		admin.PUT("/:id", h.Customers.Update)
		admin.PUT("/:id/reset-password", h.Customers.ResetPassword)
		admin.PUT("/:id/enable-portal", h.Customers.EnablePortal)
		admin.PUT("/:id/disable-portal", h.Customers.DisablePortal)
		admin.PATCH("/:id/block", h.Customers.Block)
		admin.PATCH("/:id/unblock", h.Customers.Unblock)
		admin.DELETE("/:id", h.Customers.Delete)
		admin.POST("/:id/impersonate", can(auth.CapImpersonate), h.Auth.Impersonate)
	}

	orders := api.Group("/orders", protect)
	{
		orders.POST("", can(auth.CapShop), h.Orders.PlaceOrder)
		orders.GET("/my", can(auth.CapShop), h.Orders.MyOrders)

		admin := orders.Group("", can(auth.CapManageOrders))
		admin.GET("", h.Orders.ListOrders)
		admin.GET("/stats", h.Orders.Stats)
		admin.GET("/:id", h.Orders.GetOrder)
		admin.PUT("/:id", h.Orders.UpdateOrder)
		admin.DELETE("/:id", h.Orders.DeleteOrder)
	}

	cart := api.Group("/cart", protect, can(auth.CapShop))
	{
		cart.POST("", h.Cart.AddItem)
		cart.GET("", h.Cart.GetCart)
		cart.PUT("/:itemId", h.Cart.UpdateItem)
		cart.DELETE("/:itemId", h.Cart.RemoveItem)
	}

	settings := api.Group("/portal-settings")
	{
		settings.GET("", h.Settings.Get)

		admin := settings.Group("", protect, can(auth.CapManageSettings))
		admin.PUT("", h.Settings.Update)
		admin.POST("/upload-logo", h.Settings.UploadLogo)
		admin.POST("/reset", h.Settings.Reset)
	}
}
