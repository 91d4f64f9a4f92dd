package main

import (
	"context"
	"errors"
	"log"

	"go.uber.org/zap"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/config"
	"storefront-api/internal/database"
	"storefront-api/internal/logger"
	"storefront-api/internal/models"
	"storefront-api/internal/repository"
	"storefront-api/internal/service"
)

type seedUser struct {
	FirstName, LastName, Email, Password string
	Role                                 models.Role
}

var seedUsers = []seedUser{
	{"Admin", "User", "admin@example.com", "admin123", models.RoleAdmin},
	{"John", "Doe", "john@example.com", "password123", models.RoleCustomer},
	{"Jane", "Smith", "jane@example.com", "password123", models.RoleCustomer},
	{"Alice", "Johnson", "alice@example.com", "password123", models.RoleCustomer},
}

var seedProducts = []models.Product{
	{Name: "Laptop", Description: "High-performance laptop for work and gaming", Price: 999.99, StockQuantity: 50, Image: "laptop.jpg"},
	{Name: "Smartphone", Description: "Latest smartphone with advanced features", Price: 699.99, StockQuantity: 100, Image: "smartphone.jpg"},
	{Name: "Headphones", Description: "Wireless noise-canceling headphones", Price: 199.99, StockQuantity: 75, Image: "headphones.jpg"},
	{Name: "Tablet", Description: "10-inch tablet perfect for entertainment", Price: 399.99, StockQuantity: 30, Image: "tablet.jpg"},
	{Name: "Smartwatch", Description: "Fitness tracking smartwatch", Price: 299.99, StockQuantity: 60, Image: "smartwatch.jpg"},
}

type seeder struct {
	users    service.UserStore
	products service.ProductStore
	settings service.SettingsStore
	log      *zap.Logger
}

func main() {
	cfg := config.LoadConfig()
	zapLog, err := logger.Init(cfg.LogLevel, cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	ctx := context.Background()
	client, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
	if err != nil {
		zapLog.Fatal("❌ MongoDB connection failed", zap.Error(err))
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		zapLog.Fatal("❌ Could not create indexes", zap.Error(err))
	}

	s := seeder{
		users:    repository.NewUserRepository(db.Collection(database.UsersCollection)),
		products: repository.NewProductRepository(db.Collection(database.ProductsCollection)),
		settings: repository.NewSettingsRepository(db.Collection(database.SettingsCollection)),
		log:      zapLog,
	}

	zapLog.Info("🌱 Starting database seeding...")
	if err := s.run(ctx); err != nil {
		zapLog.Fatal("❌ Seeding failed", zap.Error(err))
	}
	zapLog.Info("✅ Database seeding completed successfully!",
		zap.String("admin", "admin@example.com / admin123"),
		zap.String("customer", "john@example.com / password123"))
}

func (s seeder) run(ctx context.Context) error {
	for _, u := range seedUsers {
		if err := s.seedUser(ctx, u); err != nil {
			return err
		}
	}
	for _, p := range seedProducts {
		if err := s.seedProduct(ctx, p); err != nil {
			return err
		}
	}
	return s.seedSettings(ctx)
}

func (s seeder) seedUser(ctx context.Context, u seedUser) error {
	_, err := s.users.FindByEmail(ctx, u.Email)
	if err == nil {
		s.log.Info("ℹ️ User already exists", zap.String("email", u.Email))
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	user := &models.User{
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Email:           u.Email,
		Role:            u.Role,
		HasPortalAccess: true,
	}
	if err := user.SetPassword(u.Password); err != nil {
		return err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}
	s.log.Info("✅ User created", zap.String("email", u.Email), zap.String("role", string(u.Role)))
	return nil
}

func (s seeder) seedProduct(ctx context.Context, p models.Product) error {
	existing, err := s.products.FindIDsByName(ctx, p.Name)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		s.log.Info("ℹ️ Product already exists", zap.String("name", p.Name))
		return nil
	}

	if err := s.products.Create(ctx, &p); err != nil {
		return err
	}
	s.log.Info("✅ Product created", zap.String("name", p.Name))
	return nil
}

func (s seeder) seedSettings(ctx context.Context) error {
	_, err := s.settings.Get(ctx)
	if err == nil {
		s.log.Info("✅ Portal settings already exist")
		return nil
	}
	if !isNotFound(err) {
		return err
	}

	settings := models.DefaultPortalSettings()
	settings.CustomHTMLBlock = "<h3>Welcome to our store!</h3><p>Find the best products at great prices.</p>"
	if err := s.settings.Save(ctx, &settings); err != nil {
		return err
	}
	s.log.Info("✅ Portal settings created")
	return nil
}

func isNotFound(err error) bool {
	var notFound *apperrors.NotFoundError
	return errors.As(err, &notFound)
}
