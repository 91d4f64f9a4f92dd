package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"storefront-api/internal/auth"
	"storefront-api/internal/cache"
	"storefront-api/internal/config"
	"storefront-api/internal/database"
	"storefront-api/internal/events"
	"storefront-api/internal/handlers"
	"storefront-api/internal/logger"
	"storefront-api/internal/metrics"
	"storefront-api/internal/repository"
	"storefront-api/internal/routes"
	"storefront-api/internal/service"
	"storefront-api/internal/upload"
)

type publisher interface {
	service.EventPublisher
	Close() error
}

func main() {
	cfg := config.LoadConfig()

	zapLog, err := logger.Init(cfg.LogLevel, cfg.Server.Env)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	if err := run(cfg, zapLog); err != nil {
		zapLog.Fatal("❌ Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLog *zap.Logger) error {
	zapLog.Info("🚀 Starting storefront-api", cfg.LogFields()...)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			zapLog.Warn("mongodb disconnect failed", zap.Error(err))
		}
	}()

	db := client.Database(cfg.Mongo.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpirationHours)*time.Hour)
	if err != nil {
		return err
	}

	images, err := upload.NewSaver(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		return err
	}

	catalogCache := cache.New(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL, zapLog)
	defer catalogCache.Close()

	orderEvents := newPublisher(cfg, zapLog)
	defer orderEvents.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New("storefront", registry)

	// Repositorios
	products := repository.NewProductRepository(db.Collection(database.ProductsCollection))
	orders := repository.NewOrderRepository(db.Collection(database.OrdersCollection))
	counters := repository.NewCounterRepository(db.Collection(database.CountersCollection))
	carts := repository.NewCartRepository(db.Collection(database.CartsCollection))
	users := repository.NewUserRepository(db.Collection(database.UsersCollection))
	settingsRepo := repository.NewSettingsRepository(db.Collection(database.SettingsCollection))

	// Servicios
	settingsService := service.NewSettingsService(settingsRepo)
	authService := service.NewAuthService(users, tokens, settingsService, cfg.JWT.ImpersonationTTL)
	orderService := service.NewOrderService(service.OrderDeps{
		Products: products,
		Orders:   orders,
		Counters: counters,
		Users:    users,
		Events:   orderEvents,
		Cache:    catalogCache,
		Recorder: appMetrics,
	})

	if err := orderService.SyncOrderSequence(ctx); err != nil {
		return err
	}

	router := routes.NewRouter(routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Products:  handlers.NewProductHandler(service.NewCatalogService(products, catalogCache), images),
		Orders:    handlers.NewOrderHandler(orderService),
		Cart:      handlers.NewCartHandler(service.NewCartService(carts, products)),
		Customers: handlers.NewCustomerHandler(service.NewCustomerService(users), authService),
		Settings:  handlers.NewSettingsHandler(settingsService, images),
		Health:    handlers.NewHealthHandler(mongoPinger(client)),
	}, routes.Options{
		Logger:        zapLog,
		Authenticator: authService,
		Metrics:       appMetrics,
		UploadDir:     cfg.Upload.Dir,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLog.Info("🚀 Server running", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	zapLog.Info("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	zapLog.Info("✅ Server exited properly")
	return nil
}

// newPublisher usa Kafka si hay brokers configurados; si no, solo registra los eventos
func newPublisher(cfg *config.Config, zapLog *zap.Logger) publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		zapLog.Info("🌐 KAFKA_BROKERS not set, order events go to the log")
		return events.NewLogPublisher(zapLog)
	}

	if err := events.CreateTopics(cfg.Kafka.Brokers[0], events.Topics(cfg.Kafka.TopicPrefix)); err != nil {
		zapLog.Warn("⚠️ Could not create Kafka topics", zap.Error(err))
	}
	zapLog.Info("✅ Publishing order events to Kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic_prefix", cfg.Kafka.TopicPrefix))
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
}

func mongoPinger(client *mongo.Client) handlers.PingerFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx, nil)
	}
}
