package cache

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"storefront-api/internal/service"
)

// Store es un caché de catálogo que además se puede cerrar
type Store interface {
	service.CatalogCache
	io.Closer
}

var (
	_ Store = (*Memory)(nil)
	_ Store = (*Redis)(nil)
)

// New usa Redis si hay URL; si no, o si Redis no responde, un caché en memoria
func New(ctx context.Context, redisURL string, ttl time.Duration, log *zap.Logger) Store {
	if redisURL != "" {
		r, err := NewRedis(ctx, redisURL, ttl)
		if err == nil {
			log.Info("✅ Using Redis catalog cache")
			return r
		}
		log.Warn("⚠️ Redis unavailable, falling back to in-memory cache", zap.Error(err))
	}
	return NewMemory(ttl, 5*time.Minute)
}
