package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
)

type mapCache struct {
	mu    sync.Mutex
	items map[string][]byte
	hits  int
}

func newMapCache() *mapCache {
	return &mapCache{items: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string, target any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.items[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(data, target)
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = data
	return nil
}

func (c *mapCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	return nil
}

func seedCatalog() *fakeProducts {
	return newFakeProducts(
		&models.Product{Name: "Headphones", Price: 199.99, StockQuantity: 75},
		&models.Product{Name: "Laptop", Price: 999.99, StockQuantity: 50},
		&models.Product{Name: "Smartphone", Price: 699.99, StockQuantity: 100},
	)
}

func TestCatalog_PublicProductsPaginates(t *testing.T) {
	svc := NewCatalogService(seedCatalog(), nil)

	page, err := svc.PublicProducts(context.Background(), CatalogParams{Page: 2, Limit: 2})

	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Equal(t, 2, page.CurrentPage)
}

func TestCatalog_PublicProductsCachedUntilMutation(t *testing.T) {
	cache := newMapCache()
	svc := NewCatalogService(seedCatalog(), cache)
	ctx := context.Background()

	_, err := svc.PublicProducts(ctx, CatalogParams{})
	require.NoError(t, err)
	_, err = svc.PublicProducts(ctx, CatalogParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits)

	_, err = svc.CreateProduct(ctx, models.ProductInput{Name: "Tablet", Price: 399.99, StockQuantity: 30}, "")
	require.NoError(t, err)
	assert.Empty(t, cache.items)

	page, err := svc.PublicProducts(ctx, CatalogParams{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), page.Total)
}

func TestCatalog_RecommendationsAll(t *testing.T) {
	svc := NewCatalogService(seedCatalog(), nil)

	page, err := svc.Recommendations(context.Background(), CatalogParams{All: true, Search: "ignored"})

	require.NoError(t, err)
	assert.Len(t, page.Products, 3)
	assert.Equal(t, int64(1), page.TotalPages)
	assert.Equal(t, 1, page.CurrentPage)
}

func TestCatalog_ProductValidation(t *testing.T) {
	svc := NewCatalogService(seedCatalog(), nil)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, models.ProductInput{Name: "  ", Price: 1}, "")
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	negative := -1.0
	_, err = svc.UpdateProduct(ctx, "65f000000000000000000001", models.ProductUpdate{Price: &negative})
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	_, err = svc.GetProduct(ctx, "65f000000000000000000001")
	assert.Equal(t, 404, apperrors.HTTPStatus(err))

	err = svc.DeleteProduct(ctx, "bad")
	assert.Equal(t, 400, apperrors.HTTPStatus(err))
}
