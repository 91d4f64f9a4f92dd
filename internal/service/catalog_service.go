package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/logger"
	"storefront-api/internal/models"
)

const catalogCachePrefix = "products:"

// CatalogParams son los parámetros crudos de los listados de productos.
// All=true devuelve el catálogo completo sin paginar.
type CatalogParams struct {
	Search string
	Sort   string
	Page   int
	Limit  int
	All    bool
}

type ProductPage struct {
	Products    []*models.Product `json:"products"`
	Total       int64             `json:"total"`
	TotalPages  int64             `json:"totalPages"`
	CurrentPage int               `json:"currentPage"`
}

type CatalogService struct {
	products ProductStore
	cache    CatalogCache
}

func NewCatalogService(products ProductStore, cache CatalogCache) *CatalogService {
	if cache == nil {
		cache = nopCache{}
	}
	return &CatalogService{products: products, cache: cache}
}

func (s *CatalogService) list(ctx context.Context, params CatalogParams) (*ProductPage, error) {
	query := ProductQuery{Search: strings.TrimSpace(params.Search), Sort: params.Sort}

	var page models.Page
	if !params.All {
		page = models.NewPage(params.Page, params.Limit, defaultProductPageSize)
		query.Page = &page
	}

	products, total, err := s.products.List(ctx, query)
	if err != nil {
		return nil, apperrors.Internal("list products", err)
	}
	if products == nil {
		products = []*models.Product{}
	}

	if params.All {
		return &ProductPage{Products: products, Total: total, TotalPages: 1, CurrentPage: 1}, nil
	}
	return &ProductPage{
		Products:    products,
		Total:       total,
		TotalPages:  models.TotalPages(total, page.Size),
		CurrentPage: page.Number,
	}, nil
}

// cachedList sirve listados públicos desde cache; cualquier cambio de
// producto o stock invalida el prefijo completo
func (s *CatalogService) cachedList(ctx context.Context, kind string, params CatalogParams) (*ProductPage, error) {
	key := fmt.Sprintf("%s%s:%s:%s:%d:%d:%t", catalogCachePrefix, kind,
		params.Search, params.Sort, params.Page, params.Limit, params.All)
	log := logger.FromContext(ctx)

	var cached ProductPage
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	result, err := s.list(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, result); err != nil {
		log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// PublicProducts es el listado del portal de clientes
func (s *CatalogService) PublicProducts(ctx context.Context, params CatalogParams) (*ProductPage, error) {
	return s.cachedList(ctx, "public", params)
}

// Recommendations lista productos recientes; All ignora la paginación
func (s *CatalogService) Recommendations(ctx context.Context, params CatalogParams) (*ProductPage, error) {
	params.Search = ""
	params.Sort = ""
	return s.cachedList(ctx, "recommendations", params)
}

// AdminProducts no usa cache para que el panel vea el stock exacto
func (s *CatalogService) AdminProducts(ctx context.Context, params CatalogParams) (*ProductPage, error) {
	return s.list(ctx, params)
}

func (s *CatalogService) GetProduct(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("find product", err)
	}
	return product, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, input models.ProductInput, image string) (*models.Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.Validation("name", "name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.Validation("price", "price cannot be negative")
	}
	if input.StockQuantity < 0 {
		return nil, apperrors.Validation("stock_quantity", "stock quantity cannot be negative")
	}

	product := &models.Product{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Image:         image,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, apperrors.Internal("create product", err)
	}

	s.invalidate(ctx)
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, rawID string, update models.ProductUpdate) (*models.Product, error) {
	id, err := parseID("id", rawID)
	if err != nil {
		return nil, err
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, apperrors.Validation("name", "name cannot be empty")
	}
	if update.Price != nil && *update.Price < 0 {
		return nil, apperrors.Validation("price", "price cannot be negative")
	}
	if update.StockQuantity != nil && *update.StockQuantity < 0 {
		return nil, apperrors.Validation("stock_quantity", "stock quantity cannot be negative")
	}

	product, err := s.products.Update(ctx, id, update)
	if err != nil {
		return nil, apperrors.Internal("update product", err)
	}

	s.invalidate(ctx)
	return product, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := parseID("id", rawID)
	if err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return apperrors.Internal("delete product", err)
	}

	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.cache.DeleteByPrefix(ctx, catalogCachePrefix); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}
