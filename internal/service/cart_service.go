package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
)

// intentos de merge/push cuando dos requests agregan el mismo producto a la vez
const maxCartAddAttempts = 3

type CartService struct {
	carts    CartStore
	products ProductStore
}

func NewCartService(carts CartStore, products ProductStore) *CartService {
	return &CartService{carts: carts, products: products}
}

// AddItem suma el producto al carrito. Si ya hay una línea del producto se
// incrementa su cantidad; si no, se agrega con nombre y precio actuales.
func (s *CartService) AddItem(ctx context.Context, userID primitive.ObjectID, input models.AddToCartInput) (*models.Cart, error) {
	productID, err := parseID("productId", input.ProductID)
	if err != nil {
		return nil, err
	}

	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 1 {
		return nil, apperrors.Validation("quantity", "quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperrors.Internal("find product", err)
	}

	added := false
	for attempt := 0; attempt < maxCartAddAttempts && !added; attempt++ {
		merged, err := s.carts.IncrementItem(ctx, userID, productID, quantity)
		if err != nil {
			return nil, apperrors.Internal("merge cart item", err)
		}
		if merged {
			added = true
			break
		}

		added, err = s.carts.PushItem(ctx, userID, models.CartItem{
			ID:        primitive.NewObjectID(),
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Quantity:  quantity,
		})
		if err != nil {
			return nil, apperrors.Internal("add cart item", err)
		}
	}
	if !added {
		return nil, apperrors.Internal("add cart item", errors.New("cart changed concurrently"))
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("load cart", err)
	}
	return cart, nil
}

// GetCart lista las líneas; sin carrito devuelve una lista vacía
func (s *CartService) GetCart(ctx context.Context, userID primitive.ObjectID) ([]models.CartLine, error) {
	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		var notFound *apperrors.NotFoundError
		if errors.As(err, &notFound) {
			return []models.CartLine{}, nil
		}
		return nil, apperrors.Internal("load cart", err)
	}

	lines := make([]models.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, item.Line())
	}
	return lines, nil
}

// UpdateItem fija la cantidad de una línea sin volver a validar stock
func (s *CartService) UpdateItem(ctx context.Context, userID primitive.ObjectID, rawItemID string, quantity int) (*models.CartItem, error) {
	itemID, err := parseID("itemId", rawItemID)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperrors.Validation("quantity", "quantity must be at least 1")
	}

	// distingue carrito inexistente de línea inexistente
	if _, err := s.carts.FindByUser(ctx, userID); err != nil {
		return nil, apperrors.Internal("load cart", err)
	}
	if err := s.carts.SetItemQuantity(ctx, userID, itemID, quantity); err != nil {
		return nil, apperrors.Internal("update cart item", err)
	}

	cart, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("load cart", err)
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			return &cart.Items[i], nil
		}
	}
	// la línea se borró entre el update y la lectura
	return nil, apperrors.NotFound("cart item", rawItemID)
}

// RemoveItem quita una línea; si la línea no existe no hace nada
func (s *CartService) RemoveItem(ctx context.Context, userID primitive.ObjectID, rawItemID string) error {
	itemID, err := parseID("itemId", rawItemID)
	if err != nil {
		return err
	}
	if err := s.carts.PullItem(ctx, userID, itemID); err != nil {
		return apperrors.Internal("remove cart item", err)
	}
	return nil
}
