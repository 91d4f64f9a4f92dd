package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
)

// CartRepository modifica líneas con operadores posicionales para que dos
// requests del mismo usuario no se pisen el documento completo
type CartRepository struct {
	collection *mongo.Collection
}

func NewCartRepository(collection *mongo.Collection) *CartRepository {
	return &CartRepository{collection: collection}
}

func (r *CartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var cart models.Cart
	if err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("cart", "")
		}
		return nil, err
	}
	return &cart, nil
}

// IncrementItem suma cantidad a la línea del producto si ya existe
func (r *CartRepository) IncrementItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": productID},
		bson.M{
			"$inc": bson.M{"items.$.quantity": quantity},
			"$set": bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// PushItem agrega una línea, creando el carrito si no existe. Devuelve false
// si otra request ya agregó el mismo producto; el llamador debe reintentar
// IncrementItem.
func (r *CartRepository) PushItem(ctx context.Context, userID primitive.ObjectID, item models.CartItem) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}

	// si el carrito existe y ya tiene el producto el filtro no matchea y el
	// upsert choca con el índice único de userId
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "items.productId": bson.M{"$ne": item.ProductID}},
		bson.M{
			"$push": bson.M{"items": item},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		options.Update().SetUpsert(true),
	)
	if isDuplicateKey(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *CartRepository) SetItemQuantity(ctx context.Context, userID, itemID primitive.ObjectID, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "items._id": itemID},
		bson.M{"$set": bson.M{
			"items.$.quantity": quantity,
			"updatedAt":        time.Now(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("cart item", "")
	}
	return nil
}

// PullItem quita la línea; si no estaba en el carrito no hace nada
func (r *CartRepository) PullItem(ctx context.Context, userID, itemID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"_id": itemID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("cart", "")
	}
	return nil
}
