package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

var defaultProductSort = bson.D{{Key: "created_at", Value: -1}}

type ProductRepository struct {
	collection *mongo.Collection
}

func NewProductRepository(collection *mongo.Collection) *ProductRepository {
	return &ProductRepository{
		collection: collection,
	}
}

// Create crea un nuevo producto
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, product)
	return err
}

// FindByID obtiene un producto por ID
func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var product models.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("product", id.Hex())
		}
		return nil, err
	}

	return &product, nil
}

// FindByIDs obtiene varios productos; los inexistentes se omiten
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []*models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FindIDsByName devuelve los IDs cuyo nombre contiene el término
func (r *ProductRepository) FindIDsByName(ctx context.Context, term string) ([]primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	raw, err := r.collection.Distinct(ctx, "_id", bson.M{"name": containsPattern(term)})
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// List lista productos con búsqueda, orden y paginación opcional
func (r *ProductRepository) List(ctx context.Context, query service.ProductQuery) ([]*models.Product, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	sort, err := ParseSort(query.Sort, defaultProductSort)
	if err != nil {
		return nil, 0, err
	}

	filter := bson.M{}
	if query.Search != "" {
		filter["$or"] = []bson.M{
			{"name": containsPattern(query.Search)},
			{"description": containsPattern(query.Search)},
		}
	}

	findOptions := options.Find().SetSort(sort)
	if query.Page != nil {
		findOptions.SetSkip(query.Page.Skip()).SetLimit(int64(query.Page.Size))
	}

	// Contar total en paralelo
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = r.collection.CountDocuments(gctx, filter)
		return err
	})

	var products []*models.Product
	g.Go(func() error {
		cursor, err := r.collection.Find(gctx, filter, findOptions)
		if err != nil {
			return err
		}
		defer cursor.Close(gctx)
		return cursor.All(gctx, &products)
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Update actualiza parcialmente un producto y devuelve la versión nueva
func (r *ProductRepository) Update(ctx context.Context, id primitive.ObjectID, update models.ProductUpdate) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.StockQuantity != nil {
		set["stock_quantity"] = *update.StockQuantity
	}
	if update.Image != nil {
		set["image"] = *update.Image
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("product", id.Hex())
		}
		return nil, err
	}
	return &product, nil
}

// Delete elimina un producto
func (r *ProductRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.NotFound("product", id.Hex())
	}
	return nil
}

// Reserve descuenta stock de forma atómica: el filtro exige stock suficiente,
// así dos pedidos concurrentes nunca dejan el stock en negativo
func (r *ProductRepository) Reserve(ctx context.Context, id primitive.ObjectID, quantity int) (*models.Product, error) {
	if quantity < 1 {
		return nil, apperrors.Validation("quantity", "quantity must be at least 1")
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	filter := bson.M{
		"_id":            id,
		"stock_quantity": bson.M{"$gte": quantity},
	}
	update := bson.M{
		"$inc": bson.M{"stock_quantity": -quantity},
		"$set": bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := r.collection.FindOneAndUpdate(writeCtx, filter, update, opts).Decode(&product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Nada coincidió: o no existe o no alcanza el stock
	current, findErr := r.FindByID(ctx, id)
	if findErr != nil {
		return nil, findErr
	}
	return nil, &apperrors.InsufficientStockError{
		ProductID:   id.Hex(),
		ProductName: current.Name,
		Requested:   quantity,
		Available:   current.StockQuantity,
	}
}

// Release devuelve stock reservado
func (r *ProductRepository) Release(ctx context.Context, id primitive.ObjectID, quantity int) error {
	if quantity < 1 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$inc": bson.M{"stock_quantity": quantity},
			"$set": bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return fmt.Errorf("release stock for %s: %w", id.Hex(), err)
	}
	if result.MatchedCount == 0 {
		return apperrors.NotFound("product", id.Hex())
	}
	return nil
}
