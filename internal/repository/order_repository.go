package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"storefront-api/internal/apperrors"
	"storefront-api/internal/models"
	"storefront-api/internal/service"
)

var defaultOrderSort = bson.D{{Key: "createdAt", Value: -1}}

type OrderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(collection *mongo.Collection) *OrderRepository {
	return &OrderRepository{collection: collection}
}

func (r *OrderRepository) Insert(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, order)
	if isDuplicateKey(err) {
		return service.ErrDuplicateOrderNumber
	}
	return err
}

func (r *OrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var order models.Order
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("order", "")
		}
		return nil, err
	}
	return &order, nil
}

// BuildOrderFilter traduce el filtro de dominio a bson
func BuildOrderFilter(f models.OrderFilter) bson.M {
	filter := bson.M{}

	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.CustomerID != nil {
		filter["customerId"] = *f.CustomerID
	}

	switch {
	case f.ProductIn != nil && f.ProductID != nil:
		filter["$and"] = []bson.M{
			{"items.product": *f.ProductID},
			{"items.product": bson.M{"$in": f.ProductIn}},
		}
	case f.ProductIn != nil:
		filter["items.product"] = bson.M{"$in": f.ProductIn}
	case f.ProductID != nil:
		filter["items.product"] = *f.ProductID
	}

	created := bson.M{}
	if f.StartDate != nil {
		created["$gte"] = *f.StartDate
	}
	if f.EndDate != nil {
		created["$lte"] = *f.EndDate
	}
	if len(created) > 0 {
		filter["createdAt"] = created
	}

	return filter
}

// Find lista pedidos; con page nil no pagina ni cuenta
func (r *OrderRepository) Find(ctx context.Context, f models.OrderFilter, page *models.Page) ([]*models.Order, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	sort, err := ParseSort(f.Sort, defaultOrderSort)
	if err != nil {
		return nil, 0, err
	}

	filter := BuildOrderFilter(f)
	findOptions := options.Find().SetSort(sort)

	var total int64
	g, gctx := errgroup.WithContext(ctx)
	if page != nil {
		findOptions.SetSkip(page.Skip()).SetLimit(int64(page.Size))
		g.Go(func() error {
			var err error
			total, err = r.collection.CountDocuments(gctx, filter)
			return err
		})
	}

	orders := make([]*models.Order, 0)
	g.Go(func() error {
		cursor, err := r.collection.Find(gctx, filter, findOptions)
		if err != nil {
			return err
		}
		defer cursor.Close(gctx)
		return cursor.All(gctx, &orders)
	})

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if page == nil {
		total = int64(len(orders))
	}
	return orders, total, nil
}

// versionFilter fija el documento en la versión leída. Los pedidos heredados
// sin __v cuentan como versión 0.
func versionFilter(id primitive.ObjectID, version int64) bson.M {
	if version == 0 {
		return bson.M{"_id": id, "__v": bson.M{"$in": bson.A{0, nil}}}
	}
	return bson.M{"_id": id, "__v": version}
}

// Replace persiste el documento completo si nadie lo modificó desde que se
// leyó, e incrementa la versión
func (r *OrderRepository) Replace(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	next := *order
	next.Version = order.Version + 1
	result, err := r.collection.ReplaceOne(ctx, versionFilter(order.ID, order.Version), &next)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.missingOrModified(ctx, order.ID)
	}
	order.Version = next.Version
	return nil
}

// Delete borra el pedido solo si sigue en la versión leída
func (r *OrderRepository) Delete(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, versionFilter(order.ID, order.Version))
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return r.missingOrModified(ctx, order.ID)
	}
	return nil
}

func (r *OrderRepository) missingOrModified(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("order", "")
	}
	return service.ErrOrderModified
}

func (r *OrderRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()
	return r.collection.CountDocuments(ctx, bson.M{})
}

// HighestOrderSequence recorre los números ORDnnnn y devuelve el mayor. Se
// compara numéricamente porque ORD10000 ordena antes que ORD9999 como texto.
func (r *OrderRepository) HighestOrderSequence(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	digits := bson.D{{Key: "$substrCP", Value: bson.A{
		"$orderNumber", 3,
		bson.D{{Key: "$subtract", Value: bson.A{bson.D{{Key: "$strLenCP", Value: "$orderNumber"}}, 3}}},
	}}}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"orderNumber": bson.M{"$regex": `^ORD[0-9]+$`}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "max", Value: bson.D{{Key: "$max", Value: bson.D{{Key: "$toLong", Value: digits}}}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Max int64 `bson:"max"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Max, nil
}

// Stats agrupa cantidad e importe por estado, más los totales generales
func (r *OrderRepository) Stats(ctx context.Context) (*models.OrderStats, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stats := &models.OrderStats{StatusBreakdown: []models.StatusBreakdown{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		pipeline := mongo.Pipeline{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: "$status"},
				{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
				{Key: "totalAmount", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
			}}},
			{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		}
		cursor, err := r.collection.Aggregate(gctx, pipeline)
		if err != nil {
			return err
		}
		defer cursor.Close(gctx)
		return cursor.All(gctx, &stats.StatusBreakdown)
	})

	g.Go(func() error {
		var err error
		stats.TotalOrders, err = r.collection.CountDocuments(gctx, bson.M{})
		return err
	})

	g.Go(func() error {
		pipeline := mongo.Pipeline{
			{{Key: "$group", Value: bson.D{
				{Key: "_id", Value: nil},
				{Key: "total", Value: bson.D{{Key: "$sum", Value: "$totalAmount"}}},
			}}},
		}
		cursor, err := r.collection.Aggregate(gctx, pipeline)
		if err != nil {
			return err
		}
		defer cursor.Close(gctx)

		var rows []struct {
			Total float64 `bson:"total"`
		}
		if err := cursor.All(gctx, &rows); err != nil {
			return err
		}
		if len(rows) > 0 {
			stats.TotalRevenue = rows[0].Total
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
