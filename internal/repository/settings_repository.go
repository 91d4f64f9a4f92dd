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

// SettingsRepository guarda el documento único de configuración del portal
type SettingsRepository struct {
	collection *mongo.Collection
}

func NewSettingsRepository(collection *mongo.Collection) *SettingsRepository {
	return &SettingsRepository{collection: collection}
}

func (r *SettingsRepository) Get(ctx context.Context) (*models.PortalSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	var settings models.PortalSettings
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&settings); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound("portal settings", "")
		}
		return nil, err
	}
	return &settings, nil
}

// Save inserta o reemplaza el documento
func (r *SettingsRepository) Save(ctx context.Context, settings *models.PortalSettings) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	now := time.Now()
	if settings.ID.IsZero() {
		settings.ID = primitive.NewObjectID()
		settings.CreatedAt = now
	}
	settings.UpdatedAt = now

	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": settings.ID},
		settings,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *SettingsRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}
