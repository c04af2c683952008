package repositories

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"queueflow/internal/adapters/persistence/models"
	"queueflow/internal/core/domain"
)

const preferencesCollection = "preferences"

// PreferenceRepository persists per-admin display settings in MongoDB
type PreferenceRepository struct {
	db *mongo.Database
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *mongo.Database) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// Get returns an admin's stored preferences
func (r *PreferenceRepository) Get(ctx context.Context, adminID string) (*domain.Preference, error) {
	var doc models.PreferenceDocument
	err := r.db.Collection(preferencesCollection).FindOne(ctx, bson.M{"_id": adminID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapStoreError("find preferences", err)
	}
	pref := doc.ToDomain()
	return &pref, nil
}

// Upsert stores an admin's preferences, creating the document on first write
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *domain.Preference) error {
	_, err := r.db.Collection(preferencesCollection).UpdateOne(
		ctx,
		bson.M{"_id": pref.AdminID},
		bson.M{"$set": bson.M{
			"theme":     pref.Theme,
			"updatedAt": pref.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return wrapStoreError("upsert preferences", err)
	}
	return nil
}
