package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"queueflow/internal/adapters/persistence/models"
	"queueflow/internal/core/domain"
)

const historyCollection = "history"

// HistoryRepository persists the append-only completed-service log in MongoDB
type HistoryRepository struct {
	db *mongo.Database
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *mongo.Database) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts one history record. Records are never updated afterwards.
func (r *HistoryRepository) Append(ctx context.Context, record *domain.HistoryRecord) error {
	doc := models.HistoryDocumentFrom(*record)
	if _, err := r.db.Collection(historyCollection).InsertOne(ctx, doc); err != nil {
		return wrapStoreError("append history", err)
	}
	return nil
}

// RecentByQueue returns up to limit records for a queue, most recent first
func (r *HistoryRepository) RecentByQueue(ctx context.Context, queueID string, limit int) ([]domain.HistoryRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := r.db.Collection(historyCollection).Find(ctx, bson.M{"queueId": queueID}, opts)
	if err != nil {
		return nil, wrapStoreError("list history", err)
	}
	defer cursor.Close(ctx)

	var docs []models.HistoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapStoreError("decode history", err)
	}

	records := make([]domain.HistoryRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.ToDomain())
	}
	return records, nil
}

// ListByQueue returns one page of records newest-first
func (r *HistoryRepository) ListByQueue(ctx context.Context, queueID string, offset, limit int) ([]domain.HistoryRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "completedAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	cursor, err := r.db.Collection(historyCollection).Find(ctx, bson.M{"queueId": queueID}, opts)
	if err != nil {
		return nil, wrapStoreError("page history", err)
	}
	defer cursor.Close(ctx)

	var docs []models.HistoryDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapStoreError("decode history", err)
	}

	records := make([]domain.HistoryRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.ToDomain())
	}
	return records, nil
}

// CountByQueue returns how many records a queue has accumulated
func (r *HistoryRepository) CountByQueue(ctx context.Context, queueID string) (int64, error) {
	total, err := r.db.Collection(historyCollection).CountDocuments(ctx, bson.M{"queueId": queueID})
	if err != nil {
		return 0, wrapStoreError("count history", err)
	}
	return total, nil
}

// DeleteByQueue removes a queue's history (cascade on queue deletion, the
// one sanctioned exception to append-only)
func (r *HistoryRepository) DeleteByQueue(ctx context.Context, queueID string) error {
	if _, err := r.db.Collection(historyCollection).DeleteMany(ctx, bson.M{"queueId": queueID}); err != nil {
		return wrapStoreError("delete history", err)
	}
	return nil
}
