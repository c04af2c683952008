package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"queueflow/internal/adapters/persistence/models"
	"queueflow/internal/core/domain"
)

const queuesCollection = "queues"

// QueueRepository persists queues in MongoDB
type QueueRepository struct {
	db *mongo.Database
}

// NewQueueRepository creates a new queue repository
func NewQueueRepository(db *mongo.Database) *QueueRepository {
	return &QueueRepository{db: db}
}

// Create inserts a new queue document
func (r *QueueRepository) Create(ctx context.Context, queue *domain.Queue) error {
	doc := models.QueueDocumentFrom(*queue)
	if _, err := r.db.Collection(queuesCollection).InsertOne(ctx, doc); err != nil {
		return wrapStoreError("insert queue", err)
	}
	return nil
}

// GetByID returns a queue by id
func (r *QueueRepository) GetByID(ctx context.Context, queueID string) (*domain.Queue, error) {
	var doc models.QueueDocument
	err := r.db.Collection(queuesCollection).FindOne(ctx, bson.M{"_id": queueID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQueueNotFound
		}
		return nil, wrapStoreError("find queue", err)
	}
	queue := doc.ToDomain()
	return &queue, nil
}

// ListByOwner returns an owner's queues ordered by creation time descending
func (r *QueueRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Queue, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.db.Collection(queuesCollection).Find(ctx, bson.M{"ownerId": ownerID}, opts)
	if err != nil {
		return nil, wrapStoreError("list queues", err)
	}
	defer cursor.Close(ctx)

	var docs []models.QueueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapStoreError("decode queues", err)
	}

	queues := make([]domain.Queue, 0, len(docs))
	for _, d := range docs {
		queues = append(queues, d.ToDomain())
	}
	return queues, nil
}

// NextTokenNumber atomically advances the queue's lifetime ticket counter and
// returns the resulting token. $inc on a single document makes concurrent
// joins collision-free, and because the counter counts every ticket ever
// issued, tokens are never reused after removals.
func (r *QueueRepository) NextTokenNumber(ctx context.Context, queueID string) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.QueueDocument
	err := r.db.Collection(queuesCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": queueID},
		bson.M{"$inc": bson.M{"ticketSeq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrQueueNotFound
		}
		return 0, wrapStoreError("advance ticket counter", err)
	}
	return int(doc.TicketSeq), nil
}

// Delete removes a queue document. Deleting an already-deleted queue returns
// domain.ErrQueueNotFound, which callers treat as benign.
func (r *QueueRepository) Delete(ctx context.Context, queueID string) error {
	result, err := r.db.Collection(queuesCollection).DeleteOne(ctx, bson.M{"_id": queueID})
	if err != nil {
		return wrapStoreError("delete queue", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrQueueNotFound
	}
	return nil
}

// wrapStoreError folds a driver error into the domain taxonomy while keeping
// the operation context for the logs.
func wrapStoreError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStore, op, err)
}
