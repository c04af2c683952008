package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"queueflow/internal/adapters/persistence/models"
	"queueflow/internal/core/domain"
)

const waitlistCollection = "waitlist"

// WaitlistRepository persists tickets in MongoDB
type WaitlistRepository struct {
	db *mongo.Database
}

// NewWaitlistRepository creates a new waitlist repository
func NewWaitlistRepository(db *mongo.Database) *WaitlistRepository {
	return &WaitlistRepository{db: db}
}

// Create inserts a new ticket document
func (r *WaitlistRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	doc := models.TicketDocumentFrom(*ticket)
	if _, err := r.db.Collection(waitlistCollection).InsertOne(ctx, doc); err != nil {
		return wrapStoreError("insert ticket", err)
	}
	return nil
}

// GetByID returns a ticket scoped to its queue
func (r *WaitlistRepository) GetByID(ctx context.Context, queueID, ticketID string) (*domain.Ticket, error) {
	var doc models.TicketDocument
	err := r.db.Collection(waitlistCollection).
		FindOne(ctx, bson.M{"_id": ticketID, "queueId": queueID}).
		Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTicketNotFound
		}
		return nil, wrapStoreError("find ticket", err)
	}
	ticket := doc.ToDomain()
	return &ticket, nil
}

// ListByQueue returns a queue's tickets ordered by arrival
func (r *WaitlistRepository) ListByQueue(ctx context.Context, queueID string) ([]domain.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "joinedAt", Value: 1}})
	cursor, err := r.db.Collection(waitlistCollection).Find(ctx, bson.M{"queueId": queueID}, opts)
	if err != nil {
		return nil, wrapStoreError("list waitlist", err)
	}
	defer cursor.Close(ctx)

	var docs []models.TicketDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, wrapStoreError("decode waitlist", err)
	}

	tickets := make([]domain.Ticket, 0, len(docs))
	for _, d := range docs {
		tickets = append(tickets, d.ToDomain())
	}
	return tickets, nil
}

// MarkCalled transitions a ticket waiting→called and stamps calledAt, in one
// conditional update. The status filter makes the transition one-way even
// when two administrators race: the loser sees ErrAlreadyCalled and calledAt
// keeps its first value.
func (r *WaitlistRepository) MarkCalled(ctx context.Context, queueID, ticketID string) (*domain.Ticket, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.TicketDocument
	err := r.db.Collection(waitlistCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": ticketID, "queueId": queueID, "status": string(domain.StatusWaiting)},
		bson.M{"$set": bson.M{
			"status":   string(domain.StatusCalled),
			"calledAt": time.Now(),
		}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Either the ticket is gone or it is no longer waiting
			if _, getErr := r.GetByID(ctx, queueID, ticketID); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrAlreadyCalled
		}
		return nil, wrapStoreError("mark ticket called", err)
	}
	ticket := doc.ToDomain()
	return &ticket, nil
}

// Delete removes a ticket. A zero match count maps to ErrTicketNotFound so
// racing removals (customer leave vs admin complete) resolve to exactly one
// winner and one benign no-op.
func (r *WaitlistRepository) Delete(ctx context.Context, queueID, ticketID string) error {
	result, err := r.db.Collection(waitlistCollection).
		DeleteOne(ctx, bson.M{"_id": ticketID, "queueId": queueID})
	if err != nil {
		return wrapStoreError("delete ticket", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

// DeleteByQueue removes all tickets of a queue (cascade on queue deletion)
func (r *WaitlistRepository) DeleteByQueue(ctx context.Context, queueID string) error {
	if _, err := r.db.Collection(waitlistCollection).DeleteMany(ctx, bson.M{"queueId": queueID}); err != nil {
		return wrapStoreError("delete waitlist", err)
	}
	return nil
}
