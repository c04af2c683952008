package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureIndexes creates the indexes backing the store's query contract:
// queues by owner newest-first, waitlists in arrival order, history
// newest-first with a limit.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(queuesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return wrapStoreError("ensure queue indexes", err)
	}

	_, err = db.Collection(waitlistCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "queueId", Value: 1}, {Key: "joinedAt", Value: 1}},
	})
	if err != nil {
		return wrapStoreError("ensure waitlist indexes", err)
	}

	_, err = db.Collection(historyCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "queueId", Value: 1}, {Key: "completedAt", Value: -1}},
	})
	if err != nil {
		return wrapStoreError("ensure history indexes", err)
	}

	return nil
}
