package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the global session-store client
var Mongo *mongo.Client

// ConnectMongo establishes the connection to the MongoDB session store
func ConnectMongo(cfg *Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	Mongo = client

	log.Printf("✅ Session store connected successfully [%s/%s]", cfg.Mongo.URI, cfg.Mongo.DBName)
	return client.Database(cfg.Mongo.DBName), nil
}

// CloseMongo disconnects the session-store client
func CloseMongo() {
	if Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Mongo.Disconnect(ctx); err != nil {
		log.Printf("❌ Error closing mongodb connection: %v", err)
	}
}
