// Package realtime implements the watch primitive over the session store:
// mutations publish compact change events to a per-queue Redis channel, and
// subscribers turn each event into a freshly fetched full snapshot of the
// queue's waitlist. Consumers recompute all derived values from scratch on
// every snapshot, so duplicate or out-of-order deliveries are harmless.
package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is the wire format published on queue channels. It carries no
// document data: subscribers refetch the authoritative state from the store.
type Event struct {
	QueueID string    `json:"queue_id"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
}

func channelFor(queueID string) string {
	return "queueflow:queue:" + queueID
}

// Publisher fans queue change events out over Redis pub/sub
type Publisher struct {
	client *redis.Client
}

// NewPublisher creates a new event publisher
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// QueueChanged publishes a change event for a queue. The store mutation has
// already committed; a lost event degrades liveness, not correctness, so
// failures are logged and swallowed.
func (p *Publisher) QueueChanged(ctx context.Context, queueID string, kind string) {
	payload, err := json.Marshal(Event{QueueID: queueID, Kind: kind, At: time.Now()})
	if err != nil {
		log.Printf("⚠️ Failed to marshal queue event: %v", err)
		return
	}
	if err := p.client.Publish(ctx, channelFor(queueID), payload).Err(); err != nil {
		log.Printf("⚠️ Failed to publish %s event for queue %s: %v", kind, queueID, err)
	}
}
