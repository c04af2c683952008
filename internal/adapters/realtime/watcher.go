package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"queueflow/internal/core/domain"
	"queueflow/internal/core/services"
)

// SnapshotSource fetches the authoritative queue state for snapshot delivery
type SnapshotSource interface {
	Waitlist(ctx context.Context, queueID string) ([]domain.Ticket, error)
}

// DurationSource fetches the recent service durations feeding the estimator
type DurationSource interface {
	RecentDurations(ctx context.Context, queueID string, limit int) ([]float64, error)
}

// CancelFunc tears a subscription down
type CancelFunc func()

// Watcher hands out snapshot subscriptions for individual queues
type Watcher struct {
	client    *redis.Client
	snapshots SnapshotSource
	durations DurationSource
}

// NewWatcher creates a new watcher
func NewWatcher(client *redis.Client, snapshots SnapshotSource, durations DurationSource) *Watcher {
	return &Watcher{client: client, snapshots: snapshots, durations: durations}
}

// WatchQueue subscribes to a queue and returns a stream of full snapshots
// plus a cancel function. One snapshot is delivered immediately so new
// subscribers do not wait for the next mutation; afterwards every published
// event triggers a refetch. Transient refetch failures are logged and
// skipped, the subscription keeps running. Delivery is at-least-once;
// consumers must be edge-triggered for notifications.
func (w *Watcher) WatchQueue(ctx context.Context, queueID string) (<-chan domain.QueueSnapshot, CancelFunc, error) {
	pubsub := w.client.Subscribe(ctx, channelFor(queueID))
	// Confirm the subscription before the initial snapshot, so no event
	// falls between the two.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	out := make(chan domain.QueueSnapshot, 1)

	go w.run(watchCtx, queueID, pubsub, out)

	return out, func() {
		cancel()
		pubsub.Close()
	}, nil
}

func (w *Watcher) run(ctx context.Context, queueID string, pubsub *redis.PubSub, out chan<- domain.QueueSnapshot) {
	defer close(out)

	if snap, ok := w.fetch(ctx, queueID, false); ok {
		if !deliver(ctx, out, snap) {
			return
		}
	}

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, open := <-msgs:
			if !open {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("⚠️ Dropping malformed queue event: %v", err)
				continue
			}
			if event.Kind == services.EventQueueDeleted {
				deliver(ctx, out, domain.QueueSnapshot{
					QueueID:      queueID,
					QueueDeleted: true,
					ReceivedAt:   time.Now(),
				})
				return
			}
			snap, ok := w.fetch(ctx, queueID, event.Kind == services.EventHistory)
			if !ok {
				continue
			}
			if !deliver(ctx, out, snap) {
				return
			}
		}
	}
}

// fetch rebuilds a full snapshot from the store. Returns false on a
// transient store failure; the caller skips the delivery and keeps watching.
func (w *Watcher) fetch(ctx context.Context, queueID string, includeHistory bool) (domain.QueueSnapshot, bool) {
	tickets, err := w.snapshots.Waitlist(ctx, queueID)
	if err != nil {
		log.Printf("⚠️ Snapshot refetch failed for queue %s: %v", queueID, err)
		return domain.QueueSnapshot{}, false
	}

	snap := domain.QueueSnapshot{
		QueueID:    queueID,
		Tickets:    tickets,
		ReceivedAt: time.Now(),
	}

	if includeHistory {
		durations, err := w.durations.RecentDurations(ctx, queueID, services.DefaultHistoryLimit)
		if err != nil {
			log.Printf("⚠️ History refetch failed for queue %s: %v", queueID, err)
		} else {
			snap.RecentDurations = durations
		}
	}
	return snap, true
}

// deliver pushes a snapshot unless the subscription is gone. A slow consumer
// blocks its own stream only; each subscriber owns an independent channel.
func deliver(ctx context.Context, out chan<- domain.QueueSnapshot, snap domain.QueueSnapshot) bool {
	select {
	case <-ctx.Done():
		return false
	case out <- snap:
		return true
	}
}
