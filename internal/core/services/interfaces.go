package services

import (
	"context"

	"queueflow/internal/core/domain"
)

// Note: QueueService implementation is in queue_service.go
// Note: HistoryService implementation is in history_service.go
// Note: EstimatorService implementation is in estimator_service.go

// QueueRepository persists queues in the session store
type QueueRepository interface {
	Create(ctx context.Context, queue *domain.Queue) error
	GetByID(ctx context.Context, queueID string) (*domain.Queue, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Queue, error)
	// NextTokenNumber atomically advances the queue's lifetime ticket counter
	// and returns the token for the joining customer. The counter never
	// decreases, so tokens are unique even after removals.
	NextTokenNumber(ctx context.Context, queueID string) (int, error)
	Delete(ctx context.Context, queueID string) error
}

// WaitlistRepository persists tickets within a queue
type WaitlistRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, queueID, ticketID string) (*domain.Ticket, error)
	ListByQueue(ctx context.Context, queueID string) ([]domain.Ticket, error)
	MarkCalled(ctx context.Context, queueID, ticketID string) (*domain.Ticket, error)
	// Delete returns domain.ErrTicketNotFound when the ticket is already
	// gone, so racing removals resolve to exactly one winner.
	Delete(ctx context.Context, queueID, ticketID string) error
	DeleteByQueue(ctx context.Context, queueID string) error
}

// HistoryRepository persists the append-only completed-service log
type HistoryRepository interface {
	Append(ctx context.Context, record *domain.HistoryRecord) error
	RecentByQueue(ctx context.Context, queueID string, limit int) ([]domain.HistoryRecord, error)
	// ListByQueue pages through records newest-first
	ListByQueue(ctx context.Context, queueID string, offset, limit int) ([]domain.HistoryRecord, error)
	CountByQueue(ctx context.Context, queueID string) (int64, error)
	DeleteByQueue(ctx context.Context, queueID string) error
}

// PreferenceRepository persists administrator display settings
type PreferenceRepository interface {
	Get(ctx context.Context, adminID string) (*domain.Preference, error)
	Upsert(ctx context.Context, pref *domain.Preference) error
}

// Estimator predicts total wait time from recent service durations and queue
// depth. Implementations live behind the adapter boundary; any failure or
// contract deviation must return domain.ErrEstimator.
type Estimator interface {
	Estimate(ctx context.Context, recentDurations []float64, positionDepth int) (domain.Estimate, error)
}

// EventPublisher fans queue change events out to watch subscribers after a
// store mutation commits. Publish failures are logged, never propagated: the
// store remains the source of truth.
type EventPublisher interface {
	QueueChanged(ctx context.Context, queueID string, kind string)
}

// Event kinds published on queue channels
const (
	EventWaitlist     = "waitlist"
	EventHistory      = "history"
	EventQueueDeleted = "queue_deleted"
)
