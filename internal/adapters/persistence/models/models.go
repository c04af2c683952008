package models

import (
	"time"

	"queueflow/internal/core/domain"
)

// ============================================================
// Session store documents
//
// The store hands back dynamic documents; everything is coerced into these
// typed records at this boundary so no untyped maps reach core logic.
// ============================================================

// QueueDocument maps queues/{queueId}
type QueueDocument struct {
	ID        string    `bson:"_id"`
	OwnerID   string    `bson:"ownerId"`
	Name      string    `bson:"name"`
	Category  string    `bson:"category"`
	Status    string    `bson:"status"`
	TicketSeq int64     `bson:"ticketSeq"`
	CreatedAt time.Time `bson:"createdAt"`
}

// ToDomain converts a queue document to its domain entity
func (d QueueDocument) ToDomain() domain.Queue {
	category := d.Category
	if category == "" {
		category = "General"
	}
	return domain.Queue{
		ID:        d.ID,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		Category:  category,
		Status:    domain.QueueStatus(d.Status),
		TicketSeq: d.TicketSeq,
		CreatedAt: d.CreatedAt,
	}
}

// QueueDocumentFrom converts a domain queue to its store document
func QueueDocumentFrom(q domain.Queue) QueueDocument {
	return QueueDocument{
		ID:        q.ID,
		OwnerID:   q.OwnerID,
		Name:      q.Name,
		Category:  q.Category,
		Status:    string(q.Status),
		TicketSeq: q.TicketSeq,
		CreatedAt: q.CreatedAt,
	}
}

// TicketDocument maps queues/{queueId}/waitlist/{ticketId}; queueId is a
// field rather than a path segment, tickets belong to exactly one queue for
// their lifetime.
type TicketDocument struct {
	ID          string     `bson:"_id"`
	QueueID     string     `bson:"queueId"`
	Name        string     `bson:"name"`
	TokenNumber int        `bson:"tokenNumber"`
	Status      string     `bson:"status"`
	JoinedAt    time.Time  `bson:"joinedAt"`
	CalledAt    *time.Time `bson:"calledAt,omitempty"`
}

// ToDomain converts a ticket document to its domain entity
func (d TicketDocument) ToDomain() domain.Ticket {
	return domain.Ticket{
		ID:          d.ID,
		QueueID:     d.QueueID,
		Name:        d.Name,
		TokenNumber: d.TokenNumber,
		Status:      domain.TicketStatus(d.Status),
		JoinedAt:    d.JoinedAt,
		CalledAt:    d.CalledAt,
	}
}

// TicketDocumentFrom converts a domain ticket to its store document
func TicketDocumentFrom(t domain.Ticket) TicketDocument {
	return TicketDocument{
		ID:          t.ID,
		QueueID:     t.QueueID,
		Name:        t.Name,
		TokenNumber: t.TokenNumber,
		Status:      string(t.Status),
		JoinedAt:    t.JoinedAt,
		CalledAt:    t.CalledAt,
	}
}

// HistoryDocument maps queues/{queueId}/history/{historyId}; append-only,
// never mutated after insert.
type HistoryDocument struct {
	ID          string    `bson:"_id"`
	QueueID     string    `bson:"queueId"`
	CompletedAt time.Time `bson:"completedAt"`
	Duration    float64   `bson:"duration"`
	HourOfDay   int       `bson:"hourOfDay"`
	DayOfWeek   int       `bson:"dayOfWeek"`
}

// ToDomain converts a history document to its domain entity
func (d HistoryDocument) ToDomain() domain.HistoryRecord {
	return domain.HistoryRecord{
		ID:          d.ID,
		QueueID:     d.QueueID,
		CompletedAt: d.CompletedAt,
		Duration:    d.Duration,
		HourOfDay:   d.HourOfDay,
		DayOfWeek:   d.DayOfWeek,
	}
}

// HistoryDocumentFrom converts a domain history record to its store document
func HistoryDocumentFrom(r domain.HistoryRecord) HistoryDocument {
	return HistoryDocument{
		ID:          r.ID,
		QueueID:     r.QueueID,
		CompletedAt: r.CompletedAt,
		Duration:    r.Duration,
		HourOfDay:   r.HourOfDay,
		DayOfWeek:   r.DayOfWeek,
	}
}

// PreferenceDocument stores per-admin display settings, keyed by admin id
type PreferenceDocument struct {
	AdminID   string    `bson:"_id"`
	Theme     string    `bson:"theme"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// ToDomain converts a preference document to its domain entity
func (d PreferenceDocument) ToDomain() domain.Preference {
	return domain.Preference{
		AdminID:   d.AdminID,
		Theme:     d.Theme,
		UpdatedAt: d.UpdatedAt,
	}
}
