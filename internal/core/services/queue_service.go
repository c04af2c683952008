package services

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"queueflow/internal/core/domain"
	"queueflow/internal/core/ordering"
)

const defaultCategory = "General"

// QueueService enforces the queue/ticket lifecycle invariants at every
// mutation boundary, no matter which actor (customer or admin) triggers it.
type QueueService struct {
	queueRepo    QueueRepository
	waitlistRepo WaitlistRepository
	historyRepo  HistoryRepository
	publisher    EventPublisher
	now          func() time.Time
}

// NewQueueService creates a new queue service
func NewQueueService(queueRepo QueueRepository, waitlistRepo WaitlistRepository, historyRepo HistoryRepository, publisher EventPublisher) *QueueService {
	return &QueueService{
		queueRepo:    queueRepo,
		waitlistRepo: waitlistRepo,
		historyRepo:  historyRepo,
		publisher:    publisher,
		now:          time.Now,
	}
}

// ============================================================
// ADMIN — Queue management
// ============================================================

// CreateQueueInput represents a queue creation request
type CreateQueueInput struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
}

// CreateQueue creates a new active queue owned by the administrator
func (s *QueueService) CreateQueue(ctx context.Context, ownerID string, input CreateQueueInput) (*domain.Queue, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = defaultCategory
	}

	queue := &domain.Queue{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		Category:  category,
		Status:    domain.QueueActive,
		CreatedAt: s.now(),
	}
	if err := s.queueRepo.Create(ctx, queue); err != nil {
		return nil, err
	}

	log.Printf("✅ Queue created: %s (%s) by admin %s", queue.Name, queue.ID, ownerID)
	return queue, nil
}

// ListQueues returns an owner's queues, newest first
func (s *QueueService) ListQueues(ctx context.Context, ownerID string) ([]domain.Queue, error) {
	return s.queueRepo.ListByOwner(ctx, ownerID)
}

// GetQueue returns a queue by id
func (s *QueueService) GetQueue(ctx context.Context, queueID string) (*domain.Queue, error) {
	return s.queueRepo.GetByID(ctx, queueID)
}

// DeleteQueue deletes a queue and cascades deletion of its waitlist and
// history, so no tickets are left referencing a dead queue. Only the owner
// may delete.
func (s *QueueService) DeleteQueue(ctx context.Context, ownerID, queueID string) error {
	queue, err := s.queueRepo.GetByID(ctx, queueID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// already gone, racing delete resolves to a no-op
			return nil
		}
		return err
	}
	if queue.OwnerID != ownerID {
		return domain.ErrNotQueueOwner
	}

	// Children first: a crash between steps may orphan the queue document but
	// never its tickets.
	if err := s.waitlistRepo.DeleteByQueue(ctx, queueID); err != nil {
		return err
	}
	if err := s.historyRepo.DeleteByQueue(ctx, queueID); err != nil {
		return err
	}
	if err := s.queueRepo.Delete(ctx, queueID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	s.publisher.QueueChanged(ctx, queueID, EventQueueDeleted)
	log.Printf("🗑️ Queue deleted with cascade: %s by admin %s", queueID, ownerID)
	return nil
}

// ============================================================
// CUSTOMER — Join, status, leave
// ============================================================

// JoinQueueInput represents a customer join request
type JoinQueueInput struct {
	Name string `json:"name" validate:"required"`
}

// TicketView is a ticket plus the derived fields clients display
type TicketView struct {
	Ticket      domain.Ticket `json:"ticket"`
	PeopleAhead int           `json:"people_ahead"`
	Position    int           `json:"position"`
}

// JoinQueue appends a new waiting ticket to a queue. The token number comes
// from the queue's atomic lifetime counter, not the current waitlist size, so
// concurrent joins and joins after removals can never collide.
func (s *QueueService) JoinQueue(ctx context.Context, queueID string, input JoinQueueInput) (*TicketView, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrEmptyName
	}
	if _, err := s.queueRepo.GetByID(ctx, queueID); err != nil {
		return nil, err
	}

	token, err := s.queueRepo.NextTokenNumber(ctx, queueID)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		QueueID:     queueID,
		Name:        name,
		TokenNumber: token,
		Status:      domain.StatusWaiting,
		JoinedAt:    s.now(),
	}
	if err := s.waitlistRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.publisher.QueueChanged(ctx, queueID, EventWaitlist)
	log.Printf("✅ Token %d issued to %q in queue %s", token, name, queueID)
	return s.ticketView(ctx, *ticket)
}

// GetTicket returns a ticket with its derived position fields, used by
// customers resuming a session after a reload.
func (s *QueueService) GetTicket(ctx context.Context, queueID, ticketID string) (*TicketView, error) {
	ticket, err := s.waitlistRepo.GetByID(ctx, queueID, ticketID)
	if err != nil {
		return nil, err
	}
	return s.ticketView(ctx, *ticket)
}

// Waitlist returns a queue's tickets in arrival order
func (s *QueueService) Waitlist(ctx context.Context, queueID string) ([]domain.Ticket, error) {
	if _, err := s.queueRepo.GetByID(ctx, queueID); err != nil {
		return nil, err
	}
	return s.waitlistRepo.ListByQueue(ctx, queueID)
}

// LeaveQueue removes a customer's ticket regardless of status. Service was
// not rendered, so no history record is written. Leaving an already-removed
// ticket is a benign no-op.
func (s *QueueService) LeaveQueue(ctx context.Context, queueID, ticketID string) error {
	err := s.waitlistRepo.Delete(ctx, queueID, ticketID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	s.publisher.QueueChanged(ctx, queueID, EventWaitlist)
	log.Printf("👋 Ticket %s left queue %s", ticketID, queueID)
	return nil
}

// ============================================================
// ADMIN — Call & complete
// ============================================================

// CallTicket transitions a ticket waiting→called and stamps CalledAt exactly
// once. Which ticket to call is the administrator's explicit choice; the
// service does not enforce FIFO.
func (s *QueueService) CallTicket(ctx context.Context, queueID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.waitlistRepo.GetByID(ctx, queueID, ticketID)
	if err != nil {
		return nil, err
	}
	if !ordering.CanCall(*ticket) {
		return nil, domain.ErrAlreadyCalled
	}

	called, err := s.waitlistRepo.MarkCalled(ctx, queueID, ticketID)
	if err != nil {
		return nil, err
	}

	s.publisher.QueueChanged(ctx, queueID, EventWaitlist)
	log.Printf("📣 Token %d called in queue %s", called.TokenNumber, queueID)
	return called, nil
}

// CompleteTicket ends service for a ticket: if it had been called, one
// history record with the service duration is appended; either way the
// ticket is removed. Deletion happens first so that of two racing completes
// only the one that actually removed the ticket writes history.
func (s *QueueService) CompleteTicket(ctx context.Context, queueID, ticketID string) error {
	ticket, err := s.waitlistRepo.GetByID(ctx, queueID, ticketID)
	if err != nil {
		return err
	}

	if err := s.waitlistRepo.Delete(ctx, queueID, ticketID); err != nil {
		return err
	}

	if ticket.CalledAt != nil {
		now := s.now()
		record := &domain.HistoryRecord{
			ID:          uuid.NewString(),
			QueueID:     queueID,
			CompletedAt: now,
			Duration:    serviceDuration(*ticket.CalledAt, now),
			HourOfDay:   now.Hour(),
			DayOfWeek:   int(now.Weekday()),
		}
		if err := s.historyRepo.Append(ctx, record); err != nil {
			// The ticket is already gone; losing one history sample is
			// preferable to resurrecting it.
			log.Printf("⚠️ Failed to append history for queue %s: %v", queueID, err)
		} else {
			s.publisher.QueueChanged(ctx, queueID, EventHistory)
		}
	}

	s.publisher.QueueChanged(ctx, queueID, EventWaitlist)
	log.Printf("✅ Token %d completed in queue %s", ticket.TokenNumber, queueID)
	return nil
}

func (s *QueueService) ticketView(ctx context.Context, ticket domain.Ticket) (*TicketView, error) {
	tickets, err := s.waitlistRepo.ListByQueue(ctx, ticket.QueueID)
	if err != nil {
		return nil, err
	}
	return &TicketView{
		Ticket:      ticket,
		PeopleAhead: ordering.PeopleAhead(tickets, ticket),
		Position:    ordering.Position(tickets, ticket),
	}, nil
}

// serviceDuration converts a call-to-completion interval into minutes rounded
// to 2 decimals. Clock skew can put completion before the call stamp; the
// value is clamped to zero rather than stored negative.
func serviceDuration(calledAt, completedAt time.Time) float64 {
	minutes := completedAt.Sub(calledAt).Minutes()
	if minutes < 0 {
		log.Printf("⚠️ Negative service duration clamped to 0 (calledAt=%s completedAt=%s)",
			calledAt.Format(time.RFC3339), completedAt.Format(time.RFC3339))
		minutes = 0
	}
	return math.Round(minutes*100) / 100
}
