package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"queueflow/internal/core/domain"
	"queueflow/internal/core/ordering"
)

// In-memory session store used by the service tests. It mirrors the contract
// of the mongo repositories: benign duplicate deletes surface as ErrNotFound,
// token numbers come from a lifetime counter.

type memStore struct {
	mu      sync.Mutex
	queues  map[string]*domain.Queue
	tickets map[string]map[string]*domain.Ticket // queueID -> ticketID -> ticket
	history map[string][]domain.HistoryRecord    // queueID -> newest last
	prefs   map[string]*domain.Preference
	events  []string
	now     time.Time
}

func newMemStore() *memStore {
	return &memStore{
		queues:  make(map[string]*domain.Queue),
		tickets: make(map[string]map[string]*domain.Ticket),
		history: make(map[string][]domain.HistoryRecord),
		prefs:   make(map[string]*domain.Preference),
		now:     time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

// advance moves the fake clock forward
func (m *memStore) advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

func (m *memStore) clock() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// --- QueueRepository ---

type memQueueRepo struct{ s *memStore }

func (r *memQueueRepo) Create(_ context.Context, q *domain.Queue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *q
	r.s.queues[q.ID] = &cp
	r.s.tickets[q.ID] = make(map[string]*domain.Ticket)
	return nil
}

func (r *memQueueRepo) GetByID(_ context.Context, queueID string) (*domain.Queue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.queues[queueID]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *memQueueRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Queue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Queue
	for _, q := range r.s.queues {
		if q.OwnerID == ownerID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memQueueRepo) NextTokenNumber(_ context.Context, queueID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q, ok := r.s.queues[queueID]
	if !ok {
		return 0, domain.ErrQueueNotFound
	}
	token := ordering.AssignTokenNumber(q.TicketSeq)
	q.TicketSeq++
	return token, nil
}

func (r *memQueueRepo) Delete(_ context.Context, queueID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.queues[queueID]; !ok {
		return domain.ErrQueueNotFound
	}
	delete(r.s.queues, queueID)
	return nil
}

// --- WaitlistRepository ---

type memWaitlistRepo struct{ s *memStore }

func (r *memWaitlistRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	byID, ok := r.s.tickets[t.QueueID]
	if !ok {
		return domain.ErrQueueNotFound
	}
	cp := *t
	byID[t.ID] = &cp
	return nil
}

func (r *memWaitlistRepo) GetByID(_ context.Context, queueID, ticketID string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[queueID][ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memWaitlistRepo) ListByQueue(_ context.Context, queueID string) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Ticket
	for _, t := range r.s.tickets[queueID] {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (r *memWaitlistRepo) MarkCalled(_ context.Context, queueID, ticketID string) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[queueID][ticketID]
	if !ok {
		return nil, domain.ErrTicketNotFound
	}
	if t.Status != domain.StatusWaiting {
		return nil, domain.ErrAlreadyCalled
	}
	now := r.s.now
	t.Status = domain.StatusCalled
	t.CalledAt = &now
	cp := *t
	return &cp, nil
}

func (r *memWaitlistRepo) Delete(_ context.Context, queueID, ticketID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[queueID][ticketID]; !ok {
		return domain.ErrTicketNotFound
	}
	delete(r.s.tickets[queueID], ticketID)
	return nil
}

func (r *memWaitlistRepo) DeleteByQueue(_ context.Context, queueID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.tickets[queueID] = make(map[string]*domain.Ticket)
	return nil
}

// --- HistoryRepository ---

type memHistoryRepo struct{ s *memStore }

func (r *memHistoryRepo) Append(_ context.Context, rec *domain.HistoryRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.history[rec.QueueID] = append(r.s.history[rec.QueueID], *rec)
	return nil
}

func (r *memHistoryRepo) RecentByQueue(_ context.Context, queueID string, limit int) ([]domain.HistoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	records := r.s.history[queueID]
	var out []domain.HistoryRecord
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (r *memHistoryRepo) ListByQueue(_ context.Context, queueID string, offset, limit int) ([]domain.HistoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	records := r.s.history[queueID]
	var out []domain.HistoryRecord
	for i := len(records) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (r *memHistoryRepo) CountByQueue(_ context.Context, queueID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.history[queueID])), nil
}

func (r *memHistoryRepo) DeleteByQueue(_ context.Context, queueID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.history, queueID)
	return nil
}

// --- PreferenceRepository ---

type memPrefRepo struct{ s *memStore }

func (r *memPrefRepo) Get(_ context.Context, adminID string) (*domain.Preference, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.prefs[adminID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPrefRepo) Upsert(_ context.Context, pref *domain.Preference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *pref
	r.s.prefs[pref.AdminID] = &cp
	return nil
}

// --- EventPublisher ---

type memPublisher struct{ s *memStore }

func (p *memPublisher) QueueChanged(_ context.Context, queueID string, kind string) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.events = append(p.s.events, queueID+":"+kind)
}

// newTestService wires a QueueService against the in-memory store with a
// controllable clock.
func newTestService() (*QueueService, *memStore) {
	s := newMemStore()
	svc := NewQueueService(&memQueueRepo{s}, &memWaitlistRepo{s}, &memHistoryRepo{s}, &memPublisher{s})
	svc.now = s.clock
	return svc, s
}
