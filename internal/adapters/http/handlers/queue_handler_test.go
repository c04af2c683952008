package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"queueflow/internal/core/domain"
	"queueflow/internal/core/services"
	"queueflow/internal/pkg/joinlink"
)

// Fixture-backed repositories: just enough store behavior for the customer
// endpoints. Tests seed the maps directly instead of driving the admin flow.

type fixture struct {
	queues  map[string]*domain.Queue
	tickets map[string][]domain.Ticket
	history map[string][]domain.HistoryRecord
}

type fxQueueRepo struct{ f *fixture }

func (r *fxQueueRepo) Create(_ context.Context, q *domain.Queue) error {
	r.f.queues[q.ID] = q
	return nil
}

func (r *fxQueueRepo) GetByID(_ context.Context, queueID string) (*domain.Queue, error) {
	q, ok := r.f.queues[queueID]
	if !ok {
		return nil, domain.ErrQueueNotFound
	}
	cp := *q
	return &cp, nil
}

func (r *fxQueueRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Queue, error) {
	var out []domain.Queue
	for _, q := range r.f.queues {
		if q.OwnerID == ownerID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *fxQueueRepo) NextTokenNumber(_ context.Context, queueID string) (int, error) {
	q, ok := r.f.queues[queueID]
	if !ok {
		return 0, domain.ErrQueueNotFound
	}
	q.TicketSeq++
	return int(q.TicketSeq), nil
}

func (r *fxQueueRepo) Delete(_ context.Context, queueID string) error {
	if _, ok := r.f.queues[queueID]; !ok {
		return domain.ErrQueueNotFound
	}
	delete(r.f.queues, queueID)
	return nil
}

type fxWaitlistRepo struct{ f *fixture }

func (r *fxWaitlistRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.f.tickets[t.QueueID] = append(r.f.tickets[t.QueueID], *t)
	return nil
}

func (r *fxWaitlistRepo) GetByID(_ context.Context, queueID, ticketID string) (*domain.Ticket, error) {
	for _, t := range r.f.tickets[queueID] {
		if t.ID == ticketID {
			cp := t
			return &cp, nil
		}
	}
	return nil, domain.ErrTicketNotFound
}

func (r *fxWaitlistRepo) ListByQueue(_ context.Context, queueID string) ([]domain.Ticket, error) {
	return append([]domain.Ticket{}, r.f.tickets[queueID]...), nil
}

func (r *fxWaitlistRepo) MarkCalled(_ context.Context, queueID, ticketID string) (*domain.Ticket, error) {
	tickets := r.f.tickets[queueID]
	for i := range tickets {
		if tickets[i].ID == ticketID {
			now := time.Now()
			tickets[i].Status = domain.StatusCalled
			tickets[i].CalledAt = &now
			cp := tickets[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrTicketNotFound
}

func (r *fxWaitlistRepo) Delete(_ context.Context, queueID, ticketID string) error {
	tickets := r.f.tickets[queueID]
	for i := range tickets {
		if tickets[i].ID == ticketID {
			r.f.tickets[queueID] = append(tickets[:i:i], tickets[i+1:]...)
			return nil
		}
	}
	return domain.ErrTicketNotFound
}

func (r *fxWaitlistRepo) DeleteByQueue(_ context.Context, queueID string) error {
	delete(r.f.tickets, queueID)
	return nil
}

type fxHistoryRepo struct{ f *fixture }

func (r *fxHistoryRepo) Append(_ context.Context, rec *domain.HistoryRecord) error {
	r.f.history[rec.QueueID] = append(r.f.history[rec.QueueID], *rec)
	return nil
}

func (r *fxHistoryRepo) RecentByQueue(_ context.Context, queueID string, limit int) ([]domain.HistoryRecord, error) {
	records := r.f.history[queueID]
	var out []domain.HistoryRecord
	for i := len(records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (r *fxHistoryRepo) ListByQueue(_ context.Context, queueID string, offset, limit int) ([]domain.HistoryRecord, error) {
	records := r.f.history[queueID]
	var out []domain.HistoryRecord
	for i := len(records) - 1 - offset; i >= 0 && len(out) < limit; i-- {
		out = append(out, records[i])
	}
	return out, nil
}

func (r *fxHistoryRepo) CountByQueue(_ context.Context, queueID string) (int64, error) {
	return int64(len(r.f.history[queueID])), nil
}

func (r *fxHistoryRepo) DeleteByQueue(_ context.Context, queueID string) error {
	delete(r.f.history, queueID)
	return nil
}

type fxPublisher struct{}

func (fxPublisher) QueueChanged(_ context.Context, _ string, _ string) {}

// captureEstimator records the depth it was asked about
type captureEstimator struct {
	est   domain.Estimate
	depth int
	calls int
}

func (e *captureEstimator) Estimate(_ context.Context, _ []float64, depth int) (domain.Estimate, error) {
	e.calls++
	e.depth = depth
	return e.est, nil
}

// newCustomerAPI wires the customer routes against fixture repositories
func newCustomerAPI(t *testing.T, est services.Estimator) (*fiber.App, *fixture) {
	t.Helper()
	f := &fixture{
		queues:  make(map[string]*domain.Queue),
		tickets: make(map[string][]domain.Ticket),
		history: make(map[string][]domain.HistoryRecord),
	}

	queueService := services.NewQueueService(&fxQueueRepo{f}, &fxWaitlistRepo{f}, &fxHistoryRepo{f}, fxPublisher{})
	historyService := services.NewHistoryService(&fxHistoryRepo{f})
	estimatorService := services.NewEstimatorService(est)
	h := NewQueueHandler(queueService, historyService, estimatorService, nil)

	app := fiber.New()
	queues := app.Group("/api/v1/queues")
	queues.Get("/resolve", h.ResolveJoinLink)
	queues.Get("/:id", h.GetQueue)
	queues.Get("/:id/tickets/:ticketId", h.GetTicket)
	queues.Get("/:id/tickets/:ticketId/estimate", h.GetEstimate)
	return app, f
}

func seedWaitingQueue(f *fixture, queueID string, waiting int) {
	f.queues[queueID] = &domain.Queue{
		ID:      queueID,
		OwnerID: "admin-1",
		Name:    "Front Desk",
		Status:  domain.QueueActive,
	}
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i := 1; i <= waiting; i++ {
		f.tickets[queueID] = append(f.tickets[queueID], domain.Ticket{
			ID:          fmt.Sprintf("t%d", i),
			QueueID:     queueID,
			Name:        fmt.Sprintf("customer %d", i),
			TokenNumber: i,
			Status:      domain.StatusWaiting,
			JoinedAt:    base.Add(time.Duration(i) * time.Second),
		})
	}
}

func TestGetEstimate_DepthIsInclusivePosition(t *testing.T) {
	est := &captureEstimator{est: domain.Estimate{PredictedMinutes: 7, Confidence: 60}}
	app, f := newCustomerAPI(t, est)

	seedWaitingQueue(f, "q1", 3)
	f.history["q1"] = []domain.HistoryRecord{{ID: "h1", QueueID: "q1", Duration: 4.0}}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/queues/q1/tickets/t3/estimate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, est.depth, "depth must be people ahead plus the customer")

	// The customer at the front of the line is depth 1, never 0
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/queues/q1/tickets/t1/estimate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, est.depth)
}

func TestGetEstimate_EmptyHistoryUsesHeuristic(t *testing.T) {
	est := &captureEstimator{est: domain.Estimate{PredictedMinutes: 99, Confidence: 42}}
	app, f := newCustomerAPI(t, est)

	seedWaitingQueue(f, "q1", 2)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/queues/q1/tickets/t2/estimate", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, est.calls, "predictor must not be consulted without history")

	var body struct {
		Data struct {
			Estimate domain.Estimate `json:"estimate"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 10.0, body.Data.Estimate.PredictedMinutes, "two in line at 5 minutes each")
	assert.Equal(t, 0.0, body.Data.Estimate.Confidence)
}

func TestResolveJoinLink(t *testing.T) {
	app, f := newCustomerAPI(t, &captureEstimator{})
	seedWaitingQueue(f, "q9", 0)

	link, err := joinlink.Build("http://localhost:5173", "q9")
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/queues/resolve?link="+url.QueryEscape(link), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "q9", body.Data.ID)
	assert.Equal(t, "Front Desk", body.Data.Name)

	// A link carrying no queue id is a validation error
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/queues/resolve?link="+url.QueryEscape("http://localhost:5173/user"), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
