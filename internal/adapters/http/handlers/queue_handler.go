package handlers

import (
	"bufio"
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"queueflow/internal/adapters/realtime"
	"queueflow/internal/core/domain"
	"queueflow/internal/core/ordering"
	"queueflow/internal/core/services"
	"queueflow/internal/pkg/joinlink"
	"queueflow/internal/pkg/response"
	"queueflow/internal/pkg/validate"
)

// QueueHandler handles the customer-facing queue endpoints. Customers carry
// no account: the ticket id returned on join is their handle, persisted
// client-side so a reload resumes the same ticket.
type QueueHandler struct {
	queueService     *services.QueueService
	historyService   *services.HistoryService
	estimatorService *services.EstimatorService
	watcher          *realtime.Watcher
}

// NewQueueHandler creates a new queue handler
func NewQueueHandler(
	queueService *services.QueueService,
	historyService *services.HistoryService,
	estimatorService *services.EstimatorService,
	watcher *realtime.Watcher,
) *QueueHandler {
	return &QueueHandler{
		queueService:     queueService,
		historyService:   historyService,
		estimatorService: estimatorService,
		watcher:          watcher,
	}
}

// ============================================================
// GET /api/v1/queues/:id — queue metadata for a decoded join link
// ============================================================
func (h *QueueHandler) GetQueue(c *fiber.Ctx) error {
	return h.queueMetadata(c, c.Params("id"))
}

// ============================================================
// GET /api/v1/queues/resolve?link= — decode a scanned join link
// ============================================================
func (h *QueueHandler) ResolveJoinLink(c *fiber.Ctx) error {
	queueID, err := joinlink.Parse(c.Query("link"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return h.queueMetadata(c, queueID)
}

// queueMetadata answers with the public queue fields only; the owner id
// stays off the customer surface.
func (h *QueueHandler) queueMetadata(c *fiber.Ctx, queueID string) error {
	queue, err := h.queueService.GetQueue(c.Context(), queueID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Queue retrieved", fiber.Map{
		"id":       queue.ID,
		"name":     queue.Name,
		"category": queue.Category,
		"status":   queue.Status,
	})
}

// ============================================================
// POST /api/v1/queues/:id/tickets — join the waitlist
// ============================================================
func (h *QueueHandler) JoinQueue(c *fiber.Ctx) error {
	var input services.JoinQueueInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	view, err := h.queueService.JoinQueue(c.Context(), c.Params("id"), input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Token issued", view)
}

// ============================================================
// GET /api/v1/queues/:id/tickets/:ticketId — resume a ticket
// ============================================================
func (h *QueueHandler) GetTicket(c *fiber.Ctx) error {
	view, err := h.queueService.GetTicket(c.Context(), c.Params("id"), c.Params("ticketId"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Ticket retrieved", view)
}

// ============================================================
// DELETE /api/v1/queues/:id/tickets/:ticketId — leave the queue
// ============================================================
func (h *QueueHandler) LeaveQueue(c *fiber.Ctx) error {
	if err := h.queueService.LeaveQueue(c.Context(), c.Params("id"), c.Params("ticketId")); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Left the queue", nil)
}

// ============================================================
// GET /api/v1/queues/:id/tickets/:ticketId/estimate — wait prediction
// ============================================================
// Never fails on estimator trouble: the fallback heuristic always answers.
func (h *QueueHandler) GetEstimate(c *fiber.Ctx) error {
	view, err := h.queueService.GetTicket(c.Context(), c.Params("id"), c.Params("ticketId"))
	if err != nil {
		return response.DomainError(c, err)
	}

	durations, err := h.historyService.RecentDurations(c.Context(), c.Params("id"), services.DefaultHistoryLimit)
	if err != nil {
		// Missing history degrades the prediction, not the response
		log.Printf("⚠️ History read failed for estimate on queue %s: %v", c.Params("id"), err)
		durations = nil
	}

	// Depth is the inclusive position: the wait covers the customer's own
	// service, so the front of the line is depth 1, never 0.
	estimate := h.estimatorService.Estimate(c.Context(), durations, view.Position)
	return response.Success(c, "Estimate computed", fiber.Map{
		"estimate":     estimate,
		"position":     view.Position,
		"people_ahead": view.PeopleAhead,
	})
}

// ticketEvent is the snapshot payload streamed to a waiting customer
type ticketEvent struct {
	Ticket      domain.Ticket `json:"ticket"`
	PeopleAhead int           `json:"people_ahead"`
	Position    int           `json:"position"`
}

// ============================================================
// GET /api/v1/queues/:id/tickets/:ticketId/stream — live updates (SSE)
// ============================================================
// Emits "snapshot" on every waitlist change, "called" exactly once on the
// waiting→called edge, and "removed" (then ends) when the ticket is gone or
// the queue was deleted.
func (h *QueueHandler) StreamTicket(c *fiber.Ctx) error {
	queueID := c.Params("id")
	ticketID := c.Params("ticketId")

	// Reject dead references before upgrading to a stream
	if _, err := h.queueService.GetTicket(c.Context(), queueID, ticketID); err != nil {
		return response.DomainError(c, err)
	}

	setStreamHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snapshots, stop, err := h.watcher.WatchQueue(ctx, queueID)
		if err != nil {
			log.Printf("⚠️ Ticket stream subscription failed for queue %s: %v", queueID, err)
			writeEvent(w, "error", fiber.Map{"message": "subscription failed, please reconnect"})
			return
		}
		defer stop()

		keepalive := time.NewTicker(streamKeepaliveInterval)
		defer keepalive.Stop()

		var prev domain.TicketStatus
		seen := false
		for {
			select {
			case <-keepalive.C:
				if !writeComment(w) {
					return
				}
			case snap, open := <-snapshots:
				if !open {
					return
				}
				if snap.QueueDeleted {
					writeEvent(w, "removed", fiber.Map{"reason": "queue_deleted"})
					return
				}

				me, ok := ordering.FindTicket(snap.Tickets, ticketID)
				if !ok {
					// Completed by the admin or left from another tab
					writeEvent(w, "removed", fiber.Map{"reason": "ticket_removed"})
					return
				}

				event := ticketEvent{
					Ticket:      me,
					PeopleAhead: ordering.PeopleAhead(snap.Tickets, me),
					Position:    ordering.Position(snap.Tickets, me),
				}
				if !writeEvent(w, "snapshot", event) {
					return
				}

				// Duplicate deliveries must not re-trigger the turn alert
				if seen && ordering.CalledEdge(prev, me.Status) {
					if !writeEvent(w, "called", fiber.Map{"token_number": me.TokenNumber}) {
						return
					}
				}
				prev = me.Status
				seen = true
			}
		}
	}))

	return nil
}
