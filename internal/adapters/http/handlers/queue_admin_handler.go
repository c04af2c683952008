package handlers

import (
	"bufio"
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"queueflow/internal/adapters/http/middleware"
	"queueflow/internal/adapters/realtime"
	"queueflow/internal/config"
	"queueflow/internal/core/ordering"
	"queueflow/internal/core/services"
	"queueflow/internal/pkg/joinlink"
	"queueflow/internal/pkg/pagination"
	"queueflow/internal/pkg/response"
	"queueflow/internal/pkg/validate"
)

// QueueAdminHandler handles the authenticated counter-side endpoints
type QueueAdminHandler struct {
	queueService   *services.QueueService
	historyService *services.HistoryService
	watcher        *realtime.Watcher
}

// NewQueueAdminHandler creates a new queue admin handler
func NewQueueAdminHandler(
	queueService *services.QueueService,
	historyService *services.HistoryService,
	watcher *realtime.Watcher,
) *QueueAdminHandler {
	return &QueueAdminHandler{
		queueService:   queueService,
		historyService: historyService,
		watcher:        watcher,
	}
}

// ============================================================
// POST /api/v1/admin/queues — open a new queue
// ============================================================
func (h *QueueAdminHandler) CreateQueue(c *fiber.Ctx) error {
	adminID, ok := middleware.AdminID(c)
	if !ok {
		return response.Unauthorized(c, "Missing admin identity")
	}

	var input services.CreateQueueInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	queue, err := h.queueService.CreateQueue(c.Context(), adminID, input)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Created(c, "Queue created", queue)
}

// ============================================================
// GET /api/v1/admin/queues — all queues owned by the admin
// ============================================================
func (h *QueueAdminHandler) ListQueues(c *fiber.Ctx) error {
	adminID, ok := middleware.AdminID(c)
	if !ok {
		return response.Unauthorized(c, "Missing admin identity")
	}

	queues, err := h.queueService.ListQueues(c.Context(), adminID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Queues retrieved", queues)
}

// ============================================================
// DELETE /api/v1/admin/queues/:id — close a queue and everything under it
// ============================================================
func (h *QueueAdminHandler) DeleteQueue(c *fiber.Ctx) error {
	adminID, ok := middleware.AdminID(c)
	if !ok {
		return response.Unauthorized(c, "Missing admin identity")
	}

	if err := h.queueService.DeleteQueue(c.Context(), adminID, c.Params("id")); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Queue deleted", nil)
}

// ============================================================
// GET /api/v1/admin/queues/:id/waitlist — current tickets in join order
// ============================================================
func (h *QueueAdminHandler) Waitlist(c *fiber.Ctx) error {
	tickets, err := h.queueService.Waitlist(c.Context(), c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Waitlist retrieved", fiber.Map{
		"tickets":       tickets,
		"waiting_count": ordering.WaitingCount(tickets),
	})
}

// ============================================================
// GET /api/v1/admin/queues/:id/join-link — shareable customer URL
// ============================================================
func (h *QueueAdminHandler) JoinLink(c *fiber.Ctx) error {
	queue, err := h.queueService.GetQueue(c.Context(), c.Params("id"))
	if err != nil {
		return response.DomainError(c, err)
	}

	link, err := joinlink.Build(config.AppConfig.Client.BaseURL, queue.ID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Join link built", fiber.Map{"url": link})
}

// ============================================================
// POST /api/v1/admin/queues/:id/tickets/:ticketId/call — call next customer
// ============================================================
func (h *QueueAdminHandler) CallTicket(c *fiber.Ctx) error {
	ticket, err := h.queueService.CallTicket(c.Context(), c.Params("id"), c.Params("ticketId"))
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Customer called", ticket)
}

// ============================================================
// DELETE /api/v1/admin/queues/:id/tickets/:ticketId — mark service complete
// ============================================================
// A ticket that is already gone means another tab finished it first; that is
// a success from the admin's point of view.
func (h *QueueAdminHandler) CompleteTicket(c *fiber.Ctx) error {
	if err := h.queueService.CompleteTicket(c.Context(), c.Params("id"), c.Params("ticketId")); err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Service completed", nil)
}

// ============================================================
// GET /api/v1/admin/queues/:id/history — paginated completed services
// ============================================================
func (h *QueueAdminHandler) History(c *fiber.Ctx) error {
	queueID := c.Params("id")
	if _, err := h.queueService.GetQueue(c.Context(), queueID); err != nil {
		return response.DomainError(c, err)
	}

	params := pagination.GetParams(c)
	records, total, err := h.historyService.Page(c.Context(), queueID, params.Offset, params.Limit)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "History retrieved", pagination.NewResponse(records, params, total))
}

// waitlistEvent is the snapshot payload streamed to the admin board
type waitlistEvent struct {
	Tickets      interface{} `json:"tickets"`
	WaitingCount int         `json:"waiting_count"`
	QueueDeleted bool        `json:"queue_deleted"`
}

// ============================================================
// GET /api/v1/admin/queues/:id/stream — live waitlist board (SSE)
// ============================================================
func (h *QueueAdminHandler) StreamWaitlist(c *fiber.Ctx) error {
	queueID := c.Params("id")

	if _, err := h.queueService.GetQueue(c.Context(), queueID); err != nil {
		return response.DomainError(c, err)
	}

	setStreamHeaders(c)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		snapshots, stop, err := h.watcher.WatchQueue(ctx, queueID)
		if err != nil {
			log.Printf("⚠️ Waitlist stream subscription failed for queue %s: %v", queueID, err)
			writeEvent(w, "error", fiber.Map{"message": "subscription failed, please reconnect"})
			return
		}
		defer stop()

		keepalive := time.NewTicker(streamKeepaliveInterval)
		defer keepalive.Stop()

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
				event := waitlistEvent{
					Tickets:      snap.Tickets,
					WaitingCount: ordering.WaitingCount(snap.Tickets),
					QueueDeleted: snap.QueueDeleted,
				}
				if !writeEvent(w, "snapshot", event) {
					return
				}
				if snap.QueueDeleted {
					return
				}
			}
		}
	}))

	return nil
}
