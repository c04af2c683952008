package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// streamKeepaliveInterval sets how often an idle stream writes an SSE
// comment. An idle queue produces no snapshots, so without the comment a
// dead connection would never be noticed and its subscription never torn
// down.
const streamKeepaliveInterval = 20 * time.Second

// SSE plumbing shared by the customer and admin stream endpoints. Each
// stream is one long-lived GET; the watch subscription lives inside the
// body stream writer and is torn down when the client disconnects (flush
// fails) or the subscription ends.

func setStreamHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")
}

// writeEvent emits one SSE event and reports whether the client is still
// connected.
func writeEvent(w *bufio.Writer, event string, payload interface{}) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return true // skip the event, keep the stream
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return false
	}
	return w.Flush() == nil
}

// writeComment emits an SSE comment line, invisible to clients, and reports
// whether the client is still connected.
func writeComment(w *bufio.Writer) bool {
	if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
		return false
	}
	return w.Flush() == nil
}
