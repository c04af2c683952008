package handlers

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

// brokenWriter simulates a client that dropped the connection
type brokenWriter struct{}

func (brokenWriter) Write([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestWriteEvent_FramesEventAndData(t *testing.T) {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)

	if !writeEvent(w, "snapshot", map[string]int{"n": 1}) {
		t.Fatal("writeEvent reported a dead client on a live writer")
	}

	out := buf.String()
	if !strings.HasPrefix(out, "event: snapshot\ndata: ") {
		t.Errorf("frame missing event/data lines: %q", out)
	}
	if !strings.HasSuffix(out, "\n\n") {
		t.Errorf("frame missing terminating blank line: %q", out)
	}
}

func TestWriteEvent_DetectsDisconnectedClient(t *testing.T) {
	w := bufio.NewWriterSize(brokenWriter{}, 16)
	if writeEvent(w, "snapshot", map[string]int{"n": 1}) {
		t.Error("writeEvent must report a dead client when the flush fails")
	}
}

func TestWriteComment_KeepaliveFrameAndDisconnect(t *testing.T) {
	var buf bytes.Buffer
	if !writeComment(bufio.NewWriter(&buf)) {
		t.Fatal("writeComment reported a dead client on a live writer")
	}
	if !strings.HasPrefix(buf.String(), ":") {
		t.Errorf("keepalive must be an SSE comment, got %q", buf.String())
	}

	// Stream loops lean on this signal to tear idle subscriptions down
	if writeComment(bufio.NewWriterSize(brokenWriter{}, 4)) {
		t.Error("writeComment must report a dead client when the flush fails")
	}
}
