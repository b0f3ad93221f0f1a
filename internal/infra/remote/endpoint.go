// Package remote talks to the system of record that queued transactions are
// reconciled into. The endpoint must be idempotent on the record id: the
// queue gives at-least-once delivery, so the same id may arrive twice after
// a crash between remote commit and local persist.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kobo-ledger/kobo/internal/domain"
)

// Endpoint durably commits a transaction record remotely, or fails.
type Endpoint interface {
	Submit(ctx context.Context, record domain.QueuedTransaction) error
}

// ─── HTTP Endpoint ──────────────────────────────────────────────────────────

// HTTPEndpoint submits records as JSON POSTs. The record id travels in the
// Idempotency-Key header so the server can deduplicate replays.
type HTTPEndpoint struct {
	url    string
	client *http.Client
}

// NewHTTPEndpoint creates an endpoint client for the given submit URL.
// A nil client gets a default with a 30s overall timeout; per-record
// deadlines are imposed by the caller through ctx.
func NewHTTPEndpoint(url string, client *http.Client) *HTTPEndpoint {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPEndpoint{url: url, client: client}
}

// Submit POSTs the record. Any non-2xx status is a rejection; transport
// errors are reported as ErrRemoteUnavailable. Both are retryable from the
// queue's point of view.
func (e *HTTPEndpoint) Submit(ctx context.Context, record domain.QueuedTransaction) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", record.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", record.ID)

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Small read so error messages carry the server's reason.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", domain.ErrRemoteRejected, resp.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
