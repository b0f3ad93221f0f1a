package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/kobo-ledger/kobo/internal/app/categorize"
	"github.com/kobo-ledger/kobo/internal/app/queue"
	"github.com/kobo-ledger/kobo/internal/domain"
)

// ─── Capture ────────────────────────────────────────────────────────────────

// handleCapture records a transaction.
// POST /api/transactions
//
// Online path: submit straight to the remote endpoint, bypassing the queue.
// Offline path (or a direct submit that fails): capture into the queue.
// The response names the path taken so callers can tell "synced" from
// "queued" without polling.
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var in domain.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if in.Category == "" {
		in.Category = categorize.Categorize(in.Description)
	}

	if s.monitor.Online() {
		rec := queue.NewRecord(in, time.Now())
		err := s.endpoint.Submit(r.Context(), rec)
		if err == nil {
			rec.Synced = true
			writeJSON(w, http.StatusCreated, map[string]interface{}{
				"status": "synced",
				"record": rec,
			})
			return
		}
		// Monitor is stale; fall through to the offline path.
		log.Printf("[api] direct submit failed, queueing: %v", err)
	}

	rec, err := s.queue.Capture(in)
	switch {
	case errors.Is(err, domain.ErrPersistence):
		// Queued in memory, durability not guaranteed. The caller must
		// surface this to the user.
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"status":  "queued",
			"record":  rec,
			"durable": false,
			"warning": err.Error(),
		})
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"status":  "queued",
			"record":  rec,
			"durable": true,
		})
	}
}

// ─── Queue ──────────────────────────────────────────────────────────────────

// handleFlush triggers a flush pass and returns its report.
// POST /api/queue/flush
func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	report, err := s.queue.Flush(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleQueueList returns pending records in insertion order.
// GET /api/queue
func (s *Server) handleQueueList(w http.ResponseWriter, r *http.Request) {
	records := s.queue.Pending()
	if records == nil {
		records = []domain.QueuedTransaction{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// handleQueueStats returns the aggregate sync status.
// GET /api/queue/stats
func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.queue.Stats())
}

// handleQueueClear empties the queue and its persisted blob.
// DELETE /api/queue
func (s *Server) handleQueueClear(w http.ResponseWriter, r *http.Request) {
	if err := s.queue.Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ─── Status ─────────────────────────────────────────────────────────────────

// handleStatus reports connectivity and queue health in one shot.
// GET /api/status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.queue.Stats()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version": Version,
		"online":  s.monitor.Online(),
		"pending": stats.Pending,
		"synced":  stats.Synced,
		"failed":  stats.Failed,
	})
}
