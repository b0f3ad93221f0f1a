// Package queue implements the durable offline transaction queue — a local
// write-ahead buffer of capture requests that could not be committed
// remotely, replayed once connectivity returns.
//
// Delivery is at-least-once: a crash between a remote commit succeeding and
// the local queue persisting that fact re-submits the record on the next
// flush. The remote endpoint deduplicates on the record id (Idempotency-Key),
// so this is a documented property of the pairing, not a defect to fix here.
//
// The persisted store may be shared with other processes; no cross-process
// locking is provided and a single writer at a time is assumed.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kobo-ledger/kobo/internal/app/categorize"
	"github.com/kobo-ledger/kobo/internal/domain"
	"github.com/kobo-ledger/kobo/internal/infra/connectivity"
	"github.com/kobo-ledger/kobo/internal/infra/kvstore"
	"github.com/kobo-ledger/kobo/internal/infra/notify"
	"github.com/kobo-ledger/kobo/internal/infra/observability"
	"github.com/kobo-ledger/kobo/internal/infra/remote"
)

// StoreKey is the fixed key the queue serializes under. Fixed because older
// builds (and the other processes sharing the store) address the same blob.
const StoreKey = "offline_transactions"

// Config controls queue behavior.
type Config struct {
	RecordTimeout time.Duration // per-record submit deadline (default: 10s)
	EscalateAfter int           // failed attempts before user notification (default: 3)
}

// DefaultConfig returns safe queue defaults.
func DefaultConfig() Config {
	return Config{
		RecordTimeout: 10 * time.Second,
		EscalateAfter: 3,
	}
}

// Queue is the offline transaction queue. Construct with New, then Open to
// restore persisted state. One Queue owns its store key for the life of the
// process — never a hidden singleton.
type Queue struct {
	mu       sync.Mutex
	cfg      Config
	store    kvstore.Store
	endpoint remote.Endpoint
	sink     notify.Sink
	records  []domain.QueuedTransaction
	inflight *flushPass // non-nil while a flush runs; concurrent calls coalesce
	closed   bool

	tickStop chan struct{} // non-nil while the periodic flush ticker runs
	tickDone chan struct{}

	syncedTotal int64
	failedTotal int64
}

// flushPass carries the eventual report of an in-flight flush to callers
// that coalesced into it.
type flushPass struct {
	done   chan struct{}
	report domain.FlushReport
}

// New creates a queue over the given collaborators. A nil sink discards
// notifications.
func New(cfg Config, store kvstore.Store, endpoint remote.Endpoint, sink notify.Sink) *Queue {
	if cfg.RecordTimeout <= 0 {
		cfg.RecordTimeout = 10 * time.Second
	}
	if cfg.EscalateAfter <= 0 {
		cfg.EscalateAfter = 3
	}
	if sink == nil {
		sink = notify.Discard{}
	}
	return &Queue{cfg: cfg, store: store, endpoint: endpoint, sink: sink}
}

// Open restores the persisted queue into memory. Must be called before
// Capture or Flush.
func (q *Queue) Open() error {
	_, err := q.Restore()
	return err
}

// Close marks the queue closed and stops the periodic flush ticker. An
// in-flight flush is allowed to run to completion; Close waits for it.
// Queue contents stay persisted.
func (q *Queue) Close() error {
	q.mu.Lock()
	q.closed = true
	f := q.inflight
	stop, done := q.tickStop, q.tickDone
	q.tickStop, q.tickDone = nil, nil
	q.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
	if f != nil {
		<-f.done
	}
	return nil
}

// StartPeriodicFlush flushes the queue every interval until Close. It runs
// alongside the connectivity trigger so that queued records are retried even
// when no transition fires, such as when no health URL is configured and the
// endpoint is assumed reachable.
func (q *Queue) StartPeriodicFlush(interval time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed || q.tickStop != nil {
		return
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	q.tickStop, q.tickDone = stop, done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// A tick racing Close sees ErrQueueClosed; not worth logging.
				if _, err := q.Flush(context.Background()); err != nil && !errors.Is(err, domain.ErrQueueClosed) {
					log.Printf("[queue] periodic flush error: %v", err)
				}
			case <-stop:
				return
			}
		}
	}()
}

// BindMonitor subscribes the queue to connectivity transitions: on
// became-online, a flush is kicked off in the background.
func (q *Queue) BindMonitor(m connectivity.Monitor) {
	m.Subscribe(func(online bool) {
		if !online {
			return
		}
		go func() {
			report, err := q.Flush(context.Background())
			if err != nil {
				log.Printf("[queue] connectivity-triggered flush error: %v", err)
				return
			}
			log.Printf("[queue] connectivity-triggered flush: synced=%d failed=%d",
				report.Succeeded, len(report.Failed))
		}()
	})
}

// ─── Capture ────────────────────────────────────────────────────────────────

// NewRecord builds a queue record from a validated input: id from capture
// time plus a random component, capture timestamp in epoch milliseconds,
// category resolved by best-effort classification when absent.
func NewRecord(in domain.TransactionInput, now time.Time) domain.QueuedTransaction {
	category := in.Category
	if category == "" {
		category = categorize.Categorize(in.Description)
	}
	return domain.QueuedTransaction{
		ID:          fmt.Sprintf("txn_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
		Description: in.Description,
		Amount:      in.Amount,
		Kind:        in.Kind,
		Category:    category,
		CapturedAt:  now.UnixMilli(),
	}
}

// Capture appends a transaction to the queue and persists it before
// returning. Only the offline path calls this — when the endpoint is
// reachable, callers submit directly and bypass the queue.
//
// On a store write failure the record is returned alongside an error
// wrapping domain.ErrPersistence: it is queued in memory for this session
// but NOT durable, and the caller must warn the user.
func (q *Queue) Capture(in domain.TransactionInput) (domain.QueuedTransaction, error) {
	if err := in.Validate(); err != nil {
		return domain.QueuedTransaction{}, err
	}

	rec := NewRecord(in, time.Now())

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return domain.QueuedTransaction{}, domain.ErrQueueClosed
	}

	q.records = append(q.records, rec)
	observability.CapturesTotal.Inc()
	observability.QueueDepth.Set(float64(len(q.records)))

	if err := q.persistLocked(); err != nil {
		return rec, fmt.Errorf("%w: record %s queued in memory only: %v",
			domain.ErrPersistence, rec.ID, err)
	}
	log.Printf("[queue] captured %s (%s %s) pending=%d", rec.ID, rec.Kind, rec.Amount, len(q.records))
	return rec, nil
}

// ─── Flush ──────────────────────────────────────────────────────────────────

// Flush submits pending records to the remote endpoint in insertion order.
// A failing record is left in place and never blocks the records behind it.
// Each success is persisted immediately, so a crash mid-flush neither loses
// progress nor re-submits confirmed records (beyond the documented
// at-least-once window).
//
// At most one flush runs at a time. A call arriving while one is in flight
// coalesces: it blocks until the running pass completes and returns that
// pass's report.
func (q *Queue) Flush(ctx context.Context) (domain.FlushReport, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.FlushReport{}, domain.ErrQueueClosed
	}
	if f := q.inflight; f != nil {
		q.mu.Unlock()
		select {
		case <-f.done:
			return f.report, nil
		case <-ctx.Done():
			return domain.FlushReport{}, ctx.Err()
		}
	}
	f := &flushPass{done: make(chan struct{})}
	q.inflight = f
	ids := make([]string, len(q.records))
	for i, r := range q.records {
		ids[i] = r.ID
	}
	q.mu.Unlock()

	f.report = q.runPass(ctx, ids)

	q.mu.Lock()
	q.inflight = nil
	q.mu.Unlock()
	close(f.done)
	return f.report, nil
}

// runPass walks the snapshot of record ids taken at flush start. Records
// captured after the snapshot wait for the next pass.
func (q *Queue) runPass(ctx context.Context, ids []string) domain.FlushReport {
	report := domain.FlushReport{Failed: []domain.FlushFailure{}}
	if len(ids) == 0 {
		return report
	}

	start := time.Now()
	defer func() {
		observability.FlushPassesTotal.Inc()
		observability.FlushDuration.Observe(time.Since(start).Seconds())
	}()

	for _, id := range ids {
		rec, ok := q.lookup(id)
		if !ok {
			continue // removed by a previous pass between snapshot and now
		}

		recCtx, cancel := context.WithTimeout(ctx, q.cfg.RecordTimeout)
		err := q.endpoint.Submit(recCtx, rec)
		cancel()

		if err != nil {
			failed := q.markFailed(id)
			report.Failed = append(report.Failed, domain.FlushFailure{
				Record: failed,
				Reason: err.Error(),
			})
			observability.FlushRecordsTotal.WithLabelValues("failed").Inc()
			if failed.Attempts == q.cfg.EscalateAfter {
				q.sink.Notify(notify.LevelWarn, fmt.Sprintf(
					"transaction %q (%s) has failed to sync %d times: %v",
					rec.Description, rec.ID, failed.Attempts, err))
			}
			continue
		}

		if perr := q.removeSynced(id); perr != nil {
			// The remote has the record; losing this write only risks a
			// duplicate submit, which the endpoint deduplicates on id.
			log.Printf("[queue] persist after sync of %s failed: %v", id, perr)
			observability.PersistFailuresTotal.Inc()
		}
		report.Succeeded++
		observability.FlushRecordsTotal.WithLabelValues("synced").Inc()
	}

	log.Printf("[queue] flush pass done: synced=%d failed=%d", report.Succeeded, len(report.Failed))
	return report
}

// lookup returns the current copy of a record by id.
func (q *Queue) lookup(id string) (domain.QueuedTransaction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, r := range q.records {
		if r.ID == id {
			return r, true
		}
	}
	return domain.QueuedTransaction{}, false
}

// markFailed increments the attempt count of a record in place and returns
// the updated copy. Attempt counts ride along on the next persisted write.
func (q *Queue) markFailed(id string) domain.QueuedTransaction {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failedTotal++
	for i := range q.records {
		if q.records[i].ID == id {
			q.records[i].Attempts++
			return q.records[i]
		}
	}
	return domain.QueuedTransaction{ID: id}
}

// removeSynced drops a confirmed record and persists the shrunk queue
// immediately, keeping the data at risk to the single in-flight record.
func (q *Queue) removeSynced(id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.records {
		if q.records[i].ID == id {
			q.records = append(q.records[:i], q.records[i+1:]...)
			break
		}
	}
	q.syncedTotal++
	observability.QueueDepth.Set(float64(len(q.records)))
	return q.persistLocked()
}

// ─── Restore / Inspect ──────────────────────────────────────────────────────

// Restore re-reads the persisted queue into memory and returns it in
// insertion order. A corrupt blob is replaced with a valid empty queue and
// reported as empty — never as an error.
func (q *Queue) Restore() ([]domain.QueuedTransaction, error) {
	blob, found, err := q.store.Get(StoreKey)
	if err != nil {
		return nil, fmt.Errorf("read persisted queue: %w", err)
	}

	var records []domain.QueuedTransaction
	if found {
		records, err = domain.DecodeQueue(blob)
		if err != nil {
			log.Printf("[queue] corrupt persisted queue, resetting: %v", err)
			observability.CorruptRestoresTotal.Inc()
			records = nil
			if serr := q.store.Set(StoreKey, domain.EmptyQueueBlob); serr != nil {
				observability.PersistFailuresTotal.Inc()
				return nil, fmt.Errorf("%w: heal corrupt queue: %v", domain.ErrPersistence, serr)
			}
		}
	}

	q.mu.Lock()
	q.records = records
	observability.QueueDepth.Set(float64(len(q.records)))
	q.mu.Unlock()
	return append([]domain.QueuedTransaction(nil), records...), nil
}

// Pending returns a copy of the current queue contents in insertion order.
func (q *Queue) Pending() []domain.QueuedTransaction {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]domain.QueuedTransaction(nil), q.records...)
}

// Clear empties the queue and its persisted blob. This is the explicit
// "clear data" action — records are never dropped implicitly by size or age.
func (q *Queue) Clear() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.records = nil
	observability.QueueDepth.Set(0)
	if err := q.store.Delete(StoreKey); err != nil {
		return fmt.Errorf("clear persisted queue: %w", err)
	}
	return nil
}

// Stats is the aggregate sync status ("N pending, M failed") surfaced to
// callers instead of per-retry noise.
type Stats struct {
	Pending int   `json:"pending"`
	Synced  int64 `json:"synced"`
	Failed  int64 `json:"failed"`
}

// Stats returns counters accumulated since Open.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Stats{
		Pending: len(q.records),
		Synced:  q.syncedTotal,
		Failed:  q.failedTotal,
	}
}

// persistLocked writes the full queue under the fixed key. Callers hold q.mu.
func (q *Queue) persistLocked() error {
	blob, err := domain.EncodeQueue(q.records)
	if err != nil {
		return err
	}
	if err := q.store.Set(StoreKey, blob); err != nil {
		observability.PersistFailuresTotal.Inc()
		return err
	}
	return nil
}
