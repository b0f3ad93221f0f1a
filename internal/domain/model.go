// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring — everything else depends on it, it depends on nothing.
package domain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ─── Transaction Types ──────────────────────────────────────────────────────

// Kind classifies a transaction by direction. The amount field carries
// magnitude only; sign lives here.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// QueuedTransaction is a financial event captured while the remote endpoint
// was unreachable or unconfirmed, awaiting submission.
//
// The JSON field names below are the persisted schema. They must stay stable
// across versions: queues written by an older build are restored by newer
// ones. New fields may be added, but only if their zero value is a correct
// default for old data (attempts was added this way).
type QueuedTransaction struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category,omitempty"`
	CapturedAt  int64           `json:"capturedAt"` // ms since epoch, time of queueing
	Synced      bool            `json:"synced"`
	Attempts    int             `json:"attempts,omitempty"` // failed submit attempts so far
}

// TransactionInput is a capture request before an id is assigned.
// Category may be empty; it is then resolved by best-effort classification.
type TransactionInput struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        Kind            `json:"kind"`
	Category    string          `json:"category,omitempty"`
}

// Validate checks an input for capture. Amount must be non-negative;
// description must be non-blank; kind must be a known value.
func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if in.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if !in.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(in.Kind))
	}
	return nil
}

// ─── Flush Types ────────────────────────────────────────────────────────────

// FlushFailure pairs a record with the reason its submission failed.
type FlushFailure struct {
	Record QueuedTransaction `json:"record"`
	Reason string            `json:"reason"`
}

// FlushReport summarizes one flush pass over the queue.
// Failed preserves queue order.
type FlushReport struct {
	Succeeded int            `json:"succeeded"`
	Failed    []FlushFailure `json:"failed"`
}

// ─── Queue Codec ────────────────────────────────────────────────────────────

// EmptyQueueBlob is the valid persisted representation of an empty queue,
// written when self-healing a corrupt blob.
const EmptyQueueBlob = "[]"

// EncodeQueue serializes a queue for the persistent store. The encoding is
// deterministic: encode → decode → encode yields identical bytes, so
// re-persisting an untouched queue is byte-stable.
func EncodeQueue(records []QueuedTransaction) (string, error) {
	if len(records) == 0 {
		return EmptyQueueBlob, nil
	}
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode queue: %w", err)
	}
	return string(data), nil
}

// DecodeQueue parses a persisted queue blob. A syntactically invalid blob
// returns an error wrapping ErrCorruptQueue; callers treat that as an empty
// queue and overwrite the stored value.
func DecodeQueue(blob string) ([]QueuedTransaction, error) {
	var records []QueuedTransaction
	if err := json.Unmarshal([]byte(blob), &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptQueue, err)
	}
	return records, nil
}
