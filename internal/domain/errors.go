package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Validation errors
	ErrEmptyDescription = errors.New("transaction description is empty")
	ErrNegativeAmount   = errors.New("transaction amount must be non-negative")
	ErrInvalidKind      = errors.New("unknown transaction kind")

	// Queue errors
	ErrQueueClosed  = errors.New("offline queue is closed")
	ErrCorruptQueue = errors.New("persisted queue blob is corrupt")
	ErrPersistence  = errors.New("persistent store write failed")

	// Remote errors
	ErrRemoteUnavailable = errors.New("remote sync endpoint unreachable")
	ErrRemoteRejected    = errors.New("remote sync endpoint rejected record")
)
