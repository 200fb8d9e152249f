package model

import "time"

// PendingKind distinguishes the two multi-turn exchange states.
type PendingKind string

const (
	// AwaitingConfirmation means a destructive action needs a yes/no reply.
	AwaitingConfirmation PendingKind = "awaiting_confirmation"
	// AwaitingSelection means a category choice needs a numbered reply.
	AwaitingSelection PendingKind = "awaiting_selection"
)

// CategoryCandidate is one entry of a disambiguation list shown to the user.
type CategoryCandidate struct {
	Name string
	ID   int
}

// PendingInteraction is the saved state of an unfinished multi-turn
// exchange. It is immutable once created: replies either resolve it or a
// replacement is written, never a patch.
type PendingInteraction struct {
	CreatedAt  time.Time
	Summary    string
	Candidates []CategoryCandidate
	Entities   EntitySet
	Intent     Intent
	Kind       PendingKind
}
