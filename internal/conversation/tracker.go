// Package conversation tracks per-conversation multi-turn state: at most
// one pending interaction per conversation, plus the last expense touched,
// which edit/delete commands use as their implicit target.
package conversation

import (
	"sync"
	"time"

	"github.com/miguelangat/dividela2-sub008/internal/model"
)

// DefaultTTL is how long a pending interaction stays answerable before it
// is treated as abandoned.
const DefaultTTL = 5 * time.Minute

// entry is the per-conversation slot. Pending is replaced wholesale, never
// patched.
type entry struct {
	pending       *model.PendingInteraction
	lastExpenseID int64
}

// Tracker is an in-memory conversation state store. It is constructed by
// the host application and passed by reference into the dispatcher; there
// is no package-level instance.
type Tracker struct {
	now     func() time.Time
	entries map[string]*entry
	ttl     time.Duration
	mu      sync.Mutex
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithTTL overrides the pending interaction expiration window.
func WithTTL(ttl time.Duration) Option {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock overrides the clock, for expiration tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates an empty tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{
		entries: make(map[string]*entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetPending returns the conversation's pending interaction, or nil when
// there is none. Expired entries are cleared lazily here; there is no
// background sweeper.
func (t *Tracker) GetPending(conversationID string) *model.PendingInteraction {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[conversationID]
	if !ok || e.pending == nil {
		return nil
	}
	if t.now().Sub(e.pending.CreatedAt) > t.ttl {
		e.pending = nil
		return nil
	}
	return e.pending
}

// SetPending stores a pending interaction for the conversation, replacing
// any existing one. A conversation holds at most one pending interaction.
func (t *Tracker) SetPending(conversationID string, pending *model.PendingInteraction) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slot(conversationID).pending = pending
}

// ClearPending removes the conversation's pending interaction, if any.
func (t *Tracker) ClearPending(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[conversationID]; ok {
		e.pending = nil
	}
}

// LastExpenseID returns the id of the expense most recently touched in
// this conversation, or zero when none.
func (t *Tracker) LastExpenseID(conversationID string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[conversationID]; ok {
		return e.lastExpenseID
	}
	return 0
}

// SetLastExpenseID records the expense most recently touched in this
// conversation.
func (t *Tracker) SetLastExpenseID(conversationID string, expenseID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.slot(conversationID).lastExpenseID = expenseID
}

// Forget drops all state for a conversation.
func (t *Tracker) Forget(conversationID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, conversationID)
}

// slot returns the conversation's entry, creating it if needed. Callers
// must hold the lock.
func (t *Tracker) slot(conversationID string) *entry {
	e, ok := t.entries[conversationID]
	if !ok {
		e = &entry{}
		t.entries[conversationID] = e
	}
	return e
}
