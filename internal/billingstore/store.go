// Package billingstore holds the current and upcoming billing record of each
// subscription for views outside the detail session. The store is bounded;
// the least recently used subscription is evicted first.
//
// Only the holder of the latest claim on a subscription may write its slots.
// Claiming again supersedes the previous Writer, whose writes become no-ops.
package billingstore

import (
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"

	"github.com/rshade/subview/internal/subscription"
)

// ErrInvalidCapacity is returned by New for a non-positive capacity.
var ErrInvalidCapacity = errors.New("billing store capacity must be positive")

// Slots is the pair of derived billing records for one subscription. A nil
// slot is cleared.
type Slots struct {
	Current  *subscription.BillingRecord
	Upcoming *subscription.BillingRecord
}

// Empty reports whether both slots are cleared.
func (s Slots) Empty() bool {
	return s.Current == nil && s.Upcoming == nil
}

// Equal reports whether both slots hold the same records.
func (s Slots) Equal(o Slots) bool {
	return recordEqual(s.Current, o.Current) && recordEqual(s.Upcoming, o.Upcoming)
}

func recordEqual(a, b *subscription.BillingRecord) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UUID == b.UUID &&
		a.Amount.Equal(b.Amount) &&
		a.Currency == b.Currency &&
		a.Status == b.Status &&
		a.IsCurrent == b.IsCurrent &&
		a.IsUpcoming == b.IsUpcoming &&
		a.PeriodStart.Equal(b.PeriodStart) &&
		a.PeriodEnd.Equal(b.PeriodEnd)
}

// WriteResult is the outcome of a Writer call.
type WriteResult int

// Write outcomes.
const (
	// Written means the slots changed.
	Written WriteResult = iota
	// Unchanged means the slots already held the same records.
	Unchanged
	// Superseded means the writer no longer holds the claim; nothing was written.
	Superseded
)

func (r WriteResult) String() string {
	switch r {
	case Written:
		return "written"
	case Unchanged:
		return "unchanged"
	case Superseded:
		return "superseded"
	default:
		return "unknown"
	}
}

// Store is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	slots  *lru.Cache[string, Slots]
	claims map[string]ulid.ULID
}

// New returns a store holding at most capacity subscriptions.
func New(capacity int) (*Store, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	cache, err := lru.New[string, Slots](capacity)
	if err != nil {
		return nil, fmt.Errorf("creating billing store: %w", err)
	}
	return &Store{
		slots:  cache,
		claims: make(map[string]ulid.ULID),
	}, nil
}

// Get returns the slots of a subscription. ok is false when nothing has been
// published or the entry was evicted.
func (s *Store) Get(subscriptionID string) (Slots, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots.Get(subscriptionID)
}

// Len returns the number of subscriptions held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots.Len()
}

// Claim makes the returned Writer the only one allowed to write the
// subscription's slots, superseding any earlier Writer.
func (s *Store) Claim(subscriptionID string) *Writer {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := ulid.Make()
	s.claims[subscriptionID] = token
	return &Writer{store: s, id: subscriptionID, token: token}
}

// Writer writes one subscription's slots on behalf of one claim.
type Writer struct {
	store *Store
	id    string
	token ulid.ULID
}

// SubscriptionID returns the subscription the writer was claimed for.
func (w *Writer) SubscriptionID() string {
	return w.id
}

// Token identifies the claim.
func (w *Writer) Token() string {
	return w.token.String()
}

// Publish stores the pair. Nothing is written when the claim has been
// superseded or released, or when the stored pair is already equal.
func (w *Writer) Publish(slots Slots) WriteResult {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if !w.activeLocked() {
		return Superseded
	}
	if existing, ok := s.slots.Peek(w.id); ok && existing.Equal(slots) {
		return Unchanged
	}
	s.slots.Add(w.id, slots)
	return Written
}

// Clear empties both slots.
func (w *Writer) Clear() WriteResult {
	return w.Publish(Slots{})
}

// Active reports whether the writer still holds the claim.
func (w *Writer) Active() bool {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	return w.activeLocked()
}

// Release gives up the claim. Published slots stay readable.
func (w *Writer) Release() {
	s := w.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.activeLocked() {
		delete(s.claims, w.id)
	}
}

func (w *Writer) activeLocked() bool {
	current, ok := w.store.claims[w.id]
	return ok && current == w.token
}
