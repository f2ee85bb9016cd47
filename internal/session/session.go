package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/rshade/subview/internal/batch"
	"github.com/rshade/subview/internal/billingstore"
	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/metrics"
	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/subscription"
)

var errInvalidPollInterval = errors.New("poll interval must be positive")

func sectionError(sec Section, err error) error {
	return fmt.Errorf("%s: %w", sec, err)
}

// epoch is one generation of a session: from Open or Reload until the next
// Open, Reload or Close. Its context is cancelled when it is superseded.
type epoch struct {
	n      uint64
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	// writer is nil when the variant does not sync shared billing slots.
	writer *billingstore.Writer
}

// Session is the data orchestrator of one subscription detail view. It is
// safe for concurrent use.
type Session struct {
	variant      Variant
	backend      Backend
	directory    Directory
	notifier     Notifier
	store        *billingstore.Store
	clock        clockwork.Clock
	metrics      *metrics.Metrics
	pollInterval time.Duration
	pageSizes    map[Section]int
	batchSize    int
	lookups      *batch.Processor[string]

	changes chan struct{}

	mu          sync.Mutex
	base        context.Context
	id          string
	epochs      uint64
	cur         *epoch
	status      Status
	rootLoading bool
	reloadCount int
	entity      *subscription.Subscription
	actions     subscription.ActionSet
	admitted    Set
	poll        *poll
	pending     int
	idle        chan struct{}

	payments      *pagedSection[subscription.BillingRecord]
	managers      *pagedSection[subscription.SubscriptionUser]
	domains       *pagedSection[subscription.Domain]
	users         *pagedSection[subscription.SubscriptionUser]
	usage         *slot[subscription.Usage]
	paymentMethod *slot[subscription.PaymentMethod]
	customerInfo  *slot[subscription.CustomerInfo]
	pricingTerms  *slot[subscription.PricingTerms]
}

// New returns an idle session. Call Open to load a subscription.
func New(backend Backend, opts ...Option) (*Session, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}

	idle := make(chan struct{})
	close(idle)

	s := &Session{
		variant:      VariantUnified,
		backend:      backend,
		notifier:     NotifierFunc(func(context.Context, Notification) {}),
		clock:        clockwork.NewRealClock(),
		pollInterval: DefaultPollInterval,
		pageSizes:    defaultPageSizes(),
		batchSize:    batch.DefaultBatchSize,
		changes:      make(chan struct{}, 1),
		status:       StatusIdle,
		idle:         idle,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid session options: %w", err)
	}
	s.resetSectionsLocked()
	return s, nil
}

// Variant returns the session variant.
func (s *Session) Variant() Variant {
	return s.variant
}

// Changes delivers a value after state changes. Bursts are coalesced; read
// Snapshot after each receive.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

func (s *Session) signal() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Open starts a session for the subscription id, discarding any previous
// subscription's state. Loading continues in the background after Open
// returns; ctx bounds the whole session.
func (s *Session) Open(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w %q: %w", ErrInvalidID, id, err)
	}

	s.mu.Lock()
	s.base = logging.ContextWithTraceID(ctx, logging.GetOrGenerateTraceID(ctx))
	s.id = id
	s.reloadCount = 0
	s.entity = nil
	s.actions = nil
	s.admitted = 0
	s.resetSectionsLocked()
	ep := s.beginEpochLocked()
	s.goLocked(func() { s.load(ep) })
	s.mu.Unlock()

	s.signal()
	return nil
}

// Reload starts a new epoch for the open subscription. Section pagination and
// items are kept until the new responses replace them.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return ErrNotOpen
	}
	s.reloadLocked()
	return nil
}

func (s *Session) reloadLocked() {
	s.reloadCount++
	ep := s.beginEpochLocked()
	s.goLocked(func() { s.load(ep) })
	s.signal()
}

// Close cancels in-flight work and the poll and releases the shared billing
// claim. Later results are dropped. Close does not wait; use WaitIdle.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cur == nil {
		s.mu.Unlock()
		return
	}
	s.endEpochLocked()
	s.cur = nil
	s.status = StatusIdle
	s.rootLoading = false
	s.clearPrimedLocked()
	s.mu.Unlock()

	s.signal()
}

// WaitIdle blocks until no root load or section request is in flight. The
// activation poll does not count.
func (s *Session) WaitIdle(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.pending == 0 {
			s.mu.Unlock()
			return nil
		}
		ch := s.idle
		s.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// UpdatePagination merges patch into a paginated section. When the page or
// size changed, both are non-zero, and the subscription is loaded, exactly
// one fetch is issued with the merged values and true is returned.
func (s *Session) UpdatePagination(sec Section, patch pagination.Patch) (bool, error) {
	if !sec.Paginated() {
		return false, sectionError(sec, ErrNotPaginated)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var req pagination.Request
	var due bool
	switch sec {
	case SectionPayments:
		req, due = s.payments.ctrl.Update(patch)
	case SectionManagers:
		req, due = s.managers.ctrl.Update(patch)
	case SectionDomains:
		req, due = s.domains.ctrl.Update(patch)
	case SectionUsers:
		req, due = s.users.ctrl.Update(patch)
	}
	defer s.signal()

	ep := s.cur
	if !due || ep == nil || s.entity == nil || s.status != StatusReady || !s.admitted.Has(sec) {
		return false, nil
	}

	switch sec {
	case SectionPayments:
		goPagedLocked(s, ep, s.paymentsFetch(), req)
	case SectionManagers:
		goPagedLocked(s, ep, s.managersFetch(), req)
	case SectionDomains:
		goPagedLocked(s, ep, s.domainsFetch(), req)
	case SectionUsers:
		goPagedLocked(s, ep, s.usersFetch(), req)
	}
	return true, nil
}

// beginEpochLocked supersedes the current epoch and returns a fresh one.
func (s *Session) beginEpochLocked() *epoch {
	s.endEpochLocked()

	ctx, cancel := context.WithCancel(s.base)
	s.epochs++
	ep := &epoch{n: s.epochs, id: s.id, ctx: ctx, cancel: cancel}
	if s.variant == VariantUnified && s.store != nil {
		ep.writer = s.store.Claim(s.id)

		log := logging.FromContext(ctx)
		log.Debug().
			Ctx(ctx).
			Str("component", "session").
			Str("operation", "claim_billing_slots").
			Str("subscription_id", ep.writer.SubscriptionID()).
			Str("writer", ep.writer.Token()).
			Uint64("epoch", ep.n).
			Msg("billing slots claimed")
	}
	s.cur = ep
	s.status = StatusLoading
	s.rootLoading = true

	if s.variant == VariantProfile {
		for _, t := range []*tracker{
			&s.managers.tracker, &s.payments.tracker, &s.domains.tracker, &s.users.tracker,
		} {
			t.primed = true
		}
	}
	return ep
}

func (s *Session) endEpochLocked() {
	s.stopPollLocked()
	if s.cur == nil {
		return
	}
	s.cur.cancel()
	if s.cur.writer != nil {
		s.cur.writer.Release()
	}
}

func (s *Session) resetSectionsLocked() {
	s.payments = newPagedSection[subscription.BillingRecord](SectionPayments, s.pageSizes[SectionPayments])
	s.managers = newPagedSection[subscription.SubscriptionUser](SectionManagers, s.pageSizes[SectionManagers])
	s.domains = newPagedSection[subscription.Domain](SectionDomains, s.pageSizes[SectionDomains])
	s.users = newPagedSection[subscription.SubscriptionUser](SectionUsers, s.pageSizes[SectionUsers])
	s.usage = newSlot[subscription.Usage](SectionUsage)
	s.paymentMethod = newSlot[subscription.PaymentMethod](SectionPaymentMethod)
	s.customerInfo = newSlot[subscription.CustomerInfo](SectionCustomerInfo)
	s.pricingTerms = newSlot[subscription.PricingTerms](SectionPricingTerms)
}

func (s *Session) clearPrimedLocked() {
	for _, t := range []*tracker{
		&s.managers.tracker, &s.payments.tracker, &s.domains.tracker, &s.users.tracker,
	} {
		t.primed = false
	}
}

// goLocked runs fn on a goroutine counted by WaitIdle.
func (s *Session) goLocked(fn func()) {
	if s.pending == 0 {
		s.idle = make(chan struct{})
	}
	s.pending++

	go func() {
		defer s.done()
		fn()
	}()
}

func (s *Session) done() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending--
	if s.pending == 0 {
		close(s.idle)
	}
}

func (s *Session) isCurrent(ep *epoch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur == ep
}

// deliver hands notifications to the notifier outside the lock.
func (s *Session) deliver(ctx context.Context, notes []Notification) {
	for _, n := range notes {
		s.notifier.Notify(ctx, n)
	}
}
