package session

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/rshade/subview/internal/billingstore"
	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/metrics"
	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/subscription"
)

// pagedFetch describes how one paginated section is fetched. pick, onSuccess
// and onFailure run with the session lock held.
type pagedFetch[T any] struct {
	pick      func() *pagedSection[T]
	call      func(ctx context.Context, id string, req pagination.Request) (subscription.Page[T], error)
	enrich    func(ctx context.Context, items []T, req pagination.Request) []T
	onSuccess func(ep *epoch, req pagination.Request, page subscription.Page[T])
	onFailure func(ep *epoch, req pagination.Request)
}

// slotFetch describes how one single-value section is fetched.
type slotFetch[T any] struct {
	pick func() *slot[T]
	call func(ctx context.Context, id string) (T, error)
	// emptyOnNotFound treats a 404 as a valid empty value.
	emptyOnNotFound bool
	// clearOnFailure drops the previous value when a fetch fails.
	clearOnFailure bool
}

// fetchPaged fetches a section with the pagination active now. It does
// nothing when the epoch is stale, the section is not admitted, or the
// pagination is unset.
func fetchPaged[T any](s *Session, ep *epoch, f pagedFetch[T]) {
	s.mu.Lock()
	sec := f.pick()
	st := sec.ctrl.State()
	if s.cur != ep || !s.admitted.Has(sec.sec) || !st.Ready() {
		s.mu.Unlock()
		return
	}
	run := issuePagedLocked(s, ep, f, st.Request())
	s.mu.Unlock()

	s.signal()
	run()
}

// goPagedLocked issues a fetch for req and completes it on a goroutine.
func goPagedLocked[T any](s *Session, ep *epoch, f pagedFetch[T], req pagination.Request) {
	s.goLocked(issuePagedLocked(s, ep, f, req))
}

func issuePagedLocked[T any](s *Session, ep *epoch, f pagedFetch[T], req pagination.Request) func() {
	sec := f.pick()
	seq, scope := s.acquireLocked(&sec.tracker)
	return func() {
		completePaged(s, ep, sec, f, req, seq, scope)
	}
}

func completePaged[T any](
	s *Session,
	ep *epoch,
	sec *pagedSection[T],
	f pagedFetch[T],
	req pagination.Request,
	seq uint64,
	scope *loadingScope,
) {
	defer scope.Release()
	ctx := ep.ctx
	log := logging.FromContext(ctx)
	started := time.Now()

	page, err := f.call(ctx, ep.id, req)
	items := page.Data
	if err == nil && f.enrich != nil {
		items = f.enrich(ctx, items, req)
	}

	var notes []Notification
	outcome := metrics.OutcomeSuccess

	s.mu.Lock()
	switch {
	case !s.latestLocked(ep, &sec.tracker, seq) || ctx.Err() != nil:
		outcome = metrics.OutcomeStale
	case err != nil:
		outcome = metrics.OutcomeFailure
		notes = append(notes, sectionFailure(sec.sec, err, s.clock.Now()))
		if f.onFailure != nil {
			f.onFailure(ep, req)
		}
	default:
		sec.items = items
		sec.ctrl.Settle(pagination.NewMeta(page.CurrentPage, page.PageSize, page.TotalCount, page.TotalPages))
		if f.onSuccess != nil {
			f.onSuccess(ep, req, page)
		}
	}
	s.mu.Unlock()

	s.metrics.ObserveSectionFetch(sec.sec.String(), outcome, time.Since(started))
	ev := log.Debug()
	if outcome == metrics.OutcomeFailure {
		ev = log.Warn().Err(err)
	}
	ev.Ctx(ctx).
		Str("component", "session").
		Str("operation", "fetch_section").
		Str("section", sec.sec.String()).
		Int("page", req.Page).
		Int("page_size", req.PageSize).
		Uint64("epoch", ep.n).
		Str("outcome", outcome).
		Msg("section fetch finished")

	s.deliver(ctx, notes)
	s.signal()
}

func fetchSlot[T any](s *Session, ep *epoch, f slotFetch[T]) {
	s.mu.Lock()
	sl := f.pick()
	if s.cur != ep || !s.admitted.Has(sl.sec) {
		s.mu.Unlock()
		return
	}
	seq, scope := s.acquireLocked(&sl.tracker)
	s.mu.Unlock()
	s.signal()
	defer scope.Release()

	ctx := ep.ctx
	log := logging.FromContext(ctx)
	started := time.Now()

	v, err := f.call(ctx, ep.id)

	var notes []Notification
	outcome := metrics.OutcomeSuccess

	s.mu.Lock()
	switch {
	case !s.latestLocked(ep, &sl.tracker, seq) || ctx.Err() != nil:
		outcome = metrics.OutcomeStale
	case err == nil:
		sl.value = &v
	case f.emptyOnNotFound && subscription.IsNotFound(err):
		outcome = metrics.OutcomeEmpty
		sl.value = nil
	default:
		outcome = metrics.OutcomeFailure
		notes = append(notes, sectionFailure(sl.sec, err, s.clock.Now()))
		if f.clearOnFailure {
			sl.value = nil
		}
	}
	s.mu.Unlock()

	s.metrics.ObserveSectionFetch(sl.sec.String(), outcome, time.Since(started))
	ev := log.Debug()
	if outcome == metrics.OutcomeFailure {
		ev = log.Warn().Err(err)
	}
	ev.Ctx(ctx).
		Str("component", "session").
		Str("operation", "fetch_section").
		Str("section", sl.sec.String()).
		Uint64("epoch", ep.n).
		Str("outcome", outcome).
		Msg("section fetch finished")

	s.deliver(ctx, notes)
	s.signal()
}

func (s *Session) paymentsFetch() pagedFetch[subscription.BillingRecord] {
	return pagedFetch[subscription.BillingRecord]{
		pick: func() *pagedSection[subscription.BillingRecord] { return s.payments },
		call: s.backend.Payments,
		onSuccess: func(ep *epoch, _ pagination.Request, page subscription.Page[subscription.BillingRecord]) {
			if ep.writer == nil || page.CurrentPage != 1 {
				return
			}
			var slots billingstore.Slots
			if cur, ok := lo.Find(page.Data, func(r subscription.BillingRecord) bool { return r.IsCurrent }); ok {
				slots.Current = &cur
			}
			if next, ok := lo.Find(page.Data, func(r subscription.BillingRecord) bool { return r.IsUpcoming }); ok {
				slots.Upcoming = &next
			}
			s.observeWrite(ep.writer.Publish(slots), "publish")
		},
		onFailure: func(ep *epoch, req pagination.Request) {
			if ep.writer != nil && req.Page == 1 {
				s.observeWrite(ep.writer.Clear(), "clear")
			}
		},
	}
}

func (s *Session) managersFetch() pagedFetch[subscription.SubscriptionUser] {
	f := pagedFetch[subscription.SubscriptionUser]{
		pick: func() *pagedSection[subscription.SubscriptionUser] { return s.managers },
		call: s.backend.Managers,
	}
	if s.enriches() {
		f.enrich = s.enricher(SectionManagers)
	}
	return f
}

func (s *Session) domainsFetch() pagedFetch[subscription.Domain] {
	return pagedFetch[subscription.Domain]{
		pick: func() *pagedSection[subscription.Domain] { return s.domains },
		call: s.backend.Domains,
	}
}

func (s *Session) usersFetch() pagedFetch[subscription.SubscriptionUser] {
	f := pagedFetch[subscription.SubscriptionUser]{
		pick: func() *pagedSection[subscription.SubscriptionUser] { return s.users },
		call: s.backend.Users,
	}
	if s.enriches() {
		f.enrich = s.enricher(SectionUsers)
	}
	return f
}

func (s *Session) fetchPayments(ep *epoch) { fetchPaged(s, ep, s.paymentsFetch()) }
func (s *Session) fetchManagers(ep *epoch) { fetchPaged(s, ep, s.managersFetch()) }
func (s *Session) fetchDomains(ep *epoch)  { fetchPaged(s, ep, s.domainsFetch()) }
func (s *Session) fetchUsers(ep *epoch)    { fetchPaged(s, ep, s.usersFetch()) }

func (s *Session) fetchUsage(ep *epoch) {
	fetchSlot(s, ep, slotFetch[subscription.Usage]{
		pick: func() *slot[subscription.Usage] { return s.usage },
		call: s.backend.Usage,
	})
}

func (s *Session) fetchPaymentMethod(ep *epoch) {
	fetchSlot(s, ep, slotFetch[subscription.PaymentMethod]{
		pick: func() *slot[subscription.PaymentMethod] { return s.paymentMethod },
		call: s.backend.PaymentMethod,
	})
}

func (s *Session) fetchCustomerInfo(ep *epoch) {
	fetchSlot(s, ep, slotFetch[subscription.CustomerInfo]{
		pick: func() *slot[subscription.CustomerInfo] { return s.customerInfo },
		call: s.backend.CustomerInfo,
	})
}

func (s *Session) fetchPricingTerms(ep *epoch) {
	fetchSlot(s, ep, slotFetch[subscription.PricingTerms]{
		pick:            func() *slot[subscription.PricingTerms] { return s.pricingTerms },
		call:            s.backend.PricingTerms,
		emptyOnNotFound: true,
		clearOnFailure:  true,
	})
}

func (s *Session) observeWrite(res billingstore.WriteResult, op string) {
	if res == billingstore.Written {
		s.metrics.ObserveSharedWrite(op)
	}
}
