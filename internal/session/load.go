package session

import (
	"golang.org/x/sync/errgroup"

	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/metrics"
	"github.com/rshade/subview/internal/subscription"
)

// load runs one epoch: the root fetch, admission, then the staged section
// fetches.
func (s *Session) load(ep *epoch) {
	ctx := ep.ctx
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "session").
		Str("operation", "load").
		Str("subscription_id", ep.id).
		Str("variant", string(s.variant)).
		Uint64("epoch", ep.n).
		Msg("loading subscription")

	sub, err := s.backend.Subscription(ctx, ep.id)

	s.mu.Lock()
	if s.cur != ep || ctx.Err() != nil {
		s.mu.Unlock()
		s.metrics.ObserveRootLoad(string(s.variant), metrics.OutcomeStale)
		return
	}
	s.rootLoading = false
	if err != nil {
		s.status = ClassifyRootError(err)
		s.clearPrimedLocked()
		if ep.writer != nil {
			s.observeWrite(ep.writer.Clear(), "clear")
		}
		status := s.status
		s.mu.Unlock()

		outcome := metrics.OutcomeServerError
		if status == StatusNotFound {
			outcome = metrics.OutcomeNotFound
		}
		s.metrics.ObserveRootLoad(string(s.variant), outcome)
		log.Warn().
			Ctx(ctx).
			Str("component", "session").
			Str("operation", "load").
			Str("subscription_id", ep.id).
			Str("status", string(status)).
			Err(err).
			Msg("subscription load failed")
		s.signal()
		return
	}

	s.entity = &sub
	s.admitted = Admit(s.variant, sub)
	s.status = StatusReady
	admitted := s.admitted
	if s.variant == VariantUnified {
		s.goLocked(func() { s.loadActions(ep, sub) })
	}
	s.mu.Unlock()

	s.metrics.ObserveRootLoad(string(s.variant), metrics.OutcomeReady)
	log.Debug().
		Ctx(ctx).
		Str("component", "session").
		Str("operation", "load").
		Str("subscription_id", ep.id).
		Str("admitted", admitted.String()).
		Msg("subscription loaded")
	s.signal()

	s.runStages(ep, admitted)

	s.mu.Lock()
	if s.cur == ep {
		s.clearPrimedLocked()
	}
	s.mu.Unlock()
	s.signal()
}

// runStages issues the section fetches in order: usage; then domains and
// users together; then the remaining sections together. A stage starts only
// after every member of the previous one has finished, and members never
// cancel each other.
func (s *Session) runStages(ep *epoch, admitted Set) {
	s.fetchUsage(ep)
	if ep.ctx.Err() != nil {
		return
	}

	if admitted.Has(SectionDomains) || admitted.Has(SectionUsers) {
		// Fetchers report their own failures; the group only waits.
		var g errgroup.Group
		g.Go(func() error { s.fetchDomains(ep); return nil })
		g.Go(func() error { s.fetchUsers(ep); return nil })
		_ = g.Wait()
		if ep.ctx.Err() != nil {
			return
		}
	}

	last := []func(*epoch){s.fetchManagers, s.fetchPayments, s.fetchPaymentMethod}
	if s.variant == VariantUnified {
		last = append(last, s.fetchCustomerInfo, s.fetchPricingTerms)
	}
	// Fetchers report their own failures; the group only waits.
	var g errgroup.Group
	for _, fetch := range last {
		g.Go(func() error { fetch(ep); return nil })
	}
	_ = g.Wait()
}

// loadActions fetches action availability and arms the activation poll when
// it applies. Failure leaves the poll unarmed.
func (s *Session) loadActions(ep *epoch, sub subscription.Subscription) {
	ctx := ep.ctx
	actions, err := s.backend.Actions(ctx, ep.id)
	if err != nil {
		if ctx.Err() == nil {
			log := logging.FromContext(ctx)
			log.Warn().
				Ctx(ctx).
				Str("component", "session").
				Str("operation", "load_actions").
				Str("subscription_id", ep.id).
				Err(err).
				Msg("failed to load subscription actions")
		}
		return
	}

	s.mu.Lock()
	if s.cur != ep {
		s.mu.Unlock()
		return
	}
	s.actions = actions
	s.armPollLocked(ep, sub, actions)
	s.mu.Unlock()
	s.signal()
}
