package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"

	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/metrics"
	"github.com/rshade/subview/internal/subscription"
)

// poll is the activation poll of one epoch. It waits on a one-shot timer until
// the scheduled activation, then re-fetches the subscription every interval
// until its updatedAt moves away from baseline.
type poll struct {
	id       ulid.ULID
	ep       *epoch
	baseline time.Time
	at       time.Time
	timer    clockwork.Timer
	ctx      context.Context
	cancel   context.CancelFunc
	polling  bool
}

// armPollLocked schedules the activation poll when the subscription has a
// future activation that nothing but a missing billing record blocks. It is a
// no-op when a poll already exists.
func (s *Session) armPollLocked(ep *epoch, sub subscription.Subscription, actions subscription.ActionSet) {
	if s.variant != VariantUnified || s.poll != nil || s.cur != ep {
		return
	}
	if sub.ActivationDate == nil || !actions.ActivationScheduled() {
		return
	}
	at := *sub.ActivationDate
	wait := at.Sub(s.clock.Now())
	if wait <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(ep.ctx)
	p := &poll{
		id:       ulid.Make(),
		ep:       ep,
		baseline: sub.UpdatedAt,
		at:       at,
		ctx:      ctx,
		cancel:   cancel,
	}
	p.timer = s.clock.AfterFunc(wait, func() { s.startPolling(p) })
	s.poll = p
	s.metrics.PollArmed(1)

	log := logging.FromContext(ctx)
	log.Info().
		Ctx(ctx).
		Str("component", "session").
		Str("operation", "arm_poll").
		Str("subscription_id", ep.id).
		Str("poll_id", p.id.String()).
		Time("activation_at", at).
		Dur("wait", wait).
		Msg("activation poll armed")
}

// stopPollLocked cancels the timer and any running ticks.
func (s *Session) stopPollLocked() {
	p := s.poll
	if p == nil {
		return
	}
	s.poll = nil
	p.timer.Stop()
	p.cancel()
	s.metrics.PollArmed(-1)
}

// startPolling runs when the activation timer fires.
func (s *Session) startPolling(p *poll) {
	s.mu.Lock()
	if s.poll != p || p.polling || p.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	p.polling = true
	ticker := s.clock.NewTicker(s.pollInterval)
	s.mu.Unlock()
	s.signal()

	go s.runPoll(p, ticker)
}

func (s *Session) runPoll(p *poll, ticker clockwork.Ticker) {
	defer ticker.Stop()

	if !s.tick(p) {
		return
	}
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.Chan():
			if !s.tick(p) {
				return
			}
		}
	}
}

// tick re-fetches the subscription and escalates to a reload on divergence.
// It reports whether the poll should continue.
func (s *Session) tick(p *poll) bool {
	ctx := p.ctx
	log := logging.FromContext(ctx)

	sub, err := s.backend.Subscription(ctx, p.ep.id)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		s.metrics.ObservePollTick(metrics.OutcomeFailure)
		log.Warn().
			Ctx(ctx).
			Str("component", "session").
			Str("operation", "poll_tick").
			Str("poll_id", p.id.String()).
			Err(err).
			Msg("activation poll tick failed")
		return true
	}
	if sub.UpdatedAt.Equal(p.baseline) {
		s.metrics.ObservePollTick(metrics.OutcomeUnchanged)
		log.Debug().
			Ctx(ctx).
			Str("component", "session").
			Str("operation", "poll_tick").
			Str("poll_id", p.id.String()).
			Msg("subscription unchanged")
		return true
	}
	s.metrics.ObservePollTick(metrics.OutcomeChanged)

	s.mu.Lock()
	if s.poll != p || s.cur != p.ep {
		s.mu.Unlock()
		return false
	}
	s.stopPollLocked()
	s.reloadLocked()
	s.mu.Unlock()

	s.metrics.ObserveEscalation()
	log.Info().
		Ctx(ctx).
		Str("component", "session").
		Str("operation", "poll_tick").
		Str("poll_id", p.id.String()).
		Time("baseline", p.baseline).
		Time("updated_at", sub.UpdatedAt).
		Msg("subscription changed, reloading")
	return false
}
