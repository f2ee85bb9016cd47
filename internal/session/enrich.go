package session

import (
	"context"

	"github.com/samber/lo"

	"github.com/rshade/subview/internal/batch"
	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/metrics"
	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/subscription"
)

// DirectoryFields are requested from the directory for each user.
//
//nolint:gochecknoglobals // Fixed request shape.
var DirectoryFields = []string{subscription.FieldEmail, subscription.FieldJobInfo}

func (s *Session) enriches() bool {
	return s.variant == VariantUnified && s.directory != nil
}

func (s *Session) enricher(sec Section) func(context.Context, []subscription.SubscriptionUser, pagination.Request) []subscription.SubscriptionUser {
	return func(ctx context.Context, users []subscription.SubscriptionUser, req pagination.Request) []subscription.SubscriptionUser {
		return enrichUsers(ctx, s.directory, s.lookups, s.metrics, sec, users, req.PageSize)
	}
}

// enrichUsers merges directory data into users by user UUID, keeping the order
// of users. A failed lookup is logged and the records are returned as fetched.
func enrichUsers(
	ctx context.Context,
	dir Directory,
	proc *batch.Processor[string],
	m *metrics.Metrics,
	sec Section,
	users []subscription.SubscriptionUser,
	pageSize int,
) []subscription.SubscriptionUser {
	ids := lo.Uniq(lo.FilterMap(users, func(u subscription.SubscriptionUser, _ int) (string, bool) {
		return u.UserUUID, u.UserUUID != ""
	}))
	if len(ids) == 0 {
		return users
	}

	log := logging.FromContext(ctx)
	found, err := batch.Collect(ctx, proc, ids, func(ctx context.Context, chunk []string) ([]subscription.DirectoryUser, error) {
		return dir.SearchUsers(ctx, subscription.UserQuery{
			UUIDs:    chunk,
			Fields:   DirectoryFields,
			PageSize: max(pageSize, len(chunk)),
		})
	})
	if err != nil {
		m.ObserveEnrichment(sec.String(), metrics.OutcomeFailure)
		log.Warn().
			Ctx(ctx).
			Str("component", "session").
			Str("operation", "enrich_users").
			Str("section", sec.String()).
			Int("user_count", len(ids)).
			Err(err).
			Msg("directory lookup failed, publishing records without enrichment")
		return users
	}
	m.ObserveEnrichment(sec.String(), metrics.OutcomeSuccess)

	byID := lo.KeyBy(found, func(d subscription.DirectoryUser) string { return d.UUID })
	return lo.Map(users, func(u subscription.SubscriptionUser, _ int) subscription.SubscriptionUser {
		if d, ok := byID[u.UserUUID]; ok {
			u.Email = d.Email
			u.JobInfo = d.JobInfo
		}
		return u
	})
}
