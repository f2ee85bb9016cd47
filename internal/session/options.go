package session

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rshade/subview/internal/batch"
	"github.com/rshade/subview/internal/billingstore"
	"github.com/rshade/subview/internal/metrics"
	"github.com/rshade/subview/internal/pagination"
)

// DefaultPollInterval is the period of the activation poll.
const DefaultPollInterval = 10 * time.Second

// Option configures a Session.
type Option func(*Session)

// WithVariant selects the variant. The default is VariantUnified.
func WithVariant(v Variant) Option {
	return func(s *Session) { s.variant = v }
}

// WithDirectory enables enrichment of managers and users.
func WithDirectory(d Directory) Option {
	return func(s *Session) { s.directory = d }
}

// WithNotifier sets where non-fatal failures are reported.
func WithNotifier(n Notifier) Option {
	return func(s *Session) { s.notifier = n }
}

// WithStore sets the shared billing slot store.
func WithStore(st *billingstore.Store) Option {
	return func(s *Session) { s.store = st }
}

// WithClock replaces the clock driving the activation timer and poll.
func WithClock(c clockwork.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithMetrics records session activity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithPollInterval sets the activation poll period.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) { s.pollInterval = d }
}

// WithPageSize sets the initial page size of a paginated section.
func WithPageSize(sec Section, size int) Option {
	return func(s *Session) {
		if sec.Paginated() {
			s.pageSizes[sec] = size
		}
	}
}

// WithDirectoryBatchSize bounds how many user IDs go into one directory lookup.
func WithDirectoryBatchSize(n int) Option {
	return func(s *Session) { s.batchSize = n }
}

func defaultPageSizes() map[Section]int {
	return map[Section]int{
		SectionPayments: pagination.DefaultPageSize,
		SectionManagers: pagination.DefaultPageSize,
		SectionDomains:  pagination.DefaultPageSize,
		SectionUsers:    pagination.DefaultUsersPageSize,
	}
}

func (s *Session) validate() error {
	if _, err := ParseVariant(string(s.variant)); err != nil {
		return err
	}
	if s.pollInterval <= 0 {
		return errInvalidPollInterval
	}
	for sec, size := range s.pageSizes {
		if err := pagination.NewState(size).Validate(); err != nil {
			return sectionError(sec, err)
		}
	}
	proc, err := batch.NewProcessor[string](s.batchSize)
	if err != nil {
		return err
	}
	s.lookups = proc
	return nil
}
