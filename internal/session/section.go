package session

import (
	"sync"

	"github.com/rshade/subview/internal/pagination"
)

// tracker is the request bookkeeping shared by every section kind: the
// in-flight count behind the loading flag and the sequence number of the
// latest issued request.
type tracker struct {
	sec      Section
	inFlight int
	// primed marks a section as loading before its first request is issued.
	primed bool
	seq    uint64
}

func (t *tracker) loading() bool {
	return t.inFlight > 0 || t.primed
}

// pagedSection is a paginated collection.
type pagedSection[T any] struct {
	tracker
	ctrl  *pagination.Controller
	items []T
}

func newPagedSection[T any](sec Section, pageSize int) *pagedSection[T] {
	return &pagedSection[T]{
		tracker: tracker{sec: sec},
		ctrl:    pagination.NewController(pageSize),
	}
}

func (p *pagedSection[T]) view(admitted bool) SectionView[T] {
	return SectionView[T]{
		Items:      append([]T(nil), p.items...),
		Pagination: p.ctrl.State(),
		IsLoading:  p.loading(),
		Admitted:   admitted,
	}
}

// slot is a single-value section.
type slot[T any] struct {
	tracker
	value *T
}

func newSlot[T any](sec Section) *slot[T] {
	return &slot[T]{tracker: tracker{sec: sec}}
}

func (s *slot[T]) view(admitted bool) SlotView[T] {
	v := SlotView[T]{IsLoading: s.loading(), Admitted: admitted}
	if s.value != nil {
		cp := *s.value
		v.Value = &cp
	}
	return v
}

// loadingScope releases one acquisition of a section's loading flag.
// Release is idempotent.
type loadingScope struct {
	once    sync.Once
	release func()
}

// Release drops the acquisition the first time it is called.
func (l *loadingScope) Release() {
	l.once.Do(l.release)
}

// acquireLocked marks t loading and issues the next request sequence number.
func (s *Session) acquireLocked(t *tracker) (uint64, *loadingScope) {
	t.inFlight++
	t.primed = false
	t.seq++
	s.metrics.SectionInFlight(t.sec.String(), 1)

	return t.seq, &loadingScope{release: func() {
		s.mu.Lock()
		t.inFlight--
		s.mu.Unlock()
		s.metrics.SectionInFlight(t.sec.String(), -1)
		s.signal()
	}}
}

// latestLocked reports whether a response for request seq of t may be applied:
// its epoch is still the active one and no later request was issued.
func (s *Session) latestLocked(ep *epoch, t *tracker, seq uint64) bool {
	return s.cur == ep && t.seq == seq
}
