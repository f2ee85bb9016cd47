package billingstore

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/subview/internal/subscription"
)

func record(id string) *subscription.BillingRecord {
	return &subscription.BillingRecord{UUID: id, Amount: decimal.NewFromInt(42), Currency: "USD"}
}

func TestNew_InvalidCapacity(t *testing.T) {
	_, err := New(0)
	require.ErrorIs(t, err, ErrInvalidCapacity)
}

func TestWriter_PublishAndClear(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	w := s.Claim("sub-1")
	require.Equal(t, Written, w.Publish(Slots{Current: record("cur"), Upcoming: record("next")}))

	got, ok := s.Get("sub-1")
	require.True(t, ok)
	assert.Equal(t, "cur", got.Current.UUID)
	assert.Equal(t, "next", got.Upcoming.UUID)

	require.Equal(t, Written, w.Clear())
	got, ok = s.Get("sub-1")
	require.True(t, ok)
	assert.True(t, got.Empty())
	assert.Equal(t, Unchanged, w.Clear())
}

func TestWriter_IdenticalPublishIsUnchanged(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)
	w := s.Claim("sub-1")

	require.Equal(t, Written, w.Publish(Slots{Current: record("cur")}))
	assert.Equal(t, Unchanged, w.Publish(Slots{Current: record("cur")}))

	changed := record("cur")
	changed.Amount = decimal.NewFromInt(43)
	assert.Equal(t, Written, w.Publish(Slots{Current: changed}))
}

func TestWriter_SupersededIsNoop(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	old := s.Claim("sub-1")
	fresh := s.Claim("sub-1")
	assert.NotEqual(t, old.Token(), fresh.Token())

	require.Equal(t, Written, fresh.Publish(Slots{Current: record("fresh")}))
	assert.Equal(t, Superseded, old.Publish(Slots{Current: record("stale")}))
	assert.Equal(t, Superseded, old.Clear())
	assert.False(t, old.Active())

	got, _ := s.Get("sub-1")
	assert.Equal(t, "fresh", got.Current.UUID)

	// Releasing a superseded writer leaves the live claim alone.
	old.Release()
	assert.True(t, fresh.Active())
}

func TestWriter_Release(t *testing.T) {
	s, err := New(4)
	require.NoError(t, err)

	w := s.Claim("sub-1")
	require.Equal(t, Written, w.Publish(Slots{Upcoming: record("next")}))
	w.Release()

	assert.Equal(t, Superseded, w.Publish(Slots{}))
	got, ok := s.Get("sub-1")
	require.True(t, ok)
	assert.Equal(t, "next", got.Upcoming.UUID)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s, err := New(2)
	require.NoError(t, err)

	for _, id := range []string{"a", "b", "c"} {
		require.Equal(t, Written, s.Claim(id).Publish(Slots{Current: record(id)}))
	}

	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("a")
	assert.False(t, ok)
	_, ok = s.Get("c")
	assert.True(t, ok)
}

func TestSlots_Equal(t *testing.T) {
	assert.True(t, Slots{}.Equal(Slots{}))
	assert.False(t, Slots{Current: record("a")}.Equal(Slots{}))
	assert.True(t, Slots{Current: record("a")}.Equal(Slots{Current: record("a")}))
	assert.False(t, Slots{Current: record("a")}.Equal(Slots{Upcoming: record("a")}))
	assert.Equal(t, "superseded", Superseded.String())
}
