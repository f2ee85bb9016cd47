package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/session"
	"github.com/rshade/subview/internal/subscription"
)

type pageCall struct {
	sec  session.Section
	page int
}

type fakeSource struct {
	snap      session.Snapshot
	changes   chan struct{}
	reloads   int
	reloadErr error
	pages     []pageCall
	sizes     []int
}

func newFakeSource(snap session.Snapshot) *fakeSource {
	return &fakeSource{snap: snap, changes: make(chan struct{}, 1)}
}

func (f *fakeSource) Snapshot() session.Snapshot { return f.snap }
func (f *fakeSource) Changes() <-chan struct{}   { return f.changes }

func (f *fakeSource) Reload() error {
	f.reloads++
	return f.reloadErr
}

func (f *fakeSource) UpdatePagination(sec session.Section, patch pagination.Patch) (bool, error) {
	if patch.CurrentPage != nil {
		f.pages = append(f.pages, pageCall{sec: sec, page: *patch.CurrentPage})
	}
	if patch.PageSize != nil {
		f.sizes = append(f.sizes, *patch.PageSize)
	}
	return true, nil
}

func readySnapshot() session.Snapshot {
	sub := subscription.Subscription{
		UUID:        "5f0c6d3e-2a51-4d8e-9b7a-0c1f2e3d4a5b",
		Name:        "Acme Enterprise",
		Type:        subscription.CategoryEnterprise,
		Status:      subscription.StatusActive,
		BillingType: subscription.BillingCard,
	}
	snap := session.Snapshot{
		ID:       sub.UUID,
		Variant:  session.VariantUnified,
		Status:   session.StatusReady,
		IsLoaded: true,
		Entity:   &sub,
		Admitted: session.Admit(session.VariantUnified, sub),
		Visible:  session.Visible(session.VariantUnified, sub),
	}
	snap.Payments.Pagination = pagination.State{CurrentPage: 1, PageSize: 10, TotalCount: 25, TotalPages: 3}
	snap.Managers.Pagination = pagination.State{CurrentPage: 1, PageSize: 10}
	snap.Domains.Pagination = pagination.State{CurrentPage: 2, PageSize: 10, TotalCount: 12, TotalPages: 2}
	snap.Users.Pagination = pagination.State{CurrentPage: 1, PageSize: 15}
	return snap
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m WatchModel, keys ...string) WatchModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(key(k))
		var ok bool
		m, ok = next.(WatchModel)
		require.True(t, ok)
	}
	return m
}

func TestWatchModel_FocusCyclesPaginatedSections(t *testing.T) {
	src := newFakeSource(readySnapshot())
	m := NewWatchModel(context.Background(), src, nil)

	focus, ok := m.Focus()
	require.True(t, ok)
	assert.Equal(t, session.SectionPayments, focus)

	m = press(t, m, "tab")
	focus, _ = m.Focus()
	assert.Equal(t, session.SectionManagers, focus)

	m = press(t, m, "tab", "tab", "tab")
	focus, _ = m.Focus()
	assert.Equal(t, session.SectionPayments, focus, "wraps around")

	m = press(t, m, "shift+tab")
	focus, _ = m.Focus()
	assert.Equal(t, session.SectionUsers, focus)
}

func TestWatchModel_Paging(t *testing.T) {
	src := newFakeSource(readySnapshot())
	m := NewWatchModel(context.Background(), src, nil)

	m = press(t, m, "p")
	assert.Empty(t, src.pages, "no previous page")

	m = press(t, m, "n")
	require.Len(t, src.pages, 1)
	assert.Equal(t, pageCall{sec: session.SectionPayments, page: 2}, src.pages[0])

	m = press(t, m, "tab", "tab", "n")
	assert.Len(t, src.pages, 1, "domains is on its last page")

	press(t, m, "p", "home")
	require.Len(t, src.pages, 3)
	assert.Equal(t, pageCall{sec: session.SectionDomains, page: 1}, src.pages[1])
	assert.Equal(t, pageCall{sec: session.SectionDomains, page: 1}, src.pages[2])
}

func TestWatchModel_PageSize(t *testing.T) {
	snap := readySnapshot()
	snap.Managers.Pagination.PageSize = pageSizeStep
	snap.Users.Pagination.PageSize = maxPageSize
	src := newFakeSource(snap)
	m := NewWatchModel(context.Background(), src, nil)

	m = press(t, m, "+")
	assert.Equal(t, []int{15}, src.sizes)
	assert.Equal(t, []pageCall{{sec: session.SectionPayments, page: 1}}, src.pages, "resizing returns to page 1")

	m = press(t, m, "tab", "-")
	assert.Len(t, src.sizes, 1, "managers is at the minimum size")

	press(t, m, "shift+tab", "shift+tab", "+")
	assert.Len(t, src.sizes, 1, "users is at the maximum size")
}

func TestWatchModel_LoadingFooter(t *testing.T) {
	snap := readySnapshot()
	src := newFakeSource(snap)
	m := NewWatchModel(context.Background(), src, nil)
	idle := m.View()

	snap.Payments.IsLoading = true
	next, _ := m.Update(SnapshotMsg{Snapshot: snap})
	busy := next.View()

	assert.Contains(t, busy, m.loading.Glyph()+" tab: section")
	assert.NotContains(t, idle, m.loading.Glyph()+" tab: section")
}

func TestWatchModel_Reload(t *testing.T) {
	src := newFakeSource(readySnapshot())
	src.reloadErr = errors.New("session is not open")
	m := NewWatchModel(context.Background(), src, nil)

	m = press(t, m, "r")
	assert.Equal(t, 1, src.reloads)
	assert.Contains(t, m.View(), "session is not open")
}

func TestWatchModel_Quit(t *testing.T) {
	m := NewWatchModel(context.Background(), newFakeSource(readySnapshot()), nil)
	next, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())
}

func TestWatchModel_SnapshotMsg(t *testing.T) {
	loading := session.Snapshot{Status: session.StatusLoading}
	src := newFakeSource(loading)
	m := NewWatchModel(context.Background(), src, nil)

	_, ok := m.Focus()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "Loading subscription")

	next, cmd := m.Update(SnapshotMsg{Snapshot: readySnapshot()})
	require.NotNil(t, cmd)
	wm := next.(WatchModel)
	focus, ok := wm.Focus()
	require.True(t, ok)
	assert.Equal(t, session.SectionPayments, focus)
	assert.Contains(t, wm.View(), "Acme Enterprise")
}

func TestWatchModel_WaitsForChanges(t *testing.T) {
	src := newFakeSource(readySnapshot())
	src.changes <- struct{}{}

	msg := waitForChange(src)()
	snap, ok := msg.(SnapshotMsg)
	require.True(t, ok)
	assert.Equal(t, session.StatusReady, snap.Snapshot.Status)
}

func TestWatchModel_Notifications(t *testing.T) {
	notes := NewChannelNotifier(1)
	m := NewWatchModel(context.Background(), newFakeSource(readySnapshot()), notes)

	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	notes.Notify(context.Background(), session.Notification{Message: "Failed to load domains data", At: at})
	notes.Notify(context.Background(), session.Notification{Message: "dropped", At: at})

	msg := waitForNotification(m.notes)()
	next, _ := m.Update(msg)
	wm := next.(WatchModel)
	assert.Contains(t, wm.View(), "Failed to load domains data")

	next, _ = wm.Update(clearNotificationMsg{at: at})
	assert.NotContains(t, next.View(), "Failed to load domains data")
}
