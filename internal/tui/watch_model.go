package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/subview/internal/logging"
	"github.com/rshade/subview/internal/pagination"
	"github.com/rshade/subview/internal/session"
)

// Key bindings.
const (
	keyQuit     = "q"
	keyCtrlC    = "ctrl+c"
	keyReload   = "r"
	keyTab      = "tab"
	keyShiftTab = "shift+tab"
	keyNext     = "n"
	keyRight    = "right"
	keyPrev     = "p"
	keyLeft     = "left"
	keyFirst    = "home"
	keyGrow     = "+"
	keyShrink   = "-"
)

// Page size bounds for the +/- keys.
const (
	pageSizeStep = 5
	maxPageSize  = 100
)

// notificationTTL is how long a notification stays in the footer.
const notificationTTL = 5 * time.Second

// Source is the live session a WatchModel follows.
type Source interface {
	Snapshot() session.Snapshot
	Changes() <-chan struct{}
	Reload() error
	UpdatePagination(sec session.Section, patch pagination.Patch) (bool, error)
}

// SnapshotMsg carries a fresh snapshot into the model.
type SnapshotMsg struct {
	Snapshot session.Snapshot
}

// NotificationMsg carries a session notification into the model.
type NotificationMsg struct {
	Notification session.Notification
}

type clearNotificationMsg struct {
	at time.Time
}

// ChannelNotifier forwards notifications to a WatchModel. Notifications are
// dropped when the buffer is full.
type ChannelNotifier struct {
	ch chan session.Notification
}

// NewChannelNotifier returns a notifier buffering up to size notifications.
func NewChannelNotifier(size int) *ChannelNotifier {
	return &ChannelNotifier{ch: make(chan session.Notification, size)}
}

// Notify implements session.Notifier.
func (c *ChannelNotifier) Notify(_ context.Context, n session.Notification) {
	select {
	case c.ch <- n:
	default:
	}
}

// WatchModel is the Bubble Tea model of the watch command.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type WatchModel struct {
	ctx      context.Context
	src      Source
	notes    <-chan session.Notification
	snap     session.Snapshot
	focus    session.Section
	hasFocus bool
	loading  *LoadingState
	width    int
	height   int
	note     *session.Notification
	err      error
	quitting bool
}

// NewWatchModel returns a model following src. notes may be nil.
func NewWatchModel(ctx context.Context, src Source, notes *ChannelNotifier) WatchModel {
	m := WatchModel{
		ctx:     ctx,
		src:     src,
		snap:    src.Snapshot(),
		loading: NewLoadingState(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	if notes != nil {
		m.notes = notes.ch
	}
	m.refocus()
	return m
}

// Init starts the spinner and the change listeners.
func (m WatchModel) Init() tea.Cmd {
	return tea.Batch(m.loading.Init(), waitForChange(m.src), waitForNotification(m.notes))
}

func waitForChange(src Source) tea.Cmd {
	return func() tea.Msg {
		<-src.Changes()
		return SnapshotMsg{Snapshot: src.Snapshot()}
	}
}

func waitForNotification(ch <-chan session.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		return NotificationMsg{Notification: <-ch}
	}
}

// Update handles messages (Bubble Tea interface).
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case SnapshotMsg:
		m.snap = msg.Snapshot
		m.refocus()
		return m, waitForChange(m.src)
	case NotificationMsg:
		n := msg.Notification
		m.note = &n
		at := n.At
		return m, tea.Batch(
			waitForNotification(m.notes),
			tea.Tick(notificationTTL, func(time.Time) tea.Msg { return clearNotificationMsg{at: at} }),
		)
	case clearNotificationMsg:
		if m.note != nil && m.note.At.Equal(msg.at) {
			m.note = nil
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, m.loading.Update(msg)
	}
}

func (m WatchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case keyReload:
		m.err = m.src.Reload()
	case keyTab:
		m.cycleFocus(1)
	case keyShiftTab:
		m.cycleFocus(-1)
	case keyNext, keyRight:
		m.page(func(p pagination.State) (int, bool) { return p.CurrentPage + 1, p.HasNext() })
	case keyPrev, keyLeft:
		m.page(func(p pagination.State) (int, bool) { return p.CurrentPage - 1, p.HasPrevious() })
	case keyFirst:
		m.page(func(p pagination.State) (int, bool) { return 1, p.CurrentPage != 1 })
	case keyGrow:
		m.resize(pageSizeStep)
	case keyShrink:
		m.resize(-pageSizeStep)
	}
	return m, nil
}

// page moves the focused section to the page chosen by target.
func (m *WatchModel) page(target func(pagination.State) (int, bool)) {
	if !m.hasFocus {
		return
	}
	p, ok := m.snap.Pagination(m.focus)
	if !ok {
		return
	}
	n, ok := target(p)
	if !ok {
		return
	}
	if _, err := m.src.UpdatePagination(m.focus, pagination.ToPage(n)); err != nil {
		m.err = err
		return
	}
	m.err = nil

	log := logging.FromContext(m.ctx)
	log.Debug().
		Ctx(m.ctx).
		Str("component", "tui").
		Str("operation", "page").
		Str("section", m.focus.String()).
		Int("page", n).
		Msg("page requested")
}

// resize changes the focused section's page size by delta and returns to the
// first page.
func (m *WatchModel) resize(delta int) {
	if !m.hasFocus {
		return
	}
	p, ok := m.snap.Pagination(m.focus)
	if !ok {
		return
	}
	size := min(max(p.PageSize+delta, pageSizeStep), maxPageSize)
	if size == p.PageSize {
		return
	}
	patch := pagination.WithSize(size)
	patch.CurrentPage = pagination.ToPage(1).CurrentPage
	if _, err := m.src.UpdatePagination(m.focus, patch); err != nil {
		m.err = err
		return
	}
	m.err = nil

	log := logging.FromContext(m.ctx)
	log.Debug().
		Ctx(m.ctx).
		Str("component", "tui").
		Str("operation", "resize").
		Str("section", m.focus.String()).
		Int("page_size", size).
		Msg("page size changed")
}

// pageable lists the visible paginated sections in display order.
func (m WatchModel) pageable() []session.Section {
	var out []session.Section
	for _, sec := range m.snap.Visible.Sections() {
		if sec.Paginated() {
			out = append(out, sec)
		}
	}
	return out
}

// refocus keeps the focus on a visible paginated section.
func (m *WatchModel) refocus() {
	secs := m.pageable()
	if len(secs) == 0 {
		m.hasFocus = false
		return
	}
	if m.hasFocus {
		for _, s := range secs {
			if s == m.focus {
				return
			}
		}
	}
	m.focus = secs[0]
	m.hasFocus = true
}

func (m *WatchModel) cycleFocus(step int) {
	secs := m.pageable()
	if len(secs) == 0 {
		return
	}
	idx := 0
	for i, s := range secs {
		if s == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + step + len(secs)) % len(secs)
	m.focus = secs[idx]
	m.hasFocus = true
}

// Focus returns the focused section.
func (m WatchModel) Focus() (session.Section, bool) {
	return m.focus, m.hasFocus
}

// View renders the model (Bubble Tea interface).
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}
	if m.snap.Status == session.StatusLoading && m.snap.Entity == nil {
		return RenderLoading(m.loading)
	}

	body := RenderSnapshot(m.snap, RenderOptions{
		Focus:    m.focus,
		HasFocus: m.hasFocus,
		Spinner:  m.loading.Glyph(),
		Width:    m.width,
	})

	footer := ""
	if m.note != nil {
		footer += WarningStyle.Render(m.note.Message) + "\n"
	}
	if m.err != nil {
		footer += ErrorStyle.Render(m.err.Error()) + "\n"
	}
	help := "tab: section  n/p: page  +/-: page size  home: first page  r: reload  q: quit"
	if m.snap.Loading() {
		help = m.loading.Glyph() + " " + help
	}
	footer += MutedStyle.Render(help)

	return lipgloss.JoinVertical(lipgloss.Left, body, footer)
}
