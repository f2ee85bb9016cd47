package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level is the severity of a notification.
type Level string

// Notification levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient user-facing message about a non-fatal failure.
type Notification struct {
	Level   Level
	Section Section
	Message string
	Err     error
	At      time.Time
}

// Notifier presents notifications. It is called without the session lock
// held and may read the session.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

func sectionFailure(sec Section, err error, at time.Time) Notification {
	return Notification{
		Level:   LevelWarning,
		Section: sec,
		Message: fmt.Sprintf("Failed to load %s data", sec.Label()),
		Err:     err,
		At:      at,
	}
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify logs n at a level matching its severity.
func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	var ev *zerolog.Event
	switch n.Level {
	case LevelError:
		ev = l.Logger.Error()
	case LevelWarning:
		ev = l.Logger.Warn()
	default:
		ev = l.Logger.Info()
	}
	ev.Ctx(ctx).
		Str("component", "session").
		Str("section", n.Section.String()).
		Err(n.Err).
		Msg(n.Message)
}

// Recorder keeps every notification it receives. It is safe for concurrent use.
type Recorder struct {
	mu  sync.Mutex
	all []Notification
}

// Notify records n.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

// Notifications returns a copy of what has been recorded.
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.all...)
}

// Drain returns and forgets what has been recorded.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.all
	r.all = nil
	return out
}
