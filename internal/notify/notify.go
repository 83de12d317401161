// Package notify turns operation outcomes into user-facing notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/angelmondragon/storefront/pkg/enums"
	"github.com/angelmondragon/storefront/pkg/logger"
)

type Notification struct {
	Severity enums.Severity `json:"severity"`
	Message  string         `json:"message"`
}

func Success(msg string) Notification { return Notification{Severity: enums.SeveritySuccess, Message: msg} }
func Info(msg string) Notification    { return Notification{Severity: enums.SeverityInfo, Message: msg} }
func Warning(msg string) Notification { return Notification{Severity: enums.SeverityWarning, Message: msg} }
func Error(msg string) Notification   { return Notification{Severity: enums.SeverityError, Message: msg} }

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	Logger *logger.Logger
}

func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	if l.Logger == nil {
		return
	}
	ctx = l.Logger.WithField(ctx, "severity", n.Severity.String())
	switch n.Severity {
	case enums.SeverityError, enums.SeverityWarning:
		l.Logger.Warn(ctx, n.Message)
	default:
		l.Logger.Info(ctx, n.Message)
	}
}

// WriterNotifier prints one line per notification, for terminal output.
type WriterNotifier struct {
	mu sync.Mutex
	W  io.Writer
}

func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{W: w}
}

func (w *WriterNotifier) Notify(_ context.Context, n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.W, "[%s] %s\n", n.Severity, n.Message)
}

// Recorder keeps every notification it receives.
type Recorder struct {
	mu   sync.Mutex
	seen []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
}

func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.seen...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.seen) == 0 {
		return Notification{}, false
	}
	return r.seen[len(r.seen)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = nil
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}
