// Package notify carries user-facing alerts and yes/no confirmations into workflows.
package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// Level is the severity of an alert.
type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Notifier receives non-blocking alerts.
type Notifier interface {
	Notify(level Level, msg string)
}

// Confirmer answers a yes/no prompt. false is the cancel branch and must leave state unchanged.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Alert is one collected notification.
type Alert struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Collector buffers alerts so they can be returned with a response.
type Collector struct {
	mu     sync.Mutex
	alerts []Alert
}

// Notify implements Notifier.
func (c *Collector) Notify(level Level, msg string) {
	c.mu.Lock()
	c.alerts = append(c.alerts, Alert{Level: level, Message: msg})
	c.mu.Unlock()
}

// Alerts returns a copy of everything collected so far, never nil.
func (c *Collector) Alerts() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Alert, len(c.alerts))
	copy(out, c.alerts)
	return out
}

// Log writes alerts to a logger.
type Log struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (l Log) Notify(level Level, msg string) {
	var ev *zerolog.Event
	switch level {
	case Warning:
		ev = l.Logger.Warn()
	case Error:
		ev = l.Logger.Error()
	default:
		ev = l.Logger.Info()
	}
	ev.Str("level_hint", string(level)).Msg(msg)
}

// Multi fans an alert out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(level Level, msg string) {
	for _, n := range m {
		n.Notify(level, msg)
	}
}

// Answer is a Confirmer with a fixed reply that remembers what it was asked.
type Answer struct {
	Yes bool

	mu      sync.Mutex
	prompts []string
}

// Yes returns a confirmer that accepts every prompt.
func Yes() *Answer { return &Answer{Yes: true} }

// No returns a confirmer that declines every prompt.
func No() *Answer { return &Answer{} }

// Confirm implements Confirmer.
func (a *Answer) Confirm(_ context.Context, prompt string) bool {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	a.mu.Unlock()
	return a.Yes
}

// Prompts returns the prompts asked so far.
func (a *Answer) Prompts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.prompts...)
}

// Declined reports whether a prompt was asked and refused.
func (a *Answer) Declined() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.Yes && len(a.prompts) > 0
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// ErrDeclined is returned by workflows when the Confirmer said no.
var ErrDeclined = errors.New("action not confirmed")

// NotDurable is the warning raised when a save could only be kept in memory.
const NotDurable = "changes are kept in memory only and will be lost on restart"
