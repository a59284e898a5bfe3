// Package roster manages students, courses and instructors.
//
// Every mutation is a read-modify-write of a whole collection, so mutations hold the
// shared write lock for their full duration. Failed saves are reported to the caller's
// Notifier as warnings; the change then lives in memory only.
package roster

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"academy/internal/events"
	"academy/internal/notify"
	"academy/internal/repository"
)

// ErrNotFound is returned when the referenced entity does not exist. Nothing is changed.
var ErrNotFound = errors.New("roster: not found")

// Service runs the roster workflows.
type Service struct {
	repo *repository.Repository
	bus  events.Publisher
	lock sync.Locker
	now  func() time.Time
	log  zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLock shares a write lock with other services writing the same store.
func WithLock(l sync.Locker) Option { return func(s *Service) { s.lock = l } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// New creates a roster service.
func New(repo *repository.Repository, bus events.Publisher, opts ...Option) *Service {
	if bus == nil {
		bus = events.Discard{}
	}
	s := &Service{
		repo: repo,
		bus:  bus,
		lock: &sync.Mutex{},
		now:  func() time.Time { return time.Now().UTC() },
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) stamp() time.Time { return s.now().UTC().Truncate(time.Second) }

func (s *Service) saved(n notify.Notifier, ok bool, success string) {
	if !ok {
		n.Notify(notify.Warning, notify.NotDurable)
		return
	}
	if success != "" {
		n.Notify(notify.Success, success)
	}
}

func (s *Service) publish(ctx context.Context, t events.Topic, id int64) {
	s.bus.Publish(ctx, events.Event{Topic: t, EntityID: id, At: s.stamp()})
}

func matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func maxID[T any](list []T, id func(T) int64) int64 {
	var m int64
	for _, v := range list {
		if i := id(v); i > m {
			m = i
		}
	}
	return m
}
