// Package snapshot keeps a precomputed dashboard document in the store.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"academy/internal/events"
	"academy/internal/metrics"
	"academy/internal/queue"
	"academy/internal/repository"
	"academy/internal/stats"
)

// ErrNotSaved is returned when the snapshot could only be kept in memory.
var ErrNotSaved = errors.New("snapshot: save failed")

// Snapshot is the dashboard state as of BuiltAt.
type Snapshot struct {
	Overview stats.Overview                 `json:"overview"`
	Weekly   []stats.DayBucket              `json:"weekly"`
	Courses  map[string]stats.CourseSummary `json:"courses"`
	BuiltAt  time.Time                      `json:"builtAt"`
	Trigger  string                         `json:"trigger"`
}

// Builder recomputes the snapshot from the repository.
type Builder struct {
	repo *repository.Repository
	log  zerolog.Logger
	now  func() time.Time
}

// NewBuilder returns a Builder. A nil now uses the current UTC time.
func NewBuilder(repo *repository.Repository, log zerolog.Logger, now func() time.Time) *Builder {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Builder{repo: repo, log: log, now: now}
}

// Build computes a snapshot without storing it.
func (b *Builder) Build(ctx context.Context, trigger string) Snapshot {
	now := b.now()
	students := b.repo.Students(ctx)
	records := b.repo.Attendance(ctx)
	return Snapshot{
		Overview: stats.BuildOverview(students, b.repo.Courses(ctx), records, now),
		Weekly:   stats.WeeklyBuckets(records, now),
		Courses:  stats.CourseRollup(students, records),
		BuiltAt:  now.UTC().Truncate(time.Second),
		Trigger:  trigger,
	}
}

// Rebuild computes and stores the snapshot under repository.SnapshotKey.
func (b *Builder) Rebuild(ctx context.Context, trigger string) (Snapshot, error) {
	s := b.Build(ctx, trigger)
	if !b.repo.SaveDocument(ctx, repository.SnapshotKey, s) {
		metrics.SnapshotRebuilds.WithLabelValues("failed").Inc()
		return s, ErrNotSaved
	}
	metrics.SnapshotRebuilds.WithLabelValues("ok").Inc()
	b.log.Debug().Str("trigger", trigger).Int("present_today", s.Overview.TodayPresent).Msg("snapshot rebuilt")
	return s, nil
}

// Load returns the stored snapshot, if any.
func Load(ctx context.Context, repo *repository.Repository) (Snapshot, bool) {
	var s Snapshot
	ok := repo.LoadDocument(ctx, repository.SnapshotKey, &s)
	return s, ok
}

// Triggers reports whether a message topic should cause a rebuild.
func Triggers(topic string) bool {
	switch events.Topic(topic) {
	case events.AttendanceUpdated, events.StudentAdded, events.StudentUpdated,
		events.StudentDeleted, events.CourseChanged, events.DataImported:
		return true
	}
	return false
}

// Run rebuilds once at start, then on every triggering message and on each tick.
// It returns when ctx is done or messages is closed.
func (b *Builder) Run(ctx context.Context, messages <-chan queue.Message, interval time.Duration) {
	if _, err := b.Rebuild(ctx, "startup"); err != nil {
		b.log.Warn().Err(err).Msg("initial snapshot")
	}
	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			if _, err := b.Rebuild(ctx, "interval"); err != nil {
				b.log.Warn().Err(err).Msg("periodic snapshot")
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if !Triggers(msg.Topic) {
				continue
			}
			b.log.Debug().Str("id", msg.ID).Str("topic", msg.Topic).Msg("event received")
			if _, err := b.Rebuild(ctx, msg.Topic); err != nil {
				b.log.Warn().Err(err).Str("topic", msg.Topic).Msg("snapshot after event")
			}
		}
	}
}
