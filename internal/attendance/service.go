package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"academy/internal/events"
	"academy/internal/metrics"
	"academy/internal/model"
	"academy/internal/notify"
	"academy/internal/repository"
	"academy/internal/stats"
	"academy/internal/validation"
)

// ErrNotFound is returned when a record or course does not exist. Nothing is changed.
var ErrNotFound = errors.New("attendance: not found")

// Outcome says what Mark did.
type Outcome string

const (
	Created   Outcome = "created"
	Updated   Outcome = "updated"
	Cancelled Outcome = "cancelled"
)

// Result is the record after a mark and what happened to it.
type Result struct {
	Record  model.AttendanceRecord `json:"record"`
	Outcome Outcome                `json:"outcome"`
}

// Service records attendance. At most one record exists per student and date;
// marking an existing pair asks before overwriting.
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

// NewService creates a service backed by a repository.
func NewService(repo *repository.Repository, bus events.Publisher, opts ...Option) *Service {
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
	n.Notify(notify.Success, success)
}

// Mark records in. An empty time defaults to the current clock time. If the student
// already has a record on that date, c decides whether it is overwritten; a refusal
// returns the existing record, Cancelled and notify.ErrDeclined.
func (s *Service) Mark(ctx context.Context, n notify.Notifier, c notify.Confirmer, in model.AttendanceRecord) (Result, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	students := s.repo.Students(ctx)
	in = normalize(in)
	if err := validation.Attendance(in, students, s.now()).Err(); err != nil {
		return Result{}, err
	}
	if in.Time == "" {
		in.Time = clockOf(s.now())
	}

	records := s.repo.Attendance(ctx)
	now := s.stamp()
	res := Result{Outcome: Created}
	if i := find(records, in.StudentID, in.Date); i >= 0 {
		prev := records[i]
		prompt := fmt.Sprintf("%s already has %s recorded on %s. Overwrite?", studentName(students, in.StudentID), prev.Status, prev.Date)
		if !c.Confirm(ctx, prompt) {
			metrics.AttendanceMarks.WithLabelValues(string(in.Status), string(Cancelled)).Inc()
			return Result{Record: prev, Outcome: Cancelled}, notify.ErrDeclined
		}
		in.ID, in.CreatedAt, in.UpdatedAt = prev.ID, prev.CreatedAt, now
		records[i] = in
		res.Outcome = Updated
	} else {
		in.ID = s.repo.NextID(ctx, repository.Attendance, maxRecordID(records))
		in.CreatedAt, in.UpdatedAt = now, now
		records = append(records, in)
	}
	res.Record = in

	s.saved(n, s.repo.SaveAttendance(ctx, records), "attendance "+string(res.Outcome))
	metrics.AttendanceMarks.WithLabelValues(string(in.Status), string(res.Outcome)).Inc()
	s.bus.Publish(ctx, events.Event{Topic: events.AttendanceUpdated, EntityID: in.ID, Date: in.Date, At: now})
	return res, nil
}

// Entry overrides the course-wide status for one student.
type Entry struct {
	StudentID int64                  `json:"studentId"`
	Status    model.AttendanceStatus `json:"status"`
	Notes     string                 `json:"notes,omitempty"`
}

// CourseMark marks every student of a course on one date.
type CourseMark struct {
	Course  string                 `json:"course" binding:"required"`
	Date    string                 `json:"date" binding:"required"`
	Status  model.AttendanceStatus `json:"status"`
	Time    string                 `json:"time,omitempty"`
	Entries []Entry                `json:"entries,omitempty"`
}

// Bulk counts what MarkCourse did.
type Bulk struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// MarkCourse records attendance for every student enrolled in m.Course. Students
// without an entry get m.Status, present when unset. Existing records for the date are
// overwritten only after a single confirmation covering all of them.
func (s *Service) MarkCourse(ctx context.Context, n notify.Notifier, c notify.Confirmer, m CourseMark) (Bulk, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	students := s.repo.Students(ctx)
	var members []model.Student
	for _, st := range students {
		if st.Course == m.Course {
			members = append(members, st)
		}
	}
	if len(members) == 0 {
		return Bulk{}, fmt.Errorf("course %q has no students: %w", m.Course, ErrNotFound)
	}
	if m.Status == "" {
		m.Status = model.StatusPresent
	}
	overrides := make(map[int64]Entry, len(m.Entries))
	for _, e := range m.Entries {
		overrides[e.StudentID] = e
	}

	now := s.now()
	batch := make([]model.AttendanceRecord, 0, len(members))
	report := validation.Report{IsValid: true}
	for _, st := range members {
		r := model.AttendanceRecord{StudentID: st.ID, Date: m.Date, Status: m.Status, Time: m.Time}
		if e, ok := overrides[st.ID]; ok {
			if e.Status != "" {
				r.Status = e.Status
			}
			r.Notes = e.Notes
		}
		r = normalize(r)
		if r.Time == "" {
			r.Time = clockOf(now)
		}
		rep := validation.Attendance(r, students, now)
		if !rep.IsValid {
			for k, v := range rep.Errors {
				report = report.Merge(validation.Invalid(fmt.Sprintf("students[%d].%s", st.ID, k), v))
			}
		}
		batch = append(batch, r)
	}
	if err := report.Err(); err != nil {
		return Bulk{}, err
	}

	records := s.repo.Attendance(ctx)
	existing := 0
	for _, r := range batch {
		if find(records, r.StudentID, r.Date) >= 0 {
			existing++
		}
	}
	if existing > 0 && !c.Confirm(ctx, fmt.Sprintf("%d students already have attendance on %s. Overwrite?", existing, batch[0].Date)) {
		return Bulk{}, notify.ErrDeclined
	}

	stamp := s.stamp()
	var out Bulk
	for _, r := range batch {
		if i := find(records, r.StudentID, r.Date); i >= 0 {
			r.ID, r.CreatedAt, r.UpdatedAt = records[i].ID, records[i].CreatedAt, stamp
			records[i] = r
			out.Updated++
			metrics.AttendanceMarks.WithLabelValues(string(r.Status), string(Updated)).Inc()
			continue
		}
		r.ID = s.repo.NextID(ctx, repository.Attendance, maxRecordID(records))
		r.CreatedAt, r.UpdatedAt = stamp, stamp
		records = append(records, r)
		out.Created++
		metrics.AttendanceMarks.WithLabelValues(string(r.Status), string(Created)).Inc()
	}

	s.saved(n, s.repo.SaveAttendance(ctx, records), fmt.Sprintf("attendance recorded for %d students", len(batch)))
	s.bus.Publish(ctx, events.Event{Topic: events.AttendanceUpdated, Date: batch[0].Date, At: stamp})
	return out, nil
}

// Delete removes a record after confirmation.
func (s *Service) Delete(ctx context.Context, n notify.Notifier, c notify.Confirmer, id int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	records := s.repo.Attendance(ctx)
	idx := -1
	for i, r := range records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("record %d: %w", id, ErrNotFound)
	}
	r := records[idx]
	if !c.Confirm(ctx, fmt.Sprintf("Delete the %s record of %s on %s?", r.Status, studentName(s.repo.Students(ctx), r.StudentID), r.Date)) {
		return notify.ErrDeclined
	}

	records = append(records[:idx], records[idx+1:]...)
	s.saved(n, s.repo.SaveAttendance(ctx, records), "attendance deleted")
	s.bus.Publish(ctx, events.Event{Topic: events.AttendanceUpdated, EntityID: id, Date: r.Date, At: s.stamp()})
	return nil
}

// Records lists records matching f, newest date first, joined with their students.
func (s *Service) Records(ctx context.Context, f Filter) []RecordView {
	return filter(s.repo.Attendance(ctx), s.repo.Students(ctx), s.repo.Courses(ctx), f)
}

// Record returns one record.
func (s *Service) Record(ctx context.Context, id int64) (model.AttendanceRecord, error) {
	for _, r := range s.repo.Attendance(ctx) {
		if r.ID == id {
			return r, nil
		}
	}
	return model.AttendanceRecord{}, fmt.Errorf("record %d: %w", id, ErrNotFound)
}

// Daily counts the records of one date, optionally restricted to a course.
func (s *Service) Daily(ctx context.Context, date, course string) stats.Daily {
	views := s.Records(ctx, Filter{Date: normalizeDate(date), Course: course})
	records := make([]model.AttendanceRecord, len(views))
	for i, v := range views {
		records[i] = v.AttendanceRecord
	}
	return stats.DailyStats(records)
}

func studentName(students []model.Student, id int64) string {
	for _, s := range students {
		if s.ID == id {
			return s.Name
		}
	}
	return fmt.Sprintf("student %d", id)
}
