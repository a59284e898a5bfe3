package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/events"
	"academy/internal/model"
	"academy/internal/notify"
	"academy/internal/repository"
	"academy/internal/store"
	"academy/internal/validation"
)

var clock = time.Date(2024, 3, 15, 8, 45, 30, 0, time.UTC)

func newService(t *testing.T) (*Service, *repository.Repository, *[]events.Event) {
	t.Helper()
	repo := repository.New(store.NewMemory())
	bus := events.NewBus()
	var seen []events.Event
	bus.Subscribe(func(_ context.Context, e events.Event) { seen = append(seen, e) }, events.AttendanceUpdated)
	return NewService(repo, bus, WithClock(func() time.Time { return clock })), repo, &seen
}

func TestMarkCreates(t *testing.T) {
	ctx := context.Background()
	svc, repo, seen := newService(t)
	var n notify.Collector

	res, err := svc.Mark(ctx, &n, notify.No(), model.AttendanceRecord{StudentID: 1, Date: "2024-03-15", Status: "Present"})
	require.NoError(t, err)
	assert.Equal(t, Created, res.Outcome)
	assert.Equal(t, int64(1), res.Record.ID)
	assert.Equal(t, model.StatusPresent, res.Record.Status)
	assert.Equal(t, "08:45", res.Record.Time)
	assert.Equal(t, clock.Truncate(time.Second), res.Record.CreatedAt)

	assert.Equal(t, []model.AttendanceRecord{res.Record}, repo.Attendance(ctx))
	assert.Equal(t, []notify.Alert{{Level: notify.Success, Message: "attendance created"}}, n.Alerts())
	require.Len(t, *seen, 1)
	assert.Equal(t, "2024-03-15", (*seen)[0].Date)
}

func TestMarkDuplicateAsksBeforeOverwrite(t *testing.T) {
	ctx := context.Background()
	svc, repo, seen := newService(t)
	var n notify.Collector

	first, err := svc.Mark(ctx, &n, notify.Yes(), model.AttendanceRecord{StudentID: 2, Date: "2024-03-14", Status: model.StatusAbsent})
	require.NoError(t, err)
	before := repo.Attendance(ctx)

	no := notify.No()
	res, err := svc.Mark(ctx, &n, no, model.AttendanceRecord{StudentID: 2, Date: "2024-03-14T10:00:00Z", Status: model.StatusLate})
	assert.ErrorIs(t, err, notify.ErrDeclined)
	assert.Equal(t, Cancelled, res.Outcome)
	assert.Equal(t, first.Record, res.Record)
	assert.Equal(t, before, repo.Attendance(ctx), "declining leaves state unchanged")
	require.Len(t, no.Prompts(), 1)
	assert.Contains(t, no.Prompts()[0], "Carlos Rodríguez already has absent recorded on 2024-03-14")
	assert.Len(t, *seen, 1)

	res, err = svc.Mark(ctx, &n, notify.Yes(), model.AttendanceRecord{StudentID: 2, Date: "2024-03-14", Status: model.StatusLate, Notes: "bus"})
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Outcome)
	assert.Equal(t, first.Record.ID, res.Record.ID)

	all := repo.Attendance(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, model.StatusLate, all[0].Status)
	assert.Equal(t, "bus", all[0].Notes)
}

func TestMarkValidation(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)

	_, err := svc.Mark(ctx, &notify.Collector{}, notify.Yes(), model.AttendanceRecord{StudentID: 42, Date: "2024-03-16", Status: "sick"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validation.MsgUnknownStudent, verr.Fields["studentId"])
	assert.Equal(t, validation.MsgFutureDate, verr.Fields["date"])
	assert.Equal(t, validation.MsgInvalidOption, verr.Fields["status"])
	assert.Empty(t, repo.Attendance(ctx))
}

func TestMarkCourse(t *testing.T) {
	ctx := context.Background()
	svc, repo, seen := newService(t)
	students := repo.Students(ctx)
	students = append(students, model.Student{ID: 6, Name: "Sofía Ruiz", Email: "s@x.com", Course: "ingles-basico", Level: "A1", EnrollmentDate: "2024-02-01"})
	require.True(t, repo.SaveStudents(ctx, students))

	var n notify.Collector
	_, err := svc.Mark(ctx, &n, notify.Yes(), model.AttendanceRecord{StudentID: 2, Date: "2024-03-15", Status: model.StatusAbsent})
	require.NoError(t, err)

	no := notify.No()
	_, err = svc.MarkCourse(ctx, &n, no, CourseMark{Course: "ingles-basico", Date: "2024-03-15"})
	assert.ErrorIs(t, err, notify.ErrDeclined)
	assert.Equal(t, []string{"1 students already have attendance on 2024-03-15. Overwrite?"}, no.Prompts())
	assert.Len(t, repo.Attendance(ctx), 1)

	bulk, err := svc.MarkCourse(ctx, &n, notify.Yes(), CourseMark{
		Course:  "ingles-basico",
		Date:    "2024-03-15",
		Entries: []Entry{{StudentID: 6, Status: model.StatusExcused, Notes: "médico"}},
	})
	require.NoError(t, err)
	assert.Equal(t, Bulk{Created: 1, Updated: 1}, bulk)

	got := svc.Records(ctx, Filter{Course: "ingles-basico", Date: "2024-03-15"})
	require.Len(t, got, 2)
	byStudent := map[int64]model.AttendanceStatus{}
	for _, r := range got {
		byStudent[r.StudentID] = r.Status
		assert.Equal(t, "Inglés Básico", r.Course)
	}
	assert.Equal(t, map[int64]model.AttendanceStatus{2: model.StatusPresent, 6: model.StatusExcused}, byStudent)
	assert.Len(t, *seen, 2)

	_, err = svc.MarkCourse(ctx, &n, notify.Yes(), CourseMark{Course: "latin", Date: "2024-03-15"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.MarkCourse(ctx, &n, notify.Yes(), CourseMark{Course: "ingles-basico", Date: "2030-01-01"})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validation.MsgFutureDate, verr.Fields["students[2].date"])
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)
	var n notify.Collector
	res, err := svc.Mark(ctx, &n, notify.Yes(), model.AttendanceRecord{StudentID: 3, Date: "2024-03-10", Status: model.StatusPresent})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, &n, notify.No(), res.Record.ID), notify.ErrDeclined)
	assert.Len(t, repo.Attendance(ctx), 1)

	require.NoError(t, svc.Delete(ctx, &n, notify.Yes(), res.Record.ID))
	assert.Empty(t, repo.Attendance(ctx))
	assert.ErrorIs(t, svc.Delete(ctx, &n, notify.Yes(), res.Record.ID), ErrNotFound)

	_, err = svc.Record(ctx, res.Record.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordsFiltersAndOrphans(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t)
	require.True(t, repo.SaveAttendance(ctx, []model.AttendanceRecord{
		{ID: 1, StudentID: 1, Date: "2024-03-01", Status: model.StatusPresent},
		{ID: 2, StudentID: 1, Date: "2024-03-05", Status: model.StatusAbsent},
		{ID: 3, StudentID: 77, Date: "2024-03-03", Status: model.StatusPresent},
		{ID: 4, StudentID: 2, Date: "garbage", Status: model.StatusPresent},
	}))

	all := svc.Records(ctx, Filter{})
	require.Len(t, all, 4)
	assert.Equal(t, int64(4), all[0].ID, "lexically newest first")

	ranged := svc.Records(ctx, Filter{From: "2024-03-02", To: "2024-03-31"})
	require.Len(t, ranged, 2)
	assert.Equal(t, int64(2), ranged[0].ID)
	assert.True(t, ranged[1].Orphan)
	assert.Empty(t, ranged[1].StudentName)

	assert.Len(t, svc.Records(ctx, Filter{StudentID: 1, Status: "absent"}), 1)
	assert.Len(t, svc.Records(ctx, Filter{Course: "ingles-intermedio"}), 2)

	d := svc.Daily(ctx, "2024-03-01", "")
	assert.Equal(t, 1, d.Present)
	assert.Equal(t, 1, d.Total)
}
