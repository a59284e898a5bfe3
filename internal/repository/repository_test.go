package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/model"
	"academy/internal/store"
)

type flakyKV struct {
	*store.Memory
	failWrites bool
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.Memory.Set(ctx, key, value)
}

func (f *flakyKV) Delete(ctx context.Context, key string) error {
	if f.failWrites {
		return errors.New("disk full")
	}
	return f.Memory.Delete(ctx, key)
}

func newFlaky() *flakyKV { return &flakyKV{Memory: store.NewMemory()} }

func TestCollectionRoundTrip(t *testing.T) {
	ctx := context.Background()
	bg, err := store.NewBadgerInMemory()
	require.NoError(t, err)
	defer bg.Close()
	r := New(bg)

	courses := []model.Course{
		{ID: 1, Code: "ENG-101", Name: "English I", Language: "English", Level: "A1", Duration: 12, Capacity: 20, Status: model.CourseActive},
		{ID: 2, Code: "FREN-1A", Name: "Français", Language: "French", Level: "B1", Duration: 8, Capacity: 15, Status: model.CoursePlanned},
	}
	require.True(t, r.SaveCourses(ctx, courses))

	first := r.Courses(ctx)
	assert.Equal(t, courses, first)
	assert.Equal(t, first, r.Courses(ctx))
}

func TestStudentsSeededOnFirstRead(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	r := New(kv)

	got := r.Students(ctx)
	require.Len(t, got, 5)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "Ana García", got[0].Name)

	raw, err := kv.Get(ctx, string(Students))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ana.garcia@email.com")
}

func TestEmptyStudentsReseeded(t *testing.T) {
	ctx := context.Background()
	r := New(store.NewMemory())
	require.True(t, r.SaveStudents(ctx, []model.Student{}))
	assert.Len(t, r.Students(ctx), 5)
}

func TestOtherCollectionsNotSeeded(t *testing.T) {
	ctx := context.Background()
	r := New(store.NewMemory())
	for _, got := range [][]any{
		toAny(r.Attendance(ctx)),
		toAny(r.Courses(ctx)),
		toAny(r.Instructors(ctx)),
	} {
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func toAny[T any](in []T) []any {
	out := make([]any, 0, len(in))
	for _, v := range in {
		out = append(out, v)
	}
	return out
}

func TestCorruptCollectionFailsSoft(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, string(Students), []byte("{not json")))
	require.NoError(t, kv.Set(ctx, string(Attendance), []byte(`{"id":1}`)))
	r := New(kv)

	assert.Empty(t, r.Students(ctx))
	assert.Empty(t, r.Attendance(ctx))

	raw, err := kv.Get(ctx, string(Students))
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(raw), "corrupt value must not be overwritten")
}

func TestFailedSaveKeepsValueInMemory(t *testing.T) {
	ctx := context.Background()
	kv := newFlaky()
	var failures []string
	r := New(kv, WithSaveFailureHook(func(key string) { failures = append(failures, key) }))

	records := []model.AttendanceRecord{{ID: 1, StudentID: 1, Date: "2024-03-01", Status: model.StatusPresent}}
	kv.failWrites = true
	assert.False(t, r.SaveAttendance(ctx, records))
	assert.Equal(t, []string{string(Attendance)}, failures)
	assert.Equal(t, records, r.Attendance(ctx))
	assert.Equal(t, []string{string(Attendance)}, r.Pending())

	kv.failWrites = false
	assert.True(t, r.SaveAttendance(ctx, records))
	assert.Empty(t, r.Pending())

	raw, err := kv.Get(ctx, string(Attendance))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"studentId":1`)
}

func TestQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	r := New(store.NewMemory(), WithQuota(64))

	small := []model.AttendanceRecord{{ID: 1, StudentID: 1, Date: "2024-03-01", Status: model.StatusPresent}}
	assert.False(t, r.SaveAttendance(ctx, append(small, small[0], small[0])))

	r2 := New(store.NewMemory(), WithQuota(1024))
	assert.True(t, r2.SaveAttendance(ctx, small))
	assert.True(t, r2.SaveAttendance(ctx, small), "rewriting the same key must not double count")
}

func TestIsAvailable(t *testing.T) {
	ctx := context.Background()
	kv := newFlaky()
	r := New(kv)
	assert.True(t, r.IsAvailable(ctx))

	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys, "probe key must be removed")

	kv.failWrites = true
	assert.False(t, r.IsAvailable(ctx))
	assert.False(t, r.UsageInfo(ctx).Available)
}

func TestUsageInfo(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	require.NoError(t, kv.Set(ctx, "ab", []byte("cdef")))
	require.NoError(t, kv.Set(ctx, "x", []byte("yz")))

	u := New(kv).UsageInfo(ctx)
	assert.True(t, u.Available)
	assert.Equal(t, 2, u.ItemCount)
	assert.Equal(t, int64(9), u.TotalSizeBytes)
	assert.Equal(t, "9 Bytes", u.FormattedSize)
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		0:       "0 Bytes",
		512:     "512 Bytes",
		1024:    "1 KB",
		1536:    "1.5 KB",
		1048576: "1 MB",
		5242880: "5 MB",
		1500000: "1.43 MB",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatBytes(in), "FormatBytes(%d)", in)
	}
}

func TestNextIDNeverReused(t *testing.T) {
	ctx := context.Background()
	r := New(store.NewMemory())

	assert.Equal(t, int64(6), r.NextID(ctx, Students, 5))
	assert.Equal(t, int64(7), r.NextID(ctx, Students, 6))
	// the highest student was deleted; the id must still move forward
	assert.Equal(t, int64(8), r.NextID(ctx, Students, 5))
	assert.Equal(t, int64(1), r.NextID(ctx, Courses, 0))
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	r := New(store.NewMemory())
	assert.Equal(t, model.DefaultSettings(), r.Settings(ctx))

	s := model.Settings{Theme: "dark", Language: "en", PageSize: 25}
	require.True(t, r.SaveSettings(ctx, s))
	assert.Equal(t, s, r.Settings(ctx))
}

func TestExportImport(t *testing.T) {
	ctx := context.Background()
	src := New(store.NewMemory())
	require.True(t, src.SaveAttendance(ctx, []model.AttendanceRecord{{ID: 1, StudentID: 2, Date: "2024-01-02", Status: model.StatusLate}}))
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	b := src.Export(ctx, now)
	assert.Len(t, b.Students, 5)
	assert.Equal(t, BackupVersion, b.Version)
	assert.Equal(t, now, b.ExportDate)

	dst := New(store.NewMemory())
	require.True(t, dst.Import(ctx, Backup{Attendance: b.Attendance}))
	assert.Equal(t, b.Attendance, dst.Attendance(ctx))
	assert.Empty(t, dst.Courses(ctx))
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	r := New(kv)
	r.Students(ctx)
	require.True(t, r.SaveSettings(ctx, model.Settings{Theme: "dark", Language: "en", PageSize: 5}))

	assert.True(t, r.ClearAll(ctx))
	keys, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}
