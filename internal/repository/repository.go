// Package repository persists the academy collections as JSON documents in a key-value store.
//
// Reads never fail: a missing, unreadable or corrupt value degrades to an empty collection
// and is logged. Writes report success as a bool; a failed write keeps the new value in an
// in-process overlay so later reads still see it until a subsequent write succeeds.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"academy/internal/model"
	"academy/internal/store"
)

// Collection names a persisted entity list.
type Collection string

const (
	Students    Collection = "students"
	Attendance  Collection = "attendance"
	Courses     Collection = "courses"
	Instructors Collection = "instructors"
)

// Collections lists every entity collection.
var Collections = []Collection{Students, Attendance, Courses, Instructors}

const (
	settingsKey  = "app_settings"
	sequencesKey = "sequences"
	probeKey     = "__storage_test__"

	// SnapshotKey holds the worker-maintained dashboard snapshot.
	SnapshotKey = "dashboard_snapshot"
)

// ErrQuotaExceeded is logged when a write would push usage past the configured quota.
var ErrQuotaExceeded = errors.New("repository: storage quota exceeded")

// Repository reads and writes named collections.
type Repository struct {
	kv    store.KV
	log   zerolog.Logger
	quota int64

	onSaveFailure func(key string)

	mu      sync.RWMutex
	overlay map[string][]byte

	seqMu sync.Mutex
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for fail-soft paths.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Repository) { r.log = l }
}

// WithQuota caps total stored bytes (keys plus values). Zero disables the cap.
func WithQuota(bytes int64) Option {
	return func(r *Repository) { r.quota = bytes }
}

// WithSaveFailureHook registers a callback run for every failed write.
func WithSaveFailureHook(fn func(key string)) Option {
	return func(r *Repository) { r.onSaveFailure = fn }
}

// New creates a repository over kv.
func New(kv store.KV, opts ...Option) *Repository {
	r := &Repository{
		kv:      kv,
		log:     zerolog.Nop(),
		overlay: make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetCollection returns the persisted list for c. An absent or empty students collection is
// seeded with the sample students, which are written back and returned.
func GetCollection[T any](ctx context.Context, r *Repository, c Collection) []T {
	data, found := r.read(ctx, string(c))
	if !found || blank(data) {
		if c != Students {
			return []T{}
		}
		data = r.seed(ctx)
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		r.log.Error().Err(err).Str("collection", string(c)).Msg("corrupt collection, serving empty list")
		return []T{}
	}
	if out == nil {
		return []T{}
	}
	return out
}

// SaveCollection serialises and persists list under c. It returns false when the value
// could not be made durable; the value is then served from memory until the next good write.
func SaveCollection[T any](ctx context.Context, r *Repository, c Collection, list []T) bool {
	if list == nil {
		list = []T{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		r.log.Error().Err(err).Str("collection", string(c)).Msg("encode collection")
		r.failed(string(c))
		return false
	}
	return r.write(ctx, string(c), data)
}

// Students returns the students collection.
func (r *Repository) Students(ctx context.Context) []model.Student {
	return GetCollection[model.Student](ctx, r, Students)
}

// SaveStudents persists the students collection.
func (r *Repository) SaveStudents(ctx context.Context, list []model.Student) bool {
	return SaveCollection(ctx, r, Students, list)
}

// Courses returns the courses collection.
func (r *Repository) Courses(ctx context.Context) []model.Course {
	return GetCollection[model.Course](ctx, r, Courses)
}

// SaveCourses persists the courses collection.
func (r *Repository) SaveCourses(ctx context.Context, list []model.Course) bool {
	return SaveCollection(ctx, r, Courses, list)
}

// Instructors returns the instructors collection.
func (r *Repository) Instructors(ctx context.Context) []model.Instructor {
	return GetCollection[model.Instructor](ctx, r, Instructors)
}

// SaveInstructors persists the instructors collection.
func (r *Repository) SaveInstructors(ctx context.Context, list []model.Instructor) bool {
	return SaveCollection(ctx, r, Instructors, list)
}

// Attendance returns every attendance record.
func (r *Repository) Attendance(ctx context.Context) []model.AttendanceRecord {
	return GetCollection[model.AttendanceRecord](ctx, r, Attendance)
}

// SaveAttendance persists the attendance collection.
func (r *Repository) SaveAttendance(ctx context.Context, list []model.AttendanceRecord) bool {
	return SaveCollection(ctx, r, Attendance, list)
}

// Settings returns the saved settings or the defaults.
func (r *Repository) Settings(ctx context.Context) model.Settings {
	s := model.DefaultSettings()
	if !r.LoadDocument(ctx, settingsKey, &s) {
		return model.DefaultSettings()
	}
	return s
}

// SaveSettings persists settings.
func (r *Repository) SaveSettings(ctx context.Context, s model.Settings) bool {
	return r.SaveDocument(ctx, settingsKey, s)
}

// LoadDocument decodes the JSON value at key into v. It reports false when the key is
// absent or the value is corrupt.
func (r *Repository) LoadDocument(ctx context.Context, key string, v any) bool {
	data, found := r.read(ctx, key)
	if !found || blank(data) {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("corrupt document")
		return false
	}
	return true
}

// SaveDocument encodes v as JSON and writes it at key.
func (r *Repository) SaveDocument(ctx context.Context, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		r.log.Error().Err(err).Str("key", key).Msg("encode document")
		r.failed(key)
		return false
	}
	return r.write(ctx, key, data)
}

// NextID allocates the next identifier for c. floor is the largest id currently in the
// collection; the result is above both floor and every id handed out before.
func (r *Repository) NextID(ctx context.Context, c Collection, floor int64) int64 {
	r.seqMu.Lock()
	defer r.seqMu.Unlock()

	seqs := map[Collection]int64{}
	r.LoadDocument(ctx, sequencesKey, &seqs)

	next := max(seqs[c], floor) + 1
	seqs[c] = next
	r.SaveDocument(ctx, sequencesKey, seqs)
	return next
}

// IsAvailable probes the store with a write and a delete.
func (r *Repository) IsAvailable(ctx context.Context) bool {
	if err := r.kv.Set(ctx, probeKey, []byte(probeKey)); err != nil {
		r.log.Warn().Err(err).Msg("storage not available")
		return false
	}
	if err := r.kv.Delete(ctx, probeKey); err != nil {
		r.log.Warn().Err(err).Msg("storage not available")
		return false
	}
	return true
}

// Ping checks the backend connection without writing.
func (r *Repository) Ping(ctx context.Context) error {
	return r.kv.Ping(ctx)
}

// ClearAll deletes every collection, the settings and the id sequences.
func (r *Repository) ClearAll(ctx context.Context) bool {
	keys := []string{settingsKey, sequencesKey, SnapshotKey}
	for _, c := range Collections {
		keys = append(keys, string(c))
	}
	ok := true
	for _, k := range keys {
		if err := r.kv.Delete(ctx, k); err != nil {
			r.log.Error().Err(err).Str("key", k).Msg("clear key")
			ok = false
		}
	}
	r.mu.Lock()
	r.overlay = make(map[string][]byte)
	r.mu.Unlock()
	return ok
}

// Pending lists keys whose latest value only lives in memory.
func (r *Repository) Pending() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.overlay))
	for k := range r.overlay {
		keys = append(keys, k)
	}
	return keys
}

func (r *Repository) read(ctx context.Context, key string) ([]byte, bool) {
	r.mu.RLock()
	data, ok := r.overlay[key]
	r.mu.RUnlock()
	if ok {
		return data, true
	}

	data, err := r.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.log.Error().Err(err).Str("key", key).Msg("read key")
		}
		return nil, false
	}
	return data, true
}

func (r *Repository) write(ctx context.Context, key string, data []byte) bool {
	err := r.checkQuota(ctx, key, data)
	if err == nil {
		err = r.kv.Set(ctx, key, data)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.overlay[key] = data
		r.log.Warn().Err(err).Str("key", key).Msg("write failed, keeping value in memory only")
		r.failed(key)
		return false
	}
	delete(r.overlay, key)
	return true
}

func (r *Repository) checkQuota(ctx context.Context, key string, data []byte) error {
	if r.quota <= 0 {
		return nil
	}
	u, err := r.usage(ctx)
	if err != nil {
		return err
	}
	projected := u.TotalSizeBytes + int64(len(key)+len(data))
	if old, err := r.kv.Get(ctx, key); err == nil {
		projected -= int64(len(key) + len(old))
	}
	if projected > r.quota {
		return ErrQuotaExceeded
	}
	return nil
}

func (r *Repository) seed(ctx context.Context) []byte {
	seed := model.SampleStudents()
	data, _ := json.Marshal(seed)
	if !r.write(ctx, string(Students), data) {
		r.log.Warn().Msg("sample students not persisted")
	}
	return data
}

func (r *Repository) failed(key string) {
	if r.onSaveFailure != nil {
		r.onSaveFailure(key)
	}
}

func blank(data []byte) bool {
	t := bytes.TrimSpace(data)
	return len(t) == 0 || bytes.Equal(t, []byte("[]")) || bytes.Equal(t, []byte("null"))
}
