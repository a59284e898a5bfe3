package repository

import (
	"context"
	"time"

	"academy/internal/model"
)

// BackupVersion tags exported documents.
const BackupVersion = "1.0.0"

// Backup is a full export of the academy data.
type Backup struct {
	Students    []model.Student          `json:"students"`
	Attendance  []model.AttendanceRecord `json:"attendance"`
	Courses     []model.Course           `json:"courses"`
	Instructors []model.Instructor       `json:"instructors"`
	Settings    *model.Settings          `json:"settings,omitempty"`
	ExportDate  time.Time                `json:"exportDate"`
	Version     string                   `json:"version"`
}

// Export gathers every collection and the settings.
func (r *Repository) Export(ctx context.Context, now time.Time) Backup {
	settings := r.Settings(ctx)
	return Backup{
		Students:    r.Students(ctx),
		Attendance:  r.Attendance(ctx),
		Courses:     r.Courses(ctx),
		Instructors: r.Instructors(ctx),
		Settings:    &settings,
		ExportDate:  now,
		Version:     BackupVersion,
	}
}

// Import overwrites the collections present in b. Nil collections are left untouched.
func (r *Repository) Import(ctx context.Context, b Backup) bool {
	ok := true
	if b.Students != nil {
		ok = r.SaveStudents(ctx, b.Students) && ok
	}
	if b.Attendance != nil {
		ok = r.SaveAttendance(ctx, b.Attendance) && ok
	}
	if b.Courses != nil {
		ok = r.SaveCourses(ctx, b.Courses) && ok
	}
	if b.Instructors != nil {
		ok = r.SaveInstructors(ctx, b.Instructors) && ok
	}
	if b.Settings != nil {
		ok = r.SaveSettings(ctx, *b.Settings) && ok
	}
	return ok
}
