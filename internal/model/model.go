// Package model holds the persisted entities of the academy and their fixed catalogs.
package model

import "time"

// DateLayout is the calendar-date encoding used in every collection.
const DateLayout = "2006-01-02"

// ClockLayout is the encoding of the informational attendance time.
const ClockLayout = "15:04"

// Student represents an enrolled student.
type Student struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Course         string    `json:"course"`
	Level          string    `json:"level"`
	EnrollmentDate string    `json:"enrollmentDate"`
	CreatedAt      time.Time `json:"createdAt,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt,omitempty"`
}

// CourseStatus is the lifecycle state of a course.
type CourseStatus string

const (
	CoursePlanned   CourseStatus = "planned"
	CourseActive    CourseStatus = "active"
	CourseFinished  CourseStatus = "finished"
	CourseCancelled CourseStatus = "cancelled"
)

// CourseStatuses lists the valid course states.
var CourseStatuses = []CourseStatus{CoursePlanned, CourseActive, CourseFinished, CourseCancelled}

// DefaultCapacity is the capacity assigned when none is given.
const DefaultCapacity = 20

// Course is a scheduled offering of a language at a level.
type Course struct {
	ID            int64        `json:"id"`
	Code          string       `json:"code"`
	Name          string       `json:"name"`
	Language      string       `json:"language"`
	Level         string       `json:"level"`
	Duration      int          `json:"duration"` // weeks
	Schedule      string       `json:"schedule"`
	InstructorID  int64        `json:"instructorId,omitempty"`
	Capacity      int          `json:"capacity"`
	Status        CourseStatus `json:"status"`
	StudentsCount int          `json:"studentsCount"`
	Description   string       `json:"description,omitempty"`
	CreatedAt     time.Time    `json:"createdAt,omitempty"`
	UpdatedAt     time.Time    `json:"updatedAt,omitempty"`
}

// InstructorStatus is the employment state of an instructor.
type InstructorStatus string

const (
	InstructorActive     InstructorStatus = "active"
	InstructorInactive   InstructorStatus = "inactive"
	InstructorOnVacation InstructorStatus = "on-vacation"
	InstructorOnLeave    InstructorStatus = "on-leave"
)

// InstructorStatuses lists the valid instructor states.
var InstructorStatuses = []InstructorStatus{InstructorActive, InstructorInactive, InstructorOnVacation, InstructorOnLeave}

// Specialty describes one language an instructor teaches.
type Specialty struct {
	Language         string   `json:"language"`
	ProficiencyLevel string   `json:"proficiencyLevel"`
	YearsExperience  int      `json:"yearsExperience"`
	Certifications   string   `json:"certifications,omitempty"`
	TeachingLevels   []string `json:"teachingLevels"`
}

// Instructor is a member of the teaching staff.
type Instructor struct {
	ID             int64            `json:"id"`
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone,omitempty"`
	EmployeeID     string           `json:"employeeId,omitempty"`
	Status         InstructorStatus `json:"status"`
	Bio            string           `json:"bio,omitempty"`
	Certifications string           `json:"certifications,omitempty"`
	HireDate       string           `json:"hireDate,omitempty"`
	Specialties    []Specialty      `json:"specialties"`
	CreatedAt      time.Time        `json:"createdAt,omitempty"`
	UpdatedAt      time.Time        `json:"updatedAt,omitempty"`
}

// FullName is the display name used wherever an instructor is referenced.
func (i Instructor) FullName() string {
	switch {
	case i.FirstName == "":
		return i.LastName
	case i.LastName == "":
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// Languages returns the distinct specialty languages in declaration order.
func (i Instructor) Languages() []string {
	seen := make(map[string]bool, len(i.Specialties))
	var out []string
	for _, s := range i.Specialties {
		if s.Language == "" || seen[s.Language] {
			continue
		}
		seen[s.Language] = true
		out = append(out, s.Language)
	}
	return out
}

// AttendanceStatus is the outcome recorded for a student on a date.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusAbsent  AttendanceStatus = "absent"
	StatusLate    AttendanceStatus = "late"
	StatusExcused AttendanceStatus = "excused"
)

// AttendanceStatuses lists the recognised attendance statuses.
var AttendanceStatuses = []AttendanceStatus{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

// Valid reports whether s is a recognised status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusExcused:
		return true
	}
	return false
}

// AttendanceRecord is one student's attendance on one calendar date.
type AttendanceRecord struct {
	ID        int64            `json:"id"`
	StudentID int64            `json:"studentId"`
	Date      string           `json:"date"`
	Status    AttendanceStatus `json:"status"`
	Notes     string           `json:"notes,omitempty"`
	Time      string           `json:"time,omitempty"`
	CreatedAt time.Time        `json:"createdAt,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt,omitempty"`
}

// Day parses the record date. ok is false for malformed dates.
func (r AttendanceRecord) Day() (time.Time, bool) {
	return ParseDate(r.Date)
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, bool) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// FormatDate renders t as a calendar date, dropping the clock.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Settings are the persisted user preferences.
type Settings struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
	PageSize int    `json:"pageSize"`
}

// DefaultSettings are used until settings are saved once.
func DefaultSettings() Settings {
	return Settings{Theme: "light", Language: "es", PageSize: 10}
}
