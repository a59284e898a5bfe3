// Package report turns attendance aggregates into flat tables and encodes them for download.
package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"academy/internal/model"
	"academy/internal/stats"
)

// Type names a report.
type Type string

const (
	Daily   Type = "daily"
	Weekly  Type = "weekly"
	Monthly Type = "monthly"
	Course  Type = "course"
	Student Type = "student"
)

// Types lists the available reports.
var Types = []Type{Daily, Weekly, Monthly, Course, Student}

// ErrUnknownType is returned for a report name outside Types.
var ErrUnknownType = errors.New("report: unknown type")

// ParseType validates a report name.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Field is one cell of a row.
type Field struct {
	Key   string
	Value string
}

// Row is an ordered flat record.
type Row []Field

// Table is a report's rows. The header is the keys of the first row.
type Table struct {
	Type Type
	Rows []Row
}

// Header returns the column names taken from the first row.
func (t Table) Header() []string {
	if len(t.Rows) == 0 {
		return nil
	}
	h := make([]string, len(t.Rows[0]))
	for i, f := range t.Rows[0] {
		h[i] = f.Key
	}
	return h
}

// Values returns the cell values of r in column order.
func (r Row) Values() []string {
	v := make([]string, len(r))
	for i, f := range r {
		v[i] = f.Value
	}
	return v
}

// Data is the snapshot a report is built from.
type Data struct {
	Students   []model.Student
	Courses    []model.Course
	Attendance []model.AttendanceRecord
}

// Build produces the table for typ. ref selects the day, week or month being reported.
func Build(typ Type, d Data, ref time.Time) (Table, error) {
	var rows []Row
	switch typ {
	case Daily:
		rows = daily(d, ref)
	case Weekly:
		rows = weekly(d, ref)
	case Monthly:
		rows = studentRows(stats.MonthlyRollup(d.Attendance, d.Students, ref).PerStudent, d.Courses)
	case Course:
		rows = courses(d)
	case Student:
		rows = studentRows(stats.StudentStats(d.Attendance, d.Students), d.Courses)
	default:
		return Table{}, fmt.Errorf("%w: %q", ErrUnknownType, typ)
	}
	return Table{Type: typ, Rows: rows}, nil
}

var statusLabels = map[model.AttendanceStatus]string{
	model.StatusPresent: "Presente",
	model.StatusAbsent:  "Ausente",
	model.StatusLate:    "Tarde",
	model.StatusExcused: "Justificado",
}

func statusLabel(s model.AttendanceStatus) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func daily(d Data, ref time.Time) []Row {
	byID := make(map[int64]model.Student, len(d.Students))
	for _, s := range d.Students {
		byID[s.ID] = s
	}
	var rows []Row
	for _, r := range stats.ForDate(d.Attendance, model.FormatDate(ref)) {
		s, ok := byID[r.StudentID]
		if !ok {
			continue
		}
		rows = append(rows, Row{
			{"Fecha", r.Date},
			{"Estudiante", s.Name},
			{"Curso", model.CourseName(s.Course, d.Courses)},
			{"Estado", statusLabel(r.Status)},
			{"Hora", r.Time},
			{"Notas", r.Notes},
		})
	}
	return rows
}

func weekly(d Data, ref time.Time) []Row {
	buckets := stats.WeeklyBuckets(d.Attendance, ref)
	rows := make([]Row, 0, len(buckets))
	for _, b := range buckets {
		rows = append(rows, Row{
			{"Fecha", b.Date},
			{"Día", b.Label},
			{"Total", strconv.Itoa(b.Total)},
			{"Presentes", strconv.Itoa(b.Present)},
			{"% Asistencia", strconv.Itoa(b.Rate)},
		})
	}
	return rows
}

func studentRows(list []stats.StudentStat, courses []model.Course) []Row {
	var rows []Row
	for _, s := range list {
		if s.Orphan {
			continue
		}
		rows = append(rows, Row{
			{"Estudiante", s.Name},
			{"Curso", model.CourseName(s.Course, courses)},
			{"Total", strconv.Itoa(s.Total)},
			{"Presente", strconv.Itoa(s.Present)},
			{"Ausente", strconv.Itoa(s.Absent)},
			{"Tarde", strconv.Itoa(s.Late)},
			{"Justificado", strconv.Itoa(s.Excused)},
			{"% Asistencia", strconv.Itoa(s.Percentage)},
		})
	}
	return rows
}

func courses(d Data) []Row {
	rollup := stats.CourseRollup(d.Students, d.Attendance)
	keys := make([]string, 0, len(rollup))
	for k := range rollup {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	rows := make([]Row, 0, len(keys))
	for _, k := range keys {
		c := rollup[k]
		rows = append(rows, Row{
			{"Curso", model.CourseName(k, d.Courses)},
			{"Estudiantes", strconv.Itoa(c.TotalStudents)},
			{"% Asistencia", strconv.Itoa(c.AverageAttendance)},
			{"Mejor estudiante", c.BestStudentName},
			{"Días activos", strconv.Itoa(c.ActiveDays)},
		})
	}
	return rows
}
