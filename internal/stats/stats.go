// Package stats computes attendance aggregates. Every function is pure: inputs are
// never mutated and empty input yields zero values.
package stats

import (
	"sort"

	"academy/internal/model"
)

// Rate is the round-half-up integer percentage of present records, 0 for no records.
func Rate(records []model.AttendanceRecord) int {
	present := 0
	for _, r := range records {
		if r.Status == model.StatusPresent {
			present++
		}
	}
	return percent(present, len(records))
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

// Daily counts records by status. Total includes records with unrecognised statuses.
type Daily struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	Excused int `json:"excused"`
	Total   int `json:"total"`
}

// DailyStats counts the given records by status.
func DailyStats(records []model.AttendanceRecord) Daily {
	d := Daily{Total: len(records)}
	for _, r := range records {
		d.add(r.Status)
	}
	return d
}

func (d *Daily) add(s model.AttendanceStatus) {
	switch s {
	case model.StatusPresent:
		d.Present++
	case model.StatusAbsent:
		d.Absent++
	case model.StatusLate:
		d.Late++
	case model.StatusExcused:
		d.Excused++
	}
}

// StudentStat is one student's attendance summary. Orphan marks records whose
// student no longer exists; such entries carry no name or course.
type StudentStat struct {
	StudentID  int64  `json:"studentId"`
	Name       string `json:"name"`
	Course     string `json:"course"`
	Present    int    `json:"present"`
	Absent     int    `json:"absent"`
	Late       int    `json:"late"`
	Excused    int    `json:"excused"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Orphan     bool   `json:"orphan,omitempty"`
}

// StudentStats groups records by student and sorts by percentage, highest first.
// Ties keep the order in which students first appear in records. Records with an
// unparseable date are left out.
func StudentStats(records []model.AttendanceRecord, students []model.Student) []StudentStat {
	byID := indexStudents(students)
	pos := make(map[int64]int)
	out := []StudentStat{}
	for _, r := range records {
		if _, dated := r.Day(); !dated {
			continue
		}
		i, ok := pos[r.StudentID]
		if !ok {
			st := StudentStat{StudentID: r.StudentID}
			if s, found := byID[r.StudentID]; found {
				st.Name, st.Course = s.Name, s.Course
			} else {
				st.Orphan = true
			}
			i = len(out)
			pos[r.StudentID] = i
			out = append(out, st)
		}
		out[i].count(r.Status)
	}
	for i := range out {
		out[i].Percentage = percent(out[i].Present, out[i].Total)
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Percentage > out[b].Percentage })
	return out
}

func (s *StudentStat) count(status model.AttendanceStatus) {
	s.Total++
	switch status {
	case model.StatusPresent:
		s.Present++
	case model.StatusAbsent:
		s.Absent++
	case model.StatusLate:
		s.Late++
	case model.StatusExcused:
		s.Excused++
	}
}

func indexStudents(students []model.Student) map[int64]model.Student {
	m := make(map[int64]model.Student, len(students))
	for _, s := range students {
		m[s.ID] = s
	}
	return m
}

// ForDate returns the records dated on the given calendar day.
func ForDate(records []model.AttendanceRecord, date string) []model.AttendanceRecord {
	var out []model.AttendanceRecord
	for _, r := range records {
		if d, ok := r.Day(); ok && model.FormatDate(d) == date {
			out = append(out, r)
		}
	}
	return out
}

func distinctDates(records []model.AttendanceRecord) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		if d, ok := r.Day(); ok {
			seen[model.FormatDate(d)] = struct{}{}
		}
	}
	return len(seen)
}
