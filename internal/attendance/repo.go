package attendance

import (
	"sort"
	"strings"
	"time"

	"academy/internal/model"
	"academy/internal/validation"
)

// Filter narrows Records. Zero fields match everything; From and To are inclusive.
type Filter struct {
	Date      string `form:"date"`
	From      string `form:"from"`
	To        string `form:"to"`
	Course    string `form:"course"`
	StudentID int64  `form:"studentId"`
	Status    string `form:"status"`
}

// RecordView is a record joined with its student. Orphan records have no student any more.
type RecordView struct {
	model.AttendanceRecord
	StudentName string `json:"studentName,omitempty"`
	Course      string `json:"course,omitempty"`
	Orphan      bool   `json:"orphan,omitempty"`
}

func (f Filter) match(r model.AttendanceRecord, st model.Student, known bool) bool {
	if f.StudentID != 0 && r.StudentID != f.StudentID {
		return false
	}
	if f.Status != "" && string(r.Status) != f.Status {
		return false
	}
	if f.Course != "" && (!known || st.Course != f.Course) {
		return false
	}
	if f.Date == "" && f.From == "" && f.To == "" {
		return true
	}
	d, ok := r.Day()
	if !ok {
		return false
	}
	day := model.FormatDate(d)
	switch {
	case f.Date != "" && day != f.Date:
		return false
	case f.From != "" && day < f.From:
		return false
	case f.To != "" && day > f.To:
		return false
	}
	return true
}

// filter joins records with students and applies f, newest date first.
func filter(records []model.AttendanceRecord, students []model.Student, courses []model.Course, f Filter) []RecordView {
	byID := make(map[int64]model.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}
	out := []RecordView{}
	for _, r := range records {
		st, known := byID[r.StudentID]
		if !f.match(r, st, known) {
			continue
		}
		v := RecordView{AttendanceRecord: r, Orphan: !known}
		if known {
			v.StudentName = st.Name
			v.Course = model.CourseName(st.Course, courses)
		}
		out = append(out, v)
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(v []RecordView) {
	sort.SliceStable(v, func(i, j int) bool { return v[i].Date > v[j].Date })
}

// find returns the index of the record for (studentID, date), or -1.
func find(records []model.AttendanceRecord, studentID int64, date string) int {
	for i, r := range records {
		if r.StudentID == studentID && r.Date == date {
			return i
		}
	}
	return -1
}

// normalizeDate reduces any accepted date spelling to YYYY-MM-DD.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if d, ok := validation.ParseDate(s); ok {
		return model.FormatDate(d)
	}
	return s
}

func normalize(in model.AttendanceRecord) model.AttendanceRecord {
	in.Date = normalizeDate(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Status = model.AttendanceStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
	return in
}

func maxRecordID(records []model.AttendanceRecord) int64 {
	var m int64
	for _, r := range records {
		if r.ID > m {
			m = r.ID
		}
	}
	return m
}

func clockOf(t time.Time) string { return t.Format(model.ClockLayout) }
