package stats

import (
	"sort"
	"time"

	"academy/internal/model"
)

// NoBestStudent is reported for a course without any attendance.
const NoBestStudent = "N/A"

// CourseSummary is the attendance rollup of one course key.
type CourseSummary struct {
	TotalStudents     int    `json:"totalStudents"`
	AverageAttendance int    `json:"averageAttendance"`
	BestStudentName   string `json:"bestStudentName"`
	ActiveDays        int    `json:"activeDays"`
}

// CourseRollup partitions students by course key and summarises the records of each partition.
// Records with an unparseable date are left out.
func CourseRollup(students []model.Student, records []model.AttendanceRecord) map[string]CourseSummary {
	groups := make(map[string][]model.Student)
	courseOf := make(map[int64]string, len(students))
	for _, s := range students {
		groups[s.Course] = append(groups[s.Course], s)
		courseOf[s.ID] = s.Course
	}
	recs := make(map[string][]model.AttendanceRecord, len(groups))
	for _, r := range records {
		if _, dated := r.Day(); !dated {
			continue
		}
		if c, ok := courseOf[r.StudentID]; ok {
			recs[c] = append(recs[c], r)
		}
	}

	out := make(map[string]CourseSummary, len(groups))
	for course, members := range groups {
		in := recs[course]
		sum := CourseSummary{
			TotalStudents:     len(members),
			AverageAttendance: Rate(in),
			BestStudentName:   NoBestStudent,
			ActiveDays:        distinctDates(in),
		}
		if top := StudentStats(in, members); len(top) > 0 {
			sum.BestStudentName = top[0].Name
		}
		out[course] = sum
	}
	return out
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	RecordID    int64                  `json:"recordId"`
	StudentID   int64                  `json:"studentId"`
	StudentName string                 `json:"studentName"`
	Course      string                 `json:"course"`
	Status      model.AttendanceStatus `json:"status"`
	Date        string                 `json:"date"`
	Time        string                 `json:"time,omitempty"`
}

// Overview is the dashboard view.
type Overview struct {
	TotalStudents  int         `json:"totalStudents"`
	TodayPresent   int         `json:"todayAttendance"`
	AttendanceRate int         `json:"attendanceRate"`
	ActiveClasses  int         `json:"activeClasses"`
	Recent         []Activity  `json:"recentActivity"`
	Chart          []DayBucket `json:"chartData"`
}

// RecentLimit caps the recent-activity feed.
const RecentLimit = 10

// BuildOverview computes the dashboard for the day of now. Active classes counts
// distinct student course keys; orphaned records never appear in the feed.
func BuildOverview(students []model.Student, courses []model.Course, records []model.AttendanceRecord, now time.Time) Overview {
	keys := make(map[string]struct{})
	for _, s := range students {
		keys[s.Course] = struct{}{}
	}
	today := model.FormatDate(now)
	return Overview{
		TotalStudents:  len(students),
		TodayPresent:   DailyStats(ForDate(records, today)).Present,
		AttendanceRate: Rate(records),
		ActiveClasses:  len(keys),
		Recent:         RecentActivity(students, courses, records, RecentLimit),
		Chart:          LastDays(records, now, 7),
	}
}

// RecentActivity returns up to limit of the most recently touched records of existing students.
func RecentActivity(students []model.Student, courses []model.Course, records []model.AttendanceRecord, limit int) []Activity {
	byID := indexStudents(students)
	type entry struct {
		r  model.AttendanceRecord
		at time.Time
	}
	var live []entry
	for _, r := range records {
		if _, ok := byID[r.StudentID]; !ok {
			continue
		}
		live = append(live, entry{r: r, at: touched(r)})
	}
	sort.SliceStable(live, func(a, b int) bool { return live[a].at.After(live[b].at) })

	out := []Activity{}
	for _, e := range live {
		if len(out) == limit {
			break
		}
		s := byID[e.r.StudentID]
		out = append(out, Activity{
			RecordID:    e.r.ID,
			StudentID:   s.ID,
			StudentName: s.Name,
			Course:      model.CourseName(s.Course, courses),
			Status:      e.r.Status,
			Date:        e.r.Date,
			Time:        e.r.Time,
		})
	}
	return out
}

func touched(r model.AttendanceRecord) time.Time {
	switch {
	case !r.UpdatedAt.IsZero():
		return r.UpdatedAt
	case !r.CreatedAt.IsZero():
		return r.CreatedAt
	}
	d, _ := r.Day()
	return d
}

// Summary reports attendance over an inclusive date range.
type Summary struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Counts   Daily         `json:"counts"`
	Rate     int           `json:"rate"`
	Students []StudentStat `json:"students"`
}

// RangeSummary summarises the records dated within [from, to]. Every existing student
// gets a row, in roster order, even without records in the range.
func RangeSummary(students []model.Student, records []model.AttendanceRecord, from, to time.Time) Summary {
	in := Between(records, from, to)
	rows := make([]StudentStat, 0, len(students))
	pos := make(map[int64]int, len(students))
	for _, s := range students {
		pos[s.ID] = len(rows)
		rows = append(rows, StudentStat{StudentID: s.ID, Name: s.Name, Course: s.Course})
	}
	for _, r := range in {
		if i, ok := pos[r.StudentID]; ok {
			rows[i].count(r.Status)
		}
	}
	for i := range rows {
		rows[i].Percentage = percent(rows[i].Present, rows[i].Total)
	}
	return Summary{
		From:     model.FormatDate(from),
		To:       model.FormatDate(to),
		Counts:   DailyStats(in),
		Rate:     Rate(in),
		Students: rows,
	}
}

// StatusCounts tallies courses by lifecycle state.
type StatusCounts struct {
	Planned   int `json:"planned"`
	Active    int `json:"active"`
	Finished  int `json:"finished"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}

// CourseStatusCounts tallies courses by status. Unknown statuses count only toward Total.
func CourseStatusCounts(courses []model.Course) StatusCounts {
	c := StatusCounts{Total: len(courses)}
	for _, course := range courses {
		switch course.Status {
		case model.CoursePlanned:
			c.Planned++
		case model.CourseActive:
			c.Active++
		case model.CourseFinished:
			c.Finished++
		case model.CourseCancelled:
			c.Cancelled++
		}
	}
	return c
}
