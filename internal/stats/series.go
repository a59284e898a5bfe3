package stats

import (
	"time"

	"academy/internal/model"
)

// Short weekday labels, Sunday first.
var dayLabels = [7]string{"Dom", "Lun", "Mar", "Mié", "Jue", "Vie", "Sáb"}

// DayBucket is the attendance of one calendar day.
type DayBucket struct {
	Date    string `json:"date"`
	Label   string `json:"label"`
	Total   int    `json:"total"`
	Present int    `json:"present"`
	Rate    int    `json:"rate"`
}

// WeeklyBuckets returns seven buckets, Sunday through Saturday, for the week containing ref.
func WeeklyBuckets(records []model.AttendanceRecord, ref time.Time) []DayBucket {
	start := day(ref).AddDate(0, 0, -int(ref.Weekday()))
	return buckets(records, start, 7)
}

// LastDays returns n buckets ending on ref, oldest first.
func LastDays(records []model.AttendanceRecord, ref time.Time, n int) []DayBucket {
	if n <= 0 {
		return []DayBucket{}
	}
	return buckets(records, day(ref).AddDate(0, 0, -(n-1)), n)
}

func buckets(records []model.AttendanceRecord, start time.Time, n int) []DayBucket {
	out := make([]DayBucket, n)
	index := make(map[string]int, n)
	for i := range out {
		d := start.AddDate(0, 0, i)
		out[i] = DayBucket{Date: model.FormatDate(d), Label: dayLabels[d.Weekday()]}
		index[out[i].Date] = i
	}
	for _, r := range records {
		d, ok := r.Day()
		if !ok {
			continue
		}
		i, ok := index[model.FormatDate(d)]
		if !ok {
			continue
		}
		out[i].Total++
		if r.Status == model.StatusPresent {
			out[i].Present++
		}
	}
	for i := range out {
		out[i].Rate = percent(out[i].Present, out[i].Total)
	}
	return out
}

// Monthly summarises the records of one calendar month.
type Monthly struct {
	TotalDaysWithRecords int           `json:"totalDaysWithRecords"`
	AverageRate          int           `json:"averageRate"`
	TotalRecords         int           `json:"totalRecords"`
	PerStudent           []StudentStat `json:"perStudent"`
}

// MonthlyRollup summarises the records dated within the calendar month of ref.
// AverageRate is the overall present rate of those records, not a mean of daily rates.
func MonthlyRollup(records []model.AttendanceRecord, students []model.Student, ref time.Time) Monthly {
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	in := Between(records, first, first.AddDate(0, 1, -1))
	return Monthly{
		TotalDaysWithRecords: distinctDates(in),
		AverageRate:          Rate(in),
		TotalRecords:         len(in),
		PerStudent:           StudentStats(in, students),
	}
}

// Between returns the records dated within [from, to], compared as calendar days.
// Records with malformed dates are dropped.
func Between(records []model.AttendanceRecord, from, to time.Time) []model.AttendanceRecord {
	lo, hi := model.FormatDate(from), model.FormatDate(to)
	var out []model.AttendanceRecord
	for _, r := range records {
		d, ok := r.Day()
		if !ok {
			continue
		}
		if s := model.FormatDate(d); s >= lo && s <= hi {
			out = append(out, r)
		}
	}
	return out
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
