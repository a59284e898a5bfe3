package api

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"academy/internal/model"
	"academy/internal/report"
	"academy/internal/snapshot"
	"academy/internal/stats"
)

func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, stats.BuildOverview(h.Repo.Students(ctx), h.Repo.Courses(ctx), h.Repo.Attendance(ctx), h.Now()))
}

// dashboardSnapshot serves the precomputed document. ?refresh=true rebuilds it first.
func (h *Handler) dashboardSnapshot(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("refresh") == "true" && h.Snapshots != nil {
		s, err := h.Snapshots.Rebuild(ctx, "request")
		if err != nil {
			h.Log.Warn().Err(err).Msg("snapshot rebuild on request")
		}
		c.JSON(http.StatusOK, s)
		return
	}
	s, ok := snapshot.Load(ctx, h.Repo)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot yet"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) statsDaily(c *gin.Context) {
	ref, ok := h.refDate(c, "date")
	if !ok {
		return
	}
	date := model.FormatDate(ref)
	c.JSON(http.StatusOK, gin.H{"date": date, "stats": h.Attendance.Daily(c.Request.Context(), date, c.Query("course"))})
}

func (h *Handler) statsWeekly(c *gin.Context) {
	ref, ok := h.refDate(c, "date")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": stats.WeeklyBuckets(h.Repo.Attendance(c.Request.Context()), ref)})
}

func (h *Handler) statsMonthly(c *gin.Context) {
	ref, ok := h.refDate(c, "date")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, stats.MonthlyRollup(h.Repo.Attendance(ctx), h.Repo.Students(ctx), ref))
}

func (h *Handler) statsCourses(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{"courses": stats.CourseRollup(h.Repo.Students(ctx), h.Repo.Attendance(ctx))})
}

func (h *Handler) statsCourseStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.Roster.CourseStatusCounts(c.Request.Context()))
}

// statsStudents ranks students over all records, or summarises a range when from and to are given.
func (h *Handler) statsStudents(c *gin.Context) {
	ctx := c.Request.Context()
	students := h.Repo.Students(ctx)
	records := h.Repo.Attendance(ctx)
	if c.Query("from") == "" && c.Query("to") == "" {
		c.JSON(http.StatusOK, gin.H{"students": stats.StudentStats(records, students)})
		return
	}
	from, ok := h.refDate(c, "from")
	if !ok {
		return
	}
	to, ok := h.refDate(c, "to")
	if !ok {
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to must not be before from"})
		return
	}
	c.JSON(http.StatusOK, stats.RangeSummary(students, records, from, to))
}

func (h *Handler) report(c *gin.Context) {
	typ, err := report.ParseType(c.Param("type"))
	if err != nil {
		badRequest(c, err)
		return
	}
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		badRequest(c, err)
		return
	}
	ref, ok := h.refDate(c, "date")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	table, err := report.Build(typ, report.Data{
		Students:   h.Repo.Students(ctx),
		Courses:    h.Repo.Courses(ctx),
		Attendance: h.Repo.Attendance(ctx),
	}, ref)
	if err != nil {
		badRequest(c, err)
		return
	}
	var buf bytes.Buffer
	if err := report.Encode(&buf, table, format, h.Delimiter); err != nil {
		h.Log.Error().Err(err).Str("type", string(typ)).Msg("encode report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report generation failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.FileName(typ, h.Now(), format)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
