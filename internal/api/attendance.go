package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy/internal/attendance"
	"academy/internal/model"
)

func (h *Handler) listAttendance(c *gin.Context) {
	var f attendance.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": h.Attendance.Records(c.Request.Context(), f)})
}

func (h *Handler) getAttendance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k := h.begin(c)
	r, err := h.Attendance.Record(c.Request.Context(), id)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "record", r)
}

// markAttendance answers 201 for a new record and 200 when an existing one was overwritten.
func (h *Handler) markAttendance(c *gin.Context) {
	var in model.AttendanceRecord
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	res, err := h.Attendance.Mark(c.Request.Context(), k.notify, k.confirm, in)
	if err != nil {
		k.fail(c, err)
		return
	}
	status := http.StatusOK
	if res.Outcome == attendance.Created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"record": res.Record, "outcome": res.Outcome, "alerts": k.list()})
}

func (h *Handler) markCourse(c *gin.Context) {
	var m attendance.CourseMark
	if err := c.ShouldBindJSON(&m); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	bulk, err := h.Attendance.MarkCourse(c.Request.Context(), k.notify, k.confirm, m)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "result", bulk)
}

func (h *Handler) deleteAttendance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k := h.begin(c)
	if err := h.Attendance.Delete(c.Request.Context(), k.notify, k.confirm, id); err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "deleted", id)
}
