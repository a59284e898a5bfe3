package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"academy/internal/attendance"
	"academy/internal/model"
	"academy/internal/notify"
	"academy/internal/roster"
	"academy/internal/validation"
)

// call is the per-request notifier and confirmer pair.
type call struct {
	alerts  *notify.Collector
	answer  *notify.Answer
	notify  notify.Notifier
	confirm notify.Confirmer
}

// begin collects alerts for the response and answers confirmations from ?confirm=true.
func (h *Handler) begin(c *gin.Context) *call {
	confirm, _ := strconv.ParseBool(c.Query("confirm"))
	col := &notify.Collector{}
	ans := &notify.Answer{Yes: confirm}
	return &call{
		alerts:  col,
		answer:  ans,
		notify:  notify.Multi{col, notify.Log{Logger: h.Log}},
		confirm: ans,
	}
}

func (k *call) list() []notify.Alert {
	if a := k.alerts.Alerts(); a != nil {
		return a
	}
	return []notify.Alert{}
}

func (k *call) ok(c *gin.Context, status int, key string, v any) {
	c.JSON(status, gin.H{key: v, "alerts": k.list()})
}

func (k *call) fail(c *gin.Context, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "errors": verr.Fields, "alerts": k.list()})
	case errors.Is(err, notify.ErrDeclined):
		body := gin.H{"error": "confirmation required", "alerts": k.list()}
		if p := k.answer.Prompts(); len(p) > 0 {
			body["prompt"] = p[len(p)-1]
		}
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, roster.ErrNotFound), errors.Is(err, attendance.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "alerts": k.list()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "alerts": k.list()})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}

// refDate reads ?<name>= as a date, defaulting to today.
func (h *Handler) refDate(c *gin.Context, name string) (time.Time, bool) {
	s := c.Query(name)
	if s == "" {
		return h.Now(), true
	}
	t, ok := model.ParseDate(s)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return t, true
}
