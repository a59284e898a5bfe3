package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"academy/internal/events"
	"academy/internal/metrics"
	"academy/internal/model"
	"academy/internal/notify"
	"academy/internal/repository"
	"academy/internal/validation"
)

func (h *Handler) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.Repo.Settings(c.Request.Context()))
}

func (h *Handler) putSettings(c *gin.Context) {
	var s model.Settings
	if err := c.ShouldBindJSON(&s); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	if err := validation.Settings(s).Err(); err != nil {
		k.fail(c, err)
		return
	}
	h.saved(k, h.Repo.SaveSettings(c.Request.Context(), s), "settings saved")
	k.ok(c, http.StatusOK, "settings", s)
}

func (h *Handler) storageUsage(c *gin.Context) {
	u := h.Repo.UsageInfo(c.Request.Context())
	if u.Available {
		metrics.StoredBytes.Set(float64(u.TotalSizeBytes))
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) clearStorage(c *gin.Context) {
	ctx := c.Request.Context()
	k := h.begin(c)
	h.Lock.Lock()
	defer h.Lock.Unlock()
	if !k.confirm.Confirm(ctx, "Delete all academy data? This cannot be undone.") {
		k.fail(c, notify.ErrDeclined)
		return
	}
	h.saved(k, h.Repo.ClearAll(ctx), "all data cleared")
	h.Bus.Publish(ctx, events.Event{Topic: events.DataImported})
	k.ok(c, http.StatusOK, "cleared", true)
}

func (h *Handler) exportBackup(c *gin.Context) {
	now := h.Now()
	c.Header("Content-Disposition", `attachment; filename="academy_backup_`+model.FormatDate(now)+`.json"`)
	c.JSON(http.StatusOK, h.Repo.Export(c.Request.Context(), now.UTC().Truncate(time.Second)))
}

// importBackup replaces every collection present in the body after confirmation.
func (h *Handler) importBackup(c *gin.Context) {
	var b repository.Backup
	if err := c.ShouldBindJSON(&b); err != nil {
		badRequest(c, err)
		return
	}
	if b.Students == nil && b.Attendance == nil && b.Courses == nil && b.Instructors == nil && b.Settings == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "backup contains no collections"})
		return
	}
	ctx := c.Request.Context()
	k := h.begin(c)
	h.Lock.Lock()
	defer h.Lock.Unlock()
	if !k.confirm.Confirm(ctx, "Import backup? Existing data will be replaced.") {
		k.fail(c, notify.ErrDeclined)
		return
	}
	h.saved(k, h.Repo.Import(ctx, b), "backup imported")
	h.Bus.Publish(ctx, events.Event{Topic: events.DataImported})
	k.ok(c, http.StatusOK, "imported", true)
}

func (h *Handler) saved(k *call, ok bool, success string) {
	if ok {
		k.notify.Notify(notify.Success, success)
		return
	}
	k.notify.Notify(notify.Warning, notify.NotDurable)
}
