// Package api exposes the academy workflows over HTTP.
package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"academy/internal/attendance"
	"academy/internal/auth"
	"academy/internal/events"
	"academy/internal/httpmiddleware"
	"academy/internal/repository"
	"academy/internal/roster"
	"academy/internal/snapshot"
)

// Deps are the collaborators a Handler serves.
type Deps struct {
	Repo       *repository.Repository
	Roster     *roster.Service
	Attendance *attendance.Service
	Snapshots  *snapshot.Builder
	Bus        events.Publisher
	Lock       sync.Locker

	Signer auth.Signer
	Admin  auth.Admin

	Limiter   *httpmiddleware.SimpleTokenBucket
	Log       zerolog.Logger
	Delimiter rune
	Now       func() time.Time
}

// Handler owns the route table.
type Handler struct {
	Deps
}

// New fills defaults into d and returns a Handler.
func New(d Deps) *Handler {
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	if d.Bus == nil {
		d.Bus = events.Discard{}
	}
	if d.Lock == nil {
		d.Lock = &sync.Mutex{}
	}
	if d.Delimiter == 0 {
		d.Delimiter = ','
	}
	return &Handler{Deps: d}
}

// Register mounts every route on r. Cross-cutting middleware such as CORS is left to the caller.
func (h *Handler) Register(r *gin.Engine) {
	r.Use(gin.Recovery(), httpmiddleware.RequestID(), httpmiddleware.Logger(h.Log),
		httpmiddleware.Metrics(), httpmiddleware.SecurityHeaders())
	if h.Limiter != nil {
		r.Use(h.Limiter.GinMiddleware())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", h.health)

	r.POST("/v1/auth/token", h.token)
	r.POST("/v1/auth/refresh", h.refresh)

	v1 := r.Group("/v1", auth.AdminAuth(h.Signer))

	v1.GET("/students", h.listStudents)
	v1.POST("/students", h.createStudent)
	v1.GET("/students/:id", h.getStudent)
	v1.PUT("/students/:id", h.updateStudent)
	v1.DELETE("/students/:id", h.deleteStudent)

	v1.GET("/courses", h.listCourses)
	v1.POST("/courses", h.createCourse)
	v1.GET("/courses/:id", h.getCourse)
	v1.PUT("/courses/:id", h.updateCourse)
	v1.DELETE("/courses/:id", h.deleteCourse)

	v1.GET("/instructors", h.listInstructors)
	v1.POST("/instructors", h.createInstructor)
	v1.GET("/instructors/:id", h.getInstructor)
	v1.PUT("/instructors/:id", h.updateInstructor)
	v1.DELETE("/instructors/:id", h.deleteInstructor)
	v1.GET("/lookups/instructors", h.assignableInstructors)

	v1.GET("/attendance", h.listAttendance)
	v1.POST("/attendance", h.markAttendance)
	v1.POST("/attendance/mark-course", h.markCourse)
	v1.GET("/attendance/:id", h.getAttendance)
	v1.DELETE("/attendance/:id", h.deleteAttendance)

	v1.GET("/dashboard", h.dashboard)
	v1.GET("/dashboard/snapshot", h.dashboardSnapshot)
	v1.GET("/stats/daily", h.statsDaily)
	v1.GET("/stats/weekly", h.statsWeekly)
	v1.GET("/stats/monthly", h.statsMonthly)
	v1.GET("/stats/courses", h.statsCourses)
	v1.GET("/stats/course-status", h.statsCourseStatus)
	v1.GET("/stats/students", h.statsStudents)
	v1.GET("/reports/:type", h.report)

	v1.GET("/settings", h.getSettings)
	v1.PUT("/settings", h.putSettings)
	v1.GET("/storage/usage", h.storageUsage)
	v1.DELETE("/storage", h.clearStorage)
	v1.GET("/backup", h.exportBackup)
	v1.POST("/backup", h.importBackup)
}

func (h *Handler) health(c *gin.Context) {
	ctx := c.Request.Context()
	pingErr := h.Repo.Ping(ctx)
	writable := h.Repo.IsAvailable(ctx)
	status := http.StatusOK
	if pingErr != nil {
		status = http.StatusServiceUnavailable
	}
	body := gin.H{"status": "ok", "store": pingErr == nil, "writable": writable, "pending": h.Repo.Pending()}
	if status != http.StatusOK {
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}

func (h *Handler) token(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.Admin.Verify(req.Username, req.Password) {
		h.Log.Warn().Str("user", req.Username).Str("client_ip", c.ClientIP()).Msg("login rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	pair, err := h.Signer.Issue(req.Username, auth.RoleAdmin)
	if err != nil {
		h.Log.Error().Err(err).Msg("token issue")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, pair)
}

func (h *Handler) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pair, err := h.Signer.Refresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	c.JSON(http.StatusOK, pair)
}
