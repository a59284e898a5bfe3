package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"academy/internal/model"
	"academy/internal/roster"
)

func (h *Handler) listStudents(c *gin.Context) {
	var f roster.StudentFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": h.Roster.Students(c.Request.Context(), f)})
}

func (h *Handler) getStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k := h.begin(c)
	st, err := h.Roster.Student(c.Request.Context(), id)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "student", st)
}

func (h *Handler) createStudent(c *gin.Context) {
	var in model.Student
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	st, err := h.Roster.AddStudent(c.Request.Context(), k.notify, in)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusCreated, "student", st)
}

func (h *Handler) updateStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in model.Student
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	st, err := h.Roster.UpdateStudent(c.Request.Context(), k.notify, id, in)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "student", st)
}

func (h *Handler) deleteStudent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k := h.begin(c)
	if err := h.Roster.DeleteStudent(c.Request.Context(), k.notify, k.confirm, id); err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "deleted", id)
}

func (h *Handler) listCourses(c *gin.Context) {
	var f roster.CourseFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": h.Roster.Courses(c.Request.Context(), f)})
}

func (h *Handler) getCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k := h.begin(c)
	v, err := h.Roster.Course(c.Request.Context(), id)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "course", v)
}

func (h *Handler) createCourse(c *gin.Context) {
	var in model.Course
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	v, err := h.Roster.AddCourse(c.Request.Context(), k.notify, in)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusCreated, "course", v)
}

func (h *Handler) updateCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in model.Course
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	v, err := h.Roster.UpdateCourse(c.Request.Context(), k.notify, id, in)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "course", v)
}

func (h *Handler) deleteCourse(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k := h.begin(c)
	if err := h.Roster.DeleteCourse(c.Request.Context(), k.notify, k.confirm, id); err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "deleted", id)
}

func (h *Handler) listInstructors(c *gin.Context) {
	var f roster.InstructorFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"instructors": h.Roster.Instructors(c.Request.Context(), f)})
}

func (h *Handler) assignableInstructors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"instructors": h.Roster.AssignableInstructors(c.Request.Context())})
}

func (h *Handler) getInstructor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k := h.begin(c)
	in, err := h.Roster.Instructor(c.Request.Context(), id)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "instructor", in)
}

func (h *Handler) createInstructor(c *gin.Context) {
	var in model.Instructor
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	out, err := h.Roster.AddInstructor(c.Request.Context(), k.notify, in)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusCreated, "instructor", out)
}

func (h *Handler) updateInstructor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in model.Instructor
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	k := h.begin(c)
	out, err := h.Roster.UpdateInstructor(c.Request.Context(), k.notify, id, in)
	if err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "instructor", out)
}

func (h *Handler) deleteInstructor(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	k := h.begin(c)
	if err := h.Roster.DeleteInstructor(c.Request.Context(), k.notify, k.confirm, id); err != nil {
		k.fail(c, err)
		return
	}
	k.ok(c, http.StatusOK, "deleted", id)
}
