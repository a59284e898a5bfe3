package roster

import (
	"context"
	"fmt"
	"strings"

	"academy/internal/events"
	"academy/internal/model"
	"academy/internal/notify"
	"academy/internal/repository"
	"academy/internal/stats"
	"academy/internal/validation"
)

// CourseFilter narrows Courses. Empty fields match everything.
type CourseFilter struct {
	Query    string `form:"q"`
	Level    string `form:"level"`
	Language string `form:"language"`
	Status   string `form:"status"`
}

// CourseView is a course with its instructor's display name resolved.
type CourseView struct {
	model.Course
	InstructorName string `json:"instructorName"`
}

func courseID(c model.Course) int64 { return c.ID }

func normalizeCourse(in model.Course) model.Course {
	in.Code = validation.NormalizeCode(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Language = strings.TrimSpace(in.Language)
	in.Level = strings.TrimSpace(in.Level)
	in.Schedule = strings.TrimSpace(in.Schedule)
	in.Description = strings.TrimSpace(in.Description)
	if in.Capacity == 0 {
		in.Capacity = model.DefaultCapacity
	}
	if in.Status == "" {
		in.Status = model.CoursePlanned
	}
	return in
}

func instructorNames(list []model.Instructor) map[int64]string {
	m := make(map[int64]string, len(list))
	for _, in := range list {
		m[in.ID] = in.FullName()
	}
	return m
}

func enrolled(students []model.Student, code string) int {
	n := 0
	for _, s := range students {
		if s.Course == code {
			n++
		}
	}
	return n
}

// Courses lists courses matching f with instructor names resolved.
func (s *Service) Courses(ctx context.Context, f CourseFilter) []CourseView {
	names := instructorNames(s.repo.Instructors(ctx))
	out := []CourseView{}
	for _, c := range s.repo.Courses(ctx) {
		if f.Level != "" && c.Level != f.Level {
			continue
		}
		if f.Language != "" && !strings.EqualFold(c.Language, f.Language) {
			continue
		}
		if f.Status != "" && string(c.Status) != f.Status {
			continue
		}
		if !matches(f.Query, c.Code, c.Name, c.Language, names[c.InstructorID]) {
			continue
		}
		out = append(out, CourseView{Course: c, InstructorName: names[c.InstructorID]})
	}
	return out
}

// Course returns one course with its instructor name.
func (s *Service) Course(ctx context.Context, id int64) (CourseView, error) {
	for _, c := range s.repo.Courses(ctx) {
		if c.ID == id {
			return CourseView{Course: c, InstructorName: instructorNames(s.repo.Instructors(ctx))[c.InstructorID]}, nil
		}
	}
	return CourseView{}, fmt.Errorf("course %d: %w", id, ErrNotFound)
}

// CourseStatusCounts tallies courses by status.
func (s *Service) CourseStatusCounts(ctx context.Context) stats.StatusCounts {
	return stats.CourseStatusCounts(s.repo.Courses(ctx))
}

// AssignableInstructors lists the active instructors a course can be given to.
func (s *Service) AssignableInstructors(ctx context.Context) []model.Instructor {
	out := []model.Instructor{}
	for _, in := range s.repo.Instructors(ctx) {
		if in.Status == model.InstructorActive {
			out = append(out, in)
		}
	}
	return out
}

// AddCourse validates and appends a course. Capacity defaults to 20 and status to planned.
func (s *Service) AddCourse(ctx context.Context, n notify.Notifier, in model.Course) (CourseView, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	courses := s.repo.Courses(ctx)
	instructors := s.repo.Instructors(ctx)
	in = normalizeCourse(in)
	in.ID = 0
	if err := validation.Course(in, courses, instructors).Err(); err != nil {
		return CourseView{}, err
	}

	in.ID = s.repo.NextID(ctx, repository.Courses, maxID(courses, courseID))
	in.StudentsCount = enrolled(s.repo.Students(ctx), in.Code)
	in.CreatedAt = s.stamp()
	in.UpdatedAt = in.CreatedAt
	courses = append(courses, in)

	s.saved(n, s.repo.SaveCourses(ctx, courses), "course added")
	s.publish(ctx, events.CourseChanged, in.ID)
	return CourseView{Course: in, InstructorName: instructorNames(instructors)[in.InstructorID]}, nil
}

// UpdateCourse replaces the fields of course id.
func (s *Service) UpdateCourse(ctx context.Context, n notify.Notifier, id int64, in model.Course) (CourseView, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	courses := s.repo.Courses(ctx)
	idx := indexOf(courses, id, courseID)
	if idx < 0 {
		return CourseView{}, fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	instructors := s.repo.Instructors(ctx)
	in = normalizeCourse(in)
	in.ID = id
	if err := validation.Course(in, courses, instructors).Err(); err != nil {
		return CourseView{}, err
	}

	in.StudentsCount = enrolled(s.repo.Students(ctx), in.Code)
	in.CreatedAt = courses[idx].CreatedAt
	in.UpdatedAt = s.stamp()
	courses[idx] = in

	s.saved(n, s.repo.SaveCourses(ctx, courses), "course updated")
	s.publish(ctx, events.CourseChanged, id)
	return CourseView{Course: in, InstructorName: instructorNames(instructors)[in.InstructorID]}, nil
}

// DeleteCourse removes a course after confirmation. Enrolled students keep their course key.
func (s *Service) DeleteCourse(ctx context.Context, n notify.Notifier, c notify.Confirmer, id int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	courses := s.repo.Courses(ctx)
	idx := indexOf(courses, id, courseID)
	if idx < 0 {
		return fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	prompt := fmt.Sprintf("Delete course %s?", courses[idx].Code)
	if k := enrolled(s.repo.Students(ctx), courses[idx].Code); k > 0 {
		prompt = fmt.Sprintf("Delete course %s? %d enrolled students keep it as their course.", courses[idx].Code, k)
	}
	if !c.Confirm(ctx, prompt) {
		return notify.ErrDeclined
	}

	courses = append(courses[:idx], courses[idx+1:]...)
	s.saved(n, s.repo.SaveCourses(ctx, courses), "course deleted")
	s.publish(ctx, events.CourseChanged, id)
	return nil
}

// syncCourseCounts recomputes every studentsCount and saves courses only if one changed.
func (s *Service) syncCourseCounts(ctx context.Context, n notify.Notifier, students []model.Student, courses []model.Course) {
	changed := false
	for i := range courses {
		if k := enrolled(students, courses[i].Code); k != courses[i].StudentsCount {
			courses[i].StudentsCount = k
			changed = true
		}
	}
	if !changed {
		return
	}
	s.saved(n, s.repo.SaveCourses(ctx, courses), "")
	s.publish(ctx, events.CourseChanged, 0)
}
