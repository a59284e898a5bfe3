package roster

import (
	"context"
	"fmt"
	"strings"

	"academy/internal/events"
	"academy/internal/model"
	"academy/internal/notify"
	"academy/internal/repository"
	"academy/internal/validation"
)

// StudentFilter narrows ListStudents. Empty fields match everything.
type StudentFilter struct {
	Query  string `form:"q"`
	Course string `form:"course"`
	Level  string `form:"level"`
}

func studentID(s model.Student) int64 { return s.ID }

func normalizeStudent(in model.Student) model.Student {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Course = strings.TrimSpace(in.Course)
	in.Level = strings.TrimSpace(in.Level)
	in.EnrollmentDate = strings.TrimSpace(in.EnrollmentDate)
	return in
}

// Students lists students matching f, in roster order.
func (s *Service) Students(ctx context.Context, f StudentFilter) []model.Student {
	out := []model.Student{}
	for _, st := range s.repo.Students(ctx) {
		if f.Course != "" && st.Course != f.Course {
			continue
		}
		if f.Level != "" && st.Level != f.Level {
			continue
		}
		if !matches(f.Query, st.Name, st.Email) {
			continue
		}
		out = append(out, st)
	}
	return out
}

// Student returns one student.
func (s *Service) Student(ctx context.Context, id int64) (model.Student, error) {
	for _, st := range s.repo.Students(ctx) {
		if st.ID == id {
			return st, nil
		}
	}
	return model.Student{}, fmt.Errorf("student %d: %w", id, ErrNotFound)
}

// AddStudent validates and appends a student with a freshly allocated id.
func (s *Service) AddStudent(ctx context.Context, n notify.Notifier, in model.Student) (model.Student, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	students := s.repo.Students(ctx)
	courses := s.repo.Courses(ctx)
	in = normalizeStudent(in)
	in.ID = 0
	if err := validation.Student(in, students, courses, s.now()).Err(); err != nil {
		return model.Student{}, err
	}

	in.ID = s.repo.NextID(ctx, repository.Students, maxID(students, studentID))
	in.CreatedAt = s.stamp()
	in.UpdatedAt = in.CreatedAt
	students = append(students, in)

	s.saved(n, s.repo.SaveStudents(ctx, students), "student added")
	s.syncCourseCounts(ctx, n, students, courses)
	s.publish(ctx, events.StudentAdded, in.ID)
	return in, nil
}

// UpdateStudent replaces the fields of student id. The id itself never changes.
func (s *Service) UpdateStudent(ctx context.Context, n notify.Notifier, id int64, in model.Student) (model.Student, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	students := s.repo.Students(ctx)
	idx := indexOf(students, id, studentID)
	if idx < 0 {
		return model.Student{}, fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	courses := s.repo.Courses(ctx)
	in = normalizeStudent(in)
	in.ID = id
	if err := validation.Student(in, students, courses, s.now()).Err(); err != nil {
		return model.Student{}, err
	}

	in.CreatedAt = students[idx].CreatedAt
	in.UpdatedAt = s.stamp()
	students[idx] = in

	s.saved(n, s.repo.SaveStudents(ctx, students), "student updated")
	s.syncCourseCounts(ctx, n, students, courses)
	s.publish(ctx, events.StudentUpdated, id)
	return in, nil
}

// DeleteStudent removes a student after confirmation. Attendance history is kept.
func (s *Service) DeleteStudent(ctx context.Context, n notify.Notifier, c notify.Confirmer, id int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	students := s.repo.Students(ctx)
	idx := indexOf(students, id, studentID)
	if idx < 0 {
		return fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	if !c.Confirm(ctx, fmt.Sprintf("Delete student %q? Attendance history is kept.", students[idx].Name)) {
		return notify.ErrDeclined
	}

	students = append(students[:idx], students[idx+1:]...)
	s.saved(n, s.repo.SaveStudents(ctx, students), "student deleted")
	s.syncCourseCounts(ctx, n, students, s.repo.Courses(ctx))
	s.publish(ctx, events.StudentDeleted, id)
	return nil
}

func indexOf[T any](list []T, id int64, key func(T) int64) int {
	for i, v := range list {
		if key(v) == id {
			return i
		}
	}
	return -1
}
