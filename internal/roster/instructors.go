package roster

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"academy/internal/events"
	"academy/internal/model"
	"academy/internal/notify"
	"academy/internal/repository"
	"academy/internal/validation"
)

// InstructorFilter narrows Instructors. Empty fields match everything.
type InstructorFilter struct {
	Query    string `form:"q"`
	Language string `form:"language"`
	Status   string `form:"status"`
}

func instructorID(in model.Instructor) int64 { return in.ID }

func normalizeInstructor(in model.Instructor) model.Instructor {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.EmployeeID = validation.NormalizeCode(in.EmployeeID)
	in.HireDate = strings.TrimSpace(in.HireDate)
	if in.Status == "" {
		in.Status = model.InstructorActive
	}
	if in.Specialties == nil {
		in.Specialties = []model.Specialty{}
	}
	for i := range in.Specialties {
		in.Specialties[i].Language = strings.TrimSpace(in.Specialties[i].Language)
		if in.Specialties[i].TeachingLevels == nil {
			in.Specialties[i].TeachingLevels = []string{}
		}
	}
	return in
}

// Instructors lists instructors matching f.
func (s *Service) Instructors(ctx context.Context, f InstructorFilter) []model.Instructor {
	out := []model.Instructor{}
	for _, in := range s.repo.Instructors(ctx) {
		if f.Status != "" && string(in.Status) != f.Status {
			continue
		}
		if f.Language != "" && !slices.ContainsFunc(in.Languages(), func(l string) bool { return strings.EqualFold(l, f.Language) }) {
			continue
		}
		if !matches(f.Query, in.FullName(), in.Email, in.EmployeeID) {
			continue
		}
		out = append(out, in)
	}
	return out
}

// Instructor returns one instructor.
func (s *Service) Instructor(ctx context.Context, id int64) (model.Instructor, error) {
	for _, in := range s.repo.Instructors(ctx) {
		if in.ID == id {
			return in, nil
		}
	}
	return model.Instructor{}, fmt.Errorf("instructor %d: %w", id, ErrNotFound)
}

// AddInstructor validates and appends an instructor. Status defaults to active.
func (s *Service) AddInstructor(ctx context.Context, n notify.Notifier, in model.Instructor) (model.Instructor, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	list := s.repo.Instructors(ctx)
	in = normalizeInstructor(in)
	in.ID = 0
	if err := validation.Instructor(in, list, s.now()).Err(); err != nil {
		return model.Instructor{}, err
	}

	in.ID = s.repo.NextID(ctx, repository.Instructors, maxID(list, instructorID))
	in.CreatedAt = s.stamp()
	in.UpdatedAt = in.CreatedAt
	list = append(list, in)

	s.saved(n, s.repo.SaveInstructors(ctx, list), "instructor added")
	s.publish(ctx, events.InstructorChanged, in.ID)
	return in, nil
}

// UpdateInstructor replaces the fields of instructor id. Courses follow the id, so a
// rename shows up on every assigned course without touching them.
func (s *Service) UpdateInstructor(ctx context.Context, n notify.Notifier, id int64, in model.Instructor) (model.Instructor, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	list := s.repo.Instructors(ctx)
	idx := indexOf(list, id, instructorID)
	if idx < 0 {
		return model.Instructor{}, fmt.Errorf("instructor %d: %w", id, ErrNotFound)
	}
	in = normalizeInstructor(in)
	in.ID = id
	if err := validation.Instructor(in, list, s.now()).Err(); err != nil {
		return model.Instructor{}, err
	}

	in.CreatedAt = list[idx].CreatedAt
	in.UpdatedAt = s.stamp()
	list[idx] = in

	s.saved(n, s.repo.SaveInstructors(ctx, list), "instructor updated")
	s.publish(ctx, events.InstructorChanged, id)
	return in, nil
}

// DeleteInstructor removes an instructor after confirmation and unassigns their courses.
func (s *Service) DeleteInstructor(ctx context.Context, n notify.Notifier, c notify.Confirmer, id int64) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	list := s.repo.Instructors(ctx)
	idx := indexOf(list, id, instructorID)
	if idx < 0 {
		return fmt.Errorf("instructor %d: %w", id, ErrNotFound)
	}
	courses := s.repo.Courses(ctx)
	var assigned int
	for _, co := range courses {
		if co.InstructorID == id {
			assigned++
		}
	}
	prompt := fmt.Sprintf("Delete instructor %s?", list[idx].FullName())
	if assigned > 0 {
		prompt = fmt.Sprintf("Delete instructor %s? %d courses will be left unassigned.", list[idx].FullName(), assigned)
	}
	if !c.Confirm(ctx, prompt) {
		return notify.ErrDeclined
	}

	list = append(list[:idx], list[idx+1:]...)
	s.saved(n, s.repo.SaveInstructors(ctx, list), "instructor deleted")
	if assigned > 0 {
		now := s.stamp()
		for i := range courses {
			if courses[i].InstructorID == id {
				courses[i].InstructorID = 0
				courses[i].UpdatedAt = now
			}
		}
		s.saved(n, s.repo.SaveCourses(ctx, courses), "")
		s.publish(ctx, events.CourseChanged, 0)
	}
	s.publish(ctx, events.InstructorChanged, id)
	return nil
}
