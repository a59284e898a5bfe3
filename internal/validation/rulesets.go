package validation

import (
	"fmt"
	"strconv"
	"time"

	"academy/internal/model"
)

// Duplicate-key messages.
const (
	MsgStudentEmailTaken    = "a student with this email already exists"
	MsgInstructorEmailTaken = "an instructor with this email already exists"
	MsgEmployeeIDTaken      = "an instructor with this employee id already exists"
	MsgCourseCodeTaken      = "a course with this code already exists"
	MsgUnknownCourse        = "unknown course"
	MsgLevelForCourse       = "level not valid for the selected course"
	MsgUnknownInstructor    = "instructor not found"
	MsgUnknownStudent       = "student not found"
	MsgNoSpecialty          = "at least one specialty is required"
)

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func statuses[T ~string](in []T) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

// Student validates s against the existing students and courses. now bounds the enrollment date.
func Student(s model.Student, students []model.Student, courses []model.Course, now time.Time) Report {
	emails := make([]Keyed, len(students))
	for i, o := range students {
		emails[i] = Keyed{ID: o.ID, Value: o.Email}
	}
	levels := model.LevelsFor(s.Course, courses)

	fv := NewFormValidator().
		AddRule("name", Required, MinLength(2), MaxLength(100)).
		AddRule("email", Required, Email, MaxLength(255), Unique(emails, s.ID, true, MsgStudentEmailTaken)).
		AddRule("phone", Phone).
		AddRule("course", Required, func(v string) Result {
			if levels == nil {
				return fail(MsgUnknownCourse)
			}
			return pass()
		}).
		AddRule("level", Required, func(v string) Result {
			if levels == nil {
				return pass()
			}
			if !OneOf(levels...)(v).IsValid {
				return fail(MsgLevelForCourse)
			}
			return pass()
		}).
		AddRule("enrollmentDate", PastDate(now))

	return fv.Validate(map[string]string{
		"name":           s.Name,
		"email":          s.Email,
		"phone":          s.Phone,
		"course":         s.Course,
		"level":          s.Level,
		"enrollmentDate": s.EnrollmentDate,
	})
}

// Course validates c against the existing courses and instructors. A zero InstructorID means unassigned.
func Course(c model.Course, courses []model.Course, instructors []model.Instructor) Report {
	codes := make([]Keyed, len(courses))
	for i, o := range courses {
		codes[i] = Keyed{ID: o.ID, Value: o.Code}
	}

	fv := NewFormValidator().
		AddRule("code", CourseCode, Unique(codes, c.ID, true, MsgCourseCodeTaken)).
		AddRule("name", Required, MinLength(3), MaxLength(100)).
		AddRule("language", Required).
		AddRule("level", Required, OneOf(model.AllLevels...)).
		AddRule("duration", Range(1, 520)).
		AddRule("schedule", Required, MaxLength(200)).
		AddRule("capacity", Range(1, 1000)).
		AddRule("status", Required, OneOf(statuses(model.CourseStatuses)...)).
		AddRule("description", MaxLength(1000)).
		AddRule("instructorId", func(v string) Result {
			if c.InstructorID == 0 {
				return pass()
			}
			for _, in := range instructors {
				if in.ID == c.InstructorID {
					return pass()
				}
			}
			return fail(MsgUnknownInstructor)
		})

	return fv.Validate(map[string]string{
		"code":         c.Code,
		"name":         c.Name,
		"language":     c.Language,
		"level":        c.Level,
		"duration":     strconv.Itoa(c.Duration),
		"schedule":     c.Schedule,
		"capacity":     strconv.Itoa(c.Capacity),
		"status":       string(c.Status),
		"description":  c.Description,
		"instructorId": itoa(c.InstructorID),
	})
}

// Instructor validates in against the existing instructors, including each specialty.
func Instructor(in model.Instructor, instructors []model.Instructor, now time.Time) Report {
	emails := make([]Keyed, len(instructors))
	employeeIDs := make([]Keyed, len(instructors))
	for i, o := range instructors {
		emails[i] = Keyed{ID: o.ID, Value: o.Email}
		employeeIDs[i] = Keyed{ID: o.ID, Value: o.EmployeeID}
	}

	fv := NewFormValidator().
		AddRule("firstName", Required, MinLength(2), MaxLength(50)).
		AddRule("lastName", Required, MinLength(2), MaxLength(50)).
		AddRule("email", Required, Email, Unique(emails, in.ID, true, MsgInstructorEmailTaken)).
		AddRule("phone", Phone).
		AddRule("employeeId", MaxLength(20), Unique(employeeIDs, in.ID, true, MsgEmployeeIDTaken)).
		AddRule("status", Required, OneOf(statuses(model.InstructorStatuses)...)).
		AddRule("bio", MaxLength(1000))
	if in.HireDate != "" {
		fv.AddRule("hireDate", PastDate(now))
	}

	rep := fv.Validate(map[string]string{
		"firstName":  in.FirstName,
		"lastName":   in.LastName,
		"email":      in.Email,
		"phone":      in.Phone,
		"employeeId": in.EmployeeID,
		"status":     string(in.Status),
		"bio":        in.Bio,
		"hireDate":   in.HireDate,
	})

	if len(in.Specialties) == 0 {
		return rep.Merge(Invalid("specialties", MsgNoSpecialty))
	}
	for i, sp := range in.Specialties {
		rep = rep.Merge(specialty(i, sp))
	}
	return rep
}

func specialty(i int, sp model.Specialty) Report {
	prefix := fmt.Sprintf("specialties[%d].", i)
	fv := NewFormValidator().
		AddRule(prefix+"language", Required).
		AddRule(prefix+"proficiencyLevel", Required, OneOf(model.CEFRLevels...)).
		AddRule(prefix+"yearsExperience", Range(0, 60))
	values := map[string]string{
		prefix + "language":         sp.Language,
		prefix + "proficiencyLevel": sp.ProficiencyLevel,
		prefix + "yearsExperience":  strconv.Itoa(sp.YearsExperience),
	}
	levelOK := OneOf(model.AllLevels...)
	for j, lvl := range sp.TeachingLevels {
		key := fmt.Sprintf("%steachingLevels[%d]", prefix, j)
		fv.AddRule(key, levelOK)
		values[key] = lvl
	}
	return fv.Validate(values)
}

// Attendance validates r. The referenced student must exist and the date must not be in the future.
func Attendance(r model.AttendanceRecord, students []model.Student, now time.Time) Report {
	fv := NewFormValidator().
		AddRule("studentId", func(v string) Result {
			if r.StudentID == 0 {
				return fail(MsgRequired)
			}
			for _, s := range students {
				if s.ID == r.StudentID {
					return pass()
				}
			}
			return fail(MsgUnknownStudent)
		}).
		AddRule("date", PastDate(now)).
		AddRule("status", Required, OneOf(statuses(model.AttendanceStatuses)...)).
		AddRule("time", Clock).
		AddRule("notes", MaxLength(500))

	return fv.Validate(map[string]string{
		"studentId": itoa(r.StudentID),
		"date":      r.Date,
		"status":    string(r.Status),
		"time":      r.Time,
		"notes":     r.Notes,
	})
}

// Settings validates user preferences.
func Settings(s model.Settings) Report {
	return NewFormValidator().
		AddRule("theme", Required, OneOf("light", "dark")).
		AddRule("language", Required, MinLength(2), MaxLength(10)).
		AddRule("pageSize", Range(1, 100)).
		Validate(map[string]string{
			"theme":    s.Theme,
			"language": s.Language,
			"pageSize": strconv.Itoa(s.PageSize),
		})
}
