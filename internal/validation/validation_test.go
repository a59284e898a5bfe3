package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/model"
)

var now = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func TestRequired(t *testing.T) {
	assert.False(t, Required("").IsValid)
	assert.False(t, Required("   ").IsValid)
	assert.Equal(t, MsgRequired, Required("\t").Message)
	assert.True(t, Required(" x ").IsValid)
}

func TestEmail(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
	}{
		{"", true},
		{"a@x.com", true},
		{"ana.garcia@email.com", true},
		{"a@x", false},
		{"a x@y.com", false},
		{"@x.com", false},
		{"plain", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, Email(tt.in).IsValid, "Email(%q)", tt.in)
	}
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("").IsValid)
	assert.True(t, Phone("+57 300 123 4567").IsValid)
	assert.True(t, Phone("(601) 555-0100").IsValid)
	assert.False(t, Phone("12345").IsValid)
	assert.False(t, Phone("call me maybe").IsValid)
}

func TestLength(t *testing.T) {
	assert.Equal(t, MsgRequired, MinLength(2)("").Message)
	assert.Equal(t, "minimum 2 characters", MinLength(2)("a").Message)
	assert.True(t, MinLength(2)("Añ").IsValid)
	assert.True(t, MaxLength(3)("").IsValid)
	assert.Equal(t, "maximum 3 characters", MaxLength(3)("abcd").Message)
}

func TestOneOf(t *testing.T) {
	r := OneOf("active", "on-vacation")
	assert.True(t, r("on-vacation").IsValid)
	assert.False(t, r("vacation").IsValid)
	assert.False(t, r("").IsValid)

	spaced := OneOf("Inglés Básico", "TOEFL")
	assert.True(t, spaced("Inglés Básico").IsValid)
	assert.False(t, spaced("Inglés").IsValid)

	assert.False(t, OneOf()("x").IsValid)
}

func TestPastDate(t *testing.T) {
	rule := PastDate(now)
	tests := []struct {
		in  string
		msg string
	}{
		{"2024-03-15", ""},
		{"2024-03-14", ""},
		{"2024-03-15T23:00:00Z", ""},
		{"2024-03-16", MsgFutureDate},
		{"", MsgDateRequired},
		{"15/03/2024", MsgInvalidDate},
		{"2024-02-30", MsgInvalidDate},
	}
	for _, tt := range tests {
		res := rule(tt.in)
		assert.Equal(t, tt.msg == "", res.IsValid, "PastDate(%q)", tt.in)
		assert.Equal(t, tt.msg, res.Message, "PastDate(%q)", tt.in)
	}
}

func TestRange(t *testing.T) {
	r := Range(1, 100)
	assert.True(t, r("1").IsValid)
	assert.True(t, r("100").IsValid)
	assert.True(t, r("50.5").IsValid)
	assert.Equal(t, "must be between 1 and 100", r("0").Message)
	assert.Equal(t, "must be between 1 and 100", r("101").Message)
	assert.Equal(t, MsgInvalidNumber, r("ten").Message)
	assert.Equal(t, MsgInvalidNumber, r("NaN").Message)
	assert.Equal(t, MsgInvalidNumber, r("Inf").Message)
	assert.Equal(t, MsgNumber, r("").Message)
}

func TestClock(t *testing.T) {
	assert.True(t, Clock("").IsValid)
	assert.True(t, Clock("09:05").IsValid)
	assert.True(t, Clock("23:59").IsValid)
	assert.False(t, Clock("24:00").IsValid)
	assert.False(t, Clock("9am").IsValid)
}

func TestCourseCode(t *testing.T) {
	tests := []struct {
		in  string
		msg string
	}{
		{"ENG-101", ""},
		{"FREN-1A", ""},
		{"eng-101", ""},
		{"EN-1", MsgCodeFormat},
		{"english101", MsgCodeFormat},
		{"EN", MsgCodeTooShort},
		{"", MsgRequired},
		{"ENGLI-101", MsgCodeFormat},
	}
	for _, tt := range tests {
		res := CourseCode(tt.in)
		assert.Equal(t, tt.msg == "", res.IsValid, "CourseCode(%q)", tt.in)
		assert.Equal(t, tt.msg, res.Message, "CourseCode(%q)", tt.in)
	}
}

func TestUniqueExcludesSelf(t *testing.T) {
	existing := []Keyed{{ID: 1, Value: "a@x.com"}}

	assert.False(t, Unique(existing, 0, true, "taken")("a@x.com").IsValid)
	assert.False(t, Unique(existing, 0, true, "taken")("A@X.com").IsValid)
	assert.True(t, Unique(existing, 1, true, "taken")("a@x.com").IsValid)
	assert.True(t, Unique(existing, 0, false, "taken")("A@X.com").IsValid)
	assert.True(t, Unique(existing, 0, true, "taken")("").IsValid)
}

func TestFormValidatorFirstFailurePerField(t *testing.T) {
	calls := 0
	counting := func(string) Result { calls++; return pass() }
	fv := NewFormValidator().
		AddRule("name", Required, MinLength(5), counting).
		AddRule("email", Email).
		AddRule("phone", Phone)

	rep := fv.Validate(map[string]string{"name": "", "email": "nope", "phone": "+57 300 123 4567"})
	assert.False(t, rep.IsValid)
	assert.Equal(t, map[string]string{"name": MsgRequired, "email": MsgInvalidEmail}, rep.Errors)
	assert.Zero(t, calls, "rules after the first failure are skipped")

	var verr *Error
	require.ErrorAs(t, rep.Err(), &verr)
	assert.Equal(t, "validation failed: email: invalid email format; name: this field is required", verr.Error())

	ok := fv.Validate(map[string]string{"name": "Carmen", "email": "", "phone": ""})
	assert.True(t, ok.IsValid)
	assert.Empty(t, ok.Errors)
	assert.NoError(t, ok.Err())
	assert.Equal(t, 1, calls)
}

func TestStudentRules(t *testing.T) {
	students := []model.Student{{ID: 1, Name: "Ana", Email: "a@x.com", Course: "ingles-basico", Level: "A1", EnrollmentDate: "2024-01-01"}}
	courses := []model.Course{{ID: 1, Code: "FRA-101", Level: "B1"}, {ID: 2, Code: "DEU-201"}}

	fresh := model.Student{Name: "Bea", Email: "a@x.com", Course: "ingles-basico", Level: "A1", EnrollmentDate: "2024-01-01"}
	rep := Student(fresh, students, courses, now)
	assert.Equal(t, map[string]string{"email": MsgStudentEmailTaken}, rep.Errors)

	self := students[0]
	assert.True(t, Student(self, students, courses, now).IsValid)

	tests := []struct {
		name  string
		edit  func(*model.Student)
		field string
		msg   string
	}{
		{"level outside catalog course", func(s *model.Student) { s.Level = "C1" }, "level", MsgLevelForCourse},
		{"unknown course", func(s *model.Student) { s.Course = "latin" }, "course", MsgUnknownCourse},
		{"course code with its level", func(s *model.Student) { s.Course, s.Level = "FRA-101", "B1" }, "", ""},
		{"course code wrong level", func(s *model.Student) { s.Course, s.Level = "FRA-101", "A1" }, "level", MsgLevelForCourse},
		{"course without level accepts any", func(s *model.Student) { s.Course, s.Level = "DEU-201", "TOEFL" }, "", ""},
		{"future enrollment", func(s *model.Student) { s.EnrollmentDate = "2024-03-16" }, "enrollmentDate", MsgFutureDate},
		{"bad phone", func(s *model.Student) { s.Phone = "123" }, "phone", MsgInvalidPhone},
		{"short name", func(s *model.Student) { s.Name = "A" }, "name", "minimum 2 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := self
			tt.edit(&s)
			rep := Student(s, students, courses, now)
			if tt.field == "" {
				assert.True(t, rep.IsValid, rep.Errors)
				return
			}
			assert.Equal(t, tt.msg, rep.Errors[tt.field])
		})
	}
}

func TestStudentRulesCollectAllFields(t *testing.T) {
	rep := Student(model.Student{}, nil, nil, now)
	assert.False(t, rep.IsValid)
	assert.Equal(t, MsgRequired, rep.Errors["name"])
	assert.Equal(t, MsgRequired, rep.Errors["email"])
	assert.Equal(t, MsgRequired, rep.Errors["course"])
	assert.Equal(t, MsgRequired, rep.Errors["level"])
	assert.Equal(t, MsgDateRequired, rep.Errors["enrollmentDate"])
	assert.NotContains(t, rep.Errors, "phone")
}

func TestCourseRules(t *testing.T) {
	instructors := []model.Instructor{{ID: 7, FirstName: "Laura", LastName: "Pérez"}}
	existing := []model.Course{{ID: 1, Code: "ENG-101"}}
	c := model.Course{Code: "fren-1a", Name: "Francés I", Language: "French", Level: "A1", Duration: 12,
		Schedule: "Mon 18:00", Capacity: model.DefaultCapacity, Status: model.CoursePlanned, InstructorID: 7}

	assert.True(t, Course(c, existing, instructors).IsValid)

	dup := c
	dup.Code = "eng-101"
	assert.Equal(t, MsgCourseCodeTaken, Course(dup, existing, instructors).Errors["code"])

	dup.ID = 1
	assert.True(t, Course(dup, existing, instructors).IsValid, "editing a course keeps its own code")

	bad := c
	bad.InstructorID = 99
	bad.Duration = 0
	bad.Status = "paused"
	rep := Course(bad, existing, instructors)
	assert.Equal(t, MsgUnknownInstructor, rep.Errors["instructorId"])
	assert.Equal(t, "must be between 1 and 520", rep.Errors["duration"])
	assert.Equal(t, MsgInvalidOption, rep.Errors["status"])

	unassigned := c
	unassigned.InstructorID = 0
	assert.True(t, Course(unassigned, existing, nil).IsValid)
}

func TestInstructorRules(t *testing.T) {
	existing := []model.Instructor{{ID: 1, Email: "laura@academy.co", EmployeeID: "EMP-001"}}
	in := model.Instructor{
		FirstName: "Pedro", LastName: "Gómez", Email: "pedro@academy.co", EmployeeID: "EMP-002",
		Status: model.InstructorOnVacation, HireDate: "2020-08-01",
		Specialties: []model.Specialty{{Language: "English", ProficiencyLevel: "C2", YearsExperience: 8, TeachingLevels: []string{"B1", "TOEFL"}}},
	}
	assert.True(t, Instructor(in, existing, now).IsValid)

	none := in
	none.Specialties = nil
	assert.Equal(t, MsgNoSpecialty, Instructor(none, existing, now).Errors["specialties"])

	bad := in
	bad.EmployeeID = "emp-001"
	bad.Email = "LAURA@academy.co"
	bad.Specialties = []model.Specialty{{Language: "", ProficiencyLevel: "TOEFL", TeachingLevels: []string{"Z9"}}}
	rep := Instructor(bad, existing, now)
	assert.Equal(t, MsgEmployeeIDTaken, rep.Errors["employeeId"])
	assert.Equal(t, MsgInstructorEmailTaken, rep.Errors["email"])
	assert.Equal(t, MsgRequired, rep.Errors["specialties[0].language"])
	assert.Equal(t, MsgInvalidOption, rep.Errors["specialties[0].proficiencyLevel"])
	assert.Equal(t, MsgInvalidOption, rep.Errors["specialties[0].teachingLevels[0]"])
}

func TestAttendanceRules(t *testing.T) {
	students := []model.Student{{ID: 3}}
	r := model.AttendanceRecord{StudentID: 3, Date: "2024-03-15", Status: model.StatusLate, Time: "08:10"}
	assert.True(t, Attendance(r, students, now).IsValid)

	r.StudentID = 4
	r.Status = "sick"
	r.Time = "8h"
	r.Date = "2024-04-01"
	rep := Attendance(r, students, now)
	assert.Equal(t, map[string]string{
		"studentId": MsgUnknownStudent,
		"status":    MsgInvalidOption,
		"time":      MsgInvalidTime,
		"date":      MsgFutureDate,
	}, rep.Errors)

	r.StudentID = 0
	assert.Equal(t, MsgRequired, Attendance(r, students, now).Errors["studentId"])
}

func TestSettingsRules(t *testing.T) {
	assert.True(t, Settings(model.DefaultSettings()).IsValid)
	rep := Settings(model.Settings{Theme: "blue", Language: "es", PageSize: 0})
	assert.Equal(t, MsgInvalidOption, rep.Errors["theme"])
	assert.Contains(t, rep.Errors, "pageSize")
}
