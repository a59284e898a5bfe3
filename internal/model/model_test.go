package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogLookups(t *testing.T) {
	custom := []Course{
		{Code: "FRA-101", Name: "Francés I", Level: "A1"},
		{Code: "ITA-101", Name: "Italiano I"},
	}

	assert.Equal(t, "Inglés Básico", CourseName("ingles-basico", custom))
	assert.Equal(t, "Francés I", CourseName("FRA-101", custom))
	assert.Equal(t, "latin", CourseName("latin", custom))

	assert.Equal(t, []string{"TOEFL"}, LevelsFor("toefl-prep", nil))
	assert.Equal(t, []string{"A1"}, LevelsFor("FRA-101", custom))
	assert.Equal(t, AllLevels, LevelsFor("ITA-101", custom))
	assert.Nil(t, LevelsFor("latin", custom))
	assert.Len(t, AllLevels, 7)
}

func TestInstructorHelpers(t *testing.T) {
	in := Instructor{FirstName: "Lucía", LastName: "Pardo", Specialties: []Specialty{
		{Language: "Inglés"}, {Language: "Francés"}, {Language: "Inglés"}, {},
	}}
	assert.Equal(t, "Lucía Pardo", in.FullName())
	assert.Equal(t, "Pardo", Instructor{LastName: "Pardo"}.FullName())
	assert.Equal(t, []string{"Inglés", "Francés"}, in.Languages())
}

func TestStatusAndDates(t *testing.T) {
	assert.True(t, StatusLate.Valid())
	assert.False(t, AttendanceStatus("Present").Valid())

	d, ok := AttendanceRecord{Date: "2024-02-29"}.Day()
	assert.True(t, ok)
	assert.Equal(t, "2024-02-29", FormatDate(d))

	_, ok = ParseDate("2023-02-29")
	assert.False(t, ok)

	seed := SampleStudents()
	assert.Len(t, seed, 5)
	for _, s := range seed {
		assert.Contains(t, LevelsFor(s.Course, nil), s.Level, s.Name)
	}
}
