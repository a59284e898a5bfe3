package model

// CatalogCourses maps the built-in course keys to their display names.
var CatalogCourses = map[string]string{
	"ingles-basico":       "Inglés Básico",
	"ingles-intermedio":   "Inglés Intermedio",
	"ingles-avanzado":     "Inglés Avanzado",
	"ingles-conversacion": "Inglés Conversación",
	"toefl-prep":          "Preparación TOEFL",
}

// CatalogLevels maps the built-in course keys to the levels a student may hold in them.
var CatalogLevels = map[string][]string{
	"ingles-basico":       {"A1", "A2"},
	"ingles-intermedio":   {"B1", "B2"},
	"ingles-avanzado":     {"C1", "C2"},
	"ingles-conversacion": {"B1", "B2", "C1", "C2"},
	"toefl-prep":          {"TOEFL"},
}

// CEFRLevels are the Common European Framework proficiency tiers.
var CEFRLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// AllLevels is every level a student or course may carry.
var AllLevels = append(append([]string{}, CEFRLevels...), "TOEFL")

// CourseName resolves a course key to a display name, falling back to the key.
func CourseName(key string, courses []Course) string {
	if name, ok := CatalogCourses[key]; ok {
		return name
	}
	for _, c := range courses {
		if c.Code == key {
			return c.Name
		}
	}
	return key
}

// LevelsFor returns the levels valid for a course key, or nil if the key is unknown.
func LevelsFor(key string, courses []Course) []string {
	if levels, ok := CatalogLevels[key]; ok {
		return levels
	}
	for _, c := range courses {
		if c.Code != key {
			continue
		}
		if c.Level != "" {
			return []string{c.Level}
		}
		return AllLevels
	}
	return nil
}

// SampleStudents is the seed set written on the first read of an empty students collection.
func SampleStudents() []Student {
	return []Student{
		{ID: 1, Name: "Ana García", Email: "ana.garcia@email.com", Phone: "+57 300 123 4567", Course: "ingles-intermedio", Level: "B1", EnrollmentDate: "2024-01-15"},
		{ID: 2, Name: "Carlos Rodríguez", Email: "carlos.rodriguez@email.com", Phone: "+57 301 234 5678", Course: "ingles-basico", Level: "A2", EnrollmentDate: "2024-01-20"},
		{ID: 3, Name: "María López", Email: "maria.lopez@email.com", Phone: "+57 302 345 6789", Course: "ingles-avanzado", Level: "C1", EnrollmentDate: "2024-01-10"},
		{ID: 4, Name: "Luis Martínez", Email: "luis.martinez@email.com", Phone: "+57 303 456 7890", Course: "toefl-prep", Level: "TOEFL", EnrollmentDate: "2024-01-25"},
		{ID: 5, Name: "Carmen Silva", Email: "carmen.silva@email.com", Phone: "+57 304 567 8901", Course: "ingles-conversacion", Level: "B2", EnrollmentDate: "2024-02-01"},
	}
}
