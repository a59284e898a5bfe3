package validation

import (
	"sort"
	"strings"
)

// Report is the whole-entity outcome: every field evaluated, first failure per field kept.
type Report struct {
	IsValid bool              `json:"isValid"`
	Errors  map[string]string `json:"errors"`
}

// Err returns nil for a valid report and an *Error otherwise.
func (r Report) Err() error {
	if r.IsValid {
		return nil
	}
	return &Error{Fields: r.Errors}
}

// Error carries field-level validation failures back to the caller.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// FormValidator evaluates ordered rules per field.
type FormValidator struct {
	fields []string
	rules  map[string][]Rule
}

// NewFormValidator creates an empty rule set.
func NewFormValidator() *FormValidator {
	return &FormValidator{rules: make(map[string][]Rule)}
}

// AddRule appends rules for field, evaluated in the given order.
func (f *FormValidator) AddRule(field string, rules ...Rule) *FormValidator {
	if _, ok := f.rules[field]; !ok {
		f.fields = append(f.fields, field)
	}
	f.rules[field] = append(f.rules[field], rules...)
	return f
}

// Validate runs every field's rules against values and collects the first failure of each.
func (f *FormValidator) Validate(values map[string]string) Report {
	rep := Report{IsValid: true, Errors: map[string]string{}}
	for _, field := range f.fields {
		for _, rule := range f.rules[field] {
			if res := rule(values[field]); !res.IsValid {
				rep.Errors[field] = res.Message
				rep.IsValid = false
				break
			}
		}
	}
	return rep
}

// Merge folds other's errors into r.
func (r Report) Merge(other Report) Report {
	if other.IsValid {
		return r
	}
	out := Report{IsValid: false, Errors: make(map[string]string, len(r.Errors)+len(other.Errors))}
	for k, v := range r.Errors {
		out.Errors[k] = v
	}
	for k, v := range other.Errors {
		if _, ok := out.Errors[k]; !ok {
			out.Errors[k] = v
		}
	}
	return out
}

// Invalid builds a failing report for a single field.
func Invalid(field, msg string) Report {
	return Report{Errors: map[string]string{field: msg}}
}
