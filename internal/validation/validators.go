// Package validation holds the field rules and per-entity rule sets used before any write.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"academy/internal/model"
)

var (
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex      = regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`)
	courseCodeRegex = regexp.MustCompile(`^[A-Z]{2,4}-[A-Z0-9]{2,3}$`)

	validate = validator.New()
)

// Messages surfaced by the rules.
const (
	MsgRequired      = "this field is required"
	MsgInvalidEmail  = "invalid email format"
	MsgInvalidPhone  = "invalid phone format"
	MsgInvalidOption = "invalid option"
	MsgDateRequired  = "date is required"
	MsgInvalidDate   = "invalid date"
	MsgFutureDate    = "date cannot be in the future"
	MsgNumber        = "number is required"
	MsgInvalidNumber = "must be a valid number"
	MsgInvalidTime   = "time must be HH:MM"
	MsgCodeTooShort  = "minimum 3 characters"
	MsgCodeFormat    = "code must look like ENG-101"
)

// Result is the outcome of one rule on one value.
type Result struct {
	IsValid bool   `json:"isValid"`
	Message string `json:"message"`
}

// Rule checks a single form value.
type Rule func(value string) Result

func pass() Result { return Result{IsValid: true} }

func fail(msg string) Result { return Result{Message: msg} }

// Required is valid iff the value is non-empty after trimming.
func Required(value string) Result {
	if strings.TrimSpace(value) == "" {
		return fail(MsgRequired)
	}
	return pass()
}

// Email accepts an empty value; anything else must look like local@domain.tld.
func Email(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" || emailRegex.MatchString(v) {
		return pass()
	}
	return fail(MsgInvalidEmail)
}

// Phone accepts an empty value; anything else needs ten or more digits, spaces, dashes or parens.
func Phone(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" || phoneRegex.MatchString(v) {
		return pass()
	}
	return fail(MsgInvalidPhone)
}

// MinLength requires at least n characters after trimming.
func MinLength(n int) Rule {
	return func(value string) Result {
		v := strings.TrimSpace(value)
		if v == "" {
			return fail(MsgRequired)
		}
		if len([]rune(v)) < n {
			return fail(fmt.Sprintf("minimum %d characters", n))
		}
		return pass()
	}
}

// MaxLength allows at most n characters after trimming.
func MaxLength(n int) Rule {
	return func(value string) Result {
		if len([]rune(strings.TrimSpace(value))) > n {
			return fail(fmt.Sprintf("maximum %d characters", n))
		}
		return pass()
	}
}

// OneOf requires the value to be one of options.
func OneOf(options ...string) Rule {
	tag := "oneof=" + strings.Join(options, " ")
	simple := len(options) > 0
	for _, o := range options {
		if o == "" || strings.ContainsAny(o, " \t'") {
			simple = false
		}
	}
	return func(value string) Result {
		if simple {
			if validate.Var(value, tag) != nil {
				return fail(MsgInvalidOption)
			}
			return pass()
		}
		for _, o := range options {
			if value == o {
				return pass()
			}
		}
		return fail(MsgInvalidOption)
	}
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp.
func ParseDate(value string) (time.Time, bool) {
	v := strings.TrimSpace(value)
	if d, ok := model.ParseDate(v); ok {
		return d, true
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Date requires a parseable date.
func Date(value string) Result {
	if strings.TrimSpace(value) == "" {
		return fail(MsgDateRequired)
	}
	if _, ok := ParseDate(value); !ok {
		return fail(MsgInvalidDate)
	}
	return pass()
}

// PastDate requires a parseable date that is not after the end of now's calendar day.
func PastDate(now time.Time) Rule {
	today := now.Format(model.DateLayout)
	return func(value string) Result {
		if r := Date(value); !r.IsValid {
			return r
		}
		d, _ := ParseDate(value)
		if d.Format(model.DateLayout) > today {
			return fail(MsgFutureDate)
		}
		return pass()
	}
}

// Number requires a finite number.
func Number(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return fail(MsgNumber)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fail(MsgInvalidNumber)
	}
	return pass()
}

// Range requires a finite number within [min, max].
func Range(min, max float64) Rule {
	return func(value string) Result {
		if r := Number(value); !r.IsValid {
			return r
		}
		f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if f < min || f > max {
			return fail(fmt.Sprintf("must be between %s and %s", formatNumber(min), formatNumber(max)))
		}
		return pass()
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Clock accepts an empty value or an HH:MM time.
func Clock(value string) Result {
	v := strings.TrimSpace(value)
	if v == "" {
		return pass()
	}
	if validate.Var(v, "datetime="+model.ClockLayout) != nil {
		return fail(MsgInvalidTime)
	}
	return pass()
}

// CourseCode uppercases the value, then requires at least 3 characters and the
// AAA-999 shape (2-4 letters, a hyphen, 2-3 letters or digits).
func CourseCode(value string) Result {
	v := NormalizeCode(value)
	switch {
	case v == "":
		return fail(MsgRequired)
	case len(v) < 3:
		return fail(MsgCodeTooShort)
	case !courseCodeRegex.MatchString(v):
		return fail(MsgCodeFormat)
	}
	return pass()
}

// NormalizeCode trims and uppercases a course code or employee id.
func NormalizeCode(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

// Keyed is an existing entity's id with the value of the field being checked.
type Keyed struct {
	ID    int64
	Value string
}

// Unique fails when another entity (any id but selfID) already holds the value.
// Empty values pass; pair it with Required when the field is mandatory.
func Unique(existing []Keyed, selfID int64, foldCase bool, msg string) Rule {
	return func(value string) Result {
		v := strings.TrimSpace(value)
		if v == "" {
			return pass()
		}
		for _, e := range existing {
			if e.ID == selfID {
				continue
			}
			other := strings.TrimSpace(e.Value)
			if other == v || (foldCase && strings.EqualFold(other, v)) {
				return fail(msg)
			}
		}
		return pass()
	}
}
