// Package validation implements field-level validation run client-side of
// any remote call: a failing field blocks submission before the store or
// the auth service is touched.
package validation

import (
	"fmt"
	"regexp"
)

// Rule describes the constraints for one field. Zero values disable the
// corresponding check.
type Rule struct {
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Min       *float64
	Max       *float64
	Custom    func(value interface{}) bool
	Message   string
}

// Rules maps field names to their constraints.
type Rules map[string]Rule

// Errors maps field names to their first failing message.
type Errors map[string]string

// Float returns a pointer for use as a Rule bound.
func Float(v float64) *float64 { return &v }

// ValidateField checks a single value against a rule, returning the failure
// message or "".
func ValidateField(value interface{}, rule Rule) string {
	if rule.Required && isEmpty(value) {
		return defaultMsg(rule, "This field is required")
	}

	// String checks apply to empty strings too; an optional field that was
	// never supplied is nil and skips them.
	if s, ok := value.(string); ok {
		if rule.MinLength > 0 && len(s) < rule.MinLength {
			return defaultMsg(rule, fmt.Sprintf("Minimum length is %d characters", rule.MinLength))
		}
		if rule.MaxLength > 0 && len(s) > rule.MaxLength {
			return defaultMsg(rule, fmt.Sprintf("Maximum length is %d characters", rule.MaxLength))
		}
		if rule.Pattern != nil && !rule.Pattern.MatchString(s) {
			return defaultMsg(rule, "Invalid format")
		}
	}

	if n, ok := asNumber(value); ok {
		if rule.Min != nil && n < *rule.Min {
			return defaultMsg(rule, fmt.Sprintf("Minimum value is %g", *rule.Min))
		}
		if rule.Max != nil && n > *rule.Max {
			return defaultMsg(rule, fmt.Sprintf("Maximum value is %g", *rule.Max))
		}
	}

	if rule.Custom != nil && !rule.Custom(value) {
		return defaultMsg(rule, "Invalid value")
	}
	return ""
}

// ValidateMap checks every field named in rules against the corresponding
// value in data. Absent fields are validated as nil, so Required still
// applies.
func ValidateMap(data map[string]interface{}, rules Rules) Errors {
	errs := Errors{}
	for field, rule := range rules {
		if msg := ValidateField(data[field], rule); msg != "" {
			errs[field] = msg
		}
	}
	return errs
}

func defaultMsg(rule Rule, fallback string) string {
	if rule.Message != "" {
		return rule.Message
	}
	return fallback
}

func isEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}

func asNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	default:
		return 0, false
	}
}

// Common rules shared by the sign-up, sign-in and profile forms.
var (
	EmailRule = Rule{
		Required: true,
		Pattern:  regexp.MustCompile(`(?i)^[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}$`),
		Message:  "Please enter a valid email address",
	}
	PasswordRule = Rule{
		Required:  true,
		MinLength: 8,
		Custom:    strongPassword,
		Message:   "Password must contain at least 8 characters, including uppercase, lowercase, number and special character",
	}
	NameRule = Rule{
		Required:  true,
		MinLength: 2,
		MaxLength: 50,
		Pattern:   regexp.MustCompile(`^[a-zA-Z\s\-']+$`),
		Message:   "Please enter a valid name",
	}
	PhoneRule = Rule{
		Pattern: regexp.MustCompile(`^\+?[\d\s\-()]{10,}$`),
		Message: "Please enter a valid phone number",
	}
)

// strongPassword requires lowercase, uppercase, digit and special character.
// Go's regexp has no lookahead, so the four classes are checked separately.
func strongPassword(value interface{}) bool {
	s, ok := value.(string)
	if !ok || len(s) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r == '@' || r == '$' || r == '!' || r == '%' || r == '*' || r == '?' || r == '&':
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}
