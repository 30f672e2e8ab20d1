package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFieldRequired(t *testing.T) {
	rule := Rule{Required: true}
	assert.Equal(t, "This field is required", ValidateField(nil, rule))
	assert.Equal(t, "This field is required", ValidateField("", rule))
	assert.Empty(t, ValidateField("value", rule))
}

func TestValidateFieldLengths(t *testing.T) {
	rule := Rule{MinLength: 2, MaxLength: 5}
	assert.Equal(t, "Minimum length is 2 characters", ValidateField("a", rule))
	assert.Equal(t, "Maximum length is 5 characters", ValidateField("abcdef", rule))
	assert.Empty(t, ValidateField("abc", rule))
	assert.Equal(t, "Minimum length is 2 characters", ValidateField("", rule),
		"an empty string is a supplied value and fails MinLength")
	assert.Empty(t, ValidateField(nil, rule), "an absent value skips string checks")
}

func TestValidateFieldPattern(t *testing.T) {
	rule := Rule{Pattern: regexp.MustCompile(`^\d+$`), Message: "Digits only"}
	assert.Equal(t, "Digits only", ValidateField("12a", rule))
	assert.Empty(t, ValidateField("123", rule))
	assert.Equal(t, "Digits only", ValidateField("", rule))
	assert.Empty(t, ValidateField(nil, rule), "an absent value skips the pattern")
}

func TestValidateFieldNumericBounds(t *testing.T) {
	rule := Rule{Min: Float(50), Max: Float(500)}
	assert.Equal(t, "Minimum value is 50", ValidateField(30, rule))
	assert.Equal(t, "Maximum value is 500", ValidateField(900.0, rule))
	assert.Empty(t, ValidateField(150, rule))
	assert.Empty(t, ValidateField(50, rule))
	assert.Empty(t, ValidateField(500, rule))
}

func TestValidateMapCollectsFirstFailurePerField(t *testing.T) {
	errs := ValidateMap(map[string]interface{}{
		"email": "nope",
	}, Rules{
		"email": EmailRule,
		"name":  NameRule,
	})

	assert.Equal(t, "Please enter a valid email address", errs["email"])
	assert.Equal(t, "Please enter a valid name", errs["name"])
}

func TestEmailRule(t *testing.T) {
	valid := []string{"ada@example.com", "a.b+c@sub.domain.org", "UPPER@EXAMPLE.COM"}
	for _, email := range valid {
		assert.Empty(t, ValidateField(email, EmailRule), email)
	}
	invalid := []string{"", "plain", "missing@tld", "@example.com", "a b@example.com"}
	for _, email := range invalid {
		assert.NotEmpty(t, ValidateField(email, EmailRule), email)
	}
}

func TestPasswordRule(t *testing.T) {
	assert.Empty(t, ValidateField("Str0ng@pass", PasswordRule))

	invalid := []string{
		"",
		"Sh0rt@",
		"alllowercase1@",
		"ALLUPPERCASE1@",
		"NoDigits@here",
		"NoSpecials123",
	}
	for _, password := range invalid {
		assert.Equal(t,
			"Password must contain at least 8 characters, including uppercase, lowercase, number and special character",
			ValidateField(password, PasswordRule), password)
	}
}

func TestNameRule(t *testing.T) {
	valid := []string{"Ada", "Mary-Jane O'Neil", "Jean Luc"}
	for _, name := range valid {
		assert.Empty(t, ValidateField(name, NameRule), name)
	}
	invalid := []string{"", "A", "Ada123", "Ada@Home"}
	for _, name := range invalid {
		assert.NotEmpty(t, ValidateField(name, NameRule), name)
	}
}

func TestPhoneRuleSkipsAbsentValue(t *testing.T) {
	assert.Empty(t, ValidateField(nil, PhoneRule))
	assert.Empty(t, ValidateField("+1 (555) 123-4567", PhoneRule))
	assert.NotEmpty(t, ValidateField("", PhoneRule))
	assert.NotEmpty(t, ValidateField("12345", PhoneRule))
	assert.NotEmpty(t, ValidateField("not-a-phone", PhoneRule))
}
