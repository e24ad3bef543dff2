package validation

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"work-tracker/internal/config"
	"work-tracker/internal/domain"
)

var (
	ageShorthandRegex = regexp.MustCompile(`^(\d+)(d|w|mo|y)$`)
	dateRegex         = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Validator provides common validation utilities
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance using default limits
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{config: cfg}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a trimmed string's rune count is within [min, max]
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := len([]rune(strings.TrimSpace(s)))
	return length >= min && length <= max
}

// IsValidTitleLength checks a task title against the configured limits
func (v *Validator) IsValidTitleLength(title string) bool {
	return v.IsValidStringLength(title, v.titleMinLength(), v.titleMaxLength())
}

// HasNoControlCharacters rejects newlines, tabs and other control runes
func (v *Validator) HasNoControlCharacters(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// IsValidUsername allows printable characters without whitespace
func (v *Validator) IsValidUsername(username string) bool {
	if username == "" {
		return false
	}
	for _, r := range username {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// IsValidDate checks for a real calendar date in YYYY-MM-DD form
func (v *Validator) IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(domain.DateLayout, s)
	return err == nil
}

// IsValidDateRange checks that start is not after end. Zero times are open
// bounds.
func (v *Validator) IsValidDateRange(start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return true
	}
	return !start.After(end)
}

// IsValidStatus checks the status against the known statuses, ignoring case
func (v *Validator) IsValidStatus(status string) bool {
	_, ok := domain.ParseStatus(status)
	return ok
}

// IsValidID checks if a row ID is valid (positive)
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsValidAgeShorthand checks durations like 30d, 2w, 6mo, 1y
func (v *Validator) IsValidAgeShorthand(shorthand string) bool {
	matches := ageShorthandRegex.FindStringSubmatch(shorthand)
	if matches == nil {
		return false
	}
	value, err := strconv.Atoi(matches[1])
	return err == nil && value > 0
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}

func (v *Validator) titleMinLength() int {
	if v.config != nil {
		return v.config.Validation.TitleMinLength
	}
	return 1
}

func (v *Validator) titleMaxLength() int {
	if v.config != nil {
		return v.config.Validation.TitleMaxLength
	}
	return 255
}

func (v *Validator) usernameMaxLength() int {
	if v.config != nil {
		return v.config.Validation.UsernameMaxLength
	}
	return 64
}

func (v *Validator) passwordMinLength() int {
	if v.config != nil {
		return v.config.Security.PasswordMinLength
	}
	return 1
}
