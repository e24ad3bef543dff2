package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"work-tracker/internal/errors"
	"work-tracker/internal/validation"
)

var ageRegex = regexp.MustCompile(`^(\d+)(d|w|mo|y)$`)

// timeServiceImpl implements TimeService
type timeServiceImpl struct {
	now           func() time.Time
	dateValidator *validation.DateValidator
}

// NewTimeService creates a new time service using the wall clock
func NewTimeService() TimeService {
	return NewTimeServiceWithClock(time.Now)
}

// NewTimeServiceWithClock creates a time service reading the time from now
func NewTimeServiceWithClock(now func() time.Time) TimeService {
	return &timeServiceImpl{
		now:           now,
		dateValidator: validation.NewDateValidator(),
	}
}

// Now returns the current instant
func (t *timeServiceImpl) Now() time.Time {
	return t.now()
}

// Today returns local midnight of the current day
func (t *timeServiceImpl) Today() time.Time {
	now := t.now().In(time.Local)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

// ParseDate parses a YYYY-MM-DD value. Empty input is the zero time.
func (t *timeServiceImpl) ParseDate(field, value string) (time.Time, error) {
	return t.dateValidator.ParseDate(field, value)
}

// ParseDateRange parses both ends and checks from <= to
func (t *timeServiceImpl) ParseDateRange(from, to string) (*DateRange, error) {
	ve := validation.NewValidationError()

	fromDate, err := t.ParseDate("from", from)
	ve.Merge("from", err)
	toDate, err := t.ParseDate("to", to)
	ve.Merge("to", err)
	if ve.HasErrors() {
		return nil, ve
	}

	if err := t.dateValidator.ValidateDateRange(fromDate, toDate); err != nil {
		return nil, err
	}
	return &DateRange{From: fromDate, To: toDate}, nil
}

// ParseAge converts shorthand like 30d, 2w, 6mo or 1y into a duration.
// Months are 30 days and years 365 days.
func (t *timeServiceImpl) ParseAge(shorthand string) (time.Duration, error) {
	shorthand = strings.ToLower(strings.TrimSpace(shorthand))
	matches := ageRegex.FindStringSubmatch(shorthand)
	if matches == nil {
		return 0, errors.NewValidationError("invalid age format, expected e.g. 30d, 2w, 6mo, 1y", nil)
	}

	n, err := strconv.Atoi(matches[1])
	if err != nil || n <= 0 {
		return 0, errors.NewValidationError("age must be a positive number", err)
	}

	day := 24 * time.Hour
	switch matches[2] {
	case "d":
		return time.Duration(n) * day, nil
	case "w":
		return time.Duration(n) * 7 * day, nil
	case "mo":
		return time.Duration(n) * 30 * day, nil
	default:
		return time.Duration(n) * 365 * day, nil
	}
}

// FormatDuration formats a duration into human-readable string
func (t *timeServiceImpl) FormatDuration(duration time.Duration) string {
	if duration < 0 {
		return "0m 0s"
	}

	hours := int(duration.Hours())
	minutes := int(duration.Minutes()) % 60
	seconds := int(duration.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
