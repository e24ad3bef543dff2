package domain

import (
	"strings"
	"time"
)

// DateLayout is the storage and display format for task dates.
const DateLayout = "2006-01-02"

// TaskStatus is the free-text workflow state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusOverdue    TaskStatus = "Overdue"
)

// Statuses lists the known statuses in display order.
func Statuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusInProgress, StatusCompleted, StatusOverdue}
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (TaskStatus, bool) {
	s = strings.TrimSpace(s)
	for _, status := range Statuses() {
		if strings.EqualFold(s, string(status)) {
			return status, true
		}
	}
	return "", false
}

// Is reports whether the status equals other ignoring case.
func (s TaskStatus) Is(other TaskStatus) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(other))
}

// Task represents a task in the domain model.
// This is a pure domain model without database-specific concerns.
// Zero StartDate or DueDate means the date is not set.
// StoredStartDate and StoredDueDate hold column text that did not parse as a
// date, so that a save without a new date writes it back unchanged.
type Task struct {
	ID          int64
	UserID      *int64
	Username    string
	Title       string
	Description string
	Priority    string
	Category    string
	Location    string
	Notes       string
	Notify      bool
	Status      TaskStatus
	StartDate   time.Time
	DueDate     time.Time
	Completed   bool

	StoredStartDate string
	StoredDueDate   string
}

// NewTask creates a pending task owned by user.
func NewTask(user User, title string, start, due time.Time) Task {
	userID := user.ID
	return Task{
		UserID:    &userID,
		Username:  user.Username,
		Title:     title,
		Status:    StatusPending,
		StartDate: start,
		DueDate:   due,
	}
}

// IsValid checks if the task has valid data.
func (t Task) IsValid() bool {
	if strings.TrimSpace(t.Title) == "" {
		return false
	}
	if t.HasDueDate() && !t.StartDate.IsZero() && t.StartDate.After(t.DueDate) {
		return false
	}
	return true
}

// HasDueDate reports whether a due date is set.
func (t Task) HasDueDate() bool {
	return !t.DueDate.IsZero()
}

// IsOverdue reports whether the task is open and its due date is before today.
func (t Task) IsOverdue(today time.Time) bool {
	if t.Completed || !t.HasDueDate() {
		return false
	}
	return truncateDay(t.DueDate).Before(truncateDay(today))
}

// IsDueToday reports whether the task is open and due on today's date.
func (t Task) IsDueToday(today time.Time) bool {
	if t.Completed || !t.HasDueDate() {
		return false
	}
	return truncateDay(t.DueDate).Equal(truncateDay(today))
}

// OwnedBy reports whether the task belongs to user. Legacy rows without a
// user id are matched on username.
func (t Task) OwnedBy(user User) bool {
	if t.UserID != nil {
		return *t.UserID == user.ID
	}
	return t.Username == user.Username
}

// Complete marks the task completed.
func (t Task) Complete() Task {
	t.Completed = true
	t.Status = StatusCompleted
	return t
}

// Reopen marks the task pending again.
func (t Task) Reopen() Task {
	t.Completed = false
	t.Status = StatusPending
	return t
}

// String returns the task title for display purposes.
func (t Task) String() string {
	return t.Title
}

// FormatDate formats t with DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a DateLayout string. Empty or malformed input yields the
// zero time.
func ParseDate(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// storedDate returns the text to persist for a date column. A set date wins;
// otherwise unparsed legacy text is preserved.
func storedDate(t time.Time, stored string) string {
	if !t.IsZero() {
		return FormatDate(t)
	}
	return stored
}

// unparsedDate returns s when it is non-empty but not a DateLayout date
func unparsedDate(s string) string {
	if strings.TrimSpace(s) == "" || !ParseDate(s).IsZero() {
		return ""
	}
	return s
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
