package domain

import "time"

// TaskFilter narrows task listings and statistics to one user.
type TaskFilter struct {
	UserID    int64
	Username  string
	Completed *bool
	// Text matches title, description or category.
	Text string
	// From and To bound StartDate and DueDate respectively. Zero means open.
	From time.Time
	To   time.Time
}

// ForUser returns a filter scoped to user.
func ForUser(user User) TaskFilter {
	return TaskFilter{UserID: user.ID, Username: user.Username}
}

// WithCompleted returns a copy of f restricted on the completed flag.
func (f TaskFilter) WithCompleted(completed bool) TaskFilter {
	f.Completed = &completed
	return f
}

// TaskStatistics summarizes a user's tasks.
type TaskStatistics struct {
	Total      int
	Completed  int
	InProgress int
	Overdue    int
	Pending    int
	ByStatus   map[TaskStatus]int
	ByMonth    []MonthCount
}

// MonthCount is the number of tasks starting in a YYYY-MM month.
type MonthCount struct {
	Month string
	Count int
}
