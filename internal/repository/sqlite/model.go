package sqlite

// User is a row of the users table
type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"`
}

// Task is a row of the tasks table. Nullable text columns are selected
// through COALESCE so they scan into plain strings.
type Task struct {
	ID          int64  `db:"id"`
	UserID      *int64 `db:"user_id"`
	Username    string `db:"username"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Priority    string `db:"priority"`
	Category    string `db:"category"`
	Location    string `db:"location"`
	Notes       string `db:"notes"`
	Notify      bool   `db:"notify"`
	Status      string `db:"status"`
	StartDate   string `db:"start_date"`
	DueDate     string `db:"due_date"`
	Completed   bool   `db:"completed"`
}

// Reward is a row of the rewards table
type Reward struct {
	UserID int64  `db:"user_id"`
	Exp    int    `db:"exp"`
	Level  int    `db:"level"`
	Avatar string `db:"avatar"`
}

// TaskFilter scopes task queries to one user. Dates are YYYY-MM-DD; empty
// strings leave the bound open.
type TaskFilter struct {
	UserID    int64
	Username  string
	Completed *bool
	Text      string
	From      string
	To        string
}

// StatusCount is one row of a GROUP BY status aggregate
type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// MonthCount is one row of a GROUP BY month aggregate
type MonthCount struct {
	Month string `db:"month"`
	Count int    `db:"count"`
}
