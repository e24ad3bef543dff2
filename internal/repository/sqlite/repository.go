package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"work-tracker/internal/errors"
	"work-tracker/internal/logging"
	"work-tracker/internal/repository/sqlite/migrations"

	_ "modernc.org/sqlite"
)

// Repository defines the interface for database operations
type Repository interface {
	// Users
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id int64) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdatePassword(ctx context.Context, username string, hash string) error

	// Tasks
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
	UpdateTask(ctx context.Context, task *Task) error
	UpdateTaskWithReward(ctx context.Context, task *Task, reward *Reward) error
	SetTaskCompletion(ctx context.Context, id int64, completed bool) error
	DeleteTask(ctx context.Context, id int64) error
	FindTasksByTitle(ctx context.Context, userID int64, username, title, startDate string) ([]*Task, error)
	DeleteCompletedBefore(ctx context.Context, userID int64, username, cutoff string) (int64, error)
	MarkOverdue(ctx context.Context, today string) (int64, error)

	// Rewards
	GetReward(ctx context.Context, userID int64) (*Reward, error)
	UpsertReward(ctx context.Context, reward *Reward) error

	// Statistics
	CountTasksByStatus(ctx context.Context, filter TaskFilter) ([]StatusCount, error)
	CountTasksByMonth(ctx context.Context, filter TaskFilter) ([]MonthCount, error)

	// Utility
	Close() error
}

// Options tunes a repository. Zero timeouts disable the per-call deadline.
type Options struct {
	QueryTimeout time.Duration
	WriteTimeout time.Duration
}

// SQLiteRepository implements the Repository interface
type SQLiteRepository struct {
	db   *sqlx.DB
	opts Options
}

var taskColumns = `id, user_id, COALESCE(username, '') AS username, COALESCE(title, '') AS title,
	COALESCE(description, '') AS description, COALESCE(priority, '') AS priority,
	COALESCE(category, '') AS category, COALESCE(location, '') AS location,
	COALESCE(notes, '') AS notes, ` + boolColumn("notify") + ` AS notify,
	COALESCE(status, 'Pending') AS status, COALESCE(start_date, '') AS start_date,
	COALESCE(due_date, '') AS due_date, ` + boolColumn("completed") + ` AS completed`

// ownerClause matches rows owned by user id, or legacy rows that only
// carry the username.
const ownerClause = "(user_id = ? OR (user_id IS NULL AND username = ?))"

// New creates a new SQLite repository instance with no per-call timeouts
func New(dbPath string) (*SQLiteRepository, error) {
	return NewWithOptions(dbPath, Options{})
}

// NewWithOptions opens dbPath, enables foreign keys and runs migrations
func NewWithOptions(dbPath string, opts Options) (*SQLiteRepository, error) {
	db, err := sqlx.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, errors.NewDatabaseError("open database", err)
	}
	// A single connection keeps :memory: databases alive and serializes
	// writers the way SQLite wants anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("enable foreign keys", err)
	}

	if err := migrations.RunMigrations(db.DB); err != nil {
		db.Close()
		return nil, errors.NewDatabaseError("run migrations", err)
	}

	logging.Debugf("opened database %s\n", dbPath)
	return &SQLiteRepository{db: db, opts: opts}, nil
}

func dsn(dbPath string) string {
	if dbPath == ":memory:" {
		return dbPath
	}
	return "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.QueryTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.QueryTimeout)
	}
	return context.WithCancel(ctx)
}

func (r *SQLiteRepository) writeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.opts.WriteTimeout > 0 {
		return context.WithTimeout(ctx, r.opts.WriteTimeout)
	}
	return context.WithCancel(ctx)
}

// CreateUser inserts a user; a taken username is a conflict
func (r *SQLiteRepository) CreateUser(ctx context.Context, user *User) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `INSERT INTO users (username, password) VALUES (?, ?)`
	id, err := ExecuteWithLastInsertID(ctx, r.db, query, "user", user.Username, user.Username, user.Password)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetUser retrieves a user by ID
func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT id, username, password FROM users WHERE id = ?`
	return QuerySingle[User](ctx, r.db, query, "user", idString(id), id)
}

// GetUserByUsername retrieves a user by exact username
func (r *SQLiteRepository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT id, username, password FROM users WHERE username = ?`
	return QuerySingle[User](ctx, r.db, query, "user", username, username)
}

// ListUsers retrieves all users ordered by username
func (r *SQLiteRepository) ListUsers(ctx context.Context) ([]*User, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT id, username, password FROM users ORDER BY username ASC`
	return QueryMultiple[User](ctx, r.db, query, "users")
}

// UpdatePassword replaces the stored hash for username
func (r *SQLiteRepository) UpdatePassword(ctx context.Context, username string, hash string) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `UPDATE users SET password = ? WHERE username = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "user", username, hash, username)
}

// CreateTask inserts a task. Empty optional fields are stored as NULL.
func (r *SQLiteRepository) CreateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `
	INSERT INTO tasks (user_id, username, title, description, priority, category, location,
		notes, notify, status, start_date, due_date, completed)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	id, err := ExecuteWithLastInsertID(ctx, r.db, query, "task", task.Title, taskArgs(task)...)
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

// GetTask retrieves a task by ID
func (r *SQLiteRepository) GetTask(ctx context.Context, id int64) (*Task, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	return QuerySingle[Task](ctx, r.db, query, "task", idString(id), id)
}

// ListTasks returns the filter's tasks, dated tasks first by due date,
// then undated ones, ties broken by ID
func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	where, args := filterWhere(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + where + `
	ORDER BY (due_date IS NULL OR due_date = ''), due_date ASC, id ASC`

	return QueryMultiple[Task](ctx, r.db, query, "tasks", args...)
}

// UpdateTask overwrites every mutable column of task.ID
func (r *SQLiteRepository) UpdateTask(ctx context.Context, task *Task) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	return updateTask(ctx, r.db, task)
}

// UpdateTaskWithReward saves task and reward in one transaction, so a
// completion is never stored without its EXP
func (r *SQLiteRepository) UpdateTaskWithReward(ctx context.Context, task *Task, reward *Reward) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return HandleDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	if err := updateTask(ctx, tx, task); err != nil {
		return err
	}
	if err := upsertReward(ctx, tx, reward); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return HandleDatabaseError("commit transaction", err)
	}
	return nil
}

func updateTask(ctx context.Context, db sqlx.ExecerContext, task *Task) error {
	query := `
	UPDATE tasks
	SET user_id = ?, username = ?, title = ?, description = ?, priority = ?, category = ?,
		location = ?, notes = ?, notify = ?, status = ?, start_date = ?, due_date = ?, completed = ?
	WHERE id = ?`

	args := append(taskArgs(task), task.ID)
	return ExecuteWithRowsAffected(ctx, db, query, "task", idString(task.ID), args...)
}

// SetTaskCompletion flips the completed flag and sets status to Completed
// or Pending to match
func (r *SQLiteRepository) SetTaskCompletion(ctx context.Context, id int64, completed bool) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	status := "Pending"
	if completed {
		status = "Completed"
	}
	query := `UPDATE tasks SET completed = ?, status = ? WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "task", idString(id), completed, status, id)
}

// DeleteTask deletes a task by ID
func (r *SQLiteRepository) DeleteTask(ctx context.Context, id int64) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `DELETE FROM tasks WHERE id = ?`
	return ExecuteWithRowsAffected(ctx, r.db, query, "task", idString(id), id)
}

// FindTasksByTitle returns the user's tasks with exactly title, newest
// first. A non-empty startDate further requires start_date to match.
func (r *SQLiteRepository) FindTasksByTitle(ctx context.Context, userID int64, username, title, startDate string) ([]*Task, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + ownerClause + ` AND title = ?`
	args := []interface{}{userID, username, title}
	if startDate != "" {
		query += ` AND start_date = ?`
		args = append(args, startDate)
	}
	query += ` ORDER BY id DESC`

	return QueryMultiple[Task](ctx, r.db, query, "tasks", args...)
}

// DeleteCompletedBefore removes the user's completed tasks due before
// cutoff (YYYY-MM-DD) and returns how many were removed
func (r *SQLiteRepository) DeleteCompletedBefore(ctx context.Context, userID int64, username, cutoff string) (int64, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `DELETE FROM tasks WHERE ` + ownerClause + ` AND ` + boolColumn("completed") + ` = 1
	AND due_date IS NOT NULL AND due_date <> '' AND due_date < ?`
	return ExecuteCount(ctx, r.db, "delete completed tasks", query, userID, username, cutoff)
}

// MarkOverdue sets status Overdue on open Pending/In Progress tasks due
// before today, for all users
func (r *SQLiteRepository) MarkOverdue(ctx context.Context, today string) (int64, error) {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	query := `UPDATE tasks SET status = 'Overdue'
	WHERE ` + boolColumn("completed") + ` = 0
	AND due_date IS NOT NULL AND due_date <> '' AND due_date < ?
	AND LOWER(COALESCE(status, 'pending')) IN ('pending', 'in progress')`
	return ExecuteCount(ctx, r.db, "mark overdue tasks", query, today)
}

// GetReward retrieves the reward row for a user
func (r *SQLiteRepository) GetReward(ctx context.Context, userID int64) (*Reward, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	query := `SELECT user_id, COALESCE(exp, 0) AS exp, COALESCE(level, 1) AS level,
	COALESCE(avatar, '') AS avatar FROM rewards WHERE user_id = ?`
	return QuerySingle[Reward](ctx, r.db, query, "reward", idString(userID), userID)
}

// UpsertReward inserts or replaces the reward row for reward.UserID
func (r *SQLiteRepository) UpsertReward(ctx context.Context, reward *Reward) error {
	ctx, cancel := r.writeCtx(ctx)
	defer cancel()

	return upsertReward(ctx, r.db, reward)
}

func upsertReward(ctx context.Context, db sqlx.ExtContext, reward *Reward) error {
	query := `
	INSERT INTO rewards (user_id, exp, level, avatar) VALUES (:user_id, :exp, :level, :avatar)
	ON CONFLICT(user_id) DO UPDATE SET exp = excluded.exp, level = excluded.level, avatar = excluded.avatar`

	if _, err := sqlx.NamedExecContext(ctx, db, query, reward); err != nil {
		return HandleDatabaseError("upsert reward", err)
	}
	return nil
}

// CountTasksByStatus groups the filter's tasks by raw status text
func (r *SQLiteRepository) CountTasksByStatus(ctx context.Context, filter TaskFilter) ([]StatusCount, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	where, args := filterWhere(filter)
	query := `SELECT COALESCE(status, 'Pending') AS status, COUNT(*) AS count
	FROM tasks WHERE ` + where + ` GROUP BY COALESCE(status, 'Pending') ORDER BY status`

	var counts []StatusCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, HandleDatabaseError("count tasks by status", err)
	}
	return counts, nil
}

// CountTasksByMonth groups the filter's tasks by the YYYY-MM of their
// start date. Rows without a parseable start date are skipped.
func (r *SQLiteRepository) CountTasksByMonth(ctx context.Context, filter TaskFilter) ([]MonthCount, error) {
	ctx, cancel := r.readCtx(ctx)
	defer cancel()

	where, args := filterWhere(filter)
	query := `SELECT substr(start_date, 1, 7) AS month, COUNT(*) AS count
	FROM tasks WHERE ` + where + ` AND start_date GLOB '[0-9][0-9][0-9][0-9]-[0-9][0-9]-*'
	GROUP BY month ORDER BY month`

	var counts []MonthCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, HandleDatabaseError("count tasks by month", err)
	}
	return counts, nil
}

func taskArgs(task *Task) []interface{} {
	return []interface{}{
		task.UserID,
		NullIfEmpty(task.Username),
		task.Title,
		NullIfEmpty(task.Description),
		NullIfEmpty(task.Priority),
		NullIfEmpty(task.Category),
		NullIfEmpty(task.Location),
		NullIfEmpty(task.Notes),
		task.Notify,
		task.Status,
		NullIfEmpty(task.StartDate),
		NullIfEmpty(task.DueDate),
		task.Completed,
	}
}

func filterWhere(filter TaskFilter) (string, []interface{}) {
	conditions := []string{ownerClause}
	args := []interface{}{filter.UserID, filter.Username}

	if filter.Completed != nil {
		conditions = append(conditions, boolColumn("completed")+" = ?")
		args = append(args, *filter.Completed)
	}
	if filter.Text != "" {
		pattern := LikePattern(filter.Text)
		conditions = append(conditions, `(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if filter.From != "" {
		conditions = append(conditions, "start_date >= ?")
		args = append(args, filter.From)
	}
	if filter.To != "" {
		conditions = append(conditions, "due_date <= ?")
		args = append(args, filter.To)
	}

	return strings.Join(conditions, " AND "), args
}
