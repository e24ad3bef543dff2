package migrations

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"work-tracker/internal/logging"
)

func init() {
	RegisterGoMigration(4, Up_000004_upgrade_legacy_tasks, Down_000004_upgrade_legacy_tasks)
}

// legacyTaskColumns are the columns of the current task model that older
// databases may lack, with the type used to add them.
var legacyTaskColumns = []struct {
	name    string
	colType string
}{
	{"user_id", "INTEGER"},
	{"username", "TEXT"},
	{"description", "TEXT"},
	{"priority", "TEXT"},
	{"category", "TEXT"},
	{"location", "TEXT"},
	{"notes", "TEXT"},
	{"notify", "INTEGER DEFAULT 0"},
	{"status", "TEXT DEFAULT 'Pending'"},
	{"start_date", "TEXT"},
	{"due_date", "TEXT"},
	{"completed", "INTEGER DEFAULT 0"},
}

// Up_000004_upgrade_legacy_tasks brings a tasks table written by an older
// release up to the current model:
// - adds every missing column
// - backfills user_id from username where the user exists
// - rewrites start/due dates stored in other layouts as YYYY-MM-DD
func Up_000004_upgrade_legacy_tasks(tx *sql.Tx) error {
	columns, err := tableColumns(tx, "tasks")
	if err != nil {
		return fmt.Errorf("failed to inspect tasks table: %w", err)
	}

	for _, col := range legacyTaskColumns {
		if columns[col.name] {
			continue
		}
		if _, err := tx.Exec(fmt.Sprintf("ALTER TABLE tasks ADD COLUMN %s %s", col.name, col.colType)); err != nil {
			return fmt.Errorf("failed to add column %s: %w", col.name, err)
		}
		logging.Debugf("added missing tasks column %s\n", col.name)
	}

	if _, err := tx.Exec(`
		UPDATE tasks
		SET user_id = (SELECT users.id FROM users WHERE users.username = tasks.username)
		WHERE user_id IS NULL AND username IS NOT NULL`); err != nil {
		return fmt.Errorf("failed to backfill user_id: %w", err)
	}

	return normalizeTaskDates(tx)
}

// Down_000004_upgrade_legacy_tasks keeps the added columns; the current
// schema created by migration 2 already has them.
func Down_000004_upgrade_legacy_tasks(tx *sql.Tx) error {
	return nil
}

func normalizeTaskDates(tx *sql.Tx) error {
	// Read all rows into memory first to avoid locking issues
	type entry struct {
		id        int64
		startDate sql.NullString
		dueDate   sql.NullString
	}
	var entries []entry

	rows, err := tx.Query("SELECT id, start_date, due_date FROM tasks")
	if err != nil {
		return fmt.Errorf("failed to query tasks: %w", err)
	}
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.startDate, &e.dueDate); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan task row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("error iterating tasks: %w", err)
	}
	rows.Close()

	startStmt, err := tx.Prepare("UPDATE tasks SET start_date = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare start_date update statement: %w", err)
	}
	defer startStmt.Close()

	dueStmt, err := tx.Prepare("UPDATE tasks SET due_date = ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare due_date update statement: %w", err)
	}
	defer dueStmt.Close()

	updates, skipped := 0, 0
	for _, e := range entries {
		for _, field := range []struct {
			value sql.NullString
			stmt  *sql.Stmt
		}{{e.startDate, startStmt}, {e.dueDate, dueStmt}} {
			if !field.value.Valid || field.value.String == "" {
				continue
			}
			normalized, err := normalizeDate(field.value.String)
			if err != nil {
				// Unparseable dates are left as they are
				logging.Debugf("task %d: %v\n", e.id, err)
				skipped++
				continue
			}
			if normalized == field.value.String {
				continue
			}
			if _, err := field.stmt.Exec(normalized, e.id); err != nil {
				return fmt.Errorf("failed to update date for task %d: %w", e.id, err)
			}
			updates++
		}
	}

	logging.Debugf("task date normalization: %d rows, %d values rewritten, %d skipped\n", len(entries), updates, skipped)
	return nil
}

var legacyDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006/01/02",
	"01/02/2006",
	"1/2/06",
	"02-01-2006",
}

// normalizeDate parses the date layouts older releases wrote and formats
// the result as YYYY-MM-DD.
func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("could not parse date format: %s", s)
}
