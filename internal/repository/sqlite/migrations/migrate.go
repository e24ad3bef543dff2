package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	"work-tracker/internal/logging"
)

//go:embed *.sql
var migrationsFS embed.FS

// Migration represents a database migration. SQL migrations carry Up/Down
// text; Go migrations carry UpFn/DownFn.
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
	UpFn    func(tx *sql.Tx) error
	DownFn  func(tx *sql.Tx) error
}

var goMigrations = map[int]Migration{}

// RegisterGoMigration registers a migration implemented in Go. It is meant
// to be called from init and panics on a duplicate version.
func RegisterGoMigration(version int, up, down func(tx *sql.Tx) error) {
	if _, exists := goMigrations[version]; exists {
		panic(fmt.Sprintf("migration %d registered twice", version))
	}
	goMigrations[version] = Migration{
		Version: version,
		Name:    fmt.Sprintf("%06d_go", version),
		UpFn:    up,
		DownFn:  down,
	}
}

// RunMigrations executes all pending migrations in version order. A
// migration that failed part way leaves its row marked dirty and every
// later run refuses to continue until the row is inspected and removed.
func RunMigrations(db *sql.DB) error {
	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	dirty, err := getDirtyMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to check migration state: %w", err)
	}
	if len(dirty) > 0 {
		return fmt.Errorf("database is in a dirty state, failed migration(s): %v; fix the schema manually and delete the dirty rows from the migrations table", dirty)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
		logging.Debugf("applied migration %s\n", migration.Name)
	}

	return nil
}

func createMigrationsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		dirty BOOLEAN DEFAULT FALSE
	)`
	if _, err := db.Exec(query); err != nil {
		return err
	}

	// Tables created before the dirty flag existed
	hasDirty, err := hasColumn(db, "migrations", "dirty")
	if err != nil {
		return err
	}
	if !hasDirty {
		_, err = db.Exec("ALTER TABLE migrations ADD COLUMN dirty BOOLEAN DEFAULT FALSE")
	}
	return err
}

func loadMigrations() ([]Migration, error) {
	entries, err := migrationsFS.ReadDir(".")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]Migration)
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		version := extractVersion(entry.Name())
		if version == 0 {
			continue
		}

		upSQL, err := migrationsFS.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}

		downFile := strings.Replace(entry.Name(), ".up.sql", ".down.sql", 1)
		downSQL, err := migrationsFS.ReadFile(downFile)
		if err != nil {
			return nil, err
		}

		byVersion[version] = Migration{
			Version: version,
			Name:    strings.TrimSuffix(entry.Name(), ".up.sql"),
			Up:      string(upSQL),
			Down:    string(downSQL),
		}
	}

	for version, migration := range goMigrations {
		if _, exists := byVersion[version]; exists {
			return nil, fmt.Errorf("migration %d defined both as SQL and Go", version)
		}
		byVersion[version] = migration
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, migration := range byVersion {
		migrations = append(migrations, migration)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func getAppliedMigrations(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations WHERE dirty = FALSE OR dirty IS NULL")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func getDirtyMigrations(db *sql.DB) ([]int, error) {
	rows, err := db.Query("SELECT version FROM migrations WHERE dirty = TRUE ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dirty []int
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		dirty = append(dirty, version)
	}
	return dirty, rows.Err()
}

// applyMigration records the version as dirty, runs the migration in a
// transaction and clears the flag in that same transaction.
func applyMigration(db *sql.DB, migration Migration) error {
	if _, err := db.Exec("INSERT INTO migrations (version, dirty) VALUES (?, TRUE)", migration.Version); err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if migration.UpFn != nil {
		err = migration.UpFn(tx)
	} else {
		_, err = tx.Exec(migration.Up)
	}
	if err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Exec("UPDATE migrations SET dirty = FALSE, applied_at = CURRENT_TIMESTAMP WHERE version = ?", migration.Version); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

type queryer interface {
	Query(query string, args ...interface{}) (*sql.Rows, error)
}

// hasColumn reports whether table has a column named column
func hasColumn(q queryer, table, column string) (bool, error) {
	columns, err := tableColumns(q, table)
	if err != nil {
		return false, err
	}
	return columns[column], nil
}

func tableColumns(q queryer, table string) (map[string]bool, error) {
	rows, err := q.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}
	return columns, rows.Err()
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}
