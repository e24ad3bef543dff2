package sqlite

import (
	"strings"
	"time"
)

// DateLayout is the on-disk format of start_date and due_date.
const DateLayout = "2006-01-02"

// FormatDateForDB formats t as YYYY-MM-DD, or "" for the zero time
func FormatDateForDB(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// NullIfEmpty maps "" to NULL so optional text columns stay unset
func NullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern wraps text for a substring LIKE match with ESCAPE '\'
func LikePattern(text string) string {
	return "%" + likeEscaper.Replace(text) + "%"
}

// boolColumn reads a legacy flag column that may hold NULL, 0/1 or text
// as 0 or 1.
func boolColumn(name string) string {
	return "(CASE WHEN " + name + " IS NULL OR " + name + " IN ('', '0', 0, 'false', 'False', 'no') THEN 0 ELSE 1 END)"
}
