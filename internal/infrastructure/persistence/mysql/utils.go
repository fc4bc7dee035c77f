package mysql

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// isDuplicateError reports a unique index violation on MySQL (1062) or SQLite.
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

const likeEscape = "!"

// keySeparator joins the fields of a search key; no search term can match
// across it.
const keySeparator = "\x1f"

// searchKey folds the searchable fields of a row into the search_key column.
// Folding happens in Go because SQLite's LOWER() only maps ASCII letters and
// MySQL's depends on the column collation.
func searchKey(fields ...string) string {
	return strings.ToLower(strings.Join(fields, keySeparator))
}

// containsPattern builds a lower-cased LIKE pattern matching term anywhere in
// a search key. LIKE wildcards in term are matched literally; use it with
// ESCAPE '!'.
func containsPattern(term string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
