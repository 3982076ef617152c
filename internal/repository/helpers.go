package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/planpilot/internal/db"
)

// timeLayout is fixed-width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		// Rows written by other clients may use plain RFC 3339.
		return time.Parse(time.RFC3339Nano, s)
	}
	return t, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// nullableJSON encodes v as JSON text, or NULL when v is nil. The first
// encoding failure is kept in *errp.
func nullableJSON[T any](v *T, errp *error) any {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		if *errp == nil {
			*errp = err
		}
		return nil
	}
	return string(data)
}

// unmarshalNullable decodes a JSON text column; NULL yields nil.
func unmarshalNullable[T any](s sql.NullString, column string) (*T, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(s.String), &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", column, err)
	}
	return &v, nil
}

// queryer binds a DBTX to a dialect.
type queryer struct {
	db      db.DBTX
	dialect db.Dialect
}

func (q queryer) q(query string) string {
	return q.dialect.Rebind(query)
}
