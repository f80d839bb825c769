package store

import (
	"database/sql"
	"time"
)

// Timestamps are stored as RFC 3339 text in UTC.
const timeLayout = time.RFC3339Nano

// orNull stores empty strings as NULL.
func orNull(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func formatTime(value time.Time) string { return value.UTC().Format(timeLayout) }

// parseTime also accepts SQLite's CURRENT_TIMESTAMP layout. Unparseable text
// yields the zero time.
func parseTime(value string) time.Time {
	for _, layout := range []string{timeLayout, time.DateTime} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseNullTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	if t := parseTime(value.String); !t.IsZero() {
		return &t
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}
