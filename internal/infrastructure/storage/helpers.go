package storage

import (
	"database/sql"
	"strings"
)

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func columnList(columns []string) string {
	return strings.Join(columns, ", ")
}
