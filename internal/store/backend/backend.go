// Package backend picks a store implementation from a database connection string.
package backend

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/roomrelay/internal/store"
	"github.com/vovakirdan/roomrelay/internal/store/postgres"
	"github.com/vovakirdan/roomrelay/internal/store/sqlite"
)

// Kind names a storage backend.
type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// Detect reports which backend serves dsn and the DSN that backend expects.
// postgres:// and postgresql:// URLs go to Postgres; everything else is a SQLite path,
// optionally prefixed with sqlite:// or sqlite3://.
func Detect(dsn string) (Kind, string) {
	lower := strings.ToLower(dsn)
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return KindPostgres, dsn
	case strings.HasPrefix(lower, "sqlite3://"):
		return KindSQLite, dsn[len("sqlite3://"):]
	case strings.HasPrefix(lower, "sqlite://"):
		return KindSQLite, dsn[len("sqlite://"):]
	default:
		return KindSQLite, dsn
	}
}

// Open connects to the backend selected by dsn.
func Open(dsn string) (store.Store, Kind, error) {
	kind, target := Detect(dsn)
	if target == "" {
		return nil, kind, fmt.Errorf("empty database connection string")
	}

	switch kind {
	case KindPostgres:
		st, err := postgres.New(target)
		if err != nil {
			return nil, kind, err
		}
		return st, kind, nil
	default:
		st, err := sqlite.New(target)
		if err != nil {
			return nil, kind, err
		}
		return st, kind, nil
	}
}
