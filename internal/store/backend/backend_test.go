package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		dsn      string
		kind     Kind
		expected string
	}{
		{"postgres://u:p@localhost:5432/chat", KindPostgres, "postgres://u:p@localhost:5432/chat"},
		{"postgresql://localhost/chat?sslmode=disable", KindPostgres, "postgresql://localhost/chat?sslmode=disable"},
		{"sqlite://data/relay.db", KindSQLite, "data/relay.db"},
		{"sqlite3://:memory:", KindSQLite, ":memory:"},
		{"roomrelay.db", KindSQLite, "roomrelay.db"},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			kind, target := Detect(tt.dsn)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.expected, target)
		})
	}
}

func TestOpenSQLiteMemory(t *testing.T) {
	st, kind, err := Open("sqlite://:memory:")
	require.NoError(t, err)
	defer st.Close()

	assert.Equal(t, KindSQLite, kind)
	rooms, err := st.ListRooms(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestOpenEmpty(t *testing.T) {
	_, _, err := Open("sqlite://")
	assert.Error(t, err)
}
