package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/entities"
)

func TestNewDatabase_SQLite(t *testing.T) {
	db, err := NewDatabase(config.Database{
		Driver: config.DatabaseDriverSQLite,
		Path:   filepath.Join(t.TempDir(), "library.db"),
	})
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.DB.Migrator().HasTable(&entities.Book{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.AuditEvent{}))
	assert.True(t, db.DB.Migrator().HasColumn(&entities.Book{}, "last_checked_out_at"))
}

func TestNewDatabase_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Database
		want string
	}{
		{"postgres without dsn", config.Database{Driver: config.DatabaseDriverPostgres}, "DATABASE_DSN is required"},
		{"unknown driver", config.Database{Driver: "oracle"}, "unsupported database driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDatabase(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
