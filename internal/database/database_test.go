package database

import (
	"path/filepath"
	"testing"

	"github.com/azh05/Recapsule/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		dbPath  string
		wantErr bool
	}{
		{
			name:    "in-memory database",
			dbPath:  ":memory:",
			wantErr: false,
		},
		{
			name:    "file database",
			dbPath:  filepath.Join(t.TempDir(), "recapsule.db"),
			wantErr: false,
		},
		{
			name:    "nested directory is created",
			dbPath:  filepath.Join(t.TempDir(), "data", "recapsule.db"),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Initialize(tt.dbPath, false)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, conn)
			assert.NoError(t, conn.HealthCheck())
			assert.NoError(t, conn.Close())
		})
	}
}

func TestHealthCheckAfterClose(t *testing.T) {
	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)

	require.NoError(t, conn.Close())
	assert.Error(t, conn.HealthCheck())
}

func TestHealthCheckNilDB(t *testing.T) {
	var conn *DB
	assert.Error(t, conn.HealthCheck())
}

func TestAutoMigrateModels(t *testing.T) {
	conn, err := Initialize(":memory:", false)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.AutoMigrate(&models.Episode{}, &models.Job{}))

	for _, table := range []string{"episodes", "jobs"} {
		var count int64
		err := conn.DB.Raw(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&count).Error
		assert.NoError(t, err)
		assert.Equal(t, int64(1), count, "expected table %s to exist", table)
	}
}
