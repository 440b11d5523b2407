package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"carestay-backend/config"
	"carestay-backend/internal/model"
)

func TestDialector(t *testing.T) {
	testCases := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{driver: "sqlite", name: "sqlite"},
		{driver: "", name: "sqlite"},
		{driver: "postgres", name: "postgres"},
		{driver: "mysql", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.driver, func(t *testing.T) {
			d, err := Dialector(&config.DatabaseConfig{Driver: tc.driver, DSN: "x"})
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.name, d.Name())
		})
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, LogLevel("silent"))
	assert.Equal(t, logger.Error, LogLevel("ERROR"))
	assert.Equal(t, logger.Info, LogLevel("debug"))
	assert.Equal(t, logger.Warn, LogLevel("whatever"))
}

func TestInit_SQLiteMigrates(t *testing.T) {
	gormDB, err := Init(&config.DatabaseConfig{Driver: "sqlite", DSN: "file::memory:", LogLevel: "silent"}, zap.NewNop())
	require.NoError(t, err)

	for _, table := range []any{&model.Snapshot{}, &model.PushSubscription{}, &model.SubscriptionSector{}} {
		assert.True(t, gormDB.Migrator().HasTable(table))
	}
}
