package persist

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carestay-backend/internal/model"
)

// A helper function to create a mock database connection.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func newSQLiteDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&model.Snapshot{}))
	return db
}

func TestGormSlot_LoadMissing(t *testing.T) {
	gormDB, mock := newMockDB(t)
	slot := NewGormSlot(gormDB, "")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "snapshots" WHERE slot_key = $1`)).
		WithArgs(DefaultKey, 1).
		WillReturnRows(sqlmock.NewRows([]string{"slot_key", "payload", "updated_at"}))

	_, err := slot.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSlot_LoadDatabaseError(t *testing.T) {
	gormDB, mock := newMockDB(t)
	slot := NewGormSlot(gormDB, "facility")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "snapshots"`)).
		WillReturnError(errors.New("connection reset"))

	_, err := slot.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSlot_SaveUpserts(t *testing.T) {
	gormDB, mock := newMockDB(t)
	slot := NewGormSlot(gormDB, "facility")
	payload := []byte(`{"rooms":[]}`)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "snapshots"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT ("slot_key") DO UPDATE SET`)).
		WithArgs("facility", payload, Any{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, slot.Save(context.Background(), payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSlot_SQLiteRoundTrip(t *testing.T) {
	db := newSQLiteDB(t)
	slot := NewGormSlot(db, DefaultKey)
	ctx := context.Background()

	_, err := slot.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, slot.Save(ctx, []byte("first")))
	require.NoError(t, slot.Save(ctx, []byte("second")))

	got, err := slot.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	var count int64
	db.Model(&model.Snapshot{}).Count(&count)
	assert.Equal(t, int64(1), count, "saving twice must overwrite the single slot")
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
