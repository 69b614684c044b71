package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/entities"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_MigratesSchema(t *testing.T) {
	db := setupTestDB(t)

	assert.Equal(t, config.DriverSQLite, db.Driver)
	for _, table := range []string{"books", "patrons", "loans", "activity_events"} {
		assert.True(t, db.DB.Migrator().HasTable(table), "table %s should exist", table)
	}
	assert.NoError(t, db.Ping(context.Background()))
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.Database{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpen_PostgresRequiresDSN(t *testing.T) {
	_, err := Open(config.Database{Driver: config.DriverPostgres})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_DSN")
}

func TestTransaction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			return tx.Create(&entities.Book{Title: "Dune", Author: "Frank Herbert", Genre: "SF"}).Error
		})
		require.NoError(t, err)

		var count int64
		db.DB.Model(&entities.Book{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			if err := tx.Create(&entities.Book{Title: "Emma", Author: "Jane Austen", Genre: "Classic"}).Error; err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int64
		db.DB.Model(&entities.Book{}).Where("title = ?", "Emma").Count(&count)
		assert.Zero(t, count)
	})
}

func TestGormLogLevel(t *testing.T) {
	assert.NotEqual(t, gormLogLevel("silent"), gormLogLevel("info"))
	assert.Equal(t, gormLogLevel("warn"), gormLogLevel("unknown"))
}
