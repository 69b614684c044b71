package activity

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	activityRepo "github.com/mrlokans/librarian/internal/database/activity"
	"github.com/mrlokans/librarian/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "activity.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.ActivityEvent{})
	require.NoError(t, err)

	return NewService(activityRepo.NewRepository(db)), db
}

type failingStore struct {
	EventStore
}

func (failingStore) LogEvent(context.Context, *entities.ActivityEvent) error {
	return errors.New("disk full")
}

func TestService_Record(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	t.Run("successful write", func(t *testing.T) {
		svc.Record(ctx, entities.ActivityBookCreated, EntityBook, 3, "Added Dune by Frank Herbert", nil)

		var event entities.ActivityEvent
		err := db.Where("action = ?", entities.ActivityBookCreated).First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.ActivityStatusSuccess, event.Status)
		assert.Equal(t, EntityBook, event.EntityType)
		require.NotNil(t, event.EntityID)
		assert.Equal(t, uint(3), *event.EntityID)
	})

	t.Run("failed write is recorded as failed", func(t *testing.T) {
		svc.Record(ctx, entities.ActivityBookReturned, EntityBook, 4, "Return of Emma", errors.New("no open loan"))

		var event entities.ActivityEvent
		err := db.Where("action = ?", entities.ActivityBookReturned).First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.ActivityStatusFailed, event.Status)
		assert.Equal(t, "no open loan", event.ErrorMsg)
	})
}

func TestService_Record_StoreFailureDoesNotPanic(t *testing.T) {
	svc := NewService(failingStore{})

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), entities.ActivityLoanCreated, EntityLoan, 1, "Loan", nil)
	})
}

func TestService_RecordOverdue_Deduplicates(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	created, err := svc.RecordOverdue(ctx, 9, "Dune is overdue")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.RecordOverdue(ctx, 9, "Dune is overdue")
	require.NoError(t, err)
	assert.False(t, created)

	var count int64
	db.Model(&entities.ActivityEvent{}).Where("action = ?", entities.ActivityLoanOverdue).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, db.Create(&entities.ActivityEvent{
		Action:    entities.ActivityBookCreated,
		Status:    entities.ActivityStatusSuccess,
		CreatedAt: now.AddDate(0, 0, -40),
	}).Error)
	svc.Record(ctx, entities.ActivityBookCreated, EntityBook, 1, "fresh", nil)

	deleted, err := svc.DeleteOldEvents(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, err := svc.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "fresh", events[0].Description)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 20)
	assert.Equal(t, "xxxxxxx...", truncate(long, 10))
}
