// Package activity stores the library's activity log: every write made
// through the web UI and every overdue loan found by the background scan.
package activity

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an activity event to the database.
func (r *Repository) LogEvent(ctx context.Context, event *entities.ActivityEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(event).Error
}

// GetRecentEvents returns the newest events first, at most limit of them.
func (r *Repository) GetRecentEvents(ctx context.Context, limit int) ([]entities.ActivityEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []entities.ActivityEvent
	err := r.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// GetEventsByAction returns events of one kind, newest first.
func (r *Repository) GetEventsByAction(ctx context.Context, action entities.ActivityAction, limit int) ([]entities.ActivityEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	var events []entities.ActivityEvent
	err := r.db.WithContext(ctx).Where("action = ?", action).
		Order("created_at DESC, id DESC").Limit(limit).Find(&events).Error
	return events, err
}

// HasEvent reports whether an event with this action was already recorded
// for the entity.
func (r *Repository) HasEvent(ctx context.Context, action entities.ActivityAction, entityType string, entityID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.ActivityEvent{}).
		Where("action = ? AND entity_type = ? AND entity_id = ?", action, entityType, entityID).
		Count(&count).Error
	return count > 0, err
}

// DeleteOldEvents removes events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("created_at < ?", olderThan).Delete(&entities.ActivityEvent{})
	return result.RowsAffected, result.Error
}
