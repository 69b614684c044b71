// Package activity records what happened in the library: books and patrons
// added or edited, loans made, books returned and loans found overdue.
package activity

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/librarian/internal/entities"
)

// EventStore persists activity events.
type EventStore interface {
	LogEvent(ctx context.Context, event *entities.ActivityEvent) error
	GetRecentEvents(ctx context.Context, limit int) ([]entities.ActivityEvent, error)
	HasEvent(ctx context.Context, action entities.ActivityAction, entityType string, entityID uint) (bool, error)
	DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error)
}

const (
	EntityBook   = "book"
	EntityPatron = "patron"
	EntityLoan   = "loan"
)

// Service provides high-level activity logging.
type Service struct {
	store EventStore
	now   func() time.Time
}

// NewService creates a new activity service.
func NewService(store EventStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Record stores an event for the entity. A failure to store it is logged
// and otherwise ignored so the write that triggered it still succeeds.
func (s *Service) Record(ctx context.Context, action entities.ActivityAction, entityType string, entityID uint, description string, cause error) {
	event := &entities.ActivityEvent{
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entityType,
		EntityID:    &entityID,
		Status:      entities.ActivityStatusSuccess,
		CreatedAt:   s.now(),
	}
	if cause != nil {
		event.Status = entities.ActivityStatusFailed
		event.ErrorMsg = truncate(cause.Error(), 500)
	}

	if err := s.store.LogEvent(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"action":    action,
			"entity":    entityType,
			"entity_id": entityID,
		}).Errorf("Failed to log activity event: %v", err)
	}
}

// RecordOverdue stores a loan_overdue event unless the loan already has
// one. Reports whether a new event was written.
func (s *Service) RecordOverdue(ctx context.Context, loanID uint, description string) (bool, error) {
	seen, err := s.store.HasEvent(ctx, entities.ActivityLoanOverdue, EntityLoan, loanID)
	if err != nil {
		return false, fmt.Errorf("check overdue event for loan %d: %w", loanID, err)
	}
	if seen {
		return false, nil
	}

	event := &entities.ActivityEvent{
		Action:      entities.ActivityLoanOverdue,
		Description: truncate(description, 500),
		EntityType:  EntityLoan,
		EntityID:    &loanID,
		Status:      entities.ActivityStatusSuccess,
		CreatedAt:   s.now(),
	}
	if err := s.store.LogEvent(ctx, event); err != nil {
		return false, fmt.Errorf("log overdue event for loan %d: %w", loanID, err)
	}
	return true, nil
}

// Recent returns the newest events first.
func (s *Service) Recent(ctx context.Context, limit int) ([]entities.ActivityEvent, error) {
	return s.store.GetRecentEvents(ctx, limit)
}

// DeleteOldEvents removes events older than the retention period.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteOldEvents(ctx, s.now().Add(-retention))
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
