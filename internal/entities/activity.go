package entities

import "time"

type ActivityAction string

const (
	ActivityBookCreated   ActivityAction = "book_created"
	ActivityBookUpdated   ActivityAction = "book_updated"
	ActivityPatronCreated ActivityAction = "patron_created"
	ActivityPatronUpdated ActivityAction = "patron_updated"
	ActivityLoanCreated   ActivityAction = "loan_created"
	ActivityBookReturned  ActivityAction = "book_returned"
	ActivityLoanOverdue   ActivityAction = "loan_overdue"
)

type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusFailed  ActivityStatus = "failed"
)

type ActivityEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Action      ActivityAction `gorm:"index;size:50" json:"action"`
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	EntityType  string         `gorm:"size:50" json:"entity_type"`  // "book", "patron", "loan"
	EntityID    *uint          `gorm:"index" json:"entity_id,omitempty"`
	Status      ActivityStatus `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (ActivityEvent) TableName() string {
	return "activity_events"
}
