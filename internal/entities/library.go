package entities

import (
	"time"
)

// DateLayout is the format every date is presented in.
const DateLayout = "01/02/2006"

type Book struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	Title          string `gorm:"index;size:512;not null" json:"title" form:"title" validate:"required"`
	Author         string `gorm:"size:256;not null" json:"author" form:"author" validate:"required"`
	Genre          string `gorm:"size:128;not null" json:"genre" form:"genre" validate:"required"`
	CheckedOut     bool   `gorm:"index;default:false" json:"checked_out"`
	FirstPublished string `gorm:"size:64" json:"first_published,omitempty" form:"first_published"`
}

func (Book) TableName() string {
	return "books"
}

type Patron struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"size:128;not null" json:"first_name" form:"first_name" validate:"required"`
	LastName  string `gorm:"index;size:128;not null" json:"last_name" form:"last_name" validate:"required"`
	Address   string `gorm:"size:512;not null" json:"address" form:"address" validate:"required"`
	Email     string `gorm:"size:255;not null" json:"email" form:"email" validate:"required,email"`
	// LibraryID is the patron-facing card number. Loans reference patrons
	// through it, not through ID.
	LibraryID string `gorm:"uniqueIndex;size:64;not null" json:"library_id" form:"library_id" validate:"required"`
	ZipID     int    `gorm:"not null" json:"zip_id" form:"zip_id" validate:"required"`
}

func (Patron) TableName() string {
	return "patrons"
}

// FullName returns "First Last".
func (p Patron) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Loan records a book lent to a patron. A loan is open while CheckedOut is
// true and ReturnedOn is nil.
type Loan struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"index;not null" json:"book_id" form:"book_id" validate:"required"`
	PatronID   string     `gorm:"index;size:64;not null" json:"patron_id" form:"patron_id" validate:"required"`
	LoanedOn   time.Time  `gorm:"not null" json:"loaned_on" form:"loaned_on" validate:"required"`
	ReturnBy   time.Time  `gorm:"index;not null" json:"return_by" form:"return_by" validate:"required"`
	CheckedOut bool       `gorm:"index;default:true" json:"checked_out"`
	ReturnedOn *time.Time `json:"returned_on,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Loan) TableName() string {
	return "loans"
}

// IsOpen reports whether the book is still out on this loan.
func (l Loan) IsOpen() bool {
	return l.CheckedOut && l.ReturnedOn == nil
}

// IsOverdue reports whether the loan is open and its return date has passed.
func (l Loan) IsOverdue(now time.Time) bool {
	return l.IsOpen() && l.ReturnBy.Before(now)
}

// FormatDate renders t as mm/dd/yyyy, or an empty string for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// FormatDatePtr is FormatDate for nullable columns.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

var dateLayouts = []string{DateLayout, "2006-01-02", "1/2/2006"}

// ParseDate accepts mm/dd/yyyy as well as the yyyy-mm-dd value sent by
// browser date inputs. The result is midnight UTC of that calendar day.
func ParseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateOf returns the calendar date of t (in t's location) as midnight UTC,
// the form every loan date is stored in.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
