// Package loans provides database operations for the loans table.
//
// A loan is open while checked_out is true and returned_on is NULL. Loans
// join to books through book_id (books.id) and to patrons through
// patron_id (patrons.library_id).
package loans

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

const openLoanCondition = "checked_out = ? AND returned_on IS NULL"

// Repository handles all loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository that runs its queries on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListLoans returns every loan, most recently loaned first.
func (r *Repository) ListLoans(ctx context.Context) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).Order("loaned_on DESC, id DESC").Find(&loans).Error
	return loans, err
}

// ListOpenLoans returns loans whose book has not come back yet, most
// recently loaned first.
func (r *Repository) ListOpenLoans(ctx context.Context) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).Where(openLoanCondition, true).
		Order("loaned_on DESC, id DESC").Find(&loans).Error
	return loans, err
}

// ListOverdueLoans returns open loans with return_by before now, most
// recently loaned first.
func (r *Repository) ListOverdueLoans(ctx context.Context, now time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).Where(openLoanCondition, true).
		Where("return_by < ?", now.UTC()).
		Order("loaned_on DESC, id DESC").Find(&loans).Error
	return loans, err
}

// CountOverdueLoans counts open loans with return_by before now.
func (r *Repository) CountOverdueLoans(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Loan{}).Where(openLoanCondition, true).
		Where("return_by < ?", now.UTC()).Count(&count).Error
	return count, err
}

// ListLoansForBook returns the loan history of a book, oldest first.
func (r *Repository) ListLoansForBook(ctx context.Context, bookID uint) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).
		Order("loaned_on ASC, id ASC").Find(&loans).Error
	return loans, err
}

// ListLoansForPatron returns the loans of a patron by card number, newest first.
func (r *Repository) ListLoansForPatron(ctx context.Context, libraryID string) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := r.db.WithContext(ctx).Where("patron_id = ?", libraryID).
		Order("loaned_on DESC, id DESC").Find(&loans).Error
	return loans, err
}

// FindOpenLoanForBook returns the open loan of a book, or
// gorm.ErrRecordNotFound when the book is on the shelf.
func (r *Repository) FindOpenLoanForBook(ctx context.Context, bookID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Where(openLoanCondition, true).
		Order("loaned_on DESC, id DESC").First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CreateLoan inserts an open loan.
func (r *Repository) CreateLoan(ctx context.Context, loan *entities.Loan) error {
	loan.CheckedOut = true
	loan.ReturnedOn = nil
	return r.db.WithContext(ctx).Create(loan).Error
}

// CloseLoan marks a loan returned on the given date.
func (r *Repository) CloseLoan(ctx context.Context, id uint, returnedOn time.Time) error {
	result := r.db.WithContext(ctx).Model(&entities.Loan{}).Where("id = ?", id).
		Updates(map[string]any{
			"checked_out": false,
			"returned_on": returnedOn.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReassignPatron moves every loan from one card number to another. Used
// when a patron's library id is edited so their history follows them.
func (r *Repository) ReassignPatron(ctx context.Context, fromLibraryID, toLibraryID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entities.Loan{}).Where("patron_id = ?", fromLibraryID).
		Update("patron_id", toLibraryID)
	return result.RowsAffected, result.Error
}
