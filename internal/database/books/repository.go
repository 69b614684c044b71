// Package books provides database operations for the books table.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(ctx, 123)
//
// Inside a transaction, bind the repository to the transaction handle:
//
//	err := database.Transaction(ctx, func(tx *gorm.DB) error {
//		return repo.WithTx(tx).SetCheckedOut(ctx, id, true)
//	})
package books

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository that runs its queries on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListBooks returns every book ordered by title.
func (r *Repository) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("title ASC").Find(&books).Error
	return books, err
}

// ListCheckedOutBooks returns books currently lent out, ordered by title.
func (r *Repository) ListCheckedOutBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Where("checked_out = ?", true).Order("title ASC").Find(&books).Error
	return books, err
}

// ListAvailableBooks returns books that can be lent, ordered by title.
func (r *Repository) ListAvailableBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Where("checked_out = ?", false).Order("title ASC").Find(&books).Error
	return books, err
}

// GetBookByID retrieves a book by its ID. Returns gorm.ErrRecordNotFound
// when no row matches.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook inserts a new book. New books are never checked out.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	book.CheckedOut = false
	return r.db.WithContext(ctx).Create(book).Error
}

// UpdateBookDetails overwrites the editable fields of a book. The
// checked_out flag is owned by the loan workflow and left untouched.
func (r *Repository) UpdateBookDetails(ctx context.Context, id uint, details entities.Book) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).
		Select("title", "author", "genre", "first_published").
		Updates(&entities.Book{
			Title:          details.Title,
			Author:         details.Author,
			Genre:          details.Genre,
			FirstPublished: details.FirstPublished,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetCheckedOut flips the availability flag of a book.
func (r *Repository) SetCheckedOut(ctx context.Context, id uint, checkedOut bool) error {
	result := r.db.WithContext(ctx).Model(&entities.Book{}).Where("id = ?", id).Update("checked_out", checkedOut)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountBooks returns the total number of books and how many are checked out.
func (r *Repository) CountBooks(ctx context.Context) (total, checkedOut int64, err error) {
	db := r.db.WithContext(ctx)
	if err = db.Model(&entities.Book{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = db.Model(&entities.Book{}).Where("checked_out = ?", true).Count(&checkedOut).Error; err != nil {
		return 0, 0, err
	}
	return total, checkedOut, nil
}
