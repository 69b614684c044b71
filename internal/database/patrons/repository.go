// Package patrons provides database operations for the patrons table.
//
// Patrons have two identifiers: the surrogate ID used in URLs and the
// LibraryID printed on the patron's card. Loans reference LibraryID, so
// GetPatronByLibraryID is the lookup used when joining loans to patrons.
package patrons

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/librarian/internal/entities"
)

// Repository handles all patron database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new patrons repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository that runs its queries on tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListPatrons returns all patrons ordered by last name.
func (r *Repository) ListPatrons(ctx context.Context) ([]entities.Patron, error) {
	var patrons []entities.Patron
	err := r.db.WithContext(ctx).Order("last_name ASC, first_name ASC").Find(&patrons).Error
	return patrons, err
}

// GetPatronByID retrieves a patron by surrogate ID.
func (r *Repository) GetPatronByID(ctx context.Context, id uint) (*entities.Patron, error) {
	var patron entities.Patron
	err := r.db.WithContext(ctx).First(&patron, id).Error
	if err != nil {
		return nil, err
	}
	return &patron, nil
}

// GetPatronByLibraryID retrieves a patron by card number.
func (r *Repository) GetPatronByLibraryID(ctx context.Context, libraryID string) (*entities.Patron, error) {
	var patron entities.Patron
	err := r.db.WithContext(ctx).Where("library_id = ?", libraryID).First(&patron).Error
	if err != nil {
		return nil, err
	}
	return &patron, nil
}

// LibraryIDTaken reports whether another patron already holds libraryID.
// Pass excludeID = 0 when creating.
func (r *Repository) LibraryIDTaken(ctx context.Context, libraryID string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&entities.Patron{}).Where("library_id = ?", libraryID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreatePatron inserts a new patron.
func (r *Repository) CreatePatron(ctx context.Context, patron *entities.Patron) error {
	return r.db.WithContext(ctx).Create(patron).Error
}

// UpdatePatronDetails overwrites every editable patron field.
func (r *Repository) UpdatePatronDetails(ctx context.Context, id uint, details entities.Patron) error {
	result := r.db.WithContext(ctx).Model(&entities.Patron{}).Where("id = ?", id).
		Select("first_name", "last_name", "address", "email", "library_id", "zip_id").
		Updates(&entities.Patron{
			FirstName: details.FirstName,
			LastName:  details.LastName,
			Address:   details.Address,
			Email:     details.Email,
			LibraryID: details.LibraryID,
			ZipID:     details.ZipID,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountPatrons returns the number of registered patrons.
func (r *Repository) CountPatrons(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Patron{}).Count(&count).Error
	return count, err
}
