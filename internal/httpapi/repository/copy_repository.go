package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

// CopyFilter narrows List results.
type CopyFilter struct {
	BookID    int64
	LibraryID int64
	Status    string
}

type CopyRepository interface {
	Create(ctx context.Context, copy *models.Copy) error
	GetByID(ctx context.Context, id int64) (*models.Copy, error)
	List(ctx context.Context, filter CopyFilter) ([]models.Copy, error)
	Update(ctx context.Context, copy *models.Copy) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	// UpdateStatusIf flips a copy's status only when it currently has the
	// expected value and reports whether the swap won. This is the
	// compare-and-swap that keeps two concurrent borrow attempts from both
	// observing "available".
	UpdateStatusIf(ctx context.Context, id int64, expected, status string) (bool, error)
	Delete(ctx context.Context, id int64) error
	CountByBook(ctx context.Context, bookID int64) (int64, error)
	FirstAvailableByISBN(ctx context.Context, isbn string) (*models.Copy, error)
}

type copyRepository struct {
	db *gorm.DB
}

func NewCopyRepository(db *gorm.DB) CopyRepository {
	return &copyRepository{db: db}
}

func (r *copyRepository) Create(ctx context.Context, copy *models.Copy) error {
	if err := r.db.WithContext(ctx).Create(copy).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *copyRepository) GetByID(ctx context.Context, id int64) (*models.Copy, error) {
	var copy models.Copy
	if err := r.db.WithContext(ctx).First(&copy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Copy not found")
		}
		return nil, apperr.Database(err)
	}
	return &copy, nil
}

func (r *copyRepository) List(ctx context.Context, filter CopyFilter) ([]models.Copy, error) {
	query := r.db.WithContext(ctx).Model(&models.Copy{})
	if filter.BookID != 0 {
		query = query.Where("book_id = ?", filter.BookID)
	}
	if filter.LibraryID != 0 {
		query = query.Where("library_id = ?", filter.LibraryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var copies []models.Copy
	if err := query.Preload("Book").Find(&copies).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return copies, nil
}

func (r *copyRepository) Update(ctx context.Context, copy *models.Copy) error {
	if err := r.db.WithContext(ctx).Save(copy).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *copyRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	result := r.db.WithContext(ctx).Model(&models.Copy{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return apperr.Database(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Copy not found")
	}
	return nil
}

func (r *copyRepository) UpdateStatusIf(ctx context.Context, id int64, expected, status string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Copy{}).
		Where("id = ? AND status = ?", id, expected).
		Update("status", status)
	if result.Error != nil {
		return false, apperr.Database(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *copyRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Copy{}, id)
	if result.Error != nil {
		return apperr.Database(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Copy not found")
	}
	return nil
}

func (r *copyRepository) CountByBook(ctx context.Context, bookID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Copy{}).
		Where("book_id = ?", bookID).
		Count(&count).Error; err != nil {
		return 0, apperr.Database(err)
	}
	return count, nil
}

func (r *copyRepository) FirstAvailableByISBN(ctx context.Context, isbn string) (*models.Copy, error) {
	var copy models.Copy
	err := r.db.WithContext(ctx).
		Joins("JOIN books ON books.id = copies.book_id").
		Where("books.isbn = ? AND copies.status = ?", isbn, models.CopyAvailable).
		First(&copy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("No available copy")
		}
		return nil, apperr.Database(err)
	}
	return &copy, nil
}
