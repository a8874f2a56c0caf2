package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

// BookFilter narrows List results.
type BookFilter struct {
	ReadingStatus string
	Owned         *bool
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	List(ctx context.Context, filter BookFilter) ([]models.Book, error)
	Search(ctx context.Context, query string, limit int) ([]models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id int64) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, apperr.Database(err)
	}
	return &book, nil
}

func (r *bookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Where("isbn = ?", isbn).First(&book).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, apperr.Database(err)
	}
	return &book, nil
}

func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	query := r.db.WithContext(ctx).Model(&models.Book{})
	if filter.ReadingStatus != "" {
		query = query.Where("reading_status = ?", filter.ReadingStatus)
	}
	if filter.Owned != nil {
		query = query.Where("owned = ?", *filter.Owned)
	}

	var books []models.Book
	if err := query.Order("title").Find(&books).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return books, nil
}

func (r *bookRepository) Search(ctx context.Context, query string, limit int) ([]models.Book, error) {
	var books []models.Book
	pattern := "%" + query + "%"
	q := r.db.WithContext(ctx).
		Where("title LIKE ? OR author LIKE ? OR isbn = ?", pattern, pattern, query)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&books).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return books, nil
}

func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Save(book).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Book{}, id)
	if result.Error != nil {
		return apperr.Database(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Book not found")
	}
	return nil
}
