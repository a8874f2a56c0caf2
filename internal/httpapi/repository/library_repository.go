package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

type LibraryRepository interface {
	Create(ctx context.Context, library *models.Library) error
	GetByID(ctx context.Context, id int64) (*models.Library, error)
	List(ctx context.Context) ([]models.Library, error)
}

type libraryRepository struct {
	db *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) LibraryRepository {
	return &libraryRepository{db: db}
}

func (r *libraryRepository) Create(ctx context.Context, library *models.Library) error {
	if err := r.db.WithContext(ctx).Create(library).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *libraryRepository) GetByID(ctx context.Context, id int64) (*models.Library, error) {
	var library models.Library
	if err := r.db.WithContext(ctx).First(&library, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Library not found")
		}
		return nil, apperr.Database(err)
	}
	return &library, nil
}

func (r *libraryRepository) List(ctx context.Context) ([]models.Library, error) {
	var libraries []models.Library
	if err := r.db.WithContext(ctx).Order("id").Find(&libraries).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return libraries, nil
}
