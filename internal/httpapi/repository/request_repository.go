package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

// BorrowRequestRepository stores the lender-side records.
type BorrowRequestRepository interface {
	Create(ctx context.Context, req *models.BorrowRequest) error
	GetByID(ctx context.Context, id string) (*models.BorrowRequest, error)
	List(ctx context.Context) ([]models.BorrowRequest, error)
	Update(ctx context.Context, req *models.BorrowRequest) error
	Delete(ctx context.Context, id string) error
}

type borrowRequestRepository struct {
	db *gorm.DB
}

func NewBorrowRequestRepository(db *gorm.DB) BorrowRequestRepository {
	return &borrowRequestRepository{db: db}
}

func (r *borrowRequestRepository) Create(ctx context.Context, req *models.BorrowRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *borrowRequestRepository) GetByID(ctx context.Context, id string) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Borrow request not found")
		}
		return nil, apperr.Database(err)
	}
	return &req, nil
}

func (r *borrowRequestRepository) List(ctx context.Context) ([]models.BorrowRequest, error) {
	var reqs []models.BorrowRequest
	if err := r.db.WithContext(ctx).
		Preload("FromPeer").
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return reqs, nil
}

func (r *borrowRequestRepository) Update(ctx context.Context, req *models.BorrowRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *borrowRequestRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BorrowRequest{})
	if result.Error != nil {
		return apperr.Database(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Borrow request not found")
	}
	return nil
}

// OutgoingRequestRepository stores the borrower-side records.
type OutgoingRequestRepository interface {
	Create(ctx context.Context, req *models.OutgoingBorrowRequest) error
	GetByID(ctx context.Context, id string) (*models.OutgoingBorrowRequest, error)
	List(ctx context.Context) ([]models.OutgoingBorrowRequest, error)
	Update(ctx context.Context, req *models.OutgoingBorrowRequest) error
}

type outgoingRequestRepository struct {
	db *gorm.DB
}

func NewOutgoingRequestRepository(db *gorm.DB) OutgoingRequestRepository {
	return &outgoingRequestRepository{db: db}
}

func (r *outgoingRequestRepository) Create(ctx context.Context, req *models.OutgoingBorrowRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *outgoingRequestRepository) GetByID(ctx context.Context, id string) (*models.OutgoingBorrowRequest, error) {
	var req models.OutgoingBorrowRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Outgoing request not found")
		}
		return nil, apperr.Database(err)
	}
	return &req, nil
}

func (r *outgoingRequestRepository) List(ctx context.Context) ([]models.OutgoingBorrowRequest, error) {
	var reqs []models.OutgoingBorrowRequest
	if err := r.db.WithContext(ctx).
		Preload("ToPeer").
		Order("created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return reqs, nil
}

func (r *outgoingRequestRepository) Update(ctx context.Context, req *models.OutgoingBorrowRequest) error {
	if err := r.db.WithContext(ctx).Save(req).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}
