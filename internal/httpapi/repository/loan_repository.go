package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

// LoanFilter narrows List results.
type LoanFilter struct {
	LibraryID int64
	ContactID int64
	Status    string
}

type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id int64) (*models.Loan, error)
	List(ctx context.Context, filter LoanFilter) ([]models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	CountActiveByCopy(ctx context.Context, copyID int64) (int64, error)
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *loanRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	var loan models.Loan
	if err := r.db.WithContext(ctx).First(&loan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Loan not found")
		}
		return nil, apperr.Database(err)
	}
	return &loan, nil
}

func (r *loanRepository) List(ctx context.Context, filter LoanFilter) ([]models.Loan, error) {
	query := r.db.WithContext(ctx).Model(&models.Loan{})
	if filter.LibraryID != 0 {
		query = query.Where("library_id = ?", filter.LibraryID)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var loans []models.Loan
	if err := query.
		Preload("Contact").
		Preload("Copy").
		Preload("Copy.Book").
		Order("loan_date DESC").
		Find(&loans).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return loans, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	if err := r.db.WithContext(ctx).Save(loan).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *loanRepository) CountActiveByCopy(ctx context.Context, copyID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Loan{}).
		Where("copy_id = ? AND status = ?", copyID, models.LoanActive).
		Count(&count).Error; err != nil {
		return 0, apperr.Database(err)
	}
	return count, nil
}
