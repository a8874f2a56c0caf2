package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/dto"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/repository"
)

const defaultLoanPeriod = 14 * 24 * time.Hour // 2 weeks

// LoanService couples loan records to copy state. A copy holds at most one
// active loan; creation is gated on the copy being available and the flip to
// borrowed happens in the same transaction as the insert.
type LoanService interface {
	Create(ctx context.Context, req dto.CreateLoanRequest) (*models.Loan, error)
	Return(ctx context.Context, loanID int64) (*models.Loan, error)
	List(ctx context.Context, filter repository.LoanFilter) ([]dto.LoanResponse, error)
}

type loanService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLoanService(db *gorm.DB) LoanService {
	return &loanService{db: db, now: time.Now}
}

func (s *loanService) Create(ctx context.Context, req dto.CreateLoanRequest) (*models.Loan, error) {
	loanDate := s.now()
	if req.LoanDate != nil {
		loanDate = *req.LoanDate
	}
	dueDate := loanDate.Add(defaultLoanPeriod)
	if req.DueDate != nil {
		dueDate = *req.DueDate
	}

	var loan *models.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		copies := repository.NewCopyRepository(tx)

		copy, err := copies.GetByID(ctx, req.CopyID)
		if err != nil {
			return err
		}
		if copy.Status != models.CopyAvailable {
			return apperr.InvalidState("Copy is currently %s", copy.Status)
		}
		if _, err := repository.NewContactRepository(tx).GetByID(ctx, req.ContactID); err != nil {
			return err
		}
		if _, err := repository.NewLibraryRepository(tx).GetByID(ctx, req.LibraryID); err != nil {
			return err
		}

		// Compare-and-swap on the stored status: if a concurrent loan won
		// the race since the read above, the swap loses and we report the
		// status that beat us.
		ok, err := copies.UpdateStatusIf(ctx, copy.ID, models.CopyAvailable, models.CopyBorrowed)
		if err != nil {
			return err
		}
		if !ok {
			current, err := copies.GetByID(ctx, copy.ID)
			if err != nil {
				return err
			}
			return apperr.InvalidState("Copy is currently %s", current.Status)
		}

		loan = &models.Loan{
			CopyID:    req.CopyID,
			ContactID: req.ContactID,
			LibraryID: req.LibraryID,
			LoanDate:  loanDate,
			DueDate:   dueDate,
			Status:    models.LoanActive,
			Notes:     req.Notes,
		}
		return repository.NewLoanRepository(tx).Create(ctx, loan)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) Return(ctx context.Context, loanID int64) (*models.Loan, error) {
	var loan *models.Loan
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loans := repository.NewLoanRepository(tx)
		copies := repository.NewCopyRepository(tx)

		var err error
		loan, err = loans.GetByID(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.Status == models.LoanReturned {
			return apperr.InvalidState("Loan is already returned")
		}

		returnedAt := s.now()
		loan.Status = models.LoanReturned
		loan.ReturnDate = &returnedAt
		if err := loans.Update(ctx, loan); err != nil {
			return err
		}

		// A loan pointing at a missing copy is a data-integrity violation;
		// surface it instead of skipping the status flip.
		if _, err := copies.GetByID(ctx, loan.CopyID); err != nil {
			return err
		}
		return copies.UpdateStatus(ctx, loan.CopyID, models.CopyAvailable)
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *loanService) List(ctx context.Context, filter repository.LoanFilter) ([]dto.LoanResponse, error) {
	loans, err := repository.NewLoanRepository(s.db).List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		resp := dto.LoanResponse{
			ID:          loan.ID,
			CopyID:      loan.CopyID,
			ContactID:   loan.ContactID,
			LibraryID:   loan.LibraryID,
			ContactName: "Unknown",
			BookTitle:   "Unknown",
			LoanDate:    loan.LoanDate,
			DueDate:     loan.DueDate,
			ReturnDate:  loan.ReturnDate,
			Status:      loan.Status,
			Notes:       loan.Notes,
		}
		if loan.Contact != nil {
			resp.ContactName = loan.Contact.Name
		}
		if loan.Copy != nil && loan.Copy.Book != nil {
			resp.BookTitle = loan.Copy.Book.Title
		}
		items = append(items, resp)
	}
	return items, nil
}
