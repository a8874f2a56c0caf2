package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/dto"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/repository"
)

// CopyService manages individual copies. The status field is a dumb holder
// here: any transition is allowed, and the loan/borrow services are the ones
// that gate legality.
type CopyService interface {
	Create(ctx context.Context, req dto.CreateCopyRequest) (*models.Copy, error)
	Get(ctx context.Context, id int64) (*models.Copy, error)
	List(ctx context.Context, filter repository.CopyFilter) ([]models.Copy, error)
	Update(ctx context.Context, id int64, req dto.UpdateCopyRequest) (*models.Copy, error)
	SetStatus(ctx context.Context, id int64, status string) (*models.Copy, error)
	Delete(ctx context.Context, id int64) error
}

type copyService struct {
	copies    repository.CopyRepository
	books     repository.BookRepository
	libraries repository.LibraryRepository
}

func NewCopyService(db *gorm.DB) CopyService {
	return &copyService{
		copies:    repository.NewCopyRepository(db),
		books:     repository.NewBookRepository(db),
		libraries: repository.NewLibraryRepository(db),
	}
}

func (s *copyService) Create(ctx context.Context, req dto.CreateCopyRequest) (*models.Copy, error) {
	status := req.Status
	if status == "" {
		status = models.CopyAvailable
	}
	if !models.IsValidCopyStatus(status) {
		return nil, apperr.InvalidState("Invalid copy status %q", status)
	}

	// The store's FK constraints back these up; checking here turns a
	// constraint violation into a precise NotFound.
	if _, err := s.books.GetByID(ctx, req.BookID); err != nil {
		return nil, err
	}
	if _, err := s.libraries.GetByID(ctx, req.LibraryID); err != nil {
		return nil, err
	}

	copy := &models.Copy{
		BookID:          req.BookID,
		LibraryID:       req.LibraryID,
		Status:          status,
		IsTemporary:     req.IsTemporary,
		AcquisitionDate: req.AcquisitionDate,
		Price:           req.Price,
	}
	if err := s.copies.Create(ctx, copy); err != nil {
		return nil, err
	}
	return copy, nil
}

func (s *copyService) Get(ctx context.Context, id int64) (*models.Copy, error) {
	return s.copies.GetByID(ctx, id)
}

func (s *copyService) List(ctx context.Context, filter repository.CopyFilter) ([]models.Copy, error) {
	return s.copies.List(ctx, filter)
}

func (s *copyService) Update(ctx context.Context, id int64, req dto.UpdateCopyRequest) (*models.Copy, error) {
	copy, err := s.copies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.LibraryID != nil {
		if _, err := s.libraries.GetByID(ctx, *req.LibraryID); err != nil {
			return nil, err
		}
		copy.LibraryID = *req.LibraryID
	}
	if req.Status != nil {
		if !models.IsValidCopyStatus(*req.Status) {
			return nil, apperr.InvalidState("Invalid copy status %q", *req.Status)
		}
		copy.Status = *req.Status
	}
	if req.AcquisitionDate != nil {
		copy.AcquisitionDate = req.AcquisitionDate
	}
	if req.Price != nil {
		copy.Price = req.Price
	}
	if req.SoldAt != nil {
		copy.SoldAt = req.SoldAt
	}

	if err := s.copies.Update(ctx, copy); err != nil {
		return nil, err
	}
	return copy, nil
}

func (s *copyService) SetStatus(ctx context.Context, id int64, status string) (*models.Copy, error) {
	if !models.IsValidCopyStatus(status) {
		return nil, apperr.InvalidState("Invalid copy status %q", status)
	}
	if err := s.copies.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.copies.GetByID(ctx, id)
}

func (s *copyService) Delete(ctx context.Context, id int64) error {
	return s.copies.Delete(ctx, id)
}
