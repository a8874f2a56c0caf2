package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/dto"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/repository"
)

type ContactService interface {
	Create(ctx context.Context, req dto.CreateContactRequest) (*models.Contact, error)
	Get(ctx context.Context, id int64) (*models.Contact, error)
	List(ctx context.Context) ([]models.Contact, error)
	Update(ctx context.Context, id int64, req dto.CreateContactRequest) (*models.Contact, error)
	Delete(ctx context.Context, id int64) error
}

type contactService struct {
	repo repository.ContactRepository
}

func NewContactService(db *gorm.DB) ContactService {
	return &contactService{repo: repository.NewContactRepository(db)}
}

func (s *contactService) Create(ctx context.Context, req dto.CreateContactRequest) (*models.Contact, error) {
	contact := &models.Contact{Name: req.Name, Email: req.Email}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Get(ctx context.Context, id int64) (*models.Contact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *contactService) List(ctx context.Context) ([]models.Contact, error) {
	return s.repo.List(ctx)
}

func (s *contactService) Update(ctx context.Context, id int64, req dto.CreateContactRequest) (*models.Contact, error) {
	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	contact.Name = req.Name
	if req.Email != nil {
		contact.Email = req.Email
	}
	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// LibraryService manages local library partitions.
type LibraryService interface {
	Create(ctx context.Context, req dto.CreateLibraryRequest) (*models.Library, error)
	List(ctx context.Context) ([]models.Library, error)
}

type libraryService struct {
	repo repository.LibraryRepository
}

func NewLibraryService(db *gorm.DB) LibraryService {
	return &libraryService{repo: repository.NewLibraryRepository(db)}
}

func (s *libraryService) Create(ctx context.Context, req dto.CreateLibraryRequest) (*models.Library, error) {
	library := &models.Library{Name: req.Name}
	if err := s.repo.Create(ctx, library); err != nil {
		return nil, err
	}
	return library, nil
}

func (s *libraryService) List(ctx context.Context) ([]models.Library, error) {
	return s.repo.List(ctx)
}
