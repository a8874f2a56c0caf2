package service

import (
	"context"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/dto"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/repository"
)

type BookService interface {
	Create(ctx context.Context, req dto.CreateBookRequest) (*models.Book, error)
	Get(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, filter repository.BookFilter) ([]models.Book, error)
	Update(ctx context.Context, id int64, req dto.UpdateBookRequest) (*models.Book, error)
	Delete(ctx context.Context, id int64) error
}

type bookService struct {
	repo repository.BookRepository
}

func NewBookService(db *gorm.DB) BookService {
	return &bookService{repo: repository.NewBookRepository(db)}
}

func (s *bookService) Create(ctx context.Context, req dto.CreateBookRequest) (*models.Book, error) {
	status := req.ReadingStatus
	if status == "" {
		status = models.ReadingToRead
	}
	if !models.IsValidReadingStatus(status) {
		return nil, apperr.InvalidState("Invalid reading status %q", status)
	}

	book := &models.Book{
		Title:         req.Title,
		ISBN:          req.ISBN,
		Author:        req.Author,
		CoverURL:      req.CoverURL,
		Owned:         true,
		ReadingStatus: status,
	}
	if req.Owned != nil {
		book.Owned = *req.Owned
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) Get(ctx context.Context, id int64) (*models.Book, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *bookService) List(ctx context.Context, filter repository.BookFilter) ([]models.Book, error) {
	return s.repo.List(ctx, filter)
}

func (s *bookService) Update(ctx context.Context, id int64, req dto.UpdateBookRequest) (*models.Book, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.ISBN != nil {
		book.ISBN = req.ISBN
	}
	if req.Author != nil {
		book.Author = req.Author
	}
	if req.CoverURL != nil {
		book.CoverURL = req.CoverURL
	}
	if req.Owned != nil {
		book.Owned = *req.Owned
	}
	if req.ReadingStatus != nil {
		if !models.IsValidReadingStatus(*req.ReadingStatus) {
			return nil, apperr.InvalidState("Invalid reading status %q", *req.ReadingStatus)
		}
		book.ReadingStatus = *req.ReadingStatus
	}

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
