package dto

import "time"

type CreateCopyRequest struct {
	BookID          int64      `json:"book_id" binding:"required"`
	LibraryID       int64      `json:"library_id" binding:"required"`
	Status          string     `json:"status,omitempty"`
	IsTemporary     bool       `json:"is_temporary,omitempty"`
	AcquisitionDate *time.Time `json:"acquisition_date,omitempty"`
	Price           *float64   `json:"price,omitempty"`
}

type UpdateCopyStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type UpdateCopyRequest struct {
	LibraryID       *int64     `json:"library_id,omitempty"`
	Status          *string    `json:"status,omitempty"`
	AcquisitionDate *time.Time `json:"acquisition_date,omitempty"`
	Price           *float64   `json:"price,omitempty"`
	SoldAt          *time.Time `json:"sold_at,omitempty"`
}

type CreateContactRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email *string `json:"email,omitempty"`
}

type CreateLibraryRequest struct {
	Name string `json:"name" binding:"required"`
}
