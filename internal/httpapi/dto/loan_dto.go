package dto

import "time"

type CreateLoanRequest struct {
	CopyID    int64      `json:"copy_id" binding:"required"`
	ContactID int64      `json:"contact_id" binding:"required"`
	LibraryID int64      `json:"library_id" binding:"required"`
	LoanDate  *time.Time `json:"loan_date,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// LoanResponse is a loan resolved for presentation: the borrower's name and
// the book title are joined in, falling back to "Unknown" when the
// referenced rows are gone.
type LoanResponse struct {
	ID          int64      `json:"id"`
	CopyID      int64      `json:"copy_id"`
	ContactID   int64      `json:"contact_id"`
	LibraryID   int64      `json:"library_id"`
	ContactName string     `json:"contact_name"`
	BookTitle   string     `json:"book_title"`
	LoanDate    time.Time  `json:"loan_date"`
	DueDate     time.Time  `json:"due_date"`
	ReturnDate  *time.Time `json:"return_date,omitempty"`
	Status      string     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
}

type LoanListResponse struct {
	Items []LoanResponse `json:"items"`
	Total int            `json:"total"`
}
