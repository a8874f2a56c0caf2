package models

import "time"

// Loan statuses.
const (
	LoanActive   = "active"
	LoanReturned = "returned"
	LoanOverdue  = "overdue"
	LoanLost     = "lost"
)

var ValidLoanStatuses = map[string]bool{
	LoanActive:   true,
	LoanReturned: true,
	LoanOverdue:  true,
	LoanLost:     true,
}

func IsValidLoanStatus(status string) bool {
	return ValidLoanStatuses[status]
}

// Loan records one copy lent to one contact. A copy has at most one active
// loan at a time; creation is gated on the copy being available.
type Loan struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	CopyID     int64      `json:"copy_id" gorm:"not null;index"`
	ContactID  int64      `json:"contact_id" gorm:"not null;index"`
	LibraryID  int64      `json:"library_id" gorm:"not null;index"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     string     `json:"status" gorm:"not null;default:active"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	// Associations
	Copy    *Copy    `json:"copy,omitempty" gorm:"foreignKey:CopyID"`
	Contact *Contact `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
}

func (Loan) TableName() string {
	return "loans"
}
