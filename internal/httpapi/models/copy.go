package models

import "time"

// Copy statuses. Status is the single source of truth for lend-ability:
// only an available copy can enter a new loan.
const (
	CopyAvailable = "available"
	CopyBorrowed  = "borrowed"
	CopyLost      = "lost"
	CopySold      = "sold"
	CopyWanted    = "wanted"
	CopyTemporary = "temporary"
)

var ValidCopyStatuses = map[string]bool{
	CopyAvailable: true,
	CopyBorrowed:  true,
	CopyLost:      true,
	CopySold:      true,
	CopyWanted:    true,
	CopyTemporary: true,
}

func IsValidCopyStatus(status string) bool {
	return ValidCopyStatuses[status]
}

// Copy is one physical or digital instance of a book within a library.
// IsTemporary marks a copy that exists only because it was borrowed from a
// peer; it is deleted when the item is returned.
type Copy struct {
	ID              int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	BookID          int64      `json:"book_id" gorm:"not null;index"`
	LibraryID       int64      `json:"library_id" gorm:"not null;index"`
	Status          string     `json:"status" gorm:"not null;default:available"`
	IsTemporary     bool       `json:"is_temporary" gorm:"default:false"`
	AcquisitionDate *time.Time `json:"acquisition_date,omitempty"`
	Price           *float64   `json:"price,omitempty"`
	SoldAt          *time.Time `json:"sold_at,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	// Associations
	Book    *Book    `json:"book,omitempty" gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
	Library *Library `json:"library,omitempty" gorm:"foreignKey:LibraryID"`
}

func (Copy) TableName() string {
	return "copies"
}
