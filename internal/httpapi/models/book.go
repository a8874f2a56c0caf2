package models

import "time"

// Reading statuses for a book.
const (
	ReadingToRead   = "to_read"
	ReadingReading  = "reading"
	ReadingRead     = "read"
	ReadingWishlist = "wishlist"
)

var ValidReadingStatuses = map[string]bool{
	ReadingToRead:   true,
	ReadingReading:  true,
	ReadingRead:     true,
	ReadingWishlist: true,
}

func IsValidReadingStatus(status string) bool {
	return ValidReadingStatuses[status]
}

// Book is a catalog entry. Owned is false while the book exists only as a
// placeholder for an item borrowed from a peer.
type Book struct {
	ID            int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title         string     `json:"title" gorm:"not null"`
	ISBN          *string    `json:"isbn,omitempty" gorm:"index;size:20"`
	Author        *string    `json:"author,omitempty"`
	CoverURL      *string    `json:"cover_url,omitempty"`
	Owned         bool       `json:"owned"`
	ReadingStatus string     `json:"reading_status" gorm:"not null;default:to_read"`
	CreatedAt     *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

func (Book) TableName() string {
	return "books"
}
