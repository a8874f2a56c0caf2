package models

import "time"

// Borrow request statuses, shared by both sides of the protocol.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
	RequestReturned = "returned"
)

var ValidRequestStatuses = map[string]bool{
	RequestPending:  true,
	RequestAccepted: true,
	RequestRejected: true,
	RequestReturned: true,
}

func IsValidRequestStatus(status string) bool {
	return ValidRequestStatuses[status]
}

// BorrowRequest is the lender-side record of a remote library asking this
// library to lend a book. IDs are opaque strings so both sides of a
// transaction can share one identifier; there is no shared storage between
// the two sides, only status-update messages.
type BorrowRequest struct {
	ID         string     `json:"id" gorm:"primaryKey;size:64"`
	FromPeerID int64      `json:"from_peer_id" gorm:"not null;index"`
	BookISBN   string     `json:"book_isbn"`
	BookTitle  string     `json:"book_title"`
	Status     string     `json:"status" gorm:"not null;default:pending"`
	CopyID     *int64     `json:"copy_id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	FromPeer *Peer `json:"from_peer,omitempty" gorm:"foreignKey:FromPeerID"`
}

func (BorrowRequest) TableName() string {
	return "p2p_requests"
}

// OutgoingBorrowRequest is the borrower-side record of this library asking a
// remote peer to lend a book. It mirrors BorrowRequest but is a distinct
// aggregate: each library keeps its own record of the shared transaction.
// CopyID points at the temporary copy created when the peer accepts.
type OutgoingBorrowRequest struct {
	ID        string     `json:"id" gorm:"primaryKey;size:64"`
	ToPeerID  int64      `json:"to_peer_id" gorm:"not null;index"`
	BookISBN  string     `json:"book_isbn"`
	BookTitle string     `json:"book_title"`
	LibraryID int64      `json:"library_id"`
	Status    string     `json:"status" gorm:"not null;default:pending"`
	CopyID    *int64     `json:"copy_id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`

	ToPeer *Peer `json:"to_peer,omitempty" gorm:"foreignKey:ToPeerID"`
}

func (OutgoingBorrowRequest) TableName() string {
	return "p2p_outgoing_requests"
}
