package models

import "time"

// Peer is a remote library instance reachable over HTTP, capable of running
// the same lending protocol. AutoApprove accepts incoming borrow requests
// from this peer without manual review.
type Peer struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string     `json:"name" gorm:"not null"`
	URL         string     `json:"url" gorm:"uniqueIndex;not null"`
	PublicKey   *string    `json:"public_key,omitempty"`
	AutoApprove bool       `json:"auto_approve" gorm:"default:false"`
	LastSeen    *time.Time `json:"last_seen,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

func (Peer) TableName() string {
	return "peers"
}

// PeerBook mirrors one catalog entry of a remote peer. Rows are not
// authoritative and carry no local state: each sync fully replaces the
// peer's slice of the cache.
type PeerBook struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	PeerID       int64     `json:"peer_id" gorm:"not null;index"`
	RemoteBookID int64     `json:"remote_book_id"`
	Title        string    `json:"title"`
	ISBN         *string   `json:"isbn,omitempty"`
	Author       *string   `json:"author,omitempty"`
	CoverURL     *string   `json:"cover_url,omitempty"`
	SyncedAt     time.Time `json:"synced_at"`

	Peer *Peer `json:"peer,omitempty" gorm:"foreignKey:PeerID;constraint:OnDelete:CASCADE"`
}

func (PeerBook) TableName() string {
	return "peer_books"
}
