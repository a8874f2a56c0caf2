package dto

type CreatePeerRequest struct {
	Name        string  `json:"name" binding:"required"`
	URL         string  `json:"url" binding:"required"`
	PublicKey   *string `json:"public_key,omitempty"`
	AutoApprove bool    `json:"auto_approve,omitempty"`
}

type UpdatePeerRequest struct {
	Name        *string `json:"name,omitempty"`
	URL         *string `json:"url,omitempty"`
	PublicKey   *string `json:"public_key,omitempty"`
	AutoApprove *bool   `json:"auto_approve,omitempty"`
}

// ReceiveBorrowRequest is what a remote peer posts when it wants to borrow a
// book from this library. The sender identifies itself by its base URL; the
// ID is optional and lets both sides share one transaction identifier.
type ReceiveBorrowRequest struct {
	ID         string `json:"id,omitempty"`
	FromPeerID int64  `json:"from_peer_id,omitempty"`
	FromURL    string `json:"from_url,omitempty"`
	ISBN       string `json:"isbn" binding:"required"`
	Title      string `json:"title,omitempty"`
}

// SendBorrowRequest is the local payload for asking a peer to lend a book.
// LibraryID names the local library that will hold the borrowed copy.
type SendBorrowRequest struct {
	ISBN      string `json:"isbn" binding:"required"`
	Title     string `json:"title,omitempty"`
	LibraryID int64  `json:"library_id" binding:"required"`
}

type UpdateRequestStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type SearchRequest struct {
	Query   string   `json:"query" binding:"required"`
	Sources []string `json:"sources,omitempty"`
	Limit   int      `json:"limit,omitempty"`
}
