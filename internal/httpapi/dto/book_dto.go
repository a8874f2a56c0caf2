package dto

// CreateBookRequest is the payload for adding a catalog entry.
type CreateBookRequest struct {
	Title         string  `json:"title" binding:"required"`
	ISBN          *string `json:"isbn,omitempty"`
	Author        *string `json:"author,omitempty"`
	CoverURL      *string `json:"cover_url,omitempty"`
	Owned         *bool   `json:"owned,omitempty"`
	ReadingStatus string  `json:"reading_status,omitempty"`
}

// UpdateBookRequest carries the updatable book fields; nil means unchanged.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty"`
	ISBN          *string `json:"isbn,omitempty"`
	Author        *string `json:"author,omitempty"`
	CoverURL      *string `json:"cover_url,omitempty"`
	Owned         *bool   `json:"owned,omitempty"`
	ReadingStatus *string `json:"reading_status,omitempty"`
}
