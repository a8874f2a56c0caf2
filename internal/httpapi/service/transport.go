package service

import (
	"context"

	"github.com/bibliogenius/bibliogenius-sub000/internal/peerclient"
)

// PeerTransport is the outbound half of the lending protocol: every network
// interaction with a remote library goes through it. The production
// implementation is *peerclient.Client; tests substitute fakes.
type PeerTransport interface {
	FetchCatalog(ctx context.Context, peerURL string) ([]peerclient.BookSummary, error)
	SendSearch(ctx context.Context, peerURL, query string) ([]peerclient.BookSummary, error)
	SendBorrowRequest(ctx context.Context, peerURL, id, fromURL, isbn, title string) (*peerclient.RequestAck, error)
	SendStatusUpdate(ctx context.Context, peerURL, requestID, status string) error
}
