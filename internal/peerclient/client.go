package peerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	apiPrefix = "/api/v1"

	defaultTimeout   = 5 * time.Second
	defaultRateLimit = 5
	defaultRateBurst = 10
)

// BookSummary is a catalog entry as exposed by a remote library's REST API.
type BookSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	ISBN     string `json:"isbn,omitempty"`
	Author   string `json:"author,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
}

// RequestAck is the remote library's acknowledgement of a borrow request.
type RequestAck struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client talks to remote peer libraries over their own REST API. Every call
// is bounded by the client timeout; a hung peer costs at most one timeout,
// never a blocked caller.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	timeout     time.Duration
	userAgent   string
}

// New creates a peer transport client. rateLimit caps outbound requests per
// second across all peers.
func New(timeout time.Duration, rateLimit int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}
	return &Client{
		timeout:     timeout,
		rateLimiter: rate.NewLimiter(rate.Limit(rateLimit), defaultRateBurst),
		userAgent:   "BiblioGenius/1.0",
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// bookList is the item envelope every list endpoint wraps its results in.
type bookList struct {
	Items []BookSummary `json:"items"`
}

// FetchCatalog retrieves the peer's full book list.
func (c *Client) FetchCatalog(ctx context.Context, peerURL string) ([]BookSummary, error) {
	var list bookList
	if err := c.doRequest(ctx, http.MethodGet, peerURL, "/books", nil, &list); err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	return list.Items, nil
}

// SendSearch runs a query against the peer's local catalog.
func (c *Client) SendSearch(ctx context.Context, peerURL, query string) ([]BookSummary, error) {
	payload := map[string]string{"query": query}
	var list bookList
	if err := c.doRequest(ctx, http.MethodPost, peerURL, "/peers/proxy_search", payload, &list); err != nil {
		return nil, fmt.Errorf("failed to search peer: %w", err)
	}
	return list.Items, nil
}

// SendBorrowRequest delivers a borrow request to the lending peer. fromURL
// identifies the requesting library so the lender can resolve its peer
// registration.
func (c *Client) SendBorrowRequest(ctx context.Context, peerURL, id, fromURL, isbn, title string) (*RequestAck, error) {
	payload := map[string]string{
		"id":       id,
		"from_url": fromURL,
		"isbn":     isbn,
		"title":    title,
	}
	var ack RequestAck
	if err := c.doRequest(ctx, http.MethodPost, peerURL, "/peers/request", payload, &ack); err != nil {
		return nil, fmt.Errorf("failed to deliver borrow request: %w", err)
	}
	return &ack, nil
}

// SendStatusUpdate tells the requesting peer that its outgoing request
// changed status on this side.
func (c *Client) SendStatusUpdate(ctx context.Context, peerURL, requestID, status string) error {
	payload := map[string]string{"status": status}
	path := fmt.Sprintf("/peers/requests/outgoing/%s", requestID)
	if err := c.doRequest(ctx, http.MethodPut, peerURL, path, payload, nil); err != nil {
		return fmt.Errorf("failed to deliver status update: %w", err)
	}
	return nil
}

// doRequest performs one rate-limited, timeout-bounded HTTP round trip.
// There is no retry here: request delivery is explicitly fire-once, and
// sync/search callers decide for themselves whether to try again.
func (c *Client) doRequest(ctx context.Context, method, peerURL, path string, payload, result any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	fullURL := strings.TrimRight(peerURL, "/") + apiPrefix + path

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
