package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/database"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/peerclient"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)
	require.NoError(t, database.Migrate(db))
	return db
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedLibrary(t *testing.T, db *gorm.DB, name string) *models.Library {
	t.Helper()
	library := &models.Library{Name: name}
	require.NoError(t, db.Create(library).Error)
	return library
}

func seedBook(t *testing.T, db *gorm.DB, title, isbn string) *models.Book {
	t.Helper()
	book := &models.Book{Title: title, Owned: true, ReadingStatus: models.ReadingToRead}
	if isbn != "" {
		book.ISBN = &isbn
	}
	require.NoError(t, db.Create(book).Error)
	return book
}

func seedCopy(t *testing.T, db *gorm.DB, bookID, libraryID int64, status string) *models.Copy {
	t.Helper()
	copy := &models.Copy{BookID: bookID, LibraryID: libraryID, Status: status}
	require.NoError(t, db.Create(copy).Error)
	return copy
}

func seedContact(t *testing.T, db *gorm.DB, name string) *models.Contact {
	t.Helper()
	contact := &models.Contact{Name: name}
	require.NoError(t, db.Create(contact).Error)
	return contact
}

func seedPeer(t *testing.T, db *gorm.DB, name, url string, autoApprove bool) *models.Peer {
	t.Helper()
	peer := &models.Peer{Name: name, URL: url, AutoApprove: autoApprove}
	require.NoError(t, db.Create(peer).Error)
	return peer
}

// fakeTransport records protocol calls and returns scripted answers.
type fakeTransport struct {
	catalog       []peerclient.BookSummary
	catalogErr    error
	searchResults map[string][]peerclient.BookSummary
	searchErr     error
	searchDelay   func(ctx context.Context)
	hangPeers     map[string]bool
	ack           *peerclient.RequestAck
	sendErr       error
	statusErr     error

	sentRequests []sentRequest
	sentStatuses []sentStatus
}

type sentRequest struct {
	peerURL string
	id      string
	fromURL string
	isbn    string
	title   string
}

type sentStatus struct {
	peerURL   string
	requestID string
	status    string
}

func (f *fakeTransport) FetchCatalog(ctx context.Context, peerURL string) ([]peerclient.BookSummary, error) {
	if f.catalogErr != nil {
		return nil, f.catalogErr
	}
	return f.catalog, nil
}

func (f *fakeTransport) SendSearch(ctx context.Context, peerURL, query string) ([]peerclient.BookSummary, error) {
	if f.hangPeers[peerURL] {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.searchDelay != nil {
		f.searchDelay(ctx)
	}
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResults[peerURL], nil
}

func (f *fakeTransport) SendBorrowRequest(ctx context.Context, peerURL, id, fromURL, isbn, title string) (*peerclient.RequestAck, error) {
	f.sentRequests = append(f.sentRequests, sentRequest{peerURL, id, fromURL, isbn, title})
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	if f.ack != nil {
		return f.ack, nil
	}
	return &peerclient.RequestAck{ID: id, Status: models.RequestPending}, nil
}

func (f *fakeTransport) SendStatusUpdate(ctx context.Context, peerURL, requestID, status string) error {
	f.sentStatuses = append(f.sentStatuses, sentStatus{peerURL, requestID, status})
	return f.statusErr
}
