package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/dto"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/peerclient"
)

const selfURL = "http://self.example"

func newBorrowService(db *gorm.DB, transport *fakeTransport) BorrowService {
	return NewBorrowService(db, transport, selfURL, testLogger())
}

func TestReceiveRequestPendingWithoutAutoApprove(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	svc := newBorrowService(db, &fakeTransport{})

	request, err := svc.ReceiveRequest(context.Background(), dto.ReceiveBorrowRequest{
		FromPeerID: peer.ID,
		ISBN:       "9780441172719",
		Title:      "Dune",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, request.Status)
	assert.NotEmpty(t, request.ID)
	assert.Nil(t, request.CopyID)
}

func TestReceiveRequestResolvesPeerByURL(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	svc := newBorrowService(db, &fakeTransport{})

	request, err := svc.ReceiveRequest(context.Background(), dto.ReceiveBorrowRequest{
		ID:      "req-1",
		FromURL: "http://alice.example",
		ISBN:    "9780441172719",
	})
	require.NoError(t, err)
	assert.Equal(t, "req-1", request.ID)
	assert.Equal(t, peer.ID, request.FromPeerID)
}

func TestReceiveRequestUnknownPeer(t *testing.T) {
	db := setupTestDB(t)
	svc := newBorrowService(db, &fakeTransport{})

	_, err := svc.ReceiveRequest(context.Background(), dto.ReceiveBorrowRequest{
		FromURL: "http://stranger.example",
		ISBN:    "9780441172719",
	})
	assert.True(t, apperr.IsNotFound(err))
}

func TestReceiveRequestAutoApproveReservesCopy(t *testing.T) {
	db := setupTestDB(t)
	library := seedLibrary(t, db, "Home")
	book := seedBook(t, db, "Dune", "9780441172719")
	copy := seedCopy(t, db, book.ID, library.ID, models.CopyAvailable)
	peer := seedPeer(t, db, "alice", "http://alice.example", true)
	svc := newBorrowService(db, &fakeTransport{})

	request, err := svc.ReceiveRequest(context.Background(), dto.ReceiveBorrowRequest{
		FromPeerID: peer.ID,
		ISBN:       "9780441172719",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, request.Status)
	require.NotNil(t, request.CopyID)
	assert.Equal(t, copy.ID, *request.CopyID)

	var got models.Copy
	require.NoError(t, db.First(&got, copy.ID).Error)
	assert.Equal(t, models.CopyBorrowed, got.Status)
}

func TestReceiveRequestAutoApproveWithoutCopy(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example", true)
	svc := newBorrowService(db, &fakeTransport{})

	_, err := svc.ReceiveRequest(context.Background(), dto.ReceiveBorrowRequest{
		FromPeerID: peer.ID,
		ISBN:       "9780441172719",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))
	assert.Contains(t, err.Error(), "No available copy")

	// No half-accepted row may survive the failure.
	var count int64
	require.NoError(t, db.Model(&models.BorrowRequest{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateRequestStatusAcceptNotifiesPeer(t *testing.T) {
	db := setupTestDB(t)
	library := seedLibrary(t, db, "Home")
	book := seedBook(t, db, "Dune", "9780441172719")
	copy := seedCopy(t, db, book.ID, library.ID, models.CopyAvailable)
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	transport := &fakeTransport{}
	svc := newBorrowService(db, transport)
	ctx := context.Background()

	request, err := svc.ReceiveRequest(ctx, dto.ReceiveBorrowRequest{
		FromPeerID: peer.ID,
		ISBN:       "9780441172719",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRequestStatus(ctx, request.ID, models.RequestAccepted)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, updated.Status)
	require.NotNil(t, updated.CopyID)
	assert.Equal(t, copy.ID, *updated.CopyID)

	require.Len(t, transport.sentStatuses, 1)
	assert.Equal(t, "http://alice.example", transport.sentStatuses[0].peerURL)
	assert.Equal(t, models.RequestAccepted, transport.sentStatuses[0].status)
}

func TestUpdateRequestStatusAcceptWithoutCopy(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	svc := newBorrowService(db, &fakeTransport{})
	ctx := context.Background()

	request, err := svc.ReceiveRequest(ctx, dto.ReceiveBorrowRequest{
		FromPeerID: peer.ID,
		ISBN:       "9780441172719",
	})
	require.NoError(t, err)

	_, err = svc.UpdateRequestStatus(ctx, request.ID, models.RequestAccepted)
	require.Error(t, err)
	assert.True(t, apperr.IsInvalidState(err))

	got, err := svc.ListRequests(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.RequestPending, got[0].Status)
}

func TestUpdateRequestStatusReject(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	transport := &fakeTransport{}
	svc := newBorrowService(db, transport)
	ctx := context.Background()

	request, err := svc.ReceiveRequest(ctx, dto.ReceiveBorrowRequest{
		FromPeerID: peer.ID,
		ISBN:       "9780441172719",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRequestStatus(ctx, request.ID, models.RequestRejected)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, updated.Status)
	require.Len(t, transport.sentStatuses, 1)
}

func TestUpdateRequestStatusReturnReleasesCopy(t *testing.T) {
	db := setupTestDB(t)
	library := seedLibrary(t, db, "Home")
	book := seedBook(t, db, "Dune", "9780441172719")
	copy := seedCopy(t, db, book.ID, library.ID, models.CopyAvailable)
	peer := seedPeer(t, db, "alice", "http://alice.example", true)
	svc := newBorrowService(db, &fakeTransport{})
	ctx := context.Background()

	request, err := svc.ReceiveRequest(ctx, dto.ReceiveBorrowRequest{
		FromPeerID: peer.ID,
		ISBN:       "9780441172719",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateRequestStatus(ctx, request.ID, models.RequestReturned)
	require.NoError(t, err)
	assert.Equal(t, models.RequestReturned, updated.Status)
	assert.Nil(t, updated.CopyID)

	var got models.Copy
	require.NoError(t, db.First(&got, copy.ID).Error)
	assert.Equal(t, models.CopyAvailable, got.Status)
}

func TestUpdateRequestStatusInvalidTransition(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	svc := newBorrowService(db, &fakeTransport{})
	ctx := context.Background()

	request, err := svc.ReceiveRequest(ctx, dto.ReceiveBorrowRequest{
		FromPeerID: peer.ID,
		ISBN:       "9780441172719",
	})
	require.NoError(t, err)

	_, err = svc.UpdateRequestStatus(ctx, request.ID, models.RequestRejected)
	require.NoError(t, err)

	// A rejected request is terminal.
	_, err = svc.UpdateRequestStatus(ctx, request.ID, models.RequestAccepted)
	assert.True(t, apperr.IsInvalidState(err))

	_, err = svc.UpdateRequestStatus(ctx, request.ID, "bogus")
	assert.True(t, apperr.IsInvalidState(err))
}

func TestRequestBookDeliveryFailureLeavesPending(t *testing.T) {
	db := setupTestDB(t)
	library := seedLibrary(t, db, "Home")
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	transport := &fakeTransport{sendErr: errors.New("connection refused")}
	svc := newBorrowService(db, transport)
	ctx := context.Background()

	_, err := svc.RequestBook(ctx, peer.ID, dto.SendBorrowRequest{
		ISBN:      "9780441172719",
		Title:     "Dune",
		LibraryID: library.ID,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsExternal(err))

	outgoing, err := svc.ListOutgoing(ctx)
	require.NoError(t, err)
	require.Len(t, outgoing, 1)
	assert.Equal(t, models.RequestPending, outgoing[0].Status)
}

func TestRequestBookSendsIdentity(t *testing.T) {
	db := setupTestDB(t)
	library := seedLibrary(t, db, "Home")
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	transport := &fakeTransport{}
	svc := newBorrowService(db, transport)

	outgoing, err := svc.RequestBook(context.Background(), peer.ID, dto.SendBorrowRequest{
		ISBN:      "9780441172719",
		Title:     "Dune",
		LibraryID: library.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, outgoing.Status)

	require.Len(t, transport.sentRequests, 1)
	sent := transport.sentRequests[0]
	assert.Equal(t, "http://alice.example", sent.peerURL)
	assert.Equal(t, outgoing.ID, sent.id)
	assert.Equal(t, selfURL, sent.fromURL)
	assert.Equal(t, "9780441172719", sent.isbn)
}

func TestRequestBookImmediateAcceptMaterializesCopy(t *testing.T) {
	db := setupTestDB(t)
	library := seedLibrary(t, db, "Home")
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	transport := &fakeTransport{ack: &peerclient.RequestAck{Status: models.RequestAccepted}}
	svc := newBorrowService(db, transport)

	outgoing, err := svc.RequestBook(context.Background(), peer.ID, dto.SendBorrowRequest{
		ISBN:      "9780441172719",
		Title:     "Dune",
		LibraryID: library.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, outgoing.Status)
	require.NotNil(t, outgoing.CopyID)

	var copy models.Copy
	require.NoError(t, db.First(&copy, *outgoing.CopyID).Error)
	assert.True(t, copy.IsTemporary)
	assert.Equal(t, models.CopyBorrowed, copy.Status)
	assert.Equal(t, library.ID, copy.LibraryID)

	var book models.Book
	require.NoError(t, db.First(&book, copy.BookID).Error)
	assert.Equal(t, "Dune", book.Title)
	assert.False(t, book.Owned)
	assert.Equal(t, models.ReadingReading, book.ReadingStatus)
}

func TestUpdateOutgoingAcceptReusesExistingBook(t *testing.T) {
	db := setupTestDB(t)
	library := seedLibrary(t, db, "Home")
	book := seedBook(t, db, "Dune", "9780441172719")
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	svc := newBorrowService(db, &fakeTransport{})
	ctx := context.Background()

	outgoing, err := svc.RequestBook(ctx, peer.ID, dto.SendBorrowRequest{
		ISBN:      "9780441172719",
		LibraryID: library.ID,
	})
	require.NoError(t, err)

	outgoing, err = svc.UpdateOutgoingStatus(ctx, outgoing.ID, models.RequestAccepted)
	require.NoError(t, err)

	var copy models.Copy
	require.NoError(t, db.First(&copy, *outgoing.CopyID).Error)
	assert.Equal(t, book.ID, copy.BookID)

	var count int64
	require.NoError(t, db.Model(&models.Book{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

// Return-triggered cleanup: the temporary copy always goes; the book goes
// only when it was a placeholder with nothing else referencing it.
func TestUpdateOutgoingReturnCleanup(t *testing.T) {
	setup := func(t *testing.T, db *gorm.DB) (BorrowService, *models.OutgoingBorrowRequest, *models.Library) {
		library := seedLibrary(t, db, "Home")
		peer := seedPeer(t, db, "alice", "http://alice.example", false)
		svc := newBorrowService(db, &fakeTransport{})
		outgoing, err := svc.RequestBook(context.Background(), peer.ID, dto.SendBorrowRequest{
			ISBN:      "9780441172719",
			Title:     "Dune",
			LibraryID: library.ID,
		})
		require.NoError(t, err)
		outgoing, err = svc.UpdateOutgoingStatus(context.Background(), outgoing.ID, models.RequestAccepted)
		require.NoError(t, err)
		return svc, outgoing, library
	}

	bookCount := func(t *testing.T, db *gorm.DB) int64 {
		var count int64
		require.NoError(t, db.Model(&models.Book{}).Count(&count).Error)
		return count
	}

	t.Run("placeholder book is deleted", func(t *testing.T) {
		db := setupTestDB(t)
		svc, outgoing, _ := setup(t, db)

		outgoing, err := svc.UpdateOutgoingStatus(context.Background(), outgoing.ID, models.RequestReturned)
		require.NoError(t, err)
		assert.Equal(t, models.RequestReturned, outgoing.Status)
		assert.Nil(t, outgoing.CopyID)

		assert.Zero(t, bookCount(t, db))
		var copies int64
		require.NoError(t, db.Model(&models.Copy{}).Count(&copies).Error)
		assert.Zero(t, copies)
	})

	t.Run("owned book is retained", func(t *testing.T) {
		db := setupTestDB(t)
		svc, outgoing, _ := setup(t, db)
		require.NoError(t, db.Model(&models.Book{}).Where("isbn = ?", "9780441172719").
			Update("owned", true).Error)

		_, err := svc.UpdateOutgoingStatus(context.Background(), outgoing.ID, models.RequestReturned)
		require.NoError(t, err)
		assert.EqualValues(t, 1, bookCount(t, db))
	})

	t.Run("wishlisted book is retained", func(t *testing.T) {
		db := setupTestDB(t)
		svc, outgoing, _ := setup(t, db)
		require.NoError(t, db.Model(&models.Book{}).Where("isbn = ?", "9780441172719").
			Update("reading_status", models.ReadingWishlist).Error)

		_, err := svc.UpdateOutgoingStatus(context.Background(), outgoing.ID, models.RequestReturned)
		require.NoError(t, err)
		assert.EqualValues(t, 1, bookCount(t, db))
	})

	t.Run("book with other copies is retained", func(t *testing.T) {
		db := setupTestDB(t)
		svc, outgoing, library := setup(t, db)

		var book models.Book
		require.NoError(t, db.Where("isbn = ?", "9780441172719").First(&book).Error)
		seedCopy(t, db, book.ID, library.ID, models.CopyAvailable)

		_, err := svc.UpdateOutgoingStatus(context.Background(), outgoing.ID, models.RequestReturned)
		require.NoError(t, err)
		assert.EqualValues(t, 1, bookCount(t, db))

		var copies int64
		require.NoError(t, db.Model(&models.Copy{}).Count(&copies).Error)
		assert.EqualValues(t, 1, copies)
	})
}

func TestUpdateOutgoingReturnBeforeAccept(t *testing.T) {
	db := setupTestDB(t)
	library := seedLibrary(t, db, "Home")
	peer := seedPeer(t, db, "alice", "http://alice.example", false)
	svc := newBorrowService(db, &fakeTransport{})

	outgoing, err := svc.RequestBook(context.Background(), peer.ID, dto.SendBorrowRequest{
		ISBN:      "9780441172719",
		LibraryID: library.ID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateOutgoingStatus(context.Background(), outgoing.ID, models.RequestReturned)
	assert.True(t, apperr.IsInvalidState(err))
}
