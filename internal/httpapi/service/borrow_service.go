package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/dto"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/repository"
)

// BorrowService runs both halves of the inter-library borrow protocol.
// The lender side records BorrowRequests from remote peers; the borrower
// side records OutgoingBorrowRequests to remote peers. The two tables are
// never shared: each library reacts to explicit status-update messages, and
// the protocol is best-effort — a lost message leaves the sides diverged
// until the next message, there is no reconciliation.
type BorrowService interface {
	// Lender side.
	ReceiveRequest(ctx context.Context, req dto.ReceiveBorrowRequest) (*models.BorrowRequest, error)
	UpdateRequestStatus(ctx context.Context, id, status string) (*models.BorrowRequest, error)
	ListRequests(ctx context.Context) ([]models.BorrowRequest, error)
	DeleteRequest(ctx context.Context, id string) error

	// Borrower side.
	RequestBook(ctx context.Context, peerID int64, req dto.SendBorrowRequest) (*models.OutgoingBorrowRequest, error)
	UpdateOutgoingStatus(ctx context.Context, id, status string) (*models.OutgoingBorrowRequest, error)
	ListOutgoing(ctx context.Context) ([]models.OutgoingBorrowRequest, error)
}

type borrowService struct {
	db        *gorm.DB
	transport PeerTransport
	selfURL   string
	logger    *slog.Logger
	newID     func() string
}

func NewBorrowService(db *gorm.DB, transport PeerTransport, selfURL string, logger *slog.Logger) BorrowService {
	return &borrowService{
		db:        db,
		transport: transport,
		selfURL:   selfURL,
		logger:    logger,
		newID:     uuid.NewString,
	}
}

// ReceiveRequest handles a remote peer asking this library to lend a book.
// With auto-approve enabled the request is accepted immediately, but only
// if an available copy can actually be reserved: acceptance without a copy
// would leave a request nothing can fulfil.
func (s *borrowService) ReceiveRequest(ctx context.Context, req dto.ReceiveBorrowRequest) (*models.BorrowRequest, error) {
	peers := repository.NewPeerRepository(s.db)

	var peer *models.Peer
	var err error
	if req.FromPeerID != 0 {
		peer, err = peers.GetByID(ctx, req.FromPeerID)
	} else {
		peer, err = peers.GetByURL(ctx, req.FromURL)
	}
	if err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = s.newID()
	}

	request := &models.BorrowRequest{
		ID:         id,
		FromPeerID: peer.ID,
		BookISBN:   req.ISBN,
		BookTitle:  req.Title,
		Status:     models.RequestPending,
	}

	if !peer.AutoApprove {
		if err := repository.NewBorrowRequestRepository(s.db).Create(ctx, request); err != nil {
			return nil, err
		}
		return request, nil
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		copyID, err := reserveAvailableCopy(ctx, tx, req.ISBN)
		if err != nil {
			return err
		}
		request.Status = models.RequestAccepted
		request.CopyID = &copyID
		return repository.NewBorrowRequestRepository(tx).Create(ctx, request)
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// UpdateRequestStatus applies a lender-side transition and tells the
// requesting peer about it. The notify leg is best-effort: the protocol
// tolerates lost messages, so a delivery failure is logged, not fatal.
func (s *borrowService) UpdateRequestStatus(ctx context.Context, id, status string) (*models.BorrowRequest, error) {
	if !models.IsValidRequestStatus(status) {
		return nil, apperr.InvalidState("Invalid request status %q", status)
	}

	var request *models.BorrowRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := repository.NewBorrowRequestRepository(tx)
		copies := repository.NewCopyRepository(tx)

		var err error
		request, err = requests.GetByID(ctx, id)
		if err != nil {
			return err
		}

		switch {
		case request.Status == models.RequestPending && status == models.RequestAccepted:
			copyID, err := reserveAvailableCopy(ctx, tx, request.BookISBN)
			if err != nil {
				return err
			}
			request.CopyID = &copyID
			request.Status = models.RequestAccepted

		case request.Status == models.RequestPending && status == models.RequestRejected:
			request.Status = models.RequestRejected

		case request.Status == models.RequestAccepted && status == models.RequestReturned:
			// The borrowed copy came home: release the reservation.
			if request.CopyID != nil {
				if err := copies.UpdateStatus(ctx, *request.CopyID, models.CopyAvailable); err != nil {
					return err
				}
			}
			request.Status = models.RequestReturned
			request.CopyID = nil

		default:
			return apperr.InvalidState("Request is already %s", request.Status)
		}
		return requests.Update(ctx, request)
	})
	if err != nil {
		return nil, err
	}

	s.notifyPeer(ctx, request.FromPeerID, request.ID, request.Status)
	return request, nil
}

func (s *borrowService) ListRequests(ctx context.Context) ([]models.BorrowRequest, error) {
	return repository.NewBorrowRequestRepository(s.db).List(ctx)
}

func (s *borrowService) DeleteRequest(ctx context.Context, id string) error {
	return repository.NewBorrowRequestRepository(s.db).Delete(ctx, id)
}

// RequestBook records a local outgoing request, then delivers it. Delivery
// failure leaves the local record pending — the caller re-attempts, the
// protocol does not.
func (s *borrowService) RequestBook(ctx context.Context, peerID int64, req dto.SendBorrowRequest) (*models.OutgoingBorrowRequest, error) {
	peer, err := repository.NewPeerRepository(s.db).GetByID(ctx, peerID)
	if err != nil {
		return nil, err
	}
	if _, err := repository.NewLibraryRepository(s.db).GetByID(ctx, req.LibraryID); err != nil {
		return nil, err
	}

	outgoing := &models.OutgoingBorrowRequest{
		ID:        s.newID(),
		ToPeerID:  peer.ID,
		BookISBN:  req.ISBN,
		BookTitle: req.Title,
		LibraryID: req.LibraryID,
		Status:    models.RequestPending,
	}
	if err := repository.NewOutgoingRequestRepository(s.db).Create(ctx, outgoing); err != nil {
		return nil, err
	}

	ack, err := s.transport.SendBorrowRequest(ctx, peer.URL, outgoing.ID, s.selfURL, req.ISBN, req.Title)
	if err != nil {
		return outgoing, apperr.External("Failed to deliver borrow request to peer", err)
	}

	// An auto-approving lender answers "accepted" straight away; apply it
	// as if the status update had arrived separately.
	if ack != nil && ack.Status == models.RequestAccepted {
		return s.UpdateOutgoingStatus(ctx, outgoing.ID, models.RequestAccepted)
	}
	return outgoing, nil
}

// UpdateOutgoingStatus reacts to the lender's answer.
//
// accepted materializes the borrowed item locally: a placeholder book
// (owned=false) when none matches the ISBN, plus a temporary copy marked
// borrowed. returned undoes it: the temporary copy is deleted, and the book
// goes too — but only when it is unowned, not wishlisted, and has no other
// copies left. An owned book, a wishlisted one, or one with other copies is
// retained untouched.
func (s *borrowService) UpdateOutgoingStatus(ctx context.Context, id, status string) (*models.OutgoingBorrowRequest, error) {
	if !models.IsValidRequestStatus(status) {
		return nil, apperr.InvalidState("Invalid request status %q", status)
	}

	var outgoing *models.OutgoingBorrowRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		requests := repository.NewOutgoingRequestRepository(tx)

		var err error
		outgoing, err = requests.GetByID(ctx, id)
		if err != nil {
			return err
		}

		switch status {
		case models.RequestAccepted:
			if outgoing.Status != models.RequestPending {
				return apperr.InvalidState("Request is already %s", outgoing.Status)
			}
			copyID, err := s.materializeBorrowedItem(ctx, tx, outgoing)
			if err != nil {
				return err
			}
			outgoing.Status = models.RequestAccepted
			outgoing.CopyID = &copyID

		case models.RequestRejected:
			// Any state may move to rejected; no resources to touch.
			outgoing.Status = models.RequestRejected

		case models.RequestReturned:
			if outgoing.Status != models.RequestAccepted {
				return apperr.InvalidState("Request is currently %s", outgoing.Status)
			}
			if err := s.reclaimBorrowedItem(ctx, tx, outgoing); err != nil {
				return err
			}
			outgoing.Status = models.RequestReturned
			outgoing.CopyID = nil

		default:
			return apperr.InvalidState("Request is currently %s", outgoing.Status)
		}
		return requests.Update(ctx, outgoing)
	})
	if err != nil {
		return nil, err
	}
	return outgoing, nil
}

func (s *borrowService) ListOutgoing(ctx context.Context) ([]models.OutgoingBorrowRequest, error) {
	return repository.NewOutgoingRequestRepository(s.db).List(ctx)
}

// materializeBorrowedItem creates the local placeholder book (if needed) and
// the temporary copy representing the physically received item.
func (s *borrowService) materializeBorrowedItem(ctx context.Context, tx *gorm.DB, outgoing *models.OutgoingBorrowRequest) (int64, error) {
	books := repository.NewBookRepository(tx)
	copies := repository.NewCopyRepository(tx)

	book, err := books.GetByISBN(ctx, outgoing.BookISBN)
	if apperr.IsNotFound(err) {
		title := outgoing.BookTitle
		if title == "" {
			title = outgoing.BookISBN
		}
		isbn := outgoing.BookISBN
		book = &models.Book{
			Title:         title,
			ISBN:          &isbn,
			Owned:         false,
			ReadingStatus: models.ReadingReading,
		}
		if err := books.Create(ctx, book); err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	copy := &models.Copy{
		BookID:      book.ID,
		LibraryID:   outgoing.LibraryID,
		Status:      models.CopyBorrowed,
		IsTemporary: true,
	}
	if err := copies.Create(ctx, copy); err != nil {
		return 0, err
	}
	return copy.ID, nil
}

// reclaimBorrowedItem deletes the temporary copy and, when the book existed
// only as a placeholder for it, the book as well.
func (s *borrowService) reclaimBorrowedItem(ctx context.Context, tx *gorm.DB, outgoing *models.OutgoingBorrowRequest) error {
	if outgoing.CopyID == nil {
		return nil
	}
	books := repository.NewBookRepository(tx)
	copies := repository.NewCopyRepository(tx)

	copy, err := copies.GetByID(ctx, *outgoing.CopyID)
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := copies.Delete(ctx, copy.ID); err != nil {
		return err
	}

	book, err := books.GetByID(ctx, copy.BookID)
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if book.Owned || book.ReadingStatus == models.ReadingWishlist {
		return nil
	}
	remaining, err := copies.CountByBook(ctx, book.ID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return nil
	}
	return books.Delete(ctx, book.ID)
}

// reserveAvailableCopy finds an available copy for the ISBN and flips it to
// borrowed, all inside the caller's transaction. The CAS guards against a
// concurrent loan grabbing the same copy between lookup and flip.
func reserveAvailableCopy(ctx context.Context, tx *gorm.DB, isbn string) (int64, error) {
	copies := repository.NewCopyRepository(tx)

	copy, err := copies.FirstAvailableByISBN(ctx, isbn)
	if err != nil {
		if apperr.IsNotFound(err) {
			return 0, apperr.InvalidState("No available copy")
		}
		return 0, err
	}
	ok, err := copies.UpdateStatusIf(ctx, copy.ID, models.CopyAvailable, models.CopyBorrowed)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, apperr.InvalidState("No available copy")
	}
	return copy.ID, nil
}

// notifyPeer delivers a status update to the peer's outgoing-request
// endpoint. Loss is tolerated; the next explicit message wins.
func (s *borrowService) notifyPeer(ctx context.Context, peerID int64, requestID, status string) {
	peer, err := repository.NewPeerRepository(s.db).GetByID(ctx, peerID)
	if err != nil {
		s.logger.Warn("cannot resolve peer for status notify", "peer_id", peerID, "error", err)
		return
	}
	if err := s.transport.SendStatusUpdate(ctx, peer.URL, requestID, status); err != nil {
		s.logger.Warn("status notify failed", "peer", peer.Name, "request_id", requestID, "status", status, "error", err)
	}
}
