package service

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/dto"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/repository"
)

// PeerService manages the peer registry and the replicated catalog cache.
type PeerService interface {
	Create(ctx context.Context, req dto.CreatePeerRequest) (*models.Peer, error)
	GetByID(ctx context.Context, id int64) (*models.Peer, error)
	List(ctx context.Context) ([]models.Peer, error)
	Update(ctx context.Context, id int64, req dto.UpdatePeerRequest) (*models.Peer, error)
	Delete(ctx context.Context, id int64) error

	// Sync pulls the peer's full catalog and replaces the local replica.
	Sync(ctx context.Context, id int64) (int, error)
	Books(ctx context.Context, id int64) ([]models.PeerBook, error)
}

type peerService struct {
	db        *gorm.DB
	transport PeerTransport
	logger    *slog.Logger
	now       func() time.Time
}

func NewPeerService(db *gorm.DB, transport PeerTransport, logger *slog.Logger) PeerService {
	return &peerService{db: db, transport: transport, logger: logger, now: time.Now}
}

func (s *peerService) Create(ctx context.Context, req dto.CreatePeerRequest) (*models.Peer, error) {
	peers := repository.NewPeerRepository(s.db)

	if _, err := peers.GetByURL(ctx, req.URL); err == nil {
		return nil, apperr.InvalidState("Peer with URL %s already registered", req.URL)
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	peer := &models.Peer{
		Name:        req.Name,
		URL:         req.URL,
		PublicKey:   req.PublicKey,
		AutoApprove: req.AutoApprove,
	}
	if err := peers.Create(ctx, peer); err != nil {
		return nil, err
	}
	return peer, nil
}

func (s *peerService) GetByID(ctx context.Context, id int64) (*models.Peer, error) {
	return repository.NewPeerRepository(s.db).GetByID(ctx, id)
}

func (s *peerService) List(ctx context.Context) ([]models.Peer, error) {
	return repository.NewPeerRepository(s.db).List(ctx)
}

func (s *peerService) Update(ctx context.Context, id int64, req dto.UpdatePeerRequest) (*models.Peer, error) {
	peers := repository.NewPeerRepository(s.db)

	peer, err := peers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		peer.Name = *req.Name
	}
	if req.URL != nil {
		peer.URL = *req.URL
	}
	if req.PublicKey != nil {
		peer.PublicKey = req.PublicKey
	}
	if req.AutoApprove != nil {
		peer.AutoApprove = *req.AutoApprove
	}
	if err := peers.Update(ctx, peer); err != nil {
		return nil, err
	}
	return peer, nil
}

func (s *peerService) Delete(ctx context.Context, id int64) error {
	return repository.NewPeerRepository(s.db).Delete(ctx, id)
}

// Sync fetches the peer's catalog and swaps the cached replica in one
// transaction. On fetch failure the existing replica stays untouched.
func (s *peerService) Sync(ctx context.Context, id int64) (int, error) {
	peers := repository.NewPeerRepository(s.db)

	peer, err := peers.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	catalog, err := s.transport.FetchCatalog(ctx, peer.URL)
	if err != nil {
		return 0, apperr.External("Failed to fetch catalog from peer", err)
	}

	syncedAt := s.now()
	entries := make([]models.PeerBook, 0, len(catalog))
	for _, b := range catalog {
		entry := models.PeerBook{
			PeerID:       peer.ID,
			RemoteBookID: b.ID,
			Title:        b.Title,
			SyncedAt:     syncedAt,
		}
		if b.ISBN != "" {
			isbn := b.ISBN
			entry.ISBN = &isbn
		}
		if b.Author != "" {
			author := b.Author
			entry.Author = &author
		}
		if b.CoverURL != "" {
			cover := b.CoverURL
			entry.CoverURL = &cover
		}
		entries = append(entries, entry)
	}

	if err := repository.NewPeerBookRepository(s.db).ReplaceForPeer(ctx, peer.ID, entries); err != nil {
		return 0, err
	}
	if err := peers.TouchLastSeen(ctx, peer.ID, syncedAt); err != nil {
		s.logger.Warn("failed to record peer sync time", "peer", peer.Name, "error", err)
	}

	s.logger.Info("peer catalog synced", "peer", peer.Name, "books", len(entries))
	return len(entries), nil
}

func (s *peerService) Books(ctx context.Context, id int64) ([]models.PeerBook, error) {
	if _, err := repository.NewPeerRepository(s.db).GetByID(ctx, id); err != nil {
		return nil, err
	}
	return repository.NewPeerBookRepository(s.db).ListByPeer(ctx, id)
}
