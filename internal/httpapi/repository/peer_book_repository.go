package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

type PeerBookRepository interface {
	// ReplaceForPeer drops every cached row for the peer and inserts the
	// fresh list in one transaction. Full replace, never a merge: entries
	// that disappeared from the remote catalog must not linger.
	ReplaceForPeer(ctx context.Context, peerID int64, entries []models.PeerBook) error
	ListByPeer(ctx context.Context, peerID int64) ([]models.PeerBook, error)
}

type peerBookRepository struct {
	db *gorm.DB
}

func NewPeerBookRepository(db *gorm.DB) PeerBookRepository {
	return &peerBookRepository{db: db}
}

func (r *peerBookRepository) ReplaceForPeer(ctx context.Context, peerID int64, entries []models.PeerBook) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("peer_id = ?", peerID).Delete(&models.PeerBook{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *peerBookRepository) ListByPeer(ctx context.Context, peerID int64) ([]models.PeerBook, error) {
	var books []models.PeerBook
	if err := r.db.WithContext(ctx).
		Where("peer_id = ?", peerID).
		Order("title").
		Find(&books).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return books, nil
}
