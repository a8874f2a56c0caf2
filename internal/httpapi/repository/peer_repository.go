package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/apperr"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

type PeerRepository interface {
	Create(ctx context.Context, peer *models.Peer) error
	GetByID(ctx context.Context, id int64) (*models.Peer, error)
	GetByURL(ctx context.Context, url string) (*models.Peer, error)
	List(ctx context.Context) ([]models.Peer, error)
	Update(ctx context.Context, peer *models.Peer) error
	TouchLastSeen(ctx context.Context, id int64, at time.Time) error
	Delete(ctx context.Context, id int64) error
}

type peerRepository struct {
	db *gorm.DB
}

func NewPeerRepository(db *gorm.DB) PeerRepository {
	return &peerRepository{db: db}
}

func (r *peerRepository) Create(ctx context.Context, peer *models.Peer) error {
	if err := r.db.WithContext(ctx).Create(peer).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *peerRepository) GetByID(ctx context.Context, id int64) (*models.Peer, error) {
	var peer models.Peer
	if err := r.db.WithContext(ctx).First(&peer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Peer not found")
		}
		return nil, apperr.Database(err)
	}
	return &peer, nil
}

func (r *peerRepository) GetByURL(ctx context.Context, url string) (*models.Peer, error) {
	var peer models.Peer
	if err := r.db.WithContext(ctx).Where("url = ?", url).First(&peer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Peer not found")
		}
		return nil, apperr.Database(err)
	}
	return &peer, nil
}

func (r *peerRepository) List(ctx context.Context) ([]models.Peer, error) {
	var peers []models.Peer
	if err := r.db.WithContext(ctx).Order("name").Find(&peers).Error; err != nil {
		return nil, apperr.Database(err)
	}
	return peers, nil
}

func (r *peerRepository) Update(ctx context.Context, peer *models.Peer) error {
	if err := r.db.WithContext(ctx).Save(peer).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *peerRepository) TouchLastSeen(ctx context.Context, id int64, at time.Time) error {
	if err := r.db.WithContext(ctx).Model(&models.Peer{}).
		Where("id = ?", id).
		Update("last_seen", at).Error; err != nil {
		return apperr.Database(err)
	}
	return nil
}

func (r *peerRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Peer{}, id)
	if result.Error != nil {
		return apperr.Database(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Peer not found")
	}
	return nil
}
