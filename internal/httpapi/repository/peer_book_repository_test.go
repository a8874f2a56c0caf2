package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
)

func seedPeer(t *testing.T, db *gorm.DB, name, url string) *models.Peer {
	t.Helper()
	peer := &models.Peer{Name: name, URL: url}
	require.NoError(t, db.Create(peer).Error)
	return peer
}

func TestPeerBookReplaceForPeer(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example")
	other := seedPeer(t, db, "bob", "http://bob.example")
	repo := NewPeerBookRepository(db)
	ctx := context.Background()

	now := time.Now()
	first := []models.PeerBook{
		{PeerID: peer.ID, RemoteBookID: 1, Title: "Dune", SyncedAt: now},
		{PeerID: peer.ID, RemoteBookID: 2, Title: "Hyperion", SyncedAt: now},
	}
	require.NoError(t, repo.ReplaceForPeer(ctx, peer.ID, first))

	otherBooks := []models.PeerBook{
		{PeerID: other.ID, RemoteBookID: 7, Title: "Solaris", SyncedAt: now},
	}
	require.NoError(t, repo.ReplaceForPeer(ctx, other.ID, otherBooks))

	// A later sync replaces the whole slice, including titles that vanished
	// from the remote catalog.
	second := []models.PeerBook{
		{PeerID: peer.ID, RemoteBookID: 2, Title: "Hyperion", SyncedAt: now},
		{PeerID: peer.ID, RemoteBookID: 3, Title: "Ubik", SyncedAt: now},
	}
	require.NoError(t, repo.ReplaceForPeer(ctx, peer.ID, second))

	books, err := repo.ListByPeer(ctx, peer.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	titles := []string{books[0].Title, books[1].Title}
	assert.ElementsMatch(t, []string{"Hyperion", "Ubik"}, titles)

	// The other peer's replica is untouched.
	books, err = repo.ListByPeer(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Solaris", books[0].Title)
}

func TestPeerBookReplaceWithEmptyCatalog(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example")
	repo := NewPeerBookRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceForPeer(ctx, peer.ID, []models.PeerBook{
		{PeerID: peer.ID, RemoteBookID: 1, Title: "Dune", SyncedAt: time.Now()},
	}))
	require.NoError(t, repo.ReplaceForPeer(ctx, peer.ID, nil))

	books, err := repo.ListByPeer(ctx, peer.ID)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestPeerBooksDeletedWithPeer(t *testing.T) {
	db := setupTestDB(t)
	peer := seedPeer(t, db, "alice", "http://alice.example")
	repo := NewPeerBookRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceForPeer(ctx, peer.ID, []models.PeerBook{
		{PeerID: peer.ID, RemoteBookID: 1, Title: "Dune", SyncedAt: time.Now()},
	}))
	require.NoError(t, NewPeerRepository(db).Delete(ctx, peer.ID))

	books, err := repo.ListByPeer(ctx, peer.ID)
	require.NoError(t, err)
	assert.Empty(t, books)
}
