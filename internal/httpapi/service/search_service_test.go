package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/cache"
	"github.com/bibliogenius/bibliogenius-sub000/internal/peerclient"
	"github.com/bibliogenius/bibliogenius-sub000/internal/search"
)

func newSearchService(t *testing.T, db *gorm.DB, transport PeerTransport, peerTimeout time.Duration) *searchService {
	t.Helper()
	noopCache, err := cache.NewSearchCache("", time.Minute)
	require.NoError(t, err)
	svc := NewSearchService(db, transport, noopCache, peerTimeout, testLogger()).(*searchService)
	svc.publicFetch = func(ctx context.Context, query string, limit int) []search.Result {
		return nil
	}
	return svc
}

func TestSearchLocalOnly(t *testing.T) {
	db := setupTestDB(t)
	seedBook(t, db, "Dune", "9780441172719")
	seedBook(t, db, "Hyperion", "")
	svc := newSearchService(t, db, &fakeTransport{}, time.Second)

	results, err := svc.Search(context.Background(), "dune", []string{SourceLocal}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Dune", results[0].Title)
	assert.Equal(t, SourceLocal, results[0].Source)
}

func TestSearchMergesPeerResults(t *testing.T) {
	db := setupTestDB(t)
	seedBook(t, db, "Dune", "")
	seedPeer(t, db, "alice", "http://alice.example", false)
	seedPeer(t, db, "bob", "http://bob.example", false)
	transport := &fakeTransport{searchResults: map[string][]peerclient.BookSummary{
		"http://alice.example": {{Title: "Dune Messiah"}},
		"http://bob.example":   {{Title: "Children of Dune"}},
	}}
	svc := newSearchService(t, db, transport, time.Second)

	results, err := svc.Search(context.Background(), "dune", []string{SourceLocal, SourcePeers}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	sources := make(map[string]int)
	for _, r := range results {
		sources[r.Source]++
	}
	assert.Equal(t, 1, sources[SourceLocal])
	assert.Equal(t, 1, sources["peer:alice"])
	assert.Equal(t, 1, sources["peer:bob"])
}

// A failing peer loses only its own slice of the results.
func TestSearchToleratesPeerFailure(t *testing.T) {
	db := setupTestDB(t)
	seedBook(t, db, "Dune", "")
	seedPeer(t, db, "alice", "http://alice.example", false)
	transport := &fakeTransport{searchErr: errors.New("connection refused")}
	svc := newSearchService(t, db, transport, time.Second)

	results, err := svc.Search(context.Background(), "dune", []string{SourceLocal, SourcePeers}, 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceLocal, results[0].Source)
}

// A hung peer is bounded by the per-peer deadline, not the caller's patience.
func TestSearchBoundsHungPeer(t *testing.T) {
	db := setupTestDB(t)
	seedBook(t, db, "Dune", "")
	seedPeer(t, db, "alice", "http://alice.example", false)
	transport := &fakeTransport{
		searchDelay: func(ctx context.Context) { <-ctx.Done() },
		searchErr:   errors.New("deadline"),
	}
	svc := newSearchService(t, db, transport, 50*time.Millisecond)

	start := time.Now()
	results, err := svc.Search(context.Background(), "dune", []string{SourceLocal, SourcePeers}, 10)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, results, 1)
	assert.Equal(t, SourceLocal, results[0].Source)
}

func TestSearchHungPeerDropsOnlyItsResults(t *testing.T) {
	db := setupTestDB(t)
	seedBook(t, db, "Dune", "")
	seedPeer(t, db, "alice", "http://alice.example", false)
	seedPeer(t, db, "bob", "http://bob.example", false)
	transport := &fakeTransport{
		searchResults: map[string][]peerclient.BookSummary{
			"http://bob.example": {{Title: "Dune Messiah"}},
		},
		hangPeers: map[string]bool{"http://alice.example": true},
	}
	svc := newSearchService(t, db, transport, 50*time.Millisecond)

	results, err := svc.Search(context.Background(), "dune", []string{SourceLocal, SourcePeers}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	sources := make(map[string]int)
	for _, r := range results {
		sources[r.Source]++
	}
	assert.Equal(t, 1, sources[SourceLocal])
	assert.Equal(t, 1, sources["peer:bob"])
	assert.Zero(t, sources["peer:alice"])
}

func TestSearchAppliesLimit(t *testing.T) {
	db := setupTestDB(t)
	for _, title := range []string{"Dune", "Dune Messiah", "Children of Dune"} {
		seedBook(t, db, title, "")
	}
	svc := newSearchService(t, db, &fakeTransport{}, time.Second)

	results, err := svc.Search(context.Background(), "dune", []string{SourceLocal}, 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestProxySearchStaysLocal(t *testing.T) {
	db := setupTestDB(t)
	seedBook(t, db, "Dune", "")
	seedPeer(t, db, "alice", "http://alice.example", false)
	transport := &fakeTransport{searchResults: map[string][]peerclient.BookSummary{
		"http://alice.example": {{Title: "Dune Messiah"}},
	}}
	svc := newSearchService(t, db, transport, time.Second)

	results, err := svc.ProxySearch(context.Background(), "dune", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, SourceLocal, results[0].Source)
}
