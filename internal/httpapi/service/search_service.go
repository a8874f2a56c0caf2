package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bibliogenius/bibliogenius-sub000/internal/cache"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/models"
	"github.com/bibliogenius/bibliogenius-sub000/internal/httpapi/repository"
	"github.com/bibliogenius/bibliogenius-sub000/internal/search"
)

const defaultSearchLimit = 20

// Source names accepted in a search request.
const (
	SourceLocal  = "local"
	SourcePublic = "public"
	SourcePeers  = "peers"
)

// SearchService fans a query out across the local catalog, public book APIs
// and registered peers, merging whatever comes back. A slow or failing
// source costs its own results, never the whole search.
type SearchService interface {
	Search(ctx context.Context, query string, sources []string, limit int) ([]search.Result, error)
	// ProxySearch answers a remote peer's query from the local catalog only,
	// so a federated query cannot cascade through the network.
	ProxySearch(ctx context.Context, query string, limit int) ([]search.Result, error)
}

type searchService struct {
	db          *gorm.DB
	transport   PeerTransport
	cache       *cache.SearchCache
	logger      *slog.Logger
	peerTimeout time.Duration

	// publicFetch is swappable in tests to avoid real HTTP calls.
	publicFetch func(ctx context.Context, query string, limit int) []search.Result
}

func NewSearchService(db *gorm.DB, transport PeerTransport, searchCache *cache.SearchCache, peerTimeout time.Duration, logger *slog.Logger) SearchService {
	return &searchService{
		db:          db,
		transport:   transport,
		cache:       searchCache,
		logger:      logger,
		peerTimeout: peerTimeout,
		publicFetch: search.FetchPublicSources,
	}
}

func (s *searchService) Search(ctx context.Context, query string, sources []string, limit int) ([]search.Result, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if len(sources) == 0 {
		sources = []string{SourceLocal, SourcePublic, SourcePeers}
	}

	key := cacheKey(query, sources, limit)
	var cached []search.Result
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	type batch struct {
		items []search.Result
	}
	var pending int
	ch := make(chan batch)

	for _, source := range sources {
		switch source {
		case SourceLocal:
			pending++
			go func() {
				items, err := s.searchLocal(ctx, query, limit)
				if err != nil {
					s.logger.Warn("local search failed", "error", err)
				}
				ch <- batch{items: items}
			}()

		case SourcePublic:
			pending++
			go func() {
				ch <- batch{items: s.publicFetch(ctx, query, limit)}
			}()

		case SourcePeers:
			peers, err := repository.NewPeerRepository(s.db).List(ctx)
			if err != nil {
				s.logger.Warn("cannot list peers for search", "error", err)
				continue
			}
			for _, peer := range peers {
				pending++
				go func(peer models.Peer) {
					ch <- batch{items: s.searchPeer(ctx, peer, query, limit)}
				}(peer)
			}

		default:
			s.logger.Warn("unknown search source ignored", "source", source)
		}
	}

	var merged []search.Result
	for i := 0; i < pending; i++ {
		merged = append(merged, (<-ch).items...)
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}

	s.cache.Set(ctx, key, merged)
	return merged, nil
}

func (s *searchService) ProxySearch(ctx context.Context, query string, limit int) ([]search.Result, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return s.searchLocal(ctx, query, limit)
}

func (s *searchService) searchLocal(ctx context.Context, query string, limit int) ([]search.Result, error) {
	books, err := repository.NewBookRepository(s.db).Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	results := make([]search.Result, 0, len(books))
	for _, b := range books {
		r := search.Result{Title: b.Title, Source: SourceLocal}
		if b.ISBN != nil {
			r.ISBN = *b.ISBN
		}
		if b.Author != nil {
			r.Author = *b.Author
		}
		if b.CoverURL != nil {
			r.CoverURL = *b.CoverURL
		}
		results = append(results, r)
	}
	return results, nil
}

// searchPeer queries one peer under its own deadline. Errors are logged and
// swallowed so a dead peer only loses its own slice of results.
func (s *searchService) searchPeer(ctx context.Context, peer models.Peer, query string, limit int) []search.Result {
	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	books, err := s.transport.SendSearch(ctx, peer.URL, query)
	if err != nil {
		s.logger.Warn("peer search failed", "peer", peer.Name, "error", err)
		return nil
	}

	if len(books) > limit {
		books = books[:limit]
	}
	results := make([]search.Result, 0, len(books))
	for _, b := range books {
		results = append(results, search.Result{
			Title:    b.Title,
			ISBN:     b.ISBN,
			Author:   b.Author,
			CoverURL: b.CoverURL,
			Source:   "peer:" + peer.Name,
		})
	}
	return results
}

func cacheKey(query string, sources []string, limit int) string {
	return fmt.Sprintf("%s|%s|%d", strings.ToLower(query), strings.Join(sources, ","), limit)
}
