package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Result is a simplified book representation unified across providers.
type Result struct {
	Title    string `json:"title"`
	ISBN     string `json:"isbn,omitempty"`
	Author   string `json:"author,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
	Source   string `json:"source"`
}

// FetchPublicSources queries Open Library and Google Books concurrently and
// returns up to `limit` results. It is best-effort: failures from one source
// do not abort others.
func FetchPublicSources(ctx context.Context, query string, limit int) []Result {
	if limit <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()

	type result struct {
		items []Result
	}
	ch := make(chan result, 2)

	go func() { ch <- result{items: searchOpenLibrary(ctx, query, limit)} }()
	go func() { ch <- result{items: searchGoogleBooks(ctx, query, limit)} }()

	var merged []Result
outer:
	for i := 0; i < 2; i++ {
		select {
		case r := <-ch:
			merged = append(merged, r.items...)
		case <-ctx.Done():
			// timeout; stop early
			break outer
		}
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// ------------- Open Library -------------
const openLibraryEndpoint = "https://openlibrary.org/search.json"

func searchOpenLibrary(ctx context.Context, query string, limit int) []Result {
	u := fmt.Sprintf("%s?q=%s&limit=%d", openLibraryEndpoint, url.QueryEscape(query), minInt(limit, 10))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var parsed struct {
		Docs []struct {
			Title      string   `json:"title"`
			AuthorName []string `json:"author_name"`
			ISBN       []string `json:"isbn"`
			CoverI     int64    `json:"cover_i"`
		} `json:"docs"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return nil
	}
	var out []Result
	for _, d := range parsed.Docs {
		r := Result{
			Title:  d.Title,
			Author: strings.Join(d.AuthorName, ", "),
			Source: "openlibrary",
		}
		if len(d.ISBN) > 0 {
			r.ISBN = d.ISBN[0]
		}
		if d.CoverI != 0 {
			r.CoverURL = fmt.Sprintf("https://covers.openlibrary.org/b/id/%d-M.jpg", d.CoverI)
		}
		out = append(out, r)
	}
	return out
}

// ------------- Google Books -------------
const googleBooksEndpoint = "https://www.googleapis.com/books/v1/volumes"

func searchGoogleBooks(ctx context.Context, query string, limit int) []Result {
	u := fmt.Sprintf("%s?q=%s&maxResults=%d", googleBooksEndpoint, url.QueryEscape(query), minInt(limit, 10))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	var parsed struct {
		Items []struct {
			VolumeInfo struct {
				Title               string   `json:"title"`
				Authors             []string `json:"authors"`
				IndustryIdentifiers []struct {
					Type       string `json:"type"`
					Identifier string `json:"identifier"`
				} `json:"industryIdentifiers"`
				ImageLinks struct {
					Thumbnail string `json:"thumbnail"`
				} `json:"imageLinks"`
			} `json:"volumeInfo"`
		} `json:"items"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return nil
	}
	var out []Result
	for _, item := range parsed.Items {
		vi := item.VolumeInfo
		r := Result{
			Title:    vi.Title,
			Author:   strings.Join(vi.Authors, ", "),
			CoverURL: vi.ImageLinks.Thumbnail,
			Source:   "googlebooks",
		}
		for _, id := range vi.IndustryIdentifiers {
			if id.Type == "ISBN_13" || id.Type == "ISBN_10" {
				r.ISBN = id.Identifier
				break
			}
		}
		out = append(out, r)
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
