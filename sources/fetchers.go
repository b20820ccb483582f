package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Dosada05/league-stats/storage"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	userAgent          = "league-stats/1.0"
	sheetsBaseURL      = "https://docs.google.com/spreadsheets/d/e/"
)

var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// NewFetcher returns the fetcher for cfg.Kind. store is only needed for KindR2.
func NewFetcher(cfg Config, store storage.ObjectStore) (Fetcher, error) {
	switch cfg.Kind {
	case KindLocal:
		return FileFetcher{}, nil
	case KindRemote:
		return NewHTTPFetcher(nil), nil
	case KindR2:
		if store == nil {
			return nil, errors.New("r2 source requires a configured object store")
		}
		return ObjectFetcher{Store: store}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

type FileFetcher struct{}

func (FileFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", location, err)
	}
	return f, nil
}

type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher uses client, or a client with a 30s timeout when nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &HTTPFetcher{client: client}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	url := ResolveURL(location)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, url, resp.StatusCode)
	}
	return resp.Body, nil
}

// ResolveURL expands a published Google Sheets key into its CSV export URL.
// http(s) locations are returned unchanged.
func ResolveURL(location string) string {
	location = strings.TrimSpace(location)
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return location
	}
	return sheetsBaseURL + location + "&single=true&output=csv"
}

type ObjectFetcher struct {
	Store storage.ObjectStore
}

func (f ObjectFetcher) Fetch(ctx context.Context, location string) (io.ReadCloser, error) {
	return f.Store.Download(ctx, location)
}
