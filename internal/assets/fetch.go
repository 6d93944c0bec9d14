package assets

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Fetcher retrieves the bytes of one asset path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// DefaultUserAgent is sent by HTTPFetcher when none is configured.
const DefaultUserAgent = "simscene/1.0"

// HTTPFetcher fetches assets relative to a base URL.
type HTTPFetcher struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
}

// NewHTTPFetcher creates a fetcher with its own client and timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL:   baseURL,
		UserAgent: DefaultUserAgent,
		Client:    &http.Client{Timeout: timeout},
	}
}

// URL returns the absolute URL of path.
func (f *HTTPFetcher) URL(path string) (string, error) {
	base, err := url.Parse(strings.TrimSuffix(f.BaseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parsing base url %q: %w", f.BaseURL, err)
	}
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("parsing asset path %q: %w", path, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Fetch downloads path. Any non-200 status is an ErrFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	u, err := f.URL(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", path, err)
	}
	ua := f.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, path, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrFetch, path, err)
	}
	return data, nil
}

// DirFetcher reads assets from a filesystem, typically a local checkout
// of the asset tree.
type DirFetcher struct {
	FS fs.FS
}

// Fetch implements Fetcher.
func (f DirFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(f.FS, strings.TrimPrefix(p, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, p, err)
	}
	return data, nil
}

// NewFetcher picks a fetcher for base: file:// URLs and plain paths read
// from disk, anything else goes over HTTP.
func NewFetcher(base string, timeout time.Duration, userAgent string) Fetcher {
	if dir, ok := strings.CutPrefix(base, "file://"); ok {
		return DirFetcher{FS: os.DirFS(dir)}
	}
	if !strings.Contains(base, "://") {
		return DirFetcher{FS: os.DirFS(base)}
	}
	f := NewHTTPFetcher(base, timeout)
	if userAgent != "" {
		f.UserAgent = userAgent
	}
	return f
}
