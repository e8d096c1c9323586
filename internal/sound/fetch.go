package sound

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Fetcher returns the raw bytes of a named sound asset.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// FetchError reports an asset that could not be retrieved.
type FetchError struct {
	Name   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.Name, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Name, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FSFetcher reads assets from an afero filesystem.
type FSFetcher struct {
	fs afero.Fs
}

// NewFSFetcher wraps an arbitrary afero filesystem.
func NewFSFetcher(fsys afero.Fs) *FSFetcher {
	return &FSFetcher{fs: fsys}
}

// EmbedFetcher serves the sounds compiled into the binary.
func EmbedFetcher() *FSFetcher {
	return NewFSFetcher(afero.FromIOFS{FS: EmbeddedAssets()})
}

// DirFetcher serves assets from a directory on disk, read-only.
func DirFetcher(dir string) *FSFetcher {
	return NewFSFetcher(afero.NewReadOnlyFs(afero.NewBasePathFs(afero.NewOsFs(), dir)))
}

// Fetch implements Fetcher.
func (f *FSFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Name: name, Err: err}
	}
	data, err := afero.ReadFile(f.fs, name)
	if err != nil {
		return nil, &FetchError{Name: name, Err: err}
	}
	return data, nil
}

// HTTPFetcher downloads assets relative to a base URL.
type HTTPFetcher struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPFetcher parses base and returns a fetcher using client, or a
// client with a 10s timeout when nil.
func NewHTTPFetcher(base string, client *http.Client) (*HTTPFetcher, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid asset URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid asset URL %q: scheme must be http or https", base)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPFetcher{base: u, client: client}, nil
}

// Fetch implements Fetcher. Any non-2xx status is an error.
func (f *HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	u := *f.base
	u.Path = path.Join(u.Path, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &FetchError{Name: name, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Name: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Name: name, Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Name: name, Err: err}
	}
	return data, nil
}

// NewFetcher picks a fetcher for an assets location: empty means the
// embedded sounds, an http(s) URL means HTTPFetcher, anything else is a
// directory.
func NewFetcher(location string) (Fetcher, error) {
	switch {
	case location == "":
		return EmbedFetcher(), nil
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPFetcher(location, nil)
	default:
		return DirFetcher(location), nil
	}
}
