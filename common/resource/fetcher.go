// Package resource loads named resources for the guest and copies them into
// its memory.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// ErrNotFound is returned when the resource does not exist.
var ErrNotFound = errors.New("resource not found")

// Fetcher retrieves the bytes of a named resource.
type Fetcher interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// HTTPFetcher fetches names relative to Base with plain GET requests. There
// are no custom headers, retries or caching.
type HTTPFetcher struct {
	Base   *url.URL
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	ref, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", name, err)
	}
	u := ref
	if f.Base != nil {
		u = f.Base.ResolveReference(ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("request for %q failed with %q: %w", u, res.Status, ErrNotFound)
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

// FSFetcher reads resources from a file system.
type FSFetcher struct {
	FS fs.FS
}

// Fetch reads name, which is resolved like a URL path relative to the root of
// FS.
func (f FSFetcher) Fetch(ctx context.Context, name string) ([]byte, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	data, err := fs.ReadFile(f.FS, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", name, err)
	}
	return data, nil
}
