package docx

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"
)

// ErrFetchStatus is returned by HTTPFetcher for non-2xx responses.
var ErrFetchStatus = errors.New("unexpected response status")

// maxAssetSize bounds a single fetched asset.
const maxAssetSize = 32 << 20

// Asset is one fetched file.
type Asset struct {
	Body []byte
	ETag string
	// NotModified is set when the fetcher confirmed the ETag passed in.
	NotModified bool
}

// Fetcher loads formpack assets by slash-separated path, e.g.
// "notfallpass/docx/mapping.json". A non-empty etag asks for a conditional
// load.
type Fetcher interface {
	Fetch(ctx context.Context, path, etag string) (*Asset, error)
}

// ResolveAssetPath joins a path relative to a formpack. Absolute paths,
// parent segments, backslashes and URL schemes are rejected.
func ResolveAssetPath(formpackID, rel string) (string, error) {
	for _, p := range []string{formpackID, rel} {
		if unsafePath(p) {
			return "", &StageError{Stage: StagePath, Path: p, Err: ErrUnsafePath}
		}
	}
	if strings.Contains(formpackID, "/") {
		return "", &StageError{Stage: StagePath, Path: formpackID, Err: ErrUnsafePath}
	}
	return path.Join(formpackID, rel), nil
}

func unsafePath(p string) bool {
	if strings.TrimSpace(p) == "" || strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return true
	}
	if strings.Contains(p, ":") {
		return true
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." || seg == "." {
			return true
		}
	}
	return false
}

// ETagOf returns the weak ETag used for locally served assets.
func ETagOf(body []byte) string {
	return fmt.Sprintf(`W/"%x"`, md5.Sum(body))
}

// FSFetcher reads assets from a file system: the embedded bundle or a
// directory via os.DirFS.
type FSFetcher struct {
	FS fs.FS
}

func (f FSFetcher) Fetch(_ context.Context, p, etag string) (*Asset, error) {
	body, err := fs.ReadFile(f.FS, p)
	if err != nil {
		return nil, err
	}
	tag := ETagOf(body)
	if etag != "" && etag == tag {
		return &Asset{ETag: tag, NotModified: true}, nil
	}
	return &Asset{Body: body, ETag: tag}, nil
}

// HTTPFetcher loads assets from an asset host.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
	maxSize int64
}

// HTTPFetcherOption configures an HTTPFetcher.
type HTTPFetcherOption func(*HTTPFetcher)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithMaxAssetSize bounds the bytes read per asset. Larger responses fail.
func WithMaxAssetSize(n int64) HTTPFetcherOption {
	return func(f *HTTPFetcher) {
		if n > 0 {
			f.maxSize = n
		}
	}
}

// NewHTTPFetcher creates a fetcher for assets under baseURL.
func NewHTTPFetcher(baseURL string, opts ...HTTPFetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
		maxSize: maxAssetSize,
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, p, etag string) (*Asset, error) {
	url := f.baseURL + "/" + p
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &Asset{ETag: etag, NotModified: true}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: %d", ErrFetchStatus, url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > f.maxSize {
		return nil, fmt.Errorf("read %s: asset exceeds %d bytes", url, f.maxSize)
	}
	return &Asset{Body: body, ETag: resp.Header.Get("ETag")}, nil
}
