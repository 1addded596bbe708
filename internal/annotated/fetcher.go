// Package annotated downloads the server-rendered annotated images and
// keeps recent ones in memory.
package annotated

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/abelbrown/lens/internal/logging"
)

// DefaultCacheEntries bounds the cache when the config gives no size.
const DefaultCacheEntries = 16

// Downloader fetches a reference with the session's credentials.
// *api.Client implements it.
type Downloader interface {
	Download(ctx context.Context, ref string) ([]byte, string, error)
}

// Image is one downloaded annotated image.
type Image struct {
	Ref         string
	ContentType string
	Data        []byte
}

// Fetcher downloads annotated images through an LRU cache.
type Fetcher struct {
	dl    Downloader
	cache *lru.Cache[string, Image]
}

// NewFetcher creates a Fetcher caching up to entries images.
func NewFetcher(dl Downloader, entries int) (*Fetcher, error) {
	if entries <= 0 {
		entries = DefaultCacheEntries
	}
	cache, err := lru.New[string, Image](entries)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Fetcher{dl: dl, cache: cache}, nil
}

// Fetch returns the image for ref, downloading it on a cache miss.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (Image, error) {
	if ref == "" {
		return Image{}, errors.New("no annotated image")
	}
	if img, ok := f.cache.Get(ref); ok {
		return img, nil
	}

	data, ct, err := f.dl.Download(ctx, ref)
	if err != nil {
		return Image{}, fmt.Errorf("download annotated image: %w", err)
	}
	if len(data) == 0 {
		return Image{}, errors.New("download annotated image: empty body")
	}
	img := Image{Ref: ref, ContentType: ct, Data: data}
	f.cache.Add(ref, img)
	logging.Debug("annotated image fetched", "url", ref, "bytes", len(data))
	return img, nil
}

// Save writes the image for ref into dir and returns the file path. The
// file name is taken from the reference.
func (f *Fetcher) Save(ctx context.Context, ref, dir string) (string, error) {
	img, err := f.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	dst := filepath.Join(dir, FileName(ref))
	if err := os.WriteFile(dst, img.Data, 0o644); err != nil {
		return "", fmt.Errorf("write annotated image: %w", err)
	}
	return dst, nil
}

// Len returns the number of cached images.
func (f *Fetcher) Len() int {
	return f.cache.Len()
}

// FileName derives a local file name from an image reference.
func FileName(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "." || name == "/" || name == "" {
		return "annotated.jpg"
	}
	if !strings.HasPrefix(name, "annotated") {
		name = "annotated_" + name
	}
	return name
}
