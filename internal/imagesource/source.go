// Package imagesource loads the working image from a local path or an
// s3://bucket/key object.
package imagesource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/abelbrown/lens/internal/logging"
	"github.com/abelbrown/lens/internal/workflow"
)

// MaxBytes is the largest image accepted.
const MaxBytes = 20 << 20

var (
	ErrEmpty           = errors.New("image is empty")
	ErrTooLarge        = fmt.Errorf("image is larger than %d MiB", MaxBytes>>20)
	ErrNotImage        = errors.New("not an image")
	ErrIsDir           = errors.New("is a directory")
	ErrS3NotConfigured = errors.New("s3 storage is not configured")
)

// ObjectReader reads one object. Implemented by S3Reader.
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, key string, limit int64) ([]byte, error)
}

// Loader resolves image references.
type Loader struct {
	objects ObjectReader
}

// NewLoader creates a Loader. objects may be nil; s3:// refs then fail with
// ErrS3NotConfigured.
func NewLoader(objects ObjectReader) *Loader {
	return &Loader{objects: objects}
}

// Load reads ref and checks that it is a non-empty image within MaxBytes.
func (l *Loader) Load(ctx context.Context, ref string) (workflow.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return workflow.Image{}, errors.New("empty image reference")
	}

	var (
		name string
		data []byte
		err  error
	)
	if bucket, key, ok := ParseS3(ref); ok {
		name = path.Base(key)
		data, err = l.loadObject(ctx, bucket, key)
	} else {
		p := expandHome(ref)
		name = filepath.Base(p)
		data, err = loadFile(p)
	}
	if err != nil {
		return workflow.Image{}, fmt.Errorf("%s: %w", ref, err)
	}

	ct, err := sniff(data)
	if err != nil {
		return workflow.Image{}, fmt.Errorf("%s: %w", ref, err)
	}
	logging.Debug("image loaded", "ref", ref, "bytes", len(data), "type", ct)
	return workflow.Image{Name: name, ContentType: ct, Data: data}, nil
}

// ParseS3 splits "s3://bucket/key". ok is false for anything else.
func ParseS3(ref string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(ref, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

func (l *Loader) loadObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if l.objects == nil {
		return nil, ErrS3NotConfigured
	}
	data, err := l.objects.ReadObject(ctx, bucket, key, MaxBytes+1)
	if err != nil {
		return nil, err
	}
	return checkSize(data)
}

func loadFile(p string) ([]byte, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrIsDir
	}
	if info.Size() > MaxBytes {
		return nil, ErrTooLarge
	}

	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return checkSize(data)
}

func checkSize(data []byte) ([]byte, error) {
	switch {
	case len(data) == 0:
		return nil, ErrEmpty
	case len(data) > MaxBytes:
		return nil, ErrTooLarge
	}
	return data, nil
}

// sniff returns the detected content type, which must be image/*.
func sniff(data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%w (detected %s)", ErrNotImage, ct)
	}
	return ct, nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
