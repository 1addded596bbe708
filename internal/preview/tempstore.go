// Package preview hands out preview references for staged images. A
// reference is the path of a temp file holding the image bytes; terminals
// that can render images (or an external viewer) open it.
package preview

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/abelbrown/lens/internal/workflow"
)

// ErrUnknownRef is returned when releasing a reference the store does not
// hold, including one already released.
var ErrUnknownRef = errors.New("unknown or released preview reference")

// TempStore implements workflow.PreviewStore with temp files.
type TempStore struct {
	dir string

	mu   sync.Mutex
	live map[string]struct{}
}

// NewTempStore creates a store writing under dir. An empty dir uses the
// system temp directory.
func NewTempStore(dir string) (*TempStore, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create preview dir: %w", err)
	}
	return &TempStore{dir: dir, live: make(map[string]struct{})}, nil
}

// Acquire writes img to a new temp file and returns its path.
func (s *TempStore) Acquire(img workflow.Image) (string, error) {
	f, err := os.CreateTemp(s.dir, "lens-preview-*"+extension(img))
	if err != nil {
		return "", fmt.Errorf("create preview: %w", err)
	}
	ref := f.Name()
	if _, err := f.Write(img.Data); err != nil {
		f.Close()
		os.Remove(ref)
		return "", fmt.Errorf("write preview: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(ref)
		return "", fmt.Errorf("close preview: %w", err)
	}

	s.mu.Lock()
	s.live[ref] = struct{}{}
	s.mu.Unlock()
	return ref, nil
}

// Release deletes the file behind ref.
func (s *TempStore) Release(ref string) error {
	s.mu.Lock()
	_, ok := s.live[ref]
	delete(s.live, ref)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	}

	if err := os.Remove(ref); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove preview: %w", err)
	}
	return nil
}

// Live returns the number of unreleased references.
func (s *TempStore) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Close releases every reference still held.
func (s *TempStore) Close() error {
	s.mu.Lock()
	refs := make([]string, 0, len(s.live))
	for ref := range s.live {
		refs = append(refs, ref)
	}
	s.mu.Unlock()

	var errs []error
	for _, ref := range refs {
		if err := s.Release(ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func extension(img workflow.Image) string {
	if ext := filepath.Ext(img.Name); ext != "" && !strings.ContainsAny(ext, `/\*`) {
		return strings.ToLower(ext)
	}
	switch img.ContentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
