package preview

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abelbrown/lens/internal/workflow"
)

var _ workflow.PreviewStore = (*TempStore)(nil)

func TestAcquireWritesAndReleaseRemoves(t *testing.T) {
	s, err := NewTempStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewTempStore: %v", err)
	}

	ref, err := s.Acquire(workflow.Image{Name: "Cat.JPG", Data: []byte("jpeg")})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("ref = %q, want .jpg suffix", ref)
	}
	data, err := os.ReadFile(ref)
	if err != nil || string(data) != "jpeg" {
		t.Fatalf("preview contents = %q, %v", data, err)
	}
	if s.Live() != 1 {
		t.Errorf("Live() = %d", s.Live())
	}

	if err := s.Release(ref); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, err := os.Stat(ref); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("preview file still exists: %v", err)
	}
	if err := s.Release(ref); !errors.Is(err, ErrUnknownRef) {
		t.Errorf("double release err = %v, want ErrUnknownRef", err)
	}
}

func TestExtensionFromContentType(t *testing.T) {
	s, _ := NewTempStore(t.TempDir())
	ref, err := s.Acquire(workflow.Image{Name: "upload", ContentType: "image/png", Data: []byte("png")})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if filepath.Ext(ref) != ".png" {
		t.Errorf("ref = %q", ref)
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewTempStore(dir)
	for i := 0; i < 3; i++ {
		if _, err := s.Acquire(workflow.Image{Name: "a.png", Data: []byte{1}}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 || s.Live() != 0 {
		t.Errorf("left %d files, %d live refs", len(entries), s.Live())
	}
}

func TestControllerReleasesPreviewOnReplace(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewTempStore(dir)
	c := workflow.New(nil, nil, s)

	_ = c.SetImage(&workflow.Image{Name: "a.png", Data: []byte{1}})
	first := c.PreviewRef()
	_ = c.SetImage(&workflow.Image{Name: "b.png", Data: []byte{2}})

	if _, err := os.Stat(first); !errors.Is(err, os.ErrNotExist) {
		t.Error("replaced preview was not removed")
	}
	if s.Live() != 1 {
		t.Errorf("Live() = %d, want 1", s.Live())
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if s.Live() != 0 {
		t.Errorf("Live() = %d after clear", s.Live())
	}
}
