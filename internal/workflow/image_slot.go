package workflow

import "fmt"

// imageSlot holds at most one working image plus its preview reference.
// A preview reference exists iff an image does.
type imageSlot struct {
	image   *Image
	preview string
}

func (s *imageSlot) empty() bool {
	return s.image == nil
}

// stage puts img in the slot. The previous preview is released before the
// new one is acquired. On acquire failure the slot is left empty.
func (s *imageSlot) stage(previews PreviewStore, img Image) error {
	releaseErr := s.clear(previews)

	ref, err := previews.Acquire(img)
	if err != nil {
		return fmt.Errorf("acquire preview: %w", err)
	}
	s.image = &img
	s.preview = ref
	return releaseErr
}

// clear releases the preview and empties the slot. Safe on an empty slot.
func (s *imageSlot) clear(previews PreviewStore) error {
	if s.image == nil {
		return nil
	}
	ref := s.preview
	s.image = nil
	s.preview = ""
	if err := previews.Release(ref); err != nil {
		return fmt.Errorf("release preview: %w", err)
	}
	return nil
}
