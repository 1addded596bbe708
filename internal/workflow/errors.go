package workflow

import "errors"

var (
	// ErrNoImageStaged is returned by BeginDetect when the image slot is empty.
	ErrNoImageStaged = errors.New("workflow: no image staged")

	// ErrDetectInFlight rejects a second detect while one is outstanding.
	ErrDetectInFlight = errors.New("workflow: detection already in progress")

	// ErrAskInFlight rejects a second ask while one is outstanding.
	ErrAskInFlight = errors.New("workflow: question already pending")

	// ErrEmptyQuestion rejects a blank question.
	ErrEmptyQuestion = errors.New("workflow: question is empty")

	// ErrNoResults rejects an ask before any detection has succeeded for the
	// current image. A successful detection with zero objects is fine.
	ErrNoResults = errors.New("workflow: no detection results for current image")

	// ErrStaleResponse marks a response that belongs to an older generation.
	// It is dropped without touching state and never shown to the user.
	ErrStaleResponse = errors.New("workflow: stale response discarded")

	// ErrUnknownSortKey is returned by ParseSortKey.
	ErrUnknownSortKey = errors.New("unknown sort key")

	// ErrDetectionFailed wraps any error from the detection service.
	ErrDetectionFailed = errors.New("detection failed")

	// ErrAskFailed wraps any error from the QA service.
	ErrAskFailed = errors.New("chat failed")
)

// Notices shown to the user for remote failures.
const (
	noticeDetectFailed = "Detection failed."
	noticeAskFailed    = "Chat failed."
)
