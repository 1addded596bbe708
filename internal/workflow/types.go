// Package workflow holds the detection-and-QA state machine.
//
// A Controller owns the working image, the detection results for that image,
// and the conversation about those results. It is not safe for concurrent
// use: callers drive it from a single goroutine (the Bubble Tea Update loop
// or a CLI main). The two remote calls are split into Begin/Finish halves so
// the blocking part can run elsewhere while state changes stay on that one
// goroutine.
package workflow

import "context"

// Image is a user-selected image file.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// Detection is one recognised object. Immutable once received.
type Detection struct {
	Class      string     `json:"class"`
	Confidence float64    `json:"confidence"`
	BBox       [4]float64 `json:"bbox"` // x1, y1, x2, y2
}

// DetectionResult is what the detection service returns for one image.
type DetectionResult struct {
	AnnotatedRef string
	Detections   []Detection
}

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in the conversation transcript.
type Turn struct {
	Role Role
	Text string
}

// Detector runs object detection on an image.
type Detector interface {
	Detect(ctx context.Context, img Image) (DetectionResult, error)
}

// Answerer answers a question in the context of a detection list.
type Answerer interface {
	Ask(ctx context.Context, question string, detections []Detection) (string, error)
}

// PreviewStore hands out revocable references used to render a staged image.
type PreviewStore interface {
	Acquire(img Image) (string, error)
	Release(ref string) error
}

// State is the coarse controller state. Asking is tracked separately since
// it overlays Detected rather than replacing it.
type State int

const (
	StateIdle State = iota
	StateImageStaged
	StateDetecting
	StateDetected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateImageStaged:
		return "staged"
	case StateDetecting:
		return "detecting"
	case StateDetected:
		return "detected"
	default:
		return "unknown"
	}
}
