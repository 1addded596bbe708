// Package otel records structured events for lens.
//
// Events are typed structs written as JSONL lines by an async Logger. A
// RingBuffer can be attached to keep the most recent events in memory for
// the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level is the event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind is "<subsystem>.<action>".
type EventKind string

const (
	// Image slot
	KindImageStaged  EventKind = "image.staged"
	KindImageCleared EventKind = "image.cleared"
	KindImageError   EventKind = "image.error"

	// Remote calls
	KindDetectStart    EventKind = "detect.start"
	KindDetectComplete EventKind = "detect.complete"
	KindDetectError    EventKind = "detect.error"
	KindAskStart       EventKind = "ask.start"
	KindAskComplete    EventKind = "ask.complete"
	KindAskError       EventKind = "ask.error"
	KindStale          EventKind = "response.stale"

	// View
	KindSortChanged EventKind = "sort.changed"
	KindSaved       EventKind = "annotated.saved"

	// Accounts
	KindLogin  EventKind = "auth.login"
	KindLogout EventKind = "auth.logout"
	KindSignup EventKind = "auth.signup"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Message tracing, only with LENS_TRACE set
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is one observability record. Only Kind is required; Time is filled
// in by the Logger.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"` // "workflow", "ui", "api", "main"
	SessionID string         `json:"session_id,omitempty"`
	Gen       uint64         `json:"gen,omitempty"` // controller generation
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	Query     string         `json:"query,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON writes Dur as dur_ms.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
