package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/lens/internal/otel"
)

const comp = "workflow"

// Controller owns the lifecycle image -> detections -> conversation.
//
// Every SetImage and Clear bumps a generation counter. Begin* captures the
// generation in a call ticket and Finish* drops the response when the
// counter has moved on.
type Controller struct {
	detector Detector
	answerer Answerer
	previews PreviewStore
	events   *otel.Logger

	slot      imageSlot
	results   resultSet
	chat      conversation
	directive SortDirective
	question  string
	notice    string

	generation uint64
	detecting  bool
	asking     bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithEventLogger routes controller events to l. Nil disables events.
func WithEventLogger(l *otel.Logger) Option {
	return func(c *Controller) { c.events = l }
}

// New creates a Controller in the Idle state.
func New(detector Detector, answerer Answerer, previews PreviewStore, opts ...Option) *Controller {
	if previews == nil {
		previews = noPreviews{}
	}
	c := &Controller{
		detector: detector,
		answerer: answerer,
		previews: previews,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetImage stages img, discarding the previous image, results and
// conversation. A nil or empty image is ignored.
func (c *Controller) SetImage(img *Image) error {
	if img == nil || len(img.Data) == 0 {
		return nil
	}
	c.resetAnalysis()
	err := c.slot.stage(c.previews, *img)
	if c.slot.empty() {
		c.emitError(otel.KindImageError, err)
		return err
	}
	c.emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindImageStaged,
		Msg:   img.Name,
		Count: len(img.Data),
	})
	// A failed release of the old preview does not block the new image.
	if err != nil {
		c.emitError(otel.KindImageError, err)
	}
	return nil
}

// Clear removes the image and everything derived from it. Clearing an empty
// controller is a no-op.
func (c *Controller) Clear() error {
	if c.slot.empty() {
		return nil
	}
	c.resetAnalysis()
	err := c.slot.clear(c.previews)
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindImageCleared})
	if err != nil {
		c.emitError(otel.KindImageError, err)
	}
	return err
}

// resetAnalysis starts a new generation and drops results, conversation and
// any in-flight bookkeeping. Outstanding responses become stale.
func (c *Controller) resetAnalysis() {
	c.generation++
	c.results.reset()
	c.chat.reset()
	c.detecting = false
	c.asking = false
	c.question = ""
	c.notice = ""
}

// SetSortDirective applies a column selection using the toggle rule.
func (c *Controller) SetSortDirective(key SortKey) SortDirective {
	c.directive = c.directive.Toggle(key)
	c.emit(otel.Event{
		Level: otel.LevelDebug,
		Kind:  otel.KindSortChanged,
		Msg:   c.directive.Key.String() + " " + c.directive.Direction.String(),
	})
	return c.directive
}

// ResetSort returns the view to canonical order.
func (c *Controller) ResetSort() {
	c.directive = SortDirective{}
}

// DetectCall is the ticket for one outstanding detection.
type DetectCall struct {
	gen      uint64
	image    Image
	detector Detector
	started  time.Time
}

// Generation returns the generation the call was issued under.
func (d DetectCall) Generation() uint64 { return d.gen }

// Run performs the remote call. It reads nothing from the controller and
// may run on any goroutine.
func (d DetectCall) Run(ctx context.Context) (DetectionResult, error) {
	if d.detector == nil {
		return DetectionResult{}, errors.New("no detector configured")
	}
	return d.detector.Detect(ctx, d.image)
}

// BeginDetect moves ImageStaged (or Detected) to Detecting.
func (c *Controller) BeginDetect() (DetectCall, error) {
	if c.slot.empty() {
		return DetectCall{}, ErrNoImageStaged
	}
	if c.detecting {
		return DetectCall{}, ErrDetectInFlight
	}
	c.detecting = true
	c.notice = ""
	c.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindDetectStart, Msg: c.slot.image.Name})
	return DetectCall{
		gen:      c.generation,
		image:    *c.slot.image,
		detector: c.detector,
		started:  time.Now(),
	}, nil
}

// FinishDetect applies the outcome of call. A stale call returns
// ErrStaleResponse and changes nothing. A failure keeps the image and the
// previous results, sets the notice and returns an error wrapping
// ErrDetectionFailed.
func (c *Controller) FinishDetect(call DetectCall, res DetectionResult, err error) error {
	if call.gen != c.generation || !c.detecting {
		c.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindStale, Msg: "detect", Gen: call.gen})
		return ErrStaleResponse
	}
	c.detecting = false

	if err != nil {
		c.notice = noticeDetectFailed
		c.emit(otel.Event{
			Level: otel.LevelError,
			Kind:  otel.KindDetectError,
			Dur:   time.Since(call.started),
			Err:   err.Error(),
		})
		return fmt.Errorf("%w: %w", ErrDetectionFailed, err)
	}

	c.results.install(res)
	c.emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindDetectComplete,
		Dur:   time.Since(call.started),
		Count: len(res.Detections),
	})
	return nil
}

// Detect runs a full detection synchronously.
func (c *Controller) Detect(ctx context.Context) error {
	call, err := c.BeginDetect()
	if err != nil {
		return err
	}
	res, err := call.Run(ctx)
	return c.FinishDetect(call, res, err)
}

// AskCall is the ticket for one outstanding question.
type AskCall struct {
	gen        uint64
	question   string
	detections []Detection
	answerer   Answerer
	started    time.Time
}

// Generation returns the generation the call was issued under.
func (a AskCall) Generation() uint64 { return a.gen }

// Question returns the question text as sent.
func (a AskCall) Question() string { return a.question }

// Run performs the remote call with the detections current at send time.
func (a AskCall) Run(ctx context.Context) (string, error) {
	if a.answerer == nil {
		return "", errors.New("no answerer configured")
	}
	return a.answerer.Ask(ctx, a.question, a.detections)
}

// BeginAsk appends the user turn immediately and returns the call ticket.
// It needs a non-blank question and an installed result set; zero
// detections is allowed.
func (c *Controller) BeginAsk(question string) (AskCall, error) {
	c.question = question
	if strings.TrimSpace(question) == "" {
		return AskCall{}, ErrEmptyQuestion
	}
	if c.asking {
		return AskCall{}, ErrAskInFlight
	}
	if !c.results.installed {
		return AskCall{}, ErrNoResults
	}

	c.asking = true
	c.notice = ""
	c.chat.append(RoleUser, question)
	c.emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindAskStart,
		Query: question,
		Count: len(c.results.items),
	})
	return AskCall{
		gen:        c.generation,
		question:   question,
		detections: c.results.snapshot(),
		answerer:   c.answerer,
		started:    time.Now(),
	}, nil
}

// FinishAsk applies the outcome of call. On success the assistant turn is
// appended and the pending question cleared. On failure the user turn stays
// and the question is kept for a resend.
func (c *Controller) FinishAsk(call AskCall, answer string, err error) error {
	if call.gen != c.generation || !c.asking {
		c.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindStale, Msg: "ask", Gen: call.gen})
		return ErrStaleResponse
	}
	c.asking = false

	if err != nil {
		c.notice = noticeAskFailed
		c.emit(otel.Event{
			Level: otel.LevelError,
			Kind:  otel.KindAskError,
			Dur:   time.Since(call.started),
			Err:   err.Error(),
		})
		return fmt.Errorf("%w: %w", ErrAskFailed, err)
	}

	c.chat.append(RoleAssistant, answer)
	c.question = ""
	c.emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindAskComplete,
		Dur:   time.Since(call.started),
		Count: len(answer),
	})
	return nil
}

// Ask runs a full question round trip synchronously.
func (c *Controller) Ask(ctx context.Context, question string) error {
	call, err := c.BeginAsk(question)
	if err != nil {
		return err
	}
	answer, err := call.Run(ctx)
	return c.FinishAsk(call, answer, err)
}

// SetQuestion records the pending question input.
func (c *Controller) SetQuestion(q string) { c.question = q }

// DismissNotice clears the user-visible notice.
func (c *Controller) DismissNotice() { c.notice = "" }

// State reports the coarse state. Asking overlays Detected; see Asking.
func (c *Controller) State() State {
	switch {
	case c.slot.empty():
		return StateIdle
	case c.detecting:
		return StateDetecting
	case c.results.installed:
		return StateDetected
	default:
		return StateImageStaged
	}
}

// Detecting reports whether a detection call is outstanding.
func (c *Controller) Detecting() bool { return c.detecting }

// Asking reports whether a QA call is outstanding.
func (c *Controller) Asking() bool { return c.asking }

// Generation returns the current generation counter.
func (c *Controller) Generation() uint64 { return c.generation }

// Image returns the staged image, or nil.
func (c *Controller) Image() *Image {
	if c.slot.image == nil {
		return nil
	}
	img := *c.slot.image
	return &img
}

// PreviewRef returns the staged image's preview reference, or "".
func (c *Controller) PreviewRef() string { return c.slot.preview }

// AnnotatedRef returns the annotated image reference, or "".
func (c *Controller) AnnotatedRef() string { return c.results.annotatedRef }

// HasResults reports whether a detection has succeeded for the current image.
func (c *Controller) HasResults() bool { return c.results.installed }

// Detections returns the detections in canonical (server) order.
func (c *Controller) Detections() []Detection { return c.results.snapshot() }

// View returns the detections ordered by the current sort directive.
func (c *Controller) View() []Detection { return Project(c.results.items, c.directive) }

// SortDirective returns the active directive.
func (c *Controller) SortDirective() SortDirective { return c.directive }

// Turns returns the conversation in display order.
func (c *Controller) Turns() []Turn { return c.chat.snapshot() }

// Question returns the pending question input.
func (c *Controller) Question() string { return c.question }

// Notice returns the last user-visible failure notice, or "".
func (c *Controller) Notice() string { return c.notice }

func (c *Controller) emit(e otel.Event) {
	if c.events == nil {
		return
	}
	e.Comp = comp
	if e.Gen == 0 {
		e.Gen = c.generation
	}
	c.events.Emit(e)
}

func (c *Controller) emitError(kind otel.EventKind, err error) {
	if err == nil {
		return
	}
	c.emit(otel.Event{Level: otel.LevelError, Kind: kind, Err: err.Error()})
}

// noPreviews is used when no PreviewStore is supplied; the reference is the
// image name.
type noPreviews struct{}

func (noPreviews) Acquire(img Image) (string, error) { return img.Name, nil }
func (noPreviews) Release(string) error              { return nil }
