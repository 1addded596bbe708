// Package ui provides the Bubble Tea TUI for lens.
package ui

import "github.com/abelbrown/lens/internal/workflow"

// ImageLoaded is sent when an image reference has been read from disk or S3.
type ImageLoaded struct {
	Ref   string
	Image workflow.Image
	Err   error
}

// DetectDone carries the outcome of one detection call and the ticket it was
// issued with, so stale results can be told apart.
type DetectDone struct {
	Call   workflow.DetectCall
	Result workflow.DetectionResult
	Err    error
}

// AskDone carries the outcome of one QA call.
type AskDone struct {
	Call   workflow.AskCall
	Answer string
	Err    error
}

// AnnotatedSaved is sent when the annotated image has been written to disk.
type AnnotatedSaved struct {
	Path string
	Err  error
}

// AuthDone is sent when a sign-in or sign-up request finishes.
type AuthDone struct {
	Signup   bool
	Username string
	Err      error
}

// LoggedOut is sent when the stored session has been revoked.
type LoggedOut struct {
	Err error
}
