// Package brain answers questions about detections. A Manager picks one of
// several providers: the backend's QA endpoint or Gemini directly.
package brain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/lens/internal/logging"
	"github.com/abelbrown/lens/internal/workflow"
)

// ErrNoProvider is returned when no configured provider is available.
var ErrNoProvider = errors.New("no QA provider available")

// Provider answers one question in the context of a detection list.
type Provider interface {
	// Name returns the provider name (e.g., "service", "gemini")
	Name() string

	// Available returns true if the provider is configured and ready
	Available() bool

	// Answer sends the question and returns the reply text
	Answer(ctx context.Context, q Question) (Response, error)
}

// Question is what the user asked plus the detections current at send time.
type Question struct {
	Text       string
	Detections []workflow.Detection
}

// Response is a provider's reply.
type Response struct {
	Content string
	Model   string
}

// Manager holds providers and routes questions to the preferred one.
type Manager struct {
	providers []Provider
	preferred string
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// AddProvider registers p. Registration order is the fallback order.
func (m *Manager) AddProvider(p Provider) {
	m.providers = append(m.providers, p)
}

// SetPreferred sets the preferred provider by name
func (m *Manager) SetPreferred(name string) {
	m.preferred = name
}

// GetAvailable returns the preferred provider if it is available, else the
// first available one, else nil.
func (m *Manager) GetAvailable() Provider {
	if m.preferred != "" {
		if p := m.GetByName(m.preferred); p != nil {
			return p
		}
	}
	for _, p := range m.providers {
		if p.Available() {
			return p
		}
	}
	return nil
}

// GetByName returns an available provider by name
func (m *Manager) GetByName(name string) Provider {
	for _, p := range m.providers {
		if p.Name() == name && p.Available() {
			return p
		}
	}
	return nil
}

// ListAvailable returns names of all available providers
func (m *Manager) ListAvailable() []string {
	var names []string
	for _, p := range m.providers {
		if p.Available() {
			names = append(names, p.Name())
		}
	}
	return names
}

// Ask routes the question to one provider. A failed answer is returned as
// is; the next provider is not tried.
func (m *Manager) Ask(ctx context.Context, question string, detections []workflow.Detection) (string, error) {
	p := m.GetAvailable()
	if p == nil {
		return "", ErrNoProvider
	}

	start := time.Now()
	resp, err := p.Answer(ctx, Question{Text: question, Detections: detections})
	if err != nil {
		logging.Warn("QA request failed", "provider", p.Name(), "err", err)
		return "", fmt.Errorf("%s: %w", p.Name(), err)
	}
	logging.Debug("QA request complete",
		"provider", p.Name(),
		"model", resp.Model,
		"detections", len(detections),
		"dur", time.Since(start))
	return resp.Content, nil
}
