package brain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"google.golang.org/genai"

	"github.com/abelbrown/lens/internal/workflow"
)

var _ workflow.Answerer = (*Manager)(nil)

type stubProvider struct {
	name      string
	available bool
	answer    string
	err       error
	calls     int
}

func (s *stubProvider) Name() string    { return s.name }
func (s *stubProvider) Available() bool { return s.available }
func (s *stubProvider) Answer(ctx context.Context, q Question) (Response, error) {
	s.calls++
	return Response{Content: s.answer, Model: s.name}, s.err
}

func TestManagerPrefersConfiguredProvider(t *testing.T) {
	svc := &stubProvider{name: "service", available: true, answer: "from service"}
	gem := &stubProvider{name: "gemini", available: true, answer: "from gemini"}
	m := NewManager()
	m.AddProvider(svc)
	m.AddProvider(gem)

	if got := m.GetAvailable().Name(); got != "service" {
		t.Errorf("default = %q, want first registered", got)
	}
	m.SetPreferred("gemini")
	answer, err := m.Ask(context.Background(), "q", nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "from gemini" {
		t.Errorf("answer = %q", answer)
	}

	gem.available = false
	if got := m.GetAvailable().Name(); got != "service" {
		t.Errorf("fallback = %q, want service", got)
	}
	if got := m.ListAvailable(); len(got) != 1 || got[0] != "service" {
		t.Errorf("ListAvailable = %v", got)
	}
}

func TestManagerDoesNotRetryOnFailure(t *testing.T) {
	cause := errors.New("quota exceeded")
	first := &stubProvider{name: "gemini", available: true, err: cause}
	second := &stubProvider{name: "service", available: true, answer: "ok"}
	m := NewManager()
	m.AddProvider(first)
	m.AddProvider(second)

	_, err := m.Ask(context.Background(), "q", nil)
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want wrapped cause", err)
	}
	if second.calls != 0 {
		t.Error("failed answer must not fall through to the next provider")
	}
}

func TestManagerNoProvider(t *testing.T) {
	m := NewManager()
	m.AddProvider(&stubProvider{name: "gemini"})
	if _, err := m.Ask(context.Background(), "q", nil); !errors.Is(err, ErrNoProvider) {
		t.Errorf("err = %v, want ErrNoProvider", err)
	}
}

type chatFunc func(ctx context.Context, question string, detections []workflow.Detection) (string, error)

func (f chatFunc) Chat(ctx context.Context, question string, detections []workflow.Detection) (string, error) {
	return f(ctx, question, detections)
}

func TestServiceProvider(t *testing.T) {
	var gotQ string
	var gotN int
	p := NewServiceProvider(chatFunc(func(ctx context.Context, q string, ds []workflow.Detection) (string, error) {
		gotQ, gotN = q, len(ds)
		return "two animals", nil
	}))
	resp, err := p.Answer(context.Background(), Question{
		Text:       "how many?",
		Detections: []workflow.Detection{{Class: "cat"}, {Class: "dog"}},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Content != "two animals" || gotQ != "how many?" || gotN != 2 {
		t.Errorf("resp = %+v, q = %q, n = %d", resp, gotQ, gotN)
	}
	if NewServiceProvider(nil).Available() {
		t.Error("nil client should not be available")
	}
}

func TestBuildPrompt(t *testing.T) {
	got := buildPrompt(Question{
		Text: " what is on the left? ",
		Detections: []workflow.Detection{
			{Class: "cat", Confidence: 0.92, BBox: [4]float64{10, 20, 110, 220}},
		},
	})
	for _, want := range []string{"Detected objects (1):", "1. cat (92% confidence) at [10, 20, 110, 220]", "Question: what is on the left?"} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}

	empty := buildPrompt(Question{Text: "anything?"})
	if !strings.Contains(empty, "No objects were detected") {
		t.Errorf("empty prompt = %q", empty)
	}
}

type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	model  string
	prompt string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return f.resp, f.err
}

func TestGeminiProviderAnswer(t *testing.T) {
	fm := &fakeModels{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: "A cat "}, {Text: "and a dog."}}},
		}},
	}}
	g := &GeminiProvider{models: fm, model: "gemini-test", maxTokens: 64}

	resp, err := g.Answer(context.Background(), Question{Text: "what?", Detections: []workflow.Detection{{Class: "cat"}}})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if resp.Content != "A cat and a dog." || resp.Model != "gemini-test" {
		t.Errorf("resp = %+v", resp)
	}
	if fm.model != "gemini-test" || !strings.Contains(fm.prompt, "cat") {
		t.Errorf("request model %q prompt %q", fm.model, fm.prompt)
	}
}

func TestGeminiProviderEmptyResponse(t *testing.T) {
	g := &GeminiProvider{models: &fakeModels{resp: &genai.GenerateContentResponse{}}, model: "m"}
	if _, err := g.Answer(context.Background(), Question{Text: "q"}); err == nil {
		t.Error("expected error for empty response")
	}
}

func TestGeminiProviderWithoutKey(t *testing.T) {
	g, err := NewGeminiProvider(context.Background(), "", "")
	if err != nil {
		t.Fatalf("NewGeminiProvider: %v", err)
	}
	if g.Available() {
		t.Error("provider without key should not be available")
	}
	if g.model != defaultGeminiModel {
		t.Errorf("model = %q", g.model)
	}
}
