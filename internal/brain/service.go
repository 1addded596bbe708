package brain

import (
	"context"

	"github.com/abelbrown/lens/internal/workflow"
)

// ChatClient is the backend QA endpoint.
type ChatClient interface {
	Chat(ctx context.Context, question string, detections []workflow.Detection) (string, error)
}

// ServiceProvider forwards questions to the detection backend, which holds
// its own language model.
type ServiceProvider struct {
	client ChatClient
}

// NewServiceProvider wraps client. A nil client is never available.
func NewServiceProvider(client ChatClient) *ServiceProvider {
	return &ServiceProvider{client: client}
}

func (s *ServiceProvider) Name() string { return "service" }

func (s *ServiceProvider) Available() bool { return s.client != nil }

func (s *ServiceProvider) Answer(ctx context.Context, q Question) (Response, error) {
	answer, err := s.client.Chat(ctx, q.Text, q.Detections)
	if err != nil {
		return Response{}, err
	}
	return Response{Content: answer, Model: "backend"}, nil
}
