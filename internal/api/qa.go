package api

import (
	"context"

	"github.com/abelbrown/lens/internal/workflow"
)

type chatRequest struct {
	Question   string               `json:"question"`
	Detections []workflow.Detection `json:"detections"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

// Chat asks the backend's QA endpoint about detections. A nil slice is sent
// as an empty list.
func (c *Client) Chat(ctx context.Context, question string, detections []workflow.Detection) (string, error) {
	if detections == nil {
		detections = []workflow.Detection{}
	}
	var resp chatResponse
	if err := c.postJSON(ctx, "qa/chat/", chatRequest{Question: question, Detections: detections}, &resp); err != nil {
		return "", err
	}
	return resp.Answer, nil
}
