package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"github.com/abelbrown/lens/internal/workflow"
)

type detectResponse struct {
	AnnotatedImageURL string          `json:"annotated_image_url"`
	Detections        []wireDetection `json:"detections"`
}

// wireDetection keeps bbox as a slice so a wrong arity is caught instead of
// silently truncated or zero-padded.
type wireDetection struct {
	Class      string    `json:"class"`
	Confidence float64   `json:"confidence"`
	BBox       []float64 `json:"bbox"`
}

// Detect uploads img as multipart field "image" and decodes the detections
// in server order.
func (c *Client) Detect(ctx context.Context, img workflow.Image) (workflow.DetectionResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	name := img.Name
	if name == "" {
		name = "image"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	ct := img.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return workflow.DetectionResult{}, fmt.Errorf("create form part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return workflow.DetectionResult{}, fmt.Errorf("write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return workflow.DetectionResult{}, fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("detect/"), &buf)
	if err != nil {
		return workflow.DetectionResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, body, err := c.do(ctx, req)
	if err != nil {
		return workflow.DetectionResult{}, err
	}
	return c.decodeDetect(body)
}

func (c *Client) decodeDetect(body []byte) (workflow.DetectionResult, error) {
	var resp detectResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return workflow.DetectionResult{}, fmt.Errorf("decode detect response: %w", err)
	}

	out := workflow.DetectionResult{
		Detections: make([]workflow.Detection, 0, len(resp.Detections)),
	}
	for i, d := range resp.Detections {
		if len(d.BBox) != 4 {
			return workflow.DetectionResult{}, fmt.Errorf("decode detect response: detection %d: bbox has %d values, want 4", i, len(d.BBox))
		}
		out.Detections = append(out.Detections, workflow.Detection{
			Class:      d.Class,
			Confidence: d.Confidence,
			BBox:       [4]float64{d.BBox[0], d.BBox[1], d.BBox[2], d.BBox[3]},
		})
	}

	if resp.AnnotatedImageURL != "" {
		ref, err := c.Resolve(resp.AnnotatedImageURL)
		if err != nil {
			return workflow.DetectionResult{}, fmt.Errorf("decode detect response: %w", err)
		}
		out.AnnotatedRef = ref
	}
	return out, nil
}
