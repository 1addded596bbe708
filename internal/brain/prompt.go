package brain

import (
	"fmt"
	"strings"
)

const systemPrompt = `You answer questions about a single photo. You cannot see the photo; you only get the list of objects an object detector found in it, each with a confidence score and a bounding box in pixel coordinates [x1, y1, x2, y2].
Answer from the detections alone. If they do not contain the answer, say so. Keep answers short.`

// buildPrompt renders the detections and question as the user turn.
func buildPrompt(q Question) string {
	var b strings.Builder
	if len(q.Detections) == 0 {
		b.WriteString("No objects were detected in the image.\n")
	} else {
		fmt.Fprintf(&b, "Detected objects (%d):\n", len(q.Detections))
		for i, d := range q.Detections {
			fmt.Fprintf(&b, "%d. %s (%.0f%% confidence) at [%.0f, %.0f, %.0f, %.0f]\n",
				i+1, d.Class, d.Confidence*100, d.BBox[0], d.BBox[1], d.BBox[2], d.BBox[3])
		}
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(strings.TrimSpace(q.Text))
	return b.String()
}
