package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abelbrown/lens/internal/workflow"
)

type stubDetector struct {
	result workflow.DetectionResult
	err    error
}

func (s stubDetector) Detect(ctx context.Context, img workflow.Image) (workflow.DetectionResult, error) {
	return s.result, s.err
}

type stubAnswerer struct {
	err error
}

func (s stubAnswerer) Ask(ctx context.Context, q string, dets []workflow.Detection) (string, error) {
	return "answer to " + q, s.err
}

func testImage() workflow.Image {
	return workflow.Image{Name: "street.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}
}

func noSave(ctx context.Context, ref, dir string) (string, error) {
	return "", errors.New("save should not be called")
}

func TestDetectImageReturnsDetectionFailure(t *testing.T) {
	cause := errors.New("503 service unavailable")
	ctrl := workflow.New(stubDetector{err: cause}, stubAnswerer{}, nil)

	var out bytes.Buffer
	err := detectImage(context.Background(), ctrl, testImage(), noSave, detectOptions{}, &out)
	if !errors.Is(err, workflow.ErrDetectionFailed) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped detection failure", err)
	}
	if !strings.Contains(err.Error(), "Detection failed.") {
		t.Errorf("err = %q, want the user notice", err)
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be printed on failure, got %q", out.String())
	}
}

func TestDetectImageReturnsAskFailure(t *testing.T) {
	ctrl := workflow.New(stubDetector{}, stubAnswerer{err: errors.New("quota")}, nil)

	var out bytes.Buffer
	err := detectImage(context.Background(), ctrl, testImage(), noSave,
		detectOptions{questions: []string{"anything?"}}, &out)
	if !errors.Is(err, workflow.ErrAskFailed) {
		t.Fatalf("err = %v, want ErrAskFailed", err)
	}
}

func TestDetectImageSortsAsksAndSaves(t *testing.T) {
	det := stubDetector{result: workflow.DetectionResult{
		AnnotatedRef: "http://localhost:8000/media/annotated/street.jpg",
		Detections: []workflow.Detection{
			{Class: "car", Confidence: 0.61},
			{Class: "person", Confidence: 0.97},
			{Class: "bicycle", Confidence: 0.80},
		},
	}}
	ctrl := workflow.New(det, stubAnswerer{}, nil)

	var savedRef, savedDir string
	save := func(ctx context.Context, ref, dir string) (string, error) {
		savedRef, savedDir = ref, dir
		return dir + "/annotated_street.jpg", nil
	}

	var out bytes.Buffer
	err := detectImage(context.Background(), ctrl, testImage(), save, detectOptions{
		sort:      workflow.SortConfidence,
		desc:      true,
		saveDir:   "/tmp/out",
		questions: []string{"how many people?", "any cars?"},
	}, &out)
	if err != nil {
		t.Fatalf("detectImage: %v", err)
	}

	got := out.String()
	person := strings.Index(got, "person")
	bicycle := strings.Index(got, "bicycle")
	car := strings.Index(got, "car ")
	if person < 0 || !(person < bicycle && bicycle < car) {
		t.Errorf("rows not in descending confidence order:\n%s", got)
	}
	for _, want := range []string{
		"street.jpg: 3 objects",
		"Me: how many people?",
		"AI: answer to how many people?",
		"AI: answer to any cars?",
		"Saved /tmp/out/annotated_street.jpg",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if savedRef != det.result.AnnotatedRef || savedDir != "/tmp/out" {
		t.Errorf("save(%q, %q)", savedRef, savedDir)
	}
}
