package main

import (
	"strings"
	"testing"
)

const sampleLog = `{"t":"2026-01-02T10:00:00Z","level":"info","kind":"image.staged","comp":"workflow","gen":1,"msg":"cat.jpg"}
{"t":"2026-01-02T10:00:01Z","level":"info","kind":"detect.start","comp":"workflow","gen":1}
not json
{"t":"2026-01-02T10:00:02Z","level":"error","kind":"detect.error","comp":"workflow","gen":1,"err":"503"}

{"t":"2026-01-02T10:00:03Z","level":"info","kind":"image.staged","comp":"workflow","gen":2,"msg":"dog.jpg"}
{"t":"2026-01-02T10:00:04Z","level":"info","kind":"detect.complete","comp":"workflow","gen":2,"dur_ms":812.4,"count":3}
`

func TestReadTailLinesKeepsLastN(t *testing.T) {
	all := func(eventRecord) bool { return true }
	lines := readTailLines(strings.NewReader(sampleLog), 2, all)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].ev.Msg != "dog.jpg" || lines[1].ev.Kind != "detect.complete" {
		t.Errorf("wrong tail: %+v", lines)
	}
	if readTailLines(strings.NewReader(sampleLog), 0, all) != nil {
		t.Error("tail 0 should return nothing")
	}
}

func TestEventFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter eventFilter
		want   int
	}{
		{"none", eventFilter{}, 5},
		{"kind prefix", eventFilter{kind: "detect"}, 3},
		{"min level", eventFilter{minLevel: "warn"}, 1},
		{"generation", eventFilter{gen: 2}, 2},
		{"component", eventFilter{comp: "ui"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := readTailLines(strings.NewReader(sampleLog), 50, tt.filter.match)
			if len(got) != tt.want {
				t.Errorf("matched %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFormatEvent(t *testing.T) {
	lines := readTailLines(strings.NewReader(sampleLog), 1, func(eventRecord) bool { return true })
	got := formatEvent(lines[0].ev)
	for _, want := range []string{"INFO", "detect.complete", "gen=2", "(812ms)", "n=3"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatEvent() = %q, missing %q", got, want)
		}
	}
}
