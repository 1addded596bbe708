package otel

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestEmitWritesJSONL(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindDetectStart, Level: LevelInfo, Comp: "workflow", Gen: 3})
	l.Close()

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["kind"] != "detect.start" {
		t.Errorf("kind = %v, want detect.start", got["kind"])
	}
	if got["comp"] != "workflow" {
		t.Errorf("comp = %v, want workflow", got["comp"])
	}
	if got["gen"] != float64(3) {
		t.Errorf("gen = %v, want 3", got["gen"])
	}
}

func TestEmitStampsTimeAndSession(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	before := time.Now()
	l.Emit(Event{Kind: KindStartup})
	l.Close()

	var ev Event
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Time.Before(before) {
		t.Errorf("time %v is before emit", ev.Time)
	}
	if ev.SessionID != l.SessionID() {
		t.Errorf("session_id = %q, want %q", ev.SessionID, l.SessionID())
	}
	if len(ev.SessionID) != 16 {
		t.Errorf("session_id should be 16 hex chars, got %q", ev.SessionID)
	}
}

func TestDurationWrittenAsMillis(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindAskComplete, Dur: 250 * time.Millisecond})
	l.Close()

	lines := decodeLines(t, &buf)
	if lines[0]["dur_ms"] != float64(250) {
		t.Errorf("dur_ms = %v, want 250", lines[0]["dur_ms"])
	}
}

func TestEmptyFieldsOmitted(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Emit(Event{Kind: KindStartup})
	l.Close()

	line := buf.String()
	for _, field := range []string{"dur_ms", "count", "query", "err", "msg", "extra", "gen"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("field %q should be omitted: %s", field, line)
		}
	}
}

func TestConcurrentEmit(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Emit(Event{Kind: KindSortChanged})
		}()
	}
	wg.Wait()
	l.Close()

	if got := len(decodeLines(t, &buf)); got != 50 {
		t.Errorf("expected 50 lines, got %d", got)
	}
}

func TestCloseIsIdempotentAndDropsLateEvents(t *testing.T) {
	l := NewNullLogger()
	l.Close()
	l.Close()

	l.Emit(Event{Kind: KindShutdown})
	if l.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", l.Dropped())
	}
}

type blockingWriter struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (w *blockingWriter) Write(p []byte) (int, error) {
	w.once.Do(func() {
		close(w.started)
		<-w.release
	})
	return len(p), nil
}

func TestFullQueueDrops(t *testing.T) {
	bw := &blockingWriter{started: make(chan struct{}), release: make(chan struct{})}
	l := NewLogger(bw)

	l.Emit(Event{Kind: KindDetectStart})
	<-bw.started

	for i := 0; i < chanSize+5; i++ {
		l.Emit(Event{Kind: KindDetectStart})
	}
	if l.Dropped() == 0 {
		t.Error("expected drops with a full queue")
	}

	close(bw.release)
	l.Close()
}

func TestHelpers(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf)
	l.Info(KindStartup, "main", "starting")
	l.Warn(KindStale, "ui", "late answer")
	l.Error(KindDetectError, "api", errors.New("connection refused"))
	l.Close()

	lines := decodeLines(t, &buf)
	want := []struct{ level, kind string }{
		{"info", "sys.startup"},
		{"warn", "response.stale"},
		{"error", "detect.error"},
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(lines), len(want))
	}
	for i, w := range want {
		if lines[i]["level"] != w.level || lines[i]["kind"] != w.kind {
			t.Errorf("line %d = %v/%v, want %s/%s", i, lines[i]["level"], lines[i]["kind"], w.level, w.kind)
		}
	}
	if lines[2]["err"] != "connection refused" {
		t.Errorf("err = %v", lines[2]["err"])
	}
}

func TestRingReceivesEvents(t *testing.T) {
	l := NewNullLogger()
	rb := NewRingBuffer(4)
	l.SetRingBuffer(rb)

	l.Emit(Event{Kind: KindImageStaged, Dur: time.Second})
	l.Close()

	got := rb.Snapshot()
	if len(got) != 1 {
		t.Fatalf("ring has %d events, want 1", len(got))
	}
	if got[0].Dur != time.Second {
		t.Errorf("ring copy lost Dur: %v", got[0].Dur)
	}
}
