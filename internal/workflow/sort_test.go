package workflow

import (
	"errors"
	"testing"
)

func classes(ds []Detection) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Class
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProjectCatDog(t *testing.T) {
	items := []Detection{
		{Class: "cat", Confidence: 0.92},
		{Class: "dog", Confidence: 0.55},
	}
	tests := []struct {
		directive SortDirective
		want      []string
	}{
		{SortDirective{SortConfidence, Ascending}, []string{"dog", "cat"}},
		{SortDirective{SortConfidence, Descending}, []string{"cat", "dog"}},
		{SortDirective{SortClass, Ascending}, []string{"cat", "dog"}},
		{SortDirective{SortClass, Descending}, []string{"dog", "cat"}},
		{SortDirective{SortNone, Descending}, []string{"cat", "dog"}},
	}
	for _, tt := range tests {
		got := classes(Project(items, tt.directive))
		if !equalStrings(got, tt.want) {
			t.Errorf("Project(%v %v) = %v, want %v", tt.directive.Key, tt.directive.Direction, got, tt.want)
		}
	}
}

func TestProjectStableInBothDirections(t *testing.T) {
	// a1..a3 tie on confidence and (case-insensitively) on class.
	items := []Detection{
		{Class: "Apple", Confidence: 0.5, BBox: [4]float64{1}},
		{Class: "zebra", Confidence: 0.9},
		{Class: "apple", Confidence: 0.5, BBox: [4]float64{2}},
		{Class: "APPLE", Confidence: 0.5, BBox: [4]float64{3}},
		{Class: "bird", Confidence: 0.1},
	}

	for _, key := range []SortKey{SortClass, SortConfidence} {
		for _, dir := range []Direction{Ascending, Descending} {
			view := Project(items, SortDirective{Key: key, Direction: dir})
			var ties []float64
			for _, d := range view {
				if d.BBox[0] != 0 {
					ties = append(ties, d.BBox[0])
				}
			}
			if len(ties) != 3 || ties[0] != 1 || ties[1] != 2 || ties[2] != 3 {
				t.Errorf("%v %v: tied items out of canonical order: %v", key, dir, ties)
			}
		}
	}
}

func TestProjectDoesNotMutate(t *testing.T) {
	items := []Detection{{Class: "b"}, {Class: "a"}}
	_ = Project(items, SortDirective{Key: SortClass})
	if items[0].Class != "b" {
		t.Error("Project reordered its input")
	}
	view := Project(items, SortDirective{})
	view[0].Class = "changed"
	if items[0].Class != "b" {
		t.Error("SortNone view aliases input")
	}
}

func TestProjectEmpty(t *testing.T) {
	if got := Project(nil, SortDirective{Key: SortConfidence}); len(got) != 0 {
		t.Errorf("expected empty view, got %v", got)
	}
}

func TestToggle(t *testing.T) {
	d := SortDirective{}
	d = d.Toggle(SortConfidence)
	if d != (SortDirective{SortConfidence, Ascending}) {
		t.Fatalf("new key should start ascending, got %+v", d)
	}
	d = d.Toggle(SortConfidence)
	if d != (SortDirective{SortConfidence, Descending}) {
		t.Fatalf("same key should flip, got %+v", d)
	}
	d = d.Toggle(SortConfidence)
	if d != (SortDirective{SortConfidence, Ascending}) {
		t.Fatalf("second flip should return to ascending, got %+v", d)
	}
	d = d.Toggle(SortConfidence).Toggle(SortClass)
	if d != (SortDirective{SortClass, Ascending}) {
		t.Fatalf("switching key should reset direction, got %+v", d)
	}
}

func TestToggleTwiceCanonicalOnlyForNone(t *testing.T) {
	items := []Detection{{Class: "b", Confidence: 0.2}, {Class: "a", Confidence: 0.9}, {Class: "c", Confidence: 0.5}}
	canonical := classes(items)

	d := SortDirective{}.Toggle(SortNone).Toggle(SortNone)
	if !equalStrings(classes(Project(items, d)), canonical) {
		t.Error("none toggled twice should be canonical")
	}
	d = SortDirective{}.Toggle(SortClass).Toggle(SortClass)
	if d.Key != SortClass {
		t.Errorf("toggle changed key to %v", d.Key)
	}
	if equalStrings(classes(Project(items, d)), canonical) {
		t.Error("class toggled twice should not be canonical for this input")
	}
}

func TestParseSortKey(t *testing.T) {
	tests := map[string]SortKey{
		"class":       SortClass,
		" Object ":    SortClass,
		"objectclass": SortClass,
		"confidence":  SortConfidence,
		"CONF":        SortConfidence,
		"":            SortNone,
		"none":        SortNone,
	}
	for in, want := range tests {
		got, err := ParseSortKey(in)
		if err != nil || got != want {
			t.Errorf("ParseSortKey(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	if _, err := ParseSortKey("bbox"); !errors.Is(err, ErrUnknownSortKey) {
		t.Errorf("ParseSortKey(bbox) err = %v, want ErrUnknownSortKey", err)
	}
}
