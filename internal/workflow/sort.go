package workflow

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortKey selects the column the detection view is ordered by.
type SortKey int

const (
	SortNone SortKey = iota
	SortClass
	SortConfidence
)

func (k SortKey) String() string {
	switch k {
	case SortClass:
		return "class"
	case SortConfidence:
		return "confidence"
	default:
		return "none"
	}
}

// ParseSortKey maps "class"/"object"/"confidence" to a key. "" and "none"
// are SortNone; anything else is ErrUnknownSortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "class", "object", "objectclass":
		return SortClass, nil
	case "confidence", "conf":
		return SortConfidence, nil
	}
	return SortNone, fmt.Errorf("%w %q (want class or confidence)", ErrUnknownSortKey, s)
}

// Direction is the sort direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// SortDirective is the user-selected (key, direction) pair.
type SortDirective struct {
	Key       SortKey
	Direction Direction
}

// Toggle applies a column selection: the active key flips direction, a new
// key starts ascending.
func (d SortDirective) Toggle(key SortKey) SortDirective {
	if key == d.Key {
		if d.Direction == Ascending {
			d.Direction = Descending
		} else {
			d.Direction = Ascending
		}
		return d
	}
	return SortDirective{Key: key, Direction: Ascending}
}

// Project returns items ordered by directive without touching items.
//
// The sort is stable, so equal keys keep canonical order. Descending negates
// the comparator instead of reversing the result, which keeps the same
// tie-break winner in both directions.
func Project(items []Detection, directive SortDirective) []Detection {
	view := make([]Detection, len(items))
	copy(view, items)

	var compare func(a, b Detection) int
	switch directive.Key {
	case SortClass:
		compare = func(a, b Detection) int {
			return strings.Compare(strings.ToLower(a.Class), strings.ToLower(b.Class))
		}
	case SortConfidence:
		compare = func(a, b Detection) int {
			return cmp.Compare(a.Confidence, b.Confidence)
		}
	default:
		return view
	}

	if directive.Direction == Descending {
		asc := compare
		compare = func(a, b Detection) int { return -asc(a, b) }
	}
	slices.SortStableFunc(view, compare)
	return view
}
