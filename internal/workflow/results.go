package workflow

// resultSet is the output of one successful detection call. Items and the
// annotated reference are only ever replaced together.
type resultSet struct {
	items        []Detection
	annotatedRef string
	installed    bool
}

func (r *resultSet) install(res DetectionResult) {
	items := make([]Detection, len(res.Detections))
	copy(items, res.Detections)
	*r = resultSet{
		items:        items,
		annotatedRef: res.AnnotatedRef,
		installed:    true,
	}
}

func (r *resultSet) reset() {
	*r = resultSet{}
}

// snapshot returns a copy of the canonical-order items.
func (r *resultSet) snapshot() []Detection {
	out := make([]Detection, len(r.items))
	copy(out, r.items)
	return out
}
