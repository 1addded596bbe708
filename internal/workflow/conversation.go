package workflow

// conversation is an append-only transcript. It is only ever cleared as a
// whole, together with the image and results.
type conversation struct {
	turns []Turn
}

func (c *conversation) append(role Role, text string) {
	c.turns = append(c.turns, Turn{Role: role, Text: text})
}

func (c *conversation) reset() {
	c.turns = nil
}

func (c *conversation) snapshot() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}
