package state

type ClipboardOp int

const (
	OpNone ClipboardOp = iota
	OpCopy
	OpCut
)

// Clipboard records yanked/cut source paths. Existence is validated at
// paste time, never at yank time, because files can vanish in between.
type Clipboard struct {
	Paths []string
	Op    ClipboardOp
}

func (c *Clipboard) IsEmpty() bool { return len(c.Paths) == 0 || c.Op == OpNone }

func (c *Clipboard) Set(paths []string, op ClipboardOp) {
	c.Paths = paths
	c.Op = op
}

func (c *Clipboard) Clear() {
	c.Paths = nil
	c.Op = OpNone
}
