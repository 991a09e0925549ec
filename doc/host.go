package doc

import "github.com/alimasry/go-styled-editor/editor"

// Host exposes an Editor through the editor.Host interface.
type Host struct {
	ed *Editor
}

// NewHost wraps ed.
func NewHost(ed *Editor) *Host {
	return &Host{ed: ed}
}

func (h *Host) Document() editor.Document {
	return treeView{root: h.ed.Root()}
}

func (h *Host) Selection() editor.Selection {
	s := h.ed.Selection()
	return editor.Selection{Anchor: s.Anchor, Head: s.Head}
}

// Update collects fn's writes into one transaction and dispatches it.
// Nothing is dispatched when fn fails or writes nothing.
func (h *Host) Update(fn func(editor.Tx) error) error {
	var tx stepCollector
	if err := fn(&tx); err != nil {
		return err
	}
	if len(tx.steps) == 0 {
		return nil
	}
	return h.ed.Dispatch(Transaction{Steps: tx.steps})
}

func (h *Host) Subscribe(fn func(editor.Change)) {
	h.ed.Subscribe(func(c Change) {
		fn(editor.Change{DocChanged: c.DocChanged, SelectionChanged: c.SelectionChanged})
	})
}

type treeView struct {
	root *Node
}

func (v treeView) Descendants(fn func(editor.Node, int) bool) {
	v.root.Descendants(func(n *Node, pos int) bool {
		return fn(n, pos)
	})
}

type stepCollector struct {
	steps []Step
}

func (c *stepCollector) SetNodeAttr(pos int, name, value string) error {
	c.steps = append(c.steps, SetAttr(pos, name, value))
	return nil
}
