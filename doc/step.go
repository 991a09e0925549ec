package doc

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// StepKind identifies what a Step does.
type StepKind string

const (
	StepSetAttr     StepKind = "setAttr"
	StepInsertText  StepKind = "insertText"
	StepDeleteText  StepKind = "deleteText"
	StepSplitBlock  StepKind = "splitBlock"
	StepInsertBlock StepKind = "insertBlock"
	StepDeleteBlock StepKind = "deleteBlock"
	StepReplace     StepKind = "replace"
)

// Step is one atomic change to a document tree.
// Which fields are used depends on Kind.
type Step struct {
	Kind  StepKind `json:"kind"`
	Pos   int      `json:"pos"`
	To    int      `json:"to,omitempty"`   // deleteText: end of range
	Attr  string   `json:"attr,omitempty"` // setAttr
	Value string   `json:"value,omitempty"`
	Text  string   `json:"text,omitempty"` // insertText
	Node  *Node    `json:"node,omitempty"` // insertBlock, replace
}

// SetAttr sets attribute name on the node starting at pos.
func SetAttr(pos int, name, value string) Step {
	return Step{Kind: StepSetAttr, Pos: pos, Attr: name, Value: value}
}

// InsertText inserts text at pos inside a textblock.
func InsertText(pos int, text string) Step {
	return Step{Kind: StepInsertText, Pos: pos, Text: text}
}

// DeleteText removes the inline content between from and to, which must
// lie in the same textblock.
func DeleteText(from, to int) Step {
	return Step{Kind: StepDeleteText, Pos: from, To: to}
}

// SplitBlock splits the textblock containing pos in two. The new block
// keeps the type and attributes of the original.
func SplitBlock(pos int) Step {
	return Step{Kind: StepSplitBlock, Pos: pos}
}

// InsertBlock inserts n at the block boundary pos.
func InsertBlock(pos int, n *Node) Step {
	return Step{Kind: StepInsertBlock, Pos: pos, Node: n}
}

// DeleteBlock removes the block starting at pos.
func DeleteBlock(pos int) Step {
	return Step{Kind: StepDeleteBlock, Pos: pos}
}

// Replace swaps the whole tree for root.
func Replace(root *Node) Step {
	return Step{Kind: StepReplace, Node: root}
}

// PosMap describes how a step moved positions: the range
// [At, At+Deleted) was replaced by Inserted tokens.
type PosMap struct {
	At       int
	Deleted  int
	Inserted int
}

// Map moves pos across the change. Positions inside a deleted range
// collapse to its start; positions at an insertion point move after it.
func (m PosMap) Map(pos int) int {
	switch {
	case pos < m.At:
		return pos
	case pos >= m.At+m.Deleted:
		return pos - m.Deleted + m.Inserted
	default:
		return m.At
	}
}

// Mapping is the sequence of position maps of a transaction.
type Mapping []PosMap

// Map moves pos across every map in order.
func (m Mapping) Map(pos int) int {
	for _, pm := range m {
		pos = pm.Map(pos)
	}
	return pos
}

// Apply applies the step to root and returns the new root together with
// the step's position map. root is not modified.
func (s Step) Apply(root *Node) (*Node, PosMap, error) {
	switch s.Kind {
	case StepSetAttr:
		if s.Attr == "" {
			return nil, PosMap{}, fmt.Errorf("%w: empty attribute name", ErrInvalidContent)
		}
		next, err := root.replaceChild(s.Pos, func(n *Node) ([]*Node, error) {
			return []*Node{n.withAttr(s.Attr, s.Value)}, nil
		})
		return next, PosMap{}, err

	case StepInsertText:
		if s.Text == "" {
			return root, PosMap{}, nil
		}
		if strings.IndexFunc(s.Text, invalidRune) >= 0 {
			return nil, PosMap{}, fmt.Errorf("%w: control character in inserted text", ErrInvalidContent)
		}
		next, err := updateTextblock(root, s.Pos, func(tb *Node, off int) ([]*Node, error) {
			left, right := splitInline(tb.Content, off)
			var marks []Mark
			if len(left) > 0 && left[len(left)-1].IsText() {
				marks = left[len(left)-1].Marks
			}
			content := append(left, &Node{Type: TypeText, Text: s.Text, Marks: marks})
			return []*Node{tb.withContent(NormalizeInline(append(content, right...)))}, nil
		})
		return next, PosMap{At: s.Pos, Inserted: utf8.RuneCountInString(s.Text)}, err

	case StepDeleteText:
		if s.To < s.Pos {
			return nil, PosMap{}, fmt.Errorf("%w: range %d-%d", ErrOutOfRange, s.Pos, s.To)
		}
		tb, err := root.TextblockAt(s.Pos)
		if err != nil {
			return nil, PosMap{}, err
		}
		if s.To > tb.Pos+tb.Node.Size()-1 {
			return nil, PosMap{}, fmt.Errorf("%w: range %d-%d crosses a block", ErrOutOfRange, s.Pos, s.To)
		}
		next, err := updateTextblock(root, s.Pos, func(n *Node, off int) ([]*Node, error) {
			left, _ := splitInline(n.Content, off)
			_, right := splitInline(n.Content, off+s.To-s.Pos)
			return []*Node{n.withContent(NormalizeInline(append(left, right...)))}, nil
		})
		return next, PosMap{At: s.Pos, Deleted: s.To - s.Pos}, err

	case StepSplitBlock:
		next, err := updateTextblock(root, s.Pos, func(tb *Node, off int) ([]*Node, error) {
			left, right := splitInline(tb.Content, off)
			first := tb.withContent(NormalizeInline(left))
			second := &Node{Type: tb.Type, Attrs: maps.Clone(tb.Attrs), Content: NormalizeInline(right)}
			return []*Node{first, second}, nil
		})
		return next, PosMap{At: s.Pos, Inserted: 2}, err

	case StepInsertBlock:
		if s.Node == nil {
			return nil, PosMap{}, fmt.Errorf("%w: insertBlock without node", ErrInvalidContent)
		}
		next, err := insertAt(root, s.Pos, s.Node)
		return next, PosMap{At: s.Pos, Inserted: s.Node.Size()}, err

	case StepDeleteBlock:
		deleted := 0
		next, err := root.replaceChild(s.Pos, func(n *Node) ([]*Node, error) {
			deleted = n.Size()
			return nil, nil
		})
		return next, PosMap{At: s.Pos, Deleted: deleted}, err

	case StepReplace:
		if s.Node == nil || s.Node.Type != TypeDoc {
			return nil, PosMap{}, fmt.Errorf("%w: replace needs a doc node", ErrInvalidContent)
		}
		return s.Node.Clone(), PosMap{Deleted: root.ContentSize(), Inserted: s.Node.ContentSize()}, nil
	}
	return nil, PosMap{}, fmt.Errorf("unknown step kind %q", s.Kind)
}

// updateTextblock replaces the textblock containing pos with fn's result.
// fn receives the textblock and pos relative to its content start.
func updateTextblock(root *Node, pos int, fn func(tb *Node, off int) ([]*Node, error)) (*Node, error) {
	tb, err := root.TextblockAt(pos)
	if err != nil {
		return nil, err
	}
	return root.replaceChild(tb.Pos, func(n *Node) ([]*Node, error) {
		return fn(n, pos-tb.Pos-1)
	})
}

// insertAt inserts n into the container whose child boundary is pos.
func insertAt(root *Node, pos int, n *Node) (*Node, error) {
	if pos < 0 || pos > root.ContentSize() {
		return nil, fmt.Errorf("%w: %d", ErrOutOfRange, pos)
	}
	insert := func(container *Node, base int) (*Node, error) {
		off := base
		for i, c := range container.Content {
			if off == pos {
				return container.withContent(slices.Insert(slices.Clone(container.Content), i, n)), nil
			}
			off += c.Size()
		}
		if off == pos {
			return container.withContent(append(slices.Clone(container.Content), n)), nil
		}
		return nil, fmt.Errorf("%w: %d", ErrNotBoundary, pos)
	}

	path := root.Ancestors(pos)
	if len(path) == 0 {
		return insert(root, 0)
	}
	parent := path[len(path)-1]
	if parent.Node.IsTextblock() {
		return nil, fmt.Errorf("%w: %d", ErrNotBoundary, pos)
	}
	return root.replaceChild(parent.Pos, func(c *Node) ([]*Node, error) {
		updated, err := insert(c, parent.Pos+1)
		if err != nil {
			return nil, err
		}
		return []*Node{updated}, nil
	})
}

// splitInline divides inline content at offset off. Text nodes spanning the
// offset are cut in two.
func splitInline(content []*Node, off int) (left, right []*Node) {
	pos := 0
	for i, c := range content {
		if pos == off {
			return slices.Clone(content[:i]), slices.Clone(content[i:])
		}
		size := c.Size()
		if off < pos+size {
			runes := []rune(c.Text)
			k := off - pos
			l := &Node{Type: TypeText, Text: string(runes[:k]), Marks: c.Marks}
			r := &Node{Type: TypeText, Text: string(runes[k:]), Marks: c.Marks}
			left = append(slices.Clone(content[:i]), l)
			right = append([]*Node{r}, content[i+1:]...)
			return left, right
		}
		pos += size
	}
	return slices.Clone(content), nil
}

// NormalizeInline drops empty text nodes and merges neighbours that carry
// the same marks.
func NormalizeInline(content []*Node) []*Node {
	var out []*Node
	for _, c := range content {
		if c.IsText() && c.Text == "" {
			continue
		}
		if len(out) > 0 {
			last := out[len(out)-1]
			if c.IsText() && last.IsText() && slices.Equal(c.Marks, last.Marks) {
				out[len(out)-1] = &Node{Type: TypeText, Text: last.Text + c.Text, Marks: last.Marks}
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
