// Package doc is a tree-structured rich-text document addressed by integer
// positions. It is the host the styling engine in package editor runs on.
//
// Positions count tokens the way ProseMirror does: every character of text
// and every leaf inline node is one token, and every other node adds one
// token for its start and one for its end. Position 0 is the start of the
// root's content.
package doc

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// NodeType names the kind of a node.
type NodeType string

const (
	TypeDoc         NodeType = "doc"
	TypeParagraph   NodeType = "paragraph"
	TypeHeading     NodeType = "heading"
	TypeBlockquote  NodeType = "blockquote"
	TypeBulletList  NodeType = "bullet_list"
	TypeOrderedList NodeType = "ordered_list"
	TypeListItem    NodeType = "list_item"
	TypeText        NodeType = "text"
	TypeHardBreak   NodeType = "hard_break"
)

// Mark is an inline formatting flag carried by text nodes.
type Mark string

const (
	MarkBold   Mark = "bold"
	MarkItalic Mark = "italic"
	MarkCode   Mark = "code"
)

var markOrder = []Mark{MarkBold, MarkItalic, MarkCode}

var (
	ErrOutOfRange     = errors.New("position out of range")
	ErrNoNode         = errors.New("no node at position")
	ErrNotTextblock   = errors.New("position is not inside a textblock")
	ErrNotBoundary    = errors.New("position is not a block boundary")
	ErrInvalidContent = errors.New("invalid content")
	ErrInvalidAttr    = errors.New("invalid attribute value")
)

// Node is one node of a document tree. Nodes reachable from a committed
// Document must not be modified; steps build new nodes along the path
// they change.
type Node struct {
	Type    NodeType          `json:"type"`
	Attrs   map[string]string `json:"attrs,omitempty"`
	Text    string            `json:"text,omitempty"`
	Marks   []Mark            `json:"marks,omitempty"`
	Content []*Node           `json:"content,omitempty"`
}

// Located is a node together with the position directly before it.
type Located struct {
	Node *Node
	Pos  int
}

// NewText creates a text node. Marks are stored in canonical order.
func NewText(text string, marks ...Mark) *Node {
	return &Node{Type: TypeText, Text: text, Marks: sortMarks(marks)}
}

// NewHardBreak creates a line break node.
func NewHardBreak() *Node {
	return &Node{Type: TypeHardBreak}
}

func (n *Node) IsText() bool { return n.Type == TypeText }

// IsInline reports whether n lives inside a textblock.
func (n *Node) IsInline() bool { return n.Type == TypeText || n.Type == TypeHardBreak }

// IsLeaf reports whether n can have no content.
func (n *Node) IsLeaf() bool { return n.IsInline() }

// IsTextblock reports whether n holds inline content directly.
func (n *Node) IsTextblock() bool {
	switch n.Type {
	case TypeParagraph, TypeHeading, TypeListItem:
		return true
	}
	return false
}

// IsBlock reports whether n may appear in a document or blockquote.
func (n *Node) IsBlock() bool {
	switch n.Type {
	case TypeParagraph, TypeHeading, TypeBlockquote, TypeBulletList, TypeOrderedList:
		return true
	}
	return false
}

// TypeName returns the node type as a plain string.
func (n *Node) TypeName() string { return string(n.Type) }

// Attr returns the value of attribute name.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Size returns the number of position tokens n occupies.
func (n *Node) Size() int {
	switch n.Type {
	case TypeText:
		return utf8.RuneCountInString(n.Text)
	case TypeHardBreak:
		return 1
	}
	return n.ContentSize() + 2
}

// ContentSize returns the number of tokens of n's children.
func (n *Node) ContentSize() int {
	size := 0
	for _, c := range n.Content {
		size += c.Size()
	}
	return size
}

// Descendants calls fn for every node below n in document order with the
// position directly before it, relative to the start of n's content.
// When fn returns false the node's children are skipped.
func (n *Node) Descendants(fn func(child *Node, pos int) bool) {
	n.walk(0, fn)
}

func (n *Node) walk(base int, fn func(*Node, int) bool) {
	pos := base
	for _, c := range n.Content {
		if fn(c, pos) && len(c.Content) > 0 {
			c.walk(pos+1, fn)
		}
		pos += c.Size()
	}
}

// Ancestors returns every node whose content contains pos, outermost first.
// The receiver itself is not included.
func (n *Node) Ancestors(pos int) []Located {
	var path []Located
	node, base := n, 0
	for {
		next := false
		off := base
		for _, c := range node.Content {
			size := c.Size()
			if !c.IsLeaf() && off < pos && pos < off+size {
				path = append(path, Located{Node: c, Pos: off})
				node, base, next = c, off+1, true
				break
			}
			off += size
		}
		if !next {
			return path
		}
	}
}

// TextblockAt returns the innermost textblock whose content contains pos.
func (n *Node) TextblockAt(pos int) (Located, error) {
	if pos < 0 || pos > n.ContentSize() {
		return Located{}, fmt.Errorf("%w: %d", ErrOutOfRange, pos)
	}
	path := n.Ancestors(pos)
	if len(path) == 0 || !path[len(path)-1].Node.IsTextblock() {
		return Located{}, fmt.Errorf("%w: %d", ErrNotTextblock, pos)
	}
	return path[len(path)-1], nil
}

// NodeAt returns the outermost non-inline node starting exactly at pos.
func (n *Node) NodeAt(pos int) (*Node, error) {
	var found *Node
	n.Descendants(func(c *Node, p int) bool {
		if found != nil || c.IsInline() {
			return false
		}
		if p == pos {
			found = c
			return false
		}
		return p < pos && pos < p+c.Size()
	})
	if found == nil {
		return nil, fmt.Errorf("%w: %d", ErrNoNode, pos)
	}
	return found, nil
}

// AtStart returns the first cursor position inside a textblock, or 0 when
// the document has none.
func (n *Node) AtStart() int {
	pos := -1
	n.Descendants(func(c *Node, p int) bool {
		if pos >= 0 {
			return false
		}
		if c.IsTextblock() {
			pos = p + 1
			return false
		}
		return true
	})
	if pos < 0 {
		return 0
	}
	return pos
}

// Equal reports whether n and o are structurally identical.
func (n *Node) Equal(o *Node) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.Type != o.Type || n.Text != o.Text || !slices.Equal(n.Marks, o.Marks) {
		return false
	}
	if len(n.Attrs) != len(o.Attrs) || !maps.Equal(n.Attrs, o.Attrs) {
		return false
	}
	if len(n.Content) != len(o.Content) {
		return false
	}
	for i := range n.Content {
		if !n.Content[i].Equal(o.Content[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	cp := &Node{
		Type:  n.Type,
		Attrs: maps.Clone(n.Attrs),
		Text:  n.Text,
		Marks: slices.Clone(n.Marks),
	}
	if n.Content != nil {
		cp.Content = make([]*Node, len(n.Content))
		for i, c := range n.Content {
			cp.Content[i] = c.Clone()
		}
	}
	return cp
}

// Check validates the content model below n.
func (n *Node) Check() error {
	switch {
	case n.IsText():
		if n.Text == "" {
			return fmt.Errorf("%w: empty text node", ErrInvalidContent)
		}
		if i := strings.IndexFunc(n.Text, invalidRune); i >= 0 {
			return fmt.Errorf("%w: control character %U in text", ErrInvalidContent, []rune(n.Text[i:])[0])
		}
		if len(n.Content) > 0 {
			return fmt.Errorf("%w: text node with children", ErrInvalidContent)
		}
		return nil
	case n.Type == TypeHardBreak:
		if len(n.Content) > 0 {
			return fmt.Errorf("%w: hard_break with children", ErrInvalidContent)
		}
		return nil
	}

	var allowed func(*Node) bool
	needsContent := false
	switch n.Type {
	case TypeDoc:
		allowed = (*Node).IsBlock
	case TypeBlockquote:
		allowed, needsContent = (*Node).IsBlock, true
	case TypeBulletList, TypeOrderedList:
		allowed = func(c *Node) bool { return c.Type == TypeListItem }
		needsContent = true
	case TypeParagraph, TypeHeading, TypeListItem:
		allowed = (*Node).IsInline
	default:
		return fmt.Errorf("%w: unknown node type %q", ErrInvalidContent, n.Type)
	}
	if needsContent && len(n.Content) == 0 {
		return fmt.Errorf("%w: empty %s", ErrInvalidContent, n.Type)
	}
	for _, c := range n.Content {
		if !allowed(c) {
			return fmt.Errorf("%w: %s inside %s", ErrInvalidContent, c.Type, n.Type)
		}
		if err := c.Check(); err != nil {
			return err
		}
	}
	return nil
}

func (n *Node) withContent(content []*Node) *Node {
	return &Node{Type: n.Type, Attrs: n.Attrs, Text: n.Text, Marks: n.Marks, Content: content}
}

func (n *Node) withAttr(name, value string) *Node {
	attrs := maps.Clone(n.Attrs)
	if attrs == nil {
		attrs = make(map[string]string, 1)
	}
	attrs[name] = value
	return &Node{Type: n.Type, Attrs: attrs, Text: n.Text, Marks: n.Marks, Content: n.Content}
}

// replaceChild rebuilds n with the node starting at pos (relative to n's
// content) replaced by the nodes fn returns.
func (n *Node) replaceChild(pos int, fn func(*Node) ([]*Node, error)) (*Node, error) {
	off := 0
	for i, c := range n.Content {
		size := c.Size()
		if off == pos && !c.IsInline() {
			repl, err := fn(c)
			if err != nil {
				return nil, err
			}
			content := make([]*Node, 0, len(n.Content)-1+len(repl))
			content = append(content, n.Content[:i]...)
			content = append(content, repl...)
			content = append(content, n.Content[i+1:]...)
			return n.withContent(content), nil
		}
		if off < pos && pos < off+size && !c.IsLeaf() {
			child, err := c.replaceChild(pos-off-1, fn)
			if err != nil {
				return nil, err
			}
			content := slices.Clone(n.Content)
			content[i] = child
			return n.withContent(content), nil
		}
		off += size
	}
	return nil, fmt.Errorf("%w: %d", ErrNoNode, pos)
}

// invalidRune reports control characters other than tab and newline. They
// do not survive a trip through markup.
func invalidRune(r rune) bool {
	return r != '\t' && r != '\n' && unicode.IsControl(r)
}

// CleanText drops the characters text nodes cannot hold.
func CleanText(s string) string {
	if strings.IndexFunc(s, invalidRune) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if invalidRune(r) {
			return -1
		}
		return r
	}, s)
}

func sortMarks(marks []Mark) []Mark {
	if len(marks) == 0 {
		return nil
	}
	var out []Mark
	for _, m := range markOrder {
		if slices.Contains(marks, m) {
			out = append(out, m)
		}
	}
	return out
}
