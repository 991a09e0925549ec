// Package editor implements paragraph styling on top of a host document:
// the style attribute schema, the set-style command, decoration and
// current-style projections, and an engine keeping them in sync with the
// host.
package editor

// Node is the read view of one host document node.
type Node interface {
	TypeName() string
	Attr(name string) (string, bool)
	// Size is the number of position tokens the node spans.
	Size() int
}

// Document is a tree addressed by integer positions.
type Document interface {
	// Descendants calls fn for every node in document order with the
	// position directly before it. Returning false skips the node's
	// children.
	Descendants(fn func(n Node, pos int) bool)
}

// Selection is the host selection. Head is where the cursor sits.
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

func (s Selection) From() int   { return min(s.Anchor, s.Head) }
func (s Selection) To() int     { return max(s.Anchor, s.Head) }
func (s Selection) Empty() bool { return s.Anchor == s.Head }

// Tx collects attribute writes of one host transaction.
type Tx interface {
	SetNodeAttr(pos int, name, value string) error
}

// Change reports what a host commit touched.
type Change struct {
	DocChanged       bool
	SelectionChanged bool
}

// Host is the document capability the engine runs on.
type Host interface {
	Document() Document
	Selection() Selection
	// Update runs fn as one transaction. If fn or the commit fails the
	// document is left unchanged.
	Update(fn func(tx Tx) error) error
	// Subscribe registers fn to run after every committed document or
	// selection change.
	Subscribe(fn func(Change))
}

// AttrDeclarer is the host mechanism for declaring node attributes.
type AttrDeclarer interface {
	DeclareAttr(types []string, name, def string)
}

// AttrValidator is implemented by hosts that can restrict the values an
// attribute accepts.
type AttrValidator interface {
	ValidateAttr(types []string, name string, valid func(string) bool)
}
