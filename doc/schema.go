package doc

import (
	"fmt"
	"maps"
)

type attrDecl struct {
	name  string
	def   string
	valid func(string) bool // nil accepts any value
}

// Schema holds attribute declarations for node types. Nodes created
// through a schema always carry every declared attribute.
type Schema struct {
	attrs map[NodeType][]attrDecl
}

// NewSchema returns a schema with the built-in heading level attribute.
func NewSchema() *Schema {
	s := &Schema{attrs: make(map[NodeType][]attrDecl)}
	s.DeclareAttr([]string{string(TypeHeading)}, "level", "1")
	return s
}

// DeclareAttr adds attribute name with default def to each node type.
// Redeclaring an attribute replaces its default.
func (s *Schema) DeclareAttr(types []string, name, def string) {
	for _, t := range types {
		nt := NodeType(t)
		decls := s.attrs[nt]
		replaced := false
		for i := range decls {
			if decls[i].name == name {
				decls[i].def = def
				replaced = true
			}
		}
		if !replaced {
			decls = append(decls, attrDecl{name: name, def: def})
		}
		s.attrs[nt] = decls
	}
}

// ValidateAttr restricts attribute name on each node type to the values
// valid accepts. The attribute must already be declared on the type.
func (s *Schema) ValidateAttr(types []string, name string, valid func(string) bool) {
	for _, t := range types {
		decls := s.attrs[NodeType(t)]
		for i := range decls {
			if decls[i].name == name {
				decls[i].valid = valid
			}
		}
	}
}

// CheckAttr reports whether value may be stored in attribute name of a
// node of type t.
func (s *Schema) CheckAttr(t NodeType, name, value string) error {
	for _, d := range s.attrs[t] {
		if d.name == name && d.valid != nil && !d.valid(value) {
			return fmt.Errorf("%w: %s %s=%q", ErrInvalidAttr, t, name, value)
		}
	}
	return nil
}

// CheckTree runs CheckAttr on every attribute of n and its descendants.
func (s *Schema) CheckTree(n *Node) error {
	for name, v := range n.Attrs {
		if err := s.CheckAttr(n.Type, name, v); err != nil {
			return err
		}
	}
	for _, c := range n.Content {
		if err := s.CheckTree(c); err != nil {
			return err
		}
	}
	return nil
}

// checkStep validates the attribute values a step would write into root.
func (s *Schema) checkStep(root *Node, st Step) error {
	switch {
	case st.Kind == StepSetAttr:
		target, err := root.NodeAt(st.Pos)
		if err != nil {
			return err
		}
		return s.CheckAttr(target.Type, st.Attr, st.Value)
	case st.Node != nil:
		return s.CheckTree(st.Node)
	}
	return nil
}

// Default returns the declared default of attribute name on type t.
func (s *Schema) Default(t NodeType, name string) (string, bool) {
	for _, d := range s.attrs[t] {
		if d.name == name {
			return d.def, true
		}
	}
	return "", false
}

// Node creates a node of type t. Declared attributes missing from attrs
// get their defaults; attrs itself is not retained.
func (s *Schema) Node(t NodeType, attrs map[string]string, content ...*Node) *Node {
	n := &Node{Type: t, Attrs: s.fill(t, attrs)}
	if len(content) > 0 {
		n.Content = content
	}
	return n
}

// Doc creates a root node.
func (s *Schema) Doc(blocks ...*Node) *Node {
	return s.Node(TypeDoc, nil, blocks...)
}

// Paragraph creates a paragraph with default attributes.
func (s *Schema) Paragraph(inline ...*Node) *Node {
	return s.Node(TypeParagraph, nil, inline...)
}

// Fill returns a copy of the tree below n where every node carries its
// declared attributes.
func (s *Schema) Fill(n *Node) *Node {
	cp := &Node{Type: n.Type, Text: n.Text, Marks: n.Marks}
	if n.IsText() {
		return cp
	}
	cp.Attrs = s.fill(n.Type, n.Attrs)
	for _, c := range n.Content {
		cp.Content = append(cp.Content, s.Fill(c))
	}
	return cp
}

func (s *Schema) fill(t NodeType, attrs map[string]string) map[string]string {
	decls := s.attrs[t]
	if len(decls) == 0 && len(attrs) == 0 {
		return nil
	}
	out := maps.Clone(attrs)
	if out == nil {
		out = make(map[string]string, len(decls))
	}
	for _, d := range decls {
		if _, ok := out[d.name]; !ok {
			out[d.name] = d.def
		}
	}
	return out
}
