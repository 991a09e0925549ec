package editor

import "github.com/alimasry/go-styled-editor/style"

const (
	// StyledType is the node type that carries a paragraph style.
	StyledType = "paragraph"
	// StyleAttr is the node attribute holding the style ID.
	StyleAttr = "style"
	// DataAttr is the markup attribute holding the raw style ID.
	DataAttr = "data-style"
	// ClassAttr is the markup attribute holding the presentation class.
	ClassAttr = "class"
)

// MarkupAttr is one attribute emitted on a block element.
type MarkupAttr struct {
	Key string
	Val string
}

// Declare registers the style attribute on paragraphs. Hosts that can
// validate attribute values are told to accept registered style IDs only.
func Declare(d AttrDeclarer) {
	d.DeclareAttr([]string{StyledType}, StyleAttr, string(style.Default))
	if v, ok := d.(AttrValidator); ok {
		v.ValidateAttr([]string{StyledType}, StyleAttr, style.Valid)
	}
}

// ParseStyle reads the style from an element's attributes. Missing or
// unknown values resolve to the default style.
func ParseStyle(get func(key string) (string, bool)) style.ID {
	v, ok := get(DataAttr)
	if !ok {
		return style.Default
	}
	return style.Normalize(v)
}

// RenderStyle returns the markup attributes for id. The default style
// renders nothing.
func RenderStyle(id style.ID) []MarkupAttr {
	id = style.Normalize(string(id))
	if id.IsDefault() {
		return nil
	}
	return []MarkupAttr{
		{Key: DataAttr, Val: string(id)},
		{Key: ClassAttr, Val: id.Class()},
	}
}

// StyleOf returns the style of n. Nodes that are not paragraphs, and
// paragraphs without a valid style, report the default style.
func StyleOf(n Node) style.ID {
	if n.TypeName() != StyledType {
		return style.Default
	}
	v, _ := n.Attr(StyleAttr)
	return style.Normalize(v)
}
