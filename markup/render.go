package markup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/alimasry/go-styled-editor/doc"
	"github.com/alimasry/go-styled-editor/editor"
	"github.com/alimasry/go-styled-editor/style"
)

var markTags = map[doc.Mark]string{
	doc.MarkBold:   "strong",
	doc.MarkItalic: "em",
	doc.MarkCode:   "code",
}

// ToMarkup renders the blocks of root as HTML. Default-styled paragraphs
// render as bare <p> elements.
func ToMarkup(root *doc.Node) (string, error) {
	var b strings.Builder
	for _, block := range root.Content {
		n, err := renderNode(block)
		if err != nil {
			return "", err
		}
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("render markup: %w", err)
		}
	}
	return b.String(), nil
}

// Normalize parses and re-renders s. Normalized markup is a fixed point:
// normalizing it again returns it unchanged.
func Normalize(s string) (string, error) {
	root, err := FromMarkup(s)
	if err != nil {
		return "", err
	}
	return ToMarkup(root)
}

func renderNode(n *doc.Node) (*html.Node, error) {
	switch n.Type {
	case doc.TypeParagraph:
		el := element("p")
		for _, a := range editor.RenderStyle(editor.StyleOf(n)) {
			el.Attr = append(el.Attr, html.Attribute{Key: a.Key, Val: a.Val})
		}
		appendInline(el, n.Content)
		return el, nil
	case doc.TypeHeading:
		el := element("h" + strconv.Itoa(headingLevel(n)))
		appendInline(el, n.Content)
		return el, nil
	case doc.TypeListItem:
		el := element("li")
		appendInline(el, n.Content)
		return el, nil
	case doc.TypeBlockquote, doc.TypeBulletList, doc.TypeOrderedList:
		tag := map[doc.NodeType]string{
			doc.TypeBlockquote:  "blockquote",
			doc.TypeBulletList:  "ul",
			doc.TypeOrderedList: "ol",
		}[n.Type]
		el := element(tag)
		for _, c := range n.Content {
			child, err := renderNode(c)
			if err != nil {
				return nil, err
			}
			el.AppendChild(child)
		}
		return el, nil
	}
	return nil, fmt.Errorf("render markup: unexpected %s node", n.Type)
}

func appendInline(parent *html.Node, content []*doc.Node) {
	for _, c := range content {
		if c.Type == doc.TypeHardBreak {
			parent.AppendChild(element("br"))
			continue
		}
		node := &html.Node{Type: html.TextNode, Data: c.Text}
		for i := len(c.Marks) - 1; i >= 0; i-- {
			wrap := element(markTags[c.Marks[i]])
			wrap.AppendChild(node)
			node = wrap
		}
		parent.AppendChild(node)
	}
}

func element(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}

var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "ul", "ol", "li",
		"strong", "b", "em", "i", "code", "br",
	)
	p.AllowAttrs(editor.DataAttr).Matching(styleToken).OnElements("p")
	p.AllowAttrs(editor.ClassAttr).Matching(classToken).OnElements("p")
	return p
}

var (
	styleToken = regexp.MustCompile(`^[a-z]+$`)
	classToken = regexp.MustCompile(`^` + style.ClassPrefix + `[a-z]+$`)
)

// Sanitize strips everything from s that the document model cannot carry:
// scripts, event handlers, unknown elements and attributes.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}
