// Package markup converts documents to and from HTML. Paragraph styles
// travel as a data-style attribute plus a paragraph-<id> class.
package markup

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/alimasry/go-styled-editor/doc"
	"github.com/alimasry/go-styled-editor/editor"
)

var schema = NewSchema()

// NewSchema returns a document schema with the paragraph style attribute
// declared.
func NewSchema() *doc.Schema {
	s := doc.NewSchema()
	editor.Declare(s)
	return s
}

// FromMarkup parses HTML into a document tree. Whitespace-only text between
// blocks is dropped and loose inline content is wrapped in paragraphs.
func FromMarkup(s string) (*doc.Node, error) {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	root := schema.Doc(parseBlocks(page.Find("body"))...)
	if err := root.Check(); err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}
	return root, nil
}

func parseBlocks(parent *goquery.Selection) []*doc.Node {
	var blocks, loose []*doc.Node
	flush := func() {
		inline := doc.NormalizeInline(loose)
		loose = nil
		if blank(inline) {
			return
		}
		blocks = append(blocks, schema.Paragraph(inline...))
	}

	parent.Contents().Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		switch n.Type {
		case html.TextNode:
			loose = append(loose, parseInline(s, nil)...)
			return
		case html.ElementNode:
		default:
			return
		}

		switch tag := goquery.NodeName(s); tag {
		case "p":
			flush()
			attrs := map[string]string{editor.StyleAttr: string(editor.ParseStyle(s.Attr))}
			blocks = append(blocks, schema.Node(doc.TypeParagraph, attrs, inlineContent(s)...))
		case "h1", "h2", "h3", "h4", "h5", "h6":
			flush()
			attrs := map[string]string{"level": tag[1:]}
			blocks = append(blocks, schema.Node(doc.TypeHeading, attrs, inlineContent(s)...))
		case "blockquote":
			flush()
			inner := parseBlocks(s)
			if len(inner) == 0 {
				inner = []*doc.Node{schema.Paragraph()}
			}
			blocks = append(blocks, schema.Node(doc.TypeBlockquote, nil, inner...))
		case "ul", "ol":
			flush()
			t := doc.TypeBulletList
			if tag == "ol" {
				t = doc.TypeOrderedList
			}
			items := parseItems(s)
			if len(items) == 0 {
				return
			}
			blocks = append(blocks, schema.Node(t, nil, items...))
		case "div", "section", "article", "main", "header", "footer":
			flush()
			blocks = append(blocks, parseBlocks(s)...)
		default:
			loose = append(loose, parseInline(s, nil)...)
		}
	})
	flush()
	return blocks
}

func parseItems(list *goquery.Selection) []*doc.Node {
	var items []*doc.Node
	list.Contents().Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		if n.Type == html.TextNode && strings.TrimSpace(n.Data) == "" {
			return
		}
		if n.Type != html.TextNode && n.Type != html.ElementNode {
			return
		}
		var inline []*doc.Node
		if goquery.NodeName(s) == "li" {
			inline = inlineContent(s)
		} else {
			inline = doc.NormalizeInline(parseInline(s, nil))
		}
		items = append(items, schema.Node(doc.TypeListItem, nil, inline...))
	})
	return items
}

func inlineContent(s *goquery.Selection) []*doc.Node {
	var out []*doc.Node
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		out = append(out, parseInline(c, nil)...)
	})
	return doc.NormalizeInline(out)
}

// parseInline flattens s into text and break nodes. Elements other than the
// known marks are unwrapped.
func parseInline(s *goquery.Selection, marks []doc.Mark) []*doc.Node {
	n := s.Get(0)
	switch n.Type {
	case html.TextNode:
		text := doc.CleanText(n.Data)
		if text == "" {
			return nil
		}
		return []*doc.Node{doc.NewText(text, marks...)}
	case html.ElementNode:
	default:
		return nil
	}

	switch goquery.NodeName(s) {
	case "br":
		return []*doc.Node{doc.NewHardBreak()}
	case "strong", "b":
		marks = append(slices.Clip(marks), doc.MarkBold)
	case "em", "i":
		marks = append(slices.Clip(marks), doc.MarkItalic)
	case "code":
		marks = append(slices.Clip(marks), doc.MarkCode)
	case "script", "style":
		return nil
	}
	var out []*doc.Node
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		out = append(out, parseInline(c, marks)...)
	})
	return out
}

func blank(inline []*doc.Node) bool {
	for _, n := range inline {
		if !n.IsText() || strings.TrimSpace(n.Text) != "" {
			return false
		}
	}
	return true
}

func headingLevel(n *doc.Node) int {
	v, _ := n.Attr("level")
	level, err := strconv.Atoi(v)
	if err != nil || level < 1 || level > 6 {
		return 1
	}
	return level
}
