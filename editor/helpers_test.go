package editor_test

import (
	"testing"

	"github.com/alimasry/go-styled-editor/doc"
	"github.com/alimasry/go-styled-editor/editor"
	"github.com/alimasry/go-styled-editor/markup"
	"github.com/alimasry/go-styled-editor/style"
)

// load builds an editor over the document parsed from s.
func load(t testing.TB, s string) (*doc.Editor, *doc.Host) {
	t.Helper()
	root, err := markup.FromMarkup(s)
	if err != nil {
		t.Fatal(err)
	}
	ed := doc.NewEditor(doc.NewDocument(markup.NewSchema(), root))
	return ed, doc.NewHost(ed)
}

// paragraphStyles lists the style of every paragraph in document order.
func paragraphStyles(root *doc.Node) []style.ID {
	var out []style.ID
	root.Descendants(func(n *doc.Node, _ int) bool {
		if n.Type == doc.TypeParagraph {
			out = append(out, editor.StyleOf(n))
			return false
		}
		return true
	})
	return out
}

func render(t testing.TB, ed *doc.Editor) string {
	t.Helper()
	s, err := markup.ToMarkup(ed.Root())
	if err != nil {
		t.Fatal(err)
	}
	return s
}
