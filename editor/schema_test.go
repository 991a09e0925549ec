package editor_test

import (
	"testing"

	"github.com/alimasry/go-styled-editor/doc"
	"github.com/alimasry/go-styled-editor/editor"
	"github.com/alimasry/go-styled-editor/style"
)

type recordingDeclarer struct {
	types []string
	name  string
	def   string
}

func (r *recordingDeclarer) DeclareAttr(types []string, name, def string) {
	r.types, r.name, r.def = types, name, def
}

func TestDeclare(t *testing.T) {
	var r recordingDeclarer
	editor.Declare(&r)
	if len(r.types) != 1 || r.types[0] != "paragraph" || r.name != "style" || r.def != "default" {
		t.Errorf("declared %+v", r)
	}
}

type validatingDeclarer struct {
	recordingDeclarer
	valid func(string) bool
}

func (v *validatingDeclarer) ValidateAttr(types []string, name string, valid func(string) bool) {
	if len(types) == 1 && types[0] == "paragraph" && name == "style" {
		v.valid = valid
	}
}

func TestDeclareValidatesStyle(t *testing.T) {
	var v validatingDeclarer
	editor.Declare(&v)
	if v.valid == nil {
		t.Fatal("no validator registered for the style attribute")
	}
	for _, e := range style.All() {
		if !v.valid(string(e.ID)) {
			t.Errorf("registered style %q refused", e.ID)
		}
	}
	for _, bad := range []string{"", "bogus", "paragraph-info", "Info"} {
		if v.valid(bad) {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name  string
		attrs map[string]string
		want  style.ID
	}{
		{"missing", nil, style.Default},
		{"known", map[string]string{"data-style": "warning"}, style.Warning},
		{"unknown", map[string]string{"data-style": "bogus"}, style.Default},
		{"empty", map[string]string{"data-style": ""}, style.Default},
		{"class only", map[string]string{"class": "paragraph-info"}, style.Default},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			get := func(k string) (string, bool) {
				v, ok := tt.attrs[k]
				return v, ok
			}
			if got := editor.ParseStyle(get); got != tt.want {
				t.Errorf("ParseStyle = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderStyle(t *testing.T) {
	if got := editor.RenderStyle(style.Default); got != nil {
		t.Errorf("default renders %+v, want nothing", got)
	}
	if got := editor.RenderStyle("bogus"); got != nil {
		t.Errorf("unknown renders %+v, want nothing", got)
	}
	got := editor.RenderStyle(style.Success)
	want := []editor.MarkupAttr{{Key: "data-style", Val: "success"}, {Key: "class", Val: "paragraph-success"}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("RenderStyle(success) = %+v, want %+v", got, want)
	}
}

func TestStyleOf(t *testing.T) {
	tests := []struct {
		name string
		node *doc.Node
		want style.ID
	}{
		{"styled paragraph", &doc.Node{Type: doc.TypeParagraph, Attrs: map[string]string{"style": "quote"}}, style.Quote},
		{"paragraph without attribute", &doc.Node{Type: doc.TypeParagraph}, style.Default},
		{"invalid value", &doc.Node{Type: doc.TypeParagraph, Attrs: map[string]string{"style": "nope"}}, style.Default},
		{"heading", &doc.Node{Type: doc.TypeHeading, Attrs: map[string]string{"style": "quote"}}, style.Default},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := editor.StyleOf(tt.node); got != tt.want {
				t.Errorf("StyleOf = %q, want %q", got, tt.want)
			}
		})
	}
}
