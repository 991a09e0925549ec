package editor_test

import (
	"testing"

	"github.com/alimasry/go-styled-editor/doc"
	"github.com/alimasry/go-styled-editor/editor"
	"github.com/alimasry/go-styled-editor/style"
)

func TestEngine_InitialState(t *testing.T) {
	_, h := load(t, `<p data-style="quote">a</p><p>b</p>`)
	e := editor.NewEngine(h)

	st := e.State()
	if st.CurrentStyle != style.Quote {
		t.Errorf("currentStyle = %q, want quote", st.CurrentStyle)
	}
	if len(st.Decorations) != 1 || st.Decorations[0].Class != "paragraph-quote" {
		t.Errorf("decorations = %+v", st.Decorations)
	}
	if len(e.Styles()) != 7 {
		t.Errorf("got %d styles, want 7", len(e.Styles()))
	}
}

func TestEngine_RendersAfterCommand(t *testing.T) {
	ed, h := load(t, "<p>a</p><p>b</p>")
	e := editor.NewEngine(h)
	var renders []editor.ViewState
	e.OnRender(func(vs editor.ViewState) { renders = append(renders, vs) })

	ed.Select(doc.Cursor(4))
	applied, err := e.SetStyle("success")
	if err != nil || !applied {
		t.Fatalf("SetStyle: %v, %v", applied, err)
	}

	if len(renders) != 2 {
		t.Fatalf("got %d renders, want 2", len(renders))
	}
	if renders[0].CurrentStyle != style.Default || len(renders[0].Decorations) != 0 {
		t.Errorf("after select: %+v", renders[0])
	}
	last := renders[1]
	if last.CurrentStyle != style.Success {
		t.Errorf("currentStyle = %q, want success", last.CurrentStyle)
	}
	want := editor.Decoration{From: 3, To: 6, Class: "paragraph-success"}
	if len(last.Decorations) != 1 || last.Decorations[0] != want {
		t.Errorf("decorations = %+v, want [%+v]", last.Decorations, want)
	}
}

func TestEngine_NoRenderWithoutChange(t *testing.T) {
	_, h := load(t, `<p data-style="info">a</p>`)
	e := editor.NewEngine(h)
	renders := 0
	e.OnRender(func(editor.ViewState) { renders++ })

	e.SetStyle("info")
	e.SetStyle("bogus")
	if renders != 0 {
		t.Errorf("got %d renders for commands that changed nothing", renders)
	}
}

func TestEngine_SelectionMoveKeepsDecorations(t *testing.T) {
	ed, h := load(t, `<p data-style="code">a</p><p data-style="info">b</p>`)
	e := editor.NewEngine(h)
	before := e.State().Decorations

	ed.Select(doc.Cursor(4))
	st := e.State()
	if st.CurrentStyle != style.Info {
		t.Errorf("currentStyle = %q, want info", st.CurrentStyle)
	}
	if len(st.Decorations) != len(before) {
		t.Fatalf("decorations changed on a selection move")
	}
	for i := range before {
		if st.Decorations[i] != before[i] {
			t.Errorf("decoration %d = %+v, want %+v", i, st.Decorations[i], before[i])
		}
	}
}

func TestEngine_ContentEditRecomputes(t *testing.T) {
	ed, h := load(t, `<p data-style="warning">ab</p>`)
	e := editor.NewEngine(h)

	if err := ed.Dispatch(doc.Transaction{Steps: []doc.Step{doc.SplitBlock(2)}}); err != nil {
		t.Fatal(err)
	}
	st := e.State()
	if len(st.Decorations) != 2 {
		t.Errorf("decorations = %+v, want one per half", st.Decorations)
	}
}

func TestEngine_StateIsACopy(t *testing.T) {
	_, h := load(t, `<p data-style="info">a</p>`)
	e := editor.NewEngine(h)
	st := e.State()
	st.Decorations[0].Class = "mutated"
	if e.State().Decorations[0].Class != "paragraph-info" {
		t.Error("State exposes the engine's decoration slice")
	}
}
