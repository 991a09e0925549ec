package editor

import (
	"slices"

	"github.com/alimasry/go-styled-editor/style"
)

// ViewState is what the view layer renders: the decorations and the style
// shown in the toolbar, both derived from the same document snapshot.
type ViewState struct {
	Decorations  []Decoration `json:"decorations"`
	CurrentStyle style.ID     `json:"currentStyle"`
}

// Engine keeps a ViewState in sync with a host.
type Engine struct {
	host      Host
	state     ViewState
	listeners []func(ViewState)
}

// NewEngine computes the initial view state of h and subscribes to it.
func NewEngine(h Host) *Engine {
	e := &Engine{host: h}
	e.recompute(true)
	h.Subscribe(e.handleChange)
	return e
}

// State returns the current view state.
func (e *Engine) State() ViewState {
	return ViewState{
		Decorations:  slices.Clone(e.state.Decorations),
		CurrentStyle: e.state.CurrentStyle,
	}
}

// Styles returns the style registry for toolbar display.
func (e *Engine) Styles() []style.Entry { return style.All() }

// SetStyle runs the set-style command against the host. The view state is
// refreshed through the host's change notification.
func (e *Engine) SetStyle(id string) (bool, error) {
	return SetStyle(e.host, id)
}

// OnRender registers fn to be called with the new view state after every
// host change.
func (e *Engine) OnRender(fn func(ViewState)) {
	e.listeners = append(e.listeners, fn)
}

func (e *Engine) handleChange(c Change) {
	if !c.DocChanged && !c.SelectionChanged {
		return
	}
	e.recompute(c.DocChanged)
	for _, fn := range e.listeners {
		fn(e.State())
	}
}

// recompute reads document and selection once so decorations and current
// style always describe the same state. Decorations only depend on the
// document and are kept across pure selection moves.
func (e *Engine) recompute(docChanged bool) {
	d, sel := e.host.Document(), e.host.Selection()
	if docChanged {
		e.state.Decorations = ComputeDecorations(d)
	}
	e.state.CurrentStyle = CurrentStyle(d, sel)
}
