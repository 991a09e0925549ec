package doc

// Change describes a committed update of an editor.
type Change struct {
	Root             *Node
	Selection        Selection
	Version          int
	DocChanged       bool
	SelectionChanged bool
}

// Editor owns one document and the current selection. It is not safe for
// concurrent use; callers serialize access, typically from one goroutine.
type Editor struct {
	doc         *Document
	sel         Selection
	subscribers []func(Change)
}

// NewEditor creates an editor with the cursor at the start of d.
func NewEditor(d *Document) *Editor {
	return &Editor{doc: d, sel: Cursor(d.Root.AtStart())}
}

// Document returns the edited document.
func (e *Editor) Document() *Document { return e.doc }

// Root returns the current tree.
func (e *Editor) Root() *Node { return e.doc.Root }

// Selection returns the current selection.
func (e *Editor) Selection() Selection { return e.sel }

// Version returns the document version.
func (e *Editor) Version() int { return e.doc.Version }

// Subscribe registers fn to be called after every committed change.
// Subscribers run synchronously in registration order and observe the
// document and selection of the same commit.
func (e *Editor) Subscribe(fn func(Change)) {
	e.subscribers = append(e.subscribers, fn)
}

// Dispatch applies tx and maps the selection through it. On error nothing
// changes and no subscriber is called.
func (e *Editor) Dispatch(tx Transaction) error {
	before := e.doc.Version
	mapping, err := e.doc.Apply(tx)
	if err != nil {
		return err
	}
	docChanged := e.doc.Version != before

	var sel Selection
	if tx.replaces() {
		sel = Cursor(e.doc.Root.AtStart())
	} else {
		sel = e.sel.mapThrough(mapping).clamp(e.doc.Root.ContentSize())
	}
	selChanged := sel != e.sel
	e.sel = sel

	if docChanged || selChanged {
		e.notify(docChanged, selChanged)
	}
	return nil
}

// Select moves the selection. Selecting the current selection again is a
// no-op.
func (e *Editor) Select(sel Selection) error {
	if err := sel.validate(e.doc.Root.ContentSize()); err != nil {
		return err
	}
	if sel == e.sel {
		return nil
	}
	e.sel = sel
	e.notify(false, true)
	return nil
}

func (e *Editor) notify(docChanged, selChanged bool) {
	c := Change{
		Root:             e.doc.Root,
		Selection:        e.sel,
		Version:          e.doc.Version,
		DocChanged:       docChanged,
		SelectionChanged: selChanged,
	}
	for _, fn := range e.subscribers {
		fn(c)
	}
}
