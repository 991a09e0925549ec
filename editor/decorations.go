package editor

import "github.com/alimasry/go-styled-editor/style"

// Decoration marks the range of one styled paragraph for the view.
type Decoration struct {
	From  int    `json:"from"`
	To    int    `json:"to"`
	Class string `json:"class"`
}

// ComputeDecorations returns one decoration per paragraph whose style is
// not the default, in document order.
func ComputeDecorations(d Document) []Decoration {
	decos := []Decoration{}
	d.Descendants(func(n Node, pos int) bool {
		if n.TypeName() != StyledType {
			return true
		}
		if id := StyleOf(n); id != style.Default {
			decos = append(decos, Decoration{From: pos, To: pos + n.Size(), Class: id.Class()})
		}
		return false
	})
	return decos
}
