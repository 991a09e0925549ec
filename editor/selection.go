package editor

import "github.com/alimasry/go-styled-editor/style"

// CurrentStyle returns the style of the innermost paragraph whose content
// contains the selection head, or the default style when there is none.
func CurrentStyle(d Document, sel Selection) style.ID {
	pos := sel.Head
	current := style.Default
	d.Descendants(func(n Node, start int) bool {
		end := start + n.Size()
		if pos <= start || pos >= end {
			return false
		}
		if n.TypeName() == StyledType {
			current = StyleOf(n)
			return false
		}
		return true
	})
	return current
}
