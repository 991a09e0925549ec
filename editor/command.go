package editor

import (
	"fmt"

	"github.com/alimasry/go-styled-editor/style"
)

type styledBlock struct {
	pos   int
	style style.ID
}

// SetStyle sets the style of every paragraph touched by the host selection
// in a single transaction. It reports false without touching the document
// when id is not a registered style or the selection touches no paragraph.
// Paragraphs that already carry id are left alone, so repeating the
// command is a no-op.
func SetStyle(h Host, id string) (bool, error) {
	if !style.Valid(id) {
		return false, nil
	}
	blocks := blocksInSelection(h.Document(), h.Selection())
	if len(blocks) == 0 {
		return false, nil
	}

	err := h.Update(func(tx Tx) error {
		for _, b := range blocks {
			if string(b.style) == id {
				continue
			}
			if err := tx.SetNodeAttr(b.pos, StyleAttr, id); err != nil {
				return fmt.Errorf("set style at %d: %w", b.pos, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// blocksInSelection collects the paragraphs a selection touches. A cursor
// touches the paragraph whose content contains it; a range touches every
// paragraph overlapping it. Other node types are skipped.
func blocksInSelection(d Document, sel Selection) []styledBlock {
	from, to := sel.From(), sel.To()
	touches := func(start, end int) bool {
		if sel.Empty() {
			return start < from && from < end
		}
		return start < to && end > from
	}

	var blocks []styledBlock
	d.Descendants(func(n Node, pos int) bool {
		if !touches(pos, pos+n.Size()) {
			return false
		}
		if n.TypeName() == StyledType {
			blocks = append(blocks, styledBlock{pos: pos, style: StyleOf(n)})
			return false
		}
		return true
	})
	return blocks
}
