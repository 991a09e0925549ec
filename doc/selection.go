package doc

import "fmt"

// Selection is a range between an anchor and a head position. The head is
// where the cursor sits.
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Cursor returns a collapsed selection at pos.
func Cursor(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

func (s Selection) From() int { return min(s.Anchor, s.Head) }
func (s Selection) To() int   { return max(s.Anchor, s.Head) }
func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

// validate checks that both ends lie inside a document of the given
// content size.
func (s Selection) validate(size int) error {
	if s.From() < 0 || s.To() > size {
		return fmt.Errorf("%w: selection %d-%d in document of size %d", ErrOutOfRange, s.Anchor, s.Head, size)
	}
	return nil
}

func (s Selection) clamp(size int) Selection {
	c := func(p int) int { return max(0, min(p, size)) }
	return Selection{Anchor: c(s.Anchor), Head: c(s.Head)}
}

func (s Selection) mapThrough(m Mapping) Selection {
	return Selection{Anchor: m.Map(s.Anchor), Head: m.Map(s.Head)}
}
