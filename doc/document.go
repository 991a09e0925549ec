package doc

import "fmt"

// Transaction is a sequence of steps applied as one unit.
type Transaction struct {
	Steps []Step `json:"steps"`
}

// replaces reports whether the transaction swaps the whole tree.
func (tx Transaction) replaces() bool {
	for _, s := range tx.Steps {
		if s.Kind == StepReplace {
			return true
		}
	}
	return false
}

// Document is a document tree with its committed transaction history.
type Document struct {
	Root    *Node
	Version int
	History []Transaction

	// Schema, when set, fills declared attributes on nodes brought in by
	// insertBlock and replace steps and rejects steps that would store a
	// value its validators refuse.
	Schema *Schema
}

// NewDocument creates a document at version 0. A nil root becomes an
// empty doc node.
func NewDocument(schema *Schema, root *Node) *Document {
	if root == nil {
		root = &Node{Type: TypeDoc}
	}
	if schema != nil {
		root = schema.Fill(root)
	}
	return &Document{Root: root, Schema: schema}
}

// Apply applies every step of tx in order. Either all steps apply and the
// result passes Check, or the document is left untouched. A transaction
// that leaves the tree unchanged is not recorded and does not bump the
// version.
func (d *Document) Apply(tx Transaction) (Mapping, error) {
	root := d.Root
	mapping := make(Mapping, 0, len(tx.Steps))
	steps := make([]Step, len(tx.Steps))
	for i, st := range tx.Steps {
		if d.Schema != nil {
			if st.Node != nil {
				st.Node = d.Schema.Fill(st.Node)
			}
			if err := d.Schema.checkStep(root, st); err != nil {
				return nil, fmt.Errorf("apply step %d (%s) to document v%d: %w", i, st.Kind, d.Version, err)
			}
		}
		steps[i] = st
		next, m, err := st.Apply(root)
		if err != nil {
			return nil, fmt.Errorf("apply step %d (%s) to document v%d: %w", i, st.Kind, d.Version, err)
		}
		root = next
		mapping = append(mapping, m)
	}
	if err := root.Check(); err != nil {
		return nil, fmt.Errorf("apply to document v%d: %w", d.Version, err)
	}
	if root.Equal(d.Root) {
		return mapping, nil
	}
	d.Root = root
	d.Version++
	d.History = append(d.History, Transaction{Steps: steps})
	return mapping, nil
}
