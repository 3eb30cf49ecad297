package matcher

import "github.com/slowlang/isel/ir"

// Callbacks bundles the four host-supplied predicates/transforms named
// in spec.md §4.1. The interpreter treats them as entirely opaque: it
// only ever calls them by the small integer id baked into the table by
// whatever produced it (here, TableBuilder). Matching the id numbering
// to the offline table-generator's scheme is explicitly an Open Question
// left to the host (spec.md §9); target/arm64demo resolves it by owning
// both the table and this struct together.
type Callbacks struct {
	// CheckPatternPredicate evaluates a predicate over global state (the
	// "target subtarget supports feature X" kind), independent of any
	// particular node.
	CheckPatternPredicate func(id uint8) bool

	// CheckNodePredicate evaluates a predicate over a single node (e.g.
	// "is constant power of two").
	CheckNodePredicate func(g *ir.Graph, n ir.Index, id uint8) bool

	// CheckComplexPat recognizes an arbitrary subgraph rooted near node
	// n (with the overall match root also available) and, on success,
	// appends its outputs to out.
	CheckComplexPat func(g *ir.Graph, root, n ir.Index, id uint8, out *[]ir.Index) bool

	// RunNodeXForm applies a host transform to a recorded value and
	// returns the transformed value (e.g. negate an immediate).
	RunNodeXForm func(g *ir.Graph, v ir.Index, id uint8) ir.Index
}

func (c Callbacks) checkPatternPredicate(id uint8) bool {
	if c.CheckPatternPredicate == nil {
		return true
	}

	return c.CheckPatternPredicate(id)
}

func (c Callbacks) checkNodePredicate(g *ir.Graph, n ir.Index, id uint8) bool {
	if c.CheckNodePredicate == nil {
		return true
	}

	return c.CheckNodePredicate(g, n, id)
}

func (c Callbacks) checkComplexPat(g *ir.Graph, root, n ir.Index, id uint8, out *[]ir.Index) bool {
	if c.CheckComplexPat == nil {
		return false
	}

	return c.CheckComplexPat(g, root, n, id, out)
}

func (c Callbacks) runNodeXForm(g *ir.Graph, v ir.Index, id uint8) ir.Index {
	if c.RunNodeXForm == nil {
		return v
	}

	return c.RunNodeXForm(g, v, id)
}
