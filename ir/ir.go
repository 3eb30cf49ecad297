// Package ir implements the arena-indexed DAG that the matcher engine
// operates over. It plays the role of spec.md's "IR node (external,
// read-only to the matcher)": an opcode tag, an ordered list of operand
// nodes, zero or more value types, and an optional per-node predicate.
//
// Nodes are addressed by Index rather than pointer, per the Design Notes'
// "raw pointer graphs with manual reference counting -> arena plus
// indices": the matcher's recorded-values vector is a vector of Index,
// and shared or chain edges are just index pairs into the same Graph.
package ir

import (
	"tlog.app/go/tlog/tlwire"
)

type (
	// Index addresses a Node within a Graph. Indices of real nodes
	// start at 0; NoIndex (-1) marks the absence of a node.
	Index int

	// Opcode tags the operation a Node performs. The set is open: hosts
	// (like target/arm64demo) define their own opcode space; the matcher
	// only ever compares opcodes for equality.
	Opcode int

	// Cond names a condition code carried by condition-code nodes, as an
	// interned small string ("eq", "lt", ...).
	Cond string

	// Node is one vertex of the DAG. Node values are stored in the
	// Graph's arena and keep their Index for the lifetime of the
	// Graph; a *Node obtained via Graph.At is only valid until the
	// next Graph.Add, which may move the arena.
	Node struct {
		Opcode Opcode

		// Operands are value edges to other nodes, in operand order.
		Operands []Index

		// Types is the value type of each result the node produces —
		// almost always length 1, occasionally 0 (side-effect-only
		// nodes) or more (nodes with multiple results, e.g. a call).
		Types []ValueType

		// Const holds the integer payload for constant-integer nodes;
		// only meaningful when Opcode == OpConstant.
		Const int64

		// CondCode holds the payload for condition-code nodes; only
		// meaningful when Opcode == OpCondCode.
		CondCode Cond

		// Reg holds the payload for physical/virtual register nodes;
		// only meaningful when Opcode == OpRegister.
		Reg int

		// Pred is an optional per-node predicate. The matcher's
		// CheckPredicate opcode does not call it: it goes through the
		// host's matcher.Callbacks.CheckNodePredicate, so the callback
		// table stays the single source of truth for predicate ids.
		Pred func(g *Graph, n Index) bool

		// Chain marks this node as connected by a chain edge (ordering
		// of side effects) rather than a pure value edge. Chain edges
		// are tracked on the node rather than as a distinct operand
		// kind, per spec.md §3: "Cycles may appear only through
		// 'chain' edges, which are tracked separately."
		Chain bool

		// ChainIn, when Chain is true, names the predecessor chain
		// node; ChainUses counts how many chain users this node has,
		// used by CheckFoldableChainNode.
		ChainIn   Index
		ChainUses int

		// Flag marks a node that produces or consumes a flag-side
		// channel value (spec.md glossary, "Flag edge"). FlagIn, when
		// Flag is true, names the predecessor node whose flag output
		// this node consumes, mirroring ChainIn for chain edges.
		Flag   bool
		FlagIn Index

		// MemRefs holds the memory-reference node indices the matcher's
		// RecordMemRef opcode captured for this node's EmitNode, when
		// EmitNode's FlagMemRefs bit is set — the matcher's analogue of
		// MachineMemOperand propagation onto a newly selected node.
		MemRefs []Index

		// users counts value-edge users of this node, so
		// CheckFoldableChainNode can tell whether a node has any
		// non-chain use outside the matched region.
		users int
	}

	// Graph is an arena of Node values, addressed by Index. It owns the
	// nodes for the lifetime of one code-generation pass; a matcher
	// Interpreter never outlives the Graph it was run against.
	Graph struct {
		nodes []Node
	}
)

const NoIndex Index = -1

// Reserved opcodes the matcher interpreter itself understands, analogous
// to LLVM SelectionDAG's low ISD:: enumerators that sit below each
// target's BUILTIN_OP_END. Host-defined opcodes (target instructions,
// say in target/arm64demo) are expected to use small non-negative values
// starting at 0, so these reserved ones are negative to never collide.
const (
	OpConstant Opcode = -(iota + 1)
	OpRegister
	OpCondCode
	OpValueType
	OpAnd
	OpOr
)

// New returns an empty Graph.
func New() *Graph {
	return &Graph{}
}

// Add allocates a new Node and returns its Index. Operands' user counts
// are incremented so later foldability checks see accurate use counts.
func (g *Graph) Add(n Node) Index {
	idx := Index(len(g.nodes))
	g.nodes = append(g.nodes, n)

	for _, op := range n.Operands {
		g.nodes[op].users++
	}

	if n.Chain && n.ChainIn >= 0 {
		g.nodes[n.ChainIn].ChainUses++
	}

	return idx
}

// At returns a pointer to the node at idx. The pointer is valid until the
// next Add call, since Add may grow the backing slice.
func (g *Graph) At(idx Index) *Node {
	return &g.nodes[idx]
}

func (g *Graph) Len() int { return len(g.nodes) }

// Users reports how many value-edge users idx has.
func (g *Graph) Users(idx Index) int {
	return g.nodes[idx].users
}

// ReplaceUses rewrites every operand reference to old, in every node of
// the graph, to instead reference replacement. Used by the matcher's
// EmitNode opcode to splice the produced node into the DAG in place of
// the matched root.
func (g *Graph) ReplaceUses(old, replacement Index) {
	for i := range g.nodes {
		for j, op := range g.nodes[i].Operands {
			if op == old {
				g.nodes[i].Operands[j] = replacement
				g.nodes[replacement].users++
				g.nodes[old].users--
			}
		}
	}
}

func (n Node) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	b = e.AppendMap(b, 2)
	b = e.AppendKeyInt64(b, "op", int64(n.Opcode))
	b = e.AppendKeyInt64(b, "nops", int64(len(n.Operands)))

	return b
}
