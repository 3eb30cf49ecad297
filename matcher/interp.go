// Package matcher implements the instruction-selection matcher engine:
// a byte-coded tree-pattern interpreter that rewrites a subgraph of an
// ir.Graph DAG into replacement nodes, driven by an immutable Table
// produced offline by TableBuilder (or, in a real toolchain, by the
// out-of-scope table-generator).
package matcher

import (
	"github.com/slowlang/isel/ir"
)

type (
	// scope is the rollback frame spec.md §3 calls a "Scope frame": a
	// tuple of cursor position, recorded length, and the failure PC to
	// resume at.
	scope struct {
		failurePC   int
		cursor      ir.Index
		recordedLen int
		childrenLen int
		chainLen    int
	}

	// Interpreter runs one matcher Table against one ir.Graph. It is not
	// safe for concurrent use — spec.md §5 requires each interpreter to
	// own its cursor/recorded/scopes exclusively — but a Table and an
	// ir.Graph may each be shared by distinct Interpreters.
	Interpreter struct {
		g     *ir.Graph
		table Table
		cb    Callbacks

		cursor   ir.Index
		children []ir.Index
		recorded []ir.Index
		memRefs  []ir.Index
		scopes   []scope

		chainInputs []ir.Index
		flagInput   ir.Index
	}

	// Result describes a successful match: the node that now replaces
	// the matched root in the graph.
	Result struct {
		Node ir.Index
	}
)

// New returns an Interpreter bound to g and table, using cb for the
// host-supplied predicates and transforms.
func New(g *ir.Graph, table Table, cb Callbacks) *Interpreter {
	return &Interpreter{g: g, table: table, cb: cb}
}

// Run attempts to match the table against root. ok is false and err is
// nil when every alternative in the table failed — spec.md §4.1's "no
// pattern matched" case, which is "not an error" at the interpreter
// level; it is the caller's policy whether to treat that as fatal. err
// is non-nil only for a structurally corrupt table.
func (in *Interpreter) Run(root ir.Index) (res Result, ok bool, err error) {
	in.cursor = root
	in.children = in.children[:0]
	in.recorded = in.recorded[:0]
	in.memRefs = in.memRefs[:0]
	in.scopes = in.scopes[:0]
	in.chainInputs = in.chainInputs[:0]
	in.flagInput = ir.NoIndex

	r := &reader{t: in.table}

	fail := func() (bool, error) {
		if len(in.scopes) == 0 {
			return false, nil
		}

		top := in.scopes[len(in.scopes)-1]
		in.scopes = in.scopes[:len(in.scopes)-1]

		in.cursor = top.cursor
		in.recorded = in.recorded[:top.recordedLen]
		in.children = in.children[:top.childrenLen]
		in.chainInputs = in.chainInputs[:top.chainLen]
		r.pc = top.failurePC

		return true, nil
	}

	for {
		op, rerr := r.opcode()
		if rerr != nil {
			return Result{}, false, rerr
		}

		cont, matched, rerr := in.step(r, op, root)
		if rerr != nil {
			return Result{}, false, rerr
		}

		switch {
		case matched:
			return Result{Node: in.cursor}, true, nil
		case cont:
			continue
		default:
			again, rerr := fail()
			if rerr != nil {
				return Result{}, false, rerr
			}

			if !again {
				return Result{}, false, nil
			}
		}
	}
}

// step executes exactly one opcode. matched is true once an EmitNode has
// finalized the rewrite. cont is false when the opcode failed a check
// and the caller must unwind a scope (or report no-match).
func (in *Interpreter) step(r *reader, op Opcode, root ir.Index) (cont, matched bool, err error) {
	switch op {
	case OpPush:
		off, err := r.u8()
		if err != nil {
			return false, false, err
		}

		in.scopes = append(in.scopes, scope{
			failurePC:   r.pc + int(off),
			cursor:      in.cursor,
			recordedLen: len(in.recorded),
			childrenLen: len(in.children),
			chainLen:    len(in.chainInputs),
		})

		return true, false, nil

	case OpRecordNode:
		in.recorded = append(in.recorded, in.cursor)
		return true, false, nil

	case OpRecordMemRef:
		in.memRefs = append(in.memRefs, in.cursor)
		return true, false, nil

	case OpCaptureFlagInput:
		in.flagInput = in.cursor
		return true, false, nil

	case OpMoveChild:
		idx, err := r.u8()
		if err != nil {
			return false, false, err
		}

		n := in.g.At(in.cursor)
		if int(idx) >= len(n.Operands) {
			return false, false, nil // pattern assumed more operands than this node has
		}

		in.children = append(in.children, in.cursor)
		in.cursor = n.Operands[idx]

		return true, false, nil

	case OpMoveParent:
		if len(in.children) == 0 {
			return false, false, CorruptTableError{PC: r.pc, Reason: "MoveParent with empty children stack"}
		}

		in.cursor = in.children[len(in.children)-1]
		in.children = in.children[:len(in.children)-1]

		return true, false, nil

	case OpCheckSame:
		slot, err := r.u8()
		if err != nil {
			return false, false, err
		}

		if int(slot) >= len(in.recorded) {
			return false, false, CorruptTableError{PC: r.pc, Reason: "CheckSame slot out of range"}
		}

		return in.cursor == in.recorded[slot], false, nil

	case OpCheckPatternPredicate:
		id, err := r.u8()
		if err != nil {
			return false, false, err
		}

		return in.cb.checkPatternPredicate(id), false, nil

	case OpCheckPredicate:
		id, err := r.u8()
		if err != nil {
			return false, false, err
		}

		return in.cb.checkNodePredicate(in.g, in.cursor, id), false, nil

	case OpCheckOpcode:
		want, err := r.u8()
		if err != nil {
			return false, false, err
		}

		return in.g.At(in.cursor).Opcode == ir.Opcode(want), false, nil

	case OpCheckType:
		vt, err := r.u8()
		if err != nil {
			return false, false, err
		}

		n := in.g.At(in.cursor)

		return len(n.Types) > 0 && n.Types[0] == ValueType(vt), false, nil

	case OpCheckInteger1, OpCheckInteger2, OpCheckInteger4, OpCheckInteger8:
		val, err := r.immN(immWidth(op))
		if err != nil {
			return false, false, err
		}

		n := in.g.At(in.cursor)

		return n.Opcode == ir.OpConstant && n.Const == val, false, nil

	case OpCheckCondCode:
		cc, err := r.u8()
		if err != nil {
			return false, false, err
		}

		if int(cc) >= len(condCodeNames) {
			return false, false, CorruptTableError{PC: r.pc, Reason: "CheckCondCode operand out of range"}
		}

		n := in.g.At(in.cursor)

		return n.Opcode == ir.OpCondCode && n.CondCode == condCodeNames[cc], false, nil

	case OpCheckValueType:
		vt, err := r.u8()
		if err != nil {
			return false, false, err
		}

		n := in.g.At(in.cursor)

		return n.Opcode == ir.OpValueType && len(n.Types) > 0 && n.Types[0] == ValueType(vt), false, nil

	case OpCheckComplexPat:
		id, err := r.u8()
		if err != nil {
			return false, false, err
		}

		var out []ir.Index
		if !in.cb.checkComplexPat(in.g, root, in.cursor, id, &out) {
			return false, false, nil
		}

		in.recorded = append(in.recorded, out...)

		return true, false, nil

	case OpCheckAndImm1, OpCheckAndImm2, OpCheckAndImm4, OpCheckAndImm8:
		return in.checkBinImm(r, op, ir.OpAnd)

	case OpCheckOrImm1, OpCheckOrImm2, OpCheckOrImm4, OpCheckOrImm8:
		return in.checkBinImm(r, op, ir.OpOr)

	case OpCheckFoldableChainNode:
		n := in.g.At(in.cursor)

		return n.Chain && n.ChainUses == 1 && in.g.Users(in.cursor) == 0, false, nil

	case OpCheckChainCompatible:
		// prevOp (the preceding chain node's opcode) is part of the wire
		// format but unused here: chainCompatible only needs cycle
		// detection, not opcode-specific scheduling rules.
		if _, err := r.u8(); err != nil {
			return false, false, err
		}

		return in.chainCompatible(in.cursor), false, nil

	case OpEmitInteger1, OpEmitInteger2, OpEmitInteger4, OpEmitInteger8:
		vtb, err := r.u8()
		if err != nil {
			return false, false, err
		}

		val, err := r.immN(immWidth(op))
		if err != nil {
			return false, false, err
		}

		idx := in.g.Add(ir.Node{Opcode: ir.OpConstant, Const: val, Types: []ir.ValueType{vtFromByte(vtb)}})
		in.recorded = append(in.recorded, idx)

		return true, false, nil

	case OpEmitRegister:
		vtb, err := r.u8()
		if err != nil {
			return false, false, err
		}

		regID, err := r.u8()
		if err != nil {
			return false, false, err
		}

		idx := in.g.Add(ir.Node{Opcode: ir.OpRegister, Reg: int(regID), Types: []ir.ValueType{vtFromByte(vtb)}})
		in.recorded = append(in.recorded, idx)

		return true, false, nil

	case OpEmitConvertToTarget:
		slot, err := r.u8()
		if err != nil {
			return false, false, err
		}

		if int(slot) >= len(in.recorded) {
			return false, false, CorruptTableError{PC: r.pc, Reason: "EmitConvertToTarget slot out of range"}
		}

		src := in.recorded[slot]
		srcNode := in.g.At(src)

		idx := in.g.Add(ir.Node{Opcode: ir.OpConstant, Const: srcNode.Const, Types: append([]ir.ValueType{}, srcNode.Types...)})
		in.recorded = append(in.recorded, idx)

		return true, false, nil

	case OpEmitMergeInputChains:
		n, err := r.u8()
		if err != nil {
			return false, false, err
		}

		slots, err := r.bytesN(int(n))
		if err != nil {
			return false, false, err
		}

		for _, s := range slots {
			if int(s) >= len(in.recorded) {
				return false, false, CorruptTableError{PC: r.pc, Reason: "EmitMergeInputChains slot out of range"}
			}

			in.chainInputs = append(in.chainInputs, in.recorded[s])
		}

		return true, false, nil

	case OpEmitCopyToReg:
		srcSlot, err := r.u8()
		if err != nil {
			return false, false, err
		}

		regID, err := r.u8()
		if err != nil {
			return false, false, err
		}

		if int(srcSlot) >= len(in.recorded) {
			return false, false, CorruptTableError{PC: r.pc, Reason: "EmitCopyToReg slot out of range"}
		}

		idx := in.g.Add(ir.Node{
			Opcode:   ir.OpRegister,
			Reg:      int(regID),
			Operands: []ir.Index{in.recorded[srcSlot]},
			Types:    []ir.ValueType{},
		})
		in.recorded = append(in.recorded, idx)

		return true, false, nil

	case OpEmitNodeXForm:
		xformID, err := r.u8()
		if err != nil {
			return false, false, err
		}

		slot, err := r.u8()
		if err != nil {
			return false, false, err
		}

		if int(slot) >= len(in.recorded) {
			return false, false, CorruptTableError{PC: r.pc, Reason: "EmitNodeXForm slot out of range"}
		}

		idx := in.cb.runNodeXForm(in.g, in.recorded[slot], xformID)
		in.recorded = append(in.recorded, idx)

		return true, false, nil

	case OpEmitNode:
		idx, err := in.emitNode(r)
		if err != nil {
			return false, false, err
		}

		in.g.ReplaceUses(root, idx)
		in.cursor = idx

		return false, true, nil

	case OpPatternMarker:
		return true, false, nil

	default:
		return false, false, CorruptTableError{PC: r.pc, Reason: "unhandled opcode"}
	}
}

func (in *Interpreter) checkBinImm(r *reader, op Opcode, want ir.Opcode) (bool, bool, error) {
	val, err := r.immN(immWidth(op))
	if err != nil {
		return false, false, err
	}

	n := in.g.At(in.cursor)
	if n.Opcode != want || len(n.Operands) != 2 {
		return false, false, nil
	}

	rhs := in.g.At(n.Operands[1])

	return rhs.Opcode == ir.OpConstant && rhs.Const == val, false, nil
}

// chainCompatible reports whether accepting cursor's chain input would
// not create a cycle with chain edges already folded into this match —
// i.e. cursor's chain predecessor is not itself among the already
// recorded chain inputs.
func (in *Interpreter) chainCompatible(cursor ir.Index) bool {
	n := in.g.At(cursor)
	if !n.Chain {
		return true
	}

	for _, c := range in.chainInputs {
		if c == n.ChainIn {
			return false
		}
	}

	return true
}

func (in *Interpreter) emitNode(r *reader) (ir.Index, error) {
	opLo, err := r.u16()
	if err != nil {
		return 0, err
	}

	flagsB, err := r.u8()
	if err != nil {
		return 0, err
	}
	flags := EmitNodeFlags(flagsB)

	numVTs, err := r.u8()
	if err != nil {
		return 0, err
	}

	vtBytes, err := r.bytesN(int(numVTs))
	if err != nil {
		return 0, err
	}

	numOps, err := r.u8()
	if err != nil {
		return 0, err
	}

	opSlots, err := r.bytesN(int(numOps))
	if err != nil {
		return 0, err
	}

	vts := make([]ir.ValueType, numVTs)
	for i, b := range vtBytes {
		vts[i] = vtFromByte(b)
	}

	operands := make([]ir.Index, numOps)
	for i, s := range opSlots {
		if int(s) >= len(in.recorded) {
			return 0, CorruptTableError{PC: r.pc, Reason: "EmitNode operand slot out of range"}
		}

		operands[i] = in.recorded[s]
	}

	// A variadic node's operand count isn't known until match time (a
	// CheckComplexPat can append a variable-length result to recorded),
	// so it takes every currently recorded value instead of a
	// table-encoded, fixed set of slots.
	if flags&FlagVariadic != 0 {
		operands = append([]ir.Index{}, in.recorded...)
	}

	node := ir.Node{
		Opcode:   ir.Opcode(opLo),
		Operands: operands,
		Types:    vts,
		Chain:    flags&FlagChain != 0,
		Flag:     flags&FlagFlag != 0,
		FlagIn:   ir.NoIndex,
	}

	if node.Chain && len(in.chainInputs) > 0 {
		node.ChainIn = in.chainInputs[0]
	} else {
		node.ChainIn = ir.NoIndex
	}

	if node.Flag && in.flagInput != ir.NoIndex {
		node.FlagIn = in.flagInput
	}

	if flags&FlagMemRefs != 0 {
		node.MemRefs = append([]ir.Index{}, in.memRefs...)
	}

	return in.g.Add(node), nil
}

func vtFromByte(b byte) ir.ValueType { return ir.ValueType(b) }

// condCodeNames maps the CheckCondCode operand byte to the condition
// string stored on a CondCode node. Index 0 is reserved/invalid.
var condCodeNames = []ir.Cond{
	"", "eq", "ne", "lt", "le", "gt", "ge",
}

