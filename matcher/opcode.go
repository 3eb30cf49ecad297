package matcher

// Opcode is one byte of the matcher table bytecode, per spec.md §4.1's
// opcode table. Each opcode is followed by opcode-specific operand
// bytes; a few opcodes have size-class variants (Check/EmitInteger{1,2,4,8})
// that encode a little-endian, sign-extended immediate of that width.
//
// This file mirrors the shape of DAGISelMatcherEmitter.cpp's EmitMatcher
// switch: one named constant per MatcherNode::Kind, in the same order.
type Opcode byte

const (
	OpPush Opcode = iota + 1
	OpRecordNode
	OpRecordMemRef
	OpCaptureFlagInput
	OpMoveChild
	OpMoveParent
	OpCheckSame
	OpCheckPatternPredicate
	OpCheckPredicate
	OpCheckOpcode
	OpCheckType
	OpCheckInteger1
	OpCheckInteger2
	OpCheckInteger4
	OpCheckInteger8
	OpCheckCondCode
	OpCheckValueType
	OpCheckComplexPat
	OpCheckAndImm1
	OpCheckAndImm2
	OpCheckAndImm4
	OpCheckAndImm8
	OpCheckOrImm1
	OpCheckOrImm2
	OpCheckOrImm4
	OpCheckOrImm8
	OpCheckFoldableChainNode
	OpCheckChainCompatible
	OpEmitInteger1
	OpEmitInteger2
	OpEmitInteger4
	OpEmitInteger8
	OpEmitRegister
	OpEmitConvertToTarget
	OpEmitMergeInputChains
	OpEmitCopyToReg
	OpEmitNodeXForm
	OpEmitNode
	OpPatternMarker
)

// EmitNode's flags bitfield, spec.md §4.1.
type EmitNodeFlags uint8

const (
	FlagChain EmitNodeFlags = 1 << iota
	FlagFlag
	FlagMemRefs
	FlagVariadic
)

// immWidth returns the byte width of the size-classified immediate that
// follows a Check*/Emit* integer opcode, or 0 if the opcode carries no
// such immediate.
func immWidth(op Opcode) int {
	switch op {
	case OpCheckInteger1, OpCheckAndImm1, OpCheckOrImm1, OpEmitInteger1:
		return 1
	case OpCheckInteger2, OpCheckAndImm2, OpCheckOrImm2, OpEmitInteger2:
		return 2
	case OpCheckInteger4, OpCheckAndImm4, OpCheckOrImm4, OpEmitInteger4:
		return 4
	case OpCheckInteger8, OpCheckAndImm8, OpCheckOrImm8, OpEmitInteger8:
		return 8
	default:
		return 0
	}
}

func (op Opcode) String() string {
	switch op {
	case OpPush:
		return "Push"
	case OpRecordNode:
		return "RecordNode"
	case OpRecordMemRef:
		return "RecordMemRef"
	case OpCaptureFlagInput:
		return "CaptureFlagInput"
	case OpMoveChild:
		return "MoveChild"
	case OpMoveParent:
		return "MoveParent"
	case OpCheckSame:
		return "CheckSame"
	case OpCheckPatternPredicate:
		return "CheckPatternPredicate"
	case OpCheckPredicate:
		return "CheckPredicate"
	case OpCheckOpcode:
		return "CheckOpcode"
	case OpCheckType:
		return "CheckType"
	case OpCheckInteger1, OpCheckInteger2, OpCheckInteger4, OpCheckInteger8:
		return "CheckInteger"
	case OpCheckCondCode:
		return "CheckCondCode"
	case OpCheckValueType:
		return "CheckValueType"
	case OpCheckComplexPat:
		return "CheckComplexPat"
	case OpCheckAndImm1, OpCheckAndImm2, OpCheckAndImm4, OpCheckAndImm8:
		return "CheckAndImm"
	case OpCheckOrImm1, OpCheckOrImm2, OpCheckOrImm4, OpCheckOrImm8:
		return "CheckOrImm"
	case OpCheckFoldableChainNode:
		return "CheckFoldableChainNode"
	case OpCheckChainCompatible:
		return "CheckChainCompatible"
	case OpEmitInteger1, OpEmitInteger2, OpEmitInteger4, OpEmitInteger8:
		return "EmitInteger"
	case OpEmitRegister:
		return "EmitRegister"
	case OpEmitConvertToTarget:
		return "EmitConvertToTarget"
	case OpEmitMergeInputChains:
		return "EmitMergeInputChains"
	case OpEmitCopyToReg:
		return "EmitCopyToReg"
	case OpEmitNodeXForm:
		return "EmitNodeXForm"
	case OpEmitNode:
		return "EmitNode"
	case OpPatternMarker:
		return "PatternMarker"
	default:
		return "Unknown"
	}
}
