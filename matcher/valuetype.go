package matcher

import "github.com/slowlang/isel/ir"

// ValueType re-exports ir.ValueType: the matcher checks and emits value
// types that live on ir.Node, so the two must be the identical type, not
// just convertible. Kept as a matcher-local name since every opcode
// operand in this package's doc comments is phrased in terms of
// "matcher.ValueType".
type ValueType = ir.ValueType

const (
	Invalid = ir.Invalid
	I8      = ir.I8
	I16     = ir.I16
	I32     = ir.I32
	I64     = ir.I64
	F32     = ir.F32
	F64     = ir.F64
	Ptr     = ir.Ptr
	Flag    = ir.Flag
)
