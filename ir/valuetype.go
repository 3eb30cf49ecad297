package ir

// ValueType is the closed enum of value types a Node's results carry —
// the operand of the matcher's CheckType/CheckValueType/EmitInteger/
// EmitRegister opcodes. It is a deliberately small, fixed set compared
// to the teacher's front-end tp.Type hierarchy (tp.Int/tp.Ptr/tp.Array/
// tp.Struct): layout and register allocation are out of scope here, so
// the matcher only needs enough types to classify the scalar values it
// checks and emits.
type ValueType uint8

const (
	Invalid ValueType = iota
	I8
	I16
	I32
	I64
	F32
	F64
	Ptr
	Flag
)

// Size returns the type's width in bytes, mirroring tp.Int.Size's
// Bits/8 computation; Ptr is an architecture-width placeholder fixed
// at 8 since target/arm64demo is the only concrete target, and Flag
// has no storage width and reports 0.
func (vt ValueType) Size() int {
	switch vt {
	case I8:
		return 1
	case I16:
		return 2
	case I32, F32:
		return 4
	case I64, F64, Ptr:
		return 8
	case Flag:
		return 0
	default:
		return 0
	}
}

func (vt ValueType) String() string {
	switch vt {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Ptr:
		return "ptr"
	case Flag:
		return "flag"
	default:
		return "invalid"
	}
}
