package asm

// SymbolAttribute is one of the attributes .globl/.weak/.hidden/etc
// attach to a symbol (spec.md §4.5's emit_symbol_attribute).
type SymbolAttribute int

const (
	Global SymbolAttribute = iota
	Hidden
	IndirectSymbol
	Internal
	LazyReference
	NoDeadStrip
	PrivateExtern
	Protected
	Reference
	Weak
	WeakDefinition
	WeakReference
)

// Streamer is the abstract sink the parser drives: a concrete
// implementation emits an object file, an assembly listing
// (target/arm64demo.TextStreamer), or accumulates calls for tests
// (RecordingStreamer). Directive emissions happen strictly in source
// order (spec.md §5); a Streamer may rely on that.
type Streamer interface {
	EmitLabel(sym *Symbol)
	EmitAssignment(sym *Symbol, value MCValue, isDotSet bool)
	EmitSymbolAttribute(sym *Symbol, attr SymbolAttribute)
	EmitSymbolDesc(sym *Symbol, desc int64)
	EmitCommonSymbol(sym *Symbol, size int64, pow2Align int, isLocal bool)
	EmitZerofill(section string, sym *Symbol, size int64, pow2Align int)
	EmitLocalSymbol(sym *Symbol, value MCValue)
	EmitBytes(b []byte)
	EmitValue(value MCValue, size int)
	EmitValueToAlignment(align int, fill int64, valueSize int, maxBytesToFill int)
	EmitValueToOffset(offset MCValue, fill int64)
	EmitInstruction(mnemonic string, operands []Expr)
	EmitAssemblerFlag(flag string)
	SwitchSection(name string)
}

// call records one Streamer invocation, by method name and arguments,
// for RecordingStreamer's trace.
type call struct {
	Method string
	Args   []any
}

// RecordingStreamer implements Streamer by recording every call
// verbatim, for driving scenario tests against an exact expected trace
// (spec.md §8's concrete parser scenarios) without committing to any
// particular object-file format.
type RecordingStreamer struct {
	Calls []call
}

func NewRecordingStreamer() *RecordingStreamer {
	return &RecordingStreamer{}
}

func (s *RecordingStreamer) record(method string, args ...any) {
	s.Calls = append(s.Calls, call{Method: method, Args: args})
}

func (s *RecordingStreamer) EmitLabel(sym *Symbol) {
	s.record("emit_label", sym.Name)
}

func (s *RecordingStreamer) EmitAssignment(sym *Symbol, value MCValue, isDotSet bool) {
	s.record("emit_assignment", sym.Name, value, isDotSet)
}

func (s *RecordingStreamer) EmitSymbolAttribute(sym *Symbol, attr SymbolAttribute) {
	s.record("emit_symbol_attribute", sym.Name, attr)
}

func (s *RecordingStreamer) EmitSymbolDesc(sym *Symbol, desc int64) {
	s.record("emit_symbol_desc", sym.Name, desc)
}

func (s *RecordingStreamer) EmitCommonSymbol(sym *Symbol, size int64, pow2Align int, isLocal bool) {
	s.record("emit_common_symbol", sym.Name, size, pow2Align, isLocal)
}

func (s *RecordingStreamer) EmitZerofill(section string, sym *Symbol, size int64, pow2Align int) {
	name := ""
	if sym != nil {
		name = sym.Name
	}
	s.record("emit_zerofill", section, name, size, pow2Align)
}

func (s *RecordingStreamer) EmitLocalSymbol(sym *Symbol, value MCValue) {
	s.record("emit_local_symbol", sym.Name, value)
}

func (s *RecordingStreamer) EmitBytes(b []byte) {
	s.record("emit_bytes", append([]byte{}, b...))
}

func (s *RecordingStreamer) EmitValue(value MCValue, size int) {
	s.record("emit_value", value, size)
}

func (s *RecordingStreamer) EmitValueToAlignment(align int, fill int64, valueSize int, maxBytesToFill int) {
	s.record("emit_value_to_alignment", align, fill, valueSize, maxBytesToFill)
}

func (s *RecordingStreamer) EmitValueToOffset(offset MCValue, fill int64) {
	s.record("emit_value_to_offset", offset, fill)
}

func (s *RecordingStreamer) EmitInstruction(mnemonic string, operands []Expr) {
	s.record("emit_instruction", mnemonic, operands)
}

func (s *RecordingStreamer) EmitAssemblerFlag(flag string) {
	s.record("emit_assembler_flag", flag)
}

func (s *RecordingStreamer) SwitchSection(name string) {
	s.record("switch_section", name)
}
