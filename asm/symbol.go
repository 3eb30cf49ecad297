package asm

import "github.com/slowlang/isel/internal/bitset"

// Symbol is one entry of a parse's symbol table: a name plus whether
// and how it has been defined. The symbol table's lifecycle equals one
// parse (spec.md §5); callers running concurrent parses must each use
// a fresh SymbolTable.
type Symbol struct {
	Name     string
	Defined  bool
	External bool
	Value    MCValue
	DefPos   Pos

	// attrs tracks which SymbolAttribute values have already been
	// applied via a .globl/.weak/.hidden/... directive, so a repeated
	// directive for the same symbol+attribute is a no-op rather than
	// a duplicate streamer call.
	attrs bitset.Set[SymbolAttribute]
}

// HasAttr reports whether attr was already recorded for this symbol by
// RecordAttr.
func (s *Symbol) HasAttr(attr SymbolAttribute) bool {
	return s.attrs.IsSet(attr)
}

// RecordAttr marks attr as applied, returning false if it was already
// set (the caller's cue to skip re-emitting it).
func (s *Symbol) RecordAttr(attr SymbolAttribute) bool {
	if s.attrs.IsSet(attr) {
		return false
	}

	s.attrs.Set(attr)

	return true
}

// SymbolTable owns the Symbol set for one parse.
type SymbolTable struct {
	syms map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{syms: map[string]*Symbol{}}
}

// Get returns the named symbol, creating an undefined placeholder the
// first time it's referenced — mirroring how a forward reference to a
// label not yet seen must still resolve to *something* during parsing.
// A freshly created placeholder starts marked External, per spec.md
// §4.3 ("identifier -> SymbolRef; if not previously seen, marked
// external"); whichever statement goes on to define it clears that.
func (st *SymbolTable) Get(name string) *Symbol {
	if sym, ok := st.syms[name]; ok {
		return sym
	}

	sym := &Symbol{Name: name, External: true, attrs: bitset.Make[SymbolAttribute](0)}
	st.syms[name] = sym

	return sym
}

// Lookup reports whether name already has a table entry, without
// creating one.
func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := st.syms[name]
	return sym, ok
}
