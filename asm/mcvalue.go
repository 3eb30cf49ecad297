package asm

import "fmt"

// MCValue is a relocatable expression value: a constant plus an
// optional positive symbol term and an optional negative symbol term,
// per the GLOSSARY's "Relocatable value. An expression value of the
// form const + &plus_sym − &minus_sym". Most expressions reduce to
// PlusSym == MinusSym == nil (an absolute value); arithmetic on two
// symbols from the same section would, in a real assembler, also
// resolve to absolute, but that section-equality reduction is left to
// the host streamer (spec.md's "Open Questions" territory for section
// models) rather than hardcoded here.
type MCValue struct {
	Constant int64
	PlusSym  *Symbol
	MinusSym *Symbol
}

// IsAbsolute reports whether the value carries no unresolved symbol
// terms.
func (v MCValue) IsAbsolute() bool {
	return v.PlusSym == nil && v.MinusSym == nil
}

func (v MCValue) String() string {
	switch {
	case v.PlusSym != nil && v.MinusSym != nil:
		return fmt.Sprintf("(%d, +%s, -%s)", v.Constant, v.PlusSym.Name, v.MinusSym.Name)
	case v.PlusSym != nil:
		return fmt.Sprintf("(%d, +%s)", v.Constant, v.PlusSym.Name)
	case v.MinusSym != nil:
		return fmt.Sprintf("(%d, -%s)", v.Constant, v.MinusSym.Name)
	default:
		return fmt.Sprintf("%d", v.Constant)
	}
}

// addSym returns a new term list after adding sym with the given sign,
// canceling against an opposite-sign occurrence of the same symbol —
// this is what makes "A - A" reduce to absolute 0 (spec.md §8).
func addSym(plus, minus *Symbol, sym *Symbol, positive bool) (*Symbol, *Symbol, bool) {
	if positive {
		if minus == sym {
			return plus, nil, true
		}
		if plus == nil {
			return sym, minus, true
		}
		return plus, minus, false // already have a plus term; not representable
	}

	if plus == sym {
		return nil, minus, true
	}
	if minus == nil {
		return plus, sym, true
	}

	return plus, minus, false
}

// Add computes v + w, returning ok=false if the result would need more
// than one plus-term and one minus-term to represent.
func (v MCValue) Add(w MCValue) (MCValue, bool) {
	out := MCValue{Constant: v.Constant + w.Constant, PlusSym: v.PlusSym, MinusSym: v.MinusSym}

	if w.PlusSym != nil {
		p, m, ok := addSym(out.PlusSym, out.MinusSym, w.PlusSym, true)
		if !ok {
			return MCValue{}, false
		}
		out.PlusSym, out.MinusSym = p, m
	}

	if w.MinusSym != nil {
		p, m, ok := addSym(out.PlusSym, out.MinusSym, w.MinusSym, false)
		if !ok {
			return MCValue{}, false
		}
		out.PlusSym, out.MinusSym = p, m
	}

	return out, true
}

// Sub computes v - w, per spec.md §8's relocatable-normalization
// property: (A+3) − (B+1) evaluates to (2, +A, −B).
func (v MCValue) Sub(w MCValue) (MCValue, bool) {
	neg := MCValue{Constant: -w.Constant, PlusSym: w.MinusSym, MinusSym: w.PlusSym}
	return v.Add(neg)
}

// Negate computes -v; only defined when v is absolute, matching real
// assemblers' refusal to negate a bare symbol reference (negating a
// relocation would need a term this representation can't carry).
func (v MCValue) Negate() (MCValue, bool) {
	if !v.IsAbsolute() {
		return MCValue{}, false
	}

	return MCValue{Constant: -v.Constant}, true
}
