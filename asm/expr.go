package asm

import "fmt"

// Expr is an assembly expression tree, built by the parser's precedence
// climbing and evaluated against a SymbolTable by EvaluateAbsolute or
// EvaluateRelocatable.
type Expr interface {
	isExpr()
}

type (
	IntLit struct {
		Val int64
	}

	SymbolRef struct {
		Sym *Symbol
	}

	Unary struct {
		Op Kind // Plus, Minus, Tilde (bitwise not), Exclaim (logical not)
		X  Expr
	}

	Binary struct {
		Op   Kind
		L, R Expr
	}
)

func (IntLit) isExpr()    {}
func (SymbolRef) isExpr() {}
func (Unary) isExpr()     {}
func (Binary) isExpr()    {}

func (x IntLit) String() string    { return fmt.Sprintf("%d", x.Val) }
func (x SymbolRef) String() string { return x.Sym.Name }
func (x Unary) String() string     { return fmt.Sprintf("%s%v", x.Op, x.X) }
func (x Binary) String() string    { return fmt.Sprintf("(%v %s %v)", x.L, x.Op, x.R) }

// binPrec ranks binary operators low-to-high per spec.md §4.3's
// precedence table: &&/|| lowest, then +/-/comparisons, then |^&, then
// */ /%<<>> highest. Comparison and logical operators are accepted by
// the grammar but always fold through evalBinAbsolute (they only ever
// produce 0/1 on two absolute operands; relocatable operands make them
// fail, same as any non-+/- operator per §4.3).
func binPrec(k Kind) int {
	switch k {
	case AmpAmp, PipePipe:
		return 1
	case Plus, Minus, EqualEqual, ExclaimEqual, LessGreater, Less, LessEqual, Greater, GreaterEqual:
		return 2
	case Amp, Pipe, Caret:
		return 3
	case Star, Slash, Percent, Shl, Shr:
		return 4
	default:
		return -1
	}
}

// EvaluateAbsolute succeeds iff expr contains no unresolved symbols.
// Division/modulo by zero is reported via ok=false, never a panic.
func EvaluateAbsolute(e Expr) (int64, bool) {
	switch x := e.(type) {
	case IntLit:
		return x.Val, true
	case SymbolRef:
		if !x.Sym.Defined || !x.Sym.Value.IsAbsolute() {
			return 0, false
		}
		return x.Sym.Value.Constant, true
	case Unary:
		v, ok := EvaluateAbsolute(x.X)
		if !ok {
			return 0, false
		}
		return evalUnaryAbsolute(x.Op, v)
	case Binary:
		l, ok := EvaluateAbsolute(x.L)
		if !ok {
			return 0, false
		}
		r, ok := EvaluateAbsolute(x.R)
		if !ok {
			return 0, false
		}
		return evalBinAbsolute(x.Op, l, r)
	default:
		return 0, false
	}
}

func evalBinAbsolute(op Kind, l, r int64) (int64, bool) {
	switch op {
	case Plus:
		return l + r, true
	case Minus:
		return l - r, true
	case Star:
		return l * r, true
	case Slash:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case Percent:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case Amp:
		return l & r, true
	case Pipe:
		return l | r, true
	case Caret:
		return l ^ r, true
	case Shl:
		return l << uint(r), true
	case Shr:
		return l >> uint(r), true
	case EqualEqual:
		return boolInt(l == r), true
	case ExclaimEqual, LessGreater:
		return boolInt(l != r), true
	case Less:
		return boolInt(l < r), true
	case LessEqual:
		return boolInt(l <= r), true
	case Greater:
		return boolInt(l > r), true
	case GreaterEqual:
		return boolInt(l >= r), true
	case AmpAmp:
		return boolInt(l != 0 && r != 0), true
	case PipePipe:
		return boolInt(l != 0 || r != 0), true
	default:
		return 0, false
	}
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// evalUnaryAbsolute covers the unary operators the grammar accepts;
// Tilde and Exclaim both only ever apply to an already-absolute
// operand, the same as every binary operator but +/-.
func evalUnaryAbsolute(op Kind, v int64) (int64, bool) {
	switch op {
	case Plus:
		return v, true
	case Minus:
		return -v, true
	case Tilde:
		return ^v, true
	case Exclaim:
		return boolInt(v == 0), true
	default:
		return 0, false
	}
}

// EvaluateRelocatable folds expr to (const, +sym?, -sym?) per spec.md
// §4.3: a constant combines with any side, A-A cancels to absolute 0,
// A-B yields (0,+A,-B), and any operator other than +/- applied to a
// non-absolute sub-expression fails, as does multiplying a symbolic
// term by anything but 1.
func EvaluateRelocatable(e Expr) (MCValue, bool) {
	switch x := e.(type) {
	case IntLit:
		return MCValue{Constant: x.Val}, true
	case SymbolRef:
		// A symbol reference always folds to a relocation against the
		// symbol itself, never through whatever value it may already
		// have (a label's eventual address isn't known at parse
		// time, and an assigned symbol's value is for its own
		// emit_assignment record, not for inlining at later use
		// sites).
		return MCValue{PlusSym: x.Sym}, true
	case Unary:
		v, ok := EvaluateRelocatable(x.X)
		if !ok {
			return MCValue{}, false
		}
		switch x.Op {
		case Plus:
			return v, true
		case Minus:
			return v.Negate()
		default:
			if !v.IsAbsolute() {
				return MCValue{}, false
			}
			a, _ := EvaluateAbsolute(x.X)
			r, ok := evalUnaryAbsolute(x.Op, a)
			return MCValue{Constant: r}, ok
		}
	case Binary:
		l, ok := EvaluateRelocatable(x.L)
		if !ok {
			return MCValue{}, false
		}
		r, ok := EvaluateRelocatable(x.R)
		if !ok {
			return MCValue{}, false
		}

		switch x.Op {
		case Plus:
			return l.Add(r)
		case Minus:
			return l.Sub(r)
		case Star:
			if l.IsAbsolute() && l.Constant == 1 {
				return r, true
			}
			if r.IsAbsolute() && r.Constant == 1 {
				return l, true
			}
			if !l.IsAbsolute() || !r.IsAbsolute() {
				return MCValue{}, false
			}
			return MCValue{Constant: l.Constant * r.Constant}, true
		default:
			if !l.IsAbsolute() || !r.IsAbsolute() {
				return MCValue{}, false
			}
			v, ok := evalBinAbsolute(x.Op, l.Constant, r.Constant)
			return MCValue{Constant: v}, ok
		}
	default:
		return MCValue{}, false
	}
}
