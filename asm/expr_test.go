package asm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluateAbsoluteArithmetic(t *testing.T) {
	// (2 + 3) * 4 - 1 == 19
	e := Binary{
		Op: Minus,
		L: Binary{
			Op: Star,
			L:  Binary{Op: Plus, L: IntLit{2}, R: IntLit{3}},
			R:  IntLit{4},
		},
		R: IntLit{1},
	}

	v, ok := EvaluateAbsolute(e)
	require.True(t, ok)
	require.Equal(t, int64(19), v)
}

func TestEvaluateAbsoluteDivModByZero(t *testing.T) {
	_, ok := EvaluateAbsolute(Binary{Op: Slash, L: IntLit{1}, R: IntLit{0}})
	require.False(t, ok)

	_, ok = EvaluateAbsolute(Binary{Op: Percent, L: IntLit{1}, R: IntLit{0}})
	require.False(t, ok)
}

func TestEvaluateAbsoluteUnresolvedSymbolFails(t *testing.T) {
	sym := &Symbol{Name: "x"}
	_, ok := EvaluateAbsolute(SymbolRef{Sym: sym})
	require.False(t, ok)
}

func TestEvaluateAbsoluteDefinedAbsoluteSymbol(t *testing.T) {
	sym := &Symbol{Name: "N", Defined: true, Value: MCValue{Constant: 5}}

	v, ok := EvaluateAbsolute(SymbolRef{Sym: sym})
	require.True(t, ok)
	require.Equal(t, int64(5), v)
}

func TestEvaluateAbsoluteUnaryOps(t *testing.T) {
	v, ok := EvaluateAbsolute(Unary{Op: Minus, X: IntLit{7}})
	require.True(t, ok)
	require.Equal(t, int64(-7), v)

	v, ok = EvaluateAbsolute(Unary{Op: Tilde, X: IntLit{0}})
	require.True(t, ok)
	require.Equal(t, int64(-1), v)
}

func TestEvaluateAbsoluteComparisonOps(t *testing.T) {
	cases := []struct {
		op   Kind
		l, r int64
		want int64
	}{
		{EqualEqual, 3, 3, 1},
		{EqualEqual, 3, 4, 0},
		{ExclaimEqual, 3, 4, 1},
		{ExclaimEqual, 3, 3, 0},
		{LessGreater, 3, 4, 1},
		{LessGreater, 3, 3, 0},
		{Less, 3, 4, 1},
		{Less, 4, 3, 0},
		{LessEqual, 3, 3, 1},
		{LessEqual, 4, 3, 0},
		{Greater, 4, 3, 1},
		{Greater, 3, 4, 0},
		{GreaterEqual, 3, 3, 1},
		{GreaterEqual, 3, 4, 0},
	}

	for _, c := range cases {
		v, ok := EvaluateAbsolute(Binary{Op: c.op, L: IntLit{c.l}, R: IntLit{c.r}})
		require.True(t, ok)
		require.Equal(t, c.want, v, "%v %v %v", c.l, c.op, c.r)
	}
}

func TestEvaluateAbsoluteLogicalOps(t *testing.T) {
	v, ok := EvaluateAbsolute(Binary{Op: AmpAmp, L: IntLit{1}, R: IntLit{2}})
	require.True(t, ok)
	require.Equal(t, int64(1), v)

	v, ok = EvaluateAbsolute(Binary{Op: AmpAmp, L: IntLit{0}, R: IntLit{2}})
	require.True(t, ok)
	require.Equal(t, int64(0), v)

	v, ok = EvaluateAbsolute(Binary{Op: PipePipe, L: IntLit{0}, R: IntLit{0}})
	require.True(t, ok)
	require.Equal(t, int64(0), v)

	v, ok = EvaluateAbsolute(Binary{Op: PipePipe, L: IntLit{0}, R: IntLit{5}})
	require.True(t, ok)
	require.Equal(t, int64(1), v)
}

func TestEvaluateAbsoluteExclaim(t *testing.T) {
	v, ok := EvaluateAbsolute(Unary{Op: Exclaim, X: IntLit{0}})
	require.True(t, ok)
	require.Equal(t, int64(1), v)

	v, ok = EvaluateAbsolute(Unary{Op: Exclaim, X: IntLit{5}})
	require.True(t, ok)
	require.Equal(t, int64(0), v)
}

func TestBinPrecLevels(t *testing.T) {
	require.Less(t, binPrec(AmpAmp), binPrec(Plus))
	require.Less(t, binPrec(PipePipe), binPrec(EqualEqual))
	require.Equal(t, binPrec(Plus), binPrec(Less))
	require.Less(t, binPrec(Less), binPrec(Amp))
	require.Less(t, binPrec(Caret), binPrec(Star))
}

func TestEvaluateRelocatableComparisonRequiresAbsoluteOperands(t *testing.T) {
	a := &Symbol{Name: "A"}

	_, ok := EvaluateRelocatable(Binary{Op: EqualEqual, L: SymbolRef{Sym: a}, R: IntLit{0}})
	require.False(t, ok)

	v, ok := EvaluateRelocatable(Binary{Op: EqualEqual, L: IntLit{3}, R: IntLit{3}})
	require.True(t, ok)
	require.Equal(t, MCValue{Constant: 1}, v)
}

func TestEvaluateRelocatableSymbolAlwaysSelfRefers(t *testing.T) {
	sym := &Symbol{Name: "bar", Defined: true, Value: MCValue{Constant: 4, PlusSym: &Symbol{Name: "foo"}}}

	v, ok := EvaluateRelocatable(SymbolRef{Sym: sym})
	require.True(t, ok)
	require.Equal(t, MCValue{PlusSym: sym}, v)
}

func TestEvaluateRelocatableUnitMultiplication(t *testing.T) {
	a := &Symbol{Name: "A"}

	v, ok := EvaluateRelocatable(Binary{Op: Star, L: SymbolRef{Sym: a}, R: IntLit{1}})
	require.True(t, ok)
	require.Equal(t, MCValue{PlusSym: a}, v)

	v, ok = EvaluateRelocatable(Binary{Op: Star, L: IntLit{1}, R: SymbolRef{Sym: a}})
	require.True(t, ok)
	require.Equal(t, MCValue{PlusSym: a}, v)
}

func TestEvaluateRelocatableNonUnitMultiplicationOfSymbolFails(t *testing.T) {
	a := &Symbol{Name: "A"}

	_, ok := EvaluateRelocatable(Binary{Op: Star, L: SymbolRef{Sym: a}, R: IntLit{2}})
	require.False(t, ok)
}

func TestEvaluateRelocatablePlusMinusFolding(t *testing.T) {
	a := &Symbol{Name: "A"}

	e := Binary{Op: Plus, L: SymbolRef{Sym: a}, R: IntLit{4}}

	v, ok := EvaluateRelocatable(e)
	require.True(t, ok)
	require.Equal(t, int64(4), v.Constant)
	require.Equal(t, a, v.PlusSym)
	require.Nil(t, v.MinusSym)
}
