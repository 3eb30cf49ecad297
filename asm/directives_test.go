package asm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDirectiveAlignmentClamp(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".p2align 3, 0x90, 16\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, hadErr)

	var warn *Diagnostic
	for i := range p.Diagnostics() {
		if p.Diagnostics()[i].Severity == Warning {
			warn = &p.Diagnostics()[i]
		}
	}
	require.NotNil(t, warn)
	require.True(t, strings.Contains(warn.Message, "maximum bytes"))
	require.True(t, strings.Contains(warn.Message, "has no effect"))

	require.Len(t, str.Calls, 1)
	require.Equal(t, "emit_value_to_alignment", str.Calls[0].Method)
	require.Equal(t, []any{8, int64(0x90), 1, 0}, str.Calls[0].Args)
}

func TestDirectiveAlignNoClampWhenMaxSmaller(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".align 4, 0, 2\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, hadErr)

	for _, d := range p.Diagnostics() {
		require.NotEqual(t, Warning, d.Severity)
	}

	require.Equal(t, []any{4, int64(0), 1, 2}, str.Calls[0].Args)
}

func TestDirectiveSymbolAttributeCoverage(t *testing.T) {
	cases := []struct {
		src  string
		want SymbolAttribute
	}{
		{".globl foo\n", Global},
		{".weak foo\n", Weak},
		{".hidden foo\n", Hidden},
		{".internal foo\n", Internal},
		{".protected foo\n", Protected},
		{".no_dead_strip foo\n", NoDeadStrip},
		{".indirect_symbol foo\n", IndirectSymbol},
		{".lazy_reference foo\n", LazyReference},
		{".private_extern foo\n", PrivateExtern},
		{".reference foo\n", Reference},
		{".weak_definition foo\n", WeakDefinition},
		{".weak_reference foo\n", WeakReference},
	}

	for _, c := range cases {
		str := NewRecordingStreamer()
		p := New(str)
		p.AddFile(context.Background(), "t.s", []byte(c.src))

		hadErr, err := p.Run(context.Background())
		require.NoError(t, err)
		require.False(t, hadErr, "src %q", c.src)

		require.Len(t, str.Calls, 1, "src %q", c.src)
		require.Equal(t, "emit_symbol_attribute", str.Calls[0].Method, "src %q", c.src)
		require.Equal(t, []any{"foo", c.want}, str.Calls[0].Args, "src %q", c.src)
	}
}

func TestDirectiveSymbolAttributeDedupesRepeatedDirective(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".weak foo\n.weak foo\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, hadErr)

	require.Len(t, str.Calls, 1)
}

func TestDirectiveFillRejectsBadSize(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".fill 2, 3, 0\n.byte 1\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, hadErr)

	require.Len(t, str.Calls, 1)
	require.Equal(t, "emit_value", str.Calls[0].Method)
}

func TestDirectiveFillEmitsCountCopies(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".fill 3, 2, 9\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, hadErr)

	require.Len(t, str.Calls, 3)
	for _, c := range str.Calls {
		require.Equal(t, "emit_value", c.Method)
		require.Equal(t, int64(9), c.Args[0].(MCValue).Constant)
		require.Equal(t, 2, c.Args[1])
	}
}

func TestDirectiveEquivRejectsRedefinition(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".equiv N, 1\n.equiv N, 2\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, hadErr)

	require.Len(t, str.Calls, 1)
	require.Equal(t, int64(1), str.Calls[0].Args[1].(MCValue).Constant)
}

func TestDirectiveSetAllowsRedefinition(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".set N, 1\n.set N, 2\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, hadErr)

	require.Len(t, str.Calls, 2)
	require.Equal(t, int64(2), str.Calls[1].Args[1].(MCValue).Constant)
}

func TestDirectiveSpaceFillsBytes(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".space 3, 0x41\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, hadErr)

	require.Len(t, str.Calls, 1)
	require.Equal(t, "emit_bytes", str.Calls[0].Method)
	require.Equal(t, []byte{0x41, 0x41, 0x41}, str.Calls[0].Args[0])
}

func TestDirectiveCommAndZerofill(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".comm buf, 16, 3\n.zerofill __DATA, __bss, buf2, 8, 2\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, hadErr)

	require.Len(t, str.Calls, 2)
	require.Equal(t, "emit_common_symbol", str.Calls[0].Method)
	require.Equal(t, "buf", str.Calls[0].Args[0])
	require.Equal(t, int64(16), str.Calls[0].Args[1])
	require.Equal(t, 3, str.Calls[0].Args[2])

	require.Equal(t, "emit_zerofill", str.Calls[1].Method)
	require.Equal(t, "buf2", str.Calls[1].Args[1])
}

func TestDirectiveSectionSwitch(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(".text\n.data\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.False(t, hadErr)

	require.Len(t, str.Calls, 2)
	require.Equal(t, "switch_section", str.Calls[0].Method)
	require.Equal(t, ".text", str.Calls[0].Args[0])
	require.Equal(t, ".data", str.Calls[1].Args[0])
}

func TestDirectiveAbortReportsError(t *testing.T) {
	str := NewRecordingStreamer()
	p := New(str)
	p.AddFile(context.Background(), "t.s", []byte(`.abort "stop"` + "\n"))

	hadErr, err := p.Run(context.Background())
	require.NoError(t, err)
	require.True(t, hadErr)
}
