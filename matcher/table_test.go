package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderImmNSignExtension(t *testing.T) {
	cases := []struct {
		name string
		n    int
		b    []byte
		want int64
	}{
		{"u8 positive", 1, []byte{0x05}, 5},
		{"u8 negative", 1, []byte{0xfb}, -5},
		{"u16 negative", 2, []byte{0xff, 0xff}, -1},
		{"u32 positive", 4, []byte{0x2a, 0, 0, 0}, 42},
		{"u64 negative", 8, []byte{0xfe, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, -2},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := &reader{t: Table(c.b)}

			got, err := r.immN(c.n)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestReaderTruncatedImmediate(t *testing.T) {
	r := &reader{t: Table{0x01}}

	_, err := r.immN(4)
	require.Error(t, err)

	var cerr CorruptTableError
	require.ErrorAs(t, err, &cerr)
}

func TestReaderOpcodeOutOfRange(t *testing.T) {
	r := &reader{t: Table{0xff}}

	_, err := r.opcode()
	require.Error(t, err)
}

func TestReaderU16LittleEndian(t *testing.T) {
	r := &reader{t: Table{0x34, 0x12}}

	v, err := r.u16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x1234), v)
}

func TestCorruptTableErrorMessage(t *testing.T) {
	err := CorruptTableError{PC: 7, Reason: "bad"}
	require.Contains(t, err.Error(), "pc=7")
	require.Contains(t, err.Error(), "bad")
}
