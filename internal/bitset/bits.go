// Package bitset provides a growable bitset keyed by a small integer type,
// used by the assembler to track which attributes a symbol already has.
package bitset

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Key is any integer-like type that can address a bit.
	Key interface {
		~int | ~int32 | ~int64
	}

	// Set is a bitset over values of type K, based at an arbitrary offset
	// so small ranges away from zero don't force a large backing array.
	Set[K Key] struct {
		base K
		b    []uint64
		b0   [2]uint64
	}
)

var zeros = [8]uint64{}

// Make returns a Set based at base; values below base are never set.
func Make[K Key](base K) Set[K] {
	s := Set[K]{base: base}
	s.b = s.b0[:]

	return s
}

func (s Set[K]) Copy() Set[K] {
	c := Make(s.base)

	c.grow(len(s.b))
	copy(c.b, s.b)

	return c
}

func (s *Set[K]) Set(k K) {
	i, j := s.ij(k)

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s Set[K]) IsSet(k K) bool {
	i, j := s.ij(k)

	if i < 0 || i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s *Set[K]) Clear(k K) {
	i, j := s.ij(k)

	if i < 0 || i >= len(s.b) {
		return
	}

	s.b[i] &^= 1 << j
}

func (s *Set[K]) SetAll(ks ...K) {
	for _, k := range ks {
		s.Set(k)
	}
}

// TruncateFrom drops every bit set at or above k.
func (s *Set[K]) TruncateFrom(k K) {
	i, j := s.ij(k)

	if i < 0 || i >= len(s.b) {
		return
	}

	s.b[i] &^= ^uint64(0) << j

	for x := i + 1; x < len(s.b); x++ {
		s.b[x] = 0
	}
}

func (s Set[K]) Size() (r int) {
	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

func (s Set[K]) Range(f func(k K) bool) {
	for i, x := range s.b {
		if x == 0 {
			continue
		}

		for j := bits.TrailingZeros64(x); j < bits.Len64(x); j++ {
			if x&(1<<j) == 0 {
				continue
			}

			if !f(s.base + K(i*64+j)) {
				return
			}
		}
	}
}

func (s *Set[K]) Reset() {
	for i := 0; i < len(s.b); {
		i += copy(s.b[i:], zeros[:])
	}

	s.strip()
}

func (s Set[K]) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(k K) bool {
		b = e.AppendInt(b, int(k))

		return true
	})

	return e.AppendBreak(b)
}

func (s *Set[K]) strip() {
	l := len(s.b)

	for l > 0 && s.b[l-1] == 0 {
		l--
	}

	s.b = s.b[:l]
}

func (s *Set[K]) ij(k K) (i, j int) {
	p := int(k - s.base)
	if p < 0 {
		return -1, 0
	}

	return p / 64, p % 64
}

func (s *Set[K]) grow(i int) {
	if s.b == nil {
		s.b = s.b0[:]
	}

	for i >= cap(s.b) {
		s.b = append(s.b[:cap(s.b)], 0)
	}

	s.b = s.b[:cap(s.b)]
}
