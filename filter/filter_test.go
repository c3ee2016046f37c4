// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/solidcoredata/colscan/coltype"
	"github.com/solidcoredata/colscan/compare"
)

func elem(cop compare.Cop, v byte) Element {
	return Element{Cop: cop, Value: []byte{v, 0, 0, 0}}
}

func TestCompileModeSelection(t *testing.T) {
	ti := compare.TypeInfo{}

	t.Run("empty is always-true", func(t *testing.T) {
		c, err := Compile(nil, BOPNone, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, AlwaysTrue, c.Mode)
	})

	t.Run("single element", func(t *testing.T) {
		c, err := Compile([]Element{elem(compare.EQ, 1)}, BOPNone, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, Single, c.Mode)
	})

	t.Run("small all-EQ OR is array", func(t *testing.T) {
		els := []Element{elem(compare.EQ, 1), elem(compare.EQ, 2)}
		c, err := Compile(els, BOPOr, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, OneOfArray, c.Mode)
		assert.Nil(t, c.Set)
	})

	t.Run("large all-EQ OR is set", func(t *testing.T) {
		var els []Element
		for i := 0; i < smallArrayThreshold+2; i++ {
			els = append(els, elem(compare.EQ, byte(i)))
		}
		c, err := Compile(els, BOPOr, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, OneOfSet, c.Mode)
		require.NotNil(t, c.Set)
		assert.Equal(t, len(els), c.Set.Len())
	})

	t.Run("large all-NE AND is none-of-set", func(t *testing.T) {
		var els []Element
		for i := 0; i < smallArrayThreshold+2; i++ {
			els = append(els, elem(compare.NE, byte(i)))
		}
		c, err := Compile(els, BOPAnd, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, NoneOfSet, c.Mode)
	})

	t.Run("mixed cops with OR is any-true", func(t *testing.T) {
		els := []Element{elem(compare.GE, 1), elem(compare.LE, 9)}
		c, err := Compile(els, BOPOr, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, AnyTrue, c.Mode)
	})

	t.Run("mixed cops with AND is all-true", func(t *testing.T) {
		els := []Element{elem(compare.GE, 1), elem(compare.LE, 9)}
		c, err := Compile(els, BOPAnd, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, AllTrue, c.Mode)
	})

	t.Run("xor combinator", func(t *testing.T) {
		els := []Element{elem(compare.EQ, 1), elem(compare.EQ, 2)}
		c, err := Compile(els, BOPXor, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, XorAll, c.Mode)
	})

	t.Run("none combinator defaults to or", func(t *testing.T) {
		els := []Element{elem(compare.GE, 1), elem(compare.LE, 9)}
		c, err := Compile(els, BOPNone, coltype.Default, 4, ti)
		require.NoError(t, err)
		assert.Equal(t, AnyTrue, c.Mode)
	})
}

func TestSmallArrayThresholdOverride(t *testing.T) {
	orig := SmallArrayThreshold()
	defer SetSmallArrayThreshold(orig)

	SetSmallArrayThreshold(2)
	assert.Equal(t, 2, SmallArrayThreshold())

	SetSmallArrayThreshold(0) // ignored: must stay positive
	assert.Equal(t, 2, SmallArrayThreshold())
}

func TestDownConvertNarrowsToColumnWidth(t *testing.T) {
	wide := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	got := downConvert(wide, 4)
	assert.Equal(t, []byte{1, 2, 3, 4}, got)

	narrow := []byte{9, 9}
	got = downConvert(narrow, 4)
	assert.Equal(t, []byte{9, 9, 0, 0}, got)
}

// TestCompileModeSelectionProperty encodes spec §4.3's mode-selection
// rules in order (empty/single/array-vs-set threshold/combinator
// mapping) and checks Compile against them for arbitrary element counts,
// cops, and combinators, instead of only the hand-picked cases above.
func TestCompileModeSelectionProperty(t *testing.T) {
	orig := SmallArrayThreshold()
	defer SetSmallArrayThreshold(orig)
	SetSmallArrayThreshold(8)

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 40).Draw(rt, "n")
		cop := rapid.SampledFrom([]compare.Cop{compare.EQ, compare.NE, compare.GE}).Draw(rt, "cop")
		bop := rapid.SampledFrom([]BOP{BOPNone, BOPAnd, BOPOr, BOPXor}).Draw(rt, "bop")

		var els []Element
		for i := 0; i < n; i++ {
			els = append(els, elem(cop, byte(i)))
		}
		c, err := Compile(els, bop, coltype.Default, 4, compare.TypeInfo{})
		if err != nil {
			rt.Fatalf("Compile(n=%d, cop=%v, bop=%v) returned error: %v", n, cop, bop, err)
		}

		effective := bop
		if effective == BOPNone {
			effective = BOPOr
		}

		var want Mode
		switch {
		case n == 0:
			want = AlwaysTrue
		case n == 1:
			want = Single
		case cop == compare.EQ && effective == BOPOr && n > SmallArrayThreshold():
			want = OneOfSet
		case cop == compare.NE && effective == BOPAnd && n > SmallArrayThreshold():
			want = NoneOfSet
		case cop == compare.EQ && effective == BOPOr:
			want = OneOfArray
		case cop == compare.NE && effective == BOPAnd:
			want = NoneOfArray
		default:
			switch effective {
			case BOPOr:
				want = AnyTrue
			case BOPAnd:
				want = AllTrue
			case BOPXor:
				want = XorAll
			}
		}
		if want != c.Mode {
			rt.Fatalf("n=%d cop=%v bop=%v: Compile mode = %v, want %v", n, cop, bop, c.Mode, want)
		}
		if want == OneOfSet || want == NoneOfSet {
			if c.Set == nil || c.Set.Len() != n {
				rt.Fatalf("n=%d: expected a %d-element hashset, got %v", n, n, c.Set)
			}
		}
	})
}

// TestDownConvertAlwaysProducesColumnWidth is a property check that
// downConvert's output is exactly columnWidth bytes regardless of the
// input's (wider or narrower) length, the invariant every array/set
// eval comparison depends on.
func TestDownConvertAlwaysProducesColumnWidth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		width := rapid.SampledFrom([]int{1, 2, 4, 8, 16}).Draw(rt, "width")
		n := rapid.IntRange(0, 24).Draw(rt, "n")
		v := rapid.SliceOfN(rapid.Byte(), n, n).Draw(rt, "v")
		got := downConvert(v, width)
		if len(got) != width {
			rt.Fatalf("downConvert(%v, %d) has length %d, want %d", v, width, len(got), width)
		}
	})
}
