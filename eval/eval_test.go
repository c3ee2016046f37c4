// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/solidcoredata/colscan/coltype"
	"github.com/solidcoredata/colscan/compare"
	"github.com/solidcoredata/colscan/filter"
)

func v(n byte) []byte { return []byte{n, 0, 0, 0} }

func compile(t *testing.T, els []filter.Element, bop filter.BOP) *filter.Compiled {
	t.Helper()
	c, err := filter.Compile(els, bop, coltype.Default, 4, compare.TypeInfo{})
	require.NoError(t, err)
	return c
}

// compileR is compile's counterpart for use inside rapid.Check, where the
// callback only has a *rapid.T, not a *testing.T.
func compileR(rt *rapid.T, els []filter.Element, bop filter.BOP) *filter.Compiled {
	c, err := filter.Compile(els, bop, coltype.Default, 4, compare.TypeInfo{})
	if err != nil {
		rt.Fatalf("filter.Compile: %v", err)
	}
	return c
}

func TestMatchesAlwaysTrue(t *testing.T) {
	cf := compile(t, nil, filter.BOPNone)
	assert.True(t, Matches(v(5), false, cf))
}

func TestMatchesSingle(t *testing.T) {
	cf := compile(t, []filter.Element{{Cop: compare.GE, Value: v(5)}}, filter.BOPNone)
	assert.True(t, Matches(v(10), false, cf))
	assert.False(t, Matches(v(1), false, cf))
}

func TestMatchesAnyTrueAllTrue(t *testing.T) {
	els := []filter.Element{{Cop: compare.GE, Value: v(5)}, {Cop: compare.LE, Value: v(2)}}
	or := compile(t, els, filter.BOPOr)
	and := compile(t, els, filter.BOPAnd)
	assert.True(t, Matches(v(10), false, or))   // >= 5 satisfies the OR
	assert.False(t, Matches(v(10), false, and)) // fails <= 2
	assert.False(t, Matches(v(1), false, and))  // fails >= 5
}

func TestMatchesXor(t *testing.T) {
	els := []filter.Element{{Cop: compare.GE, Value: v(5)}, {Cop: compare.LE, Value: v(8)}}
	cf := compile(t, els, filter.BOPXor)
	// value 6 satisfies both predicates -> XOR is false.
	assert.False(t, Matches(v(6), false, cf))
	// value 10 satisfies only GE -> XOR is true.
	assert.True(t, Matches(v(10), false, cf))
}

func TestMatchesOneOfArray(t *testing.T) {
	els := []filter.Element{{Cop: compare.EQ, Value: v(1)}, {Cop: compare.EQ, Value: v(2)}}
	cf := compile(t, els, filter.BOPOr)
	require.Equal(t, filter.OneOfArray, cf.Mode)
	assert.True(t, Matches(v(2), false, cf))
	assert.False(t, Matches(v(3), false, cf))
}

func TestMatchesNoneOfArray(t *testing.T) {
	els := []filter.Element{{Cop: compare.NE, Value: v(1)}, {Cop: compare.NE, Value: v(2)}}
	cf := compile(t, els, filter.BOPAnd)
	require.Equal(t, filter.NoneOfArray, cf.Mode)
	assert.True(t, Matches(v(3), false, cf))
	assert.False(t, Matches(v(2), false, cf))
}

func TestMatchesOneOfSetNoneOfSet(t *testing.T) {
	var els []filter.Element
	for i := byte(0); i < 20; i++ {
		els = append(els, filter.Element{Cop: compare.EQ, Value: v(i)})
	}
	cf := compile(t, els, filter.BOPOr)
	require.Equal(t, filter.OneOfSet, cf.Mode)
	assert.True(t, Matches(v(7), false, cf))
	assert.False(t, Matches(v(200), false, cf))

	var neEls []filter.Element
	for i := byte(0); i < 20; i++ {
		neEls = append(neEls, filter.Element{Cop: compare.NE, Value: v(i)})
	}
	ncf := compile(t, neEls, filter.BOPAnd)
	require.Equal(t, filter.NoneOfSet, ncf.Mode)
	assert.False(t, Matches(v(7), false, ncf))
	assert.True(t, Matches(v(200), false, ncf))
}

func TestMatchesNullSkipsArrayAndSetModes(t *testing.T) {
	els := []filter.Element{{Cop: compare.EQ, Value: v(1)}, {Cop: compare.EQ, Value: v(2)}}
	cf := compile(t, els, filter.BOPOr)
	assert.False(t, Matches(v(1), true, cf), "a NULL value never matches OneOfArray regardless of byte pattern")

	var setEls []filter.Element
	for i := byte(0); i < 20; i++ {
		setEls = append(setEls, filter.Element{Cop: compare.EQ, Value: v(i)})
	}
	setCf := compile(t, setEls, filter.BOPOr)
	require.Equal(t, filter.OneOfSet, setCf.Mode)
	assert.False(t, Matches(v(1), true, setCf), "a NULL value never matches OneOfSet regardless of byte pattern")
}

// TestMatchesAnyAllAgreeWithManualFold checks spec §4.5's AnyTrue/AllTrue
// dispatch against a plain left-to-right fold over compare.Compare,
// for arbitrary GE/LE thresholds and probe values.
func TestMatchesAnyAllAgreeWithManualFold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(0, 20).Draw(rt, "lo")
		hi := rapid.IntRange(0, 20).Draw(rt, "hi")
		probe := rapid.IntRange(0, 20).Draw(rt, "probe")

		els := []filter.Element{{Cop: compare.GE, Value: v(byte(lo))}, {Cop: compare.LE, Value: v(byte(hi))}}
		value := v(byte(probe))

		wantAny := false
		wantAll := true
		for _, e := range els {
			m := compare.Compare(coltype.Default, 4, value, e.Value, e.Cop, e.RF, compare.TypeInfo{}, false)
			wantAny = wantAny || m
			wantAll = wantAll && m
		}

		or := compileR(rt, els, filter.BOPOr)
		and := compileR(rt, els, filter.BOPAnd)
		if got := Matches(value, false, or); got != wantAny {
			rt.Fatalf("AnyTrue(%d in [%d,%d]) = %v, want %v", probe, lo, hi, got, wantAny)
		}
		if got := Matches(value, false, and); got != wantAll {
			rt.Fatalf("AllTrue(%d in [%d,%d]) = %v, want %v", probe, lo, hi, got, wantAll)
		}
	})
}

// TestMatchesSingleAgreesWithAnyTrueOneElement is spec §8 P8 ("Single and
// AnyTrue with one element produce identical outputs") as a property over
// arbitrary single elements and probe values.
func TestMatchesSingleAgreesWithAnyTrueOneElement(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cop := rapid.SampledFrom([]compare.Cop{compare.LT, compare.LE, compare.EQ, compare.NE, compare.GE, compare.GT}).Draw(rt, "cop")
		threshold := rapid.IntRange(0, 255).Draw(rt, "threshold")
		probe := rapid.IntRange(0, 255).Draw(rt, "probe")

		els := []filter.Element{{Cop: cop, Value: v(byte(threshold))}}
		single := compileR(rt, els, filter.BOPNone)
		// Compile turns every one-element filter into Single, whatever the
		// combinator, so the AnyTrue side is built directly.
		anyTrue := &filter.Compiled{Mode: filter.AnyTrue, Elements: els, ColumnWidth: 4, Kind: coltype.Default}
		if single.Mode != filter.Single {
			rt.Fatalf("expected Single mode, got %v", single.Mode)
		}

		value := v(byte(probe))
		gotSingle := Matches(value, false, single)
		gotAny := Matches(value, false, anyTrue)
		if gotSingle != gotAny {
			rt.Fatalf("Single vs AnyTrue disagree for cop=%v threshold=%d probe=%d: %v != %v", cop, threshold, probe, gotSingle, gotAny)
		}
	})
}

// TestOneOfArrayAndOneOfSetAgree is spec §8 P7's round-trip property
// applied across the array/set mode boundary: the same EQ/OR value set,
// compiled once below the small-array threshold (array mode) and once
// above it (set mode, by padding with extra distinct values), must
// decide membership of any probe value identically for every value that
// appears in both compilations.
func TestOneOfArrayAndOneOfSetAgree(t *testing.T) {
	orig := filter.SmallArrayThreshold()
	defer filter.SetSmallArrayThreshold(orig)
	filter.SetSmallArrayThreshold(4)

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 4).Draw(rt, "n")
		var arrayEls, setEls []filter.Element
		for i := 0; i < n; i++ {
			arrayEls = append(arrayEls, filter.Element{Cop: compare.EQ, Value: v(byte(i))})
			setEls = append(setEls, filter.Element{Cop: compare.EQ, Value: v(byte(i))})
		}
		for i := n; i < n+6; i++ {
			setEls = append(setEls, filter.Element{Cop: compare.EQ, Value: v(byte(i))})
		}

		arrayCf := compileR(rt, arrayEls, filter.BOPOr)
		setCf := compileR(rt, setEls, filter.BOPOr)
		if arrayCf.Mode != filter.OneOfArray {
			rt.Fatalf("expected OneOfArray for n=%d, got %v", n, arrayCf.Mode)
		}
		if setCf.Mode != filter.OneOfSet {
			rt.Fatalf("expected OneOfSet for n=%d, got %v", n, setCf.Mode)
		}

		probe := rapid.IntRange(0, n-1).Draw(rt, "probe")
		value := v(byte(probe))
		if gotArray, gotSet := Matches(value, false, arrayCf), Matches(value, false, setCf); !gotArray || !gotSet {
			rt.Fatalf("probe %d: array=%v set=%v, want both true", probe, gotArray, gotSet)
		}
	})
}

// TestMatchesNullAlwaysFalseForMembershipModes is a property version of
// TestMatchesNullSkipsArrayAndSetModes: for arbitrary membership-mode
// filters and arbitrary byte patterns, a NULL value never matches
// OneOfArray/NoneOfArray/OneOfSet/NoneOfSet.
func TestMatchesNullAlwaysFalseForMembershipModes(t *testing.T) {
	orig := filter.SmallArrayThreshold()
	defer filter.SetSmallArrayThreshold(orig)
	filter.SetSmallArrayThreshold(3)

	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 10).Draw(rt, "n")
		var eqEls, neEls []filter.Element
		for i := 0; i < n; i++ {
			eqEls = append(eqEls, filter.Element{Cop: compare.EQ, Value: v(byte(i))})
			neEls = append(neEls, filter.Element{Cop: compare.NE, Value: v(byte(i))})
		}
		oneOf := compileR(rt, eqEls, filter.BOPOr)
		noneOf := compileR(rt, neEls, filter.BOPAnd)

		probe := rapid.IntRange(0, 255).Draw(rt, "probe")
		value := v(byte(probe))
		if Matches(value, true, oneOf) {
			rt.Fatalf("NULL matched a %v filter", oneOf.Mode)
		}
		if Matches(value, true, noneOf) {
			rt.Fatalf("NULL matched a %v filter", noneOf.Mode)
		}
	})
}
