// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package filter is the scan core's C3 component: it accepts a
// serialized filter (a compare-op/value/rf tuple per element plus a
// boolean combinator) and compiles it into an immutable form carrying a
// dispatch mode, ready for package eval to apply to every value package
// iter yields.
package filter

import (
	"fmt"

	"github.com/solidcoredata/colscan/coltype"
	"github.com/solidcoredata/colscan/compare"
	"github.com/solidcoredata/colscan/hashset"
)

// BOP is the wire-level boolean combinator (spec §6: 1=And, 2=Or,
// 3=Xor, 0=None).
type BOP int

const (
	BOPNone BOP = 0
	BOPAnd  BOP = 1
	BOPOr   BOP = 2
	BOPXor  BOP = 3
)

// Mode selects how Eval.Matches dispatches over a compiled filter.
type Mode int

const (
	AlwaysTrue Mode = iota
	Single
	AnyTrue
	AllTrue
	XorAll
	OneOfArray
	NoneOfArray
	OneOfSet
	NoneOfSet
)

func (m Mode) String() string {
	switch m {
	case AlwaysTrue:
		return "always-true"
	case Single:
		return "single"
	case AnyTrue:
		return "any-true"
	case AllTrue:
		return "all-true"
	case XorAll:
		return "xor-all"
	case OneOfArray:
		return "one-of-array"
	case NoneOfArray:
		return "none-of-array"
	case OneOfSet:
		return "one-of-set"
	case NoneOfSet:
		return "none-of-set"
	default:
		return "unknown"
	}
}

// Element is one (cop, rf, value) tuple from the wire-level filter
// record (spec §6: "cop:1, rf:1, value:W"). Value is stored at the
// filter-side width (FT), which is >= the column width.
type Element struct {
	Cop   compare.Cop
	RF    byte
	Value []byte
}

// smallArrayThreshold is the element count above which an EQ/Or (resp.
// NE/And) filter materializes a hashset.Set instead of a linear array
// (spec §4.3, rules 3-4). This is deliberately small: the scan runs
// millions of times per query, so even a modest array beats a map probe
// on cache-unfriendly hardware, but a fifty-element IN-list should hash.
// It is a package variable, not a constant, so config.Overrides can
// tune it per deployment (see cmd/colscan).
var smallArrayThreshold = 8

// SmallArrayThreshold reports the current small-array/hashset cutoff.
func SmallArrayThreshold() int { return smallArrayThreshold }

// SetSmallArrayThreshold overrides the small-array/hashset cutoff; n
// must be positive.
func SetSmallArrayThreshold(n int) {
	if n > 0 {
		smallArrayThreshold = n
	}
}

// Compiled is the immutable, cacheable output of Compile: safe to share
// read-only across threads and across every block of one column in one
// query (spec §5).
type Compiled struct {
	Mode        Mode
	Elements    []Element
	Set         *hashset.Set
	ColumnWidth int
	Kind        coltype.Kind
	TypeInfo    compare.TypeInfo
}

// Compile builds a Compiled filter from wire-level elements and a
// combinator, following spec §4.3's mode-selection rules in order.
// kind and columnWidth are the comparator kind/width the filter will be
// evaluated under; ti is the column's collation/charset descriptor.
func Compile(elements []Element, bop BOP, kind coltype.Kind, columnWidth int, ti compare.TypeInfo) (*Compiled, error) {
	c := &Compiled{
		Elements:    elements,
		ColumnWidth: columnWidth,
		Kind:        kind,
		TypeInfo:    ti,
	}

	switch {
	case len(elements) == 0:
		c.Mode = AlwaysTrue
		return c, nil
	case len(elements) == 1:
		c.Mode = Single
		return c, nil
	}

	effectiveBOP := bop
	if effectiveBOP == BOPNone {
		effectiveBOP = BOPOr
	}

	allEQ := allCops(elements, compare.EQ)
	allNE := allCops(elements, compare.NE)

	switch {
	case allEQ && effectiveBOP == BOPOr && len(elements) > smallArrayThreshold:
		c.Mode = OneOfSet
		c.Set = hashset.Build(columnWidth, downConvertAll(elements, columnWidth))
		return c, nil
	case allNE && effectiveBOP == BOPAnd && len(elements) > smallArrayThreshold:
		c.Mode = NoneOfSet
		c.Set = hashset.Build(columnWidth, downConvertAll(elements, columnWidth))
		return c, nil
	case allEQ && effectiveBOP == BOPOr:
		c.Mode = OneOfArray
		return c, nil
	case allNE && effectiveBOP == BOPAnd:
		c.Mode = NoneOfArray
		return c, nil
	}

	switch effectiveBOP {
	case BOPOr:
		c.Mode = AnyTrue
	case BOPAnd:
		c.Mode = AllTrue
	case BOPXor:
		c.Mode = XorAll
	default:
		return nil, fmt.Errorf("filter: unrecognized combinator %d", bop)
	}
	return c, nil
}

func allCops(elements []Element, want compare.Cop) bool {
	for _, e := range elements {
		if e.Cop != want {
			return false
		}
	}
	return true
}

// downConvertAll narrows every element's filter-side value (width FT)
// down to the column width, the same truncation the array modes apply
// per-comparison at evaluation time (spec §4.3: "numeric conversion
// must widen without sign-loss" going the other way; going down, the
// scan simply compares the low columnWidth bytes, consistent with how
// compare.Compare itself only ever reads columnWidth bytes off Value).
func downConvertAll(elements []Element, columnWidth int) [][]byte {
	out := make([][]byte, len(elements))
	for i, e := range elements {
		out[i] = downConvert(e.Value, columnWidth)
	}
	return out
}

func downConvert(v []byte, columnWidth int) []byte {
	if len(v) <= columnWidth {
		out := make([]byte, columnWidth)
		copy(out, v)
		return out
	}
	return v[:columnWidth]
}
