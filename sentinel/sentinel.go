// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sentinel is the scan core's C1 component: for every
// (logical SQL type, width) pair it returns the two reserved bit
// patterns, NULL_VALUE and EMPTY_VALUE, that the rest of the core
// treats as in-band values rather than an out-of-band nullability bit
// (spec §3, "Sentinels are values, not a separate nullability bit").
//
// Everything here is a pure, table-driven lookup. No I/O, no failure.
package sentinel

import "github.com/solidcoredata/colscan/coltype"

// Value is a sentinel bit pattern, stored at its natural width
// (1, 2, 4, 8, or 16 bytes), most-significant byte last (little-endian),
// matching the block's own cell layout.
type Value []byte

// textAltNull8 is the secondary NULL sentinel for 8-byte Text columns,
// inherited from historical tokenized-column storage. It is recognized
// only by IsNull, never produced by NullValue: spec §9 records this
// asymmetry as a deliberate bug-compatible quirk of the source engine,
// not something to "fix" here.
var textAltNull8 = Value{0, 0, 0, 0, 0, 0, 0, 0xFE}

// NullValue returns the NULL sentinel for a column of this logical type
// at this width.
func NullValue(t coltype.SQLType, width int) Value {
	return lookup(t, width).null
}

// EmptyValue returns the EMPTY sentinel for a column of this logical
// type at this width.
func EmptyValue(t coltype.SQLType, width int) Value {
	return lookup(t, width).empty
}

// IsNull reports whether v is a recognized NULL sentinel for this
// (type, width), including the width-8 Text secondary sentinel.
func IsNull(t coltype.SQLType, width int, v []byte) bool {
	pair := lookup(t, width)
	if bytesEqual(v, pair.null) {
		return true
	}
	if t == coltype.Char || t == coltype.Varchar || t == coltype.Text || t == coltype.Blob {
		if width == 8 && bytesEqual(v, textAltNull8) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether v is the EMPTY sentinel for this (type, width).
func IsEmpty(t coltype.SQLType, width int, v []byte) bool {
	return bytesEqual(v, lookup(t, width).empty)
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type pair struct {
	null  Value
	empty Value
}

func repeat(b byte, n int) Value {
	v := make(Value, n)
	for i := range v {
		v[i] = b
	}
	return v
}

// signedPair builds the {MSB set, MSB set + 1} convention used for the
// Default (signed integer) kind: NULL is the type minimum, EMPTY is one
// above it.
func signedPair(width int) pair {
	null := make(Value, width)
	null[width-1] = 0x80
	empty := make(Value, width)
	copy(empty, null)
	empty[0]++
	return pair{null: null, empty: empty}
}

// unsignedPair builds the {all-ones, all-ones-minus-one} convention used
// for the Unsigned kind: NULL is the type maximum, EMPTY is one below it.
func unsignedPair(width int) pair {
	null := repeat(0xFF, width)
	empty := repeat(0xFF, width)
	empty[0] = 0xFE
	return pair{null: null, empty: empty}
}

// floatPair builds the NULL/EMPTY bit patterns for IEEE-754 single and
// double columns: EMPTY is the all-ones NaN encoding and NULL is the
// pattern one below it, NaN payloads that no value produced by ordinary
// arithmetic collides with.
func floatPair(width int) pair {
	null := repeat(0xFF, width)
	null[0] = 0xFE
	empty := repeat(0xFF, width)
	return pair{null: null, empty: empty}
}

// datePair builds the NULL/EMPTY bit patterns for packed date/time
// columns, distinct from the float table at the same width.
func datePair(width int) pair {
	null := repeat(0xFF, width)
	null[0] = 0xFE
	empty := repeat(0xFF, width)
	empty[0] = 0xFD
	return pair{null: null, empty: empty}
}

// textPair builds the NULL/EMPTY bit patterns for inline text columns.
func textPair(width int) pair {
	return pair{null: repeat(0xFF, width), empty: repeat(0xFE, width)}
}

// lookup is the table-driven dispatch described in spec §4.1: width 16
// is wide-decimal only; width 4 and 8 branch by SQL type family; widths
// 1 and 2 branch between text-ish, unsigned, and signed default.
func lookup(t coltype.SQLType, width int) pair {
	switch width {
	case 16:
		return signedPair(width) // wide decimal: signed default convention
	case 8:
		switch t {
		case coltype.Double, coltype.UDouble, coltype.Float:
			return floatPair(width)
		case coltype.Char, coltype.Varchar, coltype.Text, coltype.Blob:
			return textPair(width)
		case coltype.UBigInt, coltype.UInt:
			return unsignedPair(width)
		case coltype.Date, coltype.Datetime, coltype.Timestamp, coltype.Time:
			return datePair(width)
		default:
			return signedPair(width)
		}
	case 4:
		switch t {
		case coltype.Float, coltype.Double, coltype.UDouble:
			return floatPair(width)
		case coltype.Date, coltype.Datetime, coltype.Timestamp, coltype.Time:
			return datePair(width)
		case coltype.Char, coltype.Varchar, coltype.Text, coltype.Blob:
			return textPair(width)
		case coltype.UInt, coltype.UBigInt:
			return unsignedPair(width)
		default:
			return signedPair(width)
		}
	case 1, 2:
		switch t {
		case coltype.Char, coltype.Varchar, coltype.Text, coltype.Blob:
			return textPair(width)
		case coltype.UInt, coltype.UBigInt:
			return unsignedPair(width)
		default:
			return signedPair(width)
		}
	default:
		return signedPair(width)
	}
}

// MinMaxComparable reports whether a block of this (type, width) can
// populate a meaningful zone-map Min/Max (spec §3 invariant 4, and the
// original's inline type-dispatch this table replaces — see
// SPEC_FULL.md "supplemented features").
func MinMaxComparable(t coltype.SQLType, width int) bool {
	switch t {
	case coltype.Int, coltype.UInt, coltype.BigInt, coltype.UBigInt:
		return true
	case coltype.Float, coltype.Double, coltype.UDouble:
		return true
	case coltype.Date, coltype.Datetime, coltype.Timestamp, coltype.Time:
		return width == 4 || width == 8
	case coltype.Char:
		return width <= 8
	case coltype.Varchar, coltype.Text, coltype.Blob:
		return width <= 7
	case coltype.Decimal:
		return width <= coltype.MaxWidth
	}
	return false
}
