// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package coltype names the logical SQL column types the scan core must
// recognize, and the four value kinds the comparator actually dispatches
// on (see package compare).
package coltype

// SQLType is the logical type of a column, as carried in a request's
// colType descriptor. The scan driver never sees SQL text; it only sees
// this tag plus a byte width.
type SQLType int

const (
	Int        SQLType = iota // signed default integer
	UInt                      // unsigned int/umedint family
	UBigInt                   // unsigned 8-byte
	BigInt                    // signed default 8-byte
	Float                     // IEEE-754 single
	Double                    // IEEE-754 double
	UDouble                   // unsigned double container (stored as Double bits, float sentinel table)
	Date                      // 4-byte packed date
	Datetime                  // 8-byte packed datetime
	Timestamp                 // 4 or 8 byte packed timestamp
	Time                      // 4 or 8 byte packed time
	Char                      // fixed inline text
	Varchar                   // variable inline text (dict path above width 7)
	Text                      // variable inline text (dict path above width 7)
	Blob                      // variable inline bytes (dict path above width 7)
	Decimal                   // wide decimal, up to 16 bytes
)

// Kind is the semantic compare category package compare dispatches on.
// It is derived from (SQLType, width) by Select, never stored directly
// in a request.
type Kind int

const (
	Default Kind = iota
	Unsigned
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case Default:
		return "default"
	case Unsigned:
		return "unsigned"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// MaxWidth is the widest raw cell this module understands: wide decimals.
const MaxWidth = 16

// ValidWidth reports whether w is one of the five widths the scan core
// is specialized for.
func ValidWidth(w int) bool {
	switch w {
	case 1, 2, 4, 8, 16:
		return true
	}
	return false
}

// Select derives the comparator Kind for a (sqlType, width) pair,
// following the scan driver's width-specialization rules (spec §4.6,
// step 1): width 4/8 FLOAT-family reselects Float, CHAR/VARCHAR/TEXT/BLOB
// within the inline-storage widths reselects Text, else Unsigned or
// Default from the SQL type family.
func Select(t SQLType, width int) Kind {
	switch t {
	case Float, Double, UDouble:
		return KindFloat
	case Char:
		if width <= 8 {
			return KindText
		}
	case Varchar, Text, Blob:
		if width <= 7 {
			return KindText
		}
	}
	switch t {
	case UInt, UBigInt, UDouble:
		return Unsigned
	}
	return Default
}

// IsDictToken reports whether a column of this (sqlType, width) is
// resolved through the out-of-scope dictionary path rather than scanned
// directly (spec §4.6, step 1 and §1 Non-goals).
func IsDictToken(t SQLType, width int) bool {
	switch t {
	case Char:
		return width > 8
	case Varchar, Text, Blob:
		return width > 7
	}
	return false
}
