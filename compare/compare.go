// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compare is the scan core's C2 component: given two raw cell
// values, a compare-op, and a rounding-flag tie-break byte, it decides
// truth per the column kind's semantics (signed, unsigned, float, or
// collation-aware text).
package compare

import (
	"math"
	"math/big"
	"strings"

	"github.com/solidcoredata/colscan/coltype"
	"github.com/solidcoredata/colscan/internal/diag"
)

// Cop is a compare-op code. Nil is always false; Like/NotLike are valid
// only for the Text kind.
type Cop int

const (
	Nil Cop = iota
	LT
	LE
	EQ
	NE
	GE
	GT
	Like
	NotLike
)

func (c Cop) String() string {
	switch c {
	case Nil:
		return "nil"
	case LT:
		return "<"
	case LE:
		return "<="
	case EQ:
		return "=="
	case NE:
		return "!="
	case GE:
		return ">="
	case GT:
		return ">"
	case Like:
		return "like"
	case NotLike:
		return "not like"
	default:
		return "unknown"
	}
}

// TypeInfo carries the collation/charset flags a Text comparison needs.
// BinSort+NoPad selects the byte-order fast path (spec §4.2); otherwise
// comparisons fall back to a collation-aware string compare, for which
// only simple case folding is modeled here (no locale-specific tailoring
// ships with this core — that lives in the dictionary/collation service
// this primitive explicitly does not own).
type TypeInfo struct {
	BinSort         bool
	NoPad           bool
	CaseInsensitive bool
}

// Compare is the single public entry point for C2: given the column
// kind and width, the raw column and filter bytes, the compare-op, the
// rounding-flag byte, collation info, and whether this call represents
// a literal "compare against SQL NULL" filter element, decide truth.
//
// An unsupported cop is a logged diagnostic (message 34), not a panic:
// the offending comparison simply yields false and the scan continues
// (spec §4.2 Errors, §7).
func Compare(kind coltype.Kind, width int, colValue, filterValue []byte, cop Cop, rf byte, ti TypeInfo, filterIsNull bool) bool {
	if filterIsNull {
		return nullCompare(colValue, filterValue)
	}
	switch kind {
	case coltype.Unsigned:
		return compareUnsigned(width, colValue, filterValue, cop, rf)
	case coltype.KindFloat:
		return compareFloat(width, colValue, filterValue, cop, rf)
	case coltype.KindText:
		return compareText(width, colValue, filterValue, cop, rf, ti)
	default:
		return compareSigned(width, colValue, filterValue, cop, rf)
	}
}

// nullCompare implements spec §4.2 "NULL handling": true only when the
// column value is itself the NULL sentinel (here, bytewise equal to the
// supplied filter NULL pattern), for every cop including NE — the
// documented SQL-semantics deviation the source engine keeps for
// convenience. rf is not consulted on this path (see SPEC_FULL.md
// supplemented feature 3).
func nullCompare(colValue, filterValue []byte) bool {
	return bytesEqualPadded(colValue, filterValue)
}

func bytesEqualPadded(a, b []byte) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return false
		}
	}
	return true
}

// applyIntegralRF is the rf tie-break table for integer-like kinds
// (spec §4.2 "Integral rules with rf"): cmp is sign(v1-v2).
func applyIntegralRF(cmp int, cop Cop, rf byte) bool {
	switch cop {
	case LT:
		return cmp < 0 || (cmp == 0 && rf&0x01 != 0)
	case LE:
		return cmp < 0 || (cmp == 0 && rf&0x80 == 0)
	case EQ:
		return cmp == 0 && rf == 0
	case NE:
		return cmp != 0 || rf != 0
	case GE:
		return cmp > 0 || (cmp == 0 && rf&0x01 == 0)
	case GT:
		return cmp > 0 || (cmp == 0 && rf&0x80 != 0)
	default:
		diag.Log(diag.MsgUnsupportedCop, "cop", cop)
		return false
	}
}

// applyStringRF is the separate rf tie-break table used only for the
// Text kind's byte-swapped-unsigned-integer comparison when rf != 0
// (spec §4.2 Text / "Else (rf != 0)"). It is deliberately distinct from
// applyIntegralRF.
func applyStringRF(cmp int, cop Cop, rf byte) (bool, bool) {
	switch cop {
	case LT:
		return cmp < 0 || (cmp == 0 && rf != 0), true
	case LE:
		return cmp <= 0, true
	case EQ:
		return cmp == 0 && rf == 0, true
	case NE:
		return cmp != 0 || rf != 0, true
	case GE:
		return cmp > 0 || (cmp == 0 && rf == 0), true
	case GT:
		return cmp > 0, true
	default:
		return false, false
	}
}

func compareOpPlain(cmp int, cop Cop) bool {
	switch cop {
	case LT:
		return cmp < 0
	case LE:
		return cmp <= 0
	case EQ:
		return cmp == 0
	case NE:
		return cmp != 0
	case GE:
		return cmp >= 0
	case GT:
		return cmp > 0
	default:
		diag.Log(diag.MsgUnsupportedCop, "cop", cop)
		return false
	}
}

func compareSigned(width int, col, filter []byte, cop Cop, rf byte) bool {
	if cop == Nil {
		return false
	}
	if width == coltype.MaxWidth {
		cmp := compareBig(col, filter, true)
		return applyIntegralRF(cmp, cop, rf)
	}
	v1 := decodeSigned(col, width)
	v2 := decodeSigned(filter, width)
	var cmp int
	switch {
	case v1 < v2:
		cmp = -1
	case v1 > v2:
		cmp = 1
	}
	return applyIntegralRF(cmp, cop, rf)
}

func compareUnsigned(width int, col, filter []byte, cop Cop, rf byte) bool {
	if cop == Nil {
		return false
	}
	if width == coltype.MaxWidth {
		cmp := compareBig(col, filter, false)
		return applyIntegralRF(cmp, cop, rf)
	}
	v1 := decodeUnsigned(col, width)
	v2 := decodeUnsigned(filter, width)
	var cmp int
	switch {
	case v1 < v2:
		cmp = -1
	case v1 > v2:
		cmp = 1
	}
	return applyIntegralRF(cmp, cop, rf)
}

// compareFloat reinterprets both sides to the matching IEEE type and
// compares with ordinary float semantics: NaN compares unequal for
// every op except NE, which holds (spec §4.2 Float kind).
func compareFloat(width int, col, filter []byte, cop Cop, rf byte) bool {
	f1 := decodeFloat(col, width)
	f2 := decodeFloat(filter, width)
	if math.IsNaN(f1) || math.IsNaN(f2) {
		return cop == NE
	}
	var cmp int
	switch {
	case f1 < f2:
		cmp = -1
	case f1 > f2:
		cmp = 1
	}
	// Floats never carry a narrowing rf tie-break in this engine; rf is
	// accepted for call-site symmetry but ignored once NaN is ruled out.
	_ = rf
	return compareOpPlain(cmp, cop)
}

// compareText implements spec §4.2's Text branch in full: Like/NotLike
// delegate to pattern matching; rf == 0 either takes the BinSort/NoPad
// byte-order fast path or a collation-aware string compare; rf != 0
// always takes the byte-swapped unsigned-integer path under the
// separate string rf table, and disallows Like/NotLike.
func compareText(width int, col, filter []byte, cop Cop, rf byte, ti TypeInfo) bool {
	if cop == Like || cop == NotLike {
		match := likeMatch(trimNUL(col), trimNUL(filter), ti.CaseInsensitive)
		if cop == NotLike {
			return !match
		}
		return match
	}
	if rf == 0 {
		if ti.BinSort && ti.NoPad {
			cmp := compareSwappedUnsigned(width, col, filter)
			return compareOpPlain(cmp, cop)
		}
		cmp := collateCompare(trimNUL(col), trimNUL(filter), ti.CaseInsensitive)
		return compareOpPlain(cmp, cop)
	}
	cmp := compareSwappedUnsigned(width, col, filter)
	ok, supported := applyStringRF(cmp, cop, rf)
	if !supported {
		diag.Log(diag.MsgUnsupportedCop, "cop", cop, "context", "text-rf")
		return false
	}
	return ok
}

// compareSwappedUnsigned implements the "byte-swap to big-endian,
// compare as unsigned integers" step shared by the Text fast path and
// the rf != 0 path (spec §4.2; the original's order_swap, see
// SPEC_FULL.md supplemented feature 1). Each swapped cell is read back
// as a little-endian integer, so the cell's first byte is the most
// significant one.
func compareSwappedUnsigned(width int, a, b []byte) int {
	ua := decodeUnsigned(swapOrder(width, a), width)
	ub := decodeUnsigned(swapOrder(width, b), width)
	switch {
	case ua < ub:
		return -1
	case ua > ub:
		return 1
	}
	return 0
}

// swapOrder reverses byte order, turning this engine's little-endian
// in-block text bytes into a big-endian-ordered buffer so ordinary
// unsigned-integer comparison reproduces lexicographic string order.
func swapOrder(width int, b []byte) []byte {
	n := width
	if len(b) < n {
		n = len(b)
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = b[n-1-i]
	}
	return out
}

func compareBytesUnsigned(a, b []byte) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv byte
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func trimNUL(b []byte) string {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return string(b[:i])
}

// collateCompare is the non-fast-path string comparison: right-trimmed,
// optionally case-folded, ordinary lexicographic compare. Locale-aware
// tailoring beyond simple case folding belongs to the collation service
// above this core.
func collateCompare(a, b string, caseInsensitive bool) int {
	if caseInsensitive {
		a = strings.ToUpper(a)
		b = strings.ToUpper(b)
	}
	return strings.Compare(a, b)
}

func decodeSigned(b []byte, width int) int64 {
	u := decodeUnsigned(b, width)
	switch width {
	case 1:
		return int64(int8(u))
	case 2:
		return int64(int16(u))
	case 4:
		return int64(int32(u))
	default:
		return int64(u)
	}
}

func decodeUnsigned(b []byte, width int) uint64 {
	var u uint64
	n := width
	if len(b) < n {
		n = len(b)
	}
	for i := n - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	return u
}

func decodeFloat(b []byte, width int) float64 {
	if width == 4 {
		return float64(math.Float32frombits(uint32(decodeUnsigned(b, 4))))
	}
	return math.Float64frombits(decodeUnsigned(b, 8))
}

// compareBig compares two little-endian 16-byte cells as signed or
// unsigned 128-bit integers, for the wide-decimal width. math/big is
// used here because no library in the example corpus models 128-bit
// integers; see DESIGN.md.
func compareBig(a, b []byte, signed bool) int {
	ia := leBytesToBig(a, signed)
	ib := leBytesToBig(b, signed)
	return ia.Cmp(ib)
}

func leBytesToBig(b []byte, signed bool) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	v := new(big.Int).SetBytes(be)
	if signed && len(b) > 0 && be[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		v.Sub(v, mod)
	}
	return v
}

// likeMatch implements SQL LIKE semantics: '%' matches any run of
// characters, '_' matches exactly one.
func likeMatch(s, pattern string, caseInsensitive bool) bool {
	if caseInsensitive {
		s = strings.ToUpper(s)
		pattern = strings.ToUpper(pattern)
	}
	return likeMatchRunes([]rune(s), []rune(pattern))
}

func likeMatchRunes(s, p []rune) bool {
	// Classic DP over rune grids; small inputs, clarity over cleverness.
	sl, pl := len(s), len(p)
	dp := make([][]bool, sl+1)
	for i := range dp {
		dp[i] = make([]bool, pl+1)
	}
	dp[0][0] = true
	for j := 1; j <= pl; j++ {
		if p[j-1] == '%' {
			dp[0][j] = dp[0][j-1]
		}
	}
	for i := 1; i <= sl; i++ {
		for j := 1; j <= pl; j++ {
			switch p[j-1] {
			case '%':
				dp[i][j] = dp[i-1][j] || dp[i][j-1]
			case '_':
				dp[i][j] = dp[i-1][j-1]
			default:
				dp[i][j] = dp[i-1][j-1] && s[i-1] == p[j-1]
			}
		}
	}
	return dp[sl][pl]
}
