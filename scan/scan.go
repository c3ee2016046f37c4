// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scan is the scan core's C6 component, the glue that ties
// C1-C5 together: given a request header, a raw block, and an output
// buffer, it selects a width-specialized comparator kind, compiles or
// reuses a filter, walks the block, evaluates and emits matching rows,
// and finalizes a response header carrying the zone-map Min/Max.
//
// A single call is entirely synchronous and single-threaded (spec §5);
// callers exploit parallelism by invoking Scan concurrently across
// independent blocks, as cmd/colscan's "soak" subcommand does.
package scan

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/solidcoredata/colscan/coltype"
	"github.com/solidcoredata/colscan/compare"
	"github.com/solidcoredata/colscan/eval"
	"github.com/solidcoredata/colscan/filter"
	"github.com/solidcoredata/colscan/internal/diag"
	"github.com/solidcoredata/colscan/iter"
	"github.com/solidcoredata/colscan/sentinel"
)

// OutputType is the wire-level output selector bitfield (spec §6).
type OutputType uint8

const (
	OTRid       OutputType = 0x01
	OTToken     OutputType = 0x02
	OTDataValue OutputType = 0x04
)

func (ot OutputType) wantsRID() bool   { return ot&OTRid != 0 }
func (ot OutputType) wantsValue() bool { return ot&(OTToken|OTDataValue) != 0 }

// ColumnType names the logical SQL type, width, and collation a block's
// cells should be interpreted under.
type ColumnType struct {
	SQLType   coltype.SQLType
	Width     int
	Collation compare.TypeInfo
}

// Header is the fixed prefix shared by request and response framing
// (spec §6): ISM + PrimitiveHeader are opaque to this core and copied
// verbatim; LBID is echoed from request to response.
type Header struct {
	ISM             uint32
	PrimitiveHeader []byte
	LBID            uint64
}

// Request is one scan invocation's input: a request header, the
// output selector, an optional caller-supplied RID subset, an optional
// precompiled filter (or raw elements to compile), the column
// descriptor, and the raw block.
type Request struct {
	Header         Header
	OutputType     OutputType
	ColType        ColumnType
	RIDs           []uint16 // NVALS on input; empty means natural order.
	BOP            filter.BOP
	FilterElements []filter.Element // used when Filter == nil.
	Filter         *filter.Compiled // optional precompiled filter.
	Block          []byte

	// Debug upgrades an output-buffer overflow from a returned error to
	// a panic, matching spec §7's debug-vs-release distinction.
	Debug bool
}

// Response is one scan invocation's output: the echoed header, the
// match count, the zone-map Min/Max, the RID-bucket bitmap, and the
// packed record stream.
type Response struct {
	Header      Header
	NVALS       uint32
	Min         []byte
	Max         []byte
	RidFlags    uint8
	ValidMinMax bool
	CacheIO     uint32
	PhysicalIO  uint32
	Stream      []byte
}

// Scan runs one block through the core (spec §4.6 / §2 "Control flow").
// out is the caller-owned output buffer; its capacity is the "remaining
// capacity" §3 invariant 5 bounds writes to. Scan never grows out.
func Scan(req *Request, out []byte) (*Response, error) {
	width := req.ColType.Width
	sqlType := req.ColType.SQLType
	kind := coltype.Select(sqlType, width)

	cf, err := resolveFilter(req, kind)
	if err != nil {
		return nil, err
	}

	rids := req.RIDs
	if len(rids) > 0 {
		rids = append([]uint16(nil), rids...)
		sort.SliceStable(rids, func(i, j int) bool { return rids[i] < rids[j] })
	}

	emptyValue := sentinel.EmptyValue(sqlType, width)
	nullValue := sentinel.NullValue(sqlType, width)
	nullMatches := eval.Matches(nullValue, true, cf)

	validMinMax := len(req.RIDs) == 0 && sentinel.MinMaxComparable(sqlType, width)

	resp := &Response{Header: req.Header}

	it := iter.New(req.Block, width, emptyValue, rids, req.OutputType.wantsRID())

	var written int
	var min, max []byte
	if validMinMax {
		min, max = initMinMax(kind, width)
	}

	for {
		t, ok := it.Next()
		if !ok {
			break
		}
		if t.Empty {
			continue
		}
		var emit bool
		if sentinel.IsNull(sqlType, width, t.Value) {
			emit = nullMatches
		} else {
			// Min/Max is a property of every non-NULL, non-EMPTY value in
			// the block (spec §3 invariant 2, §4.6 step 7), independent of
			// whether this particular row also survives the filter; the
			// original's updateMinMax call is unconditional on
			// matchingColValue (column.cpp filterColumnData).
			if validMinMax {
				if compare.Compare(kind, width, t.Value, min, compare.LT, 0, req.ColType.Collation, false) {
					min = append(min[:0], t.Value...)
				}
				if compare.Compare(kind, width, t.Value, max, compare.GT, 0, req.ColType.Collation, false) {
					max = append(max[:0], t.Value...)
				}
			}
			emit = eval.Matches(t.Value, false, cf)
		}
		if !emit {
			continue
		}
		n, err := emitRow(out, written, req.OutputType, width, t, req.Debug)
		if err != nil {
			return nil, err
		}
		written += n
		resp.NVALS++
		resp.RidFlags |= 1 << (t.RID >> 9)
	}

	resp.ValidMinMax = validMinMax
	resp.Min = min
	resp.Max = max
	resp.Stream = out[:written]
	return resp, nil
}

func resolveFilter(req *Request, kind coltype.Kind) (*filter.Compiled, error) {
	if req.Filter != nil {
		return req.Filter, nil
	}
	return filter.Compile(req.FilterElements, req.BOP, kind, req.ColType.Width, req.ColType.Collation)
}

// initMinMax seeds the zone-map accumulator at the kind's type extremes
// (spec §4.6 step 6: "Initialize Min = type_max, Max = type_min (for
// unsigned: Max = 0)"), so the first real value folded into it always
// wins the LT/GT comparison regardless of which row it came from.
func initMinMax(kind coltype.Kind, width int) (min, max []byte) {
	switch kind {
	case coltype.Unsigned:
		return repeatByte(0xFF, width), make([]byte, width)
	case coltype.KindFloat:
		min = make([]byte, width)
		max = make([]byte, width)
		if width == 4 {
			binary.LittleEndian.PutUint32(min, math.Float32bits(float32(math.Inf(1))))
			binary.LittleEndian.PutUint32(max, math.Float32bits(float32(math.Inf(-1))))
		} else {
			binary.LittleEndian.PutUint64(min, math.Float64bits(math.Inf(1)))
			binary.LittleEndian.PutUint64(max, math.Float64bits(math.Inf(-1)))
		}
		return min, max
	case coltype.KindText:
		// Lexicographic type extremes under the swapped-unsigned ordering
		// the Text kind's BinSort/NoPad fast path (and collation fallback)
		// both reduce to: an all-0xFF pattern sorts highest, all-zero
		// sorts lowest.
		return repeatByte(0xFF, width), make([]byte, width)
	default:
		min = repeatByte(0xFF, width)
		min[width-1] = 0x7F // most positive: MSB byte 0x7F, rest 0xFF
		max = make([]byte, width)
		max[width-1] = 0x80 // most negative: MSB byte 0x80, rest 0x00
		return min, max
	}
}

func repeatByte(b byte, n int) []byte {
	v := make([]byte, n)
	for i := range v {
		v[i] = b
	}
	return v
}

// emitRow writes one matched row's packed record (spec §4.6 step 8 /
// §3 "Output record"): an optional 2-byte RID, then an optional
// width-W data copy, bounds-checked against out's capacity.
func emitRow(out []byte, written int, ot OutputType, width int, t iter.Triple, debug bool) (int, error) {
	needed := 0
	if ot.wantsRID() {
		needed += 2
	}
	if ot.wantsValue() {
		needed += width
	}
	if written+needed > len(out) {
		diag.LogOverflow(written, needed, len(out))
		if debug {
			panic(diag.ErrBufferOverflow)
		}
		return 0, diag.ErrBufferOverflow
	}
	p := written
	if ot.wantsRID() {
		out[p] = byte(t.RID)
		out[p+1] = byte(t.RID >> 8)
		p += 2
	}
	if ot.wantsValue() {
		copy(out[p:p+width], t.Value)
		p += width
	}
	return needed, nil
}
