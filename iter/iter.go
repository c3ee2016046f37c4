// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package iter is the scan core's C4 component: it yields successive
// (value, rid, is-empty) triples from a raw block, honoring an optional
// caller-supplied RID order and the empty-elision rules spec §4.4
// describes for each of its three modes.
package iter

// Triple is one yielded cell: its raw bytes (a width-W slice into the
// block, never copied), its row index, and whether it is the EMPTY
// sentinel (only possible in Natural-without-RID mode; the other two
// modes elide EMPTY instead of yielding it).
type Triple struct {
	Value []byte
	RID   uint16
	Empty bool
}

// Iterator walks a block exactly once, in one of three modes (spec
// §4.4). It is not safe for concurrent use; each scan invocation owns
// one Iterator.
type Iterator struct {
	block      []byte
	width      int
	emptyValue []byte
	ridArray   []uint16
	wantRID    bool

	i int
}

// New builds an Iterator over block (width-W cells). If ridArray is
// non-empty, iteration is RID-ordered over exactly those indices,
// skipping any that land on an EMPTY cell. Otherwise iteration is
// natural (0..len(block)/width): if wantRID is true, EMPTY cells are
// skipped so they never consume an output slot; if false, EMPTY cells
// are yielded so row alignment is preserved for callers that expect a
// full block's worth of outputs.
func New(block []byte, width int, emptyValue []byte, ridArray []uint16, wantRID bool) *Iterator {
	return &Iterator{
		block:      block,
		width:      width,
		emptyValue: emptyValue,
		ridArray:   ridArray,
		wantRID:    wantRID,
	}
}

// Next returns the next triple, or ok == false once iteration is
// exhausted.
func (it *Iterator) Next() (Triple, bool) {
	if len(it.ridArray) > 0 {
		return it.nextRIDOrdered()
	}
	if it.wantRID {
		return it.nextNaturalSkipEmpty()
	}
	return it.nextNaturalKeepEmpty()
}

func (it *Iterator) cellAt(rid uint16) []byte {
	off := int(rid) * it.width
	if off+it.width > len(it.block) {
		return nil
	}
	return it.block[off : off+it.width]
}

func (it *Iterator) isEmpty(v []byte) bool {
	if v == nil || it.emptyValue == nil {
		return false
	}
	if len(v) != len(it.emptyValue) {
		return false
	}
	for i := range v {
		if v[i] != it.emptyValue[i] {
			return false
		}
	}
	return true
}

func (it *Iterator) nextRIDOrdered() (Triple, bool) {
	for it.i < len(it.ridArray) {
		rid := it.ridArray[it.i]
		it.i++
		v := it.cellAt(rid)
		if v == nil || it.isEmpty(v) {
			continue
		}
		return Triple{Value: v, RID: rid}, true
	}
	return Triple{}, false
}

func (it *Iterator) rowCount() int {
	if it.width == 0 {
		return 0
	}
	return len(it.block) / it.width
}

func (it *Iterator) nextNaturalSkipEmpty() (Triple, bool) {
	n := it.rowCount()
	for it.i < n {
		rid := it.i
		it.i++
		v := it.cellAt(uint16(rid))
		if it.isEmpty(v) {
			continue
		}
		return Triple{Value: v, RID: uint16(rid)}, true
	}
	return Triple{}, false
}

func (it *Iterator) nextNaturalKeepEmpty() (Triple, bool) {
	n := it.rowCount()
	if it.i >= n {
		return Triple{}, false
	}
	rid := it.i
	it.i++
	v := it.cellAt(uint16(rid))
	return Triple{Value: v, RID: uint16(rid), Empty: it.isEmpty(v)}, true
}
