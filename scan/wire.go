// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scan

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/solidcoredata/colscan/coltype"
	"github.com/solidcoredata/colscan/compare"
	"github.com/solidcoredata/colscan/filter"
)

// WireColType is the on-wire column descriptor (spec §6: "colType {
// DataType, DataSize, charset/collation descriptor }").
type WireColType struct {
	DataType uint8
	DataSize uint8
	BinSort  bool
	NoPad    bool
	CaseFold bool
}

// DecodeRequestHeader reads the packed, little-endian request prefix
// (spec §6): ISM+PrimitiveHeader, LBID, OutputType, NVALS, NOPS, BOP,
// colType, followed by the trailing RID array and filter records. The
// returned Request's Block field is left nil; the caller attaches the
// raw block pointer separately (it is never framed inline with the
// header, per spec §3 "Lifecycles").
func DecodeRequestHeader(r io.Reader) (*Request, error) {
	var prefixLen uint16
	if err := binary.Read(r, binary.LittleEndian, &prefixLen); err != nil {
		return nil, fmt.Errorf("scan: read primitive header length: %w", err)
	}
	primitiveHeader := make([]byte, prefixLen)
	if _, err := io.ReadFull(r, primitiveHeader); err != nil {
		return nil, fmt.Errorf("scan: read primitive header: %w", err)
	}

	var lbid uint64
	if err := binary.Read(r, binary.LittleEndian, &lbid); err != nil {
		return nil, fmt.Errorf("scan: read LBID: %w", err)
	}

	var outputType uint8
	if err := binary.Read(r, binary.LittleEndian, &outputType); err != nil {
		return nil, fmt.Errorf("scan: read OutputType: %w", err)
	}

	var nvals uint32
	if err := binary.Read(r, binary.LittleEndian, &nvals); err != nil {
		return nil, fmt.Errorf("scan: read NVALS: %w", err)
	}

	var nops uint32
	if err := binary.Read(r, binary.LittleEndian, &nops); err != nil {
		return nil, fmt.Errorf("scan: read NOPS: %w", err)
	}

	var bop uint8
	if err := binary.Read(r, binary.LittleEndian, &bop); err != nil {
		return nil, fmt.Errorf("scan: read BOP: %w", err)
	}

	var wct WireColType
	var dataType, dataSize uint8
	var flags uint8
	if err := binary.Read(r, binary.LittleEndian, &dataType); err != nil {
		return nil, fmt.Errorf("scan: read colType.DataType: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &dataSize); err != nil {
		return nil, fmt.Errorf("scan: read colType.DataSize: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &flags); err != nil {
		return nil, fmt.Errorf("scan: read colType collation flags: %w", err)
	}
	wct.DataType, wct.DataSize = dataType, dataSize
	wct.BinSort = flags&0x01 != 0
	wct.NoPad = flags&0x02 != 0
	wct.CaseFold = flags&0x04 != 0

	rids := make([]uint16, nvals)
	for i := range rids {
		if err := binary.Read(r, binary.LittleEndian, &rids[i]); err != nil {
			return nil, fmt.Errorf("scan: read RID[%d]: %w", i, err)
		}
	}

	elements := make([]filter.Element, nops)
	for i := range elements {
		var cop, rf uint8
		if err := binary.Read(r, binary.LittleEndian, &cop); err != nil {
			return nil, fmt.Errorf("scan: read filter[%d].cop: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &rf); err != nil {
			return nil, fmt.Errorf("scan: read filter[%d].rf: %w", i, err)
		}
		value := make([]byte, int(dataSize))
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, fmt.Errorf("scan: read filter[%d].value: %w", i, err)
		}
		elements[i] = filter.Element{Cop: compare.Cop(cop), RF: rf, Value: value}
	}

	req := &Request{
		Header: Header{
			PrimitiveHeader: primitiveHeader,
			LBID:            lbid,
		},
		OutputType: OutputType(outputType),
		ColType: ColumnType{
			SQLType: coltype.SQLType(wct.DataType),
			Width:   int(wct.DataSize),
			Collation: compare.TypeInfo{
				BinSort:         wct.BinSort,
				NoPad:           wct.NoPad,
				CaseInsensitive: wct.CaseFold,
			},
		},
		RIDs:           rids,
		BOP:            filter.BOP(bop),
		FilterElements: elements,
	}
	return req, nil
}

// EncodeResponseHeader writes the packed, little-endian response
// prefix (spec §6): the echoed framing prefix, then NVALS, Min, Max,
// RidFlags, ValidMinMax, and the two I/O counters this core always
// passes through as zero. The caller writes resp.Stream immediately
// after.
func EncodeResponseHeader(w io.Writer, resp *Response) error {
	prefixLen := uint16(len(resp.Header.PrimitiveHeader))
	if err := binary.Write(w, binary.LittleEndian, prefixLen); err != nil {
		return err
	}
	if _, err := w.Write(resp.Header.PrimitiveHeader); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, resp.Header.LBID); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, resp.NVALS); err != nil {
		return err
	}
	if _, err := w.Write(resp.Min); err != nil {
		return err
	}
	if _, err := w.Write(resp.Max); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, resp.RidFlags); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, resp.ValidMinMax); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, resp.CacheIO); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, resp.PhysicalIO)
}
