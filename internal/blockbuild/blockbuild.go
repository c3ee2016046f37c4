// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package blockbuild builds synthetic fixed-width column blocks for
// tests and for cmd/colscan's "scan" subcommand's demo generator. Its
// per-width encoders are adapted from the teacher's ts.FieldCoder
// (solidcoredata/dca's Encode(col, writeTo, value) ([]byte, error)
// contract), repointed at width-specialized scan cells instead of
// variable-length schema-driven table fields.
package blockbuild

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/solidcoredata/colscan/coltype"
	"github.com/solidcoredata/colscan/sentinel"
)

// cellCoder is the teacher's FieldCoder contract, narrowed to a single
// fixed width and re-homed on raw scan cells rather than schema fields.
type cellCoder interface {
	Encode(writeTo []byte, value interface{}) ([]byte, error)
}

type coderSigned struct{ width int }

func (c coderSigned) Encode(writeTo []byte, value interface{}) ([]byte, error) {
	var v int64
	switch x := value.(type) {
	case int:
		v = int64(x)
	case int64:
		v = x
	default:
		return nil, fmt.Errorf("blockbuild: unsupported signed value %#v", value)
	}
	writeTo = writeTo[:c.width]
	putLittleEndian(writeTo, uint64(v))
	return writeTo, nil
}

type coderUnsigned struct{ width int }

func (c coderUnsigned) Encode(writeTo []byte, value interface{}) ([]byte, error) {
	var v uint64
	switch x := value.(type) {
	case int:
		v = uint64(x)
	case uint64:
		v = x
	default:
		return nil, fmt.Errorf("blockbuild: unsupported unsigned value %#v", value)
	}
	writeTo = writeTo[:c.width]
	putLittleEndian(writeTo, v)
	return writeTo, nil
}

type coderFloat struct{ width int }

func (c coderFloat) Encode(writeTo []byte, value interface{}) ([]byte, error) {
	writeTo = writeTo[:c.width]
	switch c.width {
	case 4:
		f, ok := value.(float32)
		if !ok {
			f = float32(value.(float64))
		}
		binary.LittleEndian.PutUint32(writeTo, math.Float32bits(f))
	case 8:
		f, ok := value.(float64)
		if !ok {
			f = float64(value.(float32))
		}
		binary.LittleEndian.PutUint64(writeTo, math.Float64bits(f))
	default:
		return nil, fmt.Errorf("blockbuild: float width must be 4 or 8, got %d", c.width)
	}
	return writeTo, nil
}

type coderText struct{ width int }

func (c coderText) Encode(writeTo []byte, value interface{}) ([]byte, error) {
	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("blockbuild: unsupported text value %#v", value)
	}
	if len(s) > c.width {
		return nil, fmt.Errorf("blockbuild: text %q longer than width %d", s, c.width)
	}
	writeTo = writeTo[:c.width]
	for i := range writeTo {
		writeTo[i] = 0
	}
	copy(writeTo, s)
	return writeTo, nil
}

func putLittleEndian(b []byte, v uint64) {
	for i := range b {
		b[i] = byte(v)
		v >>= 8
	}
}

func coderFor(kind coltype.Kind, width int) cellCoder {
	switch kind {
	case coltype.Unsigned:
		return coderUnsigned{width}
	case coltype.KindFloat:
		return coderFloat{width}
	case coltype.KindText:
		return coderText{width}
	default:
		return coderSigned{width}
	}
}

// Builder accumulates fixed-width cells into a contiguous block.
type Builder struct {
	sqlType coltype.SQLType
	width   int
	kind    coltype.Kind
	coder   cellCoder
	cells   [][]byte
}

// New starts a block builder for columns of this logical type and
// width.
func New(sqlType coltype.SQLType, width int) *Builder {
	kind := coltype.Select(sqlType, width)
	return &Builder{
		sqlType: sqlType,
		width:   width,
		kind:    kind,
		coder:   coderFor(kind, width),
	}
}

// Put encodes value into the next cell. Panics on an encode error,
// since this builder only exists to construct test fixtures and CLI
// demo data, never to handle untrusted input.
func (b *Builder) Put(value interface{}) *Builder {
	cell, err := b.coder.Encode(make([]byte, b.width), value)
	if err != nil {
		panic(err)
	}
	b.cells = append(b.cells, cell)
	return b
}

// PutNull appends the column's NULL sentinel cell.
func (b *Builder) PutNull() *Builder {
	b.cells = append(b.cells, append([]byte(nil), sentinel.NullValue(b.sqlType, b.width)...))
	return b
}

// PutEmpty appends the column's EMPTY sentinel cell.
func (b *Builder) PutEmpty() *Builder {
	b.cells = append(b.cells, append([]byte(nil), sentinel.EmptyValue(b.sqlType, b.width)...))
	return b
}

// Block returns the concatenated block bytes built so far.
func (b *Builder) Block() []byte {
	out := make([]byte, 0, len(b.cells)*b.width)
	for _, c := range b.cells {
		out = append(out, c...)
	}
	return out
}

// Len reports the number of cells appended so far.
func (b *Builder) Len() int { return len(b.cells) }
