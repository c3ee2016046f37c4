// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/solidcoredata/colscan/compare"
	"github.com/solidcoredata/colscan/filter"
)

// parseFilterDSL parses the CLI's tiny filter shorthand, e.g.
//
//	"AND ge 5 le 8"
//	"OR eq 2 eq 5 eq 8"
//	""
//
// into filter elements plus a combinator, for feeding filter.Compile.
// This is a debugging convenience for cmd/colscan, not part of the
// wire-level filter format scan/wire.go decodes.
func parseFilterDSL(s string, width int) ([]filter.Element, filter.BOP, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, filter.BOPNone, nil
	}

	bop := filter.BOPNone
	switch strings.ToUpper(fields[0]) {
	case "AND":
		bop = filter.BOPAnd
		fields = fields[1:]
	case "OR":
		bop = filter.BOPOr
		fields = fields[1:]
	case "XOR":
		bop = filter.BOPXor
		fields = fields[1:]
	}

	if len(fields)%2 != 0 {
		return nil, bop, fmt.Errorf("filter DSL: expected cop/value pairs, got %q", s)
	}

	var elements []filter.Element
	for i := 0; i < len(fields); i += 2 {
		cop, err := parseCop(fields[i])
		if err != nil {
			return nil, bop, err
		}
		n, err := strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return nil, bop, fmt.Errorf("filter DSL: bad value %q: %w", fields[i+1], err)
		}
		elements = append(elements, filter.Element{Cop: cop, Value: encodeLE(n, width)})
	}
	return elements, bop, nil
}

func parseCop(s string) (compare.Cop, error) {
	switch strings.ToLower(s) {
	case "lt":
		return compare.LT, nil
	case "le":
		return compare.LE, nil
	case "eq":
		return compare.EQ, nil
	case "ne":
		return compare.NE, nil
	case "ge":
		return compare.GE, nil
	case "gt":
		return compare.GT, nil
	default:
		return compare.Nil, fmt.Errorf("filter DSL: unrecognized cop %q", s)
	}
}

func encodeLE(n int64, width int) []byte {
	b := make([]byte, width)
	u := uint64(n)
	for i := 0; i < width; i++ {
		b[i] = byte(u)
		u >>= 8
	}
	return b
}
