// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eval is the scan core's C5 component: it applies a compiled
// filter to one value, shortcutting on the filter's combinator.
package eval

import (
	"github.com/solidcoredata/colscan/compare"
	"github.com/solidcoredata/colscan/filter"
)

// Matches applies cf to value, per spec §4.5's mode dispatch. isNull
// reports whether value is the column's NULL sentinel; for is_null ==
// true, every comparison-based mode folds in the NULL-NULL rule from
// compare.Compare (spec §4.2's filterIsNull path) instead of comparing
// value against the filter's ordinary constants.
func Matches(value []byte, isNull bool, cf *filter.Compiled) bool {
	switch cf.Mode {
	case filter.AlwaysTrue:
		return true
	case filter.Single:
		return matchOne(value, isNull, cf, cf.Elements[0])
	case filter.AnyTrue:
		for _, e := range cf.Elements {
			if matchOne(value, isNull, cf, e) {
				return true
			}
		}
		return false
	case filter.AllTrue:
		for _, e := range cf.Elements {
			if !matchOne(value, isNull, cf, e) {
				return false
			}
		}
		return true
	case filter.XorAll:
		acc := false
		for _, e := range cf.Elements {
			acc = acc != matchOne(value, isNull, cf, e)
		}
		return acc
	case filter.OneOfArray:
		if isNull {
			return false
		}
		for _, e := range cf.Elements {
			if equalDownConverted(value, e.Value, cf.ColumnWidth) {
				return true
			}
		}
		return false
	case filter.NoneOfArray:
		if isNull {
			return false
		}
		for _, e := range cf.Elements {
			if equalDownConverted(value, e.Value, cf.ColumnWidth) {
				return false
			}
		}
		return true
	case filter.OneOfSet:
		if isNull {
			return false
		}
		return cf.Set.Contains(value)
	case filter.NoneOfSet:
		if isNull {
			return false
		}
		return !cf.Set.Contains(value)
	default:
		return false
	}
}

func matchOne(value []byte, isNull bool, cf *filter.Compiled, e filter.Element) bool {
	return compare.Compare(cf.Kind, cf.ColumnWidth, value, e.Value, e.Cop, e.RF, cf.TypeInfo, isNull)
}

func equalDownConverted(value, filterValue []byte, width int) bool {
	n := width
	if len(value) < n {
		n = len(value)
	}
	for i := 0; i < n; i++ {
		var fv byte
		if i < len(filterValue) {
			fv = filterValue[i]
		}
		if value[i] != fv {
			return false
		}
	}
	return true
}
