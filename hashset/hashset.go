// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hashset is the membership structure package filter materializes
// for the OneOfSet and NoneOfSet dispatch modes (spec §4.3, rule 3-4):
// once a small-array EQ/NE-over-Or/And filter crosses the
// small-array threshold, its values are hashed into a Set instead of
// scanned linearly.
//
// Every value, regardless of the column's byte width — including the
// 16-byte wide-decimal case — is folded through blake3 into a fixed
// 32-byte digest, so one representation serves every integral width the
// core scans (spec's own schema lineage already hashes wide values this
// way: the teacher's control/column.version is itself a 256-bit Hash
// column, see SPEC_FULL.md domain stack).
package hashset

import "github.com/zeebo/blake3"

type digest [32]byte

// Set is an immutable membership structure, safe to share read-only
// across threads once built (spec §5).
type Set struct {
	width int
	keys  map[digest]struct{}
}

// Build constructs a Set from filter-side values, each exactly width
// bytes (after down-conversion from the filter's widened FT, per spec
// §4.3). The resulting Set is cacheable across blocks of the same
// column in the same query.
func Build(width int, values [][]byte) *Set {
	s := &Set{
		width: width,
		keys:  make(map[digest]struct{}, len(values)),
	}
	for _, v := range values {
		s.keys[key(v)] = struct{}{}
	}
	return s
}

// Contains reports whether value (exactly Set.width bytes) is a member.
func (s *Set) Contains(value []byte) bool {
	if s == nil {
		return false
	}
	_, ok := s.keys[key(value)]
	return ok
}

// Len reports the number of distinct values in the set.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

func key(v []byte) digest {
	return blake3.Sum256(v)
}
