// Copyright 2018 The Solid Core Data Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hashset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildAndContains(t *testing.T) {
	values := [][]byte{{1, 0, 0, 0}, {2, 0, 0, 0}, {3, 0, 0, 0}}
	s := Build(4, values)
	assert.Equal(t, 3, s.Len())
	assert.True(t, s.Contains([]byte{2, 0, 0, 0}))
	assert.False(t, s.Contains([]byte{9, 0, 0, 0}))
}

func TestBuildDedupesEqualValues(t *testing.T) {
	values := [][]byte{{1, 0, 0, 0}, {1, 0, 0, 0}}
	s := Build(4, values)
	assert.Equal(t, 1, s.Len())
}

func TestNilSetIsEmptyAndSafe(t *testing.T) {
	var s *Set
	assert.False(t, s.Contains([]byte{1}))
	assert.Equal(t, 0, s.Len())
}

func TestWideValuesDigestIndependently(t *testing.T) {
	a := make([]byte, 16)
	a[0] = 1
	b := make([]byte, 16)
	b[15] = 1
	s := Build(16, [][]byte{a, b})
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(a))
	assert.True(t, s.Contains(b))
	assert.False(t, s.Contains(make([]byte, 16)))
}
