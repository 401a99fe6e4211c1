// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := MakeWith(3, 7)
	assert.Len(t, s, 2)
	assert.True(t, s.Has(3))
	assert.True(t, s.Has(7))
	assert.False(t, s.Has(5))

	s2 := MakeWith(5, 7, 7)
	assert.Len(t, s2, 2)

	s3 := s.Sub(s2)
	assert.Len(t, s3, 1)
	assert.True(t, s3.Has(3))

	s.Insert(1)
	assert.Equal(t, []int{1, 3, 7}, Sorted(s))
}

func TestSelect(t *testing.T) {
	s := MakeWith("erf", "xlogy", "digamma")
	assert.Equal(t, []string{"xlogy", "erf"}, s.Select([]string{"ndtr", "xlogy", "erf", "xlogy"}))
	assert.Empty(t, MakeWith[string]().Select([]string{"erf"}))
}
