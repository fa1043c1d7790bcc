// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackedRowMajorStrides(t *testing.T) {
	d := PackedRowMajor(3, 4)
	assert.Equal(t, 2, d.NumDimensions())
	assert.Equal(t, 3, d.Length(0))
	assert.Equal(t, 4, d.Length(1))
	assert.Equal(t, 4, d.Stride(0))
	assert.Equal(t, 1, d.Stride(1))
	assert.Equal(t, 12, d.ElementSpaceSize())
}

func TestOffsetRowMajor(t *testing.T) {
	d := PackedRowMajor(3, 4)
	assert.Equal(t, 0, d.Offset(0, 0))
	assert.Equal(t, 5, d.Offset(1, 1))
	assert.Equal(t, 11, d.Offset(2, 3))
}

func TestOffsetRankMismatchPanics(t *testing.T) {
	d := PackedRowMajor(3, 4)
	assert.Panics(t, func() { d.Offset(0) })
}

func TestTiled3(t *testing.T) {
	d := Tiled3(2, 5, 8)
	require.Equal(t, 3, d.NumDimensions())
	assert.Equal(t, 80, d.ElementSpaceSize())
	// innermost axis is contiguous
	assert.Equal(t, 1, d.Stride(2))
}

func TestNewRejectsRankMismatch(t *testing.T) {
	assert.Panics(t, func() { New([]int{1, 2}, []int{1}) })
}

func TestColMajorStrides(t *testing.T) {
	d := New([]int{4, 3}, []int{1, 4})
	assert.Equal(t, 0, d.Offset(0, 0))
	assert.Equal(t, 1, d.Offset(1, 0))
	assert.Equal(t, 4, d.Offset(0, 1))
}

func TestNextMultiple(t *testing.T) {
	assert.Equal(t, 8, NextMultiple(5, 8))
	assert.Equal(t, 8, NextMultiple(8, 8))
	assert.Equal(t, 16, NextMultiple(9, 8))
	assert.Equal(t, 5, NextMultiple(5, 0))
}
