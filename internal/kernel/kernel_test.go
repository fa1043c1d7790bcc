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

package kernel

import (
	"testing"

	"github.com/ajroetker/blockgemm/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterBlockedRowMajorOverwrite(t *testing.T) {
	// A (2,3) row-major, B (3,2) row-major, C (2,2).
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{7, 8, 9, 10, 11, 12}
	c := make([]float64, 4)
	aDesc := tensor.PackedRowMajor(2, 3)
	bDesc := tensor.PackedRowMajor(3, 2)
	cDesc := tensor.PackedRowMajor(2, 2)

	k := Resolve[float64](TokenScalarF64)
	k.Run(aDesc, bDesc, cDesc, a, b, c, 2, 2, 3, false, false)

	assert.Equal(t, []float64{1*7 + 2*9 + 3*11, 1*8 + 2*10 + 3*12, 4*7 + 5*9 + 6*11, 4*8 + 5*10 + 6*12}, c)
}

func TestRegisterBlockedAccumulates(t *testing.T) {
	a := []float32{1, 0, 0, 1}
	b := []float32{2, 3, 4, 5}
	c := []float32{100, 100, 100, 100}
	aDesc := tensor.PackedRowMajor(2, 2)
	bDesc := tensor.PackedRowMajor(2, 2)
	cDesc := tensor.PackedRowMajor(2, 2)

	k := Resolve[float32](TokenScalarF32)
	k.Run(aDesc, bDesc, cDesc, a, b, c, 2, 2, 2, false, true)

	assert.Equal(t, []float32{102, 103, 104, 105}, c)
}

func TestRegisterBlockedTransposedA(t *testing.T) {
	// A logically (2,2) identity but packed transposed as (k, paddedM=2).
	aPacked := []float64{1, 0, 0, 1}
	aDesc := tensor.PackedRowMajor(2, 2)
	b := []float64{5, 6, 7, 8}
	bDesc := tensor.PackedRowMajor(2, 2)
	c := make([]float64, 4)
	cDesc := tensor.PackedRowMajor(2, 2)

	k := Resolve[float64](TokenScalarF64)
	k.Run(aDesc, bDesc, cDesc, aPacked, b, c, 2, 2, 2, true, false)

	assert.Equal(t, []float64{5, 6, 7, 8}, c)
}

func TestRegisterBlockedNTiledB(t *testing.T) {
	// B logically (2,3) "KN" packed as N-tiled (n0=2,k=2,vb=2): column
	// tile 0 covers n=0,1 real; tile 1 covers n=2 real, n=3 padding.
	bTiled := []float64{
		// n0=0: k=0 -> n1=0,1 ; k=1 -> n1=0,1
		1, 2,
		5, 6,
		// n0=1: k=0 -> n1=0(n=2),1(pad) ; k=1 -> n1=0(n=2),1(pad)
		3, 0,
		7, 0,
	}
	bDesc := tensor.Tiled3(2, 2, 2)
	a := []float64{1, 1, 1, 1}
	aDesc := tensor.PackedRowMajor(2, 2)
	c := make([]float64, 2*4)
	cDesc := tensor.PackedRowMajor(2, 4)

	k := Resolve[float64](TokenScalarF64)
	k.Run(aDesc, bDesc, cDesc, a, bTiled, c, 2, 4, 2, false, false)

	// row i: sum over k of a[i,k]*b[k,j]; a row is all ones, so each
	// row equals column sums: [1+5, 2+6, 3+7, 0+0] = [6,8,10,0]
	assert.Equal(t, []float64{6, 8, 10, 0, 6, 8, 10, 0}, c)
}

func TestFloat32KernelRejectsMismatchedToken(t *testing.T) {
	assert.Panics(t, func() { Float32Kernel(TokenScalarF64) })
}

func TestStepsFor(t *testing.T) {
	require.Equal(t, Steps{MCStep: 4, NCStep: 8, KCStep: 1, MinVectorA: 4, MinVectorB: 8}, StepsFor(TokenAVX2F32))
	require.Equal(t, Steps{MCStep: 1, NCStep: 1, KCStep: 1, MinVectorA: 1, MinVectorB: 1}, StepsFor(TokenScalarF32))
}
