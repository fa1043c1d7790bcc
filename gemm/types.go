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

// Package gemm implements the cache-blocked, multi-threaded dense
// matrix-matrix multiplication driver: the blocking-and-packing
// scheduler that chooses a loop order over (M, N, K) tiles, packs A and
// B panels into micro-kernel-shaped staging buffers, manages the
// accumulate flag across K, and parallelizes the outer tiles without
// racing on C.
//
// The SIMD micro-kernel, the tensor descriptor algebra, the
// slice-transfer packing primitives, and aligned allocation are
// external collaborators (internal/kernel, internal/tensor,
// internal/transfer, internal/alloc); this package is the driver that
// orchestrates them.
package gemm

import (
	"github.com/ajroetker/blockgemm/internal/kernel"
	"github.com/ajroetker/blockgemm/internal/tensor"
)

// MatrixView is a caller-owned, read-only view of A or B: a logical
// (rows, cols) shaped grid — (M, K) for A, (K, N) for B — addressed
// through a Descriptor whose strides encode the physical layout. A is
// "MK" when Desc has strides (K, 1) and "KM" when strides (1, M); B is
// "KN" when Desc has strides (N, 1), or a 3-D (N0, K, N1) Descriptor
// when pre-packed in the tiled layout spec.md §3 describes — in which
// case Rows/Cols still carry the *logical* (unpadded) K, N so the
// driver's validity check and tile enumeration never see the SIMD-tail
// padding baked into the descriptor's shape.
type MatrixView[T kernel.Float] struct {
	Data   []T
	Desc   tensor.Descriptor
	Layout tensor.Layout
	Rows   int // M for A, K for B
	Cols   int // K for A, N for B
}

// MutableMatrixView is C: caller-owned, written during Run, always
// logical (M, N) row-major.
type MutableMatrixView[T kernel.Float] struct {
	Data []T
	Desc tensor.Descriptor
	Rows int
	Cols int
}

// NewRowMajorA builds a MatrixView for an M×K row-major ("MK") A.
func NewRowMajorA[T kernel.Float](data []T, m, k int) MatrixView[T] {
	return MatrixView[T]{Data: data, Desc: tensor.PackedRowMajor(m, k), Layout: tensor.RowMajor, Rows: m, Cols: k}
}

// NewColMajorA builds a MatrixView for an M×K column-major ("KM") A:
// logical lengths stay (M, K) but the strides are (1, M).
func NewColMajorA[T kernel.Float](data []T, m, k int) MatrixView[T] {
	return MatrixView[T]{Data: data, Desc: tensor.New([]int{m, k}, []int{1, m}), Layout: tensor.ColMajor, Rows: m, Cols: k}
}

// NewRowMajorB builds a MatrixView for a K×N row-major ("KN") B.
func NewRowMajorB[T kernel.Float](data []T, k, n int) MatrixView[T] {
	return MatrixView[T]{Data: data, Desc: tensor.PackedRowMajor(k, n), Layout: tensor.RowMajor, Rows: k, Cols: n}
}

// NewNTiledB builds a MatrixView for a B already packed as (N0, K, N1)
// with N1 = MatrixBMinVectorSize, per spec.md §3. n is the logical
// column count (N0*n1 may overshoot n by the SIMD-tail padding).
func NewNTiledB[T kernel.Float](data []T, n, k, n1 int) MatrixView[T] {
	n0 := (n + n1 - 1) / n1
	return MatrixView[T]{Data: data, Desc: tensor.Tiled3(n0, k, n1), Layout: tensor.NTiled, Rows: k, Cols: n}
}

// NewC builds a MutableMatrixView for an M×N row-major C.
func NewC[T kernel.Float](data []T, m, n int) MutableMatrixView[T] {
	return MutableMatrixView[T]{Data: data, Desc: tensor.PackedRowMajor(m, n), Rows: m, Cols: n}
}
