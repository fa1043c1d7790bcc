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

package transfer

import "github.com/ajroetker/blockgemm/internal/tensor"

// PackA builds the Transfer that packs an A tile into its block buffer.
// mc, kc are the tile's real (already trailing-tile-trimmed) extents.
//
//   - row-major (A "MK"): dst shape (mc, kc), same axis order as the
//     source, never padded.
//   - column-major (A "KM"): dst shape (kc, paddedMC) — transposed
//     relative to the source's (m, k) axes — with paddedMC-mc rows of
//     zero padding, matching BasePackLHS's "zero-pad remaining rows in
//     micro-panel" behavior.
func PackA[T any](aDesc tensor.Descriptor, rowStart, colStart, mc, kc, paddedMC int, colMajor bool, op ElementOp[T]) (*Transfer[T], tensor.Descriptor) {
	if !colMajor {
		dst := tensor.PackedRowMajor(mc, kc)
		tr := New[T](aDesc, []int{rowStart, colStart}, dst, []int{0, 0}, []int{mc, kc}, []int{0, 1}, []int{mc, kc}, true, op)
		return tr, dst
	}
	dst := tensor.PackedRowMajor(kc, paddedMC)
	// dst axis 0 = k (maps to src axis 1), dst axis 1 = m (maps to src axis 0)
	tr := New[T](aDesc, []int{rowStart, colStart}, dst, []int{0, 0}, []int{kc, paddedMC}, []int{1, 0}, []int{kc, mc}, true, op)
	return tr, dst
}

// PackB builds the Transfer that packs a B tile into its block buffer.
// kc, nc are the block-sized (already VB-rounded) tile extents; validN
// is the number of those nc columns actually backed by the grid — the
// rest is SIMD-tail padding that must read as zero.
//
//   - "KN" (row-major): dst shape (kc, nc), same axis order as source.
//   - "N0,K,N1" (already N-tiled source): dst shape
//     (ceil(nc/vb), kc, vb), a straight sub-window copy of a source that
//     is itself laid out that way — already zero-padded upstream, so no
//     further validity trimming applies here.
func PackB[T any](bDesc tensor.Descriptor, rowStart, colStart, kc, nc, vb int, nTiled bool, validN int, op ElementOp[T]) (*Transfer[T], tensor.Descriptor) {
	if !nTiled {
		dst := tensor.PackedRowMajor(kc, nc)
		tr := New[T](bDesc, []int{rowStart, colStart}, dst, []int{0, 0}, []int{kc, nc}, []int{0, 1}, []int{kc, validN}, true, op)
		return tr, dst
	}
	n0 := (nc + vb - 1) / vb
	dst := tensor.Tiled3(n0, kc, vb)
	colN0 := colStart / vb
	tr := New[T](bDesc, []int{colN0, rowStart, 0}, dst, []int{0, 0, 0}, []int{n0, kc, vb}, []int{0, 1, 2}, []int{n0, kc, vb}, true, op)
	return tr, dst
}

// PackC builds the Transfer that loads a C tile from the grid into a
// local C block (used when UseCLocalBuffer). validN is the number of
// the tile's nc columns actually backed by the grid; the rest is
// read as zero rather than touching memory past the grid's last
// column.
func PackC[T any](cDesc tensor.Descriptor, rowStart, colStart, mc, nc, validN int, op ElementOp[T]) (*Transfer[T], tensor.Descriptor) {
	dst := tensor.PackedRowMajor(mc, nc)
	tr := New[T](cDesc, []int{rowStart, colStart}, dst, []int{0, 0}, []int{mc, nc}, []int{0, 1}, []int{mc, validN}, true, op)
	return tr, dst
}

// UnpackC copies a computed local C block back to the C grid at
// (rowStart, colStart). Only the first validN of the block's nc
// columns are written — the rest is SIMD-tail padding that must never
// touch the grid. Exactly one copy-back per (i_m, i_n) tile per
// spec.md invariant 4.
func UnpackC[T any](cDesc tensor.Descriptor, rowStart, colStart, mc, nc, validN int, op ElementOp[T]) (*Transfer[T], tensor.Descriptor) {
	src := tensor.PackedRowMajor(mc, nc)
	tr := New[T](src, []int{0, 0}, cDesc, []int{rowStart, colStart}, []int{mc, nc}, []int{0, 1}, []int{mc, validN}, false, op)
	return tr, src
}
