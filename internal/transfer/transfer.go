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

// Package transfer implements the slice-transfer / packing primitives
// spec.md §6 describes as a consumed contract: copying a rectangular
// region from a strided grid into a contiguous, SIMD-aligned block
// buffer (or back), with an optional elementwise op and zero-padding of
// any axis that runs past the logical source extent.
//
// The packing layouts themselves mirror the teacher corpus's
// contrib/matmul/packing.go (BasePackLHS/BasePackLHSVec/BasePackRHSVec):
// A is packed in whatever axis order its layout calls for, B's SIMD
// tail is zero-padded rather than gathered, and C is a plain row-major
// copy in and out of the grid.
package transfer

import "github.com/ajroetker/blockgemm/internal/tensor"

// ElementOp is the "a_op"/"b_op"/"c_op" hook from spec.md §6: an
// elementwise transform applied while copying element from source to
// destination. Identity performs no transform.
type ElementOp[T any] func(T) T

// Identity is the default ElementOp.
func Identity[T any](v T) T { return v }

// Transfer copies between a source Descriptor-described buffer and a
// destination Descriptor-described buffer over an explicit tile shape.
// shape is the iteration extent (e.g. (mc, kc)); srcDesc/dstDesc supply
// only strides+rank so the same shape can walk a small packed block on
// one side and a sub-region of a much larger strided grid on the other.
// axisMap[shapeAxis] names the corresponding source axis (supporting
// the transposed packing order A "KM" requires); the destination is
// always addressed in shape's own axis order.
//
// Any shape index whose value along axis a is >= valid[a] is either
// zero-padded (packDirection=true, packing into a block whose SIMD tail
// must read as zero) or skipped entirely (packDirection=false,
// unpacking into a grid that must not be touched past its real extent).
type Transfer[T any] struct {
	srcDesc   tensor.Descriptor
	srcOrigin []int
	dstDesc   tensor.Descriptor
	dstOrigin []int
	shape     []int
	axisMap   []int
	valid     []int
	zeroPad   bool
	op        ElementOp[T]
}

// New constructs a Transfer. A nil op defaults to Identity.
func New[T any](srcDesc tensor.Descriptor, srcOrigin []int, dstDesc tensor.Descriptor, dstOrigin []int, shape, axisMap, valid []int, zeroPadInvalid bool, op ElementOp[T]) *Transfer[T] {
	if op == nil {
		op = Identity[T]
	}
	return &Transfer[T]{
		srcDesc:   srcDesc,
		srcOrigin: append([]int(nil), srcOrigin...),
		dstDesc:   dstDesc,
		dstOrigin: append([]int(nil), dstOrigin...),
		shape:     append([]int(nil), shape...),
		axisMap:   append([]int(nil), axisMap...),
		valid:     append([]int(nil), valid...),
		zeroPad:   zeroPadInvalid,
		op:        op,
	}
}

// SetSrcOrigin repositions the source window, optionally adopting a new
// source descriptor (e.g. when the trailing tile has a smaller stride
// region). Mirrors the consumed contract's set_src_origin(desc, idx).
func (t *Transfer[T]) SetSrcOrigin(desc tensor.Descriptor, idx []int) {
	t.srcDesc = desc
	t.srcOrigin = append(t.srcOrigin[:0], idx...)
}

// SetDstOrigin repositions the destination window.
func (t *Transfer[T]) SetDstOrigin(desc tensor.Descriptor, idx []int) {
	t.dstDesc = desc
	t.dstOrigin = append(t.dstOrigin[:0], idx...)
}

// SetShape updates the tile extent iterated by Run, alongside the
// per-axis valid (unpadded) extent within it. Used when a trailing tile
// is smaller than the configured block size.
func (t *Transfer[T]) SetShape(shape, valid []int) {
	t.shape = append(t.shape[:0], shape...)
	t.valid = append(t.valid[:0], valid...)
}

// MoveSrcWindow advances the source origin by step along each source
// axis (step is indexed by source axis, not shape axis).
func (t *Transfer[T]) MoveSrcWindow(step []int) {
	for i := range t.srcOrigin {
		t.srcOrigin[i] += step[i]
	}
}

// Run performs the copy into dstBuf from srcBuf using the transfer's
// currently configured shape, origins, and axis mapping.
func (t *Transfer[T]) Run(dstBuf, srcBuf []T) {
	rank := len(t.shape)
	total := 1
	for _, n := range t.shape {
		total *= n
	}
	idx := make([]int, rank)
	srcIdx := make([]int, t.srcDesc.NumDimensions())
	dstIdxAbs := make([]int, rank)

	for flat := 0; flat < total; flat++ {
		rem := flat
		for d := rank - 1; d >= 0; d-- {
			idx[d] = rem % t.shape[d]
			rem /= t.shape[d]
		}

		ok := true
		for d := 0; d < rank; d++ {
			if t.valid != nil && d < len(t.valid) && t.valid[d] >= 0 && idx[d] >= t.valid[d] {
				ok = false
				break
			}
		}

		if !ok {
			if t.zeroPad {
				for d := range idx {
					dstIdxAbs[d] = idx[d] + t.dstOrigin[d]
				}
				var zero T
				dstBuf[t.dstDesc.Offset(dstIdxAbs...)] = zero
			}
			continue
		}

		for d := range idx {
			dstIdxAbs[d] = idx[d] + t.dstOrigin[d]
		}
		for d, srcAxis := range t.axisMap {
			srcIdx[srcAxis] = idx[d] + t.srcOrigin[srcAxis]
		}
		dstOff := t.dstDesc.Offset(dstIdxAbs...)
		srcOff := t.srcDesc.Offset(srcIdx...)
		dstBuf[dstOff] = t.op(srcBuf[srcOff])
	}
}
