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

// Package alloc provides the AlignedBuffer primitive spec.md §4.3
// describes: scoped allocation of cache-line-aligned scratch for packed
// A, packed B, and (optionally) local C blocks.
//
// No library in the retrieved corpus targets this narrow a need (a
// 32-byte-aligned slice view over a Go allocation); the teacher's own
// hwy package allocates Vec/Tile backing arrays with plain make() and
// leaves alignment to the runtime allocator's size classes. Aligning a
// []T by hand requires pointer arithmetic, which has no idiomatic
// non-stdlib home, so this is built on unsafe + math/bits rather than a
// third-party dependency — see DESIGN.md.
package alloc

import (
	"fmt"
	"math/bits"
	"unsafe"
)

// DefaultAlignment is the alignment spec.md §4.3/§6 requires for all
// driver scratch buffers.
const DefaultAlignment = 32

// Buffer is a scoped, aligned scratch allocation. Zero value is not
// usable; construct with New. Release must be called on every exit path
// including failures — callers should `defer buf.Release()` immediately
// after a successful New.
type Buffer[T any] struct {
	raw   []T
	slice []T
}

// New allocates a Buffer able to hold at least n elements of T, with the
// returned slice's backing address aligned to alignment bytes (0 means
// DefaultAlignment). Returns an error rather than panicking so the
// driver can surface it as AllocError per spec.md §7.
func New[T any](n, alignment int) (*Buffer[T], error) {
	if alignment <= 0 {
		alignment = DefaultAlignment
	}
	if bits.OnesCount(uint(alignment)) != 1 {
		return nil, fmt.Errorf("alloc: alignment %d is not a power of two", alignment)
	}
	if n < 0 {
		return nil, fmt.Errorf("alloc: negative size %d", n)
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return &Buffer[T]{raw: make([]T, n), slice: make([]T, n)}, nil
	}

	extra := (alignment + elemSize - 1) / elemSize
	raw := make([]T, n+extra)
	if len(raw) == 0 {
		return &Buffer[T]{raw: raw, slice: raw}, nil
	}

	base := uintptr(unsafe.Pointer(&raw[0]))
	misalign := base % uintptr(alignment)
	var offsetElems int
	if misalign != 0 {
		offsetElems = int((uintptr(alignment) - misalign) / uintptr(elemSize))
	}
	if offsetElems+n > len(raw) {
		offsetElems = 0
	}

	return &Buffer[T]{raw: raw, slice: raw[offsetElems : offsetElems+n]}, nil
}

// Slice returns the aligned view requested from New. Valid only until
// Release.
func (b *Buffer[T]) Slice() []T { return b.slice }

// Release returns the buffer to the garbage collector's care. Safe to
// call multiple times.
func (b *Buffer[T]) Release() {
	b.raw = nil
	b.slice = nil
}
