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

import "github.com/ajroetker/blockgemm/internal/tensor"

// registerBlocked is the shared micro-kernel body behind all four
// tokens. It mirrors the two orientations the teacher corpus splits
// across separate files:
//
//   - contrib/matmul/matmul_base.go's BaseMatMul: A row-major (mc, kc),
//     B row-major (kc, nc).
//   - contrib/matmul/block_kernel.go's BaseBlockMulAdd: A pre-packed
//     as (kc, paddedMC) — transposed relative to the grid — so the
//     inner loop reads aBlock[k*paddedMC+i] instead of
//     aBlock[i*kc+k].
//
// and additionally accepts B already laid out as (n0, kc, vb) — the
// spec.md §3 "N0,K,N1" packed layout — by reading the descriptor's
// rank rather than hard-coding one B shape.
//
// accumulate=false overwrites cBlock; accumulate=true adds into it,
// the externalized "i_k != 0" predicate spec.md §4.4/§9 calls the
// correctness hinge.
//
// cDesc addresses cBlock: it is the packed (mc, nc) shape with stride
// (nc, 1) when writing into local C scratch, or the grid's native
// stride when UseCLocalBuffer is false and the kernel writes straight
// into a sub-window of the caller's C buffer — either way the kernel
// itself never assumes a particular row stride.
func registerBlocked[T Float](aDesc, bDesc, cDesc tensor.Descriptor, aBlock, bBlock, cBlock []T, mc, nc, kc int, aTransposed, accumulate bool) {
	paddedMC := mc
	if aTransposed {
		paddedMC = aDesc.Length(1)
	}

	bNTiled := bDesc.NumDimensions() == 3
	var vb int
	if bNTiled {
		vb = bDesc.Length(2)
	}

	for i := 0; i < mc; i++ {
		for j := 0; j < nc; j++ {
			var sum T
			for k := 0; k < kc; k++ {
				var aVal T
				if aTransposed {
					aVal = aBlock[k*paddedMC+i]
				} else {
					aVal = aBlock[i*kc+k]
				}

				var bVal T
				if bNTiled {
					n0 := j / vb
					n1 := j % vb
					bVal = bBlock[(n0*kc+k)*vb+n1]
				} else {
					bVal = bBlock[k*nc+j]
				}

				sum += aVal * bVal
			}
			cIdx := cDesc.Offset(i, j)
			if accumulate {
				cBlock[cIdx] += sum
			} else {
				cBlock[cIdx] = sum
			}
		}
	}
}

type avx2F32 struct{}

func (avx2F32) Run(aDesc, bDesc, cDesc tensor.Descriptor, a, b, c []float32, mc, nc, kc int, aColMajor, accumulate bool) {
	registerBlocked(aDesc, bDesc, cDesc, a, b, c, mc, nc, kc, aColMajor, accumulate)
}
func (avx2F32) Steps() Steps { return StepsFor(TokenAVX2F32) }

type avx2F64 struct{}

func (avx2F64) Run(aDesc, bDesc, cDesc tensor.Descriptor, a, b, c []float64, mc, nc, kc int, aColMajor, accumulate bool) {
	registerBlocked(aDesc, bDesc, cDesc, a, b, c, mc, nc, kc, aColMajor, accumulate)
}
func (avx2F64) Steps() Steps { return StepsFor(TokenAVX2F64) }

type scalarF32 struct{}

func (scalarF32) Run(aDesc, bDesc, cDesc tensor.Descriptor, a, b, c []float32, mc, nc, kc int, aColMajor, accumulate bool) {
	registerBlocked(aDesc, bDesc, cDesc, a, b, c, mc, nc, kc, aColMajor, accumulate)
}
func (scalarF32) Steps() Steps { return StepsFor(TokenScalarF32) }

type scalarF64 struct{}

func (scalarF64) Run(aDesc, bDesc, cDesc tensor.Descriptor, a, b, c []float64, mc, nc, kc int, aColMajor, accumulate bool) {
	registerBlocked(aDesc, bDesc, cDesc, a, b, c, mc, nc, kc, aColMajor, accumulate)
}
func (scalarF64) Steps() Steps { return StepsFor(TokenScalarF64) }

// Float32Kernel resolves a Token to a MicroKernel[float32]. Panics (a
// config-time programmer error; gemm.Run's validity check rejects such a
// token with a ConfigError before resolving a kernel) if the token is
// not a float32 token.
func Float32Kernel(t Token) MicroKernel[float32] {
	switch t {
	case TokenAVX2F32:
		return avx2F32{}
	case TokenScalarF32:
		return scalarF32{}
	default:
		panic("kernel: token " + t.String() + " is not a float32 kernel")
	}
}

// Float64Kernel resolves a Token to a MicroKernel[float64].
func Float64Kernel(t Token) MicroKernel[float64] {
	switch t {
	case TokenAVX2F64:
		return avx2F64{}
	case TokenScalarF64:
		return scalarF64{}
	default:
		panic("kernel: token " + t.String() + " is not a float64 kernel")
	}
}

// Resolve returns the MicroKernel[T] for the given token, dispatching
// on T through a type switch since Go generics cannot otherwise select
// between the float32 and float64 kernel families. Panics if the token
// does not match T; gemm.Run's validity check rejects such a token with
// a ConfigError before calling Resolve.
func Resolve[T Float](t Token) MicroKernel[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(Float32Kernel(t)).(MicroKernel[T])
	case float64:
		return any(Float64Kernel(t)).(MicroKernel[T])
	default:
		panic("kernel: unsupported element type")
	}
}
