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

// Package kernel implements the MicroKernel contract spec.md §6 describes
// as a consumed, total black box: one call consumes a packed A block, a
// packed B block, and a C block, and either overwrites or adds into C.
//
// The driver (package gemm) never inspects these kernels' internals; of
// the five step/vector-size constants a Token resolves to, it reads only
// MinVectorA and MinVectorB (through NewConfig).
// All four tokens share one scalar reference body (registerBlocked in
// reference.go) modeled on contrib/matmul/matmul_base.go and
// contrib/matmul/block_kernel.go: for each (i, j) of the C block it
// accumulates one local sum over the full K loop. The body is the same
// for every token and does not vary with the vector width the Token
// names, since code generation for real vector ISAs is the
// out-of-scope "SIMD micro-kernel" spec.md §1 delegates elsewhere.
package kernel

import "github.com/ajroetker/blockgemm/internal/tensor"

// Token is a capability token selected at Config construction time. It
// is a closed enum: spec.md §9's "Micro-kernel polymorphism" design note.
type Token int

const (
	// TokenAVX2F32 models a 256-bit (AVX2-class) float32 kernel: 8
	// lanes, matching spec.md §1's "256-bit SIMD (AVX2-class)" target.
	TokenAVX2F32 Token = iota
	// TokenAVX2F64 models the float64 analog: 4 lanes per 256 bits.
	TokenAVX2F64
	// TokenScalarF32 is the portable one-lane-at-a-time fallback.
	TokenScalarF32
	// TokenScalarF64 is the portable float64 fallback.
	TokenScalarF64
)

func (t Token) String() string {
	switch t {
	case TokenAVX2F32:
		return "avx2-f32"
	case TokenAVX2F64:
		return "avx2-f64"
	case TokenScalarF32:
		return "scalar-f32"
	case TokenScalarF64:
		return "scalar-f64"
	default:
		return "unknown"
	}
}

// Steps are the (mc_step, nc_step, kc_step, min_vector_a, min_vector_b)
// constants spec.md §9 says each micro-kernel implementation supplies.
type Steps struct {
	MCStep     int
	NCStep     int
	KCStep     int
	MinVectorA int
	MinVectorB int
}

// StepsFor returns the block-size granularity the given token's kernel
// requires. gemm.NewConfig copies MinVectorA/MinVectorB into the Config;
// MPerBlock/NPerBlock/KPerBlock are not checked against MCStep/NCStep/
// KCStep.
func StepsFor(t Token) Steps {
	switch t {
	case TokenAVX2F32:
		return Steps{MCStep: 4, NCStep: 8, KCStep: 1, MinVectorA: 4, MinVectorB: 8}
	case TokenAVX2F64:
		return Steps{MCStep: 4, NCStep: 4, KCStep: 1, MinVectorA: 4, MinVectorB: 4}
	case TokenScalarF32, TokenScalarF64:
		return Steps{MCStep: 1, NCStep: 1, KCStep: 1, MinVectorA: 1, MinVectorB: 1}
	default:
		return Steps{MCStep: 1, NCStep: 1, KCStep: 1, MinVectorA: 1, MinVectorB: 1}
	}
}

// MicroKernel is the consumed contract: run(a_desc, a_buf, a_origin,
// b_desc, b_buf, b_origin, c_desc, c_buf, c_origin, accumulate). Origins
// are always zero in this driver (the packed blocks are dedicated
// per-call scratch), so the signature drops them in favor of plain
// descriptor+buffer pairs sized exactly to the current tile.
type MicroKernel[T Float] interface {
	// Run reads mc×kc of aBlock and kc×nc of bBlock and either
	// overwrites (accumulate=false) or adds into (accumulate=true)
	// the mc×nc cBlock. aDesc/bDesc/cDesc describe the packed block
	// layouts (see internal/transfer.PackA/PackB/PackC). aColMajor
	// tells the kernel whether aBlock is packed (mc, kc) (false, the
	// "MK" case) or (kc, paddedMC) (true, the "KM" case) — it is not
	// inferred from aDesc's shape since that is ambiguous whenever
	// kc == mc.
	Run(aDesc, bDesc, cDesc tensor.Descriptor, aBlock, bBlock, cBlock []T, mc, nc, kc int, aColMajor, accumulate bool)
	Steps() Steps
}

// Float is the element-type constraint the reference kernels support.
type Float interface{ ~float32 | ~float64 }
