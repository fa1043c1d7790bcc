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

package gemm

import (
	"log/slog"

	"github.com/ajroetker/blockgemm/internal/kernel"
)

// AccessOrder selects one of the two fixed outer loop nests spec.md §4.4
// describes.
type AccessOrder int

const (
	// OrderMNK parallelizes over the flattened (M, N) tile grid and
	// runs the full K reduction per tile ("M,N,K").
	OrderMNK AccessOrder = iota
	// OrderMKN parallelizes over M only, reusing each packed A panel
	// across every N tile for a given K tile ("M,K,N").
	OrderMKN
)

func (o AccessOrder) String() string {
	if o == OrderMKN {
		return "M,K,N"
	}
	return "M,N,K"
}

// Config is the static, compile/construction-time configuration surface
// spec.md §6 describes: block sizes, access order, local-buffer toggles,
// micro-kernel token, and the two matrices' minimum vector sizes. There
// are no environment variables and no persisted state — a Config is
// just a Go value the caller constructs and passes to Run.
type Config struct {
	MPerBlock, NPerBlock, KPerBlock int

	AccessOrder AccessOrder

	// UseALocalBuffer/UseBLocalBuffer: pack A/B panels into aligned
	// scratch before the micro-kernel call. Setting either false skips
	// packing and feeds the grid region straight to the kernel, which
	// is only valid when that matrix isn't tiled along the axis the
	// skip would break the kernel's assumed contiguous stride for
	// (row-major A with KPerBlock >= K; row-major B with NPerBlock >= N
	// and N a multiple of MatrixBMinVectorSize). canSkipAPack and
	// canSkipBPack check this when Run packs each tile and fall back to
	// packing rather than erroring, since it's a pure performance hint,
	// not a correctness-affecting toggle.
	UseALocalBuffer bool
	UseBLocalBuffer bool
	// UseCLocalBuffer: accumulate into private scratch and copy back
	// once per (i_m, i_n) tile (true), or write straight into the C
	// grid (false). See spec.md invariant 4 and §4.1.
	UseCLocalBuffer bool

	KernelToken kernel.Token

	MatrixAMinVectorSize int
	MatrixBMinVectorSize int

	// Parallel disables the fork-join parallel-for when false (useful
	// for the bit-identical single-threaded/multi-worker determinism
	// property in spec.md §8). Defaults to true via NewConfig.
	Parallel bool

	// Logger receives one debug record per outer tile dispatch
	// decision when non-nil. A nil Logger (the zero value) is silent,
	// matching library ergonomics — Run never forces output.
	Logger *slog.Logger
}

// NewConfig returns a Config with the block sizes and token given and
// every other field at its most common default: OrderMNK,
// UseALocalBuffer/UseBLocalBuffer/UseCLocalBuffer all true, the
// token's minimum vector sizes, Parallel true, no logger. A/B layouts
// are not part of Config; they come from each MatrixView's Layout.
func NewConfig(mPerBlock, nPerBlock, kPerBlock int, token kernel.Token) Config {
	steps := kernel.StepsFor(token)
	return Config{
		MPerBlock:             mPerBlock,
		NPerBlock:             nPerBlock,
		KPerBlock:             kPerBlock,
		AccessOrder:           OrderMNK,
		UseALocalBuffer:       true,
		UseBLocalBuffer:       true,
		UseCLocalBuffer:       true,
		KernelToken:           token,
		MatrixAMinVectorSize:  steps.MinVectorA,
		MatrixBMinVectorSize:  steps.MinVectorB,
		Parallel:              true,
	}
}
