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
	"fmt"

	"github.com/ajroetker/blockgemm/internal/kernel"
	"github.com/ajroetker/blockgemm/internal/tensor"
	"github.com/samber/lo"
)

// validate runs spec.md §4.1's validity check plus the §7
// ContractViolation checks. It never touches scratch or the parallel
// region: every failure mode here is decidable before any work starts.
func validate[T kernel.Float](cfg Config, a, b MatrixView[T], c MutableMatrixView[T]) error {
	if cfg.MPerBlock <= 0 || cfg.NPerBlock <= 0 || cfg.KPerBlock <= 0 {
		return &ConfigError{Reason: fmt.Sprintf("block sizes must be positive, got M=%d N=%d K=%d", cfg.MPerBlock, cfg.NPerBlock, cfg.KPerBlock)}
	}
	if cfg.MatrixAMinVectorSize <= 0 || cfg.MatrixBMinVectorSize <= 0 {
		return &ConfigError{Reason: "MatrixAMinVectorSize and MatrixBMinVectorSize must be positive"}
	}

	// The kernel token must name a kernel for T's element type, so that
	// kernel.Resolve never panics inside Run.
	var zero T
	switch any(zero).(type) {
	case float32:
		if cfg.KernelToken != kernel.TokenAVX2F32 && cfg.KernelToken != kernel.TokenScalarF32 {
			return &ConfigError{Reason: fmt.Sprintf("kernel token %s is not a float32 kernel", cfg.KernelToken)}
		}
	case float64:
		if cfg.KernelToken != kernel.TokenAVX2F64 && cfg.KernelToken != kernel.TokenScalarF64 {
			return &ConfigError{Reason: fmt.Sprintf("kernel token %s is not a float64 kernel", cfg.KernelToken)}
		}
	}

	if a.Cols != b.Rows {
		return &ContractViolation{Reason: fmt.Sprintf("A.K (%d) != B.K (%d)", a.Cols, b.Rows)}
	}
	if a.Rows != c.Rows {
		return &ContractViolation{Reason: fmt.Sprintf("A.M (%d) != C.M (%d)", a.Rows, c.Rows)}
	}
	if b.Cols != c.Cols {
		return &ContractViolation{Reason: fmt.Sprintf("B.N (%d) != C.N (%d)", b.Cols, c.Cols)}
	}

	vb := cfg.MatrixBMinVectorSize
	n := c.Cols

	// spec.md §4.1: UseCLocalBuffer + OrderMKN requires NPerBlock >= N,
	// since otherwise a C tile is partially accumulated and flushed
	// before the K reduction over that tile completes.
	if cfg.UseCLocalBuffer && cfg.AccessOrder == OrderMKN && cfg.NPerBlock < n {
		return &ConfigError{Reason: fmt.Sprintf("UseCLocalBuffer with access order M,K,N requires NPerBlock (%d) >= N (%d)", cfg.NPerBlock, n)}
	}

	// spec.md §4.1: without a local C buffer the micro-kernel writes
	// full SIMD lanes straight into the grid, so N must be a multiple
	// of VB — otherwise the driver would write past the grid's last
	// column (spec.md §9 Open Questions).
	if !cfg.UseCLocalBuffer && n%vb != 0 {
		return &ConfigError{Reason: fmt.Sprintf("UseCLocalBuffer=false requires N (%d) to be a multiple of MatrixBMinVectorSize (%d)", n, vb)}
	}

	if a.Layout != tensor.RowMajor && a.Layout != tensor.ColMajor {
		return &ConfigError{Reason: "A layout must be row-major (MK) or column-major (KM)"}
	}
	if b.Layout != tensor.RowMajor && b.Layout != tensor.NTiled {
		return &ConfigError{Reason: "B layout must be row-major (KN) or N-tiled (N0,K,N1)"}
	}
	if b.Layout == tensor.NTiled && b.Desc.Length(2) != vb {
		return &ConfigError{Reason: fmt.Sprintf("N-tiled B's inner tile width (%d) must equal MatrixBMinVectorSize (%d)", b.Desc.Length(2), vb)}
	}

	if len(a.Data) < a.Desc.ElementSpaceSize() {
		return &ContractViolation{Reason: "A buffer shorter than its descriptor's element space"}
	}
	if len(b.Data) < b.Desc.ElementSpaceSize() {
		return &ContractViolation{Reason: "B buffer shorter than its descriptor's element space"}
	}
	if len(c.Data) < c.Desc.ElementSpaceSize() {
		return &ContractViolation{Reason: "C buffer shorter than its descriptor's element space"}
	}

	return nil
}

// canSkipAPack reports whether UseALocalBuffer=false is actually safe:
// packing may only be skipped when the whole K dimension fits in one
// block and A is row-major, since the kernel's packed-block stride
// assumption (row stride == kc) would otherwise disagree with the
// grid's native row stride (K).
func canSkipAPack[T kernel.Float](cfg Config, a MatrixView[T]) bool {
	return lo.Ternary(!cfg.UseALocalBuffer && a.Layout == tensor.RowMajor && cfg.KPerBlock >= a.Cols, true, false)
}

// canSkipBPack reports the B analog: packing may only be skipped when
// the whole N dimension fits in one block, B is row-major, and N is a
// multiple of MatrixBMinVectorSize (so the VB-rounded block width
// equals the grid's native row stride N).
func canSkipBPack[T kernel.Float](cfg Config, b MatrixView[T]) bool {
	return lo.Ternary(!cfg.UseBLocalBuffer && b.Layout == tensor.RowMajor && cfg.NPerBlock >= b.Cols && b.Cols%cfg.MatrixBMinVectorSize == 0, true, false)
}
