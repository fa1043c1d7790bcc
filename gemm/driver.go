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
	"context"

	"github.com/ajroetker/blockgemm/internal/kernel"
)

// Run computes C = A×B in place using cfg's block sizes, access order,
// and micro-kernel token. A and B are never mutated. With
// UseCLocalBuffer, each (i_m, i_n) output tile is copied back into C's
// Data exactly once per spec.md invariant 4; without it, the kernel
// writes the tile in C's Data directly on every K tile.
//
// Run is atomic from the caller's viewpoint (spec.md §5): cancellation
// is not supported mid-call. ctx is checked exactly once, before any
// work begins — if it is already canceled, Run returns ctx.Err()
// without touching C; otherwise the full tile grid runs to completion
// or to its first error.
func Run[T kernel.Float](ctx context.Context, cfg Config, a, b MatrixView[T], c MutableMatrixView[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(cfg, a, b, c); err != nil {
		return err
	}

	d := &driver[T]{
		cfg:    cfg,
		a:      a,
		b:      b,
		c:      c,
		kernel: kernel.Resolve[T](cfg.KernelToken),
	}
	return d.run()
}
