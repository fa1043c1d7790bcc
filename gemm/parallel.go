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

import "golang.org/x/sync/errgroup"

// parallelFor runs fn(workerID, tileIndex) for every tileIndex in
// [0, n), split across workers as a static block partition rather than
// a shared work queue — each worker owns a contiguous run of indices
// so it can allocate exactly one workerScratch and keep it for its
// entire share of the grid, instead of the teacher corpus's single
// pre-parallel-loop allocation shared across goroutines. workers=1
// runs fn synchronously on the calling goroutine with no errgroup
// overhead — what Config.Parallel=false selects.
//
// Run is atomic from the caller's viewpoint (spec.md §5): once
// dispatched, a tile grid always runs to completion or to its first
// error, so parallelFor takes no context and never aborts a worker
// mid-grid.
//
// Returns the first error observed.
func parallelFor(workers, n int, fn func(workerID, tileIndex int) error) error {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}
	if workers == 1 {
		for idx := 0; idx < n; idx++ {
			if err := fn(0, idx); err != nil {
				return err
			}
		}
		return nil
	}

	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := start + chunk
		if end > n {
			end = n
		}
		workerID, lo, hi := w, start, end
		g.Go(func() error {
			for idx := lo; idx < hi; idx++ {
				if err := fn(workerID, idx); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}
