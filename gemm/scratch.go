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
	"github.com/ajroetker/blockgemm/internal/alloc"
	"github.com/ajroetker/blockgemm/internal/kernel"
	"github.com/ajroetker/blockgemm/internal/tensor"
)

// workerScratch holds one worker's aligned packed-A, packed-B, and
// optional local-C staging buffers, sized for the largest tile that
// worker will ever process. Allocated once per worker up front and
// reused across every tile it processes — the teacher corpus's
// block_kernel.go allocates one scratch block before the parallel loop
// and shares it across goroutines, which races on concurrent writers;
// keying scratch by worker keeps the allocation pattern but removes the
// race (spec.md §9).
type workerScratch[T kernel.Float] struct {
	a *alloc.Buffer[T]
	b *alloc.Buffer[T]
	c *alloc.Buffer[T]
}

func newWorkerScratch[T kernel.Float](cfg Config) (*workerScratch[T], error) {
	paddedMC := tensor.NextMultiple(cfg.MPerBlock, cfg.MatrixAMinVectorSize)
	aSize := cfg.KPerBlock * paddedMC
	if rowMajorSize := cfg.MPerBlock * cfg.KPerBlock; rowMajorSize > aSize {
		aSize = rowMajorSize
	}

	nc := tensor.NextMultiple(cfg.NPerBlock, cfg.MatrixBMinVectorSize)
	bSize := cfg.KPerBlock * nc
	cSize := cfg.MPerBlock * nc

	a, err := alloc.New[T](aSize, alloc.DefaultAlignment)
	if err != nil {
		return nil, &AllocError{Reason: "packed-A scratch", Err: err}
	}
	b, err := alloc.New[T](bSize, alloc.DefaultAlignment)
	if err != nil {
		a.Release()
		return nil, &AllocError{Reason: "packed-B scratch", Err: err}
	}

	s := &workerScratch[T]{a: a, b: b}
	if cfg.UseCLocalBuffer {
		c, err := alloc.New[T](cSize, alloc.DefaultAlignment)
		if err != nil {
			a.Release()
			b.Release()
			return nil, &AllocError{Reason: "local-C scratch", Err: err}
		}
		s.c = c
	}
	return s, nil
}

func (s *workerScratch[T]) release() {
	s.a.Release()
	s.b.Release()
	if s.c != nil {
		s.c.Release()
	}
}
