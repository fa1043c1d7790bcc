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
	"runtime"

	"github.com/ajroetker/blockgemm/internal/kernel"
	"github.com/ajroetker/blockgemm/internal/tensor"
	"github.com/ajroetker/blockgemm/internal/transfer"
)

// driver holds one Run call's immutable inputs plus the per-worker
// scratch pool it allocates for the duration of that call.
type driver[T kernel.Float] struct {
	cfg    Config
	a, b   MatrixView[T]
	c      MutableMatrixView[T]
	kernel kernel.MicroKernel[T]

	scratch []*workerScratch[T]
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func (d *driver[T]) workerCount() int {
	if !d.cfg.Parallel {
		return 1
	}
	return runtime.GOMAXPROCS(0)
}

func (d *driver[T]) allocScratch() error {
	n := d.workerCount()
	d.scratch = make([]*workerScratch[T], n)
	for i := range d.scratch {
		s, err := newWorkerScratch[T](d.cfg)
		if err != nil {
			d.releaseScratch()
			return err
		}
		d.scratch[i] = s
	}
	return nil
}

func (d *driver[T]) releaseScratch() {
	for _, s := range d.scratch {
		if s != nil {
			s.release()
		}
	}
}

func (d *driver[T]) run() error {
	if err := d.allocScratch(); err != nil {
		return err
	}
	defer d.releaseScratch()

	if d.cfg.AccessOrder == OrderMKN {
		return d.runMKN()
	}
	return d.runMNK()
}

// packOrViewA returns the (mc, kc) A block for the given tile, either
// by packing into worker scratch or, when canSkipAPack holds, by
// slicing the caller's own A buffer directly — valid because that
// condition guarantees kc spans the whole of K with a matching native
// row stride.
func (d *driver[T]) packOrViewA(scratch *workerScratch[T], rowStart, colStart, mc, kc int) ([]T, tensor.Descriptor) {
	if canSkipAPack(d.cfg, d.a) {
		offset := d.a.Desc.Offset(rowStart, colStart)
		return d.a.Data[offset:], tensor.PackedRowMajor(mc, kc)
	}
	colMajor := d.a.Layout == tensor.ColMajor
	paddedMC := mc
	if colMajor {
		paddedMC = tensor.NextMultiple(mc, d.cfg.MatrixAMinVectorSize)
	}
	tr, dstDesc := transfer.PackA[T](d.a.Desc, rowStart, colStart, mc, kc, paddedMC, colMajor, transfer.Identity[T])
	buf := scratch.a.Slice()[:dstDesc.ElementSpaceSize()]
	tr.Run(buf, d.a.Data)
	return buf, dstDesc
}

// packOrViewB is packOrViewA's B analog; nc is the VB-rounded block
// width and validN the number of those columns actually backed by B.
func (d *driver[T]) packOrViewB(scratch *workerScratch[T], rowStart, colStart, kc, nc, validN int) ([]T, tensor.Descriptor) {
	if canSkipBPack(d.cfg, d.b) {
		offset := d.b.Desc.Offset(rowStart, colStart)
		return d.b.Data[offset:], tensor.PackedRowMajor(kc, nc)
	}
	nTiled := d.b.Layout == tensor.NTiled
	vb := d.cfg.MatrixBMinVectorSize
	tr, dstDesc := transfer.PackB[T](d.b.Desc, rowStart, colStart, kc, nc, vb, nTiled, validN, transfer.Identity[T])
	buf := scratch.b.Slice()[:dstDesc.ElementSpaceSize()]
	tr.Run(buf, d.b.Data)
	return buf, dstDesc
}

// cBlockView is a (mc, nc) destination the micro-kernel writes into:
// either private local scratch (UseCLocalBuffer) or a direct window
// into the caller's C grid, addressed through cDesc either way.
type cBlockView[T kernel.Float] struct {
	buf      []T
	desc     tensor.Descriptor
	colStart int
	nc       int
	ncReal   int
}

func (d *driver[T]) newCBlockView(scratch *workerScratch[T], rowStart, colStart, mc, nc, ncReal int) cBlockView[T] {
	if d.cfg.UseCLocalBuffer {
		desc := tensor.PackedRowMajor(mc, nc)
		return cBlockView[T]{buf: scratch.c.Slice()[:desc.ElementSpaceSize()], desc: desc, colStart: colStart, nc: nc, ncReal: ncReal}
	}
	base := d.c.Desc.Offset(rowStart, colStart)
	desc := tensor.New([]int{mc, nc}, []int{d.c.Desc.Stride(0), d.c.Desc.Stride(1)})
	return cBlockView[T]{buf: d.c.Data[base:], desc: desc, colStart: colStart, nc: nc, ncReal: ncReal}
}

func (d *driver[T]) flushCBlock(rowStart, mc int, cb cBlockView[T]) {
	if !d.cfg.UseCLocalBuffer {
		return
	}
	tr, _ := transfer.UnpackC[T](d.c.Desc, rowStart, cb.colStart, mc, cb.nc, cb.ncReal, transfer.Identity[T])
	tr.Run(d.c.Data, cb.buf)
}

// runMNK implements the "M,N,K" access order: the flattened (i_m, i_n)
// tile grid is the unit of parallelism, and each tile runs its full K
// reduction before moving on (spec.md §4.4).
func (d *driver[T]) runMNK() error {
	cfg := d.cfg
	M, N, K := d.a.Rows, d.c.Cols, d.a.Cols
	gridM := ceilDiv(M, cfg.MPerBlock)
	gridN := ceilDiv(N, cfg.NPerBlock)
	total := gridM * gridN

	aColMajor := d.a.Layout == tensor.ColMajor

	process := func(workerID, idx int) error {
		scratch := d.scratch[workerID]
		im := (idx / gridN) * cfg.MPerBlock
		in := (idx % gridN) * cfg.NPerBlock
		mc := min(cfg.MPerBlock, M-im)
		ncReal := min(cfg.NPerBlock, N-in)
		nc := tensor.NextMultiple(ncReal, cfg.MatrixBMinVectorSize)

		cb := d.newCBlockView(scratch, im, in, mc, nc, ncReal)

		for ik := 0; ik < K; ik += cfg.KPerBlock {
			kc := min(cfg.KPerBlock, K-ik)
			accumulate := ik != 0

			aBlock, aBlockDesc := d.packOrViewA(scratch, im, ik, mc, kc)
			bBlock, bBlockDesc := d.packOrViewB(scratch, ik, in, kc, nc, ncReal)

			d.kernel.Run(aBlockDesc, bBlockDesc, cb.desc, aBlock, bBlock, cb.buf, mc, nc, kc, aColMajor, accumulate)
		}

		d.flushCBlock(im, mc, cb)

		if cfg.Logger != nil {
			cfg.Logger.Debug("gemm tile", "order", "M,N,K", "i_m", im, "i_n", in, "mc", mc, "nc", nc)
		}
		return nil
	}

	return parallelFor(d.workerCount(), total, process)
}

// runMKN implements the "M,K,N" access order: parallelism is over M
// tiles only, and each K tile's packed A panel is reused across every
// N tile before moving to the next K tile (spec.md §4.4). validate
// guarantees UseCLocalBuffer implies a single N tile, so the "flush
// once per (i_m, i_n)" invariant still holds.
func (d *driver[T]) runMKN() error {
	cfg := d.cfg
	M, N, K := d.a.Rows, d.c.Cols, d.a.Cols
	gridM := ceilDiv(M, cfg.MPerBlock)
	gridN := ceilDiv(N, cfg.NPerBlock)

	aColMajor := d.a.Layout == tensor.ColMajor

	process := func(workerID, idx int) error {
		scratch := d.scratch[workerID]
		im := idx * cfg.MPerBlock
		mc := min(cfg.MPerBlock, M-im)

		cBlocks := make([]cBlockView[T], gridN)
		for in := 0; in < gridN; in++ {
			inStart := in * cfg.NPerBlock
			ncReal := min(cfg.NPerBlock, N-inStart)
			nc := tensor.NextMultiple(ncReal, cfg.MatrixBMinVectorSize)
			cBlocks[in] = d.newCBlockView(scratch, im, inStart, mc, nc, ncReal)
		}

		for ik := 0; ik < K; ik += cfg.KPerBlock {
			kc := min(cfg.KPerBlock, K-ik)
			accumulate := ik != 0

			aBlock, aBlockDesc := d.packOrViewA(scratch, im, ik, mc, kc)

			for in := range cBlocks {
				cb := cBlocks[in]
				bBlock, bBlockDesc := d.packOrViewB(scratch, ik, cb.colStart, kc, cb.nc, cb.ncReal)
				d.kernel.Run(aBlockDesc, bBlockDesc, cb.desc, aBlock, bBlock, cb.buf, mc, cb.nc, kc, aColMajor, accumulate)
			}
		}

		for _, cb := range cBlocks {
			d.flushCBlock(im, mc, cb)
		}

		if cfg.Logger != nil {
			cfg.Logger.Debug("gemm tile", "order", "M,K,N", "i_m", im, "mc", mc)
		}
		return nil
	}

	return parallelFor(d.workerCount(), gridM, process)
}
