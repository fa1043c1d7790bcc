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

package main

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ajroetker/blockgemm/gemm"
	"github.com/ajroetker/blockgemm/internal/presets"
)

type benchFlags struct {
	preset      string
	presetsFile string
	m, n, k     int
	repeat      int
}

func newBenchCmd() *cobra.Command {
	flags := &benchFlags{}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the blockgemm driver over a named preset and report GFLOP/s",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.preset, "preset", "avx2-f32-l2", "named block-size preset (see internal/presets)")
	cmd.Flags().StringVar(&flags.presetsFile, "presets-file", "", "optional YAML file of additional/overriding presets")
	cmd.Flags().IntVar(&flags.m, "m", 512, "M dimension")
	cmd.Flags().IntVar(&flags.n, "n", 512, "N dimension")
	cmd.Flags().IntVar(&flags.k, "k", 512, "K dimension")
	cmd.Flags().IntVar(&flags.repeat, "repeat", 3, "number of timed repetitions; the fastest is reported")
	return cmd
}

func runBench(cmd *cobra.Command, flags *benchFlags) error {
	preset, err := presets.Find(flags.presetsFile, flags.preset)
	if err != nil {
		return err
	}
	cfg, err := preset.ToConfig()
	if err != nil {
		return err
	}

	var best time.Duration
	isF32 := strings.HasSuffix(preset.Token, "f32")
	for i := 0; i < flags.repeat; i++ {
		var elapsed time.Duration
		if isF32 {
			elapsed, err = timeRunF32(cfg, flags.m, flags.n, flags.k)
		} else {
			elapsed, err = timeRunF64(cfg, flags.m, flags.n, flags.k)
		}
		if err != nil {
			return err
		}
		if best == 0 || elapsed < best {
			best = elapsed
		}
	}

	flops := 2.0 * float64(flags.m) * float64(flags.n) * float64(flags.k)
	gflops := flops / best.Seconds() / 1e9

	p := message.NewPrinter(language.English)
	out := cmd.OutOrStdout()
	p.Fprintf(out, "preset=%s m=%d n=%d k=%d best=%s gflops=%.2f\n",
		preset.Name, flags.m, flags.n, flags.k, best, gflops)
	return nil
}

func timeRunF32(cfg gemm.Config, m, n, k int) (time.Duration, error) {
	rng := rand.New(rand.NewSource(1))
	aData := randomSliceF32(rng, m*k)
	bData := randomSliceF32(rng, k*n)
	a := gemm.NewRowMajorA[float32](aData, m, k)
	b := gemm.NewRowMajorB[float32](bData, k, n)
	c := gemm.NewC[float32](make([]float32, m*n), m, n)

	start := time.Now()
	err := gemm.Run[float32](context.Background(), cfg, a, b, c)
	return time.Since(start), err
}

func timeRunF64(cfg gemm.Config, m, n, k int) (time.Duration, error) {
	rng := rand.New(rand.NewSource(1))
	aData := randomSliceF64(rng, m*k)
	bData := randomSliceF64(rng, k*n)
	a := gemm.NewRowMajorA[float64](aData, m, k)
	b := gemm.NewRowMajorB[float64](bData, k, n)
	c := gemm.NewC[float64](make([]float64, m*n), m, n)

	start := time.Now()
	err := gemm.Run[float64](context.Background(), cfg, a, b, c)
	return time.Since(start), err
}

func randomSliceF32(rng *rand.Rand, n int) []float32 {
	data := make([]float32, n)
	for i := range data {
		data[i] = rng.Float32()
	}
	return data
}

func randomSliceF64(rng *rand.Rand, n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = rng.Float64()
	}
	return data
}
