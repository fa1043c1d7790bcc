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
	"testing"

	"github.com/ajroetker/blockgemm/internal/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func referenceMatmul(m, n, k int, a, b []float64) []float64 {
	c := make([]float64, m*n)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			var sum float64
			for p := 0; p < k; p++ {
				sum += a[i*k+p] * b[p*n+j]
			}
			c[i*n+j] = sum
		}
	}
	return c
}

func identity(n int) []float64 {
	m := make([]float64, n*n)
	for i := 0; i < n; i++ {
		m[i*n+i] = 1
	}
	return m
}

func ones(n int) []float64 {
	m := make([]float64, n)
	for i := range m {
		m[i] = 1
	}
	return m
}

// S1: identity times identity is identity.
func TestScenarioIdentity(t *testing.T) {
	a := NewRowMajorA[float64](identity(64), 64, 64)
	b := NewRowMajorB[float64](identity(64), 64, 64)
	c := NewC[float64](make([]float64, 64*64), 64, 64)

	cfg := NewConfig(16, 16, 16, kernel.TokenScalarF64)
	require.NoError(t, Run(context.Background(), cfg, a, b, c))

	assert.Equal(t, identity(64), c.Data)
}

// S2: all-ones 9x17 times all-ones 17x11 is uniformly 17.
func TestScenarioAllOnes(t *testing.T) {
	a := NewRowMajorA[float64](ones(9*17), 9, 17)
	b := NewRowMajorB[float64](ones(17*11), 17, 11)
	c := NewC[float64](make([]float64, 9*11), 9, 11)

	cfg := NewConfig(8, 8, 8, kernel.TokenScalarF64)
	cfg.UseCLocalBuffer = true
	cfg.AccessOrder = OrderMNK
	require.NoError(t, Run(context.Background(), cfg, a, b, c))

	for _, v := range c.Data {
		assert.Equal(t, float64(17), v)
	}
}

// S3: random shapes against a brute-force reference.
func TestScenarioRandomShapes(t *testing.T) {
	m, n, k := 128, 128, 64
	aData := make([]float64, m*k)
	bData := make([]float64, k*n)
	seed := 1469598103934665603
	next := func() float64 {
		seed = seed*1099511628211 + 7
		return float64((seed>>8)%1000) / 137.0
	}
	for i := range aData {
		aData[i] = next()
	}
	for i := range bData {
		bData[i] = next()
	}

	want := referenceMatmul(m, n, k, aData, bData)

	a := NewRowMajorA[float64](aData, m, k)
	b := NewRowMajorB[float64](bData, k, n)
	c := NewC[float64](make([]float64, m*n), m, n)
	cfg := NewConfig(32, 32, 32, kernel.TokenScalarF64)
	require.NoError(t, Run(context.Background(), cfg, a, b, c))

	for i := range want {
		assert.InEpsilon(t, want[i]+1, c.Data[i]+1, 1e-9, "index %d", i)
	}
}

// S4: a single M=1,N=8 row against a long K reduction spanning 16 tiles.
func TestScenarioLongKReduction(t *testing.T) {
	m, n, k := 1, 8, 1024
	aData := make([]float64, m*k)
	bData := make([]float64, k*n)
	for i := range aData {
		aData[i] = 1
	}
	for i := range bData {
		bData[i] = float64(i%7) - 3
	}
	want := referenceMatmul(m, n, k, aData, bData)

	a := NewRowMajorA[float64](aData, m, k)
	b := NewRowMajorB[float64](bData, k, n)
	c := NewC[float64](make([]float64, m*n), m, n)
	cfg := NewConfig(16, 8, 64, kernel.TokenScalarF64)
	require.NoError(t, Run(context.Background(), cfg, a, b, c))

	assert.Equal(t, want, c.Data)
}

// S5: UseCLocalBuffer=false with N not a multiple of VB is rejected.
func TestScenarioRejectsNonAlignedNWithoutLocalC(t *testing.T) {
	a := NewRowMajorA[float64](make([]float64, 4*4), 4, 4)
	b := NewRowMajorB[float64](make([]float64, 4*12), 4, 12)
	c := NewC[float64](make([]float64, 4*12), 4, 12)

	cfg := NewConfig(4, 4, 4, kernel.TokenScalarF64)
	cfg.UseCLocalBuffer = false
	cfg.MatrixBMinVectorSize = 8

	err := Run(context.Background(), cfg, a, b, c)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

// S6: UseCLocalBuffer=true with access order M,K,N and NPerBlock < N is
// rejected.
func TestScenarioRejectsSmallNPerBlockWithLocalCInMKNOrder(t *testing.T) {
	a := NewRowMajorA[float64](make([]float64, 4*4), 4, 4)
	b := NewRowMajorB[float64](make([]float64, 4*64), 4, 64)
	c := NewC[float64](make([]float64, 4*64), 4, 64)

	cfg := NewConfig(4, 32, 4, kernel.TokenScalarF64)
	cfg.UseCLocalBuffer = true
	cfg.AccessOrder = OrderMKN

	err := Run(context.Background(), cfg, a, b, c)
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRunRejectsContractMismatch(t *testing.T) {
	a := NewRowMajorA[float64](make([]float64, 4*4), 4, 4)
	b := NewRowMajorB[float64](make([]float64, 5*4), 5, 4)
	c := NewC[float64](make([]float64, 4*4), 4, 4)

	cfg := NewConfig(4, 4, 4, kernel.TokenScalarF64)
	err := Run(context.Background(), cfg, a, b, c)
	require.Error(t, err)
	var violation *ContractViolation
	assert.ErrorAs(t, err, &violation)
}

func TestRunRespectsCanceledContext(t *testing.T) {
	a := NewRowMajorA[float64](make([]float64, 4*4), 4, 4)
	b := NewRowMajorB[float64](make([]float64, 4*4), 4, 4)
	c := NewC[float64](make([]float64, 4*4), 4, 4)
	cfg := NewConfig(4, 4, 4, kernel.TokenScalarF64)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, cfg, a, b, c)
	assert.ErrorIs(t, err, context.Canceled)
}
