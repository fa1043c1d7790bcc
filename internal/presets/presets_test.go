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

package presets

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ajroetker/blockgemm/gemm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDefaultPreset(t *testing.T) {
	p, err := Find("", "avx2-f32-l2")
	require.NoError(t, err)
	assert.Equal(t, 64, p.MPerBlock)
	assert.Equal(t, "avx2-f32", p.Token)
}

func TestFindUnknownPresetErrors(t *testing.T) {
	_, err := Find("", "does-not-exist")
	assert.Error(t, err)
}

func TestLoadFileOverridesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	doc := "presets:\n" +
		"  - name: avx2-f32-l2\n" +
		"    m_per_block: 128\n" +
		"    n_per_block: 128\n" +
		"    k_per_block: 128\n" +
		"    access_order: mkn\n" +
		"    token: avx2-f32\n" +
		"  - name: custom\n" +
		"    m_per_block: 8\n" +
		"    n_per_block: 8\n" +
		"    k_per_block: 8\n" +
		"    access_order: mnk\n" +
		"    token: scalar-f64\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	overridden, err := Find(path, "avx2-f32-l2")
	require.NoError(t, err)
	assert.Equal(t, 128, overridden.MPerBlock)
	assert.Equal(t, "mkn", overridden.AccessOrder)

	custom, err := Find(path, "custom")
	require.NoError(t, err)
	assert.Equal(t, 8, custom.MPerBlock)
}

func TestToConfigAppliesOverrides(t *testing.T) {
	parallelOff := false
	p := Preset{
		Name: "t", MPerBlock: 4, NPerBlock: 4, KPerBlock: 4,
		AccessOrder: "mkn", Token: "scalar-f64", Parallel: &parallelOff,
	}
	cfg, err := p.ToConfig()
	require.NoError(t, err)
	assert.Equal(t, gemm.OrderMKN, cfg.AccessOrder)
	assert.False(t, cfg.Parallel)
}

func TestToConfigRejectsUnknownToken(t *testing.T) {
	p := Preset{Name: "t", Token: "made-up"}
	_, err := p.ToConfig()
	assert.Error(t, err)
}
