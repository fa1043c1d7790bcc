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

// Package presets loads named block-size configurations for the
// gemmbench CLI from a YAML file, so a benchmark run or a production
// call site can select "avx2-f32-l2" instead of spelling out
// MPerBlock/NPerBlock/KPerBlock by hand.
package presets

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ajroetker/blockgemm/gemm"
	"github.com/ajroetker/blockgemm/internal/kernel"
)

// Preset is one named Config shape, as it appears in a presets YAML
// document.
type Preset struct {
	Name            string `yaml:"name"`
	MPerBlock       int    `yaml:"m_per_block"`
	NPerBlock       int    `yaml:"n_per_block"`
	KPerBlock       int    `yaml:"k_per_block"`
	AccessOrder     string `yaml:"access_order"` // "mnk" or "mkn"
	Token           string `yaml:"token"`        // "avx2-f32", "avx2-f64", "scalar-f32", "scalar-f64"
	UseALocalBuffer *bool  `yaml:"use_a_local_buffer,omitempty"`
	UseBLocalBuffer *bool  `yaml:"use_b_local_buffer,omitempty"`
	UseCLocalBuffer *bool  `yaml:"use_c_local_buffer,omitempty"`
	Parallel        *bool  `yaml:"parallel,omitempty"`
}

// Document is the top-level shape of a presets YAML file.
type Document struct {
	Presets []Preset `yaml:"presets"`
}

// Defaults returns the built-in preset set, used when no file is given
// to the CLI or a requested name isn't found anywhere else.
func Defaults() []Preset {
	return []Preset{
		{Name: "scalar-small", MPerBlock: 16, NPerBlock: 16, KPerBlock: 16, AccessOrder: "mnk", Token: "scalar-f64"},
		{Name: "scalar-large", MPerBlock: 64, NPerBlock: 64, KPerBlock: 256, AccessOrder: "mnk", Token: "scalar-f64"},
		{Name: "avx2-f32-l2", MPerBlock: 64, NPerBlock: 64, KPerBlock: 256, AccessOrder: "mnk", Token: "avx2-f32"},
		{Name: "avx2-f32-reuse-a", MPerBlock: 32, NPerBlock: 512, KPerBlock: 256, AccessOrder: "mkn", Token: "avx2-f32"},
	}
}

// Load reads presets from a YAML file at path, merging them over the
// built-in defaults (a name present in both is overridden by the
// file's entry).
func Load(path string) ([]Preset, error) {
	byName := make(map[string]Preset)
	for _, p := range Defaults() {
		byName[p.Name] = p
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("presets: read %s: %w", path, err)
		}
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("presets: parse %s: %w", path, err)
		}
		for _, p := range doc.Presets {
			byName[p.Name] = p
		}
	}

	out := make([]Preset, 0, len(byName))
	for _, p := range byName {
		out = append(out, p)
	}
	return out, nil
}

// Find returns the named preset from the merged default+file set, or
// an error if no preset by that name exists.
func Find(path, name string) (Preset, error) {
	all, err := Load(path)
	if err != nil {
		return Preset{}, err
	}
	for _, p := range all {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("presets: no preset named %q", name)
}

func tokenFromString(s string) (kernel.Token, error) {
	switch s {
	case "avx2-f32":
		return kernel.TokenAVX2F32, nil
	case "avx2-f64":
		return kernel.TokenAVX2F64, nil
	case "scalar-f32":
		return kernel.TokenScalarF32, nil
	case "scalar-f64":
		return kernel.TokenScalarF64, nil
	default:
		return 0, fmt.Errorf("presets: unknown token %q", s)
	}
}

// ToConfig builds a gemm.Config from the preset, applying its boolean
// overrides (if any) on top of gemm.NewConfig's defaults.
func (p Preset) ToConfig() (gemm.Config, error) {
	token, err := tokenFromString(p.Token)
	if err != nil {
		return gemm.Config{}, err
	}
	cfg := gemm.NewConfig(p.MPerBlock, p.NPerBlock, p.KPerBlock, token)

	switch p.AccessOrder {
	case "", "mnk":
		cfg.AccessOrder = gemm.OrderMNK
	case "mkn":
		cfg.AccessOrder = gemm.OrderMKN
	default:
		return gemm.Config{}, fmt.Errorf("presets: unknown access_order %q", p.AccessOrder)
	}

	if p.UseALocalBuffer != nil {
		cfg.UseALocalBuffer = *p.UseALocalBuffer
	}
	if p.UseBLocalBuffer != nil {
		cfg.UseBLocalBuffer = *p.UseBLocalBuffer
	}
	if p.UseCLocalBuffer != nil {
		cfg.UseCLocalBuffer = *p.UseCLocalBuffer
	}
	if p.Parallel != nil {
		cfg.Parallel = *p.Parallel
	}
	return cfg, nil
}
