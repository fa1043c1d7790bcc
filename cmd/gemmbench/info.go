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
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sys/cpu"

	"github.com/ajroetker/blockgemm/internal/kernel"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print detected CPU features and the resolved micro-kernel token",
		RunE: func(cmd *cobra.Command, args []string) error {
			printInfo(cmd)
			return nil
		},
	}
}

func printInfo(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "GOOS: %s\n", runtime.GOOS)
	fmt.Fprintf(out, "GOARCH: %s\n", runtime.GOARCH)
	fmt.Fprintf(out, "NumCPU: %d\n", runtime.NumCPU())
	fmt.Fprintln(out)

	switch runtime.GOARCH {
	case "arm64":
		printARM64Features(out)
	case "amd64":
		printAMD64Features(out)
	}

	fmt.Fprintln(out)
	for _, token := range []kernel.Token{kernel.TokenAVX2F32, kernel.TokenAVX2F64, kernel.TokenScalarF32, kernel.TokenScalarF64} {
		steps := kernel.StepsFor(token)
		fmt.Fprintf(out, "token %-10s mc_step=%-3d nc_step=%-3d kc_step=%-3d min_vector_a=%-3d min_vector_b=%-3d\n",
			token, steps.MCStep, steps.NCStep, steps.KCStep, steps.MinVectorA, steps.MinVectorB)
	}
	fmt.Fprintf(out, "\nrecommended token for this machine: %s\n", recommendedToken())
}

// recommendedToken picks the best micro-kernel token for the running
// process without touching any fused-multiply or dispatch machinery —
// just the same AVX2 feature bit the reference micro-kernels are named
// after (kernel.TokenAVX2F32/F64 model 256-bit lanes, not a specific
// generated kernel, so detecting AVX2 is sufficient here).
func recommendedToken() kernel.Token {
	if runtime.GOARCH == "amd64" && cpu.X86.HasAVX2 {
		return kernel.TokenAVX2F64
	}
	return kernel.TokenScalarF64
}

func printARM64Features(out interface{ Write([]byte) (int, error) }) {
	fmt.Fprintln(out, "=== golang.org/x/sys/cpu.ARM64 ===")
	fmt.Fprintf(out, "  HasASIMD:    %v (NEON baseline)\n", cpu.ARM64.HasASIMD)
	fmt.Fprintf(out, "  HasFP:       %v (Floating point)\n", cpu.ARM64.HasFP)
	fmt.Fprintf(out, "  HasFPHP:     %v (FP16 scalar, ARMv8.2-A)\n", cpu.ARM64.HasFPHP)
	fmt.Fprintf(out, "  HasASIMDHP:  %v (FP16 NEON, ARMv8.2-A)\n", cpu.ARM64.HasASIMDHP)
	fmt.Fprintf(out, "  HasASIMDFHM: %v (FP16 FMA, ARMv8.4-A)\n", cpu.ARM64.HasASIMDFHM)
	fmt.Fprintf(out, "  HasSVE:      %v (Scalable Vector Extension)\n", cpu.ARM64.HasSVE)
	fmt.Fprintf(out, "  HasSVE2:     %v (SVE2)\n", cpu.ARM64.HasSVE2)
	fmt.Fprintf(out, "  HasAES:      %v\n", cpu.ARM64.HasAES)
	fmt.Fprintf(out, "  HasCRC32:    %v\n", cpu.ARM64.HasCRC32)
	fmt.Fprintf(out, "  HasATOMICS:  %v (Large System Extensions)\n", cpu.ARM64.HasATOMICS)
}

func printAMD64Features(out interface{ Write([]byte) (int, error) }) {
	fmt.Fprintln(out, "=== golang.org/x/sys/cpu.X86 ===")
	fmt.Fprintf(out, "  HasAVX:      %v\n", cpu.X86.HasAVX)
	fmt.Fprintf(out, "  HasAVX2:     %v\n", cpu.X86.HasAVX2)
	fmt.Fprintf(out, "  HasAVX512F:  %v\n", cpu.X86.HasAVX512F)
	fmt.Fprintf(out, "  HasAVX512BW: %v\n", cpu.X86.HasAVX512BW)
	fmt.Fprintf(out, "  HasAVX512VL: %v\n", cpu.X86.HasAVX512VL)
	fmt.Fprintf(out, "  HasFMA:      %v\n", cpu.X86.HasFMA)
	fmt.Fprintf(out, "  HasSSE41:    %v\n", cpu.X86.HasSSE41)
	fmt.Fprintf(out, "  HasSSE42:    %v\n", cpu.X86.HasSSE42)
}
