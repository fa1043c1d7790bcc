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

// Command gemmbench is a diagnostic and benchmarking tool for the
// blockgemm driver: "info" reports the CPU features Go detects and the
// micro-kernel token they resolve to, "bench" runs gemm.Run over a
// chosen block-size preset and reports achieved GFLOP/s.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gemmbench",
		Short:         "Inspect CPU features and benchmark the blockgemm driver",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newInfoCmd())
	root.AddCommand(newBenchCmd())
	return root
}
