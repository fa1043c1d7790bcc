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

import "fmt"

// ConfigError reports an incompatible combination of Config fields,
// caught by the validity check before any work begins (spec.md §4.1,
// §7).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "gemm: config error: " + e.Reason }

// AllocError reports that aligned scratch allocation failed. Surfaced
// synchronously; any partial allocations made before the failure are
// released by the caller of the allocating step.
type AllocError struct {
	Reason string
	Err    error
}

func (e *AllocError) Error() string { return fmt.Sprintf("gemm: alloc error: %s: %v", e.Reason, e.Err) }
func (e *AllocError) Unwrap() error { return e.Err }

// ContractViolation reports that A/B/C descriptor lengths are mutually
// inconsistent (A.K != B.K, A.M != C.M, B.N != C.N).
type ContractViolation struct {
	Reason string
}

func (e *ContractViolation) Error() string { return "gemm: contract violation: " + e.Reason }
