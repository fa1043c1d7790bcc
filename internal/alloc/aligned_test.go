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

package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlignsAndSizes(t *testing.T) {
	buf, err := New[float64](100, DefaultAlignment)
	require.NoError(t, err)
	defer buf.Release()

	s := buf.Slice()
	require.Len(t, s, 100)
	addr := uintptr(unsafe.Pointer(&s[0]))
	assert.Equal(t, uintptr(0), addr%DefaultAlignment)
}

func TestNewZeroAlignmentDefaults(t *testing.T) {
	buf, err := New[float32](16, 0)
	require.NoError(t, err)
	defer buf.Release()
	assert.Len(t, buf.Slice(), 16)
}

func TestNewRejectsNonPowerOfTwoAlignment(t *testing.T) {
	_, err := New[float64](4, 24)
	assert.Error(t, err)
}

func TestNewRejectsNegativeSize(t *testing.T) {
	_, err := New[float64](-1, 32)
	assert.Error(t, err)
}

func TestReleaseIsIdempotent(t *testing.T) {
	buf, err := New[float64](8, 32)
	require.NoError(t, err)
	buf.Release()
	assert.NotPanics(t, func() { buf.Release() })
	assert.Nil(t, buf.Slice())
}
