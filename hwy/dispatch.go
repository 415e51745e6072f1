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

package hwy

import (
	"slices"

	"github.com/xyproto/env/v2"
)

// DispatchLevel represents the best SIMD instruction set of the host.
type DispatchLevel int

const (
	// DispatchScalar indicates no SIMD.
	DispatchScalar DispatchLevel = iota

	// DispatchSSE2 indicates SSE2 instructions (x86-64 baseline).
	DispatchSSE2

	// DispatchAVX2 indicates AVX2 instructions (256-bit SIMD).
	DispatchAVX2

	// DispatchAVX512 indicates AVX-512 instructions (512-bit SIMD).
	DispatchAVX512

	// DispatchNEON indicates ARM NEON instructions (128-bit SIMD).
	DispatchNEON
)

// String returns a human-readable name for the dispatch level.
func (d DispatchLevel) String() string {
	switch d {
	case DispatchScalar:
		return "scalar"
	case DispatchSSE2:
		return "sse2"
	case DispatchAVX2:
		return "avx2"
	case DispatchAVX512:
		return "avx512"
	case DispatchNEON:
		return "neon"
	default:
		return "unknown"
	}
}

// Set by init() in dispatch_*.go files.
var (
	currentLevel DispatchLevel
	currentWidth int

	// features lists the x86 extensions the host supports, by their
	// lower-case names ("sse2", "ssse3", "avx", "avx2", "adx", ...).
	features []string
)

// CurrentLevel returns the best SIMD instruction set of the host.
func CurrentLevel() DispatchLevel {
	return currentLevel
}

// CurrentWidth returns the SIMD register width in bytes.
// For example: 16 for SSE2/NEON, 32 for AVX2, 64 for AVX-512.
func CurrentWidth() int {
	return currentWidth
}

// CurrentName returns a human-readable name for the host SIMD level.
func CurrentName() string {
	return currentLevel.String()
}

// HasFeature reports whether the host supports the named x86 extension.
// It is always false on other architectures and when HWY_NO_SIMD is set.
func HasFeature(name string) bool {
	return slices.Contains(features, name)
}

// Features returns the x86 extensions the host supports.
func Features() []string {
	return slices.Clone(features)
}

// NoSimdEnv checks if the HWY_NO_SIMD environment variable is set.
// When set, the host is reported as scalar regardless of CPU capabilities.
func NoSimdEnv() bool {
	return env.Bool("HWY_NO_SIMD")
}

func setScalarMode() {
	currentLevel = DispatchScalar
	currentWidth = 16 // Use 16-byte vectors even in scalar mode for consistency
	features = nil
}
