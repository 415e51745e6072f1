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

// Package hwy is a portable scalar model of the x86 vector operations that
// the emulate package lowers. It serves as the reference the lowered IR is
// checked against, and reports the SIMD level of the host.
//
// Basic usage:
//
//	a := hwy.Load([]float32{-1, 2, 3, -4})
//	bits := hwy.MoveMask(a) // 0b1001
//
// Vectors may have any number of lanes; operations that work on 128-bit
// blocks require a whole number of blocks.
package hwy

import "unsafe"

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// SignedInts is a constraint for signed integer types.
type SignedInts interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// UnsignedInts is a constraint for unsigned integer types.
type UnsignedInts interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integers is a constraint for all integer types.
type Integers interface {
	SignedInts | UnsignedInts
}

// Lanes is a constraint for all types that can be stored in SIMD lanes.
type Lanes interface {
	Floats | Integers
}

// Vec is a vector of lanes of type T.
//
// Vec instances should not be created directly; use Load, LoadBits or Zero.
type Vec[T Lanes] struct {
	data []T
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return len(v.data)
}

// Data returns the lanes of the vector.
func (v Vec[T]) Data() []T {
	return v.data
}

// Bits returns the bit pattern of every lane, zero-extended to 64 bits.
func (v Vec[T]) Bits() []uint64 {
	out := make([]uint64, len(v.data))
	for i, x := range v.data {
		out[i] = bitsOf(x)
	}
	return out
}

// Mask is the result of a lane-wise comparison.
type Mask[T Lanes] struct {
	// bits[i] is set if lane i is active.
	bits []bool
}

// NumLanes returns the number of lanes in this mask.
func (m Mask[T]) NumLanes() int {
	return len(m.bits)
}

// GetBit returns whether lane i is active.
func (m Mask[T]) GetBit(i int) bool {
	if i < 0 || i >= len(m.bits) {
		return false
	}
	return m.bits[i]
}

// CountTrue returns the number of active lanes in the mask.
func (m Mask[T]) CountTrue() int {
	count := 0
	for _, bit := range m.bits {
		if bit {
			count++
		}
	}
	return count
}

// laneBits returns the width of T in bits.
func laneBits[T Lanes]() int {
	var dummy T
	return int(unsafe.Sizeof(dummy)) * 8
}
