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

import "math"

// Load creates a vector holding a copy of src.
func Load[T Lanes](src []T) Vec[T] {
	data := make([]T, len(src))
	copy(data, src)
	return Vec[T]{data: data}
}

// LoadBits creates a vector from lane bit patterns. Bits above the lane
// width are ignored.
func LoadBits[T Lanes](bits []uint64) Vec[T] {
	data := make([]T, len(bits))
	for i, b := range bits {
		data[i] = fromBits[T](b)
	}
	return Vec[T]{data: data}
}

// Zero returns a vector of n zero lanes.
func Zero[T Lanes](n int) Vec[T] {
	return Vec[T]{data: make([]T, n)}
}

// Store writes the vector's lanes to dst, which may be shorter.
func Store[T Lanes](v Vec[T], dst []T) {
	copy(dst, v.data)
}

func compare[T Lanes](a, b Vec[T], pred func(x, y T) bool) Mask[T] {
	n := min(len(b.data), len(a.data))
	bits := make([]bool, n)
	for i := range n {
		bits[i] = pred(a.data[i], b.data[i])
	}
	return Mask[T]{bits: bits}
}

// Equal performs element-wise equality comparison. NaN lanes compare false.
func Equal[T Lanes](a, b Vec[T]) Mask[T] {
	return compare(a, b, func(x, y T) bool { return x == y })
}

// NotEqual performs element-wise inequality comparison. NaN lanes compare
// true, matching the unordered not-equal predicate of cmpps.
func NotEqual[T Lanes](a, b Vec[T]) Mask[T] {
	return compare(a, b, func(x, y T) bool { return x != y })
}

// LessThan performs element-wise less-than comparison.
func LessThan[T Lanes](a, b Vec[T]) Mask[T] {
	return compare(a, b, func(x, y T) bool { return x < y })
}

// LessEqual performs element-wise less-than-or-equal comparison.
func LessEqual[T Lanes](a, b Vec[T]) Mask[T] {
	return compare(a, b, func(x, y T) bool { return x <= y })
}

// VecFromMask returns a vector whose active lanes have all bits set and
// whose inactive lanes are zero.
func VecFromMask[T Lanes](m Mask[T]) Vec[T] {
	ones := fromBits[T](math.MaxUint64)
	data := make([]T, len(m.bits))
	for i, bit := range m.bits {
		if bit {
			data[i] = ones
		}
	}
	return Vec[T]{data: data}
}

// ShiftLeftLogical shifts every lane left by count bits. A count of the
// lane width or more yields zero lanes.
func ShiftLeftLogical[T Integers](v Vec[T], count uint64) Vec[T] {
	w := uint64(laneBits[T]())
	out := make([]T, len(v.data))
	for i, x := range v.data {
		if count < w {
			out[i] = fromBits[T](bitsOf(x) << count)
		}
	}
	return Vec[T]{data: out}
}

// ShiftRightLogical shifts every lane right by count bits, filling with
// zeros regardless of the signedness of T. A count of the lane width or more
// yields zero lanes.
func ShiftRightLogical[T Integers](v Vec[T], count uint64) Vec[T] {
	w := uint64(laneBits[T]())
	out := make([]T, len(v.data))
	for i, x := range v.data {
		if count < w {
			out[i] = fromBits[T](bitsOf(x) >> count)
		}
	}
	return Vec[T]{data: out}
}

// SignMask returns the mask of lanes whose sign bit is set. For floats this
// includes -0.0 and negative NaNs.
func SignMask[T Lanes](v Vec[T]) Mask[T] {
	shift := laneBits[T]() - 1
	bits := make([]bool, len(v.data))
	for i, x := range v.data {
		bits[i] = bitsOf(x)>>shift != 0
	}
	return Mask[T]{bits: bits}
}

// BitsFromMask packs lane i of the mask into bit i of the result. Lanes
// beyond 64 are dropped.
func BitsFromMask[T Lanes](m Mask[T]) uint64 {
	var out uint64
	for i, bit := range m.bits {
		if bit && i < 64 {
			out |= 1 << i
		}
	}
	return out
}

// MoveMask returns the sign bits of v packed into an int32, as pmovmskb and
// movmskps do. Vectors of more than 32 lanes keep the first 32.
func MoveMask[T Lanes](v Vec[T]) int32 {
	return int32(uint32(BitsFromMask(SignMask(v))))
}

// bitsOf returns the bit pattern of x zero-extended to 64 bits.
func bitsOf[T Lanes](x T) uint64 {
	switch v := any(x).(type) {
	case float32:
		return uint64(math.Float32bits(v))
	case float64:
		return math.Float64bits(v)
	case int8:
		return uint64(uint8(v))
	case int16:
		return uint64(uint16(v))
	case int32:
		return uint64(uint32(v))
	case int64:
		return uint64(v)
	case uint8:
		return uint64(v)
	case uint16:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	default:
		return 0
	}
}

// fromBits returns the lane of type T whose bit pattern is the low bits of b.
func fromBits[T Lanes](b uint64) T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(math.Float32frombits(uint32(b))).(T)
	case float64:
		return any(math.Float64frombits(b)).(T)
	case int8:
		return any(int8(b)).(T)
	case int16:
		return any(int16(b)).(T)
	case int32:
		return any(int32(b)).(T)
	case int64:
		return any(int64(b)).(T)
	case uint8:
		return any(uint8(b)).(T)
	case uint16:
		return any(uint16(b)).(T)
	case uint32:
		return any(uint32(b)).(T)
	case uint64:
		return any(b).(T)
	default:
		return zero
	}
}
