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

import "math/bits"

// AddWithCarry returns a + b + carryIn and the carry out, as ADC does.
// carryIn is zero-extended, so values other than 0 and 1 are added in full.
func AddWithCarry(carryIn uint8, a, b uint64) (carryOut uint8, sum uint64) {
	s, c0 := bits.Add64(a, b, 0)
	s, c1 := bits.Add64(s, uint64(carryIn), 0)
	return uint8(c0 | c1), s
}

// SubWithBorrow returns a - b - borrowIn and the borrow out, as SBB does.
func SubWithBorrow(borrowIn uint8, a, b uint64) (borrowOut uint8, diff uint64) {
	d, b0 := bits.Sub64(a, b, 0)
	d, b1 := bits.Sub64(d, uint64(borrowIn), 0)
	return uint8(b0 | b1), d
}

// AddWithCarry32 is AddWithCarry on 32-bit operands.
func AddWithCarry32(carryIn uint8, a, b uint32) (carryOut uint8, sum uint32) {
	s, c0 := bits.Add32(a, b, 0)
	s, c1 := bits.Add32(s, uint32(carryIn), 0)
	return uint8(c0 | c1), s
}

// SubWithBorrow32 is SubWithBorrow on 32-bit operands.
func SubWithBorrow32(borrowIn uint8, a, b uint32) (borrowOut uint8, diff uint32) {
	d, b0 := bits.Sub32(a, b, 0)
	d, b1 := bits.Sub32(d, uint32(borrowIn), 0)
	return uint8(b0 | b1), d
}
