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

// blockBytes is the size of a 128-bit block.
const blockBytes = 16

// TableLookupBytes performs a byte-level table lookup within each 128-bit
// block, as PSHUFB does. Result byte i is zero when bit 7 of idx[i] is set,
// and otherwise byte idx[i]&15 of the block of tbl that contains byte i.
func TableLookupBytes[T ~uint8 | ~int8](tbl, idx Vec[T]) Vec[T] {
	n := min(len(tbl.data), len(idx.data))
	result := make([]T, n)
	for i := range n {
		sel := uint8(idx.data[i])
		if sel&0x80 != 0 {
			continue
		}
		src := i/blockBytes*blockBytes + int(sel&0x0F)
		if src < len(tbl.data) {
			result[i] = tbl.data[src]
		}
	}
	return Vec[T]{data: result}
}

// Permute2Blocks selects the 128-bit halves of a 256-bit result from the
// halves of a and b, as VPERM2I128 does. For result half h, bits 4h..4h+1 of
// ctl pick a.lo, a.hi, b.lo or b.hi, and bit 4h+3 zeroes the half.
func Permute2Blocks[T Integers](a, b Vec[T], ctl uint8) Vec[T] {
	n := len(a.data)
	half := n / 2
	result := make([]T, n)
	for h := range 2 {
		sel := ctl >> (4 * h) & 0x0F
		if sel&0x08 != 0 {
			continue
		}
		src := a.data
		if sel&0x02 != 0 {
			src = b.data
		}
		from := int(sel&0x01) * half
		copy(result[h*half:(h+1)*half], src[from:from+half])
	}
	return Vec[T]{data: result}
}
