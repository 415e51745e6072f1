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

package codegen

import (
	"fmt"

	"github.com/ajroetker/hwyemu/abi"
)

// Const is a compile-time constant scalar.
type Const struct {
	Ty   abi.Type
	Bits uint64
}

// TryToBits returns the bit pattern of the constant if it is exactly size
// bytes wide.
func (c Const) TryToBits(size int) (uint64, bool) {
	if !c.Ty.IsScalar() || abi.LayoutOf(c.Ty).Size != size {
		return 0, false
	}
	return c.Bits, true
}

// String returns a debug representation of the constant.
func (c Const) String() string {
	return fmt.Sprintf("const %s %#x", c.Ty, c.Bits)
}

// Operand is an argument of a call: either a computed value or a
// compile-time constant.
type Operand struct {
	value CValue
	c     *Const
}

// Copy returns an operand holding a computed value.
func Copy(v CValue) Operand {
	return Operand{value: v}
}

// Constant returns an operand holding a compile-time constant.
func Constant(c Const) Operand {
	return Operand{c: &c}
}

// IsConst reports whether the operand is a compile-time constant.
func (op Operand) IsConst() bool {
	return op.c != nil
}

// Type returns the static type of the operand.
func (op Operand) Type() abi.Type {
	if op.c != nil {
		return op.c.Ty
	}
	return op.value.layout.Ty
}
