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
	"github.com/ajroetker/hwyemu/ir"
)

// BinOp is an integer binary operation.
type BinOp int

const (
	BinOpAdd BinOp = iota
	BinOpSub
)

// String returns the textual name of the operation.
func (op BinOp) String() string {
	switch op {
	case BinOpAdd:
		return "add"
	case BinOpSub:
		return "sub"
	default:
		return fmt.Sprintf("BinOp(%d)", int(op))
	}
}

// CheckedIntBinop computes lhs op rhs on unsigned integers and returns the
// pair (result, overflowed) typed as (T, bool).
//
// Overflow of an addition is detected as result < lhs, borrow of a
// subtraction as result > lhs.
func CheckedIntBinop(b *ir.Builder, op BinOp, lhs, rhs CValue) CValue {
	ty := lhs.Type()
	if !ty.Equal(rhs.Type()) || ty.Kind != abi.KindUint {
		panic(fmt.Sprintf("codegen: checked %s of %s and %s", op, ty, rhs.Type()))
	}
	x := lhs.LoadScalar(b)
	y := rhs.LoadScalar(b)

	var val, overflow ir.Value
	switch op {
	case BinOpAdd:
		val = b.Iadd(x, y)
		overflow = b.Icmp(ir.IntUnsignedLessThan, val, x)
	case BinOpSub:
		val = b.Isub(x, y)
		overflow = b.Icmp(ir.IntUnsignedGreaterThan, val, x)
	default:
		panic(fmt.Sprintf("codegen: checked %s", op))
	}
	return ByValPair(val, overflow, abi.LayoutOf(abi.Tuple(ty, abi.Bool)))
}

// IntCast converts the integer x to type to, extending or truncating as
// needed.
func IntCast(b *ir.Builder, x ir.Value, to ir.Type, signed bool) ir.Value {
	from := b.Func().ValueType(x)
	switch {
	case from == to:
		return x
	case from.Bits() < to.Bits():
		if signed {
			return b.Sextend(to, x)
		}
		return b.Uextend(to, x)
	default:
		return b.Ireduce(to, x)
	}
}
