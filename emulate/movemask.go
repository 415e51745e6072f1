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

package emulate

import (
	"fmt"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/codegen"
	"github.com/ajroetker/hwyemu/ir"
)

// maxMaskLanes is the number of sign bits that fit in the i32 result.
const maxMaskLanes = 32

// lowerMoveMask packs the sign bit of lane i of a into bit i of an i32.
func lowerMoveMask(fx FunctionCx, a codegen.CValue, ret codegen.CPlace) error {
	n, _, err := LaneCountAndType(a)
	if err != nil {
		return err
	}
	if n > maxMaskLanes {
		return fmt.Errorf("%w: movemask of %d lanes does not fit in 32 bits", ErrInvariant, n)
	}
	retTy := ret.Layout().Ty
	if !retTy.IsInteger() || retTy.Bits != 32 {
		return fmt.Errorf("%w: movemask must return a 32-bit integer, not %s", ErrInvariant, retTy)
	}

	b := fx.Builder()
	res, err := foldLanesDescending(fx, a, b.Iconst(ir.I32, 0), signBitInto)
	if err != nil {
		return err
	}
	ret.WriteCValue(b, codegen.ByVal(res, fx.LayoutOf(retTy)))
	return nil
}

// signBitInto shifts acc left by one and ors in the sign bit of x.
func signBitInto(fx FunctionCx, _ int, laneTy abi.Type, acc, x ir.Value) (ir.Value, error) {
	if !laneTy.IsInteger() && !laneTy.IsFloat() {
		return 0, fmt.Errorf("%w: movemask of %s lanes", ErrInvariant, laneTy)
	}
	it, err := laneIRType(laneTy)
	if err != nil {
		return 0, err
	}
	b := fx.Builder()
	if it.IsFloat() {
		x = b.Bitcast(ir.IntType(it.Bits()), x)
	}
	bit := b.UshrImm(x, int64(it.Bits()-1))
	bit = codegen.IntCast(b, bit, ir.I32, false)
	return b.Bor(b.IshlImm(acc, 1), bit), nil
}
