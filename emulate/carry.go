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

// lowerAddSub computes a op b op cIn and writes (carry out, result) to ret.
//
// The carry out is the OR of the overflow flags of the two checked
// operations; at most one of them can overflow.
func lowerAddSub(fx FunctionCx, rule Rule, op codegen.BinOp, cIn ir.Value, a, b codegen.CValue, ret codegen.CPlace) error {
	var want abi.Type
	switch rule.Width {
	case 64:
		want = abi.U64
	case 32:
		want = abi.U32
	default:
		return fmt.Errorf("%w: %d-bit carry arithmetic", ErrInvariant, rule.Width)
	}
	if !a.Type().Equal(want) || !b.Type().Equal(want) {
		return fmt.Errorf("%w: %s with carry of %s and %s, want %s", ErrInvariant, op, a.Type(), b.Type(), want)
	}
	retTy := abi.Tuple(abi.U8, want)
	if !ret.Layout().Ty.Equal(retTy) {
		return fmt.Errorf("%w: %s with carry returns %s, want %s", ErrInvariant, op, ret.Layout().Ty, retTy)
	}

	bcx := fx.Builder()
	if t := bcx.Func().ValueType(cIn); !t.IsInt() {
		return fmt.Errorf("%w: carry in is %s", ErrInvariant, t)
	}
	wantLayout := fx.LayoutOf(want)
	wantIR, err := laneIRType(want)
	if err != nil {
		return err
	}

	stage1 := codegen.CheckedIntBinop(bcx, op, a, b)
	val, overflow0 := stage1.LoadScalarPair(bcx)

	carry := codegen.IntCast(bcx, cIn, wantIR, false)
	stage2 := codegen.CheckedIntBinop(bcx, op, codegen.ByVal(val, wantLayout), codegen.ByVal(carry, wantLayout))
	res, overflow1 := stage2.LoadScalarPair(bcx)

	cOut := bcx.Bor(overflow0, overflow1)
	ret.WriteCValue(bcx, codegen.ByValPair(cOut, res, fx.LayoutOf(retTy)))
	return nil
}
