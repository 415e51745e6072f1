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

type shiftDir int

const (
	shiftLeft shiftDir = iota
	shiftRight
)

// lowerShiftImm shifts every lane of x by the immediate in immOp, filling
// with zeros. Shifting by the lane width or more yields zero lanes.
func lowerShiftImm(fx FunctionCx, rule Rule, dir shiftDir, x codegen.CValue, immOp codegen.Operand, ret codegen.CPlace) error {
	imm, err := ResolveConstant(fx, immOp, 4)
	if err != nil {
		return err
	}
	_, laneTy, err := LaneCountAndType(x)
	if err != nil {
		return err
	}
	if !laneTy.IsInteger() || laneTy.Bits != rule.Width {
		return fmt.Errorf("%w: %d-bit shift of %s", ErrInvariant, rule.Width, x.Type())
	}
	if !ret.Layout().Ty.Equal(x.Type()) {
		return fmt.Errorf("%w: shift of %s returns %s", ErrInvariant, x.Type(), ret.Layout().Ty)
	}

	return mapLanes(fx, x, ret, func(fx FunctionCx, _ int, _, resLaneTy abi.Type, v ir.Value) (ir.Value, error) {
		if imm >= uint64(rule.Width) {
			return zeroLane(fx, resLaneTy)
		}
		b := fx.Builder()
		if dir == shiftLeft {
			return b.IshlImm(v, int64(imm)), nil
		}
		return b.UshrImm(v, int64(imm)), nil
	})
}
