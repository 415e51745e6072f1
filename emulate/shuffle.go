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

// blockBytes is the size of the 128-bit blocks that pshufb and vperm2i128
// operate on.
const blockBytes = 16

// lowerShuffleBytes implements pshufb: result byte i is zero when bit 7 of
// idx[i] is set and otherwise byte idx[i]&15 of the 128-bit block of tbl
// that contains byte i.
func lowerShuffleBytes(fx FunctionCx, tbl, idx codegen.CValue, ret codegen.CPlace) error {
	n, laneTy, err := LaneCountAndType(tbl)
	if err != nil {
		return err
	}
	if laneTy.Bits != 8 || !laneTy.IsInteger() || n%blockBytes != 0 {
		return fmt.Errorf("%w: byte shuffle of %s", ErrInvariant, tbl.Type())
	}
	if !idx.Type().Equal(tbl.Type()) || !ret.Layout().Ty.Equal(tbl.Type()) {
		return fmt.Errorf("%w: byte shuffle of %s by %s into %s", ErrInvariant, tbl.Type(), idx.Type(), ret.Layout().Ty)
	}

	b := fx.Builder()
	base := tbl.ForceStack(b)
	return mapLanes(fx, idx, ret, func(fx FunctionCx, lane int, _, _ abi.Type, sel ir.Value) (ir.Value, error) {
		b := fx.Builder()
		off := b.Uextend(ir.PointerType, b.Band(sel, b.Iconst(ir.I8, blockBytes-1)))
		addr := b.Iadd(base.Base, off)
		v := b.Load(ir.I8, addr, base.Offset+int64(lane/blockBytes*blockBytes))
		zeroed := b.IcmpImm(ir.IntNotEqual, b.Band(sel, b.Iconst(ir.I8, 0x80)), 0)
		return b.Select(zeroed, b.Iconst(ir.I8, 0), v), nil
	})
}

// lowerPermute128 implements vperm2i128: for each 128-bit half h of the
// result, nibble h of the control selects a.lo, a.hi, b.lo or b.hi, and
// bit 3 of the nibble zeroes the half.
func lowerPermute128(fx FunctionCx, a, b codegen.CValue, ctlOp codegen.Operand, ret codegen.CPlace) error {
	ctl, err := ResolveConstant(fx, ctlOp, 1)
	if err != nil {
		return err
	}
	n, laneTy, err := LaneCountAndType(a)
	if err != nil {
		return err
	}
	if a.Layout().Size != 2*blockBytes || !laneTy.IsInteger() {
		return fmt.Errorf("%w: 128-bit permute of %s", ErrInvariant, a.Type())
	}
	if !b.Type().Equal(a.Type()) || !ret.Layout().Ty.Equal(a.Type()) {
		return fmt.Errorf("%w: 128-bit permute of %s and %s into %s", ErrInvariant, a.Type(), b.Type(), ret.Layout().Ty)
	}

	half := n / 2
	return buildVector(fx, ret, func(i int, resLaneTy abi.Type) (ir.Value, error) {
		sel := (ctl >> (4 * uint(i/half))) & 0xF
		if sel&0x8 != 0 {
			return zeroLane(fx, resLaneTy)
		}
		src := a
		if sel&0x2 != 0 {
			src = b
		}
		return ReadLane(fx, src, int(sel&0x1)*half+i%half)
	})
}
