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

// LaneCountAndType returns the number of lanes of a vector value and the
// type of each lane. Only the static type is consulted.
func LaneCountAndType(v codegen.CValue) (int, abi.Type, error) {
	n, elem, ok := v.Type().SimdSizeAndType()
	if !ok {
		return 0, abi.Type{}, fmt.Errorf("%w: %s is not a vector", ErrInvariant, v.Type())
	}
	return n, elem, nil
}

// ReadLane loads lane i of a vector value.
func ReadLane(fx FunctionCx, v codegen.CValue, i int) (ir.Value, error) {
	n, _, err := LaneCountAndType(v)
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: lane %d of %s", ErrInvariant, i, v.Type())
	}
	b := fx.Builder()
	return v.ValueField(b, i).LoadScalar(b), nil
}

// LaneFunc computes output lane `lane` from input lane x. laneTy is the
// input lane type and resLaneTy the output lane type.
type LaneFunc func(fx FunctionCx, lane int, laneTy, resLaneTy abi.Type, x ir.Value) (ir.Value, error)

// LanePairFunc computes output lane `lane` from the lanes x and y of two
// inputs of the same lane type.
type LanePairFunc func(fx FunctionCx, lane int, laneTy, resLaneTy abi.Type, x, y ir.Value) (ir.Value, error)

// FoldFunc combines lane x into the accumulator acc.
type FoldFunc func(fx FunctionCx, lane int, laneTy abi.Type, acc, x ir.Value) (ir.Value, error)

// buildVector fills ret lane by lane, in ascending order. Lanes are assembled
// in a fresh temporary which is then written to ret, so ret is written once
// and may alias the inputs.
func buildVector(fx FunctionCx, ret codegen.CPlace, lane func(i int, resLaneTy abi.Type) (ir.Value, error)) error {
	n, resLaneTy, ok := ret.Layout().Ty.SimdSizeAndType()
	if !ok {
		return fmt.Errorf("%w: result %s is not a vector", ErrInvariant, ret.Layout().Ty)
	}
	b := fx.Builder()
	laneLayout := fx.LayoutOf(resLaneTy)
	tmp := codegen.NewStackSlotPlace(b, ret.Layout())
	for i := range n {
		v, err := lane(i, resLaneTy)
		if err != nil {
			return err
		}
		tmp.PlaceField(i).WriteCValue(b, codegen.ByVal(v, laneLayout))
	}
	ret.WriteCValue(b, tmp.ToCValue())
	return nil
}

// mapLanes applies f to every lane of x and writes the results to ret, which
// must have the same number of lanes.
func mapLanes(fx FunctionCx, x codegen.CValue, ret codegen.CPlace, f LaneFunc) error {
	n, laneTy, err := LaneCountAndType(x)
	if err != nil {
		return err
	}
	if rn, _, _ := ret.Layout().Ty.SimdSizeAndType(); rn != n {
		return fmt.Errorf("%w: %s mapped into %s", ErrInvariant, x.Type(), ret.Layout().Ty)
	}
	return buildVector(fx, ret, func(i int, resLaneTy abi.Type) (ir.Value, error) {
		v, err := ReadLane(fx, x, i)
		if err != nil {
			return 0, err
		}
		return f(fx, i, laneTy, resLaneTy, v)
	})
}

// mapLanePairs applies f to every pair of lanes of x and y and writes the
// results to ret. x, y and ret must have the same number of lanes and x and
// y the same lane type.
func mapLanePairs(fx FunctionCx, x, y codegen.CValue, ret codegen.CPlace, f LanePairFunc) error {
	n, laneTy, err := LaneCountAndType(x)
	if err != nil {
		return err
	}
	yn, yLaneTy, err := LaneCountAndType(y)
	if err != nil {
		return err
	}
	if yn != n || !yLaneTy.Equal(laneTy) {
		return fmt.Errorf("%w: lanes of %s and %s differ", ErrInvariant, x.Type(), y.Type())
	}
	if rn, _, _ := ret.Layout().Ty.SimdSizeAndType(); rn != n {
		return fmt.Errorf("%w: %s mapped into %s", ErrInvariant, x.Type(), ret.Layout().Ty)
	}
	return buildVector(fx, ret, func(i int, resLaneTy abi.Type) (ir.Value, error) {
		xv, err := ReadLane(fx, x, i)
		if err != nil {
			return 0, err
		}
		yv, err := ReadLane(fx, y, i)
		if err != nil {
			return 0, err
		}
		return f(fx, i, laneTy, resLaneTy, xv, yv)
	})
}

// foldLanesDescending combines the lanes of x into init, visiting the
// highest lane first so that lane 0 is combined last.
func foldLanesDescending(fx FunctionCx, x codegen.CValue, init ir.Value, f FoldFunc) (ir.Value, error) {
	n, laneTy, err := LaneCountAndType(x)
	if err != nil {
		return 0, err
	}
	acc := init
	for i := n - 1; i >= 0; i-- {
		v, err := ReadLane(fx, x, i)
		if err != nil {
			return 0, err
		}
		if acc, err = f(fx, i, laneTy, acc, v); err != nil {
			return 0, err
		}
	}
	return acc, nil
}

// laneIRType returns the IR type of a scalar lane type.
func laneIRType(t abi.Type) (ir.Type, error) {
	it, ok := t.IRType()
	if !ok {
		return ir.TypeInvalid, fmt.Errorf("%w: lane type %s", ErrInvariant, t)
	}
	return it, nil
}

// boolToZeroOrMax turns the i8 condition c into a lane of type t that is
// all ones when c is set and all zeros otherwise.
func boolToZeroOrMax(fx FunctionCx, t abi.Type, c ir.Value) (ir.Value, error) {
	it, err := laneIRType(t)
	if err != nil {
		return 0, err
	}
	b := fx.Builder()
	intTy := ir.IntType(it.Bits())
	res := b.Select(c, b.Iconst(intTy, -1), b.Iconst(intTy, 0))
	if it.IsFloat() {
		res = b.Bitcast(it, res)
	}
	return res, nil
}

// zeroLane returns the all-zero lane of type t.
func zeroLane(fx FunctionCx, t abi.Type) (ir.Value, error) {
	it, err := laneIRType(t)
	if err != nil {
		return 0, err
	}
	b := fx.Builder()
	z := b.Iconst(ir.IntType(it.Bits()), 0)
	if it.IsFloat() {
		z = b.Bitcast(it, z)
	}
	return z, nil
}
