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

package casefile

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/emulate"
	"github.com/ajroetker/hwyemu/hwy"
)

// Reference computes the outcome of the case with the hwy scalar model.
// Unsupported intrinsics are expected to trap.
func (c *Case) Reference(engine *emulate.Engine) (*Outcome, error) {
	rule := engine.Lookup(c.Intrinsic)
	if rule.Intrinsic == emulate.IntrinsicUnsupported {
		return &Outcome{Trap: "unimplemented"}, nil
	}
	if len(c.Args) != len(rule.Intrinsic.Signature()) {
		return nil, fmt.Errorf("%s takes %d arguments", c.Intrinsic, len(rule.Intrinsic.Signature()))
	}
	arg := func(i int) Arg { return c.Args[i] }

	switch rule.Intrinsic {
	case emulate.IntrinsicMoveMask:
		_, elem, _ := arg(0).Type.SimdSizeAndType()
		m, err := moveMask(elem, arg(0).Bits)
		return &Outcome{Fields: []uint64{uint64(uint32(m))}}, err

	case emulate.IntrinsicComparePacked:
		_, elem, _ := arg(0).Type.SimdSizeAndType()
		lanes, err := comparePacked(elem, arg(0).Bits, arg(1).Bits, arg(2).Bits[0])
		return &Outcome{Lanes: lanes}, err

	case emulate.IntrinsicShiftLeftImm, emulate.IntrinsicShiftRightImm:
		left := rule.Intrinsic == emulate.IntrinsicShiftLeftImm
		lanes, err := shiftLogical(rule.Width, arg(0).Bits, arg(1).Bits[0], left)
		return &Outcome{Lanes: lanes}, err

	case emulate.IntrinsicStoreUnaligned:
		if arg(0).Kind != ArgPtr {
			return nil, fmt.Errorf("store address must be a ptr argument")
		}
		_, elem, _ := arg(1).Type.SimdSizeAndType()
		mem := make([]byte, arg(0).Size)
		copy(mem, encodeLanes(elem, arg(1).Bits))
		return &Outcome{Mem: mem}, nil

	case emulate.IntrinsicAddCarry, emulate.IntrinsicSubBorrow:
		return carry(rule, arg(0).Bits[0], arg(1).Bits[0], arg(2).Bits[0])

	case emulate.IntrinsicShuffleBytes:
		tbl := hwy.LoadBits[uint8](arg(0).Bits)
		idx := hwy.LoadBits[uint8](arg(1).Bits)
		return &Outcome{Lanes: hwy.TableLookupBytes(tbl, idx).Bits()}, nil

	case emulate.IntrinsicPermute128:
		_, elem, _ := arg(0).Type.SimdSizeAndType()
		lanes, err := permute(elem, arg(0).Bits, arg(1).Bits, uint8(arg(2).Bits[0]))
		return &Outcome{Lanes: lanes}, err
	}
	return nil, fmt.Errorf("no reference for %s", rule.Intrinsic)
}

func moveMask(elem abi.Type, lanes []uint64) (int32, error) {
	switch {
	case elem.IsFloat() && elem.Bits == 32:
		return hwy.MoveMask(hwy.LoadBits[float32](lanes)), nil
	case elem.IsFloat() && elem.Bits == 64:
		return hwy.MoveMask(hwy.LoadBits[float64](lanes)), nil
	case elem.IsInteger():
		switch elem.Bits {
		case 8:
			return hwy.MoveMask(hwy.LoadBits[uint8](lanes)), nil
		case 16:
			return hwy.MoveMask(hwy.LoadBits[uint16](lanes)), nil
		case 32:
			return hwy.MoveMask(hwy.LoadBits[uint32](lanes)), nil
		case 64:
			return hwy.MoveMask(hwy.LoadBits[uint64](lanes)), nil
		}
	}
	return 0, fmt.Errorf("movemask of %s lanes", elem)
}

func comparePacked(elem abi.Type, a, b []uint64, kind uint64) ([]uint64, error) {
	switch {
	case elem.IsFloat() && elem.Bits == 32:
		return compareVec(hwy.LoadBits[float32](a), hwy.LoadBits[float32](b), kind)
	case elem.IsFloat() && elem.Bits == 64:
		return compareVec(hwy.LoadBits[float64](a), hwy.LoadBits[float64](b), kind)
	}
	return nil, fmt.Errorf("packed compare of %s lanes", elem)
}

func compareVec[T hwy.Floats](a, b hwy.Vec[T], kind uint64) ([]uint64, error) {
	preds := map[emulate.CmpKind]func(a, b hwy.Vec[T]) hwy.Mask[T]{
		emulate.CmpEqual:       hwy.Equal[T],
		emulate.CmpLessThan:    hwy.LessThan[T],
		emulate.CmpLessOrEqual: hwy.LessEqual[T],
		emulate.CmpNotEqual:    hwy.NotEqual[T],
	}
	if kind > 0xFF {
		return nil, fmt.Errorf("compare predicate %d has no reference", kind)
	}
	pred, ok := preds[emulate.CmpKind(kind)]
	if !ok {
		return nil, fmt.Errorf("compare predicate %d has no reference", kind)
	}
	return hwy.VecFromMask(pred(a, b)).Bits(), nil
}

func shiftLogical(width int, lanes []uint64, count uint64, left bool) ([]uint64, error) {
	switch width {
	case 16:
		return shiftVec[uint16](lanes, count, left), nil
	case 32:
		return shiftVec[uint32](lanes, count, left), nil
	case 64:
		return shiftVec[uint64](lanes, count, left), nil
	}
	return nil, fmt.Errorf("%d-bit shift", width)
}

func shiftVec[T hwy.UnsignedInts](lanes []uint64, count uint64, left bool) []uint64 {
	v := hwy.LoadBits[T](lanes)
	if left {
		return hwy.ShiftLeftLogical(v, count).Bits()
	}
	return hwy.ShiftRightLogical(v, count).Bits()
}

func carry(rule emulate.Rule, cIn, a, b uint64) (*Outcome, error) {
	var cOut uint8
	var res uint64
	switch {
	case rule.Width == 64 && rule.Intrinsic == emulate.IntrinsicAddCarry:
		cOut, res = hwy.AddWithCarry(uint8(cIn), a, b)
	case rule.Width == 64:
		cOut, res = hwy.SubWithBorrow(uint8(cIn), a, b)
	case rule.Width == 32 && rule.Intrinsic == emulate.IntrinsicAddCarry:
		var r uint32
		cOut, r = hwy.AddWithCarry32(uint8(cIn), uint32(a), uint32(b))
		res = uint64(r)
	case rule.Width == 32:
		var r uint32
		cOut, r = hwy.SubWithBorrow32(uint8(cIn), uint32(a), uint32(b))
		res = uint64(r)
	default:
		return nil, fmt.Errorf("%d-bit carry arithmetic", rule.Width)
	}
	return &Outcome{Fields: []uint64{uint64(cOut), res}}, nil
}

func permute(elem abi.Type, a, b []uint64, ctl uint8) ([]uint64, error) {
	if !elem.IsInteger() {
		return nil, fmt.Errorf("128-bit permute of %s lanes", elem)
	}
	switch elem.Bits {
	case 8:
		return hwy.Permute2Blocks(hwy.LoadBits[uint8](a), hwy.LoadBits[uint8](b), ctl).Bits(), nil
	case 16:
		return hwy.Permute2Blocks(hwy.LoadBits[uint16](a), hwy.LoadBits[uint16](b), ctl).Bits(), nil
	case 32:
		return hwy.Permute2Blocks(hwy.LoadBits[uint32](a), hwy.LoadBits[uint32](b), ctl).Bits(), nil
	case 64:
		return hwy.Permute2Blocks(hwy.LoadBits[uint64](a), hwy.LoadBits[uint64](b), ctl).Bits(), nil
	}
	return nil, fmt.Errorf("128-bit permute of %s lanes", elem)
}

// Names returns the intrinsic names used by the cases, without duplicates.
func Names(cases []*Case) []string {
	return lo.Uniq(lo.Map(cases, func(c *Case, _ int) string { return c.Intrinsic }))
}
