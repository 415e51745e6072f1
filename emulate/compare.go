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

// CmpKind is the predicate immediate of cmpps/cmppd.
type CmpKind uint8

const (
	CmpEqual          CmpKind = 0
	CmpLessThan       CmpKind = 1
	CmpLessOrEqual    CmpKind = 2
	CmpUnordered      CmpKind = 3
	CmpNotEqual       CmpKind = 4
	CmpNotLessThan    CmpKind = 5
	CmpNotLessOrEqual CmpKind = 6
	CmpOrdered        CmpKind = 7
)

var cmpKindNames = [...]string{
	CmpEqual:          "eq",
	CmpLessThan:       "lt",
	CmpLessOrEqual:    "le",
	CmpUnordered:      "unord",
	CmpNotEqual:       "neq",
	CmpNotLessThan:    "nlt",
	CmpNotLessOrEqual: "nle",
	CmpOrdered:        "ord",
}

// String returns the assembler suffix of the predicate.
func (k CmpKind) String() string {
	if int(k) < len(cmpKindNames) {
		return cmpKindNames[k]
	}
	return fmt.Sprintf("CmpKind(%d)", uint8(k))
}

// decodeCmpKind validates a predicate immediate. Predicates that are not
// lowered yet fail with ErrUnimplemented.
func decodeCmpKind(bits uint64) (CmpKind, error) {
	if bits > uint64(CmpOrdered) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCmpKind, bits)
	}
	k := CmpKind(bits)
	switch k {
	case CmpUnordered, CmpNotLessThan, CmpNotLessOrEqual, CmpOrdered:
		return k, fmt.Errorf("%w: compare predicate %s", ErrUnimplemented, k)
	}
	return k, nil
}

func (k CmpKind) floatCC() ir.FloatCC {
	switch k {
	case CmpLessThan:
		return ir.FloatLessThan
	case CmpLessOrEqual:
		return ir.FloatLessThanOrEqual
	case CmpNotEqual:
		return ir.FloatNotEqual
	default:
		return ir.FloatEqual
	}
}

// lowerComparePacked compares the float lanes of x and y with the predicate
// in kindOp. Each result lane is all ones where the predicate holds and all
// zeros elsewhere.
func lowerComparePacked(fx FunctionCx, x, y codegen.CValue, kindOp codegen.Operand, ret codegen.CPlace) error {
	bits, err := ResolveConstant(fx, kindOp, 1)
	if err != nil {
		return err
	}
	kind, err := decodeCmpKind(bits)
	if err != nil {
		return err
	}
	cc := kind.floatCC()
	return mapLanePairs(fx, x, y, ret, func(fx FunctionCx, _ int, laneTy, resLaneTy abi.Type, a, b ir.Value) (ir.Value, error) {
		if !laneTy.IsFloat() {
			return 0, fmt.Errorf("%w: packed compare of %s lanes", ErrInvariant, laneTy)
		}
		return boolToZeroOrMax(fx, resLaneTy, fx.Builder().Fcmp(cc, a, b))
	})
}
