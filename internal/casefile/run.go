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
	"errors"
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/codegen"
	"github.com/ajroetker/hwyemu/emulate"
	"github.com/ajroetker/hwyemu/ir"
)

// returnBlock is the source block the call continues to.
const returnBlock codegen.BlockID = 1

// Outcome is the observable result of running a lowered call.
type Outcome struct {
	// Trap is the trap code if the call trapped.
	Trap string

	// Lanes is a vector result.
	Lanes []uint64

	// Fields is a scalar result (one field) or a pair (two fields).
	Fields []uint64

	// Mem is the content of the first ptr argument after the call.
	Mem []byte
}

// Lowered is a case whose call has been lowered into a function.
type Lowered struct {
	Case *Case
	Func *ir.Func

	// Diagnostics are the warnings emitted while lowering.
	Diagnostics []string
}

// Lower builds a function taking the case's non-constant arguments (and a
// pointer to the result, if any) and lowers the call into it.
func (c *Case) Lower(engine *emulate.Engine, opts ...codegen.Option) (*Lowered, error) {
	fx := codegen.NewFunctionCx(funcName(c.Intrinsic), opts...)

	ops := make([]codegen.Operand, len(c.Args))
	for i, a := range c.Args {
		switch a.Kind {
		case ArgConst:
			ops[i] = codegen.Constant(codegen.Const{Ty: a.Type, Bits: a.Bits[0]})
		default:
			ops[i] = codegen.Copy(fx.Param(a.Type))
		}
	}

	call := emulate.Call{Name: c.Intrinsic, Args: ops}
	if !c.Diverging {
		dest := emulate.Destination{Target: returnBlock}
		if abi.LayoutOf(c.Ret).Size > 0 {
			dest.Place = fx.ParamPlace(c.Ret)
		} else {
			dest.Place = codegen.PlaceForPtr(codegen.Pointer{}, abi.LayoutOf(c.Ret))
		}
		call.Dest = &dest
	}

	if err := engine.LowerCall(fx, call); err != nil {
		return nil, err
	}
	bcx := fx.Builder()
	bcx.SwitchToBlock(fx.Block(returnBlock))
	bcx.Return()

	return &Lowered{Case: c, Func: fx.Func(), Diagnostics: fx.Diagnostics()}, nil
}

func funcName(intrinsic string) string {
	return strings.NewReplacer("llvm.x86.", "", ".", "_").Replace(intrinsic)
}

// Run executes the lowered function on fresh memory and collects the outcome.
func (l *Lowered) Run() (*Outcome, error) {
	c := l.Case
	mem := ir.NewMemory()

	var args []uint64
	var scratch uint64
	var scratchSize int
	for _, a := range c.Args {
		switch a.Kind {
		case ArgConst:
		case ArgScalar:
			args = append(args, a.Bits[0])
		case ArgVec:
			layout := abi.LayoutOf(a.Type)
			addr := mem.Alloc(layout.Size, layout.Align)
			_, elem, _ := a.Type.SimdSizeAndType()
			if err := mem.Write(addr, encodeLanes(elem, a.Bits)); err != nil {
				return nil, err
			}
			args = append(args, addr)
		case ArgPtr:
			addr := mem.Alloc(a.Size, 1)
			if scratchSize == 0 {
				scratch, scratchSize = addr, a.Size
			}
			args = append(args, addr)
		}
	}
	retLayout := abi.LayoutOf(c.Ret)
	var retAddr uint64
	if retLayout.Size > 0 {
		retAddr = mem.Alloc(retLayout.Size, retLayout.Align)
		args = append(args, retAddr)
	}

	var out Outcome
	err := ir.Run(l.Func, mem, args...)
	var trap *ir.TrapError
	if errors.As(err, &trap) {
		out.Trap = trap.Code.String()
		return &out, nil
	}
	if err != nil {
		return nil, err
	}

	if scratchSize > 0 {
		b, err := mem.Read(scratch, scratchSize)
		if err != nil {
			return nil, err
		}
		out.Mem = b
	}
	if retLayout.Size == 0 {
		return &out, nil
	}
	data, err := mem.Read(retAddr, retLayout.Size)
	if err != nil {
		return nil, err
	}
	switch c.Ret.Kind {
	case abi.KindSimd:
		_, elem, _ := c.Ret.SimdSizeAndType()
		out.Lanes = decodeLanes(elem, data)
	case abi.KindTuple:
		for i := range c.Ret.Fields {
			field, off := retLayout.Field(i)
			out.Fields = append(out.Fields, decodeLanes(field.Ty, data[off:off+field.Size])[0])
		}
	default:
		out.Fields = decodeLanes(c.Ret, data)
	}
	return &out, nil
}

// Check compares got with the case's expected outcome. A case without a
// want file accepts any outcome. Memory is only compared when the case
// expects it.
func (c *Case) Check(got *Outcome) error {
	if c.Want == nil {
		return nil
	}
	return Compare(c.Want, got)
}

// Compare returns an error describing the differences between want and got.
func Compare(want, got *Outcome) error {
	opts := []cmp.Option{cmpopts.EquateEmpty()}
	if len(want.Mem) == 0 {
		opts = append(opts, cmpopts.IgnoreFields(Outcome{}, "Mem"))
	}
	if diff := cmp.Diff(want, got, opts...); diff != "" {
		return fmt.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	return nil
}

// CheckIR compares the listing of the lowered function with the case's ir
// file, if any.
func (l *Lowered) CheckIR() error {
	if l.Case.IR == "" {
		return nil
	}
	want := strings.TrimSpace(l.Case.IR)
	got := strings.TrimSpace(l.Func.String())
	if diff := cmp.Diff(want, got); diff != "" {
		return fmt.Errorf("ir mismatch (-want +got):\n%s", diff)
	}
	return nil
}
