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

package ir

import (
	"errors"
	"fmt"
	"slices"
)

// Verify checks every block of f. It returns all violations joined into a
// single error, or nil.
func Verify(f *Func) error {
	var errs []error
	for _, b := range f.Blocks {
		if err := VerifyBlock(f, b); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// VerifyBlock checks that b ends in exactly one terminator, that every
// operand is defined before it is used, and that operand types agree with
// each instruction's typing rule.
func VerifyBlock(f *Func, b *Block) error {
	var errs []error
	report := func(inst *Inst, format string, args ...any) {
		errs = append(errs, fmt.Errorf("%s: %s: %s", b.Name(), inst, fmt.Sprintf(format, args...)))
	}

	if len(b.Insts) == 0 {
		return fmt.Errorf("%s: empty block", b.Name())
	}

	// Values defined by earlier blocks and parameters are visible everywhere;
	// values defined in b are visible only after their definition.
	local := make(map[Value]bool)
	laterInBlock := make(map[Value]bool)
	for _, inst := range b.Insts {
		if inst.Result != 0 {
			laterInBlock[inst.Result] = true
		}
	}

	for i, inst := range b.Insts {
		last := i == len(b.Insts)-1
		if inst.Op.IsTerminator() && !last {
			report(inst, "terminator in the middle of the block")
		}
		if last && !inst.Op.IsTerminator() {
			report(inst, "block does not end in a terminator")
		}

		for _, arg := range inst.Args {
			if f.ValueType(arg) == TypeInvalid {
				report(inst, "use of undefined value %s", arg)
			} else if laterInBlock[arg] && !local[arg] {
				report(inst, "use of %s before its definition", arg)
			}
		}
		if msg := checkTypes(f, inst); msg != "" {
			report(inst, "%s", msg)
		}
		if inst.Result != 0 {
			local[inst.Result] = true
		}
	}
	return errors.Join(errs...)
}

var arity = map[Opcode]int{
	OpIconst: 0, OpIadd: 2, OpIsub: 2, OpBand: 2, OpBor: 2,
	OpIshlImm: 1, OpUshrImm: 1, OpUextend: 1, OpSextend: 1, OpIreduce: 1, OpBitcast: 1,
	OpIcmp: 2, OpIcmpImm: 1, OpFcmp: 2, OpSelect: 3,
	OpStackAddr: 0, OpLoad: 1, OpStore: 2,
	OpJump: 0, OpReturn: 0, OpTrap: 0,
}

func checkTypes(f *Func, inst *Inst) string {
	if want, ok := arity[inst.Op]; !ok {
		return "unknown opcode"
	} else if len(inst.Args) != want {
		return fmt.Sprintf("want %d operands, got %d", want, len(inst.Args))
	}
	argType := func(i int) Type { return f.ValueType(inst.Args[i]) }

	switch inst.Op {
	case OpIconst:
		if !inst.Type.IsInt() {
			return "iconst of non-integer type"
		}
	case OpIadd, OpIsub, OpBand, OpBor:
		if !inst.Type.IsInt() || argType(0) != inst.Type || argType(1) != inst.Type {
			return fmt.Sprintf("operands must be %s integers", inst.Type)
		}
	case OpIshlImm, OpUshrImm:
		if !inst.Type.IsInt() || argType(0) != inst.Type {
			return "shift of non-integer value"
		}
		if inst.Imm < 0 || inst.Imm >= int64(inst.Type.Bits()) {
			return fmt.Sprintf("shift amount %d out of range for %s", inst.Imm, inst.Type)
		}
	case OpUextend, OpSextend:
		if !inst.Type.IsInt() || !argType(0).IsInt() || argType(0).Bits() >= inst.Type.Bits() {
			return "extension must widen an integer"
		}
	case OpIreduce:
		if !inst.Type.IsInt() || !argType(0).IsInt() || argType(0).Bits() <= inst.Type.Bits() {
			return "reduction must narrow an integer"
		}
	case OpBitcast:
		if argType(0).Bits() != inst.Type.Bits() {
			return fmt.Sprintf("bitcast between %s and %s changes width", argType(0), inst.Type)
		}
	case OpIcmp:
		if !argType(0).IsInt() || argType(0) != argType(1) {
			return "icmp operands must be integers of the same type"
		}
	case OpIcmpImm:
		if !argType(0).IsInt() {
			return "icmp_imm operand must be an integer"
		}
	case OpFcmp:
		if !argType(0).IsFloat() || argType(0) != argType(1) {
			return "fcmp operands must be floats of the same type"
		}
	case OpSelect:
		if !argType(0).IsInt() || argType(1) != inst.Type || argType(2) != inst.Type {
			return "select operands disagree on type"
		}
	case OpStackAddr:
		if inst.Slot == nil || !slices.Contains(f.Slots, inst.Slot) {
			return "stack slot does not belong to the function"
		}
		if inst.Imm < 0 || inst.Imm > int64(inst.Slot.Size) {
			return fmt.Sprintf("offset %d outside %s", inst.Imm, inst.Slot)
		}
	case OpLoad:
		if argType(0) != PointerType || inst.Type == TypeInvalid {
			return "load needs a pointer operand and a result type"
		}
	case OpStore:
		if argType(1) != PointerType || argType(0) == TypeInvalid {
			return "store needs a value and a pointer operand"
		}
	case OpJump:
		if inst.Target == nil || !slices.Contains(f.Blocks, inst.Target) {
			return "jump target does not belong to the function"
		}
	}
	return ""
}
