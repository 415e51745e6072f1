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

// Package ir is the instruction set of the generic code generator that
// emulated intrinsics are lowered into.
//
// The IR is scalar-only: there are no vector types or vector instructions.
// Vector values live in memory and are accessed one lane at a time with
// Load and Store. Every block ends in exactly one terminator (Jump, Return
// or Trap).
package ir

import (
	"fmt"
	"strings"
)

// Type is the type of an SSA value.
type Type uint8

const (
	// TypeInvalid is the zero Type and is never a valid value type.
	TypeInvalid Type = iota
	I8
	I16
	I32
	I64
	F32
	F64
)

// PointerType is the type of addresses.
const PointerType = I64

// Bits returns the width of the type in bits.
func (t Type) Bits() int {
	switch t {
	case I8:
		return 8
	case I16:
		return 16
	case I32, F32:
		return 32
	case I64, F64:
		return 64
	default:
		return 0
	}
}

// Bytes returns the width of the type in bytes.
func (t Type) Bytes() int {
	return t.Bits() / 8
}

// IsInt reports whether t is an integer type.
func (t Type) IsInt() bool {
	return t == I8 || t == I16 || t == I32 || t == I64
}

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool {
	return t == F32 || t == F64
}

// String returns the textual name of the type.
func (t Type) String() string {
	switch t {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "invalid"
	}
}

// IntType returns the integer type with the given width, or TypeInvalid.
func IntType(bits int) Type {
	switch bits {
	case 8:
		return I8
	case 16:
		return I16
	case 32:
		return I32
	case 64:
		return I64
	default:
		return TypeInvalid
	}
}

// Opcode identifies an instruction.
type Opcode int

const (
	OpIconst Opcode = iota
	OpIadd
	OpIsub
	OpBand
	OpBor
	OpIshlImm
	OpUshrImm
	OpUextend
	OpSextend
	OpIreduce
	OpBitcast
	OpIcmp
	OpIcmpImm
	OpFcmp
	OpSelect
	OpStackAddr
	OpLoad
	OpStore
	OpJump
	OpReturn
	OpTrap
)

var opcodeNames = [...]string{
	OpIconst:    "iconst",
	OpIadd:      "iadd",
	OpIsub:      "isub",
	OpBand:      "band",
	OpBor:       "bor",
	OpIshlImm:   "ishl_imm",
	OpUshrImm:   "ushr_imm",
	OpUextend:   "uextend",
	OpSextend:   "sextend",
	OpIreduce:   "ireduce",
	OpBitcast:   "bitcast",
	OpIcmp:      "icmp",
	OpIcmpImm:   "icmp_imm",
	OpFcmp:      "fcmp",
	OpSelect:    "select",
	OpStackAddr: "stack_addr",
	OpLoad:      "load",
	OpStore:     "store",
	OpJump:      "jump",
	OpReturn:    "return",
	OpTrap:      "trap",
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if op >= 0 && int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// IsTerminator reports whether the opcode ends a block.
func (op Opcode) IsTerminator() bool {
	return op == OpJump || op == OpReturn || op == OpTrap
}

// IntCC is an integer comparison condition.
type IntCC int

const (
	IntEqual IntCC = iota
	IntNotEqual
	IntUnsignedLessThan
	IntUnsignedGreaterThan
)

// String returns the textual name of the condition.
func (cc IntCC) String() string {
	switch cc {
	case IntEqual:
		return "eq"
	case IntNotEqual:
		return "ne"
	case IntUnsignedLessThan:
		return "ult"
	case IntUnsignedGreaterThan:
		return "ugt"
	default:
		return fmt.Sprintf("IntCC(%d)", int(cc))
	}
}

// FloatCC is a floating-point comparison condition.
//
// FloatEqual, FloatLessThan and FloatLessThanOrEqual are ordered: they are
// false when either operand is NaN. FloatNotEqual is unordered: it is true
// when either operand is NaN.
type FloatCC int

const (
	FloatEqual FloatCC = iota
	FloatNotEqual
	FloatLessThan
	FloatLessThanOrEqual
)

// String returns the textual name of the condition.
func (cc FloatCC) String() string {
	switch cc {
	case FloatEqual:
		return "eq"
	case FloatNotEqual:
		return "ne"
	case FloatLessThan:
		return "lt"
	case FloatLessThanOrEqual:
		return "le"
	default:
		return fmt.Sprintf("FloatCC(%d)", int(cc))
	}
}

// TrapCode says why a trap instruction aborts execution.
type TrapCode int

const (
	// TrapUnreachable marks code that must never execute. Reaching it means
	// an invariant of the compiler was broken.
	TrapUnreachable TrapCode = iota

	// TrapUnimplemented marks an operation the code generator cannot lower.
	TrapUnimplemented
)

// String returns the textual name of the trap code.
func (c TrapCode) String() string {
	switch c {
	case TrapUnreachable:
		return "unreachable"
	case TrapUnimplemented:
		return "unimplemented"
	default:
		return fmt.Sprintf("TrapCode(%d)", int(c))
	}
}

// Value is an SSA value number. The zero Value means "no value".
type Value int

// String returns the textual name of the value (e.g., "v3").
func (v Value) String() string {
	if v == 0 {
		return "v?"
	}
	return fmt.Sprintf("v%d", int(v))
}

// StackSlot is a fixed-size region of the function's frame.
type StackSlot struct {
	ID    int
	Size  int
	Align int
}

// String returns the textual name of the slot (e.g., "ss0").
func (s *StackSlot) String() string {
	return fmt.Sprintf("ss%d", s.ID)
}

// Inst is a single instruction.
type Inst struct {
	// Op is the operation.
	Op Opcode

	// Result is the value defined by this instruction, or 0.
	Result Value

	// Type is the result type. For Store it is the type of the stored value.
	Type Type

	// Args are the value operands.
	Args []Value

	// Imm holds the integer immediate: the constant for Iconst and
	// IcmpImm, the shift amount for shifts and the byte offset for
	// StackAddr, Load and Store.
	Imm int64

	// Cond is the IntCC or FloatCC of a comparison.
	Cond int

	// Slot is the stack slot of a StackAddr.
	Slot *StackSlot

	// Target is the destination of a Jump.
	Target *Block

	// Trap and Msg describe a Trap.
	Trap TrapCode
	Msg  string
}

// Block is a basic block.
type Block struct {
	ID    int
	Insts []*Inst
}

// Name returns the textual name of the block (e.g., "block2").
func (b *Block) Name() string {
	return fmt.Sprintf("block%d", b.ID)
}

// Terminator returns the last instruction if it is a terminator, or nil.
func (b *Block) Terminator() *Inst {
	if len(b.Insts) == 0 {
		return nil
	}
	last := b.Insts[len(b.Insts)-1]
	if !last.Op.IsTerminator() {
		return nil
	}
	return last
}

// Param is a function parameter.
type Param struct {
	Value Value
	Type  Type
}

// Func is a function made of basic blocks. Blocks[0] is the entry block.
type Func struct {
	Name   string
	Params []Param
	Blocks []*Block
	Slots  []*StackSlot

	valueTypes map[Value]Type
	nextValue  Value
}

// NewFunc creates an empty function.
func NewFunc(name string) *Func {
	return &Func{
		Name:       name,
		valueTypes: make(map[Value]Type),
		nextValue:  1,
	}
}

// NewBlock appends a new empty block to the function.
func (f *Func) NewBlock() *Block {
	b := &Block{ID: len(f.Blocks)}
	f.Blocks = append(f.Blocks, b)
	return b
}

// AddParam declares a new parameter of type t and returns its value.
func (f *Func) AddParam(t Type) Value {
	v := f.newValue(t)
	f.Params = append(f.Params, Param{Value: v, Type: t})
	return v
}

// NewStackSlot reserves size bytes in the frame.
func (f *Func) NewStackSlot(size, align int) *StackSlot {
	if align <= 0 {
		align = 1
	}
	s := &StackSlot{ID: len(f.Slots), Size: size, Align: align}
	f.Slots = append(f.Slots, s)
	return s
}

// ValueType returns the type of v, or TypeInvalid if v is not defined in f.
func (f *Func) ValueType(v Value) Type {
	return f.valueTypes[v]
}

// NumInsts returns the number of instructions in all blocks.
func (f *Func) NumInsts() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Insts)
	}
	return n
}

func (f *Func) newValue(t Type) Value {
	v := f.nextValue
	f.nextValue++
	f.valueTypes[v] = t
	return v
}

// String returns a debug string representation of the instruction.
func (inst *Inst) String() string {
	var sb strings.Builder
	writeInst(&sb, inst)
	return sb.String()
}
