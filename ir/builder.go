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

// Builder appends instructions to the current block of a function.
//
// The builder does not type-check its operands; run Verify on the finished
// function to catch malformed instructions.
type Builder struct {
	// fn is the function being built.
	fn *Func

	// cur is the block instructions are appended to.
	cur *Block
}

// BuilderOption configures the Builder.
type BuilderOption func(*Builder)

// AtBlock positions the builder at the end of an existing block.
func AtBlock(b *Block) BuilderOption {
	return func(bld *Builder) {
		bld.cur = b
	}
}

// NewBuilder creates a builder for fn. Unless AtBlock is given, the builder
// is positioned at the entry block, which is created if fn has no blocks.
func NewBuilder(fn *Func, opts ...BuilderOption) *Builder {
	b := &Builder{fn: fn}
	for _, opt := range opts {
		opt(b)
	}
	if b.cur == nil {
		if len(fn.Blocks) == 0 {
			fn.NewBlock()
		}
		b.cur = fn.Blocks[0]
	}
	return b
}

// Func returns the function being built.
func (b *Builder) Func() *Func {
	return b.fn
}

// CurrentBlock returns the block instructions are appended to.
func (b *Builder) CurrentBlock() *Block {
	return b.cur
}

// SwitchToBlock positions the builder at the end of blk.
func (b *Builder) SwitchToBlock(blk *Block) {
	b.cur = blk
}

// CreateBlock appends a new block to the function without switching to it.
func (b *Builder) CreateBlock() *Block {
	return b.fn.NewBlock()
}

func (b *Builder) insert(inst *Inst) Value {
	if inst.Type != TypeInvalid && inst.Op != OpStore {
		inst.Result = b.fn.newValue(inst.Type)
	}
	b.cur.Insts = append(b.cur.Insts, inst)
	return inst.Result
}

// Iconst materializes an integer constant of type t. The constant is
// truncated to the width of t.
func (b *Builder) Iconst(t Type, imm int64) Value {
	return b.insert(&Inst{Op: OpIconst, Type: t, Imm: imm})
}

// Iadd returns x + y, wrapping.
func (b *Builder) Iadd(x, y Value) Value {
	return b.binary(OpIadd, x, y)
}

// Isub returns x - y, wrapping.
func (b *Builder) Isub(x, y Value) Value {
	return b.binary(OpIsub, x, y)
}

// Band returns x & y.
func (b *Builder) Band(x, y Value) Value {
	return b.binary(OpBand, x, y)
}

// Bor returns x | y.
func (b *Builder) Bor(x, y Value) Value {
	return b.binary(OpBor, x, y)
}

func (b *Builder) binary(op Opcode, x, y Value) Value {
	return b.insert(&Inst{Op: op, Type: b.fn.ValueType(x), Args: []Value{x, y}})
}

// IshlImm shifts x left by the constant n.
func (b *Builder) IshlImm(x Value, n int64) Value {
	return b.insert(&Inst{Op: OpIshlImm, Type: b.fn.ValueType(x), Args: []Value{x}, Imm: n})
}

// UshrImm shifts x right by the constant n, filling with zeros.
func (b *Builder) UshrImm(x Value, n int64) Value {
	return b.insert(&Inst{Op: OpUshrImm, Type: b.fn.ValueType(x), Args: []Value{x}, Imm: n})
}

// Uextend zero-extends x to the wider integer type t.
func (b *Builder) Uextend(t Type, x Value) Value {
	return b.insert(&Inst{Op: OpUextend, Type: t, Args: []Value{x}})
}

// Sextend sign-extends x to the wider integer type t.
func (b *Builder) Sextend(t Type, x Value) Value {
	return b.insert(&Inst{Op: OpSextend, Type: t, Args: []Value{x}})
}

// Ireduce truncates x to the narrower integer type t.
func (b *Builder) Ireduce(t Type, x Value) Value {
	return b.insert(&Inst{Op: OpIreduce, Type: t, Args: []Value{x}})
}

// Bitcast reinterprets the bits of x as type t, which must have the same width.
func (b *Builder) Bitcast(t Type, x Value) Value {
	return b.insert(&Inst{Op: OpBitcast, Type: t, Args: []Value{x}})
}

// Icmp compares two integers and returns 1 or 0 as an i8.
func (b *Builder) Icmp(cc IntCC, x, y Value) Value {
	return b.insert(&Inst{Op: OpIcmp, Type: I8, Args: []Value{x, y}, Cond: int(cc)})
}

// IcmpImm compares an integer with a constant and returns 1 or 0 as an i8.
func (b *Builder) IcmpImm(cc IntCC, x Value, imm int64) Value {
	return b.insert(&Inst{Op: OpIcmpImm, Type: I8, Args: []Value{x}, Imm: imm, Cond: int(cc)})
}

// Fcmp compares two floats and returns 1 or 0 as an i8.
func (b *Builder) Fcmp(cc FloatCC, x, y Value) Value {
	return b.insert(&Inst{Op: OpFcmp, Type: I8, Args: []Value{x, y}, Cond: int(cc)})
}

// Select returns x if c is non-zero and y otherwise.
func (b *Builder) Select(c, x, y Value) Value {
	return b.insert(&Inst{Op: OpSelect, Type: b.fn.ValueType(x), Args: []Value{c, x, y}})
}

// StackAddr returns the address of slot plus offset.
func (b *Builder) StackAddr(slot *StackSlot, offset int64) Value {
	return b.insert(&Inst{Op: OpStackAddr, Type: PointerType, Slot: slot, Imm: offset})
}

// Load reads a value of type t from addr+offset. No alignment is required.
func (b *Builder) Load(t Type, addr Value, offset int64) Value {
	return b.insert(&Inst{Op: OpLoad, Type: t, Args: []Value{addr}, Imm: offset})
}

// Store writes x to addr+offset. No alignment is required.
func (b *Builder) Store(x, addr Value, offset int64) {
	b.insert(&Inst{Op: OpStore, Type: b.fn.ValueType(x), Args: []Value{x, addr}, Imm: offset})
}

// Jump ends the current block with an unconditional branch to target.
func (b *Builder) Jump(target *Block) {
	b.insert(&Inst{Op: OpJump, Target: target})
}

// Return ends the current block by returning from the function.
func (b *Builder) Return() {
	b.insert(&Inst{Op: OpReturn})
}

// Trap ends the current block with an instruction that aborts execution.
func (b *Builder) Trap(code TrapCode, msg string) {
	b.insert(&Inst{Op: OpTrap, Trap: code, Msg: msg})
}
