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
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// This file provides a reference interpreter for the IR. It exists so that
// lowered code can be executed and checked bit-for-bit without a machine
// code backend.

// ErrStepLimit is returned by Run when execution exceeds its step budget.
var ErrStepLimit = errors.New("ir: step limit exceeded")

// TrapError is returned by Run when execution reaches a trap instruction.
type TrapError struct {
	Code TrapCode
	Msg  string
}

func (e *TrapError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("trap %s", e.Code)
	}
	return fmt.Sprintf("trap %s: %s", e.Code, e.Msg)
}

// memoryBase is the address of the first byte of a Memory. Address 0 stays
// invalid so that a zero pointer always faults.
const memoryBase = 0x1000

// Memory is a flat little-endian byte-addressed memory.
type Memory struct {
	buf []byte
}

// NewMemory creates an empty memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Alloc reserves size zeroed bytes aligned to align and returns their address.
func (m *Memory) Alloc(size, align int) uint64 {
	if align <= 0 {
		align = 1
	}
	off := len(m.buf)
	if rem := (memoryBase + off) % align; rem != 0 {
		off += align - rem
	}
	m.buf = append(m.buf, make([]byte, off+size-len(m.buf))...)
	return uint64(memoryBase + off)
}

func (m *Memory) span(addr uint64, n int) ([]byte, error) {
	if addr < memoryBase || addr-memoryBase+uint64(n) > uint64(len(m.buf)) {
		return nil, fmt.Errorf("ir: access of %d bytes at %#x out of bounds", n, addr)
	}
	off := addr - memoryBase
	return m.buf[off : off+uint64(n)], nil
}

// Read returns a copy of n bytes at addr.
func (m *Memory) Read(addr uint64, n int) ([]byte, error) {
	b, err := m.span(addr, n)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Write copies data to addr.
func (m *Memory) Write(addr uint64, data []byte) error {
	b, err := m.span(addr, len(data))
	if err != nil {
		return err
	}
	copy(b, data)
	return nil
}

// LoadBits reads a value of type t at addr and returns its bit pattern.
func (m *Memory) LoadBits(t Type, addr uint64) (uint64, error) {
	b, err := m.span(addr, t.Bytes())
	if err != nil {
		return 0, err
	}
	switch t.Bytes() {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 8:
		return binary.LittleEndian.Uint64(b), nil
	}
	return 0, fmt.Errorf("ir: load of type %s", t)
}

// StoreBits writes the low bits of x as a value of type t at addr.
func (m *Memory) StoreBits(t Type, addr uint64, x uint64) error {
	b, err := m.span(addr, t.Bytes())
	if err != nil {
		return err
	}
	switch t.Bytes() {
	case 1:
		b[0] = byte(x)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(x))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(x))
	case 8:
		binary.LittleEndian.PutUint64(b, x)
	default:
		return fmt.Errorf("ir: store of type %s", t)
	}
	return nil
}

// maxSteps bounds the number of instructions Run executes.
const maxSteps = 1 << 20

// Run executes f from its entry block with the given parameter bit patterns.
// It returns nil when the function returns and a *TrapError when it traps.
// Stack slots are allocated from mem.
func Run(f *Func, mem *Memory, args ...uint64) error {
	if len(args) != len(f.Params) {
		return fmt.Errorf("ir: %s takes %d arguments, got %d", f.Name, len(f.Params), len(args))
	}
	if len(f.Blocks) == 0 {
		return fmt.Errorf("ir: %s has no blocks", f.Name)
	}

	vals := make(map[Value]uint64)
	for i, p := range f.Params {
		vals[p.Value] = mask(p.Type, args[i])
	}
	slots := make(map[*StackSlot]uint64, len(f.Slots))
	for _, s := range f.Slots {
		slots[s] = mem.Alloc(s.Size, s.Align)
	}

	blk := f.Blocks[0]
	steps := 0
	for {
		var next *Block
		for _, inst := range blk.Insts {
			steps++
			if steps > maxSteps {
				return ErrStepLimit
			}
			arg := func(i int) uint64 { return vals[inst.Args[i]] }
			argType := func(i int) Type { return f.ValueType(inst.Args[i]) }

			var res uint64
			switch inst.Op {
			case OpIconst:
				res = uint64(inst.Imm)
			case OpIadd:
				res = arg(0) + arg(1)
			case OpIsub:
				res = arg(0) - arg(1)
			case OpBand:
				res = arg(0) & arg(1)
			case OpBor:
				res = arg(0) | arg(1)
			case OpIshlImm:
				res = arg(0) << (uint64(inst.Imm) % uint64(inst.Type.Bits()))
			case OpUshrImm:
				res = arg(0) >> (uint64(inst.Imm) % uint64(inst.Type.Bits()))
			case OpUextend, OpIreduce, OpBitcast:
				res = arg(0)
			case OpSextend:
				shift := 64 - argType(0).Bits()
				res = uint64(int64(arg(0)<<shift) >> shift)
			case OpIcmp:
				res = boolBits(compareInt(IntCC(inst.Cond), arg(0), arg(1)))
			case OpIcmpImm:
				res = boolBits(compareInt(IntCC(inst.Cond), arg(0), mask(argType(0), uint64(inst.Imm))))
			case OpFcmp:
				res = boolBits(compareFloat(FloatCC(inst.Cond), argType(0), arg(0), arg(1)))
			case OpSelect:
				if arg(0) != 0 {
					res = arg(1)
				} else {
					res = arg(2)
				}
			case OpStackAddr:
				res = slots[inst.Slot] + uint64(inst.Imm)
			case OpLoad:
				v, err := mem.LoadBits(inst.Type, arg(0)+uint64(inst.Imm))
				if err != nil {
					return fmt.Errorf("%s: %s: %w", blk.Name(), inst, err)
				}
				res = v
			case OpStore:
				if err := mem.StoreBits(inst.Type, arg(1)+uint64(inst.Imm), arg(0)); err != nil {
					return fmt.Errorf("%s: %s: %w", blk.Name(), inst, err)
				}
			case OpJump:
				next = inst.Target
			case OpReturn:
				return nil
			case OpTrap:
				return &TrapError{Code: inst.Trap, Msg: inst.Msg}
			default:
				return fmt.Errorf("%s: unknown opcode %s", blk.Name(), inst.Op)
			}
			if inst.Result != 0 {
				vals[inst.Result] = mask(inst.Type, res)
			}
		}
		if next == nil {
			return fmt.Errorf("ir: %s falls off the end", blk.Name())
		}
		blk = next
	}
}

func mask(t Type, x uint64) uint64 {
	bits := t.Bits()
	if bits == 0 || bits >= 64 {
		return x
	}
	return x & (1<<bits - 1)
}

func boolBits(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func compareInt(cc IntCC, x, y uint64) bool {
	switch cc {
	case IntEqual:
		return x == y
	case IntNotEqual:
		return x != y
	case IntUnsignedLessThan:
		return x < y
	case IntUnsignedGreaterThan:
		return x > y
	}
	return false
}

func compareFloat(cc FloatCC, t Type, xb, yb uint64) bool {
	var x, y float64
	if t == F32 {
		x = float64(math.Float32frombits(uint32(xb)))
		y = float64(math.Float32frombits(uint32(yb)))
	} else {
		x = math.Float64frombits(xb)
		y = math.Float64frombits(yb)
	}
	switch cc {
	case FloatEqual:
		return x == y
	case FloatNotEqual:
		return x != y
	case FloatLessThan:
		return x < y
	case FloatLessThanOrEqual:
		return x <= y
	}
	return false
}
