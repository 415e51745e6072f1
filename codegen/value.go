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

package codegen

import (
	"fmt"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/ir"
)

// Pointer is an address expressed as an IR value plus a constant offset.
type Pointer struct {
	Base   ir.Value
	Offset int64
}

// Add returns p displaced by off bytes.
func (p Pointer) Add(off int) Pointer {
	return Pointer{Base: p.Base, Offset: p.Offset + int64(off)}
}

type valueKind int

const (
	byRef valueKind = iota
	byVal
	byValPair
)

// CValue is a typed value: either held in one or two IR values, or stored
// in memory at a known address.
//
// Misusing a CValue (asking a vector for a scalar, mismatched layouts) is a
// bug in the caller and panics.
type CValue struct {
	kind   valueKind
	ptr    Pointer
	a, b   ir.Value
	layout abi.Layout
}

// ByRef returns a value stored in memory at ptr.
func ByRef(ptr Pointer, layout abi.Layout) CValue {
	return CValue{kind: byRef, ptr: ptr, layout: layout}
}

// ByVal returns a scalar value held in v.
func ByVal(v ir.Value, layout abi.Layout) CValue {
	return CValue{kind: byVal, a: v, layout: layout}
}

// ByValPair returns a two-field value held in a and b.
func ByValPair(a, b ir.Value, layout abi.Layout) CValue {
	return CValue{kind: byValPair, a: a, b: b, layout: layout}
}

// Layout returns the layout of the value's type.
func (v CValue) Layout() abi.Layout {
	return v.layout
}

// Type returns the value's type.
func (v CValue) Type() abi.Type {
	return v.layout.Ty
}

func irTypeOf(l abi.Layout) ir.Type {
	t, ok := l.Ty.IRType()
	if !ok {
		panic(fmt.Sprintf("codegen: %s is not a scalar", l.Ty))
	}
	return t
}

// LoadScalar returns the value as a single IR value.
func (v CValue) LoadScalar(b *ir.Builder) ir.Value {
	switch v.kind {
	case byVal:
		return v.a
	case byRef:
		return b.Load(irTypeOf(v.layout), v.ptr.Base, v.ptr.Offset)
	}
	panic(fmt.Sprintf("codegen: load_scalar of %s pair", v.layout.Ty))
}

// LoadScalarPair returns both fields of a scalar pair.
func (v CValue) LoadScalarPair(b *ir.Builder) (ir.Value, ir.Value) {
	switch v.kind {
	case byValPair:
		return v.a, v.b
	case byRef:
		if v.layout.Class != abi.ClassScalarPair {
			break
		}
		f0, off0 := v.layout.Field(0)
		f1, off1 := v.layout.Field(1)
		lo := b.Load(irTypeOf(f0), v.ptr.Base, v.ptr.Offset+int64(off0))
		hi := b.Load(irTypeOf(f1), v.ptr.Base, v.ptr.Offset+int64(off1))
		return lo, hi
	}
	panic(fmt.Sprintf("codegen: load_scalar_pair of %s", v.layout.Ty))
}

// ValueField returns lane or field i of the value.
func (v CValue) ValueField(b *ir.Builder, i int) CValue {
	field, off := v.layout.Field(i)
	switch v.kind {
	case byRef:
		return ByRef(v.ptr.Add(off), field)
	case byValPair:
		if i == 0 {
			return ByVal(v.a, field)
		}
		return ByVal(v.b, field)
	}
	panic(fmt.Sprintf("codegen: value_field of scalar %s", v.layout.Ty))
}

// ForceStack returns the address of the value, spilling it to a new stack
// slot first if it is not already in memory.
func (v CValue) ForceStack(b *ir.Builder) Pointer {
	if v.kind == byRef {
		return v.ptr
	}
	place := NewStackSlotPlace(b, v.layout)
	place.WriteCValue(b, v)
	return place.ptr
}

// CPlace is a typed storage location in memory.
type CPlace struct {
	ptr    Pointer
	layout abi.Layout
}

// PlaceForPtr returns the place of the given layout at ptr.
func PlaceForPtr(ptr Pointer, layout abi.Layout) CPlace {
	return CPlace{ptr: ptr, layout: layout}
}

// NewStackSlotPlace reserves a stack slot big enough for layout.
func NewStackSlotPlace(b *ir.Builder, layout abi.Layout) CPlace {
	if layout.Size == 0 {
		return CPlace{layout: layout}
	}
	slot := b.Func().NewStackSlot(layout.Size, layout.Align)
	return CPlace{ptr: Pointer{Base: b.StackAddr(slot, 0)}, layout: layout}
}

// Layout returns the layout of the place's type.
func (p CPlace) Layout() abi.Layout {
	return p.layout
}

// Pointer returns the address of the place.
func (p CPlace) Pointer() Pointer {
	return p.ptr
}

// PlaceField returns the place of lane or field i.
func (p CPlace) PlaceField(i int) CPlace {
	field, off := p.layout.Field(i)
	return CPlace{ptr: p.ptr.Add(off), layout: field}
}

// ToCValue returns the value currently stored in the place.
func (p CPlace) ToCValue() CValue {
	return ByRef(p.ptr, p.layout)
}

// WriteCValue stores v into the place. Both must have the same type.
func (p CPlace) WriteCValue(b *ir.Builder, v CValue) {
	if !p.layout.Ty.Equal(v.layout.Ty) {
		panic(fmt.Sprintf("codegen: write of %s into place of %s", v.layout.Ty, p.layout.Ty))
	}
	if p.layout.Size == 0 {
		return
	}
	switch v.kind {
	case byVal:
		b.Store(v.a, p.ptr.Base, p.ptr.Offset)
	case byValPair:
		_, off0 := p.layout.Field(0)
		_, off1 := p.layout.Field(1)
		b.Store(v.a, p.ptr.Base, p.ptr.Offset+int64(off0))
		b.Store(v.b, p.ptr.Base, p.ptr.Offset+int64(off1))
	case byRef:
		copyMemory(b, p.ptr, v.ptr, p.layout.Size)
	}
}

// copyMemory copies size bytes in the widest chunks that fit.
func copyMemory(b *ir.Builder, dst, src Pointer, size int) {
	off := 0
	for _, t := range []ir.Type{ir.I64, ir.I32, ir.I16, ir.I8} {
		for size-off >= t.Bytes() {
			x := b.Load(t, src.Base, src.Offset+int64(off))
			b.Store(x, dst.Base, dst.Offset+int64(off))
			off += t.Bytes()
		}
	}
}
