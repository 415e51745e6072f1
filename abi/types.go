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

// Package abi describes source-level types and their memory layouts.
//
// Types are the static types of intrinsic operands and results: fixed-width
// integers and floats, SIMD vectors of those, tuples and raw pointers.
// LayoutOf computes size, alignment, field offsets and the ABI class used by
// the code generator to decide how a value is passed around.
package abi

import (
	"fmt"
	"strings"

	"github.com/ajroetker/hwyemu/ir"
)

// Kind categorizes a Type.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindRawPtr
	KindSimd
	KindTuple
)

// String returns a human-readable name for the Kind.
func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindUint:
		return "Uint"
	case KindFloat:
		return "Float"
	case KindRawPtr:
		return "RawPtr"
	case KindSimd:
		return "Simd"
	case KindTuple:
		return "Tuple"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is a source-level type. Use Equal to compare types.
type Type struct {
	// Kind categorizes the type.
	Kind Kind

	// Bits is the width of Int, Uint and Float types.
	Bits int

	// Elem and Lanes describe a Simd type.
	Elem  *Type
	Lanes int

	// Fields are the members of a Tuple type.
	Fields []Type
}

// Predeclared types.
var (
	Unit   = Type{Kind: KindUnit}
	Bool   = Type{Kind: KindBool, Bits: 8}
	I8     = Type{Kind: KindInt, Bits: 8}
	I16    = Type{Kind: KindInt, Bits: 16}
	I32    = Type{Kind: KindInt, Bits: 32}
	I64    = Type{Kind: KindInt, Bits: 64}
	U8     = Type{Kind: KindUint, Bits: 8}
	U16    = Type{Kind: KindUint, Bits: 16}
	U32    = Type{Kind: KindUint, Bits: 32}
	U64    = Type{Kind: KindUint, Bits: 64}
	F32    = Type{Kind: KindFloat, Bits: 32}
	F64    = Type{Kind: KindFloat, Bits: 64}
	RawPtr = Type{Kind: KindRawPtr, Bits: 64}
)

// Simd returns the vector type of lanes elements of type elem.
func Simd(elem Type, lanes int) Type {
	e := elem
	return Type{Kind: KindSimd, Elem: &e, Lanes: lanes}
}

// Tuple returns the tuple type with the given fields.
func Tuple(fields ...Type) Type {
	return Type{Kind: KindTuple, Fields: append([]Type(nil), fields...)}
}

// Equal reports whether t and u are the same type.
func (t Type) Equal(u Type) bool {
	if t.Kind != u.Kind || t.Bits != u.Bits || t.Lanes != u.Lanes || len(t.Fields) != len(u.Fields) {
		return false
	}
	if t.Kind == KindSimd && !t.Elem.Equal(*u.Elem) {
		return false
	}
	for i := range t.Fields {
		if !t.Fields[i].Equal(u.Fields[i]) {
			return false
		}
	}
	return true
}

// IsScalar reports whether values of t fit in a single IR value.
func (t Type) IsScalar() bool {
	switch t.Kind {
	case KindBool, KindInt, KindUint, KindFloat, KindRawPtr:
		return true
	}
	return false
}

// IsInteger reports whether t is a signed or unsigned integer type.
func (t Type) IsInteger() bool {
	return t.Kind == KindInt || t.Kind == KindUint
}

// IsFloat reports whether t is a floating-point type.
func (t Type) IsFloat() bool {
	return t.Kind == KindFloat
}

// IsSigned reports whether t is a signed integer type.
func (t Type) IsSigned() bool {
	return t.Kind == KindInt
}

// SimdSizeAndType returns the lane count and lane type of a Simd type.
// ok is false for any other type.
func (t Type) SimdSizeAndType() (lanes int, elem Type, ok bool) {
	if t.Kind != KindSimd {
		return 0, Type{}, false
	}
	return t.Lanes, *t.Elem, true
}

// IRType returns the IR type holding a scalar of type t. ok is false for
// non-scalar types.
func (t Type) IRType() (ir.Type, bool) {
	switch t.Kind {
	case KindBool:
		return ir.I8, true
	case KindInt, KindUint:
		it := ir.IntType(t.Bits)
		return it, it != ir.TypeInvalid
	case KindFloat:
		switch t.Bits {
		case 32:
			return ir.F32, true
		case 64:
			return ir.F64, true
		}
	case KindRawPtr:
		return ir.PointerType, true
	}
	return ir.TypeInvalid, false
}

// String returns the textual form of the type, as accepted by Parse.
func (t Type) String() string {
	switch t.Kind {
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return fmt.Sprintf("i%d", t.Bits)
	case KindUint:
		return fmt.Sprintf("u%d", t.Bits)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Bits)
	case KindRawPtr:
		return "ptr"
	case KindSimd:
		return fmt.Sprintf("%sx%d", t.Elem, t.Lanes)
	case KindTuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return t.Kind.String()
	}
}
