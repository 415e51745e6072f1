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

package abi

import (
	"fmt"
	"strconv"
	"strings"
)

// Class is how a value of a layout is represented by the code generator.
type Class int

const (
	// ClassScalar values fit in one IR value.
	ClassScalar Class = iota

	// ClassScalarPair values are two scalars (e.g., a (u8, u64) tuple).
	ClassScalarPair

	// ClassVector values are SIMD vectors kept in memory.
	ClassVector

	// ClassAggregate covers everything else, including the zero-sized unit.
	ClassAggregate
)

// String returns a human-readable name for the Class.
func (c Class) String() string {
	switch c {
	case ClassScalar:
		return "Scalar"
	case ClassScalarPair:
		return "ScalarPair"
	case ClassVector:
		return "Vector"
	case ClassAggregate:
		return "Aggregate"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Layout is the memory layout of a type.
type Layout struct {
	Ty    Type
	Size  int
	Align int

	// Offsets holds the byte offset of each lane (Simd) or field (Tuple).
	Offsets []int

	Class Class
}

// maxVectorAlign caps the alignment of SIMD types.
const maxVectorAlign = 32

// LayoutOf computes the layout of t.
func LayoutOf(t Type) Layout {
	switch t.Kind {
	case KindUnit:
		return Layout{Ty: t, Size: 0, Align: 1, Class: ClassAggregate}
	case KindBool, KindInt, KindUint, KindFloat, KindRawPtr:
		n := max(t.Bits/8, 1)
		return Layout{Ty: t, Size: n, Align: n, Class: ClassScalar}
	case KindSimd:
		elem := LayoutOf(*t.Elem)
		offsets := make([]int, t.Lanes)
		for i := range offsets {
			offsets[i] = i * elem.Size
		}
		size := elem.Size * t.Lanes
		align := min(size, maxVectorAlign)
		if align < elem.Align {
			align = elem.Align
		}
		return Layout{Ty: t, Size: size, Align: align, Offsets: offsets, Class: ClassVector}
	case KindTuple:
		offsets := make([]int, len(t.Fields))
		size, align := 0, 1
		scalars := 0
		for i, f := range t.Fields {
			fl := LayoutOf(f)
			size = alignUp(size, fl.Align)
			offsets[i] = size
			size += fl.Size
			align = max(align, fl.Align)
			if fl.Class == ClassScalar {
				scalars++
			}
		}
		class := ClassAggregate
		if len(t.Fields) == 2 && scalars == 2 {
			class = ClassScalarPair
		}
		return Layout{Ty: t, Size: alignUp(size, align), Align: align, Offsets: offsets, Class: class}
	}
	return Layout{Ty: t, Align: 1, Class: ClassAggregate}
}

// NumFields returns the number of lanes or fields of the layout.
func (l Layout) NumFields() int {
	return len(l.Offsets)
}

// Field returns the layout and byte offset of lane or field i.
func (l Layout) Field(i int) (Layout, int) {
	switch l.Ty.Kind {
	case KindSimd:
		return LayoutOf(*l.Ty.Elem), l.Offsets[i]
	case KindTuple:
		return LayoutOf(l.Ty.Fields[i]), l.Offsets[i]
	}
	panic(fmt.Sprintf("abi: %s has no fields", l.Ty))
}

func alignUp(n, align int) int {
	return (n + align - 1) / align * align
}

// Parse parses the textual form of a type: "unit", "bool", "ptr", "i8".."i64",
// "u8".."u64", "f32", "f64", vectors like "f32x4" and tuples like "(u8, u64)".
func Parse(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "(") {
		if !strings.HasSuffix(s, ")") {
			return Type{}, fmt.Errorf("abi: unterminated tuple %q", s)
		}
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return Unit, nil
		}
		var fields []Type
		for _, part := range splitTopLevel(inner) {
			f, err := Parse(part)
			if err != nil {
				return Type{}, err
			}
			fields = append(fields, f)
		}
		return Tuple(fields...), nil
	}
	switch s {
	case "unit":
		return Unit, nil
	case "bool":
		return Bool, nil
	case "ptr":
		return RawPtr, nil
	}
	if i := strings.LastIndexByte(s, 'x'); i > 0 {
		elem, err := parseScalar(s[:i])
		if err != nil {
			return Type{}, err
		}
		lanes, err := strconv.Atoi(s[i+1:])
		if err != nil || lanes < 1 {
			return Type{}, fmt.Errorf("abi: bad lane count in %q", s)
		}
		return Simd(elem, lanes), nil
	}
	return parseScalar(s)
}

func parseScalar(s string) (Type, error) {
	if len(s) < 2 {
		return Type{}, fmt.Errorf("abi: unknown type %q", s)
	}
	bits, err := strconv.Atoi(s[1:])
	if err != nil {
		return Type{}, fmt.Errorf("abi: unknown type %q", s)
	}
	var kind Kind
	switch s[0] {
	case 'i':
		kind = KindInt
	case 'u':
		kind = KindUint
	case 'f':
		kind = KindFloat
		if bits != 32 && bits != 64 {
			return Type{}, fmt.Errorf("abi: unsupported float width in %q", s)
		}
	default:
		return Type{}, fmt.Errorf("abi: unknown type %q", s)
	}
	switch bits {
	case 8, 16, 32, 64:
	default:
		return Type{}, fmt.Errorf("abi: unsupported width in %q", s)
	}
	return Type{Kind: kind, Bits: bits}, nil
}

func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
