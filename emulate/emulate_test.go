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

package emulate_test

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/codegen"
	"github.com/ajroetker/hwyemu/emulate"
	"github.com/ajroetker/hwyemu/internal/casefile"
	"github.com/ajroetker/hwyemu/ir"
)

func TestLookup(t *testing.T) {
	e := emulate.NewEngine()
	names := e.Names()
	require.Len(t, names, 31)
	require.True(t, slices.IsSorted(names))

	tests := []struct {
		name string
		want emulate.Rule
	}{
		{"llvm.x86.sse2.pmovmskb.128", emulate.Rule{Intrinsic: emulate.IntrinsicMoveMask}},
		{"llvm.x86.sse.cmp.ps", emulate.Rule{Intrinsic: emulate.IntrinsicComparePacked}},
		{"llvm.x86.avx2.psrli.w", emulate.Rule{Intrinsic: emulate.IntrinsicShiftRightImm, Width: 16}},
		{"llvm.x86.sse2.pslli.q", emulate.Rule{Intrinsic: emulate.IntrinsicShiftLeftImm, Width: 64}},
		{"llvm.x86.sse.storeu.ps", emulate.Rule{Intrinsic: emulate.IntrinsicStoreUnaligned}},
		{"llvm.x86.subborrow.32", emulate.Rule{Intrinsic: emulate.IntrinsicSubBorrow, Width: 32}},
		{"llvm.x86.avx2.pshuf.b", emulate.Rule{Intrinsic: emulate.IntrinsicShuffleBytes}},
		{"llvm.x86.avx2.vperm2i128", emulate.Rule{Intrinsic: emulate.IntrinsicPermute128}},
		{"llvm.x86.sse2.psrai.d", emulate.Rule{Intrinsic: emulate.IntrinsicUnsupported}},
		{"", emulate.Rule{Intrinsic: emulate.IntrinsicUnsupported}},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, e.Lookup(tt.name), tt.name)
	}

	// Every supported intrinsic has a signature and a non-fallback rule.
	for _, name := range names {
		in := e.Lookup(name).Intrinsic
		require.NotEmpty(t, in.Signature(), name)
		require.NotEqual(t, emulate.RuleFallback, in.Rule(), name)
		require.NotEmpty(t, in.Feature(), name)
	}
}

func TestMoveMask(t *testing.T) {
	e := newEngine()
	got := runChecked(t, e, "llvm.x86.sse.movmsk.ps", abi.I32,
		vec(abi.Simd(abi.F32, 4), f32s(-1, 2, 3, -4)...))
	require.Equal(t, []uint64{0b1001}, got.Fields)
}

func TestMoveMaskSignBits(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name string
		ty   abi.Type
	}{
		{"llvm.x86.sse2.pmovmskb.128", abi.Simd(abi.I8, 16)},
		{"llvm.x86.avx2.pmovmskb", abi.Simd(abi.I8, 32)},
		{"llvm.x86.sse2.movmsk.pd", abi.Simd(abi.F64, 2)},
		{"llvm.x86.avx.movmsk.ps.256", abi.Simd(abi.F32, 8)},
		{"llvm.x86.avx.movmsk.pd.256", abi.Simd(abi.F64, 4)},
	}
	e := newEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, elem, _ := tt.ty.SimdSizeAndType()
			for range 20 {
				lanes := randomLanes(rng, n, elem.Bits)
				got := runChecked(t, e, tt.name, abi.I32, vec(tt.ty, lanes...))

				var want uint64
				for i, x := range lanes {
					want |= (x >> (elem.Bits - 1) & 1) << i
				}
				require.Equal(t, []uint64{want}, got.Fields)
			}
		})
	}
}

func TestMoveMaskRejectsWideVectors(t *testing.T) {
	_, err := lowerCase(newEngine(), "llvm.x86.sse2.pmovmskb.128", abi.I32,
		vec(abi.Simd(abi.I8, 64), make([]uint64, 64)...))
	require.ErrorIs(t, err, emulate.ErrInvariant)

	_, err = lowerCase(newEngine(), "llvm.x86.sse.movmsk.ps", abi.I64,
		vec(abi.Simd(abi.F32, 4), f32s(1, 2, 3, 4)...))
	require.ErrorIs(t, err, emulate.ErrInvariant)
}

func TestComparePacked(t *testing.T) {
	nan := float32(math.NaN())
	a := vec(abi.Simd(abi.F32, 4), f32s(1, 2, nan, -0.5)...)
	b := vec(abi.Simd(abi.F32, 4), f32s(1, 3, nan, -1)...)
	ones := uint64(math.MaxUint32)
	tests := []struct {
		kind emulate.CmpKind
		want []uint64
	}{
		{emulate.CmpEqual, []uint64{ones, 0, 0, 0}},
		{emulate.CmpLessThan, []uint64{0, ones, 0, 0}},
		{emulate.CmpLessOrEqual, []uint64{ones, ones, 0, 0}},
		{emulate.CmpNotEqual, []uint64{0, ones, ones, ones}},
	}
	e := newEngine()
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			got := runChecked(t, e, "llvm.x86.sse.cmp.ps", abi.Simd(abi.F32, 4), a, b, konst(abi.I8, uint64(tt.kind)))
			require.Equal(t, tt.want, got.Lanes)
		})
	}
}

func TestComparePackedEqualIsAllOrNothing(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	e := newEngine()
	ty := abi.Simd(abi.F32, 4)
	for range 50 {
		x, y := randomFloats(rng, 4), randomFloats(rng, 4)
		got := runChecked(t, e, "llvm.x86.sse.cmp.ps", ty, vec(ty, x...), vec(ty, y...), konst(abi.I8, 0))
		for i, lane := range got.Lanes {
			fx, fy := math.Float32frombits(uint32(x[i])), math.Float32frombits(uint32(y[i]))
			if fx == fy {
				require.Equal(t, uint64(math.MaxUint32), lane, "lane %d: %v == %v", i, fx, fy)
			} else {
				require.Zero(t, lane, "lane %d: %v != %v", i, fx, fy)
			}
		}
	}

	pd := abi.Simd(abi.F64, 2)
	one, two := math.Float64bits(1), math.Float64bits(2)
	got := runChecked(t, e, "llvm.x86.sse2.cmp.pd", pd, vec(pd, one, two), vec(pd, one, one), konst(abi.I8, 0))
	require.Equal(t, []uint64{math.MaxUint64, 0}, got.Lanes)
}

func TestComparePackedKinds(t *testing.T) {
	ty := abi.Simd(abi.F32, 4)
	args := func(kind uint64) []casefile.Arg {
		return []casefile.Arg{vec(ty, f32s(1, 2, 3, 4)...), vec(ty, f32s(4, 3, 2, 1)...), konst(abi.I8, kind)}
	}
	e := newEngine()
	for _, kind := range []emulate.CmpKind{emulate.CmpUnordered, emulate.CmpNotLessThan, emulate.CmpNotLessOrEqual, emulate.CmpOrdered} {
		_, err := lowerCase(e, "llvm.x86.sse.cmp.ps", ty, args(uint64(kind))...)
		require.ErrorIs(t, err, emulate.ErrUnimplemented, "kind %s", kind)
		require.True(t, emulate.IsFatal(err))
	}

	for _, kind := range []uint64{8, 9, 31, 255} {
		_, err := lowerCase(e, "llvm.x86.sse.cmp.ps", ty, args(kind)...)
		require.ErrorIs(t, err, emulate.ErrUnknownCmpKind, "kind %d", kind)
	}
}

func TestComparePackedRejectsMismatchedLanes(t *testing.T) {
	e := newEngine()
	_, err := lowerCase(e, "llvm.x86.sse.cmp.ps", abi.Simd(abi.F32, 4),
		vec(abi.Simd(abi.F32, 4), f32s(1, 2, 3, 4)...),
		vec(abi.Simd(abi.F32, 8), f32s(1, 2, 3, 4, 5, 6, 7, 8)...),
		konst(abi.I8, 0))
	require.ErrorIs(t, err, emulate.ErrInvariant)

	_, err = lowerCase(e, "llvm.x86.sse.cmp.ps", abi.Simd(abi.I32, 4),
		vec(abi.Simd(abi.I32, 4), 1, 2, 3, 4),
		vec(abi.Simd(abi.I32, 4), 1, 2, 3, 4),
		konst(abi.I8, 0))
	require.ErrorIs(t, err, emulate.ErrInvariant)

	var fe *emulate.FatalError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "llvm.x86.sse.cmp.ps", fe.Intrinsic)
}

func TestShiftByLargeImmediate(t *testing.T) {
	ty := abi.Simd(abi.U32, 4)
	got := runChecked(t, newEngine(), "llvm.x86.sse2.pslli.d", ty,
		vec(ty, 1, 2, 3, math.MaxUint32), konst(abi.I32, 35))
	require.Equal(t, []uint64{0, 0, 0, 0}, got.Lanes)
}

func TestShiftImmediate(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	e := newEngine()
	for _, name := range []string{
		"llvm.x86.sse2.psrli.w", "llvm.x86.sse2.psrli.d", "llvm.x86.sse2.psrli.q",
		"llvm.x86.sse2.pslli.w", "llvm.x86.sse2.pslli.d", "llvm.x86.sse2.pslli.q",
		"llvm.x86.avx2.psrli.d", "llvm.x86.avx2.pslli.w",
	} {
		rule := e.Lookup(name)
		w := rule.Width
		lanes := 128 / w
		if strings.Contains(name, "avx2") {
			lanes *= 2
		}
		ty := abi.Simd(abi.Type{Kind: abi.KindUint, Bits: w}, lanes)
		t.Run(name, func(t *testing.T) {
			for _, imm := range []uint64{0, 1, uint64(w/2 + 1), uint64(w - 1), uint64(w), uint64(w + 3), 255, math.MaxUint32} {
				x := randomLanes(rng, lanes, w)
				got := runChecked(t, e, name, ty, vec(ty, x...), konst(abi.I32, imm))
				for i, lane := range got.Lanes {
					var want uint64
					switch {
					case imm >= uint64(w):
					case rule.Intrinsic == emulate.IntrinsicShiftLeftImm:
						want = x[i] << imm
						if w < 64 {
							want &= 1<<w - 1
						}
					default:
						want = x[i] >> imm
					}
					require.Equal(t, want, lane, "lane %d of %#x shifted by %d", i, x[i], imm)
				}
			}
		})
	}
}

func TestShiftRejectsBadOperands(t *testing.T) {
	e := newEngine()
	ty := abi.Simd(abi.U32, 4)
	tests := []struct {
		name string
		ret  abi.Type
		args []casefile.Arg
		want error
	}{
		{"runtime immediate", ty, []casefile.Arg{vec(ty, 1, 2, 3, 4), scalar(abi.I32, 1)}, emulate.ErrNotConstant},
		{"narrow immediate", ty, []casefile.Arg{vec(ty, 1, 2, 3, 4), konst(abi.I8, 1)}, emulate.ErrNotConstant},
		{"wrong lane width", abi.Simd(abi.U16, 8), []casefile.Arg{vec(abi.Simd(abi.U16, 8), make([]uint64, 8)...), konst(abi.I32, 1)}, emulate.ErrInvariant},
		{"float lanes", abi.Simd(abi.F32, 4), []casefile.Arg{vec(abi.Simd(abi.F32, 4), f32s(1, 2, 3, 4)...), konst(abi.I32, 1)}, emulate.ErrInvariant},
		{"result type", abi.Simd(abi.U64, 2), []casefile.Arg{vec(ty, 1, 2, 3, 4), konst(abi.I32, 1)}, emulate.ErrInvariant},
		{"missing operand", ty, []casefile.Arg{vec(ty, 1, 2, 3, 4)}, emulate.ErrInvariant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := lowerCase(e, "llvm.x86.sse2.psrli.d", tt.ret, tt.args...)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStoreUnaligned(t *testing.T) {
	e := newEngine()
	ty := abi.Simd(abi.F32, 4)
	got := runChecked(t, e, "llvm.x86.sse.storeu.ps", abi.Unit, ptr(16), vec(ty, f32s(1, -2, 0.5, 8)...))
	require.Equal(t, []byte{
		0x00, 0x00, 0x80, 0x3f,
		0x00, 0x00, 0x00, 0xc0,
		0x00, 0x00, 0x00, 0x3f,
		0x00, 0x00, 0x00, 0x41,
	}, got.Mem)

	// The bytes past the vector stay untouched.
	bytesTy := abi.Simd(abi.U8, 16)
	lanes := make([]uint64, 16)
	for i := range lanes {
		lanes[i] = uint64(0xa0 + i)
	}
	got = run(t, e, "llvm.x86.sse2.storeu.dq", abi.Unit, ptr(20), vec(bytesTy, lanes...))
	require.Len(t, got.Mem, 20)
	require.Equal(t, byte(0xaf), got.Mem[15])
	require.Equal(t, []byte{0, 0, 0, 0}, got.Mem[16:])
}

func TestStoreUnalignedRejectsBadOperands(t *testing.T) {
	e := newEngine()
	ty := abi.Simd(abi.F32, 4)
	_, err := lowerCase(e, "llvm.x86.sse.storeu.ps", abi.Unit, scalar(abi.I32, 0), vec(ty, f32s(1, 2, 3, 4)...))
	require.ErrorIs(t, err, emulate.ErrInvariant)

	_, err = lowerCase(e, "llvm.x86.sse.storeu.ps", abi.I32, ptr(16), vec(ty, f32s(1, 2, 3, 4)...))
	require.ErrorIs(t, err, emulate.ErrInvariant)

	_, err = lowerCase(e, "llvm.x86.sse.storeu.ps", abi.Unit, ptr(16), scalar(abi.F32, 0))
	require.ErrorIs(t, err, emulate.ErrInvariant)
}

func TestAddCarry(t *testing.T) {
	e := newEngine()
	ret := abi.Tuple(abi.U8, abi.U64)
	got := runChecked(t, e, "llvm.x86.addcarry.64", ret,
		scalar(abi.U8, 0), scalar(abi.U64, math.MaxUint64), scalar(abi.U64, 1))
	require.Equal(t, []uint64{1, 0}, got.Fields)

	got = runChecked(t, e, "llvm.x86.addcarry.64", ret,
		scalar(abi.U8, 1), scalar(abi.U64, math.MaxUint64), scalar(abi.U64, math.MaxUint64))
	require.Equal(t, []uint64{1, math.MaxUint64}, got.Fields)
}

func TestCarryIdentities(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	e := newEngine()
	edges := []uint64{0, 1, math.MaxUint32, math.MaxUint64 - 1, math.MaxUint64}
	pick := func() uint64 {
		if rng.Intn(3) == 0 {
			return edges[rng.Intn(len(edges))]
		}
		return rng.Uint64()
	}

	for i := range 200 {
		a, b, c := pick(), pick(), uint64(rng.Intn(2))
		name := fmt.Sprintf("%d/%#x/%#x/%d", i, a, b, c)

		// 65-bit sum: c_out*2^64 + res == a + b + c.
		got := runChecked(t, e, "llvm.x86.addcarry.64", abi.Tuple(abi.U8, abi.U64),
			scalar(abi.U8, c), scalar(abi.U64, a), scalar(abi.U64, b))
		sum, carry := bits.Add64(a, b, c)
		require.Equal(t, []uint64{carry, sum}, got.Fields, "add %s", name)

		// Borrow: res == a - b - c mod 2^64, b_out set iff a < b + c.
		got = runChecked(t, e, "llvm.x86.subborrow.64", abi.Tuple(abi.U8, abi.U64),
			scalar(abi.U8, c), scalar(abi.U64, a), scalar(abi.U64, b))
		diff, borrow := bits.Sub64(a, b, c)
		require.Equal(t, []uint64{borrow, diff}, got.Fields, "sub %s", name)

		a32, b32 := a&math.MaxUint32, b&math.MaxUint32
		got = runChecked(t, e, "llvm.x86.addcarry.32", abi.Tuple(abi.U8, abi.U32),
			scalar(abi.U8, c), scalar(abi.U32, a32), scalar(abi.U32, b32))
		wide := a32 + b32 + c
		require.Equal(t, []uint64{wide >> 32, wide & math.MaxUint32}, got.Fields, "add32 %s", name)

		got = runChecked(t, e, "llvm.x86.subborrow.32", abi.Tuple(abi.U8, abi.U32),
			scalar(abi.U8, c), scalar(abi.U32, a32), scalar(abi.U32, b32))
		d32, b32out := bits.Sub32(uint32(a32), uint32(b32), uint32(c))
		require.Equal(t, []uint64{uint64(b32out), uint64(d32)}, got.Fields, "sub32 %s", name)
	}
}

func TestCarryInIsZeroExtended(t *testing.T) {
	// Any non-zero byte above bit 0 is added as is.
	got := run(t, newEngine(), "llvm.x86.addcarry.64", abi.Tuple(abi.U8, abi.U64),
		scalar(abi.U8, 0xff), scalar(abi.U64, 1), scalar(abi.U64, 2))
	require.Equal(t, []uint64{0, 0x102}, got.Fields)
}

func TestCarryRejectsBadOperands(t *testing.T) {
	e := newEngine()
	_, err := lowerCase(e, "llvm.x86.addcarry.64", abi.Tuple(abi.U8, abi.U64),
		scalar(abi.U8, 0), scalar(abi.U32, 1), scalar(abi.U32, 2))
	require.ErrorIs(t, err, emulate.ErrInvariant)

	_, err = lowerCase(e, "llvm.x86.subborrow.32", abi.Tuple(abi.U8, abi.U64),
		scalar(abi.U8, 0), scalar(abi.U32, 1), scalar(abi.U32, 2))
	require.ErrorIs(t, err, emulate.ErrInvariant)

	_, err = lowerCase(e, "llvm.x86.addcarry.32", abi.Tuple(abi.U8, abi.U32),
		scalar(abi.F32, 0), scalar(abi.U32, 1), scalar(abi.U32, 2))
	require.ErrorIs(t, err, emulate.ErrInvariant)
}

func TestShuffleBytes(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	e := newEngine()
	for _, tt := range []struct {
		name  string
		lanes int
	}{
		{"llvm.x86.ssse3.pshuf.b.128", 16},
		{"llvm.x86.avx2.pshuf.b", 32},
	} {
		t.Run(tt.name, func(t *testing.T) {
			ty := abi.Simd(abi.I8, tt.lanes)
			for range 20 {
				tbl := randomLanes(rng, tt.lanes, 8)
				idx := randomLanes(rng, tt.lanes, 8)
				got := runChecked(t, e, tt.name, ty, vec(ty, tbl...), vec(ty, idx...))
				for i, sel := range idx {
					want := tbl[i/16*16+int(sel&15)]
					if sel&0x80 != 0 {
						want = 0
					}
					require.Equal(t, want, got.Lanes[i], "lane %d, index %#x", i, sel)
				}
			}
		})
	}

	_, err := lowerCase(e, "llvm.x86.ssse3.pshuf.b.128", abi.Simd(abi.I16, 8),
		vec(abi.Simd(abi.I16, 8), make([]uint64, 8)...), vec(abi.Simd(abi.I16, 8), make([]uint64, 8)...))
	require.ErrorIs(t, err, emulate.ErrInvariant)
}

func TestPermute128(t *testing.T) {
	e := newEngine()
	for _, ty := range []abi.Type{abi.Simd(abi.I64, 4), abi.Simd(abi.I32, 8), abi.Simd(abi.U8, 32)} {
		t.Run(ty.String(), func(t *testing.T) {
			n, elem, _ := ty.SimdSizeAndType()
			a := randomLanes(rand.New(rand.NewSource(6)), n, elem.Bits)
			b := randomLanes(rand.New(rand.NewSource(7)), n, elem.Bits)
			for ctl := range uint64(256) {
				runChecked(t, e, "llvm.x86.avx2.vperm2i128", ty, vec(ty, a...), vec(ty, b...), konst(abi.I8, ctl))
			}
		})
	}

	ty := abi.Simd(abi.I64, 4)
	got := run(t, e, "llvm.x86.avx2.vperm2i128", ty, vec(ty, 0, 1, 2, 3), vec(ty, 10, 11, 12, 13), konst(abi.I8, 0x21))
	require.Equal(t, []uint64{2, 3, 10, 11}, got.Lanes)

	_, err := lowerCase(e, "llvm.x86.avx2.vperm2i128", abi.Simd(abi.I64, 2),
		vec(abi.Simd(abi.I64, 2), 0, 1), vec(abi.Simd(abi.I64, 2), 0, 1), konst(abi.I8, 0x20))
	require.ErrorIs(t, err, emulate.ErrInvariant)
}

func TestUnsupportedIntrinsic(t *testing.T) {
	const name = "llvm.x86.sse2.psrai.d"
	ty := abi.Simd(abi.I32, 4)

	l, err := lowerCase(newEngine(), name, ty, vec(ty, 1, 2, 3, 4), konst(abi.I32, 1))
	require.NoError(t, err)
	require.Len(t, l.Diagnostics, 1)
	require.Contains(t, l.Diagnostics[0], name)

	entry := l.Func.Blocks[0]
	require.Len(t, entry.Insts, 1, "only the trap is emitted")
	term := entry.Terminator()
	require.NotNil(t, term)
	require.Equal(t, ir.OpTrap, term.Op)
	require.Equal(t, ir.TrapUnimplemented, term.Trap)
	require.Equal(t, name, term.Msg)

	got, err := l.Run()
	require.NoError(t, err)
	require.Equal(t, "unimplemented", got.Trap)

	_, err = lowerCase(newEngine(emulate.WithStrictUnsupported(true)), name, ty, vec(ty, 1, 2, 3, 4), konst(abi.I32, 1))
	require.ErrorIs(t, err, emulate.ErrUnsupported)
	require.True(t, emulate.IsFatal(err))
}

func TestMissingDestination(t *testing.T) {
	fx := codegen.NewFunctionCx("diverging")
	ty := abi.Simd(abi.F32, 4)
	v := fx.Param(ty)

	err := newEngine().LowerCall(fx, emulate.Call{
		Name: "llvm.x86.sse.movmsk.ps",
		Args: []codegen.Operand{codegen.Copy(v)},
	})
	require.ErrorIs(t, err, emulate.ErrCorruption)

	term := fx.Func().Blocks[0].Terminator()
	require.NotNil(t, term)
	require.Equal(t, ir.TrapUnreachable, term.Trap)
	require.Equal(t, emulate.CorruptionMessage, term.Msg)

	mem := ir.NewMemory()
	addr := mem.Alloc(16, 16)
	var trap *ir.TrapError
	require.ErrorAs(t, ir.Run(fx.Func(), mem, addr), &trap)
	require.Equal(t, ir.TrapUnreachable, trap.Code)
}

func TestJumpsToDestination(t *testing.T) {
	fx := codegen.NewFunctionCx("jump")
	ty := abi.Simd(abi.F32, 4)
	v := fx.Param(ty)
	ret := fx.ParamPlace(abi.I32)

	err := newEngine().LowerCall(fx, emulate.Call{
		Name: "llvm.x86.sse.movmsk.ps",
		Args: []codegen.Operand{codegen.Copy(v)},
		Dest: &emulate.Destination{Place: ret, Target: 7},
	})
	require.NoError(t, err)
	term := fx.Func().Blocks[0].Terminator()
	require.NotNil(t, term)
	require.Equal(t, ir.OpJump, term.Op)
	require.Same(t, fx.Block(7), term.Target)
}

func TestLoggingAndVerification(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	e := newEngine(emulate.WithLogger(logger))

	ty := abi.Simd(abi.U16, 8)
	run(t, e, "llvm.x86.sse2.psrli.w", ty, vec(ty, make([]uint64, 8)...), konst(abi.I32, 3))
	require.Contains(t, buf.String(), "lowered intrinsic")
	require.Contains(t, buf.String(), "intrinsic=llvm.x86.sse2.psrli.w")
	require.Contains(t, buf.String(), "rule=LaneWise")
}

func TestReadLane(t *testing.T) {
	fx := codegen.NewFunctionCx("lanes")
	v := fx.Param(abi.Simd(abi.I16, 8))

	n, elem, err := emulate.LaneCountAndType(v)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.True(t, elem.Equal(abi.I16))

	lane, err := emulate.ReadLane(fx, v, 7)
	require.NoError(t, err)
	require.Equal(t, ir.I16, fx.Func().ValueType(lane))

	_, err = emulate.ReadLane(fx, v, 8)
	require.ErrorIs(t, err, emulate.ErrInvariant)
	_, _, err = emulate.LaneCountAndType(fx.Param(abi.U64))
	require.ErrorIs(t, err, emulate.ErrInvariant)
}

func TestResolveConstant(t *testing.T) {
	fx := codegen.NewFunctionCx("const")
	got, err := emulate.ResolveConstant(fx, codegen.Constant(codegen.Const{Ty: abi.I32, Bits: 35}), 4)
	require.NoError(t, err)
	require.Equal(t, uint64(35), got)

	_, err = emulate.ResolveConstant(fx, codegen.Constant(codegen.Const{Ty: abi.I32, Bits: 35}), 1)
	require.ErrorIs(t, err, emulate.ErrNotConstant)

	_, err = emulate.ResolveConstant(fx, codegen.Copy(fx.Param(abi.I32)), 4)
	require.ErrorIs(t, err, emulate.ErrNotConstant)
}

func TestFatalError(t *testing.T) {
	err := &emulate.FatalError{Intrinsic: "llvm.x86.foo", Err: emulate.ErrUnsupported}
	require.Equal(t, "emulate llvm.x86.foo: unsupported intrinsic", err.Error())
	require.True(t, errors.Is(err, emulate.ErrUnsupported))
	require.True(t, emulate.IsFatal(fmt.Errorf("wrapped: %w", err)))
	require.False(t, emulate.IsFatal(emulate.ErrUnsupported))
}
