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
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/ir"
)

// finish terminates the current block and checks the function.
func finish(t *testing.T, fx *FunctionCx) {
	t.Helper()
	fx.Builder().Return()
	require.NoError(t, ir.Verify(fx.Func()))
}

func TestWriteCValueCopiesVector(t *testing.T) {
	ty := abi.Simd(abi.U8, 15)
	fx := NewFunctionCx("copy")
	src := fx.Param(ty)
	dst := fx.ParamPlace(ty)
	dst.WriteCValue(fx.Builder(), src)
	finish(t, fx)

	mem := ir.NewMemory()
	in := mem.Alloc(15, 1)
	out := mem.Alloc(15, 1)
	data := []byte("abcdefghijklmno")
	require.NoError(t, mem.Write(in, data))
	require.NoError(t, ir.Run(fx.Func(), mem, in, out))

	got, err := mem.Read(out, 15)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestWriteCValueTypeMismatch(t *testing.T) {
	fx := NewFunctionCx("mismatch")
	src := fx.Param(abi.Simd(abi.F32, 4))
	dst := fx.ParamPlace(abi.Simd(abi.I32, 4))
	require.Panics(t, func() { dst.WriteCValue(fx.Builder(), src) })
}

func TestPlaceFieldAndForceStack(t *testing.T) {
	ty := abi.Tuple(abi.U8, abi.U64)
	fx := NewFunctionCx("pair")
	x := fx.Param(abi.U64)
	dst := fx.ParamPlace(ty)
	b := fx.Builder()

	// Round the pair through a stack temporary before writing it out.
	flag := b.Iconst(ir.I8, 1)
	tmp := ByValPair(flag, x.LoadScalar(b), abi.LayoutOf(ty))
	ptr := tmp.ForceStack(b)
	onStack := ByRef(ptr, abi.LayoutOf(ty))
	dst.PlaceField(1).WriteCValue(b, onStack.ValueField(b, 1))
	dst.PlaceField(0).WriteCValue(b, onStack.ValueField(b, 0))
	finish(t, fx)
	require.Len(t, fx.Func().Slots, 1)

	mem := ir.NewMemory()
	out := mem.Alloc(16, 8)
	require.NoError(t, ir.Run(fx.Func(), mem, 0xdeadbeef, out))
	raw, err := mem.Read(out, 16)
	require.NoError(t, err)
	require.Equal(t, byte(1), raw[0])
	require.Equal(t, uint64(0xdeadbeef), binary.LittleEndian.Uint64(raw[8:]))
}

func TestCheckedIntBinop(t *testing.T) {
	tests := []struct {
		name     string
		op       BinOp
		ty       abi.Type
		x, y     uint64
		want     uint64
		overflow uint64
	}{
		{"add", BinOpAdd, abi.U64, 2, 3, 5, 0},
		{"add carry", BinOpAdd, abi.U64, math.MaxUint64, 1, 0, 1},
		{"add max", BinOpAdd, abi.U64, math.MaxUint64, math.MaxUint64, math.MaxUint64 - 1, 1},
		{"sub", BinOpSub, abi.U64, 5, 3, 2, 0},
		{"sub borrow", BinOpSub, abi.U64, 0, 1, math.MaxUint64, 1},
		{"add32 carry", BinOpAdd, abi.U32, math.MaxUint32, 2, 1, 1},
		{"sub32 borrow", BinOpSub, abi.U32, 1, 2, math.MaxUint32, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := NewFunctionCx(tt.name)
			x := fx.Param(tt.ty)
			y := fx.Param(tt.ty)
			ret := fx.ParamPlace(abi.Tuple(tt.ty, abi.Bool))
			res := CheckedIntBinop(fx.Builder(), tt.op, x, y)
			require.True(t, res.Type().Equal(ret.Layout().Ty))
			ret.WriteCValue(fx.Builder(), res)
			finish(t, fx)

			l := ret.Layout()
			mem := ir.NewMemory()
			out := mem.Alloc(l.Size, l.Align)
			require.NoError(t, ir.Run(fx.Func(), mem, tt.x, tt.y, out))

			it, _ := tt.ty.IRType()
			got, err := mem.LoadBits(it, out)
			require.NoError(t, err)
			_, off := l.Field(1)
			of, err := mem.LoadBits(ir.I8, out+uint64(off))
			require.NoError(t, err)
			require.Equal(t, tt.want, got, "value")
			require.Equal(t, tt.overflow, of, "overflow")
		})
	}
}

func TestCheckedIntBinopRejectsSigned(t *testing.T) {
	fx := NewFunctionCx("signed")
	x := fx.Param(abi.I64)
	require.Panics(t, func() { CheckedIntBinop(fx.Builder(), BinOpAdd, x, x) })
}

func TestIntCast(t *testing.T) {
	fx := NewFunctionCx("cast")
	b := fx.Builder()
	x := b.Iconst(ir.I8, -1)
	require.Equal(t, x, IntCast(b, x, ir.I8, false))

	wide := IntCast(b, x, ir.I64, false)
	signed := IntCast(b, x, ir.I64, true)
	narrow := IntCast(b, b.Iconst(ir.I32, 0x1ff), ir.I8, false)
	f := fx.Func()
	require.Equal(t, ir.I64, f.ValueType(wide))
	require.Equal(t, ir.I64, f.ValueType(signed))
	require.Equal(t, ir.I8, f.ValueType(narrow))

	p := f.AddParam(ir.PointerType)
	b.Store(wide, p, 0)
	b.Store(signed, p, 8)
	b.Store(narrow, p, 16)
	finish(t, fx)

	mem := ir.NewMemory()
	out := mem.Alloc(17, 8)
	require.NoError(t, ir.Run(f, mem, out))
	raw, err := mem.Read(out, 17)
	require.NoError(t, err)
	require.Equal(t, uint64(0xff), binary.LittleEndian.Uint64(raw[0:]))
	require.Equal(t, uint64(math.MaxUint64), binary.LittleEndian.Uint64(raw[8:]))
	require.Equal(t, byte(0xff), raw[16])
}

func TestCodegenOperand(t *testing.T) {
	fx := NewFunctionCx("const")
	op := Constant(Const{Ty: abi.F32, Bits: uint64(math.Float32bits(1.5))})
	require.True(t, op.IsConst())
	require.True(t, op.Type().Equal(abi.F32))

	c, ok := fx.ConstValue(op)
	require.True(t, ok)
	bits, ok := c.TryToBits(4)
	require.True(t, ok)
	require.Equal(t, uint64(0x3fc00000), bits)
	_, ok = c.TryToBits(8)
	require.False(t, ok)

	v := fx.CodegenOperand(op)
	require.Equal(t, ir.F32, fx.Func().ValueType(v.LoadScalar(fx.Builder())))

	_, ok = fx.ConstValue(Copy(fx.Param(abi.U8)))
	require.False(t, ok)
}

func TestBlocksAndDiagnostics(t *testing.T) {
	fx := NewFunctionCx("blocks")
	b1 := fx.Block(1)
	require.Same(t, b1, fx.Block(1))
	require.NotSame(t, b1, fx.Block(2))
	require.Len(t, fx.Func().Blocks, 3)

	fx.Warn("unsupported %s", "thing")
	require.Equal(t, []string{"unsupported thing"}, fx.Diagnostics())
}
