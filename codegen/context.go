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

// Package codegen is the function-lowering context that intrinsic lowerings
// run in.
//
// A FunctionCx owns the IR function under construction, the builder
// positioned at the current block, and the mapping from source basic block
// ids to IR blocks. CValue and CPlace are the typed values and storage
// locations that lowerings read and write.
package codegen

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/ir"
)

// BlockID identifies a source basic block.
type BlockID int

// FunctionCx is the lowering state of one function.
type FunctionCx struct {
	fn     *ir.Func
	bcx    *ir.Builder
	blocks map[BlockID]*ir.Block
	logger *slog.Logger
	diags  []string
}

// Option configures a FunctionCx.
type Option func(*FunctionCx)

// WithLogger sets the logger diagnostics are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(fx *FunctionCx) {
		fx.logger = l
	}
}

// NewFunctionCx creates the context for a new function positioned at its
// entry block.
func NewFunctionCx(name string, opts ...Option) *FunctionCx {
	fn := ir.NewFunc(name)
	fx := &FunctionCx{
		fn:     fn,
		bcx:    ir.NewBuilder(fn),
		blocks: make(map[BlockID]*ir.Block),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(fx)
	}
	return fx
}

// Func returns the function under construction.
func (fx *FunctionCx) Func() *ir.Func {
	return fx.fn
}

// Builder returns the builder positioned at the current block.
func (fx *FunctionCx) Builder() *ir.Builder {
	return fx.bcx
}

// Block returns the IR block of a source basic block, creating it on first use.
func (fx *FunctionCx) Block(id BlockID) *ir.Block {
	if b, ok := fx.blocks[id]; ok {
		return b
	}
	b := fx.bcx.CreateBlock()
	fx.blocks[id] = b
	return b
}

// LayoutOf computes the layout of t.
func (fx *FunctionCx) LayoutOf(t abi.Type) abi.Layout {
	return abi.LayoutOf(t)
}

// ConstValue returns the compile-time value of op, if it has one.
func (fx *FunctionCx) ConstValue(op Operand) (Const, bool) {
	if op.c == nil {
		return Const{}, false
	}
	return *op.c, true
}

// CodegenOperand returns op as a value, materializing constants.
func (fx *FunctionCx) CodegenOperand(op Operand) CValue {
	if op.c == nil {
		return op.value
	}
	t, ok := op.c.Ty.IRType()
	if !ok {
		panic(fmt.Sprintf("codegen: cannot materialize %s", op.c))
	}
	v := fx.bcx.Iconst(ir.IntType(t.Bits()), int64(op.c.Bits))
	if t.IsFloat() {
		v = fx.bcx.Bitcast(t, v)
	}
	return ByVal(v, abi.LayoutOf(op.c.Ty))
}

// Param declares a function parameter of type t. Scalars are passed by
// value; everything else is passed by reference.
func (fx *FunctionCx) Param(t abi.Type) CValue {
	layout := abi.LayoutOf(t)
	if it, ok := t.IRType(); ok {
		return ByVal(fx.fn.AddParam(it), layout)
	}
	return ByRef(Pointer{Base: fx.fn.AddParam(ir.PointerType)}, layout)
}

// ParamPlace declares a pointer parameter addressing a place of type t.
func (fx *FunctionCx) ParamPlace(t abi.Type) CPlace {
	return PlaceForPtr(Pointer{Base: fx.fn.AddParam(ir.PointerType)}, abi.LayoutOf(t))
}

// Warn emits a non-fatal diagnostic.
func (fx *FunctionCx) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fx.diags = append(fx.diags, msg)
	fx.logger.Warn(msg, "function", fx.fn.Name)
}

// Diagnostics returns the diagnostics emitted so far.
func (fx *FunctionCx) Diagnostics() []string {
	return fx.diags
}
