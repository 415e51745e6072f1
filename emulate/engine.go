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

// Package emulate lowers calls to x86 vector and carry intrinsics into
// scalar IR.
//
// An Engine maps an intrinsic name to a lowering rule. LowerCall binds the
// call's arguments, runs the lowering (which writes the call's destination at
// most once), and terminates the current block with exactly one instruction:
// a jump to the successor block, or a trap.
//
// Intrinsics the engine does not know are replaced by a trap after a single
// diagnostic, so the compiled program fails at the call site instead of
// running with wrong semantics.
package emulate

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/samber/lo"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/codegen"
	"github.com/ajroetker/hwyemu/ir"
)

// FunctionCx is what a lowering needs from the function being compiled.
// *codegen.FunctionCx implements it.
type FunctionCx interface {
	// Builder returns the builder positioned at the current block.
	Builder() *ir.Builder

	// Block returns the IR block of a source basic block.
	Block(id codegen.BlockID) *ir.Block

	// LayoutOf computes the layout of t.
	LayoutOf(t abi.Type) abi.Layout

	// ConstValue returns the compile-time value of op, if it has one.
	ConstValue(op codegen.Operand) (codegen.Const, bool)

	// CodegenOperand returns op as a value, materializing constants.
	CodegenOperand(op codegen.Operand) codegen.CValue

	// Warn emits a non-fatal diagnostic.
	Warn(format string, args ...any)
}

// Destination is where a call writes its result and where control continues.
type Destination struct {
	Place  codegen.CPlace
	Target codegen.BlockID
}

// Call is one intrinsic call site.
type Call struct {
	Name string

	// Substs are the generic type arguments of the call. The x86 intrinsics
	// lowered here are not generic, so they are carried but unused.
	Substs []abi.Type

	Args []codegen.Operand

	// Dest is nil for a diverging call.
	Dest *Destination
}

// Engine lowers intrinsic calls. An Engine is read-only after construction
// and may be shared by goroutines lowering different functions.
type Engine struct {
	table  map[string]Rule
	logger *slog.Logger
	strict bool
	verify bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger that receives one debug record per lowering.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithStrictUnsupported makes unsupported intrinsics a fatal error in
// addition to the trap that replaces them.
func WithStrictUnsupported(strict bool) Option {
	return func(e *Engine) {
		e.strict = strict
	}
}

// WithVerify checks the lowered block with ir.VerifyBlock after every call.
func WithVerify(verify bool) Option {
	return func(e *Engine) {
		e.verify = verify
	}
}

// NewEngine creates an engine with the builtin intrinsic table.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		table:  maps.Clone(intrinsicTable),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lookup returns the rule for an intrinsic name. Unknown names yield a rule
// with IntrinsicUnsupported.
func (e *Engine) Lookup(name string) Rule {
	if r, ok := e.table[name]; ok {
		return r
	}
	return Rule{Intrinsic: IntrinsicUnsupported}
}

// Names returns the supported intrinsic names in sorted order.
func (e *Engine) Names() []string {
	names := lo.Keys(e.table)
	slices.Sort(names)
	return names
}

// boundArg is a call argument prepared according to the intrinsic's
// signature.
type boundArg struct {
	op     codegen.Operand
	value  codegen.CValue
	scalar ir.Value
}

func bindArgs(fx FunctionCx, in Intrinsic, ops []codegen.Operand) ([]boundArg, error) {
	sig := in.Signature()
	if len(ops) != len(sig) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrInvariant, in, len(sig), len(ops))
	}
	args := make([]boundArg, len(ops))
	for i, kind := range sig {
		args[i].op = ops[i]
		switch kind {
		case ArgValue:
			args[i].value = fx.CodegenOperand(ops[i])
		case ArgScalar:
			v := fx.CodegenOperand(ops[i])
			if !v.Type().IsScalar() {
				return nil, fmt.Errorf("%w: argument %d of %s must be a scalar, got %s", ErrInvariant, i, in, v.Type())
			}
			args[i].scalar = v.LoadScalar(fx.Builder())
		case ArgConst:
			// Resolved by the lowering, which knows the expected width.
		}
	}
	return args, nil
}

// LowerCall lowers one intrinsic call into the current block of fx.
//
// A nil error means the block now ends in a jump to the destination's
// successor, or, for an unsupported intrinsic, in a trap. Any other outcome
// is a *FatalError and the function being compiled must be abandoned.
func (e *Engine) LowerCall(fx FunctionCx, call Call) (err error) {
	rule := e.Lookup(call.Name)
	start := fx.Builder().CurrentBlock()
	before := len(start.Insts)

	defer func() {
		if r := recover(); r != nil {
			err = &FatalError{Intrinsic: call.Name, Err: fmt.Errorf("%w: %v", ErrInvariant, r)}
		}
	}()

	switch {
	case rule.Intrinsic == IntrinsicUnsupported:
		err = e.lowerUnsupported(fx, call)
	case call.Dest == nil:
		// Nothing to write to; the finalizer traps.
		err = finalize(fx, nil)
	default:
		err = e.lower(fx, rule, call)
	}
	if err == nil && e.verify {
		if verr := ir.VerifyBlock(fx.Builder().Func(), start); verr != nil {
			err = fmt.Errorf("%w: lowered block is malformed: %w", ErrInvariant, verr)
		}
	}
	if err != nil {
		if IsFatal(err) {
			return err
		}
		return &FatalError{Intrinsic: call.Name, Err: err}
	}

	e.logger.Debug("lowered intrinsic",
		"intrinsic", call.Name,
		"rule", rule.Intrinsic.Rule(),
		"insts", len(start.Insts)-before)
	return nil
}

func (e *Engine) lower(fx FunctionCx, rule Rule, call Call) error {
	args, err := bindArgs(fx, rule.Intrinsic, call.Args)
	if err != nil {
		return err
	}
	ret := call.Dest.Place

	switch rule.Intrinsic {
	case IntrinsicMoveMask:
		err = lowerMoveMask(fx, args[0].value, ret)
	case IntrinsicComparePacked:
		err = lowerComparePacked(fx, args[0].value, args[1].value, args[2].op, ret)
	case IntrinsicShiftRightImm:
		err = lowerShiftImm(fx, rule, shiftRight, args[0].value, args[1].op, ret)
	case IntrinsicShiftLeftImm:
		err = lowerShiftImm(fx, rule, shiftLeft, args[0].value, args[1].op, ret)
	case IntrinsicStoreUnaligned:
		err = lowerStoreUnaligned(fx, args[0].scalar, args[1].value, ret)
	case IntrinsicAddCarry:
		err = lowerAddSub(fx, rule, codegen.BinOpAdd, args[0].scalar, args[1].value, args[2].value, ret)
	case IntrinsicSubBorrow:
		err = lowerAddSub(fx, rule, codegen.BinOpSub, args[0].scalar, args[1].value, args[2].value, ret)
	case IntrinsicShuffleBytes:
		err = lowerShuffleBytes(fx, args[0].value, args[1].value, ret)
	case IntrinsicPermute128:
		err = lowerPermute128(fx, args[0].value, args[1].value, args[2].op, ret)
	default:
		err = fmt.Errorf("%w: no lowering for %s", ErrInvariant, rule.Intrinsic)
	}
	if err != nil {
		return err
	}
	return finalize(fx, call.Dest)
}
