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

package emulate

import "fmt"

// Intrinsic is a family of intrinsics sharing one lowering.
type Intrinsic int

const (
	// IntrinsicUnsupported is the fallback: the call is replaced by a trap.
	IntrinsicUnsupported Intrinsic = iota

	// IntrinsicMoveMask packs the sign bit of every lane into an i32.
	IntrinsicMoveMask

	// IntrinsicComparePacked compares float lanes with an immediate predicate.
	IntrinsicComparePacked

	// IntrinsicShiftRightImm shifts integer lanes right (logical) by an immediate.
	IntrinsicShiftRightImm

	// IntrinsicShiftLeftImm shifts integer lanes left by an immediate.
	IntrinsicShiftLeftImm

	// IntrinsicStoreUnaligned stores a vector through a raw pointer.
	IntrinsicStoreUnaligned

	// IntrinsicAddCarry adds with carry-in and produces a carry-out.
	IntrinsicAddCarry

	// IntrinsicSubBorrow subtracts with borrow-in and produces a borrow-out.
	IntrinsicSubBorrow

	// IntrinsicShuffleBytes selects bytes by a per-lane index (pshufb).
	IntrinsicShuffleBytes

	// IntrinsicPermute128 selects 128-bit halves by an immediate (vperm2i128).
	IntrinsicPermute128
)

// String returns a human-readable name for the Intrinsic.
func (in Intrinsic) String() string {
	switch in {
	case IntrinsicUnsupported:
		return "Unsupported"
	case IntrinsicMoveMask:
		return "MoveMask"
	case IntrinsicComparePacked:
		return "ComparePacked"
	case IntrinsicShiftRightImm:
		return "ShiftRightImm"
	case IntrinsicShiftLeftImm:
		return "ShiftLeftImm"
	case IntrinsicStoreUnaligned:
		return "StoreUnaligned"
	case IntrinsicAddCarry:
		return "AddCarry"
	case IntrinsicSubBorrow:
		return "SubBorrow"
	case IntrinsicShuffleBytes:
		return "ShuffleBytes"
	case IntrinsicPermute128:
		return "Permute128"
	default:
		return fmt.Sprintf("Intrinsic(%d)", int(in))
	}
}

// RuleKind categorizes how an intrinsic is lowered.
type RuleKind int

const (
	// RuleFallback replaces the call with a trap.
	RuleFallback RuleKind = iota

	// RuleLaneWise applies a scalar transform to every lane independently.
	RuleLaneWise

	// RuleCrossLane combines or moves data between lanes.
	RuleCrossLane

	// RuleMemory forwards a value to memory.
	RuleMemory

	// RuleArithmetic composes several scalar arithmetic stages.
	RuleArithmetic
)

// String returns a human-readable name for the RuleKind.
func (k RuleKind) String() string {
	switch k {
	case RuleFallback:
		return "Fallback"
	case RuleLaneWise:
		return "LaneWise"
	case RuleCrossLane:
		return "CrossLane"
	case RuleMemory:
		return "Memory"
	case RuleArithmetic:
		return "Arithmetic"
	default:
		return fmt.Sprintf("RuleKind(%d)", int(k))
	}
}

// Rule returns the lowering strategy of the intrinsic family.
func (in Intrinsic) Rule() RuleKind {
	switch in {
	case IntrinsicComparePacked, IntrinsicShiftRightImm, IntrinsicShiftLeftImm:
		return RuleLaneWise
	case IntrinsicMoveMask, IntrinsicShuffleBytes, IntrinsicPermute128:
		return RuleCrossLane
	case IntrinsicStoreUnaligned:
		return RuleMemory
	case IntrinsicAddCarry, IntrinsicSubBorrow:
		return RuleArithmetic
	default:
		return RuleFallback
	}
}

// ArgKind says how an argument of an intrinsic is passed to its lowering.
type ArgKind int

const (
	// ArgValue is a computed typed value, possibly a vector.
	ArgValue ArgKind = iota

	// ArgScalar is a raw scalar (an address or a carry byte) loaded into a
	// single IR value.
	ArgScalar

	// ArgConst is an operand that must be a compile-time constant.
	ArgConst
)

// String returns the one-letter signature code of the argument kind.
func (k ArgKind) String() string {
	switch k {
	case ArgValue:
		return "c"
	case ArgScalar:
		return "v"
	case ArgConst:
		return "o"
	default:
		return "?"
	}
}

// Signature returns the argument kinds the intrinsic family takes, in order.
func (in Intrinsic) Signature() []ArgKind {
	switch in {
	case IntrinsicMoveMask:
		return []ArgKind{ArgValue}
	case IntrinsicComparePacked:
		return []ArgKind{ArgValue, ArgValue, ArgConst}
	case IntrinsicShiftRightImm, IntrinsicShiftLeftImm:
		return []ArgKind{ArgValue, ArgConst}
	case IntrinsicStoreUnaligned:
		return []ArgKind{ArgScalar, ArgValue}
	case IntrinsicAddCarry, IntrinsicSubBorrow:
		return []ArgKind{ArgScalar, ArgValue, ArgValue}
	case IntrinsicShuffleBytes:
		return []ArgKind{ArgValue, ArgValue}
	case IntrinsicPermute128:
		return []ArgKind{ArgValue, ArgValue, ArgConst}
	default:
		return nil
	}
}

// Feature returns the x86 extension that introduced the intrinsic family.
func (in Intrinsic) Feature() string {
	switch in {
	case IntrinsicShuffleBytes:
		return "ssse3"
	case IntrinsicPermute128:
		return "avx2"
	case IntrinsicAddCarry, IntrinsicSubBorrow:
		return "adx"
	case IntrinsicUnsupported:
		return ""
	default:
		return "sse2"
	}
}

// Rule is one entry of the dispatch table.
type Rule struct {
	Intrinsic Intrinsic

	// Width is the lane width in bits for shifts and the operand width in
	// bits for carry arithmetic. It is 0 for other families.
	Width int
}

// intrinsicTable maps every supported intrinsic name to its rule.
var intrinsicTable = map[string]Rule{
	// Used by _mm_movemask_epi8, _mm256_movemask_epi8, _mm_movemask_pd and friends.
	"llvm.x86.sse2.pmovmskb.128": {Intrinsic: IntrinsicMoveMask},
	"llvm.x86.avx2.pmovmskb":     {Intrinsic: IntrinsicMoveMask},
	"llvm.x86.sse2.movmsk.pd":    {Intrinsic: IntrinsicMoveMask},
	"llvm.x86.sse.movmsk.ps":     {Intrinsic: IntrinsicMoveMask},
	"llvm.x86.avx.movmsk.ps.256": {Intrinsic: IntrinsicMoveMask},
	"llvm.x86.avx.movmsk.pd.256": {Intrinsic: IntrinsicMoveMask},

	"llvm.x86.sse2.cmp.ps": {Intrinsic: IntrinsicComparePacked},
	"llvm.x86.sse2.cmp.pd": {Intrinsic: IntrinsicComparePacked},
	"llvm.x86.sse.cmp.ps":  {Intrinsic: IntrinsicComparePacked},

	"llvm.x86.sse2.psrli.w": {Intrinsic: IntrinsicShiftRightImm, Width: 16},
	"llvm.x86.sse2.psrli.d": {Intrinsic: IntrinsicShiftRightImm, Width: 32},
	"llvm.x86.sse2.psrli.q": {Intrinsic: IntrinsicShiftRightImm, Width: 64},
	"llvm.x86.avx2.psrli.w": {Intrinsic: IntrinsicShiftRightImm, Width: 16},
	"llvm.x86.avx2.psrli.d": {Intrinsic: IntrinsicShiftRightImm, Width: 32},
	"llvm.x86.avx2.psrli.q": {Intrinsic: IntrinsicShiftRightImm, Width: 64},
	"llvm.x86.sse2.pslli.w": {Intrinsic: IntrinsicShiftLeftImm, Width: 16},
	"llvm.x86.sse2.pslli.d": {Intrinsic: IntrinsicShiftLeftImm, Width: 32},
	"llvm.x86.sse2.pslli.q": {Intrinsic: IntrinsicShiftLeftImm, Width: 64},
	"llvm.x86.avx2.pslli.w": {Intrinsic: IntrinsicShiftLeftImm, Width: 16},
	"llvm.x86.avx2.pslli.d": {Intrinsic: IntrinsicShiftLeftImm, Width: 32},
	"llvm.x86.avx2.pslli.q": {Intrinsic: IntrinsicShiftLeftImm, Width: 64},

	"llvm.x86.sse2.storeu.dq": {Intrinsic: IntrinsicStoreUnaligned},
	"llvm.x86.sse2.storeu.pd": {Intrinsic: IntrinsicStoreUnaligned},
	"llvm.x86.sse.storeu.ps":  {Intrinsic: IntrinsicStoreUnaligned},

	"llvm.x86.addcarry.64":  {Intrinsic: IntrinsicAddCarry, Width: 64},
	"llvm.x86.addcarry.32":  {Intrinsic: IntrinsicAddCarry, Width: 32},
	"llvm.x86.subborrow.64": {Intrinsic: IntrinsicSubBorrow, Width: 64},
	"llvm.x86.subborrow.32": {Intrinsic: IntrinsicSubBorrow, Width: 32},

	"llvm.x86.ssse3.pshuf.b.128": {Intrinsic: IntrinsicShuffleBytes},
	"llvm.x86.avx2.pshuf.b":      {Intrinsic: IntrinsicShuffleBytes},

	"llvm.x86.avx2.vperm2i128": {Intrinsic: IntrinsicPermute128},
}
