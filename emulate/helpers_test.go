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
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajroetker/hwyemu/abi"
	"github.com/ajroetker/hwyemu/emulate"
	"github.com/ajroetker/hwyemu/internal/casefile"
)

func vec(t abi.Type, lanes ...uint64) casefile.Arg {
	return casefile.Arg{Kind: casefile.ArgVec, Type: t, Bits: lanes}
}

func konst(t abi.Type, bits uint64) casefile.Arg {
	return casefile.Arg{Kind: casefile.ArgConst, Type: t, Bits: []uint64{bits}}
}

func scalar(t abi.Type, bits uint64) casefile.Arg {
	return casefile.Arg{Kind: casefile.ArgScalar, Type: t, Bits: []uint64{bits}}
}

func ptr(size int) casefile.Arg {
	return casefile.Arg{Kind: casefile.ArgPtr, Type: abi.RawPtr, Size: size}
}

func f32s(xs ...float32) []uint64 {
	out := make([]uint64, len(xs))
	for i, x := range xs {
		out[i] = uint64(math.Float32bits(x))
	}
	return out
}

// newEngine returns an engine that verifies every lowered block.
func newEngine(opts ...emulate.Option) *emulate.Engine {
	return emulate.NewEngine(append([]emulate.Option{emulate.WithVerify(true)}, opts...)...)
}

// lowerCase lowers c and returns the lowering or the error of LowerCall.
func lowerCase(e *emulate.Engine, name string, ret abi.Type, args ...casefile.Arg) (*casefile.Lowered, error) {
	c := &casefile.Case{Name: name, Intrinsic: name, Args: args, Ret: ret}
	return c.Lower(e)
}

// run lowers and interprets a call that is expected to succeed.
func run(t *testing.T, e *emulate.Engine, name string, ret abi.Type, args ...casefile.Arg) *casefile.Outcome {
	t.Helper()
	l, err := lowerCase(e, name, ret, args...)
	require.NoError(t, err, "lowering %s", name)
	got, err := l.Run()
	require.NoError(t, err, "running %s", name)
	return got
}

// runChecked runs a call and compares its outcome with the hwy reference.
func runChecked(t *testing.T, e *emulate.Engine, name string, ret abi.Type, args ...casefile.Arg) *casefile.Outcome {
	t.Helper()
	got := run(t, e, name, ret, args...)
	c := &casefile.Case{Name: name, Intrinsic: name, Args: args, Ret: ret}
	want, err := c.Reference(e)
	require.NoError(t, err)
	require.NoError(t, casefile.Compare(want, got))
	return got
}

// randomLanes returns n random lane bit patterns of the given width.
func randomLanes(rng *rand.Rand, n, bits int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = rng.Uint64()
		if bits < 64 {
			out[i] &= 1<<bits - 1
		}
	}
	return out
}

// randomFloats returns n float32 lanes including signed zeros and NaNs.
func randomFloats(rng *rand.Rand, n int) []uint64 {
	special := []float32{0, float32(math.Copysign(0, -1)), 1, -1, float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))}
	xs := make([]float32, n)
	for i := range xs {
		if rng.Intn(4) == 0 {
			xs[i] = special[rng.Intn(len(special))]
		} else {
			xs[i] = float32(rng.Intn(7) - 3)
		}
	}
	return f32s(xs...)
}
