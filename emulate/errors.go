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

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by FatalError. Test for them with errors.Is.
var (
	// ErrInvariant means the call broke a precondition of its lowering:
	// mismatched lane counts, wrong lane or operand types, too many lanes,
	// wrong argument count.
	ErrInvariant = errors.New("invariant violation")

	// ErrNotConstant means an operand that must be an immediate is not a
	// compile-time constant of the expected width.
	ErrNotConstant = errors.New("operand is not a compile-time constant")

	// ErrUnknownCmpKind means a comparison predicate code is outside the
	// encodings the instruction set defines.
	ErrUnknownCmpKind = errors.New("unknown comparison kind")

	// ErrUnimplemented means a predicate is recognized but its lowering has
	// deliberately not been written.
	ErrUnimplemented = errors.New("not yet implemented")

	// ErrCorruption means a call to a non-diverging intrinsic had no
	// destination.
	ErrCorruption = errors.New("corruption")

	// ErrUnsupported is returned for unknown intrinsics when the engine runs
	// with WithStrictUnsupported.
	ErrUnsupported = errors.New("unsupported intrinsic")
)

// FatalError aborts code generation of the current unit. The function being
// lowered is left in an unspecified state.
type FatalError struct {
	// Intrinsic is the name of the call being lowered.
	Intrinsic string

	// Err is the underlying error; it wraps one of the sentinel errors.
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("emulate %s: %v", e.Intrinsic, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err aborts the current unit.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
