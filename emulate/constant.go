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
	"fmt"

	"github.com/ajroetker/hwyemu/codegen"
)

// ResolveConstant returns the bit pattern of op, which must be a
// compile-time constant exactly size bytes wide. Immediates of x86
// instructions are encoded in the instruction, so a runtime value can never
// be lowered.
func ResolveConstant(fx FunctionCx, op codegen.Operand, size int) (uint64, error) {
	c, ok := fx.ConstValue(op)
	if !ok {
		return 0, fmt.Errorf("%w: %s operand", ErrNotConstant, op.Type())
	}
	bits, ok := c.TryToBits(size)
	if !ok {
		return 0, fmt.Errorf("%w: %s is not %d bytes wide", ErrNotConstant, c, size)
	}
	return bits, nil
}
