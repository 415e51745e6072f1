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

	"github.com/ajroetker/hwyemu/ir"
)

// CorruptionMessage is the message of the trap emitted when a call that
// should return has no destination.
const CorruptionMessage = "[corruption] Diverging intrinsic returned."

// finalize terminates the current block after a lowering: a jump to the
// destination's successor, or a trap when there is no destination. None of
// the emulated intrinsics diverge, so the trap case is reported as
// ErrCorruption.
func finalize(fx FunctionCx, dest *Destination) error {
	b := fx.Builder()
	if dest == nil {
		b.Trap(ir.TrapUnreachable, CorruptionMessage)
		return fmt.Errorf("%w: call without destination", ErrCorruption)
	}
	b.Jump(fx.Block(dest.Target))
	return nil
}
