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

import "github.com/ajroetker/hwyemu/ir"

// lowerUnsupported replaces a call to an unknown intrinsic with a trap that
// names it. The destination is not written and no jump is emitted.
func (e *Engine) lowerUnsupported(fx FunctionCx, call Call) error {
	fx.Warn("unsupported llvm intrinsic %s; replacing with trap", call.Name)
	fx.Builder().Trap(ir.TrapUnimplemented, call.Name)
	if e.strict {
		return &FatalError{Intrinsic: call.Name, Err: ErrUnsupported}
	}
	return nil
}
