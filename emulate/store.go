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
	"github.com/ajroetker/hwyemu/ir"
)

// lowerStoreUnaligned writes the vector a to the address addr. IR loads and
// stores carry no alignment, so the write is forwarded as is.
func lowerStoreUnaligned(fx FunctionCx, addr ir.Value, a codegen.CValue, ret codegen.CPlace) error {
	b := fx.Builder()
	if t := b.Func().ValueType(addr); t != ir.PointerType {
		return fmt.Errorf("%w: store address is %s", ErrInvariant, t)
	}
	if _, _, err := LaneCountAndType(a); err != nil {
		return err
	}
	if ret.Layout().Size != 0 {
		return fmt.Errorf("%w: unaligned store returns %s", ErrInvariant, ret.Layout().Ty)
	}
	dest := codegen.PlaceForPtr(codegen.Pointer{Base: addr}, a.Layout())
	dest.WriteCValue(b, a)
	return nil
}
