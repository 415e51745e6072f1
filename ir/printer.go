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

package ir

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Fprint writes the textual form of f to w.
//
// The format is one instruction per line, indented by two spaces under its
// block label:
//
//	function movemask(v1: i64, v2: i64) {
//	  ss0 = stack_slot 16, align 16
//	block0:
//	  v3 = iconst.i32 0
//	  ...
//	  jump block1
//	}
func Fprint(w io.Writer, f *Func) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "function %s(", f.Name)
	for i, p := range f.Params {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s: %s", p.Value, p.Type)
	}
	buf.WriteString(") {\n")
	for _, s := range f.Slots {
		fmt.Fprintf(&buf, "  %s = stack_slot %d, align %d\n", s, s.Size, s.Align)
	}
	for _, b := range f.Blocks {
		fmt.Fprintf(&buf, "%s:\n", b.Name())
		for _, inst := range b.Insts {
			buf.WriteString("  ")
			writeInst(&buf, inst)
			buf.WriteByte('\n')
		}
	}
	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// String returns the textual form of the function.
func (f *Func) String() string {
	var sb strings.Builder
	_ = Fprint(&sb, f)
	return sb.String()
}

type textWriter interface {
	io.Writer
	io.StringWriter
}

func writeInst(w textWriter, inst *Inst) {
	if inst.Result != 0 {
		fmt.Fprintf(w, "%s = ", inst.Result)
	}
	switch inst.Op {
	case OpIconst:
		fmt.Fprintf(w, "iconst.%s %d", inst.Type, truncate(inst.Type, inst.Imm))
	case OpIadd, OpIsub, OpBand, OpBor:
		fmt.Fprintf(w, "%s %s, %s", inst.Op, inst.Args[0], inst.Args[1])
	case OpIshlImm, OpUshrImm:
		fmt.Fprintf(w, "%s %s, %d", inst.Op, inst.Args[0], inst.Imm)
	case OpUextend, OpSextend, OpIreduce, OpBitcast:
		fmt.Fprintf(w, "%s.%s %s", inst.Op, inst.Type, inst.Args[0])
	case OpIcmp:
		fmt.Fprintf(w, "icmp %s %s, %s", IntCC(inst.Cond), inst.Args[0], inst.Args[1])
	case OpIcmpImm:
		fmt.Fprintf(w, "icmp_imm %s %s, %d", IntCC(inst.Cond), inst.Args[0], inst.Imm)
	case OpFcmp:
		fmt.Fprintf(w, "fcmp %s %s, %s", FloatCC(inst.Cond), inst.Args[0], inst.Args[1])
	case OpSelect:
		fmt.Fprintf(w, "select %s, %s, %s", inst.Args[0], inst.Args[1], inst.Args[2])
	case OpStackAddr:
		fmt.Fprintf(w, "stack_addr.%s %s%+d", inst.Type, inst.Slot, inst.Imm)
	case OpLoad:
		fmt.Fprintf(w, "load.%s %s%+d", inst.Type, inst.Args[0], inst.Imm)
	case OpStore:
		fmt.Fprintf(w, "store.%s %s, %s%+d", inst.Type, inst.Args[0], inst.Args[1], inst.Imm)
	case OpJump:
		fmt.Fprintf(w, "jump %s", inst.Target.Name())
	case OpReturn:
		w.WriteString("return")
	case OpTrap:
		w.WriteString("trap " + inst.Trap.String())
		if inst.Msg != "" {
			w.WriteString(" " + strconv.Quote(inst.Msg))
		}
	default:
		w.WriteString(inst.Op.String())
	}
}

// truncate reinterprets imm as a signed value of type t.
func truncate(t Type, imm int64) int64 {
	switch t.Bits() {
	case 8:
		return int64(int8(imm))
	case 16:
		return int64(int16(imm))
	case 32:
		return int64(int32(imm))
	default:
		return imm
	}
}
