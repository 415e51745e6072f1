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

// Package casefile reads txtar archives that describe one intrinsic call,
// lowers the call into a fresh function, runs it on the IR interpreter and
// checks the outcome.
//
// An archive holds up to three files:
//
//	-- call --
//	name: llvm.x86.sse.movmsk.ps
//	arg: vec f32x4 -1 2 3 -4
//	ret: i32
//	-- want --
//	scalar 9
//	-- ir --
//	function ...
//
// Argument forms are "vec TxN v0 v1 ...", "const T v", "scalar T v" and
// "ptr SIZE" (a zeroed scratch buffer whose address is passed). The want
// file holds one of "vec v0 v1 ...", "scalar v", "pair a b", "mem HEX" or
// "trap CODE"; values are typed by the call's ret line. The ir file is the
// expected listing of the lowered function.
package casefile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/tools/txtar"

	"github.com/ajroetker/hwyemu/abi"
)

// ArgKind is how an argument is passed to the lowered function.
type ArgKind int

const (
	// ArgVec is a vector passed by reference.
	ArgVec ArgKind = iota

	// ArgConst is a compile-time constant; it is not a parameter.
	ArgConst

	// ArgScalar is a scalar parameter.
	ArgScalar

	// ArgPtr is the address of a zeroed scratch buffer.
	ArgPtr
)

var argKindNames = map[string]ArgKind{
	"vec":    ArgVec,
	"const":  ArgConst,
	"scalar": ArgScalar,
	"ptr":    ArgPtr,
}

// Arg is one argument of the call.
type Arg struct {
	Kind ArgKind
	Type abi.Type

	// Bits holds the lanes of a vector or the single value of a scalar or
	// constant.
	Bits []uint64

	// Size is the buffer size of an ArgPtr.
	Size int
}

// Case is a parsed case archive.
type Case struct {
	// Name identifies the case, usually its file name.
	Name string

	// Comment is the free text before the first file.
	Comment string

	Intrinsic string
	Args      []Arg
	Ret       abi.Type
	Diverging bool

	// Want is the expected outcome, or nil when the archive has no want file.
	Want *Outcome

	// IR is the expected listing, or "" when the archive has no ir file.
	IR string
}

// ParseFile reads and parses the case archive at path.
func ParseFile(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(filepath.Base(path), data)
}

// Parse parses a case archive.
func Parse(name string, data []byte) (*Case, error) {
	ar := txtar.Parse(data)
	c := &Case{Name: name, Comment: strings.TrimSpace(string(ar.Comment)), Ret: abi.Unit}
	files := lo.SliceToMap(ar.Files, func(f txtar.File) (string, []byte) {
		return f.Name, f.Data
	})

	call, ok := files["call"]
	if !ok {
		return nil, fmt.Errorf("%s: missing call file", name)
	}
	if err := c.parseCall(call); err != nil {
		return nil, fmt.Errorf("%s: call: %w", name, err)
	}
	if want, ok := files["want"]; ok {
		out, err := parseWant(c.Ret, strings.TrimSpace(string(want)))
		if err != nil {
			return nil, fmt.Errorf("%s: want: %w", name, err)
		}
		c.Want = out
	}
	if ir, ok := files["ir"]; ok {
		c.IR = string(ir)
	}
	return c, nil
}

func (c *Case) parseCall(data []byte) error {
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("line %d: want key: value", lineNo)
		}
		value = strings.TrimSpace(value)
		var err error
		switch strings.TrimSpace(key) {
		case "name":
			c.Intrinsic = value
		case "arg":
			var a Arg
			if a, err = parseArg(value); err == nil {
				c.Args = append(c.Args, a)
			}
		case "ret":
			c.Ret, err = abi.Parse(value)
		case "diverging":
			c.Diverging, err = strconv.ParseBool(value)
		default:
			err = fmt.Errorf("unknown key %q", key)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if c.Intrinsic == "" {
		return fmt.Errorf("missing name")
	}
	return sc.Err()
}

func parseArg(s string) (Arg, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return Arg{}, fmt.Errorf("argument %q: want KIND TYPE VALUES", s)
	}
	kind, ok := argKindNames[fields[0]]
	if !ok {
		return Arg{}, fmt.Errorf("argument kind %q", fields[0])
	}
	if kind == ArgPtr {
		size, err := strconv.Atoi(fields[1])
		if err != nil || size <= 0 {
			return Arg{}, fmt.Errorf("ptr size %q", fields[1])
		}
		return Arg{Kind: ArgPtr, Type: abi.RawPtr, Size: size}, nil
	}

	t, err := abi.Parse(fields[1])
	if err != nil {
		return Arg{}, err
	}
	a := Arg{Kind: kind, Type: t}
	if kind == ArgVec {
		n, elem, ok := t.SimdSizeAndType()
		if !ok {
			return Arg{}, fmt.Errorf("vec argument of type %s", t)
		}
		if len(fields)-2 != n {
			return Arg{}, fmt.Errorf("%s needs %d lanes, got %d", t, n, len(fields)-2)
		}
		a.Bits, err = parseValues(elem, fields[2:])
		return a, err
	}
	if !t.IsScalar() || len(fields) != 3 {
		return Arg{}, fmt.Errorf("%s argument %q: want one scalar value", fields[0], s)
	}
	a.Bits, err = parseValues(t, fields[2:])
	return a, err
}

func parseWant(ret abi.Type, s string) (*Outcome, error) {
	kind, rest, _ := strings.Cut(s, " ")
	fields := strings.Fields(rest)
	switch kind {
	case "trap":
		if len(fields) != 1 {
			return nil, fmt.Errorf("trap needs a code")
		}
		return &Outcome{Trap: fields[0]}, nil
	case "mem":
		b, err := parseHex(strings.Join(fields, ""))
		if err != nil {
			return nil, err
		}
		return &Outcome{Mem: b}, nil
	case "vec":
		n, elem, ok := ret.SimdSizeAndType()
		if !ok || len(fields) != n {
			return nil, fmt.Errorf("vec result does not match %s", ret)
		}
		lanes, err := parseValues(elem, fields)
		return &Outcome{Lanes: lanes}, err
	case "scalar":
		if !ret.IsScalar() || len(fields) != 1 {
			return nil, fmt.Errorf("scalar result does not match %s", ret)
		}
		v, err := parseValues(ret, fields)
		return &Outcome{Fields: v}, err
	case "pair":
		if ret.Kind != abi.KindTuple || len(ret.Fields) != 2 || len(fields) != 2 {
			return nil, fmt.Errorf("pair result does not match %s", ret)
		}
		first, err := parseValue(ret.Fields[0], fields[0])
		if err != nil {
			return nil, err
		}
		second, err := parseValue(ret.Fields[1], fields[1])
		return &Outcome{Fields: []uint64{first, second}}, err
	}
	return nil, fmt.Errorf("unknown result kind %q", kind)
}
