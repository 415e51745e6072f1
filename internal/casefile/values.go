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

package casefile

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/ajroetker/hwyemu/abi"
)

// parseValue parses one value of scalar type t into its bit pattern.
//
// Integers accept decimal, 0x, 0o and 0b forms, negative or not. Floats
// accept anything strconv.ParseFloat does, plus raw bit patterns written
// as 0x... .
func parseValue(t abi.Type, s string) (uint64, error) {
	switch t.Kind {
	case abi.KindFloat:
		if f, err := strconv.ParseFloat(s, t.Bits); err == nil {
			if t.Bits == 32 {
				return uint64(math.Float32bits(float32(f))), nil
			}
			return math.Float64bits(f), nil
		}
		if strings.HasPrefix(s, "0x") {
			u, err := strconv.ParseUint(s, 0, t.Bits)
			return u, err
		}
		return 0, fmt.Errorf("bad %s value %q", t, s)
	case abi.KindInt, abi.KindUint, abi.KindBool, abi.KindRawPtr:
		bits := t.Bits
		if strings.HasPrefix(s, "-") {
			i, err := strconv.ParseInt(s, 0, bits)
			if err != nil {
				return 0, fmt.Errorf("bad %s value %q: %w", t, s, err)
			}
			return truncate(uint64(i), bits), nil
		}
		u, err := strconv.ParseUint(s, 0, bits)
		if err != nil {
			return 0, fmt.Errorf("bad %s value %q: %w", t, s, err)
		}
		return u, nil
	}
	return 0, fmt.Errorf("%s has no scalar values", t)
}

func parseValues(t abi.Type, fields []string) ([]uint64, error) {
	var err error
	out := lo.Map(fields, func(s string, _ int) uint64 {
		v, perr := parseValue(t, s)
		if perr != nil && err == nil {
			err = perr
		}
		return v
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FormatValue renders the bit pattern of a scalar of type t.
func FormatValue(t abi.Type, bits uint64) string {
	switch t.Kind {
	case abi.KindFloat:
		if t.Bits == 32 {
			return strconv.FormatFloat(float64(math.Float32frombits(uint32(bits))), 'g', -1, 32)
		}
		return strconv.FormatFloat(math.Float64frombits(bits), 'g', -1, 64)
	case abi.KindInt:
		shift := 64 - t.Bits
		return strconv.FormatInt(int64(bits<<shift)>>shift, 10)
	}
	return strconv.FormatUint(bits, 10)
}

func truncate(x uint64, bits int) uint64 {
	if bits >= 64 {
		return x
	}
	return x & (1<<bits - 1)
}

func parseHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("bad hex bytes: %w", err)
	}
	return b, nil
}

// encodeLanes returns the little-endian memory image of a vector.
func encodeLanes(elem abi.Type, lanes []uint64) []byte {
	size := abi.LayoutOf(elem).Size
	out := make([]byte, size*len(lanes))
	for i, v := range lanes {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], v)
		copy(out[i*size:], buf[:size])
	}
	return out
}

// decodeLanes is the inverse of encodeLanes.
func decodeLanes(elem abi.Type, data []byte) []uint64 {
	size := abi.LayoutOf(elem).Size
	out := make([]uint64, len(data)/size)
	for i := range out {
		var buf [8]byte
		copy(buf[:], data[i*size:(i+1)*size])
		out[i] = binary.LittleEndian.Uint64(buf[:])
	}
	return out
}
