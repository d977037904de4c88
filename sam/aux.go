// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/nextbase/hts/htserrors"
)

// Endian is the byte order used on the wire by the BAM formats: the
// BAM spec mandates little-endian throughout.
var Endian = binary.LittleEndian

// An Aux represents an auxiliary tag data field from a SAM/BAM
// alignment record, in its binary wire encoding: two tag bytes, one
// type byte, then the value.
type Aux []byte

var (
	// jumps gives the fixed width of a fixed-width aux value type, or
	// a negative sentinel for variable-width types.
	jumps = [256]int{
		'A': 1,
		'c': 1, 'C': 1,
		's': 2, 'S': 2,
		'i': 4, 'I': 4,
		'f': 4,
		'd': 8,
		'Z': -1,
		'H': -1,
		'B': -1,
	}
	// auxTypes maps a binary wire type to the textual type character
	// that sam_format1-style formatting renders it as. All binary
	// integer widths widen to 'i'.
	auxTypes = [256]byte{
		'A': 'A',
		'c': 'i', 'C': 'i',
		's': 'i', 'S': 'i',
		'i': 'i', 'I': 'i',
		'f': 'f',
		'd': 'd',
		'Z': 'Z',
		'H': 'H',
		'B': 'B',
	}
)

var errCorruptAuxField = htserrors.New(htserrors.AuxIncomplete, "sam: corrupt aux field")

// ParseAuxBinary examines the data of a SAM record's binary OPT
// fields, returning a slice of Aux that are backed by the original
// data. This is the decode half of the binary record codec (§4.3).
func ParseAuxBinary(aux []byte) ([]Aux, error) {
	if len(aux) == 0 {
		return nil, nil
	}
	aa := make([]Aux, 0, 4)
	for i := 0; i+2 < len(aux); {
		t := aux[i+2]
		switch j := jumps[t]; {
		case j > 0:
			j += 3
			if i+j > len(aux) {
				return nil, errCorruptAuxField
			}
			aa = append(aa, Aux(aux[i:i+j:i+j]))
			i += j
		case j < 0:
			switch t {
			case 'Z', 'H':
				var (
					j int
					v byte
				)
				for j, v = range aux[i:] {
					if v == 0 {
						break
					}
				}
				aa = append(aa, Aux(aux[i:i+j:i+j]))
				i += j + 1
			case 'B':
				if len(aux) < i+8 {
					return nil, errCorruptAuxField
				}
				length := int(Endian.Uint32(aux[i+4 : i+8]))
				width := jumps[aux[i+3]]
				if width <= 0 {
					return nil, errCorruptAuxField
				}
				j = length*width + 8
				if i+j > len(aux) {
					return nil, errCorruptAuxField
				}
				aa = append(aa, Aux(aux[i:i+j:i+j]))
				i += j
			}
		default:
			return nil, htserrors.Newf(htserrors.BadAuxType, "sam: unrecognised optional field type: %q", t)
		}
	}
	return aa, nil
}

// BuildAux constructs a single byte slice representing a slice of
// Aux, the encode half of the binary record codec (§4.3).
func BuildAux(aa []Aux) []byte {
	var aux []byte
	for _, a := range aa {
		aux = append(aux, []byte(a)...)
		switch a.Type() {
		case 'Z', 'H':
			aux = append(aux, 0)
		}
	}
	return aux
}

// A Tag represents a two-byte auxiliary tag label.
type Tag [2]byte

func (t Tag) String() string { return string(t[:]) }

// Tag returns the tag ID of the receiver.
func (a Aux) Tag() Tag { var t Tag; copy(t[:], a[:2]); return t }

// Type returns the wire type byte of the receiver, one of
// 'A','c','C','s','S','i','I','f','d','Z','H','B'.
func (a Aux) Type() byte { return a[2] }

func (a Aux) matches(tag []byte) bool {
	return bytes.Equal(a[:2], tag)
}

// String returns the textual rendering of an Aux field, per §4.5:
// all binary integer widths widen to "i", while 'd' keeps its own type
// character rather than being widened (open question in spec §9).
func (a Aux) String() string {
	return fmt.Sprintf("%s:%c:%v", a[:2], auxTypes[a.Type()], a.Value())
}

// Value returns the decoded value of the auxiliary tag. The dynamic
// type depends on a.Type():
//
//	'A'       byte
//	'c','C'   int8, uint8
//	's','S'   int16, uint16
//	'i','I'   int32, uint32
//	'f'       float32
//	'd'       float64
//	'Z'       string
//	'H'       []byte
//	'B'       []int8/[]uint8/[]int16/[]uint16/[]int32/[]uint32/[]float32
func (a Aux) Value() interface{} {
	switch t := a.Type(); t {
	case 'A':
		return a[3]
	case 'c':
		return int8(a[3])
	case 'C':
		return uint8(a[3])
	case 's':
		return int16(Endian.Uint16(a[3:5]))
	case 'S':
		return Endian.Uint16(a[3:5])
	case 'i':
		return int32(Endian.Uint32(a[3:7]))
	case 'I':
		return Endian.Uint32(a[3:7])
	case 'f':
		return math.Float32frombits(Endian.Uint32(a[3:7]))
	case 'd':
		return math.Float64frombits(Endian.Uint64(a[3:11]))
	case 'Z':
		return string(a[3:])
	case 'H':
		h := make([]byte, hex.DecodedLen(len(a[3:])))
		_, err := hex.Decode(h, a[3:])
		if err != nil {
			panic(fmt.Sprintf("sam: hex decoding error: %v", err))
		}
		return h
	case 'B':
		length := int(Endian.Uint32(a[4:8]))
		sub := a[3]
		data := a[8:]
		switch sub {
		case 'c':
			out := make([]int8, length)
			for i := range out {
				out[i] = int8(data[i])
			}
			return out
		case 'C':
			out := make([]uint8, length)
			copy(out, data)
			return out
		case 's':
			out := make([]int16, length)
			for i := range out {
				out[i] = int16(Endian.Uint16(data[i*2:]))
			}
			return out
		case 'S':
			out := make([]uint16, length)
			for i := range out {
				out[i] = Endian.Uint16(data[i*2:])
			}
			return out
		case 'i':
			out := make([]int32, length)
			for i := range out {
				out[i] = int32(Endian.Uint32(data[i*4:]))
			}
			return out
		case 'I':
			out := make([]uint32, length)
			for i := range out {
				out[i] = Endian.Uint32(data[i*4:])
			}
			return out
		case 'f':
			out := make([]float32, length)
			for i := range out {
				out[i] = math.Float32frombits(Endian.Uint32(data[i*4:]))
			}
			return out
		default:
			panic(fmt.Sprintf("sam: unknown array subtype %q", sub))
		}
	default:
		panic(fmt.Sprintf("sam: unknown aux type %q", t))
	}
}

// NewAux encodes v as an Aux tagged with tag, choosing the narrowest
// binary integer width that can hold v when v is an integer (§4.4).
func NewAux(tag Tag, v interface{}) (Aux, error) {
	switch val := v.(type) {
	case byte:
		return newAuxChar(tag, val), nil
	case int:
		return newAuxInt(tag, int64(val)), nil
	case int8:
		return newAuxInt(tag, int64(val)), nil
	case int16:
		return newAuxInt(tag, int64(val)), nil
	case int32:
		return newAuxInt(tag, int64(val)), nil
	case int64:
		return newAuxInt(tag, val), nil
	case uint:
		return newAuxInt(tag, int64(val)), nil
	case uint16:
		return newAuxInt(tag, int64(val)), nil
	case uint32:
		return newAuxInt(tag, int64(val)), nil
	case float32:
		return newAuxFloat(tag, val), nil
	case float64:
		return newAuxDouble(tag, val), nil
	case string:
		return newAuxString(tag, 'Z', val), nil
	case []byte:
		return newAuxHex(tag, val), nil
	default:
		return nil, fmt.Errorf("sam: unsupported aux value type %T", v)
	}
}

func newAuxChar(tag Tag, v byte) Aux {
	a := make(Aux, 4)
	copy(a, tag[:])
	a[2] = 'A'
	a[3] = v
	return a
}

// newAuxInt implements the narrowing rule of §4.4: prefer signed
// widths for negative values, unsigned widths for non-negative ones,
// each time choosing the narrowest binary type that holds v.
func newAuxInt(tag Tag, v int64) Aux {
	var a Aux
	switch {
	case v < 0:
		switch {
		case v >= -128:
			a = make(Aux, 4)
			a[2] = 'c'
			a[3] = byte(int8(v))
		case v >= -32768:
			a = make(Aux, 5)
			a[2] = 's'
			Endian.PutUint16(a[3:], uint16(int16(v)))
		default:
			a = make(Aux, 7)
			a[2] = 'i'
			Endian.PutUint32(a[3:], uint32(int32(v)))
		}
	default:
		switch {
		case v <= 255:
			a = make(Aux, 4)
			a[2] = 'C'
			a[3] = byte(v)
		case v <= 65535:
			a = make(Aux, 5)
			a[2] = 'S'
			Endian.PutUint16(a[3:], uint16(v))
		default:
			a = make(Aux, 7)
			a[2] = 'I'
			Endian.PutUint32(a[3:], uint32(v))
		}
	}
	copy(a, tag[:])
	return a
}

func newAuxFloat(tag Tag, v float32) Aux {
	a := make(Aux, 7)
	copy(a, tag[:])
	a[2] = 'f'
	Endian.PutUint32(a[3:], math.Float32bits(v))
	return a
}

func newAuxDouble(tag Tag, v float64) Aux {
	a := make(Aux, 11)
	copy(a, tag[:])
	a[2] = 'd'
	Endian.PutUint64(a[3:], math.Float64bits(v))
	return a
}

func newAuxString(tag Tag, typ byte, v string) Aux {
	a := make(Aux, 3+len(v))
	copy(a, tag[:])
	a[2] = typ
	copy(a[3:], v)
	return a
}

func newAuxHex(tag Tag, v []byte) Aux {
	enc := make([]byte, hex.EncodedLen(len(v)))
	hex.Encode(enc, v)
	return newAuxString(tag, 'H', strings.ToUpper(string(enc)))
}

// ParseAux parses a single "TAG:TYPE:VALUE" textual auxiliary field
// into its binary wire representation, applying the integer-width
// narrowing and B-array rules of §4.4.
func ParseAux(field []byte) (Aux, error) {
	if len(field) < 5 || field[2] != ':' || field[4] != ':' {
		return nil, htserrors.Newf(htserrors.MalformedField, "sam: malformed aux field %q", field)
	}
	var tag Tag
	copy(tag[:], field[:2])
	typ := field[3]
	val := field[5:]

	switch typ {
	case 'A', 'a', 'c', 'C':
		if len(val) == 0 {
			return nil, fmt.Errorf("sam: empty aux character value for tag %s", tag)
		}
		// The A|a|c|C branch emits only the first value byte and
		// ignores any declared width beyond it; this matches the
		// documented quirk of sam_format1/bam_aux_append (spec §9
		// open question): "aux:c:127" and "aux:A:x" share this path.
		return newAuxChar(tag, val[0]), nil
	case 'i', 'I':
		n, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("sam: bad integer aux value for tag %s: %v", tag, err)
		}
		return newAuxInt(tag, n), nil
	case 'f':
		f, err := strconv.ParseFloat(string(val), 32)
		if err != nil {
			return nil, fmt.Errorf("sam: bad float aux value for tag %s: %v", tag, err)
		}
		return newAuxFloat(tag, float32(f)), nil
	case 'd':
		f, err := strconv.ParseFloat(string(val), 64)
		if err != nil {
			return nil, fmt.Errorf("sam: bad float aux value for tag %s: %v", tag, err)
		}
		return newAuxDouble(tag, f), nil
	case 'Z':
		return newAuxString(tag, 'Z', string(val)), nil
	case 'H':
		return newAuxString(tag, 'H', string(val)), nil
	case 'B':
		return parseAuxArray(tag, val)
	default:
		return nil, htserrors.Newf(htserrors.BadAuxType, "sam: unknown aux type %q for tag %s", typ, tag)
	}
}

// parseAuxArray parses the "<sub>,v1,v2,..." payload of a B-typed
// aux field into its binary wire representation.
func parseAuxArray(tag Tag, val []byte) (Aux, error) {
	parts := bytes.Split(val, []byte{','})
	if len(parts) < 1 || len(parts[0]) != 1 {
		return nil, fmt.Errorf("sam: missing array subtype for tag %s", tag)
	}
	sub := parts[0][0]
	width := jumps[sub]
	if width <= 0 {
		return nil, fmt.Errorf("sam: unknown array subtype %q for tag %s", sub, tag)
	}
	items := parts[1:]
	a := make(Aux, 8+len(items)*width)
	copy(a, tag[:])
	a[2] = 'B'
	a[3] = sub
	Endian.PutUint32(a[4:8], uint32(len(items)))
	for i, it := range items {
		off := 8 + i*width
		switch sub {
		case 'c', 'C':
			n, err := strconv.ParseInt(string(it), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("sam: bad array element for tag %s: %v", tag, err)
			}
			a[off] = byte(n)
		case 's', 'S':
			n, err := strconv.ParseInt(string(it), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("sam: bad array element for tag %s: %v", tag, err)
			}
			Endian.PutUint16(a[off:], uint16(n))
		case 'i', 'I':
			n, err := strconv.ParseInt(string(it), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("sam: bad array element for tag %s: %v", tag, err)
			}
			Endian.PutUint32(a[off:], uint32(n))
		case 'f':
			f, err := strconv.ParseFloat(string(it), 32)
			if err != nil {
				return nil, fmt.Errorf("sam: bad array element for tag %s: %v", tag, err)
			}
			Endian.PutUint32(a[off:], math.Float32bits(float32(f)))
		}
	}
	return a, nil
}

// AuxFields is the collection of auxiliary tags attached to a Record.
type AuxFields []Aux

func (aa AuxFields) String() string {
	var b bytes.Buffer
	for i, a := range aa {
		if i != 0 {
			b.WriteByte(' ')
		}
		b.WriteString(a.String())
	}
	return b.String()
}

// Equal reports whether aa and other contain byte-identical aux
// fields in the same order.
func (aa AuxFields) Equal(other AuxFields) bool {
	if len(aa) != len(other) {
		return false
	}
	for i := range aa {
		if !bytes.Equal(aa[i], other[i]) {
			return false
		}
	}
	return true
}

// GetUnique returns the unique Aux field matching tag. If no field
// matches, it returns (nil, nil). If more than one field matches, it
// returns (nil, error).
func (aa AuxFields) GetUnique(tag Tag) (Aux, error) {
	var found Aux
	for _, a := range aa {
		if a.Tag() == tag {
			if found != nil {
				return nil, fmt.Errorf("sam: duplicate aux tag %s", tag)
			}
			found = a
		}
	}
	return found, nil
}
