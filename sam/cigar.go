// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"fmt"

	"github.com/nextbase/hts/htserrors"
)

// CigarOpType is a CIGAR operation type, encoded on the wire as the
// low 4 bits of a packed uint32.
type CigarOpType byte

// CIGAR operation types, in the wire-encoding order MIDNSHP=X.
const (
	CigarMatch       CigarOpType = iota // M
	CigarInsertion                      // I
	CigarDeletion                      // D
	CigarSkipped                       // N
	CigarSoftClipped                   // S
	CigarHardClipped                   // H
	CigarPadded                        // P
	CigarEqual                         // =
	CigarMismatch                      // X
	lastCigarType
)

var cigarOpCodes = [...]byte{'M', 'I', 'D', 'N', 'S', 'H', 'P', '=', 'X'}

// Consume describes whether a CIGAR operation consumes the reference
// and/or the query sequence.
type Consume struct {
	Query     int
	Reference int
}

var consume = [...]Consume{
	CigarMatch:       {1, 1},
	CigarInsertion:   {1, 0},
	CigarDeletion:    {0, 1},
	CigarSkipped:     {0, 1},
	CigarSoftClipped: {1, 0},
	CigarHardClipped: {0, 0},
	CigarPadded:      {0, 0},
	CigarEqual:       {1, 1},
	CigarMismatch:    {1, 1},
}

// Consumes returns the query/reference consumption behavior of the
// receiver's type.
func (t CigarOpType) Consumes() Consume {
	if t >= lastCigarType {
		panic("sam: cigar operation type out of range")
	}
	return consume[t]
}

func (t CigarOpType) String() string {
	if t >= lastCigarType {
		panic("sam: cigar operation type out of range")
	}
	return string(cigarOpCodes[t])
}

// CigarOp is a single CIGAR operation packed the way it is stored on
// the wire: length in the high 28 bits, operation type in the low 4.
type CigarOp uint32

// NewCigarOp returns a CigarOp of the specified type and length.
func NewCigarOp(t CigarOpType, n int) CigarOp {
	if n < 0 || n >= 1<<28 {
		panic("sam: cigar operation length out of range")
	}
	return CigarOp(n)<<4 | CigarOp(t)
}

// Type returns the type of the CIGAR operation.
func (c CigarOp) Type() CigarOpType { return CigarOpType(c & 0xf) }

// Len returns the number of positions the CIGAR operation covers.
func (c CigarOp) Len() int { return int(c >> 4) }

func (c CigarOp) String() string {
	return fmt.Sprintf("%d%v", c.Len(), c.Type())
}

// Cigar represents the set of CIGAR operations describing a read
// alignment, in application order.
type Cigar []CigarOp

func (c Cigar) String() string {
	if len(c) == 0 {
		return "*"
	}
	var b bytes.Buffer
	for _, co := range c {
		b.WriteString(co.String())
	}
	return b.String()
}

// IsValid returns whether the CIGAR is valid for a sequence of the
// specified length. An empty Cigar is always considered valid.
func (c Cigar) IsValid(length int) bool {
	if len(c) == 0 {
		return true
	}
	return c.queryConsumed() == length
}

func (c Cigar) queryConsumed() int {
	var l int
	for _, co := range c {
		l += co.Len() * co.Type().Consumes().Query
	}
	return l
}

// RefSpan returns the reference span of the Cigar: the sum of the
// lengths of operations that consume the reference.
func (c Cigar) RefSpan() int {
	var l int
	for _, co := range c {
		l += co.Len() * co.Type().Consumes().Reference
	}
	return l
}

var cigarOpFromChar = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i, c := range cigarOpCodes {
		t[c] = int8(i)
	}
	return t
}()

// ParseCigar parses a SAM CIGAR string into a Cigar. "*" returns a nil
// Cigar with no error.
func ParseCigar(b []byte) (Cigar, error) {
	if bytes.Equal(b, []byte{'*'}) {
		return nil, nil
	}
	var (
		co  Cigar
		n   int
		has bool
	)
	for _, c := range b {
		if c >= '0' && c <= '9' {
			n = n*10 + int(c-'0')
			has = true
			continue
		}
		if !has {
			return nil, fmt.Errorf("sam: malformed cigar: missing length before %q", c)
		}
		t := cigarOpFromChar[c]
		if t < 0 {
			return nil, htserrors.Newf(htserrors.BadCigar, "sam: unknown cigar operation %q", c)
		}
		co = append(co, NewCigarOp(CigarOpType(t), n))
		n, has = 0, false
	}
	if has {
		return nil, fmt.Errorf("sam: malformed cigar: trailing length %d", n)
	}
	return co, nil
}
