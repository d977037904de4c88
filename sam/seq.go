// Copyright ©2012-2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"unsafe"

	"github.com/grailbio/base/simd"
	"github.com/grailbio/bio/biosimd"
)

// Doublet is a nibble-encoded pair of nucleotide bases.
type Doublet byte

// SeqBase is BAM's 4-bit encoding of nucleotide base types. See
// section 4.2 of https://samtools.github.io/hts-specs/SAMv1.pdf.
type SeqBase byte

// Commonly used SeqBase constants.
const (
	BaseEq SeqBase = 0
	BaseA  SeqBase = 1
	BaseC  SeqBase = 2
	BaseM  SeqBase = 3
	BaseG  SeqBase = 4
	BaseR  SeqBase = 5
	BaseS  SeqBase = 6
	BaseV  SeqBase = 7
	BaseT  SeqBase = 8
	BaseW  SeqBase = 9
	BaseY  SeqBase = 10
	BaseH  SeqBase = 11
	BaseK  SeqBase = 12
	BaseD  SeqBase = 13
	BaseB  SeqBase = 14
	BaseN  SeqBase = 15

	// NumSeqBaseTypes is the number of possible SeqBase values.
	NumSeqBaseTypes = 16
)

// Seq is a nibble-encoded nucleotide sequence, as stored in a BAM
// record's packed sequence field.
type Seq struct {
	Length int
	Seq    []Doublet
}

var (
	n16TableRev = simd.MakeNibbleLookupTable([16]byte{'=', 'A', 'C', 'M', 'G', 'R', 'S', 'V', 'T', 'W', 'Y', 'H', 'K', 'D', 'B', 'N'})
	n16Table    = [256]Doublet{
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0x1, 0x2, 0x4, 0x8, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0x0, 0xf, 0xf,
		0xf, 0x1, 0xe, 0x2, 0xd, 0xf, 0xf, 0x4, 0xb, 0xf, 0xf, 0xc, 0xf, 0x3, 0xf, 0xf,
		0xf, 0xf, 0x5, 0x6, 0x8, 0xf, 0x7, 0x9, 0xf, 0xa, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0x1, 0xe, 0x2, 0xd, 0xf, 0xf, 0x4, 0xb, 0xf, 0xf, 0xc, 0xf, 0x3, 0xf, 0xf,
		0xf, 0xf, 0x5, 0x6, 0x8, 0xf, 0x7, 0x9, 0xf, 0xa, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
		0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf, 0xf,
	}
)

// NewSeq returns a new Seq based on the given byte slice of base
// characters.
func NewSeq(s []byte) Seq {
	return Seq{
		Length: len(s),
		Seq:    contract(s),
	}
}

func contract(s []byte) []Doublet {
	ns := make([]Doublet, (len(s)+1)>>1)
	var np Doublet
	for i, b := range s {
		if i&1 == 0 {
			np = n16Table[b] << 4
		} else {
			ns[i>>1] = np | n16Table[b]
		}
	}
	if len(s)&1 != 0 {
		ns[len(ns)-1] = np
	}
	return ns
}

// CharToSeqBase returns the 4-bit encoding of an ASCII base letter.
func CharToSeqBase(char byte) SeqBase {
	return SeqBase(n16Table[char])
}

// Expand returns the ASCII byte encoded form of the receiver.
//
// Base/BaseChar are cheaper for point queries; Expand is better when
// the whole sequence is needed, since it uses a vectorized nibble
// unpack rather than a per-base branch.
func (ns Seq) Expand() []byte {
	s := make([]byte, ns.Length)
	seqBytes := *(*[]byte)(unsafe.Pointer(&ns.Seq))
	biosimd.UnpackAndReplaceSeq(s, seqBytes, &n16TableRev)
	return s
}

// Base returns the pos'th base of the sequence.
//
// REQUIRES: 0 <= pos < seq.Length
func (ns Seq) Base(pos int) SeqBase {
	if pos%2 == 0 {
		return SeqBase(ns.Seq[pos/2] >> 4)
	}
	return SeqBase(ns.Seq[pos/2] & 0xf)
}

// BaseChar returns the pos'th base of the sequence as an ASCII
// character, such as 'A' or 'T'.
//
// REQUIRES: 0 <= pos < seq.Length
func (ns Seq) BaseChar(pos int) byte {
	return n16TableRev.Get(byte(ns.Base(pos)))
}

// Char converts a SeqBase to its human-readable character.
//
// REQUIRES: 0 <= b < NumSeqBaseTypes
func (b SeqBase) Char() byte {
	return n16TableRev.Get(byte(b))
}

// Equal reports whether s and other encode the same sequence.
func (s Seq) Equal(other Seq) bool {
	if s.Length != other.Length {
		return false
	}
	for i := range s.Seq {
		if s.Seq[i] != other.Seq[i] {
			return false
		}
	}
	return true
}
