// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import "bytes"

// Flags represent bitwise SAM flags.
type Flags uint16

const (
	Paired        Flags = 1 << iota // The read is paired in sequencing, no matter whether it is mapped in a pair.
	ProperPair                      // The read is mapped in a proper pair.
	Unmapped                        // The read itself is unmapped; conflictive with ProperPair.
	MateUnmapped                    // The mate is unmapped.
	Reverse                         // The read is mapped to the reverse strand.
	MateReverse                     // The mate is mapped to the reverse strand.
	Read1                           // This is read1.
	Read2                           // This is read2.
	Secondary                       // Not a primary alignment.
	QCFail                          // QC failure.
	Duplicate                       // Optical or PCR duplicate.
	Supplementary                   // Supplementary alignment.
)

var flagStrings = [...]struct {
	flag Flags
	c    byte
}{
	{Paired, 'p'},
	{ProperPair, 'P'},
	{Unmapped, 'u'},
	{MateUnmapped, 'U'},
	{Reverse, 'r'},
	{MateReverse, 'R'},
	{Read1, '1'},
	{Read2, '2'},
	{Secondary, 's'},
	{QCFail, 'f'},
	{Duplicate, 'd'},
	{Supplementary, 'S'},
}

// String returns a representation of the Flags bitmask using one
// character per set bit, in the canonical order used by samtools flagstat.
func (f Flags) String() string {
	var b bytes.Buffer
	for _, fs := range flagStrings {
		if f&fs.flag != 0 {
			b.WriteByte(fs.c)
		}
	}
	return b.String()
}
