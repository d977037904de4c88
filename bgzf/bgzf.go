// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bgzf provides a seekable, block-compressed stream on top of
// BGZF: a series of independent gzip members, each carrying a "BC"
// extra subfield giving its own compressed size. Every stream
// position is expressed as a virtual offset, the pair of the
// compressed byte offset of the block and the uncompressed byte
// offset within it, so that readers can seek directly to a record
// without decompressing everything before it.
package bgzf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/nextbase/hts/htserrors"
)

// blockHeaderSize is the fixed size in bytes of a BGZF member's gzip
// header: the 10-byte gzip fixed header, 2 bytes of XLEN, and the
// 6-byte "BC" extra subfield (SI1, SI2, SLEN lo/hi, BSIZE lo/hi).
const blockHeaderSize = 18

// blockFooterSize is CRC32 (4 bytes) plus ISIZE (4 bytes).
const blockFooterSize = 8

// MaxBlockSize is the largest permitted BGZF block, matching the
// 16-bit BSIZE field's range.
const MaxBlockSize = 1 << 16

// eofMarker is the 28-byte empty BGZF block samtools/htslib write to
// mark a clean end of file.
var eofMarker = []byte{
	0x1f, 0x8b, 0x08, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0xff,
	0x06, 0x00, 0x42, 0x43, 0x02, 0x00, 0x1b, 0x00, 0x03, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// EOFMarker returns a copy of the canonical empty BGZF end-of-file
// block.
func EOFMarker() []byte {
	m := make([]byte, len(eofMarker))
	copy(m, eofMarker)
	return m
}

// Offset is a virtual file offset: the compressed byte offset of a
// BGZF block's first byte, and the uncompressed byte offset within
// that block's decompressed payload.
type Offset struct {
	File  int64
	Block uint16
}

// Valid reports whether o.Block is within the uncompressed payload
// size of a single BGZF block.
func (o Offset) Valid() bool { return o.Block < MaxBlockSize }

func (o Offset) String() string {
	return fmt.Sprintf("%d:%d", o.File, o.Block)
}

// Compare orders offsets by (File, Block).
func (o Offset) Compare(other Offset) int {
	switch {
	case o.File < other.File:
		return -1
	case o.File > other.File:
		return 1
	case o.Block < other.Block:
		return -1
	case o.Block > other.Block:
		return 1
	default:
		return 0
	}
}

// Chunk is a half-open interval of virtual offsets [Begin, End)
// covering a run of records that an index query may need to visit.
type Chunk struct {
	Begin Offset
	End   Offset
}

var errCorruptBlock = htserrors.New(htserrors.Truncated, "bgzf: corrupt block")
var errBadMagic = htserrors.New(htserrors.BadMagic, "bgzf: not a BGZF stream")

// CheckEOF reports whether ra ends with a valid BGZF EOF marker
// block. It restores the underlying position when ra is also an
// io.Seeker only if the caller reseeks afterward; CheckEOF itself
// only reads, via ReadAt.
func CheckEOF(ra io.ReaderAt, size int64) (bool, error) {
	if size < int64(len(eofMarker)) {
		return false, nil
	}
	buf := make([]byte, len(eofMarker))
	if _, err := ra.ReadAt(buf, size-int64(len(eofMarker))); err != nil {
		return false, err
	}
	return bytes.Equal(buf, eofMarker), nil
}
