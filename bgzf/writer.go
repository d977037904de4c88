// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bgzf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"

	"github.com/klauspost/compress/flate"
)

// Writer writes a BGZF stream: application bytes are buffered and
// flushed as independent, individually-decompressable gzip members
// no larger than MaxBlockSize, each carrying a "BC" extra subfield
// recording the member's own on-disk size.
type Writer struct {
	w   io.Writer
	buf []byte
	pos int64 // compressed bytes written so far

	level int
	err   error
}

// DefaultCompression requests the flate package's default trade-off
// between speed and size.
const DefaultCompression = flate.DefaultCompression

// NewWriter returns a Writer that writes compressed blocks to w at
// the given flate compression level. A level of 0 selects
// DefaultCompression.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	if level == 0 {
		level = DefaultCompression
	}
	return &Writer{w: w, level: level, buf: make([]byte, 0, MaxBlockSize-1024)}, nil
}

// Write buffers p, flushing complete blocks to the underlying writer
// as the buffer fills.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n := len(p)
	for len(p) > 0 {
		free := cap(w.buf) - len(w.buf)
		if free == 0 {
			if err := w.flushBlock(); err != nil {
				return n - len(p), err
			}
			free = cap(w.buf)
		}
		take := free
		if take > len(p) {
			take = len(p)
		}
		w.buf = append(w.buf, p[:take]...)
		p = p[take:]
	}
	return n, nil
}

// Offset returns the virtual offset of the next byte Write will
// append: the compressed offset of the block under construction, and
// the uncompressed offset within it.
func (w *Writer) Offset() Offset {
	return Offset{File: w.pos, Block: uint16(len(w.buf))}
}

// FlushTry flushes the current block only if at least hint bytes are
// already buffered, letting callers batch small writes into fuller
// blocks without sacrificing an upper bound on staleness.
func (w *Writer) FlushTry(hint int) error {
	if len(w.buf) < hint {
		return nil
	}
	return w.flushBlock()
}

// Flush writes any buffered bytes as a (possibly short) block.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}
	return w.flushBlock()
}

func (w *Writer) flushBlock() error {
	if w.err != nil {
		return w.err
	}
	n, err := w.writeBlock(w.buf)
	w.pos += int64(n)
	w.buf = w.buf[:0]
	if err != nil {
		w.err = err
	}
	return err
}

// writeBlock compresses payload into a single BGZF member and writes
// it to the underlying writer, returning the number of compressed
// bytes written.
func (w *Writer) writeBlock(payload []byte) (int, error) {
	var comp bytes.Buffer
	fw, err := flate.NewWriter(&comp, w.level)
	if err != nil {
		return 0, err
	}
	if _, err := fw.Write(payload); err != nil {
		return 0, err
	}
	if err := fw.Close(); err != nil {
		return 0, err
	}

	bsize := blockHeaderSize + comp.Len() + blockFooterSize
	if bsize > MaxBlockSize {
		return 0, fmt.Errorf("bgzf: compressed block size %d exceeds %d", bsize, MaxBlockSize)
	}

	var header [blockHeaderSize]byte
	header[0], header[1], header[2], header[3] = 0x1f, 0x8b, 8, 0x04
	header[9] = 0xff // OS: unknown
	binary.LittleEndian.PutUint16(header[10:12], 6)
	header[12], header[13] = 'B', 'C'
	binary.LittleEndian.PutUint16(header[14:16], 2)
	binary.LittleEndian.PutUint16(header[16:18], uint16(bsize-1))

	if _, err := w.w.Write(header[:]); err != nil {
		return 0, err
	}
	if _, err := w.w.Write(comp.Bytes()); err != nil {
		return 0, err
	}

	var footer [blockFooterSize]byte
	binary.LittleEndian.PutUint32(footer[0:4], crc32.ChecksumIEEE(payload))
	binary.LittleEndian.PutUint32(footer[4:8], uint32(len(payload)))
	if _, err := w.w.Write(footer[:]); err != nil {
		return 0, err
	}

	return bsize, nil
}

// Close flushes any buffered data and writes the canonical BGZF EOF
// marker block.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := w.w.Write(EOFMarker())
	return err
}
