// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"encoding/binary"
	"io"

	"github.com/nextbase/hts/bgzf"
	"github.com/nextbase/hts/htserrors"
	"github.com/nextbase/hts/sam"
)

// Writer writes BAM alignment records to a BGZF stream.
type Writer struct {
	w   *bgzf.Writer
	h   *sam.Header
	buf []byte
	err error
}

// NewWriter returns a Writer that writes h followed by subsequent
// records to w, compressing at level (see bgzf.NewWriter).
func NewWriter(w io.Writer, h *sam.Header, level int) (*Writer, error) {
	bw, err := bgzf.NewWriter(w, level)
	if err != nil {
		return nil, err
	}
	bamw := &Writer{w: bw, h: h}
	if err := h.EncodeBinary(bw); err != nil {
		return nil, err
	}
	return bamw, nil
}

// WriteHeaderText overwrites the header's free-text block with text
// before it is encoded, preserving comments and tag lines the
// reference dictionary alone cannot carry. It must be called before
// NewWriter encodes the header, so it is exposed as a package
// function operating on the Header rather than the Writer.
func WriteHeaderText(h *sam.Header, text []byte) {
	h.SetText(text)
}

// Write encodes r and appends it to the stream.
func (bw *Writer) Write(r *sam.Record) error {
	if bw.err != nil {
		return bw.err
	}
	if r.Seq.Length != 0 && len(r.Qual) != 0 && r.Seq.Length != len(r.Qual) {
		return htserrors.New(htserrors.CigarSeqLen, "bam: sequence/quality length mismatch")
	}

	nameLen := len(r.Name) + 1
	cigarLen := len(r.Cigar) * 4
	packedLen := (r.Seq.Length + 1) >> 1
	auxBytes := sam.BuildAux(r.AuxFields)

	blockSize := 32 + nameLen + cigarLen + packedLen + r.Seq.Length + len(auxBytes)

	buf := bw.buf[:0]
	if cap(buf) < blockSize+4 {
		buf = make([]byte, 0, blockSize+4)
	}
	var scratch [4]byte

	binary.LittleEndian.PutUint32(scratch[:], uint32(blockSize))
	buf = append(buf, scratch[:]...)

	binary.LittleEndian.PutUint32(scratch[:], uint32(int32(r.RefID())))
	buf = append(buf, scratch[:]...)
	binary.LittleEndian.PutUint32(scratch[:], uint32(int32(r.Pos)))
	buf = append(buf, scratch[:]...)

	buf = append(buf, byte(nameLen))
	buf = append(buf, r.MapQ)
	binary.LittleEndian.PutUint16(scratch[:2], uint16(r.Bin()))
	buf = append(buf, scratch[:2]...)
	binary.LittleEndian.PutUint16(scratch[:2], uint16(len(r.Cigar)))
	buf = append(buf, scratch[:2]...)
	binary.LittleEndian.PutUint16(scratch[:2], uint16(r.Flags))
	buf = append(buf, scratch[:2]...)
	binary.LittleEndian.PutUint32(scratch[:], uint32(r.Seq.Length))
	buf = append(buf, scratch[:]...)

	binary.LittleEndian.PutUint32(scratch[:], uint32(int32(r.MateRef.ID())))
	buf = append(buf, scratch[:]...)
	binary.LittleEndian.PutUint32(scratch[:], uint32(int32(r.MatePos)))
	buf = append(buf, scratch[:]...)
	binary.LittleEndian.PutUint32(scratch[:], uint32(int32(r.TempLen)))
	buf = append(buf, scratch[:]...)

	buf = append(buf, r.Name...)
	buf = append(buf, 0)

	for _, co := range r.Cigar {
		binary.LittleEndian.PutUint32(scratch[:], uint32(co))
		buf = append(buf, scratch[:]...)
	}

	for _, d := range r.Seq.Seq {
		buf = append(buf, byte(d))
	}
	if len(r.Qual) == r.Seq.Length {
		buf = append(buf, r.Qual...)
	} else {
		// No qualities were supplied: the wire format still requires
		// l_qseq bytes, filled with the "no qualities" sentinel 0xFF.
		for i := 0; i < r.Seq.Length; i++ {
			buf = append(buf, 0xff)
		}
	}

	buf = append(buf, auxBytes...)

	bw.buf = buf
	if _, err := bw.w.Write(buf); err != nil {
		bw.err = err
		return err
	}
	return nil
}

// Flush writes any buffered compressed bytes to the underlying
// writer as a (possibly short) block.
func (bw *Writer) Flush() error {
	if bw.err != nil {
		return bw.err
	}
	return bw.w.Flush()
}

// Close flushes any buffered data and terminates the stream with the
// canonical BGZF EOF marker.
func (bw *Writer) Close() error {
	if bw.err != nil {
		return bw.err
	}
	return bw.w.Close()
}
