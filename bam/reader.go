// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bam implements the binary record codec, the region-query
// iterator, and the index-builder facade of the BAM container format.
package bam

import (
	"encoding/binary"
	"io"

	"v.io/x/lib/vlog"

	"github.com/nextbase/hts/bgzf"
	"github.com/nextbase/hts/htserrors"
	"github.com/nextbase/hts/sam"
)

// Omit levels, passed to Reader.Omit, control how much of each record
// the Reader bothers decoding.
const (
	None                  = iota // Omit no field data from the record.
	AuxTags                      // Omit auxiliary tag data.
	AllVariableLengthData        // Omit sequence, quality and auxiliary data.
)

// Reader reads BAM alignment records from a BGZF stream.
type Reader struct {
	r *bgzf.Reader
	h *sam.Header
	c *bgzf.Chunk

	omit int

	lastChunk bgzf.Chunk
}

// NewReader returns a new Reader reading from r, using rd as the
// concurrency hint for the underlying BGZF decompressor (see
// bgzf.NewReader). The returned Reader should be closed after use.
func NewReader(r io.Reader, rd int) (*Reader, error) {
	bg, err := bgzf.NewReader(r, rd)
	if err != nil {
		return nil, err
	}
	begin := bg.Offset()
	h, err := sam.DecodeHeader(bg)
	if err != nil {
		return nil, err
	}
	probeEOFMarker(r)
	br := &Reader{r: bg, h: h}
	br.lastChunk = bgzf.Chunk{Begin: begin, End: bg.Offset()}
	return br, nil
}

// probeEOFMarker checks r for a trailing BGZF EOF marker block without
// disturbing its read position, and warns if one is absent. Sources
// that are not both io.ReaderAt and io.Seeker (such as a pipe) are
// skipped silently: the probe has no way to learn the stream's length.
func probeEOFMarker(r io.Reader) {
	ra, ok := r.(io.ReaderAt)
	if !ok {
		return
	}
	sk, ok := r.(io.Seeker)
	if !ok {
		return
	}
	cur, err := sk.Seek(0, io.SeekCurrent)
	if err != nil {
		return
	}
	size, err := sk.Seek(0, io.SeekEnd)
	if err != nil {
		return
	}
	if _, err := sk.Seek(cur, io.SeekStart); err != nil {
		vlog.Errorf("bam: restoring stream position after EOF marker probe: %v", err)
		return
	}
	ok, err = bgzf.CheckEOF(ra, size)
	if err != nil {
		vlog.Errorf("bam: probing EOF marker: %v", err)
		return
	}
	if !ok {
		vlog.Errorf("bam: BGZF stream has no trailing EOF marker block")
	}
}

// Header returns the sam.Header held by the Reader.
func (br *Reader) Header() *sam.Header { return br.h }

// Omit specifies what portions of each Record to skip decoding. o is
// one of None, AuxTags or AllVariableLengthData.
func (br *Reader) Omit(o int) { br.omit = o }

func vOffset(o bgzf.Offset) int64 {
	return o.File<<16 | int64(o.Block)
}

// Read returns the next Record in the BAM stream. The returned
// Record will not carry sequence, quality or auxiliary data if
// Omit(AllVariableLengthData) was set, nor auxiliary data alone if
// Omit(AuxTags) was set.
func (br *Reader) Read() (*sam.Record, error) {
	if br.c != nil && vOffset(br.r.Offset()) >= vOffset(br.c.End) {
		return nil, io.EOF
	}

	begin := br.r.Offset()
	b, err := newBuffer(br.r)
	if err != nil {
		return nil, err
	}

	rec := sam.GetFromFreePool()
	refID := b.readInt32()
	rec.Pos = int(b.readInt32())
	nLen := b.readUint8()
	rec.MapQ = b.readUint8()
	b.discard(2) // bin, recomputed by Record.Bin() on demand
	nCigar := b.readUint16()
	rec.Flags = sam.Flags(b.readUint16())
	lSeq := int32(b.readUint32())
	nextRefID := b.readInt32()
	rec.MatePos = int(b.readInt32())
	rec.TempLen = int(b.readInt32())

	rec.Name = string(b.bytes(int(nLen) - 1))
	b.discard(1) // trailing NUL

	rec.Cigar = readCigarOps(b.bytes(int(nCigar) * 4))

	if br.omit < AllVariableLengthData {
		packed := b.bytes(int(lSeq+1) >> 1)
		seq := make([]sam.Doublet, len(packed))
		for i, v := range packed {
			seq[i] = sam.Doublet(v)
		}
		rec.Seq = sam.Seq{Length: int(lSeq), Seq: seq}
		rec.Qual = append([]byte(nil), b.bytes(int(lSeq))...)

		if br.omit < AuxTags {
			// Parsed Aux values alias b.data; copy the remainder out
			// first so the scratch buffer can be recycled below.
			auxBytes := append([]byte(nil), b.remainder()...)
			aux, err := sam.ParseAuxBinary(auxBytes)
			if err != nil {
				return nil, err
			}
			rec.AuxFields = aux
		}
	}
	putScratch(b.data)

	refs := int32(len(br.h.Refs()))
	if refID != -1 {
		if refID < -1 || refID >= refs {
			return nil, htserrors.New(htserrors.MalformedField, "bam: reference id out of range")
		}
		rec.Ref = br.h.Refs()[refID]
	}
	if nextRefID != -1 {
		if refID == nextRefID {
			rec.MateRef = rec.Ref
		} else {
			if nextRefID < -1 || nextRefID >= refs {
				return nil, htserrors.New(htserrors.MalformedField, "bam: mate reference id out of range")
			}
			rec.MateRef = br.h.Refs()[nextRefID]
		}
	}

	br.lastChunk = bgzf.Chunk{Begin: begin, End: br.r.Offset()}
	return rec, nil
}

// SetCache installs a BGZF block cache on the Reader's underlying
// stream.
func (br *Reader) SetCache(c bgzf.Cache) { br.r.SetCache(c) }

// Seek moves the Reader to the given virtual offset.
func (br *Reader) Seek(off bgzf.Offset) error {
	return br.r.Seek(off)
}

// SetChunk limits subsequent Read calls to the given BGZF chunk,
// seeking to its start. A nil chunk removes the limit.
func (br *Reader) SetChunk(c *bgzf.Chunk) error {
	if c != nil {
		if err := br.r.Seek(c.Begin); err != nil {
			return err
		}
	}
	br.c = c
	return nil
}

// LastChunk returns the BGZF chunk spanned by the most recent Read
// call. It is only meaningful if that call returned a nil error.
func (br *Reader) LastChunk() bgzf.Chunk { return br.lastChunk }

// Close closes the Reader.
func (br *Reader) Close() error { return br.r.Close() }

func readCigarOps(cb []byte) []sam.CigarOp {
	co := make([]sam.CigarOp, len(cb)/4)
	for i := range co {
		co[i] = sam.CigarOp(binary.LittleEndian.Uint32(cb[i*4 : (i+1)*4]))
	}
	return co
}

// buffer is a light-weight cursor over an in-memory record payload.
type buffer struct {
	off  int
	data []byte
}

func (b *buffer) bytes(n int) []byte {
	s := b.off
	b.off += n
	return b.data[s:b.off]
}

func (b *buffer) remainder() []byte { return b.data[b.off:] }

func (b *buffer) discard(n int) { b.off += n }

func (b *buffer) readUint8() uint8 {
	b.off++
	return b.data[b.off-1]
}

func (b *buffer) readUint16() uint16 {
	return binary.LittleEndian.Uint16(b.bytes(2))
}

func (b *buffer) readInt32() int32 {
	return int32(binary.LittleEndian.Uint32(b.bytes(4)))
}

func (b *buffer) readUint32() uint32 {
	return binary.LittleEndian.Uint32(b.bytes(4))
}

// newBuffer reads one length-prefixed record block from r into a
// fresh buffer.
func newBuffer(r io.Reader) (*buffer, error) {
	var sizeBuf [4]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, err
	}
	size := int(int32(binary.LittleEndian.Uint32(sizeBuf[:])))
	if size < 0 {
		return nil, htserrors.New(htserrors.Truncated, "bam: invalid record: negative block size")
	}
	data := getScratch(size)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF {
			return nil, htserrors.Wrap(htserrors.Truncated, "bam: truncated record", io.ErrUnexpectedEOF)
		}
		return nil, err
	}
	return &buffer{data: data}, nil
}
