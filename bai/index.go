// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bai implements the nominal BAM index format: a per-reference
// bin index plus a 16384bp-windowed linear index, used to translate a
// genomic region into the list of BGZF chunks worth reading.
package bai

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/nextbase/hts/bgzf"
	"github.com/nextbase/hts/internal"
)

// magic is the four-byte prefix of a BAI index file.
var magic = [4]byte{'B', 'A', 'I', 1}

// linearWindowShift gives a linear index window size of 1<<14 = 16384bp.
const linearWindowShift = 14

// metaBin is the htslib pseudo-bin carrying mapped/unmapped read
// counts. Save writes its offset pair as a zero offset and the
// index's final offset, not the reference's own offset span.
const metaBin = 37450

type chunk struct {
	begin bgzf.Offset
	end   bgzf.Offset
}

type refIndex struct {
	bins      map[uint32][]chunk
	linear    []bgzf.Offset
	linearSet []bool

	mapped   uint64
	unmapped uint64
}

// Index is a single BAM file's bin + linear index, built
// incrementally by Push and finalized by Finish.
type Index struct {
	refs []refIndex

	lastVaddr bgzf.Offset
}

// NewIndex returns an Index ready to accept Push calls for nTargets
// reference sequences, with records beginning at initial.
func NewIndex(nTargets int, initial bgzf.Offset) *Index {
	idx := &Index{refs: make([]refIndex, nTargets), lastVaddr: initial}
	for i := range idx.refs {
		idx.refs[i].bins = make(map[uint32][]chunk)
	}
	return idx
}

// Push records one alignment's placement in the index: tid is the
// reference id (or -1 for unmapped), [begin, end) is its reference
// span, vaddr is the virtual offset immediately after the record was
// read, bin is its BAM index bin, and mapped reports whether the
// record's own UNMAPPED flag was clear.
func (idx *Index) Push(tid, begin, end int, vaddr bgzf.Offset, bin int, mapped bool) error {
	start := idx.lastVaddr
	idx.lastVaddr = vaddr

	if tid < 0 {
		return nil
	}
	if tid >= len(idx.refs) {
		return fmt.Errorf("bai: reference id %d out of range", tid)
	}
	r := &idx.refs[tid]

	r.bins[uint32(bin)] = append(r.bins[uint32(bin)], chunk{begin: start, end: vaddr})

	if mapped {
		r.mapped++
	} else {
		r.unmapped++
	}

	if begin < 0 {
		return nil
	}
	lo := begin >> linearWindowShift
	hi := end >> linearWindowShift
	if hi < lo {
		hi = lo
	}
	if hi >= len(r.linear) {
		grownOff := make([]bgzf.Offset, hi+1)
		grownSet := make([]bool, hi+1)
		copy(grownOff, r.linear)
		copy(grownSet, r.linearSet)
		r.linear, r.linearSet = grownOff, grownSet
	}
	for i := lo; i <= hi; i++ {
		if !r.linearSet[i] || start.Compare(r.linear[i]) < 0 {
			r.linear[i] = start
			r.linearSet[i] = true
		}
	}
	return nil
}

// Finish records the final virtual offset reached after the last
// Push call. Save writes it as the closing offset of each reference's
// pseudo-bin; the bin chunks already carry their own end offsets.
func (idx *Index) Finish(final bgzf.Offset) {
	idx.lastVaddr = final
}

// Save writes the index in BAI binary form.
func (idx *Index) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.Write(magic[:]); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, int32(len(idx.refs))); err != nil {
		return err
	}
	for _, r := range idx.refs {
		nBins := len(r.bins)
		if r.mapped != 0 || r.unmapped != 0 {
			nBins++
		}
		if err := binary.Write(bw, binary.LittleEndian, int32(nBins)); err != nil {
			return err
		}

		bins := make([]uint32, 0, len(r.bins))
		for b := range r.bins {
			bins = append(bins, b)
		}
		sort.Slice(bins, func(i, j int) bool { return bins[i] < bins[j] })

		for _, b := range bins {
			chunks := r.bins[b]
			if err := binary.Write(bw, binary.LittleEndian, b); err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, int32(len(chunks))); err != nil {
				return err
			}
			for _, c := range chunks {
				if err := writeOffset(bw, c.begin); err != nil {
					return err
				}
				if err := writeOffset(bw, c.end); err != nil {
					return err
				}
			}
		}
		if r.mapped != 0 || r.unmapped != 0 {
			if err := binary.Write(bw, binary.LittleEndian, uint32(metaBin)); err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, int32(2)); err != nil {
				return err
			}
			if err := writeOffset(bw, bgzf.Offset{}); err != nil {
				return err
			}
			if err := writeOffset(bw, idx.lastVaddr); err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, r.mapped); err != nil {
				return err
			}
			if err := binary.Write(bw, binary.LittleEndian, r.unmapped); err != nil {
				return err
			}
		}

		if err := binary.Write(bw, binary.LittleEndian, int32(len(r.linear))); err != nil {
			return err
		}
		for _, o := range r.linear {
			if err := writeOffset(bw, o); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func writeOffset(w io.Writer, o bgzf.Offset) error {
	v := uint64(o.File)<<16 | uint64(o.Block)
	return binary.Write(w, binary.LittleEndian, v)
}

func readOffset(r io.Reader) (bgzf.Offset, error) {
	var v uint64
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return bgzf.Offset{}, err
	}
	return bgzf.Offset{File: int64(v >> 16), Block: uint16(v & 0xffff)}, nil
}

// Load reads a BAI binary index from r.
func Load(r io.Reader) (*Index, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, fmt.Errorf("bai: reading magic: %w", err)
	}
	if m != magic {
		return nil, fmt.Errorf("bai: bad magic %v", m)
	}

	var nRef int32
	if err := binary.Read(r, binary.LittleEndian, &nRef); err != nil {
		return nil, fmt.Errorf("bai: reading n_ref: %w", err)
	}
	idx := &Index{refs: make([]refIndex, nRef)}

	for i := range idx.refs {
		ref := &idx.refs[i]
		ref.bins = make(map[uint32][]chunk)

		var nBin int32
		if err := binary.Read(r, binary.LittleEndian, &nBin); err != nil {
			return nil, fmt.Errorf("bai: reading n_bin for ref %d: %w", i, err)
		}
		for b := int32(0); b < nBin; b++ {
			var bin uint32
			if err := binary.Read(r, binary.LittleEndian, &bin); err != nil {
				return nil, err
			}
			var nChunk int32
			if err := binary.Read(r, binary.LittleEndian, &nChunk); err != nil {
				return nil, err
			}
			if bin == metaBin {
				if nChunk != 2 {
					return nil, fmt.Errorf("bai: malformed meta bin for ref %d", i)
				}
				if _, err := readOffset(r); err != nil {
					return nil, err
				}
				if _, err := readOffset(r); err != nil {
					return nil, err
				}
				if err := binary.Read(r, binary.LittleEndian, &ref.mapped); err != nil {
					return nil, err
				}
				if err := binary.Read(r, binary.LittleEndian, &ref.unmapped); err != nil {
					return nil, err
				}
				continue
			}
			chunks := make([]chunk, nChunk)
			for c := range chunks {
				begin, err := readOffset(r)
				if err != nil {
					return nil, err
				}
				end, err := readOffset(r)
				if err != nil {
					return nil, err
				}
				chunks[c] = chunk{begin: begin, end: end}
			}
			ref.bins[bin] = chunks
		}

		var nIntv int32
		if err := binary.Read(r, binary.LittleEndian, &nIntv); err != nil {
			return nil, fmt.Errorf("bai: reading n_intv for ref %d: %w", i, err)
		}
		ref.linear = make([]bgzf.Offset, nIntv)
		for j := range ref.linear {
			o, err := readOffset(r)
			if err != nil {
				return nil, err
			}
			ref.linear[j] = o
		}
	}

	return idx, nil
}

// Chunks returns the list of BGZF chunks that may contain records
// overlapping [begin, end) on reference tid, pruned against the
// linear index's floor for begin and merged where contiguous.
func (idx *Index) Chunks(tid, begin, end int) ([]bgzf.Chunk, error) {
	if tid < 0 || tid >= len(idx.refs) {
		return nil, fmt.Errorf("bai: reference id %d out of range", tid)
	}
	r := &idx.refs[tid]

	var floor bgzf.Offset
	if w := begin >> linearWindowShift; w < len(r.linear) {
		floor = r.linear[w]
	}

	var chunks []chunk
	for _, b := range internal.BinsFor(begin, end) {
		for _, c := range r.bins[uint32(b)] {
			if c.end.Compare(floor) <= 0 {
				continue
			}
			chunks = append(chunks, c)
		}
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].begin.Compare(chunks[j].begin) < 0
	})

	out := make([]bgzf.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if len(out) > 0 && out[len(out)-1].End.Compare(c.begin) >= 0 {
			if c.end.Compare(out[len(out)-1].End) > 0 {
				out[len(out)-1].End = c.end
			}
			continue
		}
		out = append(out, bgzf.Chunk{Begin: c.begin, End: c.end})
	}
	return out, nil
}

// Stats returns the mapped and unmapped alignment counts recorded for
// reference tid in the pseudo-bin, as produced by `samtools idxstats`.
func (idx *Index) Stats(tid int) (mapped, unmapped uint64, err error) {
	if tid < 0 || tid >= len(idx.refs) {
		return 0, 0, fmt.Errorf("bai: reference id %d out of range", tid)
	}
	r := &idx.refs[tid]
	return r.mapped, r.unmapped, nil
}
