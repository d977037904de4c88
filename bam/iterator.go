// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"io"

	"github.com/nextbase/hts/bgzf"
	"github.com/nextbase/hts/sam"
)

// Iterator walks the records of a region query, stepping through a
// sequence of BGZF chunks and filtering out records that don't
// actually overlap the requested interval.
type Iterator struct {
	r *Reader

	tid, begin, end int
	chunks          []bgzf.Chunk
	chunkIdx        int

	rec  *sam.Record
	err  error
	done bool
}

// NewIterator returns an Iterator over r restricted to the given
// chunks, yielding only records on reference tid overlapping
// [begin, end).
func NewIterator(r *Reader, tid, begin, end int, chunks []bgzf.Chunk) *Iterator {
	return &Iterator{r: r, tid: tid, begin: begin, end: end, chunks: chunks}
}

// Next advances the Iterator to the next overlapping record,
// returning false when the query is exhausted or an error occurs.
func (it *Iterator) Next() bool {
	if it.done || it.err != nil {
		return false
	}
	if it.r.c == nil {
		if !it.advanceChunk() {
			return false
		}
	}
	for {
		rec, err := it.r.Read()
		if err != nil {
			if err == io.EOF {
				if !it.advanceChunk() {
					return false
				}
				continue
			}
			it.err = err
			it.done = true
			return false
		}

		if rec.RefID() != it.tid {
			it.done = true
			return false
		}
		if rec.Pos >= it.end {
			it.done = true
			return false
		}
		if rec.End() <= it.begin {
			continue
		}
		it.rec = rec
		return true
	}
}

func (it *Iterator) advanceChunk() bool {
	if it.chunkIdx >= len(it.chunks) {
		it.done = true
		return false
	}
	c := it.chunks[it.chunkIdx]
	it.chunkIdx++
	if err := it.r.SetChunk(&c); err != nil {
		it.err = err
		it.done = true
		return false
	}
	return true
}

// Record returns the record produced by the most recent call to
// Next.
func (it *Iterator) Record() *sam.Record { return it.rec }

// Error returns the error, if any, that terminated iteration.
func (it *Iterator) Error() error { return it.err }

// Close does nothing and returns nil. It closes neither the
// underlying Reader nor the stream the Reader was built from.
func (it *Iterator) Close() error { return nil }
