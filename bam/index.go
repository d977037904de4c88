// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"io"

	"github.com/nextbase/hts/bai"
	"github.com/nextbase/hts/sam"
)

// BuildIndex streams every record out of r, building and returning
// the BAI-format index of the stream. r must be positioned at the
// start of the alignment records (immediately after the header); use
// a fresh Reader opened on the same source being indexed.
func BuildIndex(r *Reader) (*bai.Index, error) {
	idx := bai.NewIndex(len(r.Header().Refs()), r.r.Offset())
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		end := r.r.Offset()

		reflen := rec.Cigar.RefSpan()
		mapped := rec.Flags&sam.Unmapped == 0
		if err := idx.Push(rec.RefID(), rec.Pos, rec.Pos+reflen, end, rec.Bin(), mapped); err != nil {
			return nil, err
		}
	}
	idx.Finish(r.r.Offset())
	return idx, nil
}

// WriteIndex builds the BAI index for r and writes it to w.
func WriteIndex(w io.Writer, r *Reader) error {
	idx, err := BuildIndex(r)
	if err != nil {
		return err
	}
	return idx.Save(w)
}

// IndexReader pairs a Reader with its BAI index, ready for region
// queries via Query.
type IndexReader struct {
	r   *Reader
	idx *bai.Index
}

// NewIndexReader returns an IndexReader combining r with a
// previously built or loaded idx.
func NewIndexReader(r *Reader, idx *bai.Index) *IndexReader {
	return &IndexReader{r: r, idx: idx}
}
