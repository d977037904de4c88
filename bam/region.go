// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nextbase/hts/sam"
)

// ParseRegion parses a "name:begin-end" or bare "name" region string
// against h's reference dictionary, returning the 0-based, half-open
// [begin, end) interval on the matching reference. A bare name with
// no range queries the whole reference.
func ParseRegion(h *sam.Header, region string) (tid, begin, end int, err error) {
	name := region
	rng := ""
	if i := strings.LastIndexByte(region, ':'); i >= 0 {
		name, rng = region[:i], region[i+1:]
	}

	ref := h.Reference(name)
	if ref == nil {
		// The whole string may itself be a reference name containing
		// a colon; retry once against it verbatim before failing.
		ref = h.Reference(region)
		if ref == nil {
			return 0, 0, 0, fmt.Errorf("bam: no reference named %q", region)
		}
		return ref.ID(), 0, ref.Len(), nil
	}
	if rng == "" {
		return ref.ID(), 0, ref.Len(), nil
	}

	parts := strings.SplitN(rng, "-", 2)
	b, err := strconv.Atoi(strings.ReplaceAll(parts[0], ",", ""))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("bam: malformed region %q: %w", region, err)
	}
	e := ref.Len()
	if len(parts) == 2 {
		e, err = strconv.Atoi(strings.ReplaceAll(parts[1], ",", ""))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("bam: malformed region %q: %w", region, err)
		}
	}
	if b < 1 {
		return 0, 0, 0, fmt.Errorf("bam: region %q: begin must be 1-based and positive", region)
	}
	return ref.ID(), b - 1, e, nil
}

// Query returns an Iterator over the records in ir overlapping
// region.
func (ir *IndexReader) Query(region string) (*Iterator, error) {
	tid, begin, end, err := ParseRegion(ir.r.Header(), region)
	if err != nil {
		return nil, err
	}
	chunks, err := ir.idx.Chunks(tid, begin, end)
	if err != nil {
		return nil, err
	}
	return NewIterator(ir.r, tid, begin, end, chunks), nil
}
