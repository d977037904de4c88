// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

// MaxIndexPos is the exclusive upper bound on 0-based coordinates that
// can be placed in a BAM index bin. htslib uses the same 1<<29 ceiling
// for nominal (non-CSI) indexing.
const MaxIndexPos = 1 << 29

// NumBins is the number of bins in a nominal (non-CSI) binning index,
// bins 0 through 37449; the pseudo-bin 37450 is not counted.
const NumBins = 37450

// IsValidIndexPos reports whether p is representable in a nominal
// binning index.
func IsValidIndexPos(p int) bool {
	return 0 <= p && p < MaxIndexPos
}

// BinFor calculates the bin number for a record spanning
// [beg, end) in 0-based, half-open coordinates, following the
// standard htslib reg2bin scheme (six-level UCSC binning).
func BinFor(beg, end int) int {
	end--
	switch {
	case beg>>14 == end>>14:
		return ((1 << 15) - 1)/7 + (beg >> 14)
	case beg>>17 == end>>17:
		return ((1 << 12) - 1)/7 + (beg >> 17)
	case beg>>20 == end>>20:
		return ((1 << 9) - 1)/7 + (beg >> 20)
	case beg>>23 == end>>23:
		return ((1 << 6) - 1)/7 + (beg >> 23)
	case beg>>26 == end>>26:
		return ((1 << 3) - 1)/7 + (beg >> 26)
	}
	return 0
}

// BinsFor returns the list of bin numbers that a query over
// [beg, end) may overlap, following htslib's reg2bins.
func BinsFor(beg, end int) []int {
	end--
	bins := make([]int, 0, 37)
	bins = append(bins, 0)
	add := func(shift, offset int) {
		lo := offset + (beg >> uint(shift))
		hi := offset + (end >> uint(shift))
		for b := lo; b <= hi; b++ {
			bins = append(bins, b)
		}
	}
	add(26, 1)
	add(23, 9)
	add(20, 73)
	add(17, 585)
	add(14, 4681)
	return bins
}
