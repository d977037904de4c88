// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import "testing"

func TestBinForSmallestBin(t *testing.T) {
	// A short read entirely within one 16384bp window lands in the
	// lowest (finest-granularity, 16384bp) tier of bins.
	bin := BinFor(100, 200)
	if bin < 4681 || bin >= 37449 {
		t.Errorf("BinFor(100, 200) = %d, want a leaf-level bin in [4681, 37449)", bin)
	}
}

func TestBinForSpanningWindows(t *testing.T) {
	// A span crossing a 16384bp boundary but staying within a larger
	// window lands in a coarser tier than two reads confined to a
	// single window each.
	leaf := BinFor(0, 100)
	spanning := BinFor(16383, 16385)
	if spanning == leaf {
		t.Errorf("BinFor for a window-spanning read should not match a single-window leaf bin")
	}
}

func TestBinsForIncludesBinFor(t *testing.T) {
	beg, end := 5000, 20000
	bin := BinFor(beg, end)
	bins := BinsFor(beg, end)
	found := false
	for _, b := range bins {
		if b == bin {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("BinsFor(%d, %d) = %v, does not contain BinFor result %d", beg, end, bins, bin)
	}
}

func TestBinsForAlwaysIncludesBin0(t *testing.T) {
	bins := BinsFor(0, 1<<28)
	if len(bins) == 0 || bins[0] != 0 {
		t.Errorf("BinsFor should always include the whole-reference bin 0, got %v", bins)
	}
}

func TestIsValidIndexPos(t *testing.T) {
	cases := []struct {
		pos  int
		want bool
	}{
		{-1, false},
		{0, true},
		{MaxIndexPos - 1, true},
		{MaxIndexPos, false},
	}
	for _, c := range cases {
		if got := IsValidIndexPos(c.pos); got != c.want {
			t.Errorf("IsValidIndexPos(%d) = %v, want %v", c.pos, got, c.want)
		}
	}
}
