// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bai

import (
	"bytes"
	"testing"

	"github.com/nextbase/hts/bgzf"
)

func off(file int64, block uint16) bgzf.Offset {
	return bgzf.Offset{File: file, Block: block}
}

func TestPushSaveLoadRoundTrip(t *testing.T) {
	idx := NewIndex(2, off(0, 0))

	if err := idx.Push(0, 100, 200, off(10, 0), 4681, true); err != nil {
		t.Fatal(err)
	}
	if err := idx.Push(0, 16500, 16600, off(20, 0), 4682, true); err != nil {
		t.Fatal(err)
	}
	if err := idx.Push(-1, -1, -1, off(30, 0), 4680, false); err != nil {
		t.Fatal(err)
	}
	idx.Finish(off(40, 0))

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}

	mapped, unmapped, err := loaded.Stats(0)
	if err != nil {
		t.Fatal(err)
	}
	if mapped != 2 || unmapped != 0 {
		t.Errorf("Stats(0) = (%d, %d), want (2, 0)", mapped, unmapped)
	}

	chunks, err := loaded.Chunks(0, 100, 200)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("Chunks(0, 100, 200) returned no chunks")
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("NOPE")))
	if err == nil {
		t.Fatal("Load with bad magic should fail")
	}
}

func TestChunksOutOfRangeReference(t *testing.T) {
	idx := NewIndex(1, off(0, 0))
	if _, err := idx.Chunks(5, 0, 100); err == nil {
		t.Error("Chunks with out-of-range tid should fail")
	}
}

func TestPushOutOfRangeReference(t *testing.T) {
	idx := NewIndex(1, off(0, 0))
	if err := idx.Push(5, 0, 100, off(10, 0), 0, true); err == nil {
		t.Error("Push with out-of-range tid should fail")
	}
}

func TestLinearIndexFloorsChunkSelection(t *testing.T) {
	idx := NewIndex(1, off(0, 0))
	// Two records in the same window and bin: the linear index floor
	// for that window is the first record's start offset, so neither
	// chunk lies at or before it and Chunks must still return them.
	if err := idx.Push(0, 0, 10, off(5, 0), 4681, true); err != nil {
		t.Fatal(err)
	}
	if err := idx.Push(0, 0, 10, off(15, 0), 4681, true); err != nil {
		t.Fatal(err)
	}
	idx.Finish(off(20, 0))

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	chunks, err := loaded.Chunks(0, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
}
