// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"testing"
)

func TestHeaderBinaryRoundTripEmpty(t *testing.T) {
	h, err := NewHeader(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := h.EncodeBinary(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := DecodeHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Refs()) != 0 {
		t.Errorf("Refs() = %v, want empty", got.Refs())
	}
}

func TestHeaderBinaryRoundTripTwoReferences(t *testing.T) {
	r1, err := NewReference("chr1", 1000)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := NewReference("chr2", 2000)
	if err != nil {
		t.Fatal(err)
	}
	h, err := NewHeader([]byte("@HD\tVN:1.6\tSO:coordinate\n"), []*Reference{r1, r2})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := h.EncodeBinary(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := DecodeHeader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Text(), h.Text()) {
		t.Errorf("Text() = %q, want %q", got.Text(), h.Text())
	}
	refs := got.Refs()
	if len(refs) != 2 {
		t.Fatalf("Refs() has %d entries, want 2", len(refs))
	}
	if refs[0].Name() != "chr1" || refs[0].Len() != 1000 {
		t.Errorf("refs[0] = %s:%d, want chr1:1000", refs[0].Name(), refs[0].Len())
	}
	if refs[1].Name() != "chr2" || refs[1].Len() != 2000 {
		t.Errorf("refs[1] = %s:%d, want chr2:2000", refs[1].Name(), refs[1].Len())
	}
	if got.TIDFor("chr2") != 1 {
		t.Errorf("TIDFor(chr2) = %d, want 1", got.TIDFor("chr2"))
	}
	if got.TIDFor("chr3") != -1 {
		t.Errorf("TIDFor(chr3) = %d, want -1", got.TIDFor("chr3"))
	}
}

func TestDecodeHeaderRejectsBadMagic(t *testing.T) {
	_, err := DecodeHeader(bytes.NewReader([]byte("NOPE")))
	if err == nil {
		t.Fatal("DecodeHeader with bad magic should fail")
	}
}

func TestParseHeaderTextDuplicateSN(t *testing.T) {
	text := []byte("@SQ\tSN:chr1\tLN:100\n@SQ\tSN:chr1\tLN:200\n")
	h, err := ParseHeaderText(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.Refs()) != 1 {
		t.Fatalf("Refs() has %d entries, want 1 (duplicate dropped)", len(h.Refs()))
	}
	if h.Refs()[0].Len() != 100 {
		t.Errorf("kept reference length = %d, want 100 (first occurrence)", h.Refs()[0].Len())
	}
}

func TestAddCommentAndProgram(t *testing.T) {
	h, err := NewHeader(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	h.AddComment("a comment\twith\ntabs and newlines")
	if err := h.AddProgram("bwa", "BWA", "bwa mem ref.fa", "", "0.7.17"); err != nil {
		t.Fatal(err)
	}
	text := string(h.Text())
	if !bytes.Contains([]byte(text), []byte("@CO\ta comment with tabs and newlines\n")) {
		t.Errorf("AddComment did not sanitize control characters: %q", text)
	}
	if !bytes.Contains([]byte(text), []byte("@PG\tID:bwa\tPN:BWA\tCL:bwa mem ref.fa\tVN:0.7.17\n")) {
		t.Errorf("AddProgram produced unexpected text: %q", text)
	}
}

func TestAddProgramRequiresID(t *testing.T) {
	h, _ := NewHeader(nil, nil)
	if err := h.AddProgram("", "", "", "", ""); err == nil {
		t.Error("AddProgram with empty ID should fail")
	}
}
