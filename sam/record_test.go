// Copyright ©2012-2013 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"testing"
)

func testHeader(t *testing.T) *Header {
	t.Helper()
	r1, err := NewReference("chr1", 1000)
	if err != nil {
		t.Fatal(err)
	}
	h, err := NewHeader(nil, []*Reference{r1})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestUnmarshalMarshalSAMRoundTrip(t *testing.T) {
	h := testHeader(t)
	line := []byte("read1\t0\tchr1\t101\t60\t5M\t=\t101\t0\tACGTN\tIIIII\tNM:i:0\tAS:i:5")

	r := new(Record)
	if err := r.UnmarshalSAM(h, line); err != nil {
		t.Fatal(err)
	}
	if r.Pos != 100 {
		t.Errorf("Pos = %d, want 100 (0-based)", r.Pos)
	}
	if r.Ref.Name() != "chr1" {
		t.Errorf("Ref = %s, want chr1", r.Ref.Name())
	}
	if r.Seq.Length != 5 {
		t.Errorf("Seq.Length = %d, want 5", r.Seq.Length)
	}

	out, err := r.MarshalSAM(FlagDecimal)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, line) {
		t.Errorf("round trip = %q, want %q", out, line)
	}
}

func TestUnmarshalSAMUnmappedRecord(t *testing.T) {
	line := []byte("read2\t4\t*\t0\t0\t*\t*\t0\t0\t*\t*")
	r := new(Record)
	if err := r.UnmarshalSAM(nil, line); err != nil {
		t.Fatal(err)
	}
	if r.Flags&Unmapped == 0 {
		t.Error("expected Unmapped flag set")
	}
	if r.Ref != nil {
		t.Errorf("Ref = %v, want nil for unmapped record", r.Ref)
	}
	if r.Pos != -1 {
		t.Errorf("Pos = %d, want -1", r.Pos)
	}
	if !IsValidRecord(r) {
		t.Error("IsValidRecord should accept a well-formed unmapped record")
	}
}

func TestUnmarshalSAMSeqQualLengthMismatch(t *testing.T) {
	line := []byte("read3\t0\tchr1\t1\t60\t5M\t=\t1\t0\tACGTN\tII")
	r := new(Record)
	if err := r.UnmarshalSAM(testHeader(t), line); err == nil {
		t.Error("expected an error for mismatched sequence/quality length")
	}
}

func TestUnmarshalSAMCigarSeqLengthMismatch(t *testing.T) {
	line := []byte("read4\t0\tchr1\t1\t60\t10M\t=\t1\t0\tACGTN\tIIIII")
	r := new(Record)
	if err := r.UnmarshalSAM(testHeader(t), line); err == nil {
		t.Error("expected an error for mismatched CIGAR/sequence length")
	}
}

// TestUnmarshalSAMUnknownReferenceWarns checks that survivable anomalies
// do not abort parsing: a non-positive position on a known reference
// demotes the record to unmapped, and an unknown rname resolves to
// tid=-1 with UNMAPPED set, neither returning an error.
func TestUnmarshalSAMUnknownReferenceWarns(t *testing.T) {
	h := testHeader(t)
	r := new(Record)
	line := []byte("a\t0\tchr1\t0\t0\t*\t*\t0\t0\t*\t*")
	if err := r.UnmarshalSAM(h, line); err != nil {
		t.Fatalf("UnmarshalSAM returned an error for a survivable anomaly: %v", err)
	}
	if r.Pos != -1 {
		t.Errorf("Pos = %d, want -1 after demotion", r.Pos)
	}
	if r.Flags&Unmapped == 0 {
		t.Error("expected Unmapped flag set after pos<0 demotion")
	}
	if !IsValidRecord(r) {
		t.Error("IsValidRecord should accept the demoted record")
	}

	r2 := new(Record)
	line2 := []byte("b\t0\tchrZ\t1\t0\t5M\t*\t0\t0\tACGTN\tIIIII")
	if err := r2.UnmarshalSAM(h, line2); err != nil {
		t.Fatalf("UnmarshalSAM returned an error for an unknown reference name: %v", err)
	}
	if r2.Ref != nil {
		t.Errorf("Ref = %v, want nil for unknown reference name", r2.Ref)
	}
	if r2.RefID() >= 0 {
		t.Errorf("RefID() = %d, want -1 for unknown reference name", r2.RefID())
	}
	if r2.Flags&Unmapped == 0 {
		t.Error("expected Unmapped flag set when tid<0")
	}
}

// TestUnmarshalSAMMissingCigarWarns exercises the "*" CIGAR on an
// otherwise-mapped record: it must warn and set UNMAPPED rather than
// leave the record inconsistent.
func TestUnmarshalSAMMissingCigarWarns(t *testing.T) {
	h := testHeader(t)
	r := new(Record)
	line := []byte("a\t0\tchr1\t1\t0\t*\t*\t0\t0\t*\t*")
	if err := r.UnmarshalSAM(h, line); err != nil {
		t.Fatal(err)
	}
	if r.Flags&Unmapped == 0 {
		t.Error("missing CIGAR on a non-unmapped record should set UNMAPPED")
	}
}

func TestLessByCoordinateUnmappedSortsLast(t *testing.T) {
	h := testHeader(t)
	mapped := new(Record)
	if err := mapped.UnmarshalSAM(h, []byte("a\t0\tchr1\t1\t0\t*\t*\t0\t0\t*\t*")); err != nil {
		t.Fatal(err)
	}
	unmapped := new(Record)
	if err := unmapped.UnmarshalSAM(h, []byte("b\t4\t*\t0\t0\t*\t*\t0\t0\t*\t*")); err != nil {
		t.Fatal(err)
	}
	if !mapped.LessByCoordinate(unmapped) {
		t.Error("a mapped record should sort before an unmapped one")
	}
	if unmapped.LessByCoordinate(mapped) {
		t.Error("an unmapped record should not sort before a mapped one")
	}
	if unmapped.LessByCoordinate(unmapped) {
		t.Error("LessByCoordinate should be irreflexive")
	}
}

func TestRecordEqual(t *testing.T) {
	h := testHeader(t)
	a := new(Record)
	if err := a.UnmarshalSAM(h, []byte("a\t0\tchr1\t1\t0\t3M\t=\t1\t0\tACG\tIII\tNM:i:0")); err != nil {
		t.Fatal(err)
	}
	b := new(Record)
	if err := b.UnmarshalSAM(h, []byte("a\t0\tchr1\t1\t0\t3M\t=\t1\t0\tACG\tIII\tNM:i:0")); err != nil {
		t.Fatal(err)
	}
	if !a.Equal(b) {
		t.Error("identically-parsed records should be Equal")
	}
	b.Pos++
	if a.Equal(b) {
		t.Error("records differing in Pos should not be Equal")
	}
}

func TestBinDoublyUnmapped(t *testing.T) {
	r := new(Record)
	if err := r.UnmarshalSAM(nil, []byte("a\t77\t*\t0\t0\t*\t*\t0\t0\t*\t*")); err != nil {
		t.Fatal(err)
	}
	if got := r.Bin(); got != 4680 {
		t.Errorf("Bin() for doubly-unmapped record = %d, want 4680", got)
	}
}
