// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"io"
	"testing"
)

type sliceSource struct {
	recs []*Record
	i    int
}

func (s *sliceSource) Read() (*Record, error) {
	if s.i >= len(s.recs) {
		return nil, io.EOF
	}
	r := s.recs[s.i]
	s.i++
	return r, nil
}

func mustParse(t *testing.T, h *Header, line string) *Record {
	t.Helper()
	r := new(Record)
	if err := r.UnmarshalSAM(h, []byte(line)); err != nil {
		t.Fatal(err)
	}
	return r
}

func TestMergeSortedInterleaves(t *testing.T) {
	h := testHeader(t)

	a := &sliceSource{recs: []*Record{
		mustParse(t, h, "a1\t0\tchr1\t1\t0\t*\t*\t0\t0\t*\t*"),
		mustParse(t, h, "a2\t0\tchr1\t10\t0\t*\t*\t0\t0\t*\t*"),
	}}
	b := &sliceSource{recs: []*Record{
		mustParse(t, h, "b1\t0\tchr1\t5\t0\t*\t*\t0\t0\t*\t*"),
	}}

	next := MergeSorted([]RecordSource{a, b})

	var names []string
	for {
		r, err := next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		names = append(names, r.Name)
	}

	want := []string{"a1", "b1", "a2"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, names[i], want[i])
		}
	}
}

func TestMergeSortedEmpty(t *testing.T) {
	next := MergeSorted(nil)
	if _, err := next(); err != io.EOF {
		t.Errorf("MergeSorted(nil) first call = %v, want io.EOF", err)
	}
}
