// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"bytes"
	"testing"
)

func TestNewAuxNarrowsIntegerWidth(t *testing.T) {
	cases := []struct {
		v        interface{}
		wantType byte
	}{
		{0, 'C'},
		{255, 'C'},
		{256, 'S'},
		{65535, 'S'},
		{65536, 'I'},
		{-1, 'c'},
		{-128, 'c'},
		{-129, 's'},
		{-32768, 's'},
		{-32769, 'i'},
	}
	for _, c := range cases {
		a, err := NewAux(Tag{'X', 'X'}, c.v)
		if err != nil {
			t.Fatalf("NewAux(%v): %v", c.v, err)
		}
		if a.Type() != c.wantType {
			t.Errorf("NewAux(%v).Type() = %c, want %c", c.v, a.Type(), c.wantType)
		}
	}
}

func TestParseAuxTextNarrowing(t *testing.T) {
	a, err := ParseAux([]byte("NM:i:-1"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Type() != 'c' {
		t.Errorf("Type() = %c, want c", a.Type())
	}
	if a.Value().(int8) != -1 {
		t.Errorf("Value() = %v, want -1", a.Value())
	}
}

func TestParseAuxCharQuirk(t *testing.T) {
	a, err := ParseAux([]byte("XA:A:xyz"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Type() != 'A' {
		t.Errorf("Type() = %c, want A", a.Type())
	}
	if a.Value().(byte) != 'x' {
		t.Errorf("Value() = %v, want 'x' (only the first byte)", a.Value())
	}
}

func TestAuxBinaryRoundTrip(t *testing.T) {
	a1, err := NewAux(Tag{'N', 'M'}, 3)
	if err != nil {
		t.Fatal(err)
	}
	a2, err := NewAux(Tag{'A', 'S'}, -5)
	if err != nil {
		t.Fatal(err)
	}
	a3, err := NewAux(Tag{'R', 'G'}, "sample1")
	if err != nil {
		t.Fatal(err)
	}

	built := BuildAux([]Aux{a1, a2, a3})
	parsed, err := ParseAuxBinary(built)
	if err != nil {
		t.Fatal(err)
	}
	if len(parsed) != 3 {
		t.Fatalf("ParseAuxBinary returned %d fields, want 3", len(parsed))
	}
	if !bytes.Equal(parsed[0], a1) || !bytes.Equal(parsed[1], a2) || !bytes.Equal(parsed[2], a3) {
		t.Errorf("round trip mismatch: %v", parsed)
	}
}

func TestParseAuxArrayBinary(t *testing.T) {
	a, err := ParseAux([]byte("XB:B:i,1,2,3"))
	if err != nil {
		t.Fatal(err)
	}
	v := a.Value().([]int32)
	want := []int32{1, 2, 3}
	if len(v) != len(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
	for i := range want {
		if v[i] != want[i] {
			t.Errorf("element %d: got %d, want %d", i, v[i], want[i])
		}
	}
}

func TestAuxFieldsGetUniqueDuplicate(t *testing.T) {
	tag := Tag{'D', 'D'}
	a1, _ := NewAux(tag, 1)
	a2, _ := NewAux(tag, 2)
	aa := AuxFields{a1, a2}
	if _, err := aa.GetUnique(tag); err == nil {
		t.Error("GetUnique with duplicate tags should error")
	}
}
