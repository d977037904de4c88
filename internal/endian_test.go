// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package internal

import "testing"

func TestSwap16(t *testing.T) {
	if got := Swap16(0x1234); got != 0x3412 {
		t.Errorf("Swap16(0x1234) = 0x%x, want 0x3412", got)
	}
}

func TestSwap32(t *testing.T) {
	if got := Swap32(0x12345678); got != 0x78563412 {
		t.Errorf("Swap32(0x12345678) = 0x%x, want 0x78563412", got)
	}
}

func TestSwap64(t *testing.T) {
	if got := Swap64(0x0102030405060708); got != 0x0807060504030201 {
		t.Errorf("Swap64(...) = 0x%x, want 0x0807060504030201", got)
	}
}

func TestSwapInvolution(t *testing.T) {
	var v32 uint32 = 0xdeadbeef
	if got := Swap32(Swap32(v32)); got != v32 {
		t.Errorf("Swap32(Swap32(v)) = 0x%x, want 0x%x", got, v32)
	}
	var v64 uint64 = 0x0011223344556677
	if got := Swap64(Swap64(v64)); got != v64 {
		t.Errorf("Swap64(Swap64(v)) = 0x%x, want 0x%x", got, v64)
	}
}
