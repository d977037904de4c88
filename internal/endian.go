// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package internal holds helpers shared between the sam and bam
// packages that have no business being part of either's public API:
// endian normalization and the BAM index binning scheme.
package internal

import "unsafe"

// IsBigEndian reports whether the host is big-endian. The BAM wire
// format is always little-endian; this flag decides whether the
// codec needs to byte-swap on the way in and out.
var IsBigEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 0
}()

// Swap16 byte-swaps a 16-bit word.
func Swap16(v uint16) uint16 {
	return v<<8 | v>>8
}

// Swap32 byte-swaps a 32-bit word.
func Swap32(v uint32) uint32 {
	return v<<24 | (v&0xff00)<<8 | (v&0xff0000)>>8 | v>>24
}

// Swap64 byte-swaps a 64-bit word.
func Swap64(v uint64) uint64 {
	return uint64(Swap32(uint32(v)))<<32 | uint64(Swap32(uint32(v>>32)))
}
