// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bam

import "sync"

// scratchPool recycles the backing arrays used to hold one record's
// raw block bytes between Reader.Read calls, avoiding an allocation
// per record on the common path where records are a similar size.
var scratchPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 512)
		return &b
	},
}

func getScratch(n int) []byte {
	p := scratchPool.Get().(*[]byte)
	b := *p
	if cap(b) < n {
		b = make([]byte, n)
	} else {
		b = b[:n]
	}
	return b
}

func putScratch(b []byte) {
	scratchPool.Put(&b)
}
