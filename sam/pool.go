// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"sync"

	"v.io/x/lib/vlog"
)

var recordPool = sync.Pool{
	New: func() interface{} { return &Record{} },
}

// GetFromFreePool returns a Record from the package-wide free list,
// with every field reset to its zero value. Readers use this to
// avoid an allocation per alignment record.
func GetFromFreePool() *Record {
	r := recordPool.Get().(*Record)
	*r = Record{}
	return r
}

// PutInFreePool returns r to the package-wide free list. The caller
// must not retain any reference to r afterwards.
func PutInFreePool(r *Record) {
	if r == nil {
		vlog.Errorf("sam: PutInFreePool called with nil record")
		return
	}
	recordPool.Put(r)
}
