// Copyright ©2012 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sam

import (
	"container/heap"
	"io"
)

// RecordSource supplies coordinate-sorted records one at a time, such
// as a bam.Reader. io.EOF from Read signals the source is exhausted.
type RecordSource interface {
	Read() (*Record, error)
}

// MergeSorted merges records from several coordinate-sorted
// RecordSources into a single coordinate-sorted stream. Each source
// must already be sorted by Record.LessByCoordinate; MergeSorted does
// not re-sort, it only interleaves. The returned function yields one
// record per call and a final (nil, io.EOF) once every source is
// exhausted.
func MergeSorted(sources []RecordSource) func() (*Record, error) {
	q := make(mergeQueue, 0, len(sources))
	for _, s := range sources {
		rec, err := s.Read()
		if err != nil {
			continue
		}
		q = append(q, &mergeItem{src: s, rec: rec})
	}
	heap.Init(&q)

	return func() (*Record, error) {
		if len(q) == 0 {
			return nil, io.EOF
		}
		top := q[0]
		rec := top.rec

		next, err := top.src.Read()
		if err != nil {
			heap.Pop(&q)
		} else {
			top.rec = next
			heap.Fix(&q, 0)
		}
		return rec, nil
	}
}

type mergeItem struct {
	src RecordSource
	rec *Record
}

type mergeQueue []*mergeItem

func (q mergeQueue) Len() int { return len(q) }
func (q mergeQueue) Less(i, j int) bool {
	return q[i].rec.LessByCoordinate(q[j].rec)
}
func (q mergeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *mergeQueue) Push(x interface{}) {
	*q = append(*q, x.(*mergeItem))
}
func (q *mergeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
