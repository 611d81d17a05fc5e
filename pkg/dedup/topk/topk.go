// Package topk keeps the N largest files seen during a scan without
// holding the whole file set in memory.
package topk

import (
	"container/heap"
	"sort"

	"github.com/jamesainslie/dedup/pkg/dedup/types"
)

// Collector retains the limit largest records pushed into it. A Collector
// is not safe for concurrent use.
type Collector struct {
	limit int
	files minHeap
}

// New returns a collector keeping at most limit records. A non-positive
// limit keeps everything.
func New(limit int) *Collector {
	return &Collector{limit: limit}
}

// Add offers a record to the collector. Records smaller than the current
// floor are dropped once the collector is full.
func (c *Collector) Add(rec types.FileRecord) {
	if c.limit <= 0 {
		heap.Push(&c.files, rec)
		return
	}
	if len(c.files) < c.limit {
		heap.Push(&c.files, rec)
		return
	}
	if rec.Size <= c.files[0].Size {
		return
	}
	c.files[0] = rec
	heap.Fix(&c.files, 0)
}

// Len reports how many records are currently retained.
func (c *Collector) Len() int { return len(c.files) }

// Ranked returns the retained records ordered largest first, ties broken
// by path. The collector remains usable afterwards.
func (c *Collector) Ranked() []types.FileRecord {
	out := make([]types.FileRecord, len(c.files))
	copy(out, c.files)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Size != out[j].Size {
			return out[i].Size > out[j].Size
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// minHeap orders records smallest first so the root is the eviction
// candidate when the collector is full.
type minHeap []types.FileRecord

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return h[i].Size < h[j].Size }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(types.FileRecord)) }

func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	rec := old[n-1]
	*h = old[:n-1]
	return rec
}
