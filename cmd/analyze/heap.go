package main

import (
	"container/heap"
	"sort"
	"sync"
)

// fileHeap is a min-heap on size, so the smallest of the current top-K sits
// at index 0 and is the one evicted.
type fileHeap []fileEntry

func (h fileHeap) Len() int { return len(h) }
func (h fileHeap) Less(i, j int) bool {
	if h[i].Size != h[j].Size {
		return h[i].Size < h[j].Size
	}
	return h[i].Path > h[j].Path
}
func (h fileHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *fileHeap) Push(x any) { *h = append(*h, x.(fileEntry)) }

func (h *fileHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// largeFileTracker keeps the K largest files seen by concurrent walkers.
type largeFileTracker struct {
	mu       sync.Mutex
	heap     fileHeap
	capacity int
	minSize  int64
}

func newLargeFileTracker(capacity int, minSize int64) *largeFileTracker {
	if capacity <= 0 {
		capacity = defaultLargeFileCount
	}
	return &largeFileTracker{
		heap:     make(fileHeap, 0, capacity),
		capacity: capacity,
		minSize:  minSize,
	}
}

func (t *largeFileTracker) add(f fileEntry) {
	if f.Size < t.minSize {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.heap) < t.capacity {
		heap.Push(&t.heap, f)
		return
	}
	smallest := t.heap[0]
	if f.Size < smallest.Size || (f.Size == smallest.Size && f.Path >= smallest.Path) {
		return
	}
	t.heap[0] = f
	heap.Fix(&t.heap, 0)
}

// list returns the tracked files, largest first.
func (t *largeFileTracker) list() []fileEntry {
	t.mu.Lock()
	files := append([]fileEntry(nil), t.heap...)
	t.mu.Unlock()

	sort.Slice(files, func(i, j int) bool {
		if files[i].Size != files[j].Size {
			return files[i].Size > files[j].Size
		}
		return files[i].Path < files[j].Path
	})
	return files
}
