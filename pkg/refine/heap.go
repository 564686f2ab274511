package refine

import "container/heap"

// maxNodeHeap is an addressable max-heap of node ids keyed by a float
// gain, with ChangeKey support for the priority-queue FM variant.
type maxNodeHeap struct {
	entries []heapEntry
	index   map[int]int // node id -> position in entries
}

type heapEntry struct {
	node int
	key  float64
}

func newMaxNodeHeap() *maxNodeHeap {
	return &maxNodeHeap{index: make(map[int]int)}
}

// Len implements heap.Interface.
func (h *maxNodeHeap) Len() int { return len(h.entries) }

// Less implements heap.Interface; the largest key wins, ties go to the
// smaller node id.
func (h *maxNodeHeap) Less(i, j int) bool {
	if h.entries[i].key != h.entries[j].key {
		return h.entries[i].key > h.entries[j].key
	}
	return h.entries[i].node < h.entries[j].node
}

// Swap implements heap.Interface.
func (h *maxNodeHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.index[h.entries[i].node] = i
	h.index[h.entries[j].node] = j
}

// Push implements heap.Interface.
func (h *maxNodeHeap) Push(x any) {
	entry := x.(heapEntry)
	h.index[entry.node] = len(h.entries)
	h.entries = append(h.entries, entry)
}

// Pop implements heap.Interface.
func (h *maxNodeHeap) Pop() any {
	last := len(h.entries) - 1
	entry := h.entries[last]
	h.entries = h.entries[:last]
	delete(h.index, entry.node)
	return entry
}

// Insert adds a node with the given key.
func (h *maxNodeHeap) Insert(node int, key float64) {
	heap.Push(h, heapEntry{node: node, key: key})
}

// DeleteMax removes and returns the node with the largest key.
func (h *maxNodeHeap) DeleteMax() int {
	return heap.Pop(h).(heapEntry).node
}

// ChangeKey updates a node's key, restoring heap order. Unknown nodes are
// ignored (they were already deleted).
func (h *maxNodeHeap) ChangeKey(node int, key float64) {
	pos, ok := h.index[node]
	if !ok {
		return
	}
	h.entries[pos].key = key
	heap.Fix(h, pos)
}

// Size returns the number of queued nodes.
func (h *maxNodeHeap) Size() int { return len(h.entries) }
