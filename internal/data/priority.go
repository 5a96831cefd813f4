package data

// entry is a queued value tagged with its submission sequence number.
type entry struct {
	value interface{}
	seq   uint64
}

// sequenceHeap is a min heap of entries ordered by sequence number, so the oldest submission is
// always at the root. It implements heap.Interface.
type sequenceHeap []*entry

func (h sequenceHeap) Len() int {
	return len(h)
}

func (h sequenceHeap) Less(i, j int) bool {
	return h[i].seq < h[j].seq
}

func (h sequenceHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push appends an entry; heap.Push restores ordering afterwards.
func (h *sequenceHeap) Push(x interface{}) {
	*h = append(*h, x.(*entry))
}

// Pop detaches the last entry; heap.Pop has already moved the root there.
func (h *sequenceHeap) Pop() interface{} {
	old := *h
	n := len(old)
	last := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]

	return last
}
