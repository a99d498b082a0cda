// Package queue provides the width-ordered worklists that drive traversal,
// split discovery and join finalization.
package queue

// Item is a queue entry. Entries are ordered by Width (ascending for a min
// queue, descending for a max queue) and then by Key ascending in both modes,
// so equal-width entries always pop in a deterministic order.
type Item[T any] struct {
	Value T
	Width int
	Key   uint64
}

// PriorityQueue is a value-based binary heap.
type PriorityQueue[T any] struct {
	isMaxHeap bool
	items     []Item[T]
	pushes    int
	pops      int
}

// NewMin initializes a queue that pops the narrowest entry first.
func NewMin[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{items: make([]Item[T], 0, capacity)}
}

// NewMax initializes a queue that pops the widest entry first.
func NewMax[T any](capacity int) *PriorityQueue[T] {
	return &PriorityQueue[T]{isMaxHeap: true, items: make([]Item[T], 0, capacity)}
}

// Len returns the number of queued entries.
func (pq *PriorityQueue[T]) Len() int { return len(pq.items) }

// Pushes returns the number of entries pushed since creation or Reset.
func (pq *PriorityQueue[T]) Pushes() int { return pq.pushes }

// Pops returns the number of entries popped since creation or Reset.
func (pq *PriorityQueue[T]) Pops() int { return pq.pops }

// TopItem returns the next entry without removing it.
func (pq *PriorityQueue[T]) TopItem() (Item[T], bool) {
	if len(pq.items) == 0 {
		return Item[T]{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an entry while maintaining the heap invariant.
func (pq *PriorityQueue[T]) PushItem(item Item[T]) {
	pq.items = append(pq.items, item)
	pq.pushes++
	pq.siftUp(len(pq.items) - 1)
}

// Push is shorthand for PushItem.
func (pq *PriorityQueue[T]) Push(value T, width int, key uint64) {
	pq.PushItem(Item[T]{Value: value, Width: width, Key: key})
}

// PopItem removes and returns the next entry.
func (pq *PriorityQueue[T]) PopItem() (Item[T], bool) {
	n := len(pq.items)
	if n == 0 {
		return Item[T]{}, false
	}
	root := pq.items[0]
	last := pq.items[n-1]
	pq.items[n-1] = Item[T]{}
	pq.items = pq.items[:n-1]
	if n-1 > 0 {
		pq.items[0] = last
		pq.siftDown(0)
	}
	pq.pops++
	return root, true
}

// Reset clears the queue for reuse.
func (pq *PriorityQueue[T]) Reset() {
	clear(pq.items)
	pq.items = pq.items[:0]
	pq.pushes, pq.pops = 0, 0
}

func (pq *PriorityQueue[T]) less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if a.Width != b.Width {
		if pq.isMaxHeap {
			return a.Width > b.Width
		}
		return a.Width < b.Width
	}
	return a.Key < b.Key
}

func (pq *PriorityQueue[T]) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue[T]) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}

// VertexKey packs a vertex id and an offset into a tie-break key.
func VertexKey(id uint32, offset int) uint64 {
	return uint64(id)<<32 | uint64(uint32(offset))
}
