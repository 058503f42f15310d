package domain

import (
	"container/heap"
	"sort"
)

// DefaultSeenCapacity bounds the recency index. The feed serves at most the
// 500 most recent events per fetch, so twice that window is enough to never
// re-ingest an event that is still retrievable upstream.
const DefaultSeenCapacity = 1000

// BoundedIDSet is a fixed-capacity set of event IDs that always retains the
// largest IDs it has been offered. Feed IDs increase monotonically, so the
// largest IDs are the most recently issued; once full, admitting a new
// larger ID evicts the current smallest member.
//
// The zero value is not usable; construct with NewBoundedIDSet. Not safe for
// concurrent use.
type BoundedIDSet struct {
	capacity int
	members  map[int64]struct{}
	min      idMinHeap
}

// NewBoundedIDSet returns an empty set holding at most capacity IDs. A
// non-positive capacity falls back to DefaultSeenCapacity.
func NewBoundedIDSet(capacity int) *BoundedIDSet {
	if capacity <= 0 {
		capacity = DefaultSeenCapacity
	}
	return &BoundedIDSet{
		capacity: capacity,
		members:  make(map[int64]struct{}, capacity),
		min:      make(idMinHeap, 0, capacity),
	}
}

// Add offers an ID to the set and reports whether it was admitted. Known IDs
// are rejected; at capacity, IDs at or below the current minimum are
// rejected so the set keeps exactly the capacity largest distinct IDs seen.
func (s *BoundedIDSet) Add(id int64) bool {
	if _, ok := s.members[id]; ok {
		return false
	}
	if len(s.members) < s.capacity {
		s.members[id] = struct{}{}
		heap.Push(&s.min, id)
		return true
	}
	if id <= s.min[0] {
		return false
	}
	evicted := heap.Pop(&s.min).(int64)
	delete(s.members, evicted)
	s.members[id] = struct{}{}
	heap.Push(&s.min, id)
	return true
}

// Contains reports whether id is currently a member.
func (s *BoundedIDSet) Contains(id int64) bool {
	_, ok := s.members[id]
	return ok
}

// Len returns the current number of members.
func (s *BoundedIDSet) Len() int { return len(s.members) }

// Capacity returns the maximum number of members the set retains.
func (s *BoundedIDSet) Capacity() int { return s.capacity }

// IDs returns the members sorted descending, newest-issued first. The
// returned slice is a copy and never nil.
func (s *BoundedIDSet) IDs() []int64 {
	ids := make([]int64, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}

type idMinHeap []int64

func (h idMinHeap) Len() int           { return len(h) }
func (h idMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h idMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *idMinHeap) Push(x any) { *h = append(*h, x.(int64)) }

func (h *idMinHeap) Pop() any {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
