// The list store keeps its keys in independent shards. Listing keys means merging the sorted key streams of every
// shard into one sorted stream without materializing all of them at once.
//
// This module implements a heap-based multi-way merge that lazily pulls from the underlying sequences.
// Equal keys coming from several sequences are yielded once. Store shards never share a key, so this only matters
// for callers merging overlapping sequences.

package scan

import (
	"container/heap"
	"errors"
	"iter"

	"github.com/nobletooth/chain/pkg/utils"
)

// CompareFn defines a three-way comparison; negative if x < y, 0 if x == y and positive if x > y.
type CompareFn[K any] func(x, y K) int

// heapElement is an item pulled from one of the merged sequences.
type heapElement[K any] struct {
	key    K
	seqIdx int // Index of the pull function that produced this element.
}

// mergeHeap holds the merge state over multiple sequences.
type mergeHeap[K any] struct { // Implements heap.Interface.
	compare  CompareFn[K]
	elements []*heapElement[K] // The latest element pulled from each non-exhausted sequence.
}

var _ heap.Interface = (*mergeHeap[int])(nil)

func (mh *mergeHeap[K]) Len() int {
	return len(mh.elements)
}

// Less orders by key, then by sequence index for equal keys.
func (mh *mergeHeap[K]) Less(i, j int) bool {
	e1, e2 := mh.elements[i], mh.elements[j]
	if cmp := mh.compare(e1.key, e2.key); cmp != 0 {
		return cmp < 0
	}
	return e1.seqIdx < e2.seqIdx
}

func (mh *mergeHeap[K]) Swap(i, j int) {
	mh.elements[i], mh.elements[j] = mh.elements[j], mh.elements[i]
}

// Push adds `x` to the heap if it's a non-nil element and there's room for it.
func (mh *mergeHeap[K]) Push(x any) {
	if element, ok := x.(*heapElement[K]); !ok {
		utils.RaiseInvariant("scan", "pushed_invalid_type", "An item with invalid type was pushed to merge heap.")
	} else if element == nil {
		utils.RaiseInvariant("scan", "pushed_nil_element", "A nil element was pushed to merge heap.")
	} else if len(mh.elements) == cap(mh.elements) {
		utils.RaiseInvariant("scan", "exceeded_capacity",
			"An element was pushed while the capacity was full.", "cap", cap(mh.elements))
	} else {
		mh.elements = append(mh.elements, element)
	}
}

// Pop returns and removes the last element in the heap.
func (mh *mergeHeap[K]) Pop() any {
	lastElement := mh.elements[len(mh.elements)-1]
	mh.elements = mh.elements[:len(mh.elements)-1]
	return lastElement
}

// MergeSorted merges increasing `sequences` into a single increasing sequence, yielding equal keys once.
func MergeSorted[K any](compare CompareFn[K], sequences []iter.Seq[K]) (iter.Seq[K], error) {
	if compare == nil {
		return nil, errors.New("expected a non-nil comparison function")
	}

	return func(yield func(K) bool) {
		mh := &mergeHeap[K]{compare: compare, elements: make([]*heapElement[K], 0, len(sequences))}
		pull := make([]func() (K, bool), 0, len(sequences))
		stop := make([]func(), 0, len(sequences))
		// Stop all underlying sequences once iteration is done.
		defer func() {
			for _, stopFn := range stop {
				stopFn()
			}
		}()
		for _, seq := range sequences {
			pullFn, stopFn := iter.Pull(seq)
			pull = append(pull, pullFn)
			stop = append(stop, stopFn)
			if first, hasAny := pullFn(); hasAny {
				heap.Push(mh, &heapElement[K]{key: first, seqIdx: len(pull) - 1})
			}
		}

		var last K
		hasLast := false
		for mh.Len() > 0 {
			top := heap.Pop(mh).(*heapElement[K])
			if next, hasNext := pull[top.seqIdx](); hasNext {
				heap.Push(mh, &heapElement[K]{key: next, seqIdx: top.seqIdx})
			}
			if hasLast && compare(last, top.key) == 0 { // Already yielded by another sequence.
				continue
			}
			if !yield(top.key) {
				return
			}
			last, hasLast = top.key, true
		}
	}, nil
}
