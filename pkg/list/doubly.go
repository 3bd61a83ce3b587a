package list

import "github.com/nobletooth/chain/pkg/utils"

// doublyNode represents a node in the doubly linked list.
type doublyNode[V any] struct {
	next  *doublyNode[V]
	prev  *doublyNode[V]
	value V
}

// DoublyLinkedList is a linked list with forward and backward links.
// Pop is O(1), and positional lookups walk from whichever end is closer to the index.
//
// The zero value is a ready to use empty list.
type DoublyLinkedList[V any] struct {
	head   *doublyNode[V]
	tail   *doublyNode[V]
	length int
}

// NewDoublyLinkedList creates an empty list.
func NewDoublyLinkedList[V any]() *DoublyLinkedList[V] {
	return new(DoublyLinkedList[V])
}

// Len returns the number of elements in the list.
func (l *DoublyLinkedList[V]) Len() int {
	return l.length
}

// Push adds a new value to the back of the list.
func (l *DoublyLinkedList[V]) Push(v V) {
	n := &doublyNode[V]{value: v, prev: l.tail}
	if l.tail != nil {
		l.tail.next = n
	} else {
		// List was empty.
		l.head = n
	}
	l.tail = n
	l.length++
}

// Unshift adds a new value to the front of the list.
func (l *DoublyLinkedList[V]) Unshift(v V) {
	n := &doublyNode[V]{value: v, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else { // List was empty.
		l.tail = n
	}
	l.head = n
	l.length++
}

// Pop removes and returns the last value.
func (l *DoublyLinkedList[V]) Pop() (V, error) {
	if l.length == 0 {
		return *new(V), emptyListError("pop")
	}
	removed := l.tail
	l.unlink(removed)
	return removed.value, nil
}

// Shift removes and returns the first value.
func (l *DoublyLinkedList[V]) Shift() (V, error) {
	if l.length == 0 {
		return *new(V), emptyListError("shift")
	}
	removed := l.head
	l.unlink(removed)
	return removed.value, nil
}

// GetAt returns the value at `idx`.
func (l *DoublyLinkedList[V]) GetAt(idx int) (V, error) {
	if err := checkIndex(idx, l.length); err != nil {
		return *new(V), err
	}
	n := l.nodeAt(idx)
	if n == nil {
		return *new(V), errBrokenChain
	}
	return n.value, nil
}

// SetAt overwrites the value at `idx` with `v`.
func (l *DoublyLinkedList[V]) SetAt(idx int, v V) error {
	if err := checkIndex(idx, l.length); err != nil {
		return err
	}
	n := l.nodeAt(idx)
	if n == nil {
		return errBrokenChain
	}
	n.value = v
	return nil
}

// InsertAt inserts `v` before the element at `idx`. An `idx` equal to Len() appends.
func (l *DoublyLinkedList[V]) InsertAt(idx int, v V) error {
	if err := checkInsertIndex(idx, l.length); err != nil {
		return err
	}
	switch idx {
	case 0:
		l.Unshift(v)
		return nil
	case l.length:
		l.Push(v)
		return nil
	}
	successor := l.nodeAt(idx)
	if successor == nil || successor.prev == nil {
		return errBrokenChain
	}
	// Both neighbors are relinked before returning; `idx` is interior so neither head nor tail changes.
	n := &doublyNode[V]{value: v, prev: successor.prev, next: successor}
	successor.prev.next = n
	successor.prev = n
	l.length++
	return nil
}

// RemoveAt removes and returns the value at `idx`.
func (l *DoublyLinkedList[V]) RemoveAt(idx int) (V, error) {
	if err := checkIndex(idx, l.length); err != nil {
		return *new(V), err
	}
	n := l.nodeAt(idx)
	if n == nil {
		return *new(V), errBrokenChain
	}
	l.unlink(n)
	return n.value, nil
}

// unlink removes a node from the list, fixing head / tail when `n` is at either end.
func (l *DoublyLinkedList[V]) unlink(n *doublyNode[V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		// Node is the head.
		l.head = n.next
	}

	if n.next != nil {
		n.next.prev = n.prev
	} else {
		// Node is the tail.
		l.tail = n.prev
	}

	// Clean up the removed node's pointers.
	n.next = nil
	n.prev = nil

	l.length--
}

// nodeAt returns the node at `idx`, walking forward from the head for the first half of the list
// and backward from the tail otherwise. Assumes 0 <= idx < length.
func (l *DoublyLinkedList[V]) nodeAt(idx int) *doublyNode[V] {
	var n *doublyNode[V]
	if 2*idx < l.length {
		n = l.head
		for i := 0; i < idx && n != nil; i++ {
			n = n.next
		}
	} else {
		n = l.tail
		for i := l.length - 1; i > idx && n != nil; i-- {
			n = n.prev
		}
	}
	if n == nil {
		utils.RaiseInvariant("list", "doubly_chain_too_short",
			"Ran out of nodes before the requested index.", "index", idx, "length", l.length)
	}
	return n
}

func (l *DoublyLinkedList[V]) walk(visit func(V)) {
	for n := l.head; n != nil; n = n.next {
		visit(n.value)
	}
}
