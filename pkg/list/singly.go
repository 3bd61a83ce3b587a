package list

import "github.com/nobletooth/chain/pkg/utils"

// singlyNode is a storage cell of SinglyLinkedList; it only knows its successor.
type singlyNode[T any] struct {
	next  *singlyNode[T]
	value T
}

// SinglyLinkedList is a linked list with forward links only.
// Every positional operation walks forward from the head, and so does Pop since there is no backward link.
//
// The zero value is a ready to use empty list.
type SinglyLinkedList[T any] struct {
	head   *singlyNode[T]
	tail   *singlyNode[T]
	length int
}

// NewSinglyLinkedList creates a list holding `vals` in the given order.
func NewSinglyLinkedList[T any](vals ...T) *SinglyLinkedList[T] {
	l := new(SinglyLinkedList[T])
	for _, v := range vals {
		l.Push(v)
	}
	return l
}

// Len returns the number of elements in the list.
func (l *SinglyLinkedList[T]) Len() int {
	return l.length
}

// Push appends `v` to the end of the list.
func (l *SinglyLinkedList[T]) Push(v T) {
	n := &singlyNode[T]{value: v}
	if l.tail != nil {
		l.tail.next = n
	} else { // List was empty.
		l.head = n
	}
	l.tail = n
	l.length++
}

// Unshift prepends `v` to the start of the list.
func (l *SinglyLinkedList[T]) Unshift(v T) {
	n := &singlyNode[T]{value: v, next: l.head}
	if l.head == nil { // List was empty.
		l.tail = n
	}
	l.head = n
	l.length++
}

// Pop removes and returns the last value.
func (l *SinglyLinkedList[T]) Pop() (T, error) {
	if l.length == 0 {
		return *new(T), emptyListError("pop")
	}
	if l.length == 1 {
		return l.Shift()
	}
	prev := l.nodeAt(l.length - 2)
	if prev == nil {
		return *new(T), errBrokenChain
	}
	removed := prev.next
	prev.next = nil
	l.tail = prev
	l.length--
	return removed.value, nil
}

// Shift removes and returns the first value.
func (l *SinglyLinkedList[T]) Shift() (T, error) {
	if l.length == 0 {
		return *new(T), emptyListError("shift")
	}
	removed := l.head
	l.head = removed.next
	if l.head == nil { // List became empty.
		l.tail = nil
	}
	removed.next = nil
	l.length--
	return removed.value, nil
}

// GetAt returns the value at `idx`.
func (l *SinglyLinkedList[T]) GetAt(idx int) (T, error) {
	if err := checkIndex(idx, l.length); err != nil {
		return *new(T), err
	}
	n := l.nodeAt(idx)
	if n == nil {
		return *new(T), errBrokenChain
	}
	return n.value, nil
}

// SetAt overwrites the value at `idx` with `v`.
func (l *SinglyLinkedList[T]) SetAt(idx int, v T) error {
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
func (l *SinglyLinkedList[T]) InsertAt(idx int, v T) error {
	if err := checkInsertIndex(idx, l.length); err != nil {
		return err
	}
	switch idx {
	case 0:
		l.Unshift(v)
	case l.length:
		l.Push(v)
	default:
		prev := l.nodeAt(idx - 1)
		if prev == nil {
			return errBrokenChain
		}
		prev.next = &singlyNode[T]{value: v, next: prev.next}
		l.length++
	}
	return nil
}

// RemoveAt removes and returns the value at `idx`.
func (l *SinglyLinkedList[T]) RemoveAt(idx int) (T, error) {
	if err := checkIndex(idx, l.length); err != nil {
		return *new(T), err
	}
	switch idx {
	case 0:
		return l.Shift()
	case l.length - 1:
		return l.Pop()
	}
	prev := l.nodeAt(idx - 1)
	if prev == nil {
		return *new(T), errBrokenChain
	}
	removed := prev.next
	prev.next = removed.next
	removed.next = nil
	l.length--
	return removed.value, nil
}

// nodeAt walks forward from the head to the node at `idx`. Assumes 0 <= idx < length.
func (l *SinglyLinkedList[T]) nodeAt(idx int) *singlyNode[T] {
	n := l.head
	for i := 0; i < idx && n != nil; i++ {
		n = n.next
	}
	if n == nil {
		utils.RaiseInvariant("list", "singly_chain_too_short",
			"Reached the end of the chain before the requested index.", "index", idx, "length", l.length)
	}
	return n
}

func (l *SinglyLinkedList[T]) walk(visit func(T)) {
	for n := l.head; n != nil; n = n.next {
		visit(n.value)
	}
}
