// Package list provides two positional sequence containers: a singly linked list and a doubly linked list.
// Both keep head / tail references and a length counter, and address elements by a zero-based index.
// Neither list is safe for concurrent use; callers that share a list must synchronize access themselves.

package list

import (
	"errors"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	// ErrEmptyList is returned by operations that need at least one element (Pop, Shift, Average).
	ErrEmptyList = errors.New("list is empty")
	// ErrIndexOutOfRange is returned by positional operations given an index outside their valid range.
	ErrIndexOutOfRange = errors.New("index out of range")

	// errBrokenChain is returned when the links disagree with the length counter; it's always a bug.
	errBrokenChain = errors.New("list links don't match its length")
)

// Number is the set of element types Average accepts.
type Number interface {
	constraints.Integer | constraints.Float
}

// Sequence is implemented by SinglyLinkedList and DoublyLinkedList.
type Sequence[T any] interface {
	Len() int
	// walk calls visit on every value from head to tail.
	walk(visit func(T))
}

var (
	_ Sequence[int] = (*SinglyLinkedList[int])(nil)
	_ Sequence[int] = (*DoublyLinkedList[int])(nil)
)

// Average returns the arithmetic mean of all values in `l`, or ErrEmptyList if `l` has no elements.
func Average[T Number](l Sequence[T]) (float64, error) {
	if l.Len() == 0 {
		return 0, fmt.Errorf("%w: cannot average", ErrEmptyList)
	}
	var sum float64
	l.walk(func(v T) { sum += float64(v) })
	return sum / float64(l.Len()), nil
}

// checkIndex makes sure 0 <= idx < upper.
func checkIndex(idx, upper int) error {
	if idx < 0 || idx >= upper {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, idx, upper)
	}
	return nil
}

// checkInsertIndex makes sure 0 <= idx <= length; inserting at `length` appends.
func checkInsertIndex(idx, length int) error {
	if idx < 0 || idx > length {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrIndexOutOfRange, idx, length)
	}
	return nil
}

// emptyListError builds the error returned when `op` is called on an empty list.
func emptyListError(op string) error {
	return fmt.Errorf("%w: cannot %s", ErrEmptyList, op)
}
