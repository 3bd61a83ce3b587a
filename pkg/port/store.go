// The list store keeps named numeric lists in memory for the Redis port. Lists themselves are single-writer
// containers, so the store provides the external synchronization: keys are distributed uniformly across shards and
// every operation holds its key's shard lock for the whole list operation. Goroutines touching keys on different
// shards don't block each other.

package port

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"iter"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/nobletooth/chain/pkg/list"
	"github.com/nobletooth/chain/pkg/scan"
	"github.com/nobletooth/chain/pkg/utils"
)

// ListKind selects the list implementation backing new keys.
type ListKind string

const (
	ListKindSingly ListKind = "singly"
	ListKindDoubly ListKind = "doubly"
)

var (
	listKind   = flag.String("list_kind", string(ListKindDoubly), "List implementation for new keys: singly/doubly.")
	shardCount = flag.Int("store_shard_count", runtime.NumCPU(), "The number of shards in the list store.")
)

// ErrKeyNotFound is returned by operations that need an existing list.
var ErrKeyNotFound = errors.New("no such key")

// numericList is what the store needs from a list; both list implementations satisfy it.
type numericList interface {
	list.Sequence[float64]
	Push(v float64)
	Unshift(v float64)
	Pop() (float64, error)
	Shift() (float64, error)
	GetAt(idx int) (float64, error)
	SetAt(idx int, v float64) error
	InsertAt(idx int, v float64) error
	RemoveAt(idx int) (float64, error)
}

var (
	_ numericList = (*list.SinglyLinkedList[float64])(nil)
	_ numericList = (*list.DoublyLinkedList[float64])(nil)
)

// storeShard holds a subset of the lists, guarded by its own mutex.
type storeShard struct {
	mux   sync.Mutex
	lists map[string]numericList
}

// ListStore is a sharded in-memory map of key to list.
type ListStore struct {
	shards  []*storeShard
	newList func() numericList
}

// NewListStore creates a store whose new lists are of the given `kind`, spread over `shardCount` shards.
func NewListStore(kind ListKind, shardCount int) (*ListStore, error) {
	var newList func() numericList
	switch kind {
	case ListKindSingly:
		newList = func() numericList { return list.NewSinglyLinkedList[float64]() }
	case ListKindDoubly:
		newList = func() numericList { return list.NewDoublyLinkedList[float64]() }
	default:
		return nil, fmt.Errorf("unknown list kind %q", kind)
	}
	// Ensure there is at least one shard.
	if shardCount <= 0 {
		utils.RaiseInvariant("store", "non_positive_shard_count",
			"Invalid shard count has been given to the list store.", "shardCount", shardCount)
		shardCount = 1
	}
	store := &ListStore{shards: make([]*storeShard, shardCount), newList: newList}
	for i := range shardCount {
		store.shards[i] = &storeShard{lists: make(map[string]numericList)}
	}
	return store, nil
}

// NewListStoreFromFlags creates a store configured by --list_kind and --store_shard_count.
func NewListStoreFromFlags() (*ListStore, error) {
	return NewListStore(ListKind(*listKind), *shardCount)
}

// getShard maps `key` onto its shard.
func (s *ListStore) getShard(key string) *storeShard {
	return s.shards[xxhash.Sum64String(key)%uint64(len(s.shards))]
}

// update runs `fn` on the list stored at `key` while holding its shard lock. A missing key is either created with an
// empty list (if `create`) or reported with ErrKeyNotFound. Lists left empty by `fn` are removed from the store.
func (s *ListStore) update(key string, create bool, fn func(l numericList) error) error {
	shard := s.getShard(key)
	shard.mux.Lock()
	defer shard.mux.Unlock()

	l, exists := shard.lists[key]
	if !exists {
		if !create {
			return ErrKeyNotFound
		}
		l = s.newList()
	}
	err := fn(l)
	switch {
	case l.Len() == 0 && exists:
		delete(shard.lists, key)
		storedLists.Dec()
	case l.Len() > 0 && !exists:
		shard.lists[key] = l
		storedLists.Inc()
	}
	return err
}

// Push appends `values` to the list at `key` and returns its new length.
func (s *ListStore) Push(key string, values ...float64) (int, error) {
	var length int
	err := s.update(key, true /*create*/, func(l numericList) error {
		for _, v := range values {
			l.Push(v)
		}
		length = l.Len()
		return nil
	})
	return length, err
}

// Unshift prepends `values` one by one to the list at `key` and returns its new length.
func (s *ListStore) Unshift(key string, values ...float64) (int, error) {
	var length int
	err := s.update(key, true /*create*/, func(l numericList) error {
		for _, v := range values {
			l.Unshift(v)
		}
		length = l.Len()
		return nil
	})
	return length, err
}

// Pop removes and returns the last value of the list at `key`.
func (s *ListStore) Pop(key string) (float64, error) {
	var value float64
	err := s.update(key, false /*create*/, func(l numericList) (err error) {
		value, err = l.Pop()
		return err
	})
	return value, err
}

// Shift removes and returns the first value of the list at `key`.
func (s *ListStore) Shift(key string) (float64, error) {
	var value float64
	err := s.update(key, false /*create*/, func(l numericList) (err error) {
		value, err = l.Shift()
		return err
	})
	return value, err
}

// GetAt returns the value at `idx` of the list at `key`.
func (s *ListStore) GetAt(key string, idx int) (float64, error) {
	var value float64
	err := s.update(key, false /*create*/, func(l numericList) (err error) {
		value, err = l.GetAt(idx)
		return err
	})
	return value, err
}

// SetAt overwrites the value at `idx` of the list at `key`.
func (s *ListStore) SetAt(key string, idx int, value float64) error {
	return s.update(key, false /*create*/, func(l numericList) error {
		return l.SetAt(idx, value)
	})
}

// InsertAt inserts `value` before `idx` in the list at `key` and returns its new length.
// A missing key behaves as an empty list, so only index 0 is valid for it.
func (s *ListStore) InsertAt(key string, idx int, value float64) (int, error) {
	var length int
	err := s.update(key, true /*create*/, func(l numericList) error {
		if err := l.InsertAt(idx, value); err != nil {
			return err
		}
		length = l.Len()
		return nil
	})
	return length, err
}

// RemoveAt removes and returns the value at `idx` of the list at `key`.
func (s *ListStore) RemoveAt(key string, idx int) (float64, error) {
	var value float64
	err := s.update(key, false /*create*/, func(l numericList) (err error) {
		value, err = l.RemoveAt(idx)
		return err
	})
	return value, err
}

// Average returns the mean of the list at `key`. A missing key is an empty list.
func (s *ListStore) Average(key string) (float64, error) {
	var avg float64
	err := s.update(key, true /*create*/, func(l numericList) (err error) {
		avg, err = list.Average[float64](l)
		return err
	})
	return avg, err
}

// Len returns the length of the list at `key`, or 0 if it doesn't exist.
func (s *ListStore) Len(key string) int {
	var length int
	_ = s.update(key, true /*create*/, func(l numericList) error {
		length = l.Len()
		return nil
	})
	return length
}

// Delete drops the given keys and returns how many of them existed.
func (s *ListStore) Delete(keys ...string) int {
	deleted := 0
	for _, key := range keys {
		shard := s.getShard(key)
		shard.mux.Lock()
		if _, exists := shard.lists[key]; exists {
			delete(shard.lists, key)
			storedLists.Dec()
			deleted++
		}
		shard.mux.Unlock()
	}
	return deleted
}

// Keys returns the sorted keys matching the glob `pattern`.
// Each shard is snapshotted under its own lock, so the result isn't an atomic view across shards.
func (s *ListStore) Keys(pattern string) ([]string, error) {
	perShard := make([]iter.Seq[string], len(s.shards))
	for i, shard := range s.shards {
		shard.mux.Lock()
		perShard[i] = slices.Values(slices.Sorted(maps.Keys(shard.lists)))
		shard.mux.Unlock()
	}
	merged, err := scan.MergeSorted(cmp.Compare[string], perShard)
	if err != nil {
		return nil, fmt.Errorf("failed to merge shard keys: %w", err)
	}
	matched, err := scan.MatchGlob(pattern, merged)
	if err != nil {
		return nil, err
	}
	return slices.Collect(matched), nil
}
