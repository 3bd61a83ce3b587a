package scan

import (
	"cmp"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSorted(t *testing.T) {
	s1 := slices.Values([]string{"k1", "k2", "k3", "k4"})
	s2 := slices.Values([]string{"k1", "k2", "k5", "k6"})
	s3 := slices.Values([]string{})
	s4 := slices.Values([]string{"k3"})
	merged, err := MergeSorted(cmp.Compare[string], []iter.Seq[string]{s1, s2, s3, s4})
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", "k2", "k3", "k4", "k5", "k6"}, slices.Collect(merged))
}

func TestMergeSorted_Edges(t *testing.T) {
	t.Run("no sequences", func(t *testing.T) {
		merged, err := MergeSorted(cmp.Compare[int], nil)
		require.NoError(t, err)
		assert.Empty(t, slices.Collect(merged))
	})
	t.Run("nil compare", func(t *testing.T) {
		_, err := MergeSorted[int](nil, nil)
		assert.Error(t, err)
	})
	t.Run("early stop", func(t *testing.T) {
		merged, err := MergeSorted(cmp.Compare[int], []iter.Seq[int]{
			slices.Values([]int{1, 3, 5}), slices.Values([]int{2, 4, 6}),
		})
		require.NoError(t, err)
		var got []int
		for key := range merged {
			if key > 3 {
				break
			}
			got = append(got, key)
		}
		assert.Equal(t, []int{1, 2, 3}, got)
	})
}
