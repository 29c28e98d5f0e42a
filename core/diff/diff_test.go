package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	type item struct {
		Key  string
		Name string
	}

	t.Run("Unique Keys", func(t *testing.T) {
		items := []item{{"a", "one"}, {"b", "two"}}
		idx, err := Index(items, func(i item) string { return i.Key })
		require.NoError(t, err)
		assert.Len(t, idx, 2)
		assert.Equal(t, "two", idx["b"].Name)
	})

	t.Run("Duplicate Key", func(t *testing.T) {
		items := []item{{"a", "one"}, {"a", "two"}}
		idx, err := Index(items, func(i item) string { return i.Key })
		assert.Nil(t, idx)

		var dup *DuplicateKeyError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "a", dup.Key)
	})

	t.Run("Empty", func(t *testing.T) {
		idx, err := Index(nil, func(i item) string { return i.Key })
		require.NoError(t, err)
		assert.Empty(t, idx)
	})
}

func TestKeys(t *testing.T) {
	local := map[string]int{"a": 1, "b": 2, "c": 3}
	remote := map[string]string{"b": "x", "c": "y", "d": "z"}

	d := Keys(local, remote)

	assert.Equal(t, []string{"a"}, d.OnlyLocal)
	assert.Equal(t, []string{"b", "c"}, d.Common)
	assert.Equal(t, []string{"d"}, d.OnlyRemote)
}

func TestKeys_Disjoint(t *testing.T) {
	d := Keys(map[string]int{"a": 1}, map[string]int{"b": 2})
	assert.Equal(t, []string{"a"}, d.OnlyLocal)
	assert.Empty(t, d.Common)
	assert.Equal(t, []string{"b"}, d.OnlyRemote)
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name  string
		count int
		size  int
		want  []int // lengths of resulting batches
	}{
		{"Exact Multiple", 16, 8, []int{8, 8}},
		{"Remainder", 17, 8, []int{8, 8, 1}},
		{"Single Short Batch", 3, 8, []int{3}},
		{"Empty", 0, 8, nil},
		{"Non Positive Size", 5, 0, []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]int, tt.count)
			for i := range items {
				items[i] = i
			}

			batches := Chunk(items, tt.size)
			var lengths []int
			total := 0
			for _, b := range batches {
				lengths = append(lengths, len(b))
				total += len(b)
			}
			assert.Equal(t, tt.want, lengths)
			assert.Equal(t, tt.count, total)
		})
	}
}
