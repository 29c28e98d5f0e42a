package diff

import (
	"fmt"
	"sort"
)

// DuplicateKeyError reports two items mapping to the same key while building
// an index. For content-hash keyed indices this means two distinct nodes
// share a hash, which would make the common-set pairing ambiguous.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q in index", e.Key)
}

// Delta partitions the keys of a local index and a remote index into the
// three reconciliation sets. Keys in each set are sorted for deterministic
// iteration.
type Delta struct {
	// OnlyLocal holds keys present locally but absent remotely (deletions).
	OnlyLocal []string

	// Common holds keys present on both sides (updates).
	Common []string

	// OnlyRemote holds keys present remotely but absent locally (insertions).
	OnlyRemote []string
}

// Index builds a map of items keyed by the provided key function.
// It returns a DuplicateKeyError if two items share a key.
func Index[T any](items []T, key func(T) string) (map[string]T, error) {
	index := make(map[string]T, len(items))
	for _, item := range items {
		k := key(item)
		if _, exists := index[k]; exists {
			return nil, &DuplicateKeyError{Key: k}
		}
		index[k] = item
	}
	return index, nil
}

// Keys computes the delta between a local and a remote index.
func Keys[L, R any](local map[string]L, remote map[string]R) Delta {
	var d Delta

	for key := range local {
		if _, ok := remote[key]; ok {
			d.Common = append(d.Common, key)
		} else {
			d.OnlyLocal = append(d.OnlyLocal, key)
		}
	}
	for key := range remote {
		if _, ok := local[key]; !ok {
			d.OnlyRemote = append(d.OnlyRemote, key)
		}
	}

	// Sort each set for deterministic output
	sort.Strings(d.OnlyLocal)
	sort.Strings(d.Common)
	sort.Strings(d.OnlyRemote)

	return d
}

// Chunk splits items into consecutive batches of at most size elements.
// The final batch may be shorter. A non-positive size yields one batch.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{items}
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
