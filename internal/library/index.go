package library

import (
	"sort"

	"medialib/internal/model"
)

// Index groups items by their exact derived folder key.
// An item appears only under its own key, never under an ancestor's.
type Index map[string][]model.MediaItem

// BuildIndex groups a flat item list by folder key. Order within a key follows
// the input order.
func BuildIndex(items []model.MediaItem) Index {
	idx := make(Index)
	for _, it := range items {
		key := ItemFolderKey(it)
		idx[key] = append(idx[key], it)
	}
	return idx
}

// Keys returns every folder key present in the index, sorted.
func (idx Index) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
