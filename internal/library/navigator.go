package library

import (
	"sort"

	"medialib/internal/model"
)

// RootName is the display name of the root breadcrumb.
const RootName = "Library"

// Breadcrumb is one entry of the navigation trail.
type Breadcrumb struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Navigator tracks the open folder and the trail used to get there.
// The path is never empty and its last element is always the current key.
// A Navigator is not safe for concurrent use.
type Navigator struct {
	current string
	path    []string
}

// NewNavigator returns a navigator positioned at the root.
func NewNavigator() *Navigator {
	return &Navigator{path: []string{""}}
}

// NavigatorAt returns a navigator that opened every ancestor of key in order,
// so its breadcrumbs walk from the root down to key.
func NavigatorAt(key string) *Navigator {
	n := NewNavigator()
	segs := SplitKey(key)
	for i := range segs {
		n.Open(JoinKey(segs[:i+1]...))
	}
	return n
}

// Open makes key the current folder and appends it to the trail.
func (n *Navigator) Open(key string) {
	key = CleanKey(key)
	n.current = key
	n.path = append(n.path, key)
}

// Up returns to the previous entry of the trail. At the root it does nothing.
func (n *Navigator) Up() {
	if len(n.path) <= 1 {
		return
	}
	n.path = n.path[:len(n.path)-1]
	n.current = n.path[len(n.path)-1]
}

// Current returns the open folder key.
func (n *Navigator) Current() string { return n.current }

// Path returns a copy of the navigation trail.
func (n *Navigator) Path() []string {
	out := make([]string, len(n.path))
	copy(out, n.path)
	return out
}

// Breadcrumbs renders the trail with display names.
func (n *Navigator) Breadcrumbs() []Breadcrumb {
	out := make([]Breadcrumb, 0, len(n.path))
	for _, key := range n.path {
		name := RootName
		if segs := SplitKey(key); len(segs) > 0 {
			name = segs[len(segs)-1]
		}
		out = append(out, Breadcrumb{Key: key, Name: name})
	}
	return out
}

// ListChildFolders returns the sorted, de-duplicated keys of the folders directly
// below current. Deeper keys contribute their ancestor at the next level.
func ListChildFolders(allKeys []string, current string) []string {
	current = CleanKey(current)
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, k := range allKeys {
		seg, ok := ChildFolderOf(current, k)
		if !ok {
			continue
		}
		child := JoinKey(current, seg)
		if _, dup := seen[child]; dup {
			continue
		}
		seen[child] = struct{}{}
		out = append(out, child)
	}
	sort.Strings(out)
	return out
}

// ListItemsHere returns the items stored directly in current.
func ListItemsHere(idx Index, current string) []model.MediaItem {
	items, ok := idx[CleanKey(current)]
	if !ok {
		return []model.MediaItem{}
	}
	return items
}
