package library

import (
	"sort"
	"strings"

	"medialib/internal/model"
)

// Library views. The default view hides trashed items.
const (
	ViewAll       = "all"
	ViewFavorites = "favorites"
	ViewTrash     = "trash"
)

// InView keeps the items that belong to view. Favorites include trashed
// favorites; unknown views behave like ViewAll.
func InView(items []model.MediaItem, view string) []model.MediaItem {
	out := make([]model.MediaItem, 0, len(items))
	for _, it := range items {
		var keep bool
		switch view {
		case ViewFavorites:
			keep = it.IsFavorite
		case ViewTrash:
			keep = it.IsDeleted
		default:
			keep = !it.IsDeleted
		}
		if keep {
			out = append(out, it)
		}
	}
	return out
}

// Filter narrows items to those matching activeKind and the free-text query.
// An empty activeKind behaves like "all"; an empty query matches everything.
// The query is lower-cased but otherwise matched as given.
func Filter(items []model.MediaItem, activeKind, query string) []model.MediaItem {
	q := strings.ToLower(query)
	out := make([]model.MediaItem, 0, len(items))
	for _, it := range items {
		if matchesKind(it, activeKind) && matchesQuery(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func matchesKind(it model.MediaItem, activeKind string) bool {
	switch activeKind {
	case "", FilterAll:
		return true
	case FilterDocuments:
		return IsDocumentFamily(it.MimeType)
	default:
		return ClassifyItem(it) == Kind(activeKind)
	}
}

func matchesQuery(it model.MediaItem, q string) bool {
	if q == "" {
		return true
	}
	for _, field := range []string{it.Title, it.Description, it.OriginalFilename, it.Category} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Sort keys accepted by Sort.
const (
	SortByName = "name"
	SortByDate = "date"
	SortBySize = "size"
	SortByType = "type"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Sort orders items in place. Unknown keys fall back to date, unknown orders
// to descending, so the default is newest first.
func Sort(items []model.MediaItem, by, order string) {
	var less func(a, b model.MediaItem) bool
	switch by {
	case SortByName:
		less = func(a, b model.MediaItem) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case SortBySize:
		less = func(a, b model.MediaItem) bool { return a.Size < b.Size }
	case SortByType:
		less = func(a, b model.MediaItem) bool { return ClassifyItem(a) < ClassifyItem(b) }
	default:
		less = func(a, b model.MediaItem) bool { return a.CreatedAt.Before(b.CreatedAt) }
	}

	asc := order == OrderAsc
	sort.SliceStable(items, func(i, j int) bool {
		if asc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}
