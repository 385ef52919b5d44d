package library

import "medialib/internal/model"

// Usage summarizes an owner's library. Bytes counts trashed items too, since
// their objects are still stored.
type Usage struct {
	Bytes     int64 `json:"bytes"`
	Active    int   `json:"active"`
	Favorites int   `json:"favorites"`
	Trashed   int   `json:"trashed"`
}

// Summarize totals sizes and per-view counts.
func Summarize(items []model.MediaItem) Usage {
	var u Usage
	for _, it := range items {
		u.Bytes += max(it.Size, 0)
		if it.IsDeleted {
			u.Trashed++
		} else {
			u.Active++
		}
		if it.IsFavorite {
			u.Favorites++
		}
	}
	return u
}
