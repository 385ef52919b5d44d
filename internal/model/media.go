package model

import "time"

// MediaItem represents one stored file plus its descriptive metadata.
// Folder membership is not stored; it is derived from FilePath on every read.
// IsDeleted marks an item as trashed; its object stays in storage until it is
// deleted permanently.
type MediaItem struct {
	ID               string    `json:"id"`
	OwnerID          string    `json:"owner_id"`
	FileURL          string    `json:"file_url"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	OriginalFilename string    `json:"original_filename"`
	MimeType         string    `json:"mime_type,omitempty"`
	Category         string    `json:"category"`
	FilePath         string    `json:"file_path"`
	Size             int64     `json:"size"`
	IsFavorite       bool      `json:"is_favorite"`
	IsDeleted        bool      `json:"is_deleted"`
	CreatedAt        time.Time `json:"created_at"`
}
