package repository

import (
	"context"
	"errors"

	"medialib/internal/model"
)

// ErrDuplicatePath is returned by Create when another row already records the same file path.
var ErrDuplicatePath = errors.New("file path already recorded")

// MediaRepository defines data access for media items using SQL queries only.
// No business logic here, only persistence operations.
type MediaRepository interface {
	// Create inserts a new media row and returns the stored record.
	Create(ctx context.Context, item *model.MediaItem) (*model.MediaItem, error)

	// FindByID returns a media item by its ID.
	FindByID(ctx context.Context, id string) (*model.MediaItem, error)

	// List returns items matching the filter, newest first. Trashed items are included.
	List(ctx context.Context, f ListFilter) ([]model.MediaItem, error)

	// SetFavorite updates the favorite flag. It returns sql.ErrNoRows if the row does not exist.
	SetFavorite(ctx context.Context, id string, favorite bool) error

	// SetDeleted moves a row to or out of the trash. It returns sql.ErrNoRows if the row does not exist.
	SetDeleted(ctx context.Context, id string, deleted bool) error

	// Delete removes a media row by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows List. Empty fields are not applied.
type ListFilter struct {
	OwnerID  string
	Category string
}
