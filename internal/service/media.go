package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"medialib/internal/library"
	"medialib/internal/model"
	"medialib/internal/repository"
	"medialib/internal/storage"
)

var (
	ErrIDRequired    = errors.New("id is required")
	ErrNotFound      = errors.New("media item not found")
	ErrOwnerRequired = errors.New("owner id is required")
	ErrNilBatch      = errors.New("upload batch is nil")
)

var tracer = otel.Tracer("medialib/internal/service")

// MediaService defines the use cases of the media library.
type MediaService interface {
	// UploadBatch uploads every file of the batch concurrently and reports one outcome per file.
	// Per-file failures are part of the tally; only a nil batch or a missing owner is an error.
	UploadBatch(ctx context.Context, b *UploadBatch) (*UploadTally, error)

	// UploadOne uploads a single file into folder and returns the recorded item.
	UploadOne(ctx context.Context, ownerID, folder string, f UploadFile) (*model.MediaItem, error)

	// Browse returns the contents of one virtual folder of an owner's library.
	Browse(ctx context.Context, q BrowseQuery) (*BrowseResult, error)

	// Get returns a single media item by its ID.
	Get(ctx context.Context, id string) (*model.MediaItem, error)

	// DownloadURL returns a time-limited URL for the item's bytes.
	DownloadURL(ctx context.Context, id string) (string, error)

	// SetFavorite marks or unmarks an item as a favorite and returns the updated item.
	SetFavorite(ctx context.Context, id string, favorite bool) (*model.MediaItem, error)

	// Trash hides an item from the default view. Its object is kept.
	Trash(ctx context.Context, id string) error

	// Restore brings a trashed item back.
	Restore(ctx context.Context, id string) error

	// Delete removes an item permanently: its object from storage, then its record.
	Delete(ctx context.Context, id string) error
}

// Options tune a MediaService. Zero values fall back to sensible defaults.
type Options struct {
	// Concurrency bounds parallel uploads within a batch; <= 0 means unbounded.
	Concurrency     int
	DefaultCategory string
	PresignTTL      time.Duration
	Logger          *zap.Logger
	Metrics         *Metrics
}

const (
	defaultCategory   = "general"
	defaultPresignTTL = 15 * time.Minute
)

type mediaService struct {
	store storage.Storage
	repo  repository.MediaRepository

	concurrency     int
	defaultCategory string
	presignTTL      time.Duration
	logger          *zap.Logger
	metrics         *Metrics

	now   func() time.Time
	newID func() string
}

// NewMediaService constructs a new MediaService.
func NewMediaService(store storage.Storage, repo repository.MediaRepository, opts Options) MediaService {
	return newMediaService(store, repo, opts)
}

func newMediaService(store storage.Storage, repo repository.MediaRepository, opts Options) *mediaService {
	s := &mediaService{
		store:           store,
		repo:            repo,
		concurrency:     opts.Concurrency,
		defaultCategory: opts.DefaultCategory,
		presignTTL:      opts.PresignTTL,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		now:             time.Now,
		newID:           uuid.NewString,
	}
	if s.defaultCategory == "" {
		s.defaultCategory = defaultCategory
	}
	if s.presignTTL <= 0 {
		s.presignTTL = defaultPresignTTL
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// BrowseQuery selects one folder of an owner's library and narrows its items.
type BrowseQuery struct {
	OwnerID  string
	Category string
	Folder   string
	View     string
	Kind     string
	Query    string
	SortBy   string
	Order    string
}

// FolderEntry is a direct child folder of the browsed folder.
type FolderEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// MediaView is a MediaItem with its derived folder key and kind.
type MediaView struct {
	model.MediaItem
	FolderKey string       `json:"folder_key"`
	Kind      library.Kind `json:"kind"`
}

// BrowseResult is the service-level DTO for one folder listing.
// Usage covers the owner's whole library in the browsed category.
type BrowseResult struct {
	Folder      string               `json:"folder"`
	Breadcrumbs []library.Breadcrumb `json:"breadcrumbs"`
	Folders     []FolderEntry        `json:"folders"`
	Items       []MediaView          `json:"items"`
	Total       int                  `json:"total"`
	Usage       library.Usage        `json:"usage"`
}

func (s *mediaService) Browse(ctx context.Context, q BrowseQuery) (*BrowseResult, error) {
	if strings.TrimSpace(q.OwnerID) == "" {
		return nil, ErrOwnerRequired
	}

	all, err := s.repo.List(ctx, repository.ListFilter{OwnerID: q.OwnerID, Category: q.Category})
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}

	idx := library.BuildIndex(library.InView(all, q.View))
	nav := library.NavigatorAt(q.Folder)
	current := nav.Current()

	childKeys := library.ListChildFolders(idx.Keys(), current)
	folders := make([]FolderEntry, 0, len(childKeys))
	for _, k := range childKeys {
		segs := library.SplitKey(k)
		folders = append(folders, FolderEntry{Key: k, Name: segs[len(segs)-1]})
	}

	here := library.Filter(library.ListItemsHere(idx, current), q.Kind, q.Query)
	library.Sort(here, q.SortBy, q.Order)

	items := make([]MediaView, 0, len(here))
	for _, it := range here {
		items = append(items, MediaView{
			MediaItem: it,
			FolderKey: library.ItemFolderKey(it),
			Kind:      library.ClassifyItem(it),
		})
	}

	return &BrowseResult{
		Folder:      current,
		Breadcrumbs: nav.Breadcrumbs(),
		Folders:     folders,
		Items:       items,
		Total:       len(items),
		Usage:       library.Summarize(all),
	}, nil
}

// Get returns a media item by ID.
func (s *mediaService) Get(ctx context.Context, id string) (*model.MediaItem, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *mediaService) DownloadURL(ctx context.Context, id string) (string, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	u, err := s.store.PresignGet(ctx, item.FilePath, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return u, nil
}

func (s *mediaService) SetFavorite(ctx context.Context, id string, favorite bool) (*model.MediaItem, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := s.repo.SetFavorite(ctx, id, favorite); err != nil {
		return nil, notFoundOr(err, "set favorite")
	}
	return s.Get(ctx, id)
}

func (s *mediaService) Trash(ctx context.Context, id string) error {
	return s.setDeleted(ctx, id, true)
}

func (s *mediaService) Restore(ctx context.Context, id string) error {
	return s.setDeleted(ctx, id, false)
}

func (s *mediaService) setDeleted(ctx context.Context, id string, deleted bool) error {
	if id == "" {
		return ErrIDRequired
	}
	if err := s.repo.SetDeleted(ctx, id, deleted); err != nil {
		return notFoundOr(err, "update trash")
	}
	s.logger.Info("media trash updated", zap.String("id", id), zap.Bool("deleted", deleted))
	return nil
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Delete removes the stored object first; if that fails the row is kept so
// the object stays reachable.
func (s *mediaService) Delete(ctx context.Context, id string) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, item.FilePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	s.logger.Info("media deleted", zap.String("id", id), zap.String("key", item.FilePath))
	return nil
}
