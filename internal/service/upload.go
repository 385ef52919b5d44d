package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"medialib/internal/library"
	"medialib/internal/model"
	"medialib/internal/repository"
	"medialib/internal/storage"
)

// StructureRoot is the folder under which structure-preserving uploads are keyed.
const StructureRoot = "folders"

var (
	ErrFilenameRequired = errors.New("filename is required")
	ErrNoContent        = errors.New("file has no content source")
	ErrInvalidPath      = errors.New("path is invalid")
	ErrDuplicateKey     = errors.New("storage key is already taken")
)

// UploadFile is one file of a batch. Open is called once, from the goroutine
// that uploads the file.
type UploadFile struct {
	Name         string
	Description  string
	RelativePath string
	ContentType  string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// UploadBatch is a set of files submitted together.
// Folder is ignored for files keyed by their RelativePath.
type UploadBatch struct {
	OwnerID           string
	Folder            string
	PreserveStructure bool
	Files             []UploadFile
}

// UploadOutcome is the result of one file's pipeline.
type UploadOutcome struct {
	Index      int              `json:"index"`
	Filename   string           `json:"filename"`
	StorageKey string           `json:"storage_key,omitempty"`
	Item       *model.MediaItem `json:"item,omitempty"`
	Err        error            `json:"-"`
	Error      string           `json:"error,omitempty"`
	// Orphaned is set when the object was stored, the record failed and the
	// compensating delete failed too.
	Orphaned bool `json:"orphaned,omitempty"`
}

// OK reports whether the file was stored and recorded.
func (o UploadOutcome) OK() bool { return o.Err == nil }

// UploadTally aggregates a batch. Succeeded+Failed always equals len(Outcomes).
type UploadTally struct {
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Outcomes  []UploadOutcome `json:"outcomes"`
}

// Failures returns the outcomes that did not succeed.
func (t *UploadTally) Failures() []UploadOutcome {
	var out []UploadOutcome
	for _, o := range t.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

func (s *mediaService) UploadBatch(ctx context.Context, b *UploadBatch) (*UploadTally, error) {
	if b == nil {
		return nil, ErrNilBatch
	}
	owner := strings.TrimSpace(b.OwnerID)
	if owner == "" {
		return nil, ErrOwnerRequired
	}

	tally := &UploadTally{Outcomes: make([]UploadOutcome, len(b.Files))}
	if len(b.Files) == 0 {
		return tally, nil
	}

	folder, err := cleanFolder(b.Folder)
	if err != nil {
		return nil, err
	}
	keys, keyErrs := s.planKeys(owner, folder, b)

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, f := range b.Files {
		g.Go(func() error {
			out := UploadOutcome{Index: i, Filename: f.Name, StorageKey: keys[i]}
			if keyErrs[i] != nil {
				out.Err = keyErrs[i]
			} else {
				out.Item, out.Orphaned, out.Err = s.upload(ctx, owner, keys[i], f)
			}
			if out.Err != nil {
				out.Error = out.Err.Error()
			}
			s.record(out)
			tally.Outcomes[i] = out
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range tally.Outcomes {
		if o.OK() {
			tally.Succeeded++
		} else {
			tally.Failed++
		}
	}

	s.logger.Info("upload batch settled",
		zap.String("owner_id", owner),
		zap.Int("files", len(b.Files)),
		zap.Int("succeeded", tally.Succeeded),
		zap.Int("failed", tally.Failed),
	)
	return tally, nil
}

func (s *mediaService) UploadOne(ctx context.Context, ownerID, folder string, f UploadFile) (*model.MediaItem, error) {
	owner := strings.TrimSpace(ownerID)
	if owner == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(f.Name) == "" {
		return nil, ErrFilenameRequired
	}
	folder, err := cleanFolder(folder)
	if err != nil {
		return nil, err
	}

	key := flatKey(owner, folder, s.now().UnixMilli(), 0, s.newID(), f.Name)
	item, orphaned, err := s.upload(ctx, owner, key, f)
	out := UploadOutcome{Filename: f.Name, StorageKey: key, Item: item, Err: err, Orphaned: orphaned}
	s.record(out)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// planKeys computes every storage key up front so collisions within the
// batch can be detected before any bytes move. The first file keeps a
// contested key; later ones fail with ErrDuplicateKey. Collisions with
// earlier batches are caught by the store at Put time.
func (s *mediaService) planKeys(owner, folder string, b *UploadBatch) ([]string, []error) {
	keys := make([]string, len(b.Files))
	errs := make([]error, len(b.Files))
	stamp := s.now().UnixMilli()
	seen := make(map[string]int, len(b.Files))

	for i, f := range b.Files {
		switch {
		case b.PreserveStructure && f.RelativePath != "":
			rel := library.Sanitize(f.RelativePath)
			if !validRelativePath(rel) {
				errs[i] = fmt.Errorf("%w: %q", ErrInvalidPath, f.RelativePath)
				continue
			}
			keys[i] = library.JoinKey(owner, StructureRoot, rel)
		case strings.TrimSpace(f.Name) == "":
			errs[i] = ErrFilenameRequired
			continue
		default:
			keys[i] = flatKey(owner, folder, stamp, i, s.newID(), f.Name)
		}

		if first, dup := seen[keys[i]]; dup {
			errs[i] = fmt.Errorf("%w (file %d)", ErrDuplicateKey, first)
			continue
		}
		seen[keys[i]] = i
	}
	return keys, errs
}

// flatKey builds owner/[folder/]<millis>-<index>-<id>-<name>.
func flatKey(owner, folder string, millis int64, index int, id, name string) string {
	base := fmt.Sprintf("%d-%d-%s-%s", millis, index, id, library.Sanitize(baseName(name)))
	return library.JoinKey(owner, folder, base)
}

func baseName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}

// cleanFolder sanitizes a target folder the same way relative paths are.
// Empty means root.
func cleanFolder(folder string) (string, error) {
	clean := library.CleanKey(library.Sanitize(folder))
	if clean == "" {
		return "", nil
	}
	if !validRelativePath(clean) {
		return "", fmt.Errorf("%w: folder %q", ErrInvalidPath, folder)
	}
	return clean, nil
}

func validRelativePath(rel string) bool {
	segs := library.SplitKey(rel)
	if len(segs) == 0 {
		return false
	}
	for _, seg := range segs {
		if seg == "." || seg == ".." {
			return false
		}
	}
	return true
}

// upload stores the bytes, then records the row. A failed insert triggers a
// compensating delete; orphaned reports that the delete failed too.
func (s *mediaService) upload(ctx context.Context, owner, key string, f UploadFile) (item *model.MediaItem, orphaned bool, err error) {
	ctx, span := tracer.Start(ctx, "media.upload", trace.WithAttributes(
		attribute.String("media.owner_id", owner),
		attribute.String("media.key", key),
		attribute.Int64("media.size", f.Size),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if f.Open == nil {
		return nil, false, ErrNoContent
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false, fmt.Errorf("open file: %w", err)
	}
	defer rc.Close()

	info, err := s.store.Put(ctx, key, rc, storage.PutObjectOptions{
		Size:        f.Size,
		ContentType: f.ContentType,
		Metadata: map[string]string{
			"original-filename": f.Name,
		},
	})
	if err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			return nil, false, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		return nil, false, fmt.Errorf("upload to storage: %w", err)
	}

	size := info.Size
	if size <= 0 {
		size = max(f.Size, 0)
	}
	row := &model.MediaItem{
		ID:               s.newID(),
		OwnerID:          owner,
		FileURL:          info.URL,
		Title:            f.Name,
		Description:      f.Description,
		OriginalFilename: f.Name,
		MimeType:         f.ContentType,
		Category:         s.defaultCategory,
		FilePath:         key,
		Size:             size,
		CreatedAt:        s.now().UTC(),
	}

	stored, err := s.repo.Create(ctx, row)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePath) {
			// The key belongs to a recorded item; deleting it would strand that row.
			s.logger.Warn("upload key already recorded, object kept", zap.String("key", key))
			return nil, false, fmt.Errorf("%w: %s", ErrDuplicateKey, key)
		}
		if delErr := s.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.logger.Error("upload rollback failed, object orphaned",
				zap.String("key", key),
				zap.NamedError("insert_error", err),
				zap.NamedError("delete_error", delErr),
			)
			return nil, true, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, false, fmt.Errorf("db save failed: %w", err)
	}
	return stored, false, nil
}

func (s *mediaService) record(o UploadOutcome) {
	switch {
	case o.OK():
		s.metrics.observeUpload(outcomeSuccess)
		s.logger.Debug("media uploaded", zap.String("filename", o.Filename), zap.String("key", o.StorageKey))
	case o.Orphaned:
		s.metrics.observeUpload(outcomeOrphaned)
	default:
		s.metrics.observeUpload(outcomeFailure)
		s.logger.Warn("media upload failed",
			zap.String("filename", o.Filename),
			zap.String("key", o.StorageKey),
			zap.Error(o.Err),
		)
	}
}
