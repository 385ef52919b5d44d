package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"medialib/internal/model"
	"medialib/internal/repository"
)

const mediaColumns = `id, owner_id, title, description, original_filename, mime_type, category, file_path, file_url, size, is_favorite, is_deleted, created_at`

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// MediaPostgres is a PostgreSQL implementation of repository.MediaRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type MediaPostgres struct {
	db *sql.DB
}

// NewMediaPostgres creates a new MediaPostgres repository.
func NewMediaPostgres(db *sql.DB) *MediaPostgres {
	return &MediaPostgres{db: db}
}

var _ repository.MediaRepository = (*MediaPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedia(s rowScanner) (*model.MediaItem, error) {
	var m model.MediaItem
	if err := s.Scan(
		&m.ID,
		&m.OwnerID,
		&m.Title,
		&m.Description,
		&m.OriginalFilename,
		&m.MimeType,
		&m.Category,
		&m.FilePath,
		&m.FileURL,
		&m.Size,
		&m.IsFavorite,
		&m.IsDeleted,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media row and returns the stored record.
// A file_path that is already recorded yields repository.ErrDuplicatePath.
func (r *MediaPostgres) Create(ctx context.Context, item *model.MediaItem) (*model.MediaItem, error) {
	const q = `
		INSERT INTO media_items (` + mediaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + mediaColumns
	row := r.db.QueryRowContext(ctx, q,
		item.ID,
		item.OwnerID,
		item.Title,
		item.Description,
		item.OriginalFilename,
		item.MimeType,
		item.Category,
		item.FilePath,
		item.FileURL,
		item.Size,
		item.IsFavorite,
		item.IsDeleted,
		item.CreatedAt,
	)
	m, err := scanMedia(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: %s", repository.ErrDuplicatePath, item.FilePath)
		}
		return nil, err
	}
	return m, nil
}

// FindByID fetches a single media item by its ID.
func (r *MediaPostgres) FindByID(ctx context.Context, id string) (*model.MediaItem, error) {
	const q = `SELECT ` + mediaColumns + ` FROM media_items WHERE id = $1`
	return scanMedia(r.db.QueryRowContext(ctx, q, id))
}

// List returns items newest first, optionally scoped to an owner and a category.
func (r *MediaPostgres) List(ctx context.Context, f repository.ListFilter) ([]model.MediaItem, error) {
	var (
		where []string
		args  []any
	)
	if f.OwnerID != "" {
		args = append(args, f.OwnerID)
		where = append(where, fmt.Sprintf("owner_id = $%d", len(args)))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + mediaColumns + ` FROM media_items`)
	if len(where) > 0 {
		b.WriteString(` WHERE ` + strings.Join(where, " AND "))
	}
	b.WriteString(` ORDER BY created_at DESC, id DESC`)

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.MediaItem, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// SetFavorite updates the favorite flag of one row.
func (r *MediaPostgres) SetFavorite(ctx context.Context, id string, favorite bool) error {
	const q = `UPDATE media_items SET is_favorite = $2 WHERE id = $1`
	return r.execOne(ctx, q, id, favorite)
}

// SetDeleted moves one row to or out of the trash.
func (r *MediaPostgres) SetDeleted(ctx context.Context, id string, deleted bool) error {
	const q = `UPDATE media_items SET is_deleted = $2 WHERE id = $1`
	return r.execOne(ctx, q, id, deleted)
}

// execOne runs an update that must touch exactly one row.
func (r *MediaPostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a media row by ID. It does not return an error if the row does not exist.
func (r *MediaPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM media_items WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}
