package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medialib/internal/model"
	"medialib/internal/repository"
)

var columns = []string{"id", "owner_id", "title", "description", "original_filename", "mime_type", "category", "file_path", "file_url", "size", "is_favorite", "is_deleted", "created_at"}

func sampleItem() *model.MediaItem {
	return &model.MediaItem{
		ID:               "test-uuid",
		OwnerID:          "u1",
		Title:            "Photo One.jpg",
		Description:      "Front row",
		OriginalFilename: "Photo One.jpg",
		MimeType:         "image/jpeg",
		Category:         "general",
		FilePath:         "u1/1700000000000-0-abc-photo-one.jpg",
		FileURL:          "http://localhost:9000/media/u1/1700000000000-0-abc-photo-one.jpg",
		Size:             123,
		CreatedAt:        time.Now().UTC(),
	}
}

func rowOf(m *model.MediaItem) *sqlmock.Rows {
	return sqlmock.NewRows(columns).AddRow(
		m.ID, m.OwnerID, m.Title, m.Description, m.OriginalFilename, m.MimeType, m.Category, m.FilePath, m.FileURL, m.Size, m.IsFavorite, m.IsDeleted, m.CreatedAt,
	)
}

func TestMediaPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMediaPostgres(db)
	ctx := context.Background()
	item := sampleItem()

	mock.ExpectQuery("INSERT INTO media_items").
		WithArgs(item.ID, item.OwnerID, item.Title, item.Description, item.OriginalFilename, item.MimeType, item.Category, item.FilePath, item.FileURL, item.Size, item.IsFavorite, item.IsDeleted, item.CreatedAt).
		WillReturnRows(rowOf(item))

	result, err := repo.Create(ctx, item)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, item.ID, result.ID)
	assert.Equal(t, item.FilePath, result.FilePath)
	assert.Equal(t, "Front row", result.Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaPostgres_Create_DuplicatePath(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMediaPostgres(db)
	item := sampleItem()
	mock.ExpectQuery("INSERT INTO media_items").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	result, err := repo.Create(context.Background(), item)

	assert.ErrorIs(t, err, repository.ErrDuplicatePath)
	assert.Contains(t, err.Error(), item.FilePath)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaPostgres_Create_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMediaPostgres(db)
	mock.ExpectQuery("INSERT INTO media_items").WillReturnError(errors.New("connection reset"))

	result, err := repo.Create(context.Background(), sampleItem())

	assert.EqualError(t, err, "connection reset")
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMediaPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM media_items WHERE id = ?").
			WithArgs("test-uuid").
			WillReturnRows(rowOf(sampleItem()))

		item, err := repo.FindByID(ctx, "test-uuid")

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "test-uuid", item.ID)
		assert.Equal(t, "image/jpeg", item.MimeType)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM media_items WHERE id = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		item, err := repo.FindByID(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, item)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMediaPostgres(db)
	ctx := context.Background()

	t.Run("unfiltered", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM media_items ORDER BY created_at DESC, id DESC$`).
			WithArgs().
			WillReturnRows(rowOf(sampleItem()))

		items, err := repo.List(ctx, repository.ListFilter{})

		assert.NoError(t, err)
		assert.Len(t, items, 1)
	})

	t.Run("owner and category", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM media_items WHERE owner_id = \$1 AND category = \$2 ORDER BY created_at DESC, id DESC$`).
			WithArgs("u1", "photos").
			WillReturnRows(sqlmock.NewRows(columns))

		items, err := repo.List(ctx, repository.ListFilter{OwnerID: "u1", Category: "photos"})

		assert.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("category only", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM media_items WHERE category = \$1 ORDER BY`).
			WithArgs("photos").
			WillReturnError(errors.New("db down"))

		items, err := repo.List(ctx, repository.ListFilter{Category: "photos"})

		assert.EqualError(t, err, "db down")
		assert.Nil(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaPostgres_SetFlags(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMediaPostgres(db)
	ctx := context.Background()

	t.Run("favorite", func(t *testing.T) {
		mock.ExpectExec(`UPDATE media_items SET is_favorite = \$2 WHERE id = \$1`).
			WithArgs("test-uuid", true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetFavorite(ctx, "test-uuid", true))
	})

	t.Run("trash", func(t *testing.T) {
		mock.ExpectExec(`UPDATE media_items SET is_deleted = \$2 WHERE id = \$1`).
			WithArgs("test-uuid", true).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetDeleted(ctx, "test-uuid", true))
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec(`UPDATE media_items SET is_deleted = \$2 WHERE id = \$1`).
			WithArgs("missing", false).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.SetDeleted(ctx, "missing", false), sql.ErrNoRows)
	})

	t.Run("exec error", func(t *testing.T) {
		mock.ExpectExec(`UPDATE media_items SET is_favorite`).
			WillReturnError(errors.New("db down"))

		assert.EqualError(t, repo.SetFavorite(ctx, "test-uuid", false), "db down")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMediaPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewMediaPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM media_items WHERE id = ?").
		WithArgs("test-uuid").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(ctx, "test-uuid")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
