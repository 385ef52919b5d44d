package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"medialib/internal/preview"
	"medialib/internal/service"
)

// OwnerIDHeader carries the uploader identity. It is trusted as given.
const OwnerIDHeader = "X-Owner-ID"

func ownerID(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(OwnerIDHeader))
}

func validID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

func uploadFileOf(fh *multipart.FileHeader, relativePath string) service.UploadFile {
	return service.UploadFile{
		Name:         fh.Filename,
		RelativePath: relativePath,
		ContentType:  fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// BrowseMedia lists one virtual folder of the caller's library.
//
// @Summary Browse a folder
// @Tags media
// @Produce json
// @Param X-Owner-ID header string true "Owner ID"
// @Param folder query string false "Folder key, empty for root"
// @Param category query string false "Category scope"
// @Param kind query string false "all, documents, image, audio, video, pdf, document, other"
// @Param view query string false "all, favorites or trash"
// @Param q query string false "Search text"
// @Param sort query string false "name, date, size, type"
// @Param order query string false "asc or desc"
// @Success 200 {object} service.BrowseResult
// @Failure 400 {object} errorPayload
// @Router /media [get]
func BrowseMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := ownerID(c)
		if owner == "" {
			return writeError(c, fiber.StatusBadRequest, "OWNER_REQUIRED", "owner id is required")
		}

		res, err := svc.Browse(c.UserContext(), service.BrowseQuery{
			OwnerID:  owner,
			Category: c.Query("category"),
			Folder:   c.Query("folder"),
			View:     c.Query("view"),
			Kind:     c.Query("kind"),
			Query:    c.Query("q"),
			SortBy:   c.Query("sort"),
			Order:    c.Query("order"),
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// UploadMedia uploads a batch of files and reports the per-file tally.
// "paths" values pair with "files" by position when preserve_structure is set;
// "descriptions" pair by position always.
//
// @Summary Upload a batch
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param X-Owner-ID header string true "Owner ID"
// @Param files formData file true "Files"
// @Param paths formData string false "Relative paths, one per file"
// @Param descriptions formData string false "Descriptions, one per file"
// @Param folder formData string false "Target folder key"
// @Param preserve_structure formData bool false "Key files by their relative paths"
// @Success 200 {object} service.UploadTally
// @Failure 400 {object} errorPayload
// @Router /media [post]
func UploadMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := ownerID(c)
		if owner == "" {
			return writeError(c, fiber.StatusBadRequest, "OWNER_REQUIRED", "owner id is required")
		}

		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "multipart form is required")
		}

		preserve, err := strconv.ParseBool(firstValue(form.Value["preserve_structure"], "false"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PRESERVE_STRUCTURE", "preserve_structure must be a boolean")
		}

		headers := form.File["files"]
		paths := form.Value["paths"]
		descriptions := form.Value["descriptions"]
		batch := &service.UploadBatch{
			OwnerID:           owner,
			Folder:            firstValue(form.Value["folder"], ""),
			PreserveStructure: preserve,
			Files:             make([]service.UploadFile, 0, len(headers)),
		}
		for i, fh := range headers {
			f := uploadFileOf(fh, valueAt(paths, i))
			f.Description = valueAt(descriptions, i)
			batch.Files = append(batch.Files, f)
		}

		tally, err := svc.UploadBatch(c.UserContext(), batch)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(tally)
	}
}

func valueAt(vals []string, i int) string {
	if i < len(vals) {
		return vals[i]
	}
	return ""
}

func firstValue(vals []string, def string) string {
	if len(vals) == 0 || vals[0] == "" {
		return def
	}
	return vals[0]
}

// QuickUpload uploads one file and returns the recorded item.
//
// @Summary Upload a single file
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param X-Owner-ID header string true "Owner ID"
// @Param file formData file true "File"
// @Param folder formData string false "Target folder key"
// @Param description formData string false "Description"
// @Success 201 {object} model.MediaItem
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /media/quick [post]
func QuickUpload(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := ownerID(c)
		if owner == "" {
			return writeError(c, fiber.StatusBadRequest, "OWNER_REQUIRED", "owner id is required")
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f := uploadFileOf(fh, "")
		f.Description = c.FormValue("description")
		item, err := svc.UploadOne(c.UserContext(), owner, c.FormValue("folder"), f)
		if err != nil {
			if isClientUploadError(err) {
				return writeServiceError(c, err)
			}
			return writeError(c, fiber.StatusBadGateway, "UPLOAD_FAILED", "upload failed")
		}
		return c.Status(fiber.StatusCreated).JSON(item)
	}
}

func isClientUploadError(err error) bool {
	return errors.Is(err, service.ErrOwnerRequired) ||
		errors.Is(err, service.ErrFilenameRequired) ||
		errors.Is(err, service.ErrInvalidPath) ||
		errors.Is(err, service.ErrDuplicateKey)
}

// GetMedia returns one item.
//
// @Summary Get a media item
// @Tags media
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} model.MediaItem
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /media/{id} [get]
func GetMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		item, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}

// PreviewMedia describes how a client should render the item.
//
// @Summary Preview descriptor
// @Tags media
// @Produce json
// @Param id path string true "Item ID"
// @Param width query int false "Viewport width in pixels"
// @Success 200 {object} preview.Preview
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /media/{id}/preview [get]
func PreviewMedia(svc service.MediaService, previewer preview.Previewer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		width, err := strconv.Atoi(c.Query("width", "0"))
		if err != nil || width < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_WIDTH", "invalid width")
		}
		item, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(previewer.Render(c.UserContext(), *item, width))
	}
}

// MediaThumbnail returns a JPEG thumbnail of an image item.
//
// @Summary Image thumbnail
// @Tags media
// @Produce jpeg
// @Param id path string true "Item ID"
// @Param width query int false "Maximum width in pixels"
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 415 {object} errorPayload
// @Router /media/{id}/thumbnail [get]
func MediaThumbnail(svc service.MediaService, previewer preview.Previewer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		width, err := strconv.Atoi(c.Query("width", "0"))
		if err != nil || width < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_WIDTH", "invalid width")
		}
		item, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}

		data, err := previewer.Thumbnail(c.UserContext(), *item, width)
		if err != nil {
			if errors.Is(err, preview.ErrNotImage) {
				return writeError(c, fiber.StatusUnsupportedMediaType, "NOT_AN_IMAGE", "thumbnails are only available for images")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Set(fiber.HeaderCacheControl, "private, max-age=300")
		c.Type("jpeg")
		return c.Send(data)
	}
}

// DownloadMedia redirects to a time-limited download URL.
//
// @Summary Download an item
// @Tags media
// @Param id path string true "Item ID"
// @Success 302
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /media/{id}/download [get]
func DownloadMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		u, err := svc.DownloadURL(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Redirect(u, fiber.StatusFound)
	}
}

// DeleteMedia moves an item to the trash. With permanent=true it removes the
// stored object, then its record.
//
// @Summary Trash or delete an item
// @Tags media
// @Param id path string true "Item ID"
// @Param permanent query bool false "Delete the object and its record"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /media/{id} [delete]
func DeleteMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		permanent, err := strconv.ParseBool(c.Query("permanent", "false"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_PERMANENT", "permanent must be a boolean")
		}

		if permanent {
			err = svc.Delete(c.UserContext(), id)
		} else {
			err = svc.Trash(c.UserContext(), id)
		}
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RestoreMedia brings a trashed item back.
//
// @Summary Restore a trashed item
// @Tags media
// @Param id path string true "Item ID"
// @Success 204
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /media/{id}/restore [post]
func RestoreMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Restore(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

type favoriteRequest struct {
	Favorite *bool `json:"favorite"`
}

// FavoriteMedia marks or unmarks an item as a favorite.
//
// @Summary Set favorite
// @Tags media
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param body body favoriteRequest true "Favorite flag"
// @Success 200 {object} model.MediaItem
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /media/{id}/favorite [put]
func FavoriteMedia(svc service.MediaService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := validID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req favoriteRequest
		if err := c.BodyParser(&req); err != nil || req.Favorite == nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "favorite flag is required")
		}
		item, err := svc.SetFavorite(c.UserContext(), id, *req.Favorite)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(item)
	}
}
