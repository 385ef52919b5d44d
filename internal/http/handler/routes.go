package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"medialib/internal/preview"
	"medialib/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, mediaSvc service.MediaService, previewer preview.Previewer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	media := app.Group("/media")
	media.Get("/", BrowseMedia(mediaSvc))
	media.Post("/", UploadMedia(mediaSvc))
	media.Post("/quick", QuickUpload(mediaSvc))
	media.Get("/:id", GetMedia(mediaSvc))
	media.Get("/:id/preview", PreviewMedia(mediaSvc, previewer))
	media.Get("/:id/thumbnail", MediaThumbnail(mediaSvc, previewer))
	media.Get("/:id/download", DownloadMedia(mediaSvc))
	media.Put("/:id/favorite", FavoriteMedia(mediaSvc))
	media.Post("/:id/restore", RestoreMedia(mediaSvc))
	media.Delete("/:id", DeleteMedia(mediaSvc))
}

// HealthCheck checks DB connectivity only.
//
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
//
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
