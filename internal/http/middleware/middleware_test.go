package middleware

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})

	t.Run("should replace oversized request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLen+1))

		resp, _ := app.Test(req)

		rid := resp.Header.Get(RequestIDHeader)
		assert.Len(t, rid, 36)
	})
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()

	app.Use(RequestID())
	app.Use(Logger(zap.New(core)))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream")
	})
	app.Get("/missing-owner", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusBadRequest)
	})

	t.Run("success is info", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set("X-Owner-ID", "u1")
		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		e := entries[0]
		assert.Equal(t, "http_request", e.Message)
		assert.Equal(t, zapcore.InfoLevel, e.Level)

		fields := e.ContextMap()
		assert.NotEmpty(t, fields["request_id"])
		assert.Equal(t, "GET", fields["method"])
		assert.Equal(t, "/test", fields["path"])
		assert.Equal(t, int64(fiber.StatusAccepted), fields["status"])
		assert.Equal(t, "u1", fields["owner_id"])
		assert.Contains(t, fields, "latency_ms")
	})

	t.Run("handler error is error level", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest("GET", "/boom", nil))
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Equal(t, int64(fiber.StatusBadGateway), entries[0].ContextMap()["status"])
		assert.Equal(t, "upstream", entries[0].ContextMap()["error"])
	})

	t.Run("client error is warn level", func(t *testing.T) {
		app.Test(httptest.NewRequest("GET", "/missing-owner", nil))

		entries := logs.TakeAll()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.NotContains(t, entries[0].ContextMap(), "owner_id")
	})
}
