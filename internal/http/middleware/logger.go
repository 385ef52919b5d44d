package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger logs each HTTP request as one structured entry:
// request_id, method, path, status, latency_ms and owner_id when present.
// 5xx responses are logged at error level, 4xx at warn.
func Logger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		rid, _ := c.Locals(RequestIDLocalKey).(string)
		fields := []zap.Field{
			zap.String("request_id", rid),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
		}
		if owner := c.Get("X-Owner-ID"); owner != "" {
			fields = append(fields, zap.String("owner_id", owner))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		level := zapcore.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= fiber.StatusBadRequest:
			level = zapcore.WarnLevel
		}
		if ce := logger.Check(level, "http_request"); ce != nil {
			ce.Write(fields...)
		}

		return err
	}
}
