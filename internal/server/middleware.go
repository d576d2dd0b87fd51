package server

import (
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"

	"lease-backend/internal/common/errors"
	"lease-backend/internal/common/logger"
	"lease-backend/internal/common/metrics"
	"lease-backend/internal/common/observability"
)

// requestLogger logs each request with its request id, status, and latency.
func requestLogger(log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status, _ = errors.ToHTTPError(err)
			}
		}

		log.Info("request handled", map[string]interface{}{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"durationMs": time.Since(start).Milliseconds(),
			"requestId":  c.GetRespHeader(fiber.HeaderXRequestID),
		})
		return err
	}
}

// apiTokenAuth requires a bearer token on API routes. Health and probe
// endpoints stay open.
func apiTokenAuth(token string, log logger.Logger) fiber.Handler {
	return keyauth.New(keyauth.Config{
		KeyLookup:  "header:Authorization",
		AuthScheme: "Bearer",
		Validator: func(c *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), []byte(token)) == 1 {
				return true, nil
			}
			return false, keyauth.ErrMissingOrMalformedAPIKey
		},
		Next: func(c *fiber.Ctx) bool {
			return !strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Warn("request rejected by token auth", map[string]interface{}{
				"path": c.Path(),
			})
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or missing bearer token")
		},
	})
}

// requestMetrics records per-route request counts and durations.
func requestMetrics(obs *observability.Observability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		elapsed := time.Since(start)
		route := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())

		metrics.RequestDuration.WithLabelValues(route, status).Observe(elapsed.Seconds())
		obs.RecordRequestProcessed(c.UserContext(), route, status)
		obs.RecordRequestDuration(c.UserContext(), elapsed, route)
		return err
	}
}
