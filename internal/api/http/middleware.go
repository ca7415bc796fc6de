package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/tempofiller/internal/observability"
	"github.com/spec-kit/tempofiller/pkg/util/errorutil"
)

const requestIDHeader = "X-Request-ID"

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(requestLoggerMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestLoggerMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDHeader, requestID)

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)
		status := c.Response().StatusCode()

		metrics.RecordRequest("http "+c.Route().Path, c.Method(), status, elapsed)
		logger.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("duration", elapsed))
		return err
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = errorutil.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError("http "+c.Route().Path, c.Method(), string(domainErr.Kind))
				body := fiber.Map{
					"code":    domainErr.Kind,
					"message": domainErr.Message,
				}
				if len(domainErr.Details) > 0 {
					body["details"] = domainErr.Details
				}
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr))
				}
				c.Status(domainErr.HTTPStatus)
				_ = c.JSON(fiber.Map{"error": body})
				err = nil
			}
		}()
		return c.Next()
	}
}

// toDomainError extends errorutil.ToDomainError with Fiber's own errors, such as unmatched routes.
func toDomainError(err error) *errorutil.DomainError {
	var fiberErr *fiber.Error
	if !errors.As(err, &fiberErr) {
		return errorutil.ToDomainError(err)
	}
	kind := errorutil.KindInternal
	switch {
	case fiberErr.Code == fiber.StatusNotFound:
		kind = errorutil.KindNotFound
	case fiberErr.Code == fiber.StatusUnauthorized:
		kind = errorutil.KindAuthentication
	case fiberErr.Code == fiber.StatusForbidden:
		kind = errorutil.KindAuthorization
	case fiberErr.Code == fiber.StatusTooManyRequests:
		kind = errorutil.KindRateLimit
	case fiberErr.Code < 500:
		kind = errorutil.KindValidation
	}
	return errorutil.NewDomainError(kind, fiberErr.Message, fiberErr.Code, nil)
}
