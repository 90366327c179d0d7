package http

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/observability"
	apperrors "github.com/spec-kit/user-directory/pkg/util/errorutil"
)

// HeaderRequestID carries the audit correlation id on every audited response.
const HeaderRequestID = "X-Request-ID"

// errorWriter renders AppErrors as the structured error body.
type errorWriter struct {
	logger     *zap.Logger
	metrics    *observability.Metrics
	production bool
}

func (w errorWriter) write(c *fiber.Ctx, appErr *apperrors.AppError, stack string) error {
	body := apperrors.NewErrorResponse(appErr, c.Path())
	if !w.production {
		body = body.WithDetails(appErr, stack)
	}

	fields := []zap.Field{
		zap.String("error_id", body.ErrorID),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", body.StatusCode),
		zap.String("code", appErr.Code),
	}
	if appErr.IsFault() {
		w.logger.Error("unhandled error", append(fields, zap.Error(appErr))...)
	} else {
		w.logger.Info("request rejected", append(fields, zap.String("message", appErr.Message))...)
	}
	w.metrics.RecordError(c.Path(), c.Method(), appErr.Code)

	return c.Status(body.StatusCode).JSON(body)
}

// ErrorContainmentStage is the outermost stage. It turns panics and faults
// returned from anywhere downstream into a single structured 500 response.
type ErrorContainmentStage struct {
	writer errorWriter
}

// NewErrorContainmentStage constructs the stage. In production, error bodies
// omit the detailed message, stack trace and exception type.
func NewErrorContainmentStage(logger *zap.Logger, metrics *observability.Metrics, production bool) *ErrorContainmentStage {
	return &ErrorContainmentStage{writer: errorWriter{logger: logger, metrics: metrics, production: production}}
}

func (s *ErrorContainmentStage) Name() string { return "error-containment" }

func (s *ErrorContainmentStage) Process(c *fiber.Ctx, next fiber.Handler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			appErr := apperrors.ToAppError(apperrors.NewFault(panicError(r)))
			err = s.writer.write(c, appErr, string(debug.Stack()))
			return
		}
		if err != nil {
			err = s.writer.write(c, apperrors.ToAppError(err), "")
		}
	}()
	return next(c)
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}

// AuditStage logs every request and response that reaches it.
type AuditStage struct {
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewAuditStage constructs the stage.
func NewAuditStage(logger *zap.Logger, metrics *observability.Metrics) *AuditStage {
	return &AuditStage{logger: logger, metrics: metrics}
}

func (s *AuditStage) Name() string { return "audit" }

// Process logs the request, runs the rest of the chain and logs the buffered
// response. Failures are logged and passed on untouched.
func (s *AuditStage) Process(c *fiber.Ctx, next fiber.Handler) (err error) {
	start := time.Now()
	requestID := uuid.NewString()
	c.Set(HeaderRequestID, requestID)
	logger := s.logger.With(zap.String("request_id", requestID))

	req := c.Request()
	logger.Info("incoming request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.String("query", string(req.URI().QueryString())),
		zap.String("content_type", string(req.Header.ContentType())),
		zap.Int("content_length", req.Header.ContentLength()),
		zap.String("client_ip", c.IP()),
		zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
	)
	if body := c.Body(); len(body) > 0 {
		logger.Debug("request body", zap.ByteString("body", body))
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("request failed", zap.Any("panic", r), zap.Duration("duration", time.Since(start)))
			panic(r)
		}
	}()

	if err = next(c); err != nil {
		logger.Error("request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return err
	}

	duration := time.Since(start)
	resp := c.Response()
	body := resp.Body()
	logger.Info("outgoing response",
		zap.Int("status", resp.StatusCode()),
		zap.String("content_type", string(resp.Header.ContentType())),
		zap.Int("content_length", len(body)),
		zap.Duration("duration", duration),
	)
	if len(body) > 0 {
		logger.Debug("response body", zap.ByteString("body", body))
	}
	s.metrics.RecordRequest(c.Path(), c.Method(), resp.StatusCode(), duration)
	return nil
}

// RoutingStage is the terminal stage. It dispatches to the fiber router and
// renders deliberate errors; faults go back up to ErrorContainmentStage.
type RoutingStage struct {
	writer errorWriter
}

// NewRoutingStage constructs the stage.
func NewRoutingStage(logger *zap.Logger, metrics *observability.Metrics, production bool) *RoutingStage {
	return &RoutingStage{writer: errorWriter{logger: logger, metrics: metrics, production: production}}
}

func (s *RoutingStage) Name() string { return "routing" }

func (s *RoutingStage) Process(c *fiber.Ctx, _ fiber.Handler) error {
	err := c.Next()
	if err == nil {
		return nil
	}
	appErr := apperrors.ToAppError(err)
	if appErr.IsFault() {
		return err
	}
	return s.writer.write(c, appErr, "")
}
