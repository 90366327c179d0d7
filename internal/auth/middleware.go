package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/domain"
	"github.com/spec-kit/user-directory/internal/observability"
	apperrors "github.com/spec-kit/user-directory/pkg/util/errorutil"
)

const (
	principalKey = "auth_principal"

	// APITokenHeader is the alternative to a bearer Authorization header.
	APITokenHeader = "X-API-Token"
)

// DefaultPublicPaths are path prefixes served without a token.
var DefaultPublicPaths = []string{
	"/swagger",
	"/api/auth/info",
	"/api/auth/login",
	"/api/auth/token",
	"/health",
}

// AuthenticationStage rejects requests without a valid token and attaches the
// principal for everything downstream.
type AuthenticationStage struct {
	authn       *Authenticator
	logger      *zap.Logger
	metrics     *observability.Metrics
	publicPaths []string
}

// NewAuthenticationStage constructs the stage. With no publicPaths, DefaultPublicPaths apply.
func NewAuthenticationStage(authn *Authenticator, logger *zap.Logger, publicPaths ...string) *AuthenticationStage {
	if len(publicPaths) == 0 {
		publicPaths = DefaultPublicPaths
	}
	return &AuthenticationStage{authn: authn, logger: logger, publicPaths: publicPaths}
}

// WithMetrics counts rejected requests under the UNAUTHORIZED error code.
func (s *AuthenticationStage) WithMetrics(m *observability.Metrics) *AuthenticationStage {
	s.metrics = m
	return s
}

func (s *AuthenticationStage) Name() string { return "authentication" }

// Process enforces authentication for non-public paths.
func (s *AuthenticationStage) Process(c *fiber.Ctx, next fiber.Handler) error {
	path := c.Path()
	if s.isPublic(path) {
		return next(c)
	}

	result := s.authn.Authenticate(ExtractToken(c.Get(fiber.HeaderAuthorization), c.Get(APITokenHeader)))
	if !result.IsAuthenticated() {
		s.logger.Warn("authentication failed",
			zap.String("reason", string(result.Reason)),
			zap.String("path", path),
		)
		rejection := apperrors.NewAppError(apperrors.KindUnauthorized, "UNAUTHORIZED", result.Reason.Message())
		body := apperrors.NewErrorResponse(rejection, path)
		body.Reason = string(result.Reason)
		s.metrics.RecordError(path, c.Method(), rejection.Code)
		return c.Status(body.StatusCode).JSON(body)
	}

	s.logger.Debug("user authenticated",
		zap.String("user_id", result.Principal.UserID),
		zap.String("path", path),
	)
	c.Locals(principalKey, result.Principal)
	return next(c)
}

func (s *AuthenticationStage) isPublic(path string) bool {
	lower := strings.ToLower(path)
	for _, prefix := range s.publicPaths {
		if strings.HasPrefix(lower, strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

// ExtractToken prefers a bearer Authorization header and falls back to the API token header.
func ExtractToken(authorization, apiToken string) string {
	parts := strings.SplitN(strings.TrimSpace(authorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		if token := strings.TrimSpace(parts[1]); token != "" {
			return token
		}
	}
	return strings.TrimSpace(apiToken)
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*domain.Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*domain.Principal)
	return principal, ok
}
