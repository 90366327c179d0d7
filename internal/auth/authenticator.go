package auth

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/user-directory/internal/domain"
)

// RejectReason explains why a token was refused.
type RejectReason string

const (
	ReasonMissing RejectReason = "Missing"
	ReasonInvalid RejectReason = "Invalid"
	ReasonExpired RejectReason = "Expired"
)

// Message is the client-facing description of the reason.
func (r RejectReason) Message() string {
	switch r {
	case ReasonMissing:
		return "Authentication token is required."
	case ReasonExpired:
		return "Token has expired."
	default:
		return "Invalid or expired token."
	}
}

// AuthResult holds either an authenticated principal or a rejection reason.
type AuthResult struct {
	Principal *domain.Principal
	Reason    RejectReason
}

func Authenticated(p domain.Principal) AuthResult {
	return AuthResult{Principal: &p}
}

func Rejected(reason RejectReason) AuthResult {
	return AuthResult{Reason: reason}
}

// IsAuthenticated reports whether the result carries a principal.
func (r AuthResult) IsAuthenticated() bool {
	return r.Principal != nil
}

// Authenticator validates raw tokens against a TokenSource.
type Authenticator struct {
	source TokenSource
	logger *zap.Logger
	now    func() time.Time
}

// NewAuthenticator constructs an authenticator using the wall clock.
func NewAuthenticator(source TokenSource, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{source: source, logger: logger, now: time.Now}
}

// WithClock replaces the time source; used by tests.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

// Authenticate validates a token. It never fails: lookup errors are logged and
// reported as an invalid token.
func (a *Authenticator) Authenticate(raw string) AuthResult {
	if raw == "" {
		return Rejected(ReasonMissing)
	}
	if a.source == nil {
		a.logger.Error("token validation error", zap.Error(errRegistryNotConfigured))
		return Rejected(ReasonInvalid)
	}

	rec, ok, err := a.source.Lookup(raw)
	if err != nil {
		a.logger.Error("token validation error", zap.Error(err))
		return Rejected(ReasonInvalid)
	}
	if !ok {
		return Rejected(ReasonInvalid)
	}
	if rec.ExpiresAt != nil && rec.ExpiresAt.Before(a.now().UTC()) {
		return Rejected(ReasonExpired)
	}

	return Authenticated(domain.Principal{
		UserID:   rec.UserID,
		UserName: rec.UserName,
		Role:     rec.Role,
	})
}
