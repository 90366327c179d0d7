package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/user-directory/internal/config"
)

var errRegistryNotConfigured = errors.New("token registry not configured")

// TokenRecord is a configured API token. Records are immutable after load.
type TokenRecord struct {
	Token     string
	UserID    string
	UserName  string
	Role      string
	ExpiresAt *time.Time
}

// TokenSource resolves raw tokens to records.
type TokenSource interface {
	Lookup(token string) (TokenRecord, bool, error)
}

// Registry is the read-only set of tokens loaded at startup.
type Registry struct {
	records []TokenRecord
	byToken map[string]TokenRecord
}

// NewRegistry validates and indexes the records.
func NewRegistry(records []TokenRecord) (*Registry, error) {
	r := &Registry{
		records: make([]TokenRecord, 0, len(records)),
		byToken: make(map[string]TokenRecord, len(records)),
	}
	for i, rec := range records {
		if rec.Token == "" {
			return nil, fmt.Errorf("token record %d: empty token", i)
		}
		if rec.UserID == "" {
			return nil, fmt.Errorf("token record %d: empty user id", i)
		}
		if _, dup := r.byToken[rec.Token]; dup {
			return nil, fmt.Errorf("token record %d: duplicate token for user %s", i, rec.UserID)
		}
		if rec.ExpiresAt != nil {
			exp := rec.ExpiresAt.UTC()
			rec.ExpiresAt = &exp
		}
		r.records = append(r.records, rec)
		r.byToken[rec.Token] = rec
	}
	return r, nil
}

// RegistryFromConfig builds a registry from configured tokens.
func RegistryFromConfig(tokens []config.TokenConfig) (*Registry, error) {
	records := make([]TokenRecord, 0, len(tokens))
	for _, t := range tokens {
		records = append(records, TokenRecord{
			Token:     t.Token,
			UserID:    t.UserID,
			UserName:  t.UserName,
			Role:      t.Role,
			ExpiresAt: t.ExpiresAt,
		})
	}
	return NewRegistry(records)
}

// Lookup finds a record by exact token match.
func (r *Registry) Lookup(token string) (TokenRecord, bool, error) {
	if r == nil || r.byToken == nil {
		return TokenRecord{}, false, errRegistryNotConfigured
	}
	rec, ok := r.byToken[token]
	return rec, ok, nil
}

// Records returns the records in configuration order.
func (r *Registry) Records() []TokenRecord {
	if r == nil {
		return nil
	}
	out := make([]TokenRecord, len(r.records))
	copy(out, r.records)
	return out
}
