package dto

import "time"

// TokenInfo describes one configured token on the public info endpoint.
type TokenInfo struct {
	Token        string     `json:"token"`
	UserName     string     `json:"userName"`
	Role         string     `json:"role"`
	ExpiresAt    *time.Time `json:"expiresAt"`
	Instructions string     `json:"instructions"`
}

// AuthInfoResponse is returned by GET /api/auth/info.
type AuthInfoResponse struct {
	Message  string            `json:"message"`
	Tokens   []TokenInfo       `json:"tokens"`
	Examples map[string]string `json:"examples"`
}

// ValidateResponse is returned by GET /api/auth/validate.
type ValidateResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        string `json:"userId,omitempty"`
	UserName      string `json:"userName,omitempty"`
	Role          string `json:"role,omitempty"`
	Message       string `json:"message,omitempty"`
}
