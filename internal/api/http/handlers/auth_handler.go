package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-directory/internal/api/dto"
	"github.com/spec-kit/user-directory/internal/auth"
	apperrors "github.com/spec-kit/user-directory/pkg/util/errorutil"
)

const tokenInstructions = "Include this token in the Authorization header as 'Bearer {token}' or in the X-API-Token header"

// AuthHandler describes and checks API tokens.
type AuthHandler struct {
	registry *auth.Registry
}

// NewAuthHandler constructs handler.
func NewAuthHandler(registry *auth.Registry) *AuthHandler {
	return &AuthHandler{registry: registry}
}

// Info handles GET /api/auth/info. It is public.
func (h *AuthHandler) Info(c *fiber.Ctx) error {
	records := h.registry.Records()
	tokens := make([]dto.TokenInfo, 0, len(records))
	for _, rec := range records {
		tokens = append(tokens, dto.TokenInfo{
			Token:        rec.Token,
			UserName:     rec.UserName,
			Role:         rec.Role,
			ExpiresAt:    rec.ExpiresAt,
			Instructions: tokenInstructions,
		})
	}

	example := "<token>"
	if len(records) > 0 {
		example = records[0].Token
	}
	return c.JSON(dto.AuthInfoResponse{
		Message: "Available authentication tokens for testing",
		Tokens:  tokens,
		Examples: map[string]string{
			"authorizationHeader": "Authorization: Bearer " + example,
			"apiTokenHeader":      auth.APITokenHeader + ": " + example,
		},
	})
}

// Validate handles GET /api/auth/validate.
func (h *AuthHandler) Validate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Not authenticated")
	}
	return c.JSON(dto.ValidateResponse{
		Authenticated: true,
		UserID:        principal.UserID,
		UserName:      principal.UserName,
		Role:          principal.Role,
	})
}
