package auth

import (
	"github.com/gofiber/fiber/v2"
)

// AuthorizationStage is where role checks will live. It currently admits every
// request that reached it.
type AuthorizationStage struct{}

// NewAuthorizationStage constructs the stage.
func NewAuthorizationStage() *AuthorizationStage {
	return &AuthorizationStage{}
}

func (s *AuthorizationStage) Name() string { return "authorization" }

func (s *AuthorizationStage) Process(c *fiber.Ctx, next fiber.Handler) error {
	return next(c)
}
