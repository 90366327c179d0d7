package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/user-directory/internal/api/dto"
	"github.com/spec-kit/user-directory/internal/auth"
	"github.com/spec-kit/user-directory/internal/service"
	apperrors "github.com/spec-kit/user-directory/pkg/util/errorutil"
)

// UsersHandler exposes the user directory.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	shape, err := dto.ParseListUsersQuery(func(key string) string { return c.Query(key) })
	if err != nil {
		return err
	}
	page, err := h.users.List(c.UserContext(), shape)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPagedUsersResponse(page))
}

// Get handles GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Create handles POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	principal, _ := auth.PrincipalFromContext(c)
	user, err := h.users.Create(c.UserContext(), principal, req.Changes())
	if err != nil {
		return err
	}
	c.Location(fmt.Sprintf("/api/users/%d", user.ID))
	return c.Status(fiber.StatusCreated).JSON(dto.NewUserResponse(user))
}

// Update handles PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(err)
	}
	if err := req.Validate(); err != nil {
		return err
	}

	principal, _ := auth.PrincipalFromContext(c)
	user, err := h.users.Update(c.UserContext(), principal, id, req.Changes())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Delete handles DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}
	principal, _ := auth.PrincipalFromContext(c)
	if _, err := h.users.Delete(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseUserID(c *fiber.Ctx) (int, error) {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("Invalid user ID.", []apperrors.FieldViolation{
			{Field: "id", Message: "id must be a positive integer"},
		})
	}
	return id, nil
}

func invalidBody(err error) error {
	return apperrors.NewValidationError("The request body is invalid.", []apperrors.FieldViolation{
		{Field: "body", Message: err.Error()},
	})
}
