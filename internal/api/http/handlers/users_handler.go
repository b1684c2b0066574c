package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/api/dto"
	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
	"github.com/spec-kit/auth-service/internal/service"
)

// UsersHandler exposes the admin user management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List handles GET /auth/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 10)

	var filters repository.ListFilters
	if roleStr := c.Query("role"); roleStr != "" {
		role := domain.Role(roleStr)
		filters.Role = &role
	}
	if activeStr := c.Query("isActive"); activeStr != "" {
		if parsed, err := strconv.ParseBool(activeStr); err == nil {
			filters.IsActive = &parsed
		}
	}
	filters.Search = c.Query("search")

	result, err := h.users.ListUsers(c.Context(), page, limit, filters)
	if err != nil {
		return err
	}

	users := make([]dto.UserResponse, 0, len(result.Users))
	for i := range result.Users {
		users = append(users, dto.NewUserResponse(&result.Users[i]))
	}

	return c.JSON(dto.OK(dto.UserListData{
		Users: users,
		Pagination: dto.Pagination{
			Page:       result.Page,
			Limit:      result.Limit,
			Total:      result.Total,
			TotalPages: result.TotalPages,
			HasNext:    result.HasNext,
			HasPrev:    result.HasPrev,
		},
	}, ""))
}

// Get handles GET /auth/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fiber.Map{"user": dto.NewUserResponse(user)}, ""))
}

// Update handles PUT /auth/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.users.UpdateUser(c.Context(), c.Params("id"), service.UpdateUserInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Phone:           req.Phone,
		Role:            req.Role,
		IsEmailVerified: req.IsEmailVerified,
		IsPhoneVerified: req.IsPhoneVerified,
	})
	if err != nil {
		return err
	}

	return c.JSON(dto.OK(fiber.Map{"user": dto.NewUserResponse(user)}, "User updated successfully"))
}

// Delete handles DELETE /auth/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.OK(nil, "User deleted successfully"))
}

// Activate handles POST /auth/users/:id/activate.
func (h *UsersHandler) Activate(c *fiber.Ctx) error {
	return h.setActive(c, true, "User activated successfully")
}

// Deactivate handles POST /auth/users/:id/deactivate.
func (h *UsersHandler) Deactivate(c *fiber.Ctx) error {
	return h.setActive(c, false, "User deactivated successfully")
}

func (h *UsersHandler) setActive(c *fiber.Ctx, active bool, message string) error {
	actorID := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actorID = principal.User.ID
	}

	user, err := h.users.SetUserActive(c.Context(), c.Params("id"), actorID, active)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(fiber.Map{"user": dto.NewUserResponse(user)}, message))
}

func parseIntQuery(c *fiber.Ctx, key string, defaultVal int) int {
	if val := c.Query(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}
