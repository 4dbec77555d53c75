package handler

import (
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/repository"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userRepo *repository.UserRepository
}

func NewUserHandler(userRepo *repository.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// Me returns the authenticated caller's profile.
// GET /api/v1/users/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}

	user.PasswordHash = ""
	return c.JSON(user)
}
