package handler

import (
	"context"
	"log"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UserDirectory is the slice of the user repository the admin surface
// needs. *repository.UserRepository satisfies it.
type UserDirectory interface {
	List(ctx context.Context) ([]model.UserProfile, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	SetBanned(ctx context.Context, id string, banned bool) (*model.User, error)
	CountTotal(ctx context.Context) (int, error)
}

// PostCounter reports store totals for admin stats.
// *repository.PostRepository satisfies it.
type PostCounter interface {
	CountTotal(ctx context.Context) (int, error)
}

type AdminHandler struct {
	users    UserDirectory
	posts    PostCounter
	registry *service.Registry
}

func NewAdminHandler(users UserDirectory, posts PostCounter, registry *service.Registry) *AdminHandler {
	return &AdminHandler{users: users, posts: posts, registry: registry}
}

// Users lists every account. GET /admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.users.List(c.Context())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to list users"})
	}
	if users == nil {
		users = []model.UserProfile{}
	}
	return c.JSON(users)
}

// ToggleBan flips a user's banned flag. The admin's own session token
// identifies the caller; an admin cannot ban themselves. Already-connected
// sessions keep their identity snapshot; the ban applies on the next
// connection attempt. PUT /admin/users/:id/ban
func (h *AdminHandler) ToggleBan(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(string)
	if callerID != "" && callerID == c.Params("id") {
		return c.Status(400).JSON(fiber.Map{"error": "admin cannot ban themselves"})
	}

	user, err := h.users.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "user not found"})
	}

	updated, err := h.users.SetBanned(c.Context(), user.ID, !user.IsBanned)
	if err != nil {
		log.Printf("[Admin] ban toggle for %s: %v", user.ID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to update user"})
	}

	updated.PasswordHash = ""
	return c.JSON(updated)
}

// Stats reports store totals and live connection count. GET /admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	totalUsers, _ := h.users.CountTotal(c.Context())
	totalPosts, _ := h.posts.CountTotal(c.Context())

	return c.JSON(fiber.Map{
		"users_total":  totalUsers,
		"posts_total":  totalPosts,
		"users_online": h.registry.OnlineCount(),
	})
}

// Announce pushes a server-wide notice to every connected session.
// POST /admin/announce
func (h *AdminHandler) Announce(c *fiber.Ctx) error {
	var req model.Announcement
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}

	if req.Message == "" {
		return c.Status(400).JSON(fiber.Map{"error": "message is required"})
	}

	frame, err := model.EncodeWSEvent(model.EventAnnounce, req)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to encode announcement"})
	}
	h.registry.BroadcastAll(frame)

	return c.JSON(fiber.Map{"ok": true, "online": h.registry.OnlineCount()})
}
