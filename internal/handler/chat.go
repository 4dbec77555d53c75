package handler

import (
	"log"
	"strconv"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const defaultRoomName = "General"

// ChatHandler serves the chat read API: room listing and message history.
// Live delivery goes through the websocket gateway, not these routes.
type ChatHandler struct {
	roomRepo    *repository.ChatRoomRepository
	messageRepo *repository.MessageRepository
	validate    *validator.Validate
}

func NewChatHandler(roomRepo *repository.ChatRoomRepository, messageRepo *repository.MessageRepository) *ChatHandler {
	return &ChatHandler{roomRepo: roomRepo, messageRepo: messageRepo, validate: validator.New()}
}

// ListRooms returns every room, creating the default room on first call.
// GET /api/v1/chat/rooms
func (h *ChatHandler) ListRooms(c *fiber.Ctx) error {
	if _, err := h.roomRepo.GetOrCreateByName(c.Context(), defaultRoomName); err != nil {
		log.Printf("[Chat] ensure default room: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list rooms"})
	}

	rooms, err := h.roomRepo.List(c.Context())
	if err != nil {
		log.Printf("[Chat] list rooms: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to list rooms"})
	}

	return c.JSON(rooms)
}

// CreateRoom creates a named room with the caller as its first recorded
// member. POST /api/v1/chat/rooms
func (h *ChatHandler) CreateRoom(c *fiber.Ctx) error {
	var req model.CreateRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "name must be 1-64 characters"})
	}

	room, err := h.roomRepo.Create(c.Context(), req.Name)
	if err != nil {
		log.Printf("[Chat] create room %q: %v", req.Name, err)
		return c.Status(409).JSON(fiber.Map{"error": "room already exists"})
	}

	if userID, _ := c.Locals("user_id").(string); userID != "" {
		_ = h.roomRepo.AddMember(c.Context(), room.ID, userID)
	}

	return c.Status(201).JSON(room)
}

// GetRoomMessages returns room history in chronological order with sender
// projections. GET /api/v1/chat/rooms/:id/messages?limit=50
func (h *ChatHandler) GetRoomMessages(c *fiber.Ctx) error {
	roomID := c.Params("id")
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	msgs, err := h.messageRepo.ListByRoom(c.Context(), roomID, limit)
	if err != nil {
		log.Printf("[Chat] history for room %s: %v", roomID, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get messages"})
	}

	if msgs == nil {
		msgs = []model.MessageWithSender{}
	}
	return c.JSON(msgs)
}

// GetRoomMembers returns the informational persisted member list.
// GET /api/v1/chat/rooms/:id/members
func (h *ChatHandler) GetRoomMembers(c *fiber.Ctx) error {
	members, err := h.roomRepo.ListMembers(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get members"})
	}
	if members == nil {
		members = []string{}
	}
	return c.JSON(fiber.Map{"members": members})
}
