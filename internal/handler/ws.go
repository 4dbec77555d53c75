package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const readTimeout = 60 * time.Second

// WSHandler is the connection gateway: it authenticates the handshake with
// the short-lived socket token, binds the resolved identity to a session
// handle and runs the event loop for the connection's lifetime.
type WSHandler struct {
	authSvc  *service.AuthService
	chatSvc  *service.ChatService
	registry *service.Registry
	validate *validator.Validate
}

func NewWSHandler(authSvc *service.AuthService, chatSvc *service.ChatService, registry *service.Registry) *WSHandler {
	return &WSHandler{
		authSvc:  authSvc,
		chatSvc:  chatSvc,
		registry: registry,
		validate: validator.New(),
	}
}

// Upgrade validates the socket token before the protocol upgrade. A
// rejected connection never exchanges a single event.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	identity, err := h.authSvc.ResolveSocketIdentity(c.Context(), c.Query("token"))
	if err != nil {
		log.Printf("[WS] handshake rejected: %v", err)
		return c.Status(401).JSON(fiber.Map{
			"error":  "authentication error",
			"reason": rejectionReason(err),
		})
	}

	c.Locals("identity", identity)
	return websocket.New(h.handleConnection)(c)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, service.ErrMissingToken):
		return "missing-token"
	case errors.Is(err, service.ErrInvalidUser):
		return "invalid-user"
	default:
		return "invalid-token"
	}
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	identity, ok := c.Locals("identity").(model.Identity)
	if !ok {
		_ = c.Close()
		return
	}

	sess := service.NewSession(identity)
	h.registry.Register(sess)
	defer func() {
		sess.Close()
		left := h.registry.Disconnect(sess)
		log.Printf("[WS] %s disconnected (purged from %d rooms)", identity.Username, len(left))
	}()

	// Writer pump: the only goroutine that touches the connection for writes.
	go func() {
		defer c.Close()
		for {
			select {
			case <-sess.Done():
				return
			case frame := <-sess.Outbox():
				if err := c.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop: one event at a time, in arrival order.
	_ = c.SetReadDeadline(time.Now().Add(readTimeout))
	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			return
		}
		_ = c.SetReadDeadline(time.Now().Add(readTimeout))

		var event model.WSEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			h.sendError(sess, "malformed event")
			continue
		}

		h.dispatch(sess, event)
	}
}

// dispatch handles one inbound event. Payload errors are reported to the
// session without closing the connection.
func (h *WSHandler) dispatch(sess *service.Session, event model.WSEvent) {
	switch event.Type {
	case model.EventPing:
		if frame, err := model.EncodeWSEvent(model.EventPong, nil); err == nil {
			sess.Enqueue(frame)
		}

	case model.EventJoinRoom:
		var payload model.JoinRoomPayload
		if !h.decode(sess, event.Data, &payload) {
			return
		}
		h.registry.Join(payload.RoomID, sess)
		log.Printf("[WS] %s joined room %s", sess.Identity.Username, payload.RoomID)

	case model.EventLeaveRoom:
		var payload model.LeaveRoomPayload
		if !h.decode(sess, event.Data, &payload) {
			return
		}
		h.registry.Leave(payload.RoomID, sess)
		log.Printf("[WS] %s left room %s", sess.Identity.Username, payload.RoomID)

	case model.EventSendMessage:
		var payload model.SendMessagePayload
		if !h.decode(sess, event.Data, &payload) {
			return
		}
		// Persistence runs on this session's loop: a slow write blocks
		// only this sender, never the registry or other rooms.
		if _, err := h.chatSvc.SendMessage(context.Background(), sess, payload.RoomID, payload.Content); err != nil {
			// A rejected payload is not resendable as-is; a store failure is.
			if errors.Is(err, service.ErrInvalidContent) {
				h.sendError(sess, err.Error())
			} else {
				h.sendError(sess, "Failed to send message")
			}
		}

	case model.EventTyping:
		var payload model.TypingPayload
		if !h.decode(sess, event.Data, &payload) {
			return
		}
		h.chatSvc.Typing(sess, payload.RoomID, payload.IsTyping)

	default:
		log.Printf("[WS] unknown event type %q from %s", event.Type, sess.Identity.Username)
		h.sendError(sess, "unknown event type")
	}
}

func (h *WSHandler) decode(sess *service.Session, raw json.RawMessage, payload any) bool {
	if err := json.Unmarshal(raw, payload); err != nil {
		h.sendError(sess, "malformed event payload")
		return false
	}
	if err := h.validate.Struct(payload); err != nil {
		h.sendError(sess, "invalid event payload")
		return false
	}
	return true
}

func (h *WSHandler) sendError(sess *service.Session, message string) {
	frame, err := model.EncodeWSEvent(model.EventError, model.ErrorPayload{Message: message})
	if err != nil {
		return
	}
	sess.Enqueue(frame)
}
