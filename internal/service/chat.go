package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrInvalidContent = errors.New("message content must be non-empty and at most 2000 characters")

// MessageStore is the persistence dependency of the message pipeline.
// *repository.MessageRepository satisfies it.
type MessageStore interface {
	Insert(ctx context.Context, msg *model.Message) error
}

// ChatService is the message pipeline: it persists a message first and
// broadcasts it through the registry only after the write succeeded.
type ChatService struct {
	messages MessageStore
	registry *Registry
	validate *validator.Validate
}

func NewChatService(messages MessageStore, registry *Registry) *ChatService {
	return &ChatService{
		messages: messages,
		registry: registry,
		validate: validator.New(),
	}
}

// SendMessage persists the message, then fans it out to every current
// member of the room including the sender, so the sender's displayed copy
// is the server record rather than a client-side guess. When persistence
// fails no broadcast happens and the error is returned for the caller to
// report to the sending session only.
func (s *ChatService) SendMessage(ctx context.Context, sess *Session, roomID, content string) (*model.Message, error) {
	payload := model.SendMessagePayload{RoomID: roomID, Content: content}
	if err := s.validate.Struct(payload); err != nil {
		return nil, ErrInvalidContent
	}

	msg := &model.Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		SenderID:  sess.Identity.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.messages.Insert(ctx, msg); err != nil {
		log.Printf("[Chat] persist failed for %s in room %s: %v", sess.Identity.Username, roomID, err)
		return nil, fmt.Errorf("persist message: %w", err)
	}

	frame, err := model.EncodeWSEvent(model.EventNewMessage, model.MessageWithSender{
		Message: *msg,
		Sender: model.MessageSender{
			ID:       sess.Identity.ID,
			Username: sess.Identity.Username,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode newMessage: %w", err)
	}

	s.registry.Broadcast(roomID, frame)
	return msg, nil
}

// Typing relays an ephemeral typing signal to every room member except the
// sender. It is never persisted and delivery is best effort.
func (s *ChatService) Typing(sess *Session, roomID string, isTyping bool) {
	frame, err := model.EncodeWSEvent(model.EventTyping, model.TypingNotice{
		Username: sess.Identity.Username,
		IsTyping: isTyping,
	})
	if err != nil {
		return
	}
	s.registry.BroadcastExcept(roomID, sess, frame)
}
