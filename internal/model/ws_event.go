package model

import "encoding/json"

// WSEvent is the envelope for every frame on the realtime connection,
// in both directions.
type WSEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound event types. The dispatch switch over these is exhaustive;
// anything else is answered with an error event.
const (
	EventJoinRoom    = "joinRoom"
	EventLeaveRoom   = "leaveRoom"
	EventSendMessage = "sendMessage"
	EventTyping      = "typing"
	EventPing        = "ping"
)

// Outbound event types.
const (
	EventNewMessage = "newMessage"
	EventError      = "error"
	EventPong       = "pong"
	EventAnnounce   = "server:announce"
)

type JoinRoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

type LeaveRoomPayload struct {
	RoomID string `json:"roomId" validate:"required"`
}

type SendMessagePayload struct {
	RoomID  string `json:"roomId" validate:"required"`
	Content string `json:"content" validate:"required,max=2000"`
}

type TypingPayload struct {
	RoomID   string `json:"roomId" validate:"required"`
	IsTyping bool   `json:"isTyping"`
}

// TypingNotice is relayed to every room member except the one typing.
type TypingNotice struct {
	Username string `json:"username"`
	IsTyping bool   `json:"isTyping"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

type Announcement struct {
	Message string `json:"message"`
}

// EncodeWSEvent marshals a typed payload into a wire-ready envelope frame.
func EncodeWSEvent(eventType string, payload any) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(WSEvent{Type: eventType, Data: data})
}
