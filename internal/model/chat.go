package model

import "time"

// ChatRoom is the persisted room record. The member list is informational;
// live membership is tracked by the in-memory room registry.
type ChatRoom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []string  `json:"members,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is an append-only chat record. Ordering is (created_at, id).
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	SenderID  string    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageSender is the minimal sender projection attached to outgoing
// newMessage events and to history responses.
type MessageSender struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type MessageWithSender struct {
	Message
	Sender MessageSender `json:"sender"`
}

type CreateRoomRequest struct {
	Name string `json:"name" validate:"required,min=1,max=64"`
}
