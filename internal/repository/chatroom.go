package repository

import (
	"context"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRoomRepository struct {
	pool *pgxpool.Pool
}

func NewChatRoomRepository(pool *pgxpool.Pool) *ChatRoomRepository {
	return &ChatRoomRepository{pool: pool}
}

func (r *ChatRoomRepository) Create(ctx context.Context, name string) (*model.ChatRoom, error) {
	room := &model.ChatRoom{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_rooms (name) VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`, name).Scan(&room.ID, &room.Name, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// GetOrCreateByName returns the named room, creating it if absent.
// Used to guarantee the default "General" room exists.
func (r *ChatRoomRepository) GetOrCreateByName(ctx context.Context, name string) (*model.ChatRoom, error) {
	room := &model.ChatRoom{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO chat_rooms (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET updated_at = chat_rooms.updated_at
		RETURNING id, name, created_at, updated_at
	`, name).Scan(&room.ID, &room.Name, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *ChatRoomRepository) List(ctx context.Context) ([]model.ChatRoom, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at FROM chat_rooms ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []model.ChatRoom
	for rows.Next() {
		var room model.ChatRoom
		if err := rows.Scan(&room.ID, &room.Name, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// AddMember records a user in the room's informational member list.
// The live membership authority is the in-memory registry.
func (r *ChatRoomRepository) AddMember(ctx context.Context, roomID, userID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, roomID, userID)
	return err
}

func (r *ChatRoomRepository) ListMembers(ctx context.Context, roomID string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id FROM chat_room_members WHERE room_id = $1 ORDER BY joined_at
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
