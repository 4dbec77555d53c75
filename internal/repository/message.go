package repository

import (
	"context"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

// Insert appends a message. Messages are immutable once created; there is
// no update or delete path.
func (r *MessageRepository) Insert(ctx context.Context, msg *model.Message) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (id, room_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.RoomID, msg.SenderID, msg.Content, msg.CreatedAt)
	return err
}

// ListByRoom returns the newest `limit` messages in chronological order
// (created_at, then id as tiebreaker), each with its sender projection.
func (r *MessageRepository) ListByRoom(ctx context.Context, roomID string, limit int) ([]model.MessageWithSender, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.room_id, m.sender_id, m.content, m.created_at, u.username
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.room_id = $1
		ORDER BY m.created_at DESC, m.id DESC
		LIMIT $2
	`, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.MessageWithSender
	for rows.Next() {
		var m model.MessageWithSender
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.CreatedAt, &m.Sender.Username); err != nil {
			return nil, err
		}
		m.Sender.ID = m.SenderID
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse for chronological order (oldest first)
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, nil
}

func (r *MessageRepository) CountByRoom(ctx context.Context, roomID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE room_id = $1`, roomID).Scan(&count)
	return count, err
}
