package repository

import (
	"context"
	"fmt"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

// Create inserts the comment and bumps the post's comment_count in one
// transaction so the feed score never sees a half-applied comment.
func (r *CommentRepository) Create(ctx context.Context, postID, authorID, content string) (*model.Comment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cm := &model.Comment{}
	err = tx.QueryRow(ctx, `
		INSERT INTO comments (post_id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, post_id, author_id, content, created_at
	`, postID, authorID, content).Scan(&cm.ID, &cm.PostID, &cm.AuthorID, &cm.Content, &cm.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE posts SET comment_count = comment_count + 1, updated_at = NOW() WHERE id = $1
	`, postID); err != nil {
		return nil, fmt.Errorf("bump comment count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cm, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = $1
		ORDER BY c.created_at
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var cm model.Comment
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.AuthorID, &cm.Author, &cm.Content, &cm.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, cm)
	}
	return comments, rows.Err()
}
