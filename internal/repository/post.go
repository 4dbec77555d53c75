package repository

import (
	"context"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

func (r *PostRepository) Create(ctx context.Context, authorID, content string) (*model.Post, error) {
	p := &model.Post{}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (author_id, content)
		VALUES ($1, $2)
		RETURNING id, author_id, content, comment_count, created_at, updated_at
	`, authorID, content).Scan(&p.ID, &p.AuthorID, &p.Content, &p.CommentCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	p := &model.Post{}
	err := r.pool.QueryRow(ctx, `
		SELECT p.id, p.author_id, u.username, p.content, p.comment_count,
		       (SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = p.id),
		       p.created_at, p.updated_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1
	`, id).Scan(&p.ID, &p.AuthorID, &p.Author, &p.Content, &p.CommentCount, &p.LikeCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) Delete(ctx context.Context, id, authorID string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ToggleLike likes the post when no like exists, unlikes otherwise.
// Returns the resulting state and like count.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (*model.LikeResponse, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return nil, err
	}

	resp := &model.LikeResponse{}
	if tag.RowsAffected() == 0 {
		if _, err := r.pool.Exec(ctx, `
			INSERT INTO post_likes (post_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, postID, userID); err != nil {
			return nil, err
		}
		resp.Liked = true
	}

	err = r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM post_likes WHERE post_id = $1`, postID).Scan(&resp.LikeCount)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Feed returns one page of the engagement-ranked feed. The score is
// likes*2 + comments + a time-decay term 1/(1 + age/week), recomputed per
// query, sorted score desc then recency desc.
func (r *PostRepository) Feed(ctx context.Context, page, pageSize int) ([]model.FeedPost, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 50 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.author_id, u.username, p.content, p.comment_count,
		       COALESCE(l.like_count, 0),
		       COALESCE(l.like_count, 0) * 2 + p.comment_count
		         + 1.0 / (1.0 + EXTRACT(EPOCH FROM (NOW() - p.created_at)) / 604800.0) AS hot_score,
		       p.created_at, p.updated_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN (
			SELECT post_id, COUNT(*) AS like_count FROM post_likes GROUP BY post_id
		) l ON l.post_id = p.id
		ORDER BY hot_score DESC, p.created_at DESC
		LIMIT $1 OFFSET $2
	`, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.FeedPost
	for rows.Next() {
		var p model.FeedPost
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Author, &p.Content, &p.CommentCount,
			&p.LikeCount, &p.HotScore, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) CountTotal(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts`).Scan(&count)
	return count, err
}
