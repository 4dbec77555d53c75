package model

import "time"

type Post struct {
	ID           string    `json:"id"`
	AuthorID     string    `json:"author_id"`
	Author       string    `json:"author"`
	Content      string    `json:"content"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FeedPost is a Post annotated with the engagement score the feed
// query sorts by.
type FeedPost struct {
	Post
	HotScore float64 `json:"hot_score"`
}

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type CreatePostRequest struct {
	Content string `json:"content" validate:"required,max=5000"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type LikeResponse struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
