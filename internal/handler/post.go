package handler

import (
	"log"
	"strconv"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	postRepo    *repository.PostRepository
	commentRepo *repository.CommentRepository
	validate    *validator.Validate
}

func NewPostHandler(postRepo *repository.PostRepository, commentRepo *repository.CommentRepository) *PostHandler {
	return &PostHandler{postRepo: postRepo, commentRepo: commentRepo, validate: validator.New()}
}

// Feed returns one page of the engagement-ranked feed.
// GET /api/v1/posts/feed?page=1
func (h *PostHandler) Feed(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))

	posts, err := h.postRepo.Feed(c.Context(), page, 10)
	if err != nil {
		log.Printf("[Posts] feed page %d: %v", page, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to get feed"})
	}

	if posts == nil {
		posts = []model.FeedPost{}
	}
	return c.JSON(fiber.Map{"page": page, "posts": posts})
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	var req model.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "content must be 1-5000 characters"})
	}

	userID, _ := c.Locals("user_id").(string)
	post, err := h.postRepo.Create(c.Context(), userID, req.Content)
	if err != nil {
		log.Printf("[Posts] create: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create post"})
	}

	return c.Status(201).JSON(post)
}

func (h *PostHandler) Get(c *fiber.Ctx) error {
	post, err := h.postRepo.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "post not found"})
	}
	return c.JSON(post)
}

// Delete removes the caller's own post.
func (h *PostHandler) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	deleted, err := h.postRepo.Delete(c.Context(), c.Params("id"), userID)
	if err != nil {
		log.Printf("[Posts] delete %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to delete post"})
	}
	if !deleted {
		return c.Status(404).JSON(fiber.Map{"error": "post not found"})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// Like toggles the caller's like on a post.
// POST /api/v1/posts/:id/like
func (h *PostHandler) Like(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	resp, err := h.postRepo.ToggleLike(c.Context(), c.Params("id"), userID)
	if err != nil {
		log.Printf("[Posts] like %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to like post"})
	}

	return c.JSON(resp)
}

func (h *PostHandler) AddComment(c *fiber.Ctx) error {
	var req model.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "content must be 1-2000 characters"})
	}

	userID, _ := c.Locals("user_id").(string)
	comment, err := h.commentRepo.Create(c.Context(), c.Params("id"), userID, req.Content)
	if err != nil {
		log.Printf("[Posts] comment on %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to add comment"})
	}

	return c.Status(201).JSON(comment)
}

func (h *PostHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.commentRepo.ListByPost(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to get comments"})
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	return c.JSON(comments)
}
