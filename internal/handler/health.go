package handler

import (
	"context"
	"log"
	"time"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthHandler struct {
	pool     *pgxpool.Pool
	registry *service.Registry
}

func NewHealthHandler(pool *pgxpool.Pool, registry *service.Registry) *HealthHandler {
	return &HealthHandler{pool: pool, registry: registry}
}

// Health is the liveness check; it also reports the live session count so
// a glance at the endpoint shows whether the realtime side is carrying load.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":       "ok",
		"users_online": h.registry.OnlineCount(),
	})
}

// Ready is the readiness check: the instance can serve only when the
// store answers.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.pool.Ping(ctx); err != nil {
		log.Printf("[Health] readiness ping failed: %v", err)
		return c.Status(503).JSON(fiber.Map{"status": "not ready", "error": "database unreachable"})
	}

	return c.JSON(fiber.Map{"status": "ready"})
}
