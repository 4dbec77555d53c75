package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func Test_Health_Reports_Live_Session_Count(t *testing.T) {
	req := require.New(t)
	registry := service.NewRegistry()
	for _, id := range []string{"u1", "u2"} {
		registry.Register(service.NewSession(model.Identity{ID: id, Username: id}))
	}

	h := NewHealthHandler(nil, registry)
	app := fiber.New()
	app.Get("/health", h.Health)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	req.NoError(err)
	req.Equal(200, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	var payload struct {
		Status      string `json:"status"`
		UsersOnline int    `json:"users_online"`
	}
	req.NoError(json.Unmarshal(body, &payload))
	req.Equal("ok", payload.Status)
	req.Equal(2, payload.UsersOnline)
}
