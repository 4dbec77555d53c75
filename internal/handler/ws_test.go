package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

type stubUserStore struct {
	users map[string]*model.User
}

func (s *stubUserStore) Create(context.Context, string, string, string) (*model.User, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return u, nil
}

func (s *stubUserStore) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubTokenStore struct{}

func (stubTokenStore) StoreRefreshToken(context.Context, string, string, time.Time) error {
	return nil
}
func (stubTokenStore) ValidateRefreshToken(context.Context, string) (string, error) {
	return "", fmt.Errorf("no rows")
}
func (stubTokenStore) RevokeRefreshToken(context.Context, string) error { return nil }

type nopMessageStore struct{}

func (nopMessageStore) Insert(context.Context, *model.Message) error { return nil }

func newGatewayApp(users *stubUserStore) (*fiber.App, *service.AuthService) {
	authSvc := service.NewAuthService(users, stubTokenStore{}, testSecret)
	registry := service.NewRegistry()
	chatSvc := service.NewChatService(nopMessageStore{}, registry)
	h := NewWSHandler(authSvc, chatSvc, registry)

	app := fiber.New()
	app.Get("/ws", h.Upgrade)
	return app, authSvc
}

// handshakeRequest carries the websocket upgrade headers so the gateway's
// token check runs before any upgrade is attempted.
func handshakeRequest(token string) *http.Request {
	target := "/ws"
	if token != "" {
		target += "?token=" + token
	}
	req := httptest.NewRequest("GET", target, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	return req
}

func rejection(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Equal(t, "authentication error", payload.Error)
	return payload.Reason
}

func Test_Gateway_Requires_Upgrade(t *testing.T) {
	app, _ := newGatewayApp(&stubUserStore{users: map[string]*model.User{}})

	resp, err := app.Test(httptest.NewRequest("GET", "/ws", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func Test_Gateway_Rejects_Missing_Token(t *testing.T) {
	app, _ := newGatewayApp(&stubUserStore{users: map[string]*model.User{}})

	resp, err := app.Test(handshakeRequest(""))
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
	require.Equal(t, "missing-token", rejection(t, resp))
}

func Test_Gateway_Rejects_Expired_Token(t *testing.T) {
	req := require.New(t)
	users := &stubUserStore{users: map[string]*model.User{
		"u1": {ID: "u1", Username: "carol"},
	}}
	app, _ := newGatewayApp(users)

	// Issued 90 seconds ago against a 60-second validity window.
	issued := time.Now().Add(-90 * time.Second)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"iat": issued.Unix(),
		"exp": issued.Add(60 * time.Second).Unix(),
	}).SignedString([]byte(testSecret))
	req.NoError(err)

	resp, err := app.Test(handshakeRequest(expired))
	req.NoError(err)
	req.Equal(401, resp.StatusCode)
	req.Equal("invalid-token", rejection(t, resp))
}

func Test_Gateway_Rejects_Unsigned_Token(t *testing.T) {
	req := require.New(t)
	app, _ := newGatewayApp(&stubUserStore{users: map[string]*model.User{}})

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("some-other-secret"))
	req.NoError(err)

	resp, err := app.Test(handshakeRequest(unsigned))
	req.NoError(err)
	req.Equal(401, resp.StatusCode)
	req.Equal("invalid-token", rejection(t, resp))
}

func Test_Gateway_Rejects_Banned_Identity(t *testing.T) {
	req := require.New(t)
	users := &stubUserStore{users: map[string]*model.User{
		"u1": {ID: "u1", Username: "mallory", IsBanned: true},
	}}
	app, authSvc := newGatewayApp(users)

	token, err := authSvc.MintSocketToken("u1")
	req.NoError(err)

	resp, err := app.Test(handshakeRequest(token))
	req.NoError(err)
	req.Equal(401, resp.StatusCode)
	req.Equal("invalid-user", rejection(t, resp))
}

func Test_Gateway_Rejects_Unknown_Identity(t *testing.T) {
	req := require.New(t)
	app, authSvc := newGatewayApp(&stubUserStore{users: map[string]*model.User{}})

	token, err := authSvc.MintSocketToken("ghost")
	req.NoError(err)

	resp, err := app.Test(handshakeRequest(token))
	req.NoError(err)
	req.Equal(401, resp.StatusCode)
	req.Equal("invalid-user", rejection(t, resp))
}
