package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/middleware"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"
	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "admin-key"

type fakeUserDirectory struct {
	users map[string]*model.User
}

func (f *fakeUserDirectory) List(context.Context) ([]model.UserProfile, error) {
	profiles := make([]model.UserProfile, 0, len(f.users))
	for _, u := range f.users {
		profiles = append(profiles, model.UserProfile{ID: u.ID, Username: u.Username, Role: u.Role, IsBanned: u.IsBanned})
	}
	return profiles, nil
}

func (f *fakeUserDirectory) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	return u, nil
}

func (f *fakeUserDirectory) SetBanned(_ context.Context, id string, banned bool) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("no rows")
	}
	u.IsBanned = banned
	return u, nil
}

func (f *fakeUserDirectory) CountTotal(context.Context) (int, error) { return len(f.users), nil }

type fakePostCounter struct{ total int }

func (f fakePostCounter) CountTotal(context.Context) (int, error) { return f.total, nil }

// newAdminApp mounts the admin routes behind the same middleware chain
// main.go uses: the admin key gates the surface, the session token
// identifies the caller.
func newAdminApp(users *fakeUserDirectory) *fiber.App {
	h := NewAdminHandler(users, fakePostCounter{total: 3}, service.NewRegistry())

	app := fiber.New()
	admin := app.Group("/admin", middleware.AdminKey(testAdminKey), middleware.Auth(testSecret))
	admin.Get("/users", h.Users)
	admin.Put("/users/:id/ban", h.ToggleBan)
	admin.Get("/stats", h.Stats)
	return app
}

func adminToken(t *testing.T, userID, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"exp":      time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func Test_ToggleBan_Rejects_Self_Ban(t *testing.T) {
	req := require.New(t)
	users := &fakeUserDirectory{users: map[string]*model.User{
		"admin-1": {ID: "admin-1", Username: "root", Role: "admin"},
	}}
	app := newAdminApp(users)

	r := httptest.NewRequest("PUT", "/admin/users/admin-1/ban", nil)
	r.Header.Set("X-Admin-Key", testAdminKey)
	r.Header.Set("Authorization", "Bearer "+adminToken(t, "admin-1", "root"))

	resp, err := app.Test(r)
	req.NoError(err)
	req.Equal(400, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	var payload map[string]string
	req.NoError(json.Unmarshal(body, &payload))
	req.Equal("admin cannot ban themselves", payload["error"])
	req.False(users.users["admin-1"].IsBanned)
}

func Test_ToggleBan_Flips_Another_User(t *testing.T) {
	req := require.New(t)
	users := &fakeUserDirectory{users: map[string]*model.User{
		"admin-1": {ID: "admin-1", Username: "root", Role: "admin"},
		"u2":      {ID: "u2", Username: "mallory"},
	}}
	app := newAdminApp(users)

	r := httptest.NewRequest("PUT", "/admin/users/u2/ban", nil)
	r.Header.Set("X-Admin-Key", testAdminKey)
	r.Header.Set("Authorization", "Bearer "+adminToken(t, "admin-1", "root"))

	resp, err := app.Test(r)
	req.NoError(err)
	req.Equal(200, resp.StatusCode)

	var updated model.User
	body, err := io.ReadAll(resp.Body)
	req.NoError(err)
	req.NoError(json.Unmarshal(body, &updated))
	req.True(updated.IsBanned)
	req.True(users.users["u2"].IsBanned)

	// Toggling again lifts the ban.
	r = httptest.NewRequest("PUT", "/admin/users/u2/ban", nil)
	r.Header.Set("X-Admin-Key", testAdminKey)
	r.Header.Set("Authorization", "Bearer "+adminToken(t, "admin-1", "root"))
	resp, err = app.Test(r)
	req.NoError(err)
	req.Equal(200, resp.StatusCode)
	req.False(users.users["u2"].IsBanned)
}

func Test_Admin_Routes_Require_Key_And_Session(t *testing.T) {
	req := require.New(t)
	users := &fakeUserDirectory{users: map[string]*model.User{
		"u2": {ID: "u2", Username: "mallory"},
	}}
	app := newAdminApp(users)

	// No admin key.
	r := httptest.NewRequest("PUT", "/admin/users/u2/ban", nil)
	r.Header.Set("Authorization", "Bearer "+adminToken(t, "admin-1", "root"))
	resp, err := app.Test(r)
	req.NoError(err)
	req.Equal(403, resp.StatusCode)

	// Admin key but no session token.
	r = httptest.NewRequest("PUT", "/admin/users/u2/ban", nil)
	r.Header.Set("X-Admin-Key", testAdminKey)
	resp, err = app.Test(r)
	req.NoError(err)
	req.Equal(401, resp.StatusCode)
	req.False(users.users["u2"].IsBanned)
}
