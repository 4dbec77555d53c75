package service

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"

	"github.com/stretchr/testify/require"
)

func newTestSession(id, username string) *Session {
	return NewSession(model.Identity{ID: id, Username: username})
}

func receiveFrame(t *testing.T, s *Session) model.WSEvent {
	t.Helper()
	select {
	case frame := <-s.Outbox():
		var ev model.WSEvent
		require.NoError(t, json.Unmarshal(frame, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return model.WSEvent{}
	}
}

func requireNoFrame(t *testing.T, s *Session) {
	t.Helper()
	select {
	case frame := <-s.Outbox():
		t.Fatalf("unexpected frame: %s", frame)
	default:
	}
}

func Test_Join_Then_Leave_Removes_Member(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	s := newTestSession("u1", "alice")
	reg.Register(s)

	reg.Join("general", s)
	req.True(reg.IsMember("general", s))
	req.Equal(1, reg.MemberCount("general"))

	// Joining twice is a no-op
	reg.Join("general", s)
	req.Equal(1, reg.MemberCount("general"))

	reg.Leave("general", s)
	req.False(reg.IsMember("general", s))
	req.Empty(reg.Rooms(s))

	// Leaving a room never joined is a no-op
	reg.Leave("general", s)
	reg.Leave("other", s)
	req.False(reg.IsMember("other", s))
}

func Test_Disconnect_Purges_Every_Room(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	s := newTestSession("u1", "alice")
	reg.Register(s)

	rooms := []string{"general", "random", "dev"}
	for _, room := range rooms {
		reg.Join(room, s)
	}
	req.Equal(1, reg.OnlineCount())

	left := reg.Disconnect(s)
	req.ElementsMatch(rooms, left)
	for _, room := range rooms {
		req.False(reg.IsMember(room, s))
		req.Equal(0, reg.MemberCount(room))
	}
	req.Empty(reg.Rooms(s))
	req.Equal(0, reg.OnlineCount())
}

func Test_Broadcast_Reaches_All_Members_Including_Sender(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	a := newTestSession("u1", "alice")
	b := newTestSession("u2", "bob")
	outsider := newTestSession("u3", "carol")
	for _, s := range []*Session{a, b, outsider} {
		reg.Register(s)
	}
	reg.Join("general", a)
	reg.Join("general", b)
	reg.Join("random", outsider)

	frame, err := model.EncodeWSEvent(model.EventNewMessage, model.ErrorPayload{Message: "x"})
	req.NoError(err)
	reg.Broadcast("general", frame)

	receiveFrame(t, a)
	receiveFrame(t, b)
	requireNoFrame(t, outsider)
}

func Test_BroadcastExcept_Skips_Sender(t *testing.T) {
	reg := NewRegistry()
	a := newTestSession("u1", "alice")
	b := newTestSession("u2", "bob")
	reg.Register(a)
	reg.Register(b)
	reg.Join("general", a)
	reg.Join("general", b)

	frame, _ := model.EncodeWSEvent(model.EventTyping, model.TypingNotice{Username: "alice", IsTyping: true})
	reg.BroadcastExcept("general", a, frame)

	receiveFrame(t, b)
	requireNoFrame(t, a)
}

func Test_Broadcast_To_Closed_Session_Fails_Silently(t *testing.T) {
	req := require.New(t)
	reg := NewRegistry()
	a := newTestSession("u1", "alice")
	b := newTestSession("u2", "bob")
	reg.Register(a)
	reg.Register(b)
	reg.Join("general", a)
	reg.Join("general", b)

	a.Close()

	frame, _ := model.EncodeWSEvent(model.EventNewMessage, model.ErrorPayload{Message: "x"})
	reg.Broadcast("general", frame)

	// The healthy member still gets the frame; the closed one is skipped
	// without any error surfacing.
	receiveFrame(t, b)
	req.False(a.Enqueue(frame))
}

func Test_Concurrent_Join_Leave_Broadcast(t *testing.T) {
	reg := NewRegistry()
	frame, _ := model.EncodeWSEvent(model.EventNewMessage, model.ErrorPayload{Message: "x"})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		s := newTestSession("u", "user")
		reg.Register(s)
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Join("general", s)
				reg.Broadcast("general", frame)
				reg.Leave("general", s)
			}
			reg.Disconnect(s)
		}(s)
	}
	wg.Wait()

	require.Equal(t, 0, reg.OnlineCount())
	require.Equal(t, 0, reg.MemberCount("general"))
}
