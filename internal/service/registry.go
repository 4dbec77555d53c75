package service

import (
	"log"
	"sync"
)

// Registry tracks which sessions are live and which rooms each one has
// joined. It owns two mappings kept consistent under one lock: room id to
// member set, and session to joined room ids. Rooms exist implicitly on
// first join; registry membership is independent of the persisted room
// records. All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Session]struct{}
	sessions map[*Session]map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:    make(map[string]map[*Session]struct{}),
		sessions: make(map[*Session]map[string]struct{}),
	}
}

// Register adds a connected session with no room memberships yet.
func (r *Registry) Register(s *Session) {
	r.mu.Lock()
	if _, ok := r.sessions[s]; !ok {
		r.sessions[s] = make(map[string]struct{})
	}
	total := len(r.sessions)
	r.mu.Unlock()
	log.Printf("[WS] %s connected (online: %d)", s.Identity.Username, total)
}

// Join adds the session to the room's member set. Joining a room twice is
// a no-op.
func (r *Registry) Join(roomID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[*Session]struct{})
		r.rooms[roomID] = members
	}
	members[s] = struct{}{}

	joined, ok := r.sessions[s]
	if !ok {
		joined = make(map[string]struct{})
		r.sessions[s] = joined
	}
	joined[roomID] = struct{}{}
}

// Leave removes the session from the room. Leaving a room the session
// never joined is a no-op.
func (r *Registry) Leave(roomID string, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(roomID, s)
}

func (r *Registry) removeLocked(roomID string, s *Session) {
	if members, ok := r.rooms[roomID]; ok {
		delete(members, s)
		if len(members) == 0 {
			delete(r.rooms, roomID)
		}
	}
	if joined, ok := r.sessions[s]; ok {
		delete(joined, roomID)
	}
}

// Disconnect removes the session from every room it joined and forgets it.
// It runs synchronously so no broadcast issued afterwards can observe the
// departed session. Returns the rooms that were left.
func (r *Registry) Disconnect(s *Session) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	joined := r.sessions[s]
	left := make([]string, 0, len(joined))
	for roomID := range joined {
		left = append(left, roomID)
		if members, ok := r.rooms[roomID]; ok {
			delete(members, s)
			if len(members) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	delete(r.sessions, s)
	return left
}

// Broadcast delivers the frame to every current member of the room,
// including the sender if joined. A member whose transport is closed or
// backed up is skipped silently.
func (r *Registry) Broadcast(roomID string, frame []byte) {
	r.broadcast(roomID, nil, frame)
}

// BroadcastExcept delivers the frame to every room member except one.
func (r *Registry) BroadcastExcept(roomID string, except *Session, frame []byte) {
	r.broadcast(roomID, except, frame)
}

func (r *Registry) broadcast(roomID string, except *Session, frame []byte) {
	r.mu.RLock()
	members := make([]*Session, 0, len(r.rooms[roomID]))
	for s := range r.rooms[roomID] {
		if s != except {
			members = append(members, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range members {
		if !s.Enqueue(frame) {
			log.Printf("[WS] dropped frame for %s in room %s (transport closed or slow)", s.Identity.Username, roomID)
		}
	}
}

// BroadcastAll delivers the frame to every connected session regardless of
// room membership.
func (r *Registry) BroadcastAll(frame []byte) {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if !s.Enqueue(frame) {
			log.Printf("[WS] dropped frame for %s (transport closed or slow)", s.Identity.Username)
		}
	}
}

// IsMember reports whether the session is currently in the room's live set.
func (r *Registry) IsMember(roomID string, s *Session) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID][s]
	return ok
}

// MemberCount returns the size of the room's live member set.
func (r *Registry) MemberCount(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}

// Rooms returns the ids of the rooms the session currently belongs to.
func (r *Registry) Rooms(s *Session) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	joined := make([]string, 0, len(r.sessions[s]))
	for roomID := range r.sessions[s] {
		joined = append(joined, roomID)
	}
	return joined
}

// OnlineCount returns the number of connected sessions.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
