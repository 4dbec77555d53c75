package service

import (
	"sync"

	"github.com/ShashwatS02/The-Conduit-Social-Media/internal/model"
)

const sessionSendBuffer = 256

// Session is the in-memory representative of one live connection. It carries
// the identity snapshot resolved at connect time and a buffered outbox the
// transport writer drains. Sessions are never persisted.
type Session struct {
	Identity model.Identity

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(identity model.Identity) *Session {
	return &Session{
		Identity: identity,
		send:     make(chan []byte, sessionSendBuffer),
		done:     make(chan struct{}),
	}
}

// Enqueue offers a frame to the session's outbox without blocking. It
// returns false when the session is closed or the outbox is full; callers
// treat either as a silent drop.
func (s *Session) Enqueue(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- frame:
		return true
	case <-s.done:
		return false
	default:
		return false
	}
}

// Outbox is drained by the connection's writer goroutine.
func (s *Session) Outbox() <-chan []byte {
	return s.send
}

// Done is closed exactly once when the connection ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
