package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Session_Enqueue_After_Close_Is_Rejected(t *testing.T) {
	req := require.New(t)
	s := newTestSession("u1", "alice")

	req.True(s.Enqueue([]byte("one")))
	req.False(s.Closed())

	s.Close()
	s.Close() // idempotent

	req.True(s.Closed())
	req.False(s.Enqueue([]byte("two")))
}

func Test_Session_Full_Outbox_Drops_Instead_Of_Blocking(t *testing.T) {
	req := require.New(t)
	s := newTestSession("u1", "alice")

	for i := 0; i < sessionSendBuffer; i++ {
		req.True(s.Enqueue([]byte(fmt.Sprintf("frame %d", i))))
	}

	// The buffer is full; the next offer must return immediately.
	req.False(s.Enqueue([]byte("overflow")))

	// Draining one slot frees capacity again.
	<-s.Outbox()
	req.True(s.Enqueue([]byte("after drain")))
}
