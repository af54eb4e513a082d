package stream

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

// ErrBackpressure is returned when a session's outbound buffer is full.
var ErrBackpressure = errors.New("session send buffer full")

// session wraps one websocket connection with a bounded outbound
// buffer. TrySend never blocks; the write pump drains the buffer on
// its own goroutine and is the only writer on the socket.
type session struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once

	mu          sync.Mutex
	closed      bool
	closeCode   int
	closeReason string
}

func newSession(conn *websocket.Conn, buffer int) *session {
	return &session{
		conn: conn,
		send: make(chan []byte, buffer),
		// Reconnect-with-backoff clients treat anything but 1000 as
		// abnormal. 1006 must never go on the wire (RFC 6455 §7.4.1);
		// closeFrame signals it by omitting the close frame entirely.
		closeCode: websocket.CloseAbnormalClosure,
	}
}

// TrySend and Close share the session mutex so a broadcast racing a
// teardown can never write to the closed channel.
func (s *session) TrySend(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrBackpressure
	}
	select {
	case s.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

// Close stops the session. The write pump notices the closed channel,
// emits the close frame and releases the socket.
func (s *session) Close() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.send)
		s.mu.Unlock()
	})
}

// closeWith records an explicit close code before tearing down, so the
// client can tell a deliberate rejection from a dropped link.
func (s *session) closeWith(code int, reason string) {
	s.mu.Lock()
	s.closeCode = code
	s.closeReason = reason
	s.mu.Unlock()
	s.Close()
}

// closeFrame returns the close frame to send, or nil when the teardown
// is abnormal: dropping the TCP link without a close frame is how 1006
// is reported to the peer.
func (s *session) closeFrame() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeCode == websocket.CloseAbnormalClosure {
		return nil
	}
	return websocket.FormatCloseMessage(s.closeCode, s.closeReason)
}
