package report

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/pulse/errors"
)

// WebSocketSender streams payloads as text frames over a long-lived
// connection. The bearer token is sent in the handshake; a change of target
// or token opens a new connection.
type WebSocketSender struct {
	Dialer *websocket.Dialer

	mu     sync.Mutex
	conn   *websocket.Conn
	target string
	token  string
}

// NewWebSocketSender returns a sender using the default dialer.
func NewWebSocketSender() *WebSocketSender {
	return &WebSocketSender{Dialer: &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
	}}
}

// Send writes body as a single text message. A failed handshake with an
// HTTP response yields REPORT_REJECTED.
func (s *WebSocketSender) Send(ctx context.Context, target, token string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, err := s.connect(ctx, target, token)
	if err != nil {
		return err
	}

	// A deadline left by an earlier cancellation must not fail this write.
	if err := conn.SetWriteDeadline(time.Time{}); err != nil {
		s.dropLocked()
		return errors.ReportFailed(target, err)
	}
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetWriteDeadline(time.Now())
	})
	defer stop()

	if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
		s.dropLocked()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.ReportFailed(target, err)
	}
	return nil
}

func (s *WebSocketSender) connect(ctx context.Context, target, token string) (*websocket.Conn, error) {
	if s.conn != nil && s.target == target && s.token == token {
		return s.conn, nil
	}
	s.dropLocked()

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := s.Dialer.DialContext(ctx, target, header)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if resp != nil {
			return nil, errors.ReportRejected(target, resp.StatusCode, resp.Status)
		}
		return nil, errors.ReportFailed(target, err)
	}
	s.conn, s.target, s.token = conn, target, token
	go s.readLoop(conn)
	return conn, nil
}

// readLoop discards inbound frames so control frames are processed, and
// drops the connection once the peer closes it or the read fails.
func (s *WebSocketSender) readLoop(conn *websocket.Conn) {
	for {
		_, r, err := conn.NextReader()
		if err != nil {
			s.mu.Lock()
			if s.conn == conn {
				s.dropLocked()
			}
			s.mu.Unlock()
			return
		}
		_, _ = io.Copy(io.Discard, r)
	}
}

// Connected reports whether a connection is currently open.
func (s *WebSocketSender) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *WebSocketSender) dropLocked() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// Close sends a close frame and closes the connection.
func (s *WebSocketSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := s.conn.Close()
	s.conn = nil
	return err
}
