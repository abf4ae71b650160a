package report

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grovetools/pulse/activity"
	"github.com/grovetools/pulse/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = activity.State{
	Workspace: "proj",
	FileName:  "/src/proj/main.go",
	Language:  "go",
	Row:       4,
	Col:       2,
	ViewChunk: "func main() {}",
}

func TestPayloadRepositoryNull(t *testing.T) {
	data, err := NewPayload(sample, "").Marshal()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	v, present := decoded["repository"]
	assert.True(t, present)
	assert.Nil(t, v)
	assert.Equal(t, "proj", decoded["workspace"])
	assert.Equal(t, "/src/proj/main.go", decoded["fileName"])
	assert.Equal(t, float64(4), decoded["row"])
	assert.Equal(t, "func main() {}", decoded["viewChunk"])
}

func TestPayloadRepositoryPresent(t *testing.T) {
	p := NewPayload(sample, "https://github.com/acme/proj")
	require.NotNil(t, p.Repository)
	assert.Equal(t, "https://github.com/acme/proj", *p.Repository)
}

func TestHTTPSenderHeaders(t *testing.T) {
	var got Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "pulse/")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDispatcher(NewHTTPSender(srv.Client()), 0)
	err := d.Dispatch(context.Background(), srv.URL, "s3cret", sample, "https://github.com/acme/proj")
	require.NoError(t, err)
	assert.Equal(t, "proj", got.Workspace)
	require.NotNil(t, got.Repository)
	assert.False(t, d.InFlight())
}

func TestHTTPSenderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewHTTPSender(srv.Client()).Send(context.Background(), srv.URL, "nope", []byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeReportRejected))

	pe, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, pe.Details["status"])
	assert.Equal(t, "bad token", pe.Details["body"])
}

func TestHTTPSenderUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewHTTPSender(nil).Send(context.Background(), url, "t", []byte(`{}`))
	assert.True(t, errors.Is(err, errors.ErrCodeReportFailed))
}

func TestDispatchSupersedes(t *testing.T) {
	started := make(chan struct{})
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), "slow") {
			once.Do(func() { close(started) })
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewDispatcher(NewHTTPSender(srv.Client()), 0)
	slow := sample
	slow.ViewChunk = "slow"

	errCh := make(chan error, 1)
	go func() {
		errCh <- d.Dispatch(context.Background(), srv.URL, "t", slow, "")
	}()
	<-started

	require.NoError(t, d.Dispatch(context.Background(), srv.URL, "t", sample, ""))

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("superseded dispatch was not cancelled")
	}
}

func TestDispatchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	d := NewDispatcher(NewHTTPSender(srv.Client()), 50*time.Millisecond)
	err := d.Dispatch(context.Background(), srv.URL, "t", sample, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebSocketSender(t *testing.T) {
	upgrader := websocket.Upgrader{}
	received := make(chan Payload, 2)
	handshakes := 0
	var mu sync.Mutex

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		handshakes++
		mu.Unlock()
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var p Payload
			if json.Unmarshal(data, &p) == nil {
				received <- p
			}
		}
	}))
	defer srv.Close()

	target := "ws" + strings.TrimPrefix(srv.URL, "http")
	sender := NewSender("", target)
	ws, ok := sender.(*WebSocketSender)
	require.True(t, ok, "ws:// targets use the websocket transport")
	defer ws.Close()

	d := NewDispatcher(ws, 0)
	ctx := context.Background()
	require.NoError(t, d.Dispatch(ctx, target, "s3cret", sample, ""))
	require.NoError(t, d.Dispatch(ctx, target, "s3cret", sample, "https://github.com/acme/proj"))

	first := <-received
	second := <-received
	assert.Nil(t, first.Repository)
	require.NotNil(t, second.Repository)

	mu.Lock()
	assert.Equal(t, 1, handshakes, "connection is reused")
	mu.Unlock()

	err := ws.Send(ctx, target, "wrong", []byte(`{}`))
	assert.True(t, errors.Is(err, errors.ErrCodeReportRejected))
}

func TestNewSender(t *testing.T) {
	_, isHTTP := NewSender("", "https://collector.example/api").(*HTTPSender)
	assert.True(t, isHTTP)
	_, isWS := NewSender("websocket", "https://collector.example/api").(*WebSocketSender)
	assert.True(t, isWS)
}

// echoServer accepts websocket connections and forwards each message. When
// closeAfterFirst is set it closes the connection after the first message.
func echoServer(t *testing.T, closeAfterFirst bool) (string, <-chan []byte, func() int) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	received := make(chan []byte, 8)
	var (
		mu         sync.Mutex
		handshakes int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		mu.Lock()
		handshakes++
		mu.Unlock()
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- data
			if closeAfterFirst {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
					time.Now().Add(time.Second))
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	count := func() int {
		mu.Lock()
		defer mu.Unlock()
		return handshakes
	}
	return "ws" + strings.TrimPrefix(srv.URL, "http"), received, count
}

func TestWebSocketSenderClearsStaleDeadline(t *testing.T) {
	target, received, handshakes := echoServer(t, false)
	ws := NewWebSocketSender()
	defer ws.Close()

	ctx := context.Background()
	require.NoError(t, ws.Send(ctx, target, "t", []byte(`{"n":1}`)))
	<-received

	// A cancellation that lands after the write leaves a past deadline.
	ws.mu.Lock()
	require.NoError(t, ws.conn.SetWriteDeadline(time.Now().Add(-time.Second)))
	ws.mu.Unlock()

	require.NoError(t, ws.Send(ctx, target, "t", []byte(`{"n":2}`)))
	assert.JSONEq(t, `{"n":2}`, string(<-received))
	assert.Equal(t, 1, handshakes(), "connection is reused")
}

func TestWebSocketSenderNoticesPeerClose(t *testing.T) {
	target, received, handshakes := echoServer(t, true)
	ws := NewWebSocketSender()
	defer ws.Close()

	ctx := context.Background()
	require.NoError(t, ws.Send(ctx, target, "t", []byte(`{"n":1}`)))
	<-received

	assert.Eventually(t, func() bool { return !ws.Connected() }, 3*time.Second, 10*time.Millisecond,
		"closed connection is dropped without waiting for a write")

	require.NoError(t, ws.Send(ctx, target, "t", []byte(`{"n":2}`)))
	assert.JSONEq(t, `{"n":2}`, string(<-received))
	assert.Equal(t, 2, handshakes())
}

type recordingSender struct {
	mu      sync.Mutex
	targets []string
}

func (r *recordingSender) Send(_ context.Context, target, _ string, _ []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
	return nil
}

func TestDispatcherSetSender(t *testing.T) {
	first, second := &recordingSender{}, &recordingSender{}
	d := NewDispatcher(first, 0)

	require.NoError(t, d.Dispatch(context.Background(), "https://a.example", "t", sample, ""))
	assert.Same(t, first, d.SetSender(second))
	require.NoError(t, d.Dispatch(context.Background(), "wss://b.example", "t", sample, ""))

	assert.Equal(t, []string{"https://a.example"}, first.targets)
	assert.Equal(t, []string{"wss://b.example"}, second.targets)
	assert.Same(t, second, d.Sender())
}
