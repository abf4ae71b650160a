// Package nvim adapts a running Neovim instance to editor.Context over its
// msgpack-RPC socket.
package nvim

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/pulse/editor"
	"github.com/grovetools/pulse/errors"
	"github.com/neovim/go-client/nvim"
)

// Client is the subset of the Neovim API the adapter calls.
type Client interface {
	CurrentBuffer() (nvim.Buffer, error)
	CurrentWindow() (nvim.Window, error)
	BufferName(buffer nvim.Buffer) (string, error)
	BufferLineCount(buffer nvim.Buffer) (int, error)
	BufferLines(buffer nvim.Buffer, start, end int, strict bool) ([][]byte, error)
	WindowCursor(window nvim.Window) ([2]int, error)
	Eval(expr string, result interface{}) error
}

// Session is an editor.Context backed by a Neovim connection.
type Session struct {
	addr string

	mu     sync.Mutex
	client Client
	closer func() error
}

// New returns a Session that dials addr lazily. An empty addr falls back to
// the $NVIM variable Neovim exports to its child processes.
func New(addr string) *Session {
	if addr == "" {
		addr = os.Getenv("NVIM")
	}
	return &Session{addr: addr}
}

// NewWithClient wraps an already connected client.
func NewWithClient(c Client) *Session {
	return &Session{client: c}
}

func (s *Session) conn() (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, nil
	}
	if s.addr == "" {
		return nil, errors.EditorUnavailable("", errors.New(errors.ErrCodeInvalidInput, "no editor address configured"))
	}
	v, err := nvim.Dial(s.addr)
	if err != nil {
		return nil, errors.EditorUnavailable(s.addr, err)
	}
	s.client = v
	s.closer = v.Close
	return v, nil
}

// reset drops a broken connection so the next call redials.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer != nil {
		_ = s.closer()
		s.client = nil
		s.closer = nil
	}
}

// Close closes the underlying connection, if any.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closer == nil {
		return nil
	}
	err := s.closer()
	s.client = nil
	s.closer = nil
	return err
}

// Workspace returns the base name of Neovim's working directory.
func (s *Session) Workspace(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := s.conn()
	if err != nil {
		return "", err
	}
	var cwd string
	if err := c.Eval("getcwd()", &cwd); err != nil {
		s.reset()
		return "", errors.EditorUnavailable(s.addr, err)
	}
	return filepath.Base(cwd), nil
}

// ActiveDocument reads the current buffer. Unnamed buffers and special
// buffers (help, terminal, quickfix) count as no active document.
func (s *Session) ActiveDocument(ctx context.Context) (editor.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := s.conn()
	if err != nil {
		return nil, err
	}

	buf, err := c.CurrentBuffer()
	if err != nil {
		s.reset()
		return nil, errors.EditorUnavailable(s.addr, err)
	}
	name, err := c.BufferName(buf)
	if err != nil {
		return nil, errors.EditorUnavailable(s.addr, err)
	}
	var buftype string
	if err := c.Eval("&buftype", &buftype); err != nil {
		return nil, errors.EditorUnavailable(s.addr, err)
	}
	if name == "" || buftype != "" {
		return nil, errors.NoActiveDocument()
	}

	var filetype string
	if err := c.Eval("&filetype", &filetype); err != nil {
		return nil, errors.EditorUnavailable(s.addr, err)
	}
	count, err := c.BufferLineCount(buf)
	if err != nil {
		return nil, errors.EditorUnavailable(s.addr, err)
	}
	win, err := c.CurrentWindow()
	if err != nil {
		return nil, errors.EditorUnavailable(s.addr, err)
	}
	pos, err := c.WindowCursor(win)
	if err != nil {
		return nil, errors.EditorUnavailable(s.addr, err)
	}

	row := pos[0] - 1
	if row < 0 {
		row = 0
	}
	return &document{
		session:  s,
		client:   c,
		buffer:   buf,
		path:     name,
		language: filetype,
		lines:    count,
		row:      row,
		col:      pos[1],
	}, nil
}

type document struct {
	session  *Session
	client   Client
	buffer   nvim.Buffer
	path     string
	language string
	lines    int
	row, col int
}

func (d *document) Path() string           { return d.path }
func (d *document) Language() string       { return d.language }
func (d *document) LineCount() int         { return d.lines }
func (d *document) Cursor() (row, col int) { return d.row, d.col }

func (d *document) Lines(ctx context.Context, start, end int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := d.client.BufferLines(d.buffer, start, end, false)
	if err != nil {
		return nil, errors.EditorUnavailable(d.session.addr, err)
	}
	out := make([]string, len(raw))
	for i, line := range raw {
		out[i] = string(line)
	}
	return out, nil
}
