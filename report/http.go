package report

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/grovetools/pulse/errors"
	"github.com/grovetools/pulse/version"
)

// maxErrorBody caps how much of a rejection body is kept in the error.
const maxErrorBody = 4096

// HTTPSender posts payloads with a bearer token.
type HTTPSender struct {
	Client    *http.Client
	UserAgent string
}

// NewHTTPSender returns a sender using client, or http.DefaultClient if nil.
func NewHTTPSender(client *http.Client) *HTTPSender {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSender{Client: client, UserAgent: version.GetInfo().UserAgent()}
}

// Send POSTs body to target. A non-2xx response yields REPORT_REJECTED
// carrying the status and body. A cancelled ctx is returned as ctx.Err().
func (s *HTTPSender) Send(ctx context.Context, target, token string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return errors.ReportFailed(target, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.ReportFailed(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return errors.ReportRejected(target, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
