package auth

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// RoundTripper applies a Handler to every request. When the server answers
// 401 and the handler is an Invalidator, the token is dropped and the request
// is retried once.
type RoundTripper struct {
	base    http.RoundTripper
	handler Handler
	log     *zap.Logger
}

// NewRoundTripper wraps base. A nil base uses http.DefaultTransport.
func NewRoundTripper(base http.RoundTripper, handler Handler, log *zap.Logger) *RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RoundTripper{base: base, handler: handler, log: log}
}

// RoundTrip implements http.RoundTripper
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	body, err := readBody(req)
	if err != nil {
		return nil, err
	}

	first := cloneRequest(req, body)
	if err := rt.handler.ApplyAuth(first); err != nil {
		return nil, fmt.Errorf("failed to apply auth: %w", err)
	}

	resp, err := rt.base.RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	inv, ok := rt.handler.(Invalidator)
	if !ok {
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	rt.log.Debug("got 401, retrying with a fresh token", zap.String("url", req.URL.String()))
	inv.Invalidate()

	retry := cloneRequest(req, body)
	if err := rt.handler.ApplyAuth(retry); err != nil {
		return nil, fmt.Errorf("failed to apply auth: %w", err)
	}
	return rt.base.RoundTrip(retry)
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return b, nil
}

// cloneRequest creates a copy of the request with a fresh body
func cloneRequest(req *http.Request, body []byte) *http.Request {
	clone := req.Clone(req.Context())
	if body != nil {
		clone.Body = io.NopCloser(bytes.NewReader(body))
		clone.ContentLength = int64(len(body))
		clone.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
	}
	return clone
}
