// Package transport holds HTTP round trippers shared by the workspace clients.
package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saturnines/factsheet-tools/pkg/config"
)

const maxBackoff = 30 * time.Second

// RetryTransport retries requests that failed with a network timeout or a
// configured status. Statuses such as 429 and 503 mean the request was not
// processed, so POST requests are retried as well.
type RetryTransport struct {
	Base http.RoundTripper
	Cfg  config.RetryConfig
	log  *zap.Logger

	mu     sync.Mutex
	jitter *rand.Rand
	sleep  func(time.Duration) <-chan time.Time
}

// NewRetryTransport creates a new retry transport
func NewRetryTransport(base http.RoundTripper, cfg config.RetryConfig, log *zap.Logger) *RetryTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RetryTransport{
		Base:   base,
		Cfg:    cfg,
		log:    log,
		jitter: rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  time.After,
	}
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Cfg.MaxAttempts <= 1 {
		return t.Base.RoundTrip(req)
	}

	body, err := readBody(req)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < t.Cfg.MaxAttempts; attempt++ {
		resp, err := t.Base.RoundTrip(cloneRequest(req, body))

		switch {
		case err != nil:
			if ctxErr := req.Context().Err(); ctxErr != nil {
				return nil, ctxErr
			}
			var netErr net.Error
			if !errors.As(err, &netErr) || !netErr.Timeout() {
				return nil, err
			}
			lastErr = err
		case !slices.Contains(t.Cfg.RetryableStatuses, resp.StatusCode):
			return resp, nil
		case attempt == t.Cfg.MaxAttempts-1:
			// Out of attempts: hand the last response to the caller.
			return resp, nil
		default:
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		if attempt == t.Cfg.MaxAttempts-1 {
			break
		}

		delay := t.backoff(attempt)
		t.log.Debug("retrying request",
			zap.String("url", req.URL.String()),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(lastErr),
		)

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-t.sleep(delay):
		}
	}

	return nil, fmt.Errorf("retry transport failed after %d attempts: %w", t.Cfg.MaxAttempts, lastErr)
}

// backoff computes full jitter exponential backoff
func (t *RetryTransport) backoff(attempt int) time.Duration {
	base := time.Duration(t.Cfg.InitialBackoff * float64(time.Second))
	multiplier := t.Cfg.BackoffMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}

	maxDelay := time.Duration(float64(base) * math.Pow(multiplier, float64(attempt)))
	if maxDelay > maxBackoff || maxDelay < 0 {
		maxDelay = maxBackoff
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Duration(t.jitter.Float64() * float64(maxDelay))
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

// cloneRequest makes a copy with its own reader over body
func cloneRequest(r *http.Request, body []byte) *http.Request {
	r2 := r.Clone(r.Context())
	if body != nil {
		r2.Body = io.NopCloser(bytes.NewReader(body))
		r2.ContentLength = int64(len(body))
	}
	return r2
}
