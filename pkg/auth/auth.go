package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saturnines/factsheet-tools/pkg/errors"
)

var (
	ErrNotStarted         = errors.New("authenticator not started")
	ErrMissingCredentials = errors.New("missing credentials")
)

// Handler defines the interface for auth handlers
type Handler interface {
	ApplyAuth(req *http.Request) error
}

// Session is a Handler with an explicit lifecycle. Start acquires the first
// access token; Stop discards it.
type Session interface {
	Handler
	Start(ctx context.Context) (string, error)
	Stop()
	IsRunning() bool
}

// Invalidator is implemented by handlers that can drop a cached token so the
// next request fetches a fresh one.
type Invalidator interface {
	Invalidate()
}

// TokenRefreshError represents a token refresh failure
type TokenRefreshError struct {
	Cause error
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Cause)
}

func (e *TokenRefreshError) Unwrap() []error {
	return []error{errors.ErrTokenExpired, e.Cause}
}
