package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/saturnines/factsheet-tools/pkg/errors"
)

// BearerAuth implements Session for a pre-issued access token.
type BearerAuth struct {
	Token   string // The bearer token
	running atomic.Bool
}

// NewBearerAuth creates a new bearer token authentication handler
func NewBearerAuth(token string) *BearerAuth {
	return &BearerAuth{
		Token: token,
	}
}

// Start checks the token is set and marks the session running.
func (b *BearerAuth) Start(_ context.Context) (string, error) {
	if b.Token == "" {
		return "", errors.WrapError(ErrMissingCredentials, errors.ErrConfiguration, "start bearer auth")
	}
	b.running.Store(true)
	return b.Token, nil
}

// Stop marks the session stopped.
func (b *BearerAuth) Stop() {
	b.running.Store(false)
}

// IsRunning reports whether Start has been called without a later Stop.
func (b *BearerAuth) IsRunning() bool {
	return b.running.Load()
}

// ApplyAuth adds the Bearer token to the Authorization header
func (b *BearerAuth) ApplyAuth(req *http.Request) error {
	if b.Token == "" {
		return errors.WrapError(
			fmt.Errorf("token is required"),
			errors.ErrConfiguration,
			"apply bearer auth",
		)
	}

	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// String returns a string representation of this auth method for testing
func (b *BearerAuth) String() string {
	return "BearerAuth(token: [REDACTED])"
}
