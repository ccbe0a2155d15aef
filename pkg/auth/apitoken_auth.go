package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/saturnines/factsheet-tools/pkg/config"
	"github.com/saturnines/factsheet-tools/pkg/errors"
)

const (
	// TokenPath is the token endpoint of a workspace, relative to its host.
	TokenPath = "/services/mtm/v1/oauth2/token"

	// apiTokenUser is the fixed basic-auth user name for API token exchange.
	apiTokenUser = "apitoken"

	defaultRefreshBefore = 60 * time.Second
)

// APITokenAuth exchanges a workspace API token for short-lived access tokens
// (OAuth2 client credentials, API token as the client secret) and refreshes
// them ahead of expiry.
type APITokenAuth struct {
	// Configuration
	TokenURL      string
	RefreshBefore time.Duration

	apiToken   string
	httpClient *http.Client
	log        *zap.Logger

	// Token state
	mu      sync.Mutex
	token   *oauth2.Token
	running bool
}

// Option configures an APITokenAuth.
type Option func(*APITokenAuth)

// WithHTTPClient sets the client used for token requests.
func WithHTTPClient(c *http.Client) Option {
	return func(a *APITokenAuth) {
		a.httpClient = c
	}
}

// WithTokenURL overrides the token endpoint derived from the host.
func WithTokenURL(u string) Option {
	return func(a *APITokenAuth) {
		a.TokenURL = u
	}
}

// WithRefreshBefore sets how long before expiry a token is replaced.
func WithRefreshBefore(d time.Duration) Option {
	return func(a *APITokenAuth) {
		if d > 0 {
			a.RefreshBefore = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *APITokenAuth) {
		a.log = l
	}
}

// NewAPITokenAuth creates an authenticator for the workspace at host.
func NewAPITokenAuth(host, apiToken string, opts ...Option) (*APITokenAuth, error) {
	if apiToken == "" {
		return nil, errors.WrapError(ErrMissingCredentials, errors.ErrConfiguration, "API token is required")
	}

	a := &APITokenAuth{
		RefreshBefore: defaultRefreshBefore,
		apiToken:      apiToken,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		log:           zap.NewNop(),
	}
	if base := config.BaseURL(host); base != "" {
		a.TokenURL = base + TokenPath
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.TokenURL == "" {
		return nil, errors.WrapError(ErrMissingCredentials, errors.ErrConfiguration, "host or token URL is required")
	}
	return a, nil
}

// Start fetches the first access token and returns it.
func (a *APITokenAuth) Start(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running && a.fresh() {
		return a.token.AccessToken, nil
	}
	if err := a.refresh(ctx); err != nil {
		return "", err
	}
	a.running = true
	a.log.Debug("authenticator started", zap.Time("expiry", a.token.Expiry))
	return a.token.AccessToken, nil
}

// Stop discards the current token. Calling Stop more than once is harmless.
func (a *APITokenAuth) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.running {
		a.log.Debug("authenticator stopped")
	}
	a.running = false
	a.token = nil
}

// IsRunning reports whether Start has succeeded without a later Stop.
func (a *APITokenAuth) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Invalidate forces the next Token call to fetch a new access token.
func (a *APITokenAuth) Invalidate() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = nil
}

// Token returns a valid access token, refreshing it when it is within
// RefreshBefore of expiry.
func (a *APITokenAuth) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.running {
		return "", errors.WrapError(ErrNotStarted, errors.ErrAuthentication, "get token")
	}
	if a.fresh() {
		return a.token.AccessToken, nil
	}

	a.log.Debug("refreshing access token")
	if err := a.refresh(ctx); err != nil {
		return "", &TokenRefreshError{Cause: err}
	}
	return a.token.AccessToken, nil
}

// ApplyAuth adds the access token to the request
func (a *APITokenAuth) ApplyAuth(req *http.Request) error {
	token, err := a.Token(req.Context())
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// fresh must be called with mu held.
func (a *APITokenAuth) fresh() bool {
	if a.token == nil || a.token.AccessToken == "" {
		return false
	}
	if a.token.Expiry.IsZero() {
		return true
	}
	return time.Until(a.token.Expiry) > a.RefreshBefore
}

// refresh must be called with mu held.
func (a *APITokenAuth) refresh(ctx context.Context) error {
	cc := clientcredentials.Config{
		ClientID:     apiTokenUser,
		ClientSecret: a.apiToken,
		TokenURL:     a.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	tok, err := cc.Token(ctx)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil &&
			(re.Response.StatusCode == http.StatusUnauthorized || re.Response.StatusCode == http.StatusForbidden) {
			return errors.WrapError(err, errors.ErrAuthentication, "API token rejected")
		}
		return errors.WrapError(err, errors.ErrAuthentication, "token request failed")
	}
	if tok.AccessToken == "" {
		return errors.WrapError(fmt.Errorf("empty access token"), errors.ErrAuthentication, "token request failed")
	}
	a.token = tok
	return nil
}

// String returns a string representation of this auth method
func (a *APITokenAuth) String() string {
	return fmt.Sprintf("APITokenAuth(url: %s)", a.TokenURL)
}
