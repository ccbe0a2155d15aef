// Package graphql executes GraphQL operations against a workspace.
package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	genqlient "github.com/Khan/genqlient/graphql"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"github.com/saturnines/factsheet-tools/pkg/config"
	"github.com/saturnines/factsheet-tools/pkg/errors"
)

// EndpointPath is the GraphQL endpoint of a workspace, relative to its host.
const EndpointPath = "/services/pathfinder/v1/graphql"

// Endpoint returns the GraphQL URL for host.
func Endpoint(host string) string {
	return config.BaseURL(host) + EndpointPath
}

// Doer is the minimal HTTP client interface, satisfied by *http.Client.
type Doer = genqlient.Doer

// Executor runs a GraphQL document and decodes its data into out.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any, out any) error
}

// Error carries the errors[] entries of a GraphQL response.
type Error struct {
	List gqlerror.List
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.List))
	for i, err := range e.List {
		msgs[i] = err.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

func (e *Error) Unwrap() error {
	return errors.ErrGraphQL
}

// Client executes GraphQL operations.
type Client struct {
	endpoint string
	doer     Doer
	headers  map[string]string
	log      *zap.Logger
	gql      genqlient.Client
}

var _ Executor = (*Client)(nil)

// NewClient sends requests to endpoint through doer. A nil doer uses an
// *http.Client with a 30 second timeout.
func NewClient(endpoint string, doer Doer, opts ...ClientOption) *Client {
	if doer == nil {
		doer = &http.Client{Timeout: 30 * time.Second}
	}
	c := &Client{
		endpoint: endpoint,
		doer:     doer,
		log:      zap.NewNop(),
	}
	c.ApplyOptions(opts...)

	if len(c.headers) > 0 {
		c.doer = &headerDoer{next: c.doer, headers: c.headers}
	}
	c.gql = genqlient.NewClient(endpoint, c.doer)
	return c
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Execute validates query, sends it and decodes the data field into out.
// out may be nil when the data is not needed.
func (c *Client) Execute(ctx context.Context, query string, variables map[string]any, out any) error {
	req, err := NewBuilder(query, WithVariables(variables)).Build()
	if err != nil {
		return err
	}

	if out == nil {
		out = &json.RawMessage{}
	}
	resp := &genqlient.Response{Data: out}

	start := time.Now()
	err = c.gql.MakeRequest(ctx, req, resp)
	c.log.Debug("graphql request",
		zap.String("operation", req.OpName),
		zap.Duration("latency", time.Since(start)),
		zap.Bool("ok", err == nil),
	)
	if err != nil {
		return c.mapError(ctx, err)
	}
	return nil
}

func (c *Client) mapError(ctx context.Context, err error) error {
	var list gqlerror.List
	var httpErr *genqlient.HTTPError

	switch {
	case errors.As(err, &httpErr):
		if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
			return errors.WrapError(err, errors.ErrAuthentication, "request rejected")
		}
		return errors.WrapError(err, errors.ErrHTTPResponse, "unexpected status")
	case errors.As(err, &list):
		return &Error{List: list}
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, errors.ErrAuthentication), errors.Is(err, errors.ErrTokenExpired):
		return err
	default:
		return errors.WrapError(err, errors.ErrHTTPRequest, "request failed")
	}
}

type headerDoer struct {
	next    Doer
	headers map[string]string
}

func (d *headerDoer) Do(req *http.Request) (*http.Response, error) {
	for k, v := range d.headers {
		req.Header.Set(k, v)
	}
	return d.next.Do(req)
}
