// Package factsheet runs the workspace operations behind the CLI: listing,
// archiving and seeding factsheets, and fetching tagged factsheets for the
// report tree.
package factsheet

import (
	"context"

	"go.uber.org/zap"
)

const (
	defaultPageSize    = 100
	defaultConcurrency = 4
)

// Executor runs a GraphQL document. *graphql.Client satisfies it.
type Executor interface {
	Execute(ctx context.Context, query string, variables map[string]any, out any) error
}

// Service talks to one workspace.
type Service struct {
	client      Executor
	log         *zap.Logger
	pageSize    int
	concurrency int
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPageSize sets the page size of list queries.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithConcurrency bounds the number of facet queries in flight.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// NewService creates a Service on top of client.
func NewService(client Executor, opts ...Option) *Service {
	s := &Service{
		client:      client,
		log:         zap.NewNop(),
		pageSize:    defaultPageSize,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Patch is a JSON patch operation applied by create and update mutations.
type Patch struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

// Input is the base input of a new factsheet.
type Input struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type idNode struct {
	ID string `json:"id"`
}

type mutationResult struct {
	Op struct {
		FactSheet idNode `json:"factSheet"`
	} `json:"op"`
}
