package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
)

// PageInfo is the relay-style page descriptor returned by connection fields.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// Pager drives cursor paging over a connection field.
type Pager struct {
	// Immutable configuration
	client       Executor
	query        string
	variables    map[string]any
	cursorKey    string
	pageInfoPath []string

	// Mutable state (protected by mutex)
	mu      sync.Mutex
	cursor  string
	hasNext bool
	first   bool
}

// NewPager returns a Pager that runs query, passing the end cursor of the
// previous page in variable cursorKey. pageInfoPath locates the pageInfo
// object in the response data, e.g. "op", "pageInfo".
func NewPager(client Executor, query string, variables map[string]any, cursorKey string, pageInfoPath ...string) (*Pager, error) {
	if client == nil {
		return nil, fmt.Errorf("client cannot be nil")
	}
	if cursorKey == "" {
		return nil, fmt.Errorf("cursorKey cannot be empty")
	}
	if len(pageInfoPath) == 0 {
		return nil, fmt.Errorf("pageInfoPath cannot be empty")
	}

	return &Pager{
		client:       client,
		query:        query,
		variables:    maps.Clone(variables),
		cursorKey:    cursorKey,
		pageInfoPath: pageInfoPath,
		hasNext:      true,
		first:        true,
	}, nil
}

// Next fetches the next page and returns its raw data, or (nil, nil) when
// there are no more pages.
func (p *Pager) Next(ctx context.Context) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.first && !p.hasNext {
		return nil, nil
	}

	vars := maps.Clone(p.variables)
	if vars == nil {
		vars = make(map[string]any)
	}
	if p.cursor != "" {
		vars[p.cursorKey] = p.cursor
	}

	var raw json.RawMessage
	if err := p.client.Execute(ctx, p.query, vars, &raw); err != nil {
		return nil, err
	}
	p.first = false

	info, err := p.pageInfo(raw)
	if err != nil {
		return nil, err
	}

	// A page without a cursor cannot be followed.
	p.hasNext = info.HasNextPage && info.EndCursor != ""
	p.cursor = info.EndCursor
	return raw, nil
}

// HasMore returns whether more pages are available.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.first || p.hasNext
}

// Reset resets pagination to start from the beginning.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.hasNext = true
	p.first = true
	p.cursor = ""
}

func (p *Pager) pageInfo(raw json.RawMessage) (PageInfo, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return PageInfo{}, fmt.Errorf("failed to decode GraphQL response: %w", err)
	}

	var info PageInfo
	node, ok := traverse(data, p.pageInfoPath...).(map[string]any)
	if !ok {
		// No pageInfo: treat as a single page.
		return info, nil
	}
	info.HasNextPage, _ = node["hasNextPage"].(bool)
	info.EndCursor, _ = node["endCursor"].(string)
	return info, nil
}

// traverse digs into nested maps via a path of keys.
func traverse(m map[string]any, path ...string) any {
	cur := any(m)
	for _, key := range path {
		mp, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = mp[key]
	}
	return cur
}
