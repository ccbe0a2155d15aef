package factsheet

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saturnines/factsheet-tools/pkg/config"
	"github.com/saturnines/factsheet-tools/pkg/report"
	"github.com/saturnines/factsheet-tools/pkg/transport/graphql"
)

const (
	// MissingKey is the facet result standing for "no value".
	MissingKey = "__missing__"
	// TypeFacet is the facet key filtering on factsheet type.
	TypeFacet = "FactSheetTypes"
)

// Facet is one filter facet with its possible values.
type Facet struct {
	Key     string        `json:"facetKey"`
	Results []FacetResult `json:"keys"`
}

// FacetResult is one value of a facet.
type FacetResult struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// FacetFilter restricts a query to the given keys of a facet.
type FacetFilter struct {
	FacetKey string   `json:"facetKey"`
	Keys     []string `json:"keys"`
}

// Filter is the FilterInput of allFactSheets.
type Filter struct {
	FacetFilters []FacetFilter `json:"facetFilters"`
}

// Facets returns the filter facets of allFactSheets.
func (s *Service) Facets(ctx context.Context) ([]Facet, error) {
	var out struct {
		Op struct {
			FilterOptions struct {
				Facets []Facet `json:"facets"`
			} `json:"filterOptions"`
		} `json:"op"`
	}
	if err := s.client.Execute(ctx, facetsQuery, nil, &out); err != nil {
		return nil, fmt.Errorf("list facets: %w", err)
	}
	return out.Op.FilterOptions.Facets, nil
}

// Filters returns one filter per facet named in tagGroups, each combined
// with a type filter on types. Missing-value keys are dropped and facets
// left without keys are skipped. Facet order is kept.
func Filters(facets []Facet, types []string, tagGroups report.Config) []Filter {
	var filters []Filter
	for _, f := range facets {
		if _, ok := tagGroups[f.Key]; !ok {
			continue
		}

		keys := make([]string, 0, len(f.Results))
		for _, r := range f.Results {
			if r.Key != MissingKey {
				keys = append(keys, r.Key)
			}
		}
		if len(keys) == 0 {
			continue
		}

		filters = append(filters, Filter{FacetFilters: []FacetFilter{
			{FacetKey: TypeFacet, Keys: types},
			{FacetKey: f.Key, Keys: keys},
		}})
	}
	return filters
}

// FetchTagged returns the factsheets of the given types tagged in any of
// the configured tag groups. One query runs per matching facet; results are
// concatenated in facet order, so a factsheet tagged in two configured
// groups is returned once per group.
func (s *Service) FetchTagged(ctx context.Context, types []string, tagGroups report.Config) ([]report.Record, error) {
	facets, err := s.Facets(ctx)
	if err != nil {
		return nil, err
	}
	filters := Filters(facets, types, tagGroups)
	s.log.Debug("fetching tagged factsheets", zap.Int("facets", len(filters)))

	results := make([][]report.Record, len(filters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, filter := range filters {
		g.Go(func() error {
			records, err := s.fetchFiltered(gctx, filter)
			if err != nil {
				return fmt.Errorf("fetch facet %s: %w", filter.FacetFilters[1].FacetKey, err)
			}
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []report.Record
	for _, r := range results {
		records = append(records, r...)
	}
	return records, nil
}

func (s *Service) fetchFiltered(ctx context.Context, filter Filter) ([]report.Record, error) {
	vars := map[string]any{"filter": filter, "first": s.pageSize}
	pager, err := graphql.NewPager(s.client, taggedQuery, vars, cursorVar, pageInfoPath...)
	if err != nil {
		return nil, err
	}

	var records []report.Record
	for {
		raw, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return records, nil
		}

		var page struct {
			Op struct {
				Edges []struct {
					Node report.Record `json:"node"`
				} `json:"edges"`
			} `json:"op"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode factsheet page: %w", err)
		}
		for _, e := range page.Op.Edges {
			records = append(records, e.Node)
		}
	}
}

// Report fetches the tagged factsheets named by cfg and builds the report tree.
func (s *Service) Report(ctx context.Context, cfg config.Report) (*report.Group, error) {
	records, err := s.FetchTagged(ctx, cfg.FactSheetTypes, cfg.TagGroups)
	if err != nil {
		return nil, err
	}
	return report.Build(records, cfg.TagGroups), nil
}
