package factsheet

import (
	"context"
	"fmt"

	"github.com/saturnines/factsheet-tools/pkg/report"
)

// ListTags returns every tag defined in the workspace.
func (s *Service) ListTags(ctx context.Context) ([]report.Tag, error) {
	var out struct {
		Op struct {
			AsList []report.Tag `json:"asList"`
		} `json:"op"`
	}
	if err := s.client.Execute(ctx, listTagsQuery, nil, &out); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return out.Op.AsList, nil
}

// TagIDs returns the distinct tag ids in first-seen order.
func TagIDs(tags []report.Tag) []string {
	seen := make(map[string]struct{}, len(tags))
	ids := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		ids = append(ids, t.ID)
	}
	return ids
}
