package factsheet

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/saturnines/factsheet-tools/pkg/transport/graphql"
)

// StatusArchived is the status value set by Archive.
const StatusArchived = "ARCHIVED"

// ArchiveResult summarizes an ArchiveAll run.
type ArchiveResult struct {
	Total    int
	Archived int
}

// ListIDs returns the ids of every factsheet in the workspace, following
// pagination to the end.
func (s *Service) ListIDs(ctx context.Context) ([]string, error) {
	pager, err := graphql.NewPager(s.client, listIDsQuery, map[string]any{"first": s.pageSize}, cursorVar, pageInfoPath...)
	if err != nil {
		return nil, err
	}

	var ids []string
	for {
		raw, err := pager.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("list factsheets: %w", err)
		}
		if raw == nil {
			return ids, nil
		}

		var page struct {
			Op struct {
				Edges []struct {
					Node idNode `json:"node"`
				} `json:"edges"`
			} `json:"op"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, fmt.Errorf("decode factsheet page: %w", err)
		}
		for _, e := range page.Op.Edges {
			ids = append(ids, e.Node.ID)
		}
	}
}

// ArchivePatches returns the patch list that archives a factsheet.
func ArchivePatches() []Patch {
	return []Patch{{Op: "add", Path: "/status", Value: StatusArchived}}
}

// Archive sets the status of factsheet id to ARCHIVED.
func (s *Service) Archive(ctx context.Context, id, comment string) error {
	vars := map[string]any{
		"id":      id,
		"comment": comment,
		"patches": ArchivePatches(),
	}
	var out mutationResult
	if err := s.client.Execute(ctx, archiveMutation, vars, &out); err != nil {
		return fmt.Errorf("archive factsheet %s: %w", id, err)
	}
	return nil
}

// ArchiveIDs archives ids one after the other. A failed archive is recorded
// and the loop moves on; cancellation of ctx stops it.
func (s *Service) ArchiveIDs(ctx context.Context, ids []string, comment string) (ArchiveResult, error) {
	res := ArchiveResult{Total: len(ids)}
	var errs error

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}

		s.log.Info("archiving factsheet", zap.String("id", id))
		if err := s.Archive(ctx, id, comment); err != nil {
			s.log.Warn("archive failed", zap.String("id", id), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		res.Archived++
	}

	s.log.Info("archive finished", zap.Int("total", res.Total), zap.Int("archived", res.Archived))
	return res, errs
}

// ArchiveAll archives every factsheet in the workspace.
func (s *Service) ArchiveAll(ctx context.Context, comment string) (ArchiveResult, error) {
	ids, err := s.ListIDs(ctx)
	if err != nil {
		return ArchiveResult{}, err
	}
	return s.ArchiveIDs(ctx, ids, comment)
}
