package factsheet

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Namer returns the name of the i-th seeded factsheet.
type Namer func(i int) string

// SeedOptions controls Seed.
type SeedOptions struct {
	Count int
	Type  string
	// Namer defaults to "<Type> <uuid>".
	Namer Namer
	// Pick returns the index of the tag given to a factsheet, in [0, n).
	// Defaults to rand.IntN.
	Pick func(n int) int
}

// SeedResult summarizes a Seed run.
type SeedResult struct {
	Requested int
	Created   int
	IDs       []string
}

// Create adds a factsheet and returns its id.
func (s *Service) Create(ctx context.Context, input Input, patches []Patch) (string, error) {
	vars := map[string]any{"input": input}
	if len(patches) > 0 {
		vars["patches"] = patches
	}

	var out mutationResult
	if err := s.client.Execute(ctx, createMutation, vars, &out); err != nil {
		return "", fmt.Errorf("create factsheet %q: %w", input.Name, err)
	}
	return out.Op.FactSheet.ID, nil
}

// TagPatch replaces the tags of a factsheet with the single tag tagID.
func TagPatch(tagID string) Patch {
	return Patch{Op: "replace", Path: "/tags", Value: fmt.Sprintf(`[{"tagId":"%s"}]`, tagID)}
}

// Seed creates opts.Count factsheets of opts.Type, each tagged with one tag
// picked at random from the workspace. Creation is sequential; failures are
// collected and the loop moves on.
func (s *Service) Seed(ctx context.Context, opts SeedOptions) (SeedResult, error) {
	if opts.Type == "" {
		return SeedResult{}, fmt.Errorf("seed: factsheet type is required")
	}
	if opts.Namer == nil {
		typ := opts.Type
		opts.Namer = func(int) string { return typ + " " + uuid.NewString() }
	}
	if opts.Pick == nil {
		opts.Pick = rand.IntN
	}

	tags, err := s.ListTags(ctx)
	if err != nil {
		return SeedResult{}, err
	}
	tagIDs := TagIDs(tags)
	if len(tagIDs) == 0 {
		s.log.Warn("workspace has no tags, factsheets are created untagged")
	}

	res := SeedResult{Requested: opts.Count}
	var errs error
	for i := 0; i < opts.Count; i++ {
		if err := ctx.Err(); err != nil {
			errs = multierr.Append(errs, err)
			break
		}

		input := Input{Name: opts.Namer(i), Type: opts.Type}
		var patches []Patch
		if len(tagIDs) > 0 {
			patches = []Patch{TagPatch(tagIDs[opts.Pick(len(tagIDs))])}
		}

		s.log.Info("creating factsheet", zap.String("name", input.Name))
		id, err := s.Create(ctx, input, patches)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		res.Created++
		res.IDs = append(res.IDs, id)
	}

	s.log.Info("seed finished", zap.Int("requested", res.Requested), zap.Int("created", res.Created))
	return res, errs
}
