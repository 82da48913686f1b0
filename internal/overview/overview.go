// Package overview implements the "what matters right now" ranking
// described in spec 4.12: open task candidates scored by view count,
// recency, and root-ness, returning the top N.
package overview

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/latticehq/lattice/internal/config"
	"github.com/latticehq/lattice/internal/index"
)

// DefaultLimit is the number of results Rank returns when Limit is unset.
const DefaultLimit = 10

// Scored pairs a document with its computed ranking score.
type Scored struct {
	Document index.DocumentRow
	Score    float64
}

// Options controls a ranking run.
type Options struct {
	Weights config.OverviewWeights
	Limit   int
	// Now lets callers fix the reference time for age calculations in
	// tests; the zero value means time.Now().
	Now time.Time
}

// Rank scores every open task in the index and returns the top N by
// score descending, per spec 4.12's formula:
//
//	score = w_view*norm(view_count) + w_recency*exp(-age_days/half_life) + w_root*(is_root?1:0)
//
// norm is min-max normalization over the candidate set.
func Rank(ctx context.Context, q index.Queryer, opts Options) ([]Scored, error) {
	weights := opts.Weights
	if weights == (config.OverviewWeights{}) {
		weights = config.DefaultOverviewWeights()
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	closed := false
	rows, err := index.List(ctx, q, index.DocumentFilter{Closed: &closed})
	if err != nil {
		return nil, err
	}

	var candidates []*index.DocumentRow
	for _, row := range rows {
		if row.TaskType != "" {
			candidates = append(candidates, row)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	minView, maxView := candidates[0].ViewCount, candidates[0].ViewCount
	for _, c := range candidates {
		if c.ViewCount < minView {
			minView = c.ViewCount
		}
		if c.ViewCount > maxView {
			maxView = c.ViewCount
		}
	}

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		viewNorm := normalize(float64(c.ViewCount), float64(minView), float64(maxView))
		recency := recencyFactor(c, now, weights.HalfLife)
		rootScore := 0.0
		if c.IsRoot {
			rootScore = 1.0
		}

		score := weights.View*viewNorm + weights.Recency*recency + weights.Root*rootScore
		scored = append(scored, Scored{Document: *c, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func normalize(v, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return (v - min) / (max - min)
}

func recencyFactor(doc *index.DocumentRow, now time.Time, halfLifeDays float64) float64 {
	reference := doc.UpdatedAt
	if reference == nil {
		reference = doc.CreatedAt
	}
	if reference == nil || halfLifeDays <= 0 {
		return 0
	}
	ageDays := now.Sub(*reference).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-ageDays / halfLifeDays)
}
