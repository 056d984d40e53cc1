// Package engine filters and ranks player records. Everything here is a pure
// function of its inputs; records are shared by pointer and never modified.
package engine

import (
	"math"
	"sort"
	"strings"

	"github.com/maxviazov/soccer-scout-service/internal/model"
)

// SortPerformance selects the composite performance rating.
const SortPerformance = "performance_rating"

// Performance rating weights. A missing metric counts as 0.
const (
	ratingGoalsWeight     = 1.0
	ratingAssistsWeight   = 0.75
	ratingDefensiveWeight = 0.25
)

// similarityWeights apply to min-max normalized absolute differences.
var similarityWeights = []struct {
	metric string
	weight float64
}{
	{model.MetricGoalsPer90, 3},
	{model.MetricAssistsPer90, 3},
	{model.MetricProgressiveActions, 1},
	{model.MetricDefensiveActions, 1},
}

// PerformanceRating is the default sort key.
func PerformanceRating(p *model.PlayerRecord) float64 {
	return ratingGoalsWeight*p.Value(model.MetricGoalsPer90) +
		ratingAssistsWeight*p.Value(model.MetricAssistsPer90) +
		ratingDefensiveWeight*p.DefensiveActions()
}

// SortValue returns the value a record is ranked by for key.
func SortValue(p *model.PlayerRecord, key string) float64 {
	if key == "" || key == SortPerformance {
		return PerformanceRating(p)
	}
	return p.Value(key)
}

// Filter applies the conjunctive filters of c. It is idempotent.
func Filter(records []*model.PlayerRecord, c model.Criteria) []*model.PlayerRecord {
	out := make([]*model.PlayerRecord, 0, len(records))
	for _, r := range records {
		if matches(r, c) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r *model.PlayerRecord, c model.Criteria) bool {
	if !r.PlaysPosition(c.Position) {
		return false
	}
	if c.League != "" && !strings.EqualFold(r.Key.League, c.League) {
		return false
	}
	if c.AgeMin != nil || c.AgeMax != nil {
		age, ok := r.Age()
		if !ok {
			return false
		}
		if c.AgeMin != nil && age < *c.AgeMin {
			return false
		}
		if c.AgeMax != nil && age > *c.AgeMax {
			return false
		}
	}
	if r.Minutes() < c.MinMinutes {
		return false
	}
	for _, f := range c.StatFilters {
		if !f.Apply(r.Value(f.Metric)) {
			return false
		}
	}
	return true
}

// Rank filters records by c, orders the survivors and truncates to c.Limit.
// With SimilarTo set, the reference is resolved against the full input slice;
// an unresolved reference leaves ordering to the sort key.
func Rank(records []*model.PlayerRecord, c model.Criteria) model.RankedResult {
	c = c.Normalize()
	candidates := Filter(records, c)
	res := model.RankedResult{Items: []model.Ranked{}, Matched: len(candidates), SortKey: c.SortKey}
	if len(candidates) == 0 {
		return res
	}

	if c.SimilarTo != "" {
		if ref := FindReference(records, c.SimilarTo); ref != nil {
			items := bySimilarity(ref, candidates)
			res.Reference = ref
			res.Matched = len(items)
			res.Items = truncate(items, c.Limit)
			return res
		}
	}

	res.Items = truncate(bySortKey(candidates, c.SortKey), c.Limit)
	return res
}

// FindReference returns the first record whose name contains name, case-insensitively.
func FindReference(records []*model.PlayerRecord, name string) *model.PlayerRecord {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return nil
	}
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Key.Name), needle) {
			return r
		}
	}
	return nil
}

func bySortKey(candidates []*model.PlayerRecord, key string) []model.Ranked {
	items := make([]model.Ranked, len(candidates))
	for i, r := range candidates {
		items[i] = model.Ranked{Player: r, Score: SortValue(r, key)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if am, bm := a.Player.Minutes(), b.Player.Minutes(); am != bm {
			return am > bm
		}
		return a.Player.Key.Name < b.Player.Key.Name
	})
	return items
}

func bySimilarity(ref *model.PlayerRecord, candidates []*model.PlayerRecord) []model.Ranked {
	pool := make([]*model.PlayerRecord, 0, len(candidates))
	for _, r := range candidates {
		if r != ref {
			pool = append(pool, r)
		}
	}
	if len(pool) == 0 {
		return []model.Ranked{}
	}

	spans := make([]float64, len(similarityWeights))
	for i, w := range similarityWeights {
		lo, hi := ref.Value(w.metric), ref.Value(w.metric)
		for _, r := range pool {
			v := r.Value(w.metric)
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		spans[i] = hi - lo
	}

	distances := make([]float64, len(pool))
	for j, r := range pool {
		var d float64
		for i, w := range similarityWeights {
			if spans[i] == 0 {
				continue
			}
			d += w.weight * math.Abs(ref.Value(w.metric)-r.Value(w.metric)) / spans[i]
		}
		distances[j] = d
	}

	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return distances[idx[a]] < distances[idx[b]] })

	items := make([]model.Ranked, len(pool))
	for k, i := range idx {
		items[k] = model.Ranked{Player: pool[i], Score: 1 / (1 + distances[i])}
	}
	return items
}

func truncate(items []model.Ranked, limit int) []model.Ranked {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
