package interpreter

import (
	"context"

	"github.com/maxviazov/soccer-scout-service/internal/model"
)

const dynamicConfidence = 0.7

type entities struct {
	position  string
	league    string
	stat      string
	age       ageBounds
	filters   []model.StatFilter
	reference string
}

func (e entities) any() bool {
	return e.position != "" || e.league != "" || e.stat != "" || e.age.found || len(e.filters) > 0 || e.reference != ""
}

func scan(query string) entities {
	return entities{
		position:  extractPosition(query),
		league:    extractLeague(query),
		stat:      extractStat(query),
		age:       extractAge(query),
		filters:   extractStatFilters(query),
		reference: extractReference(query),
	}
}

// DynamicTier assembles criteria from whatever entities the query mentions.
// A reference player ("similar to X") turns it into a tactical request.
func DynamicTier(_ context.Context, query string) (model.Request, bool) {
	e := scan(query)
	if !e.any() {
		return nil, false
	}
	meta := model.Meta{Query: query, Confidence: dynamicConfidence, Tier: model.TierDynamic}

	criteria := func(c model.Criteria) model.Criteria {
		c.Position = e.position
		c.League = e.league
		c.AgeMin, c.AgeMax = e.age.min, e.age.max
		c.StatFilters = e.filters
		c.MinMinutes = extractMinutes(query)
		if n := extractLimit(query); n > 0 {
			c.Limit = n
		}
		return c
	}

	if e.reference != "" {
		req := model.NewTacticalAnalysis(meta, e.reference)
		req.Context = query
		if e.stat != "" {
			req.PriorityStats = []string{e.stat}
		}
		req.Criteria = criteria(req.Criteria)
		return req, true
	}

	req := model.NewCustomFilter(meta)
	req.Criteria = criteria(req.Criteria)
	req.Criteria.SortKey = e.stat
	return req, true
}
