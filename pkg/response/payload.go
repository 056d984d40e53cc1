package response

import (
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/maxviazov/soccer-scout-service/internal/model"
)

// Query types reported to the frontend.
const (
	TypeSearch     = "search"
	TypeComparison = "comparison"
	TypeScouting   = "scouting"
	TypeTactical   = "tactical"
	TypeUnknown    = "unknown"
)

// Payload is the fixed response shape of POST /api/query. Every field is
// always present: the frontend indexes into them unconditionally.
type Payload struct {
	Success         bool             `json:"success"`
	ResponseText    string           `json:"response_text"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"summary"`
	QueryType       string           `json:"query_type"`
	Metadata        Metadata         `json:"metadata"`
}

type Recommendation struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Position    string             `json:"position"`
	Age         *int               `json:"age"`
	Club        string             `json:"club"`
	League      string             `json:"league"`
	Season      string             `json:"season"`
	Nationality string             `json:"nationality"`
	Score       float64            `json:"score"`
	Stats       map[string]float64 `json:"stats"`
	Reasoning   string             `json:"reasoning,omitempty"`
}

type Metadata struct {
	RequestID        string                    `json:"request_id,omitempty"`
	Query            string                    `json:"query"`
	Kind             string                    `json:"kind"`
	Tier             string                    `json:"interpreter_tier"`
	Confidence       float64                   `json:"confidence"`
	TotalMatches     int                       `json:"total_matches"`
	Returned         int                       `json:"returned"`
	SortKey          string                    `json:"sort_key,omitempty"`
	Reference        string                    `json:"reference_player,omitempty"`
	Cached           bool                      `json:"cached"`
	NarrativeSource  string                    `json:"narrative_source,omitempty"`
	ProcessingTimeMS int64                     `json:"processing_time_ms"`
	Insights         []string                  `json:"insights"`
	Suggestions      []string                  `json:"suggestions"`
	TacticalAnalysis string                    `json:"tactical_analysis,omitempty"`
	Chart            *model.ChartData          `json:"chart,omitempty"`
	Breakdown        map[string]map[string]int `json:"breakdown,omitempty"`
}

var baseStats = []string{
	model.MetricMinutes,
	model.MetricGoals,
	model.MetricAssists,
	model.MetricGoalsPer90,
	model.MetricAssistsPer90,
}

// Format turns an outcome into the frontend payload.
func Format(o model.Outcome) Payload {
	var (
		queryType string
		extra     []string
	)
	switch r := o.Request.(type) {
	case model.PlayerSearch:
		queryType = TypeSearch
	case model.CustomFilter:
		queryType = TypeSearch
		extra = append(extra, r.Criteria.SortKey)
		for _, f := range r.Criteria.StatFilters {
			extra = append(extra, f.Metric)
		}
	case model.Comparison:
		queryType = TypeComparison
		extra = r.Stats
	case model.YoungProspects:
		queryType = TypeScouting
		extra = []string{model.MetricAge, model.MetricProgressiveActions, model.MetricExpectedGoals, model.MetricExpectedAssists}
	case model.TopPerformers:
		queryType = TypeScouting
		extra = []string{r.Stat}
	case model.TacticalAnalysis:
		queryType = TypeTactical
		extra = append([]string{model.MetricProgressiveActions, model.MetricDefensiveActions}, r.PriorityStats...)
	case model.Unknown:
		queryType = TypeUnknown
	default:
		queryType = TypeUnknown
	}

	a := o.Analysis
	p := Payload{
		Success:         true,
		ResponseText:    o.Narrative.Text,
		Recommendations: recommendations(a.Result, append(append([]string(nil), baseStats...), extra...), o.Narrative.Recommendations),
		Summary:         a.Summary,
		QueryType:       queryType,
		Metadata: Metadata{
			RequestID:        o.ID,
			TotalMatches:     a.Result.Matched,
			Returned:         a.Result.Len(),
			SortKey:          a.Result.SortKey,
			Cached:           o.Cached,
			NarrativeSource:  string(o.Narrative.Source),
			ProcessingTimeMS: o.Duration.Milliseconds(),
			Insights:         nonNil(a.Insights),
			Suggestions:      nonNil(a.Suggestions),
			TacticalAnalysis: o.Narrative.TacticalAnalysis,
			Chart:            a.Chart,
			Breakdown:        a.Breakdown,
		},
	}
	if o.Request != nil {
		meta := o.Request.Info()
		p.Metadata.Query = meta.Query
		p.Metadata.Kind = string(o.Request.Kind())
		p.Metadata.Tier = string(meta.Tier)
		p.Metadata.Confidence = meta.Confidence
	}
	if ref := a.Result.Reference; ref != nil {
		p.Metadata.Reference = ref.Key.Name
	}
	if p.Summary == "" {
		p.Summary = a.Message
	}
	if p.ResponseText == "" {
		p.ResponseText = p.Summary
	}
	return p
}

func recommendations(res model.RankedResult, stats []string, notes []model.Recommendation) []Recommendation {
	reasons := make(map[string]string, len(notes))
	for _, n := range notes {
		reasons[n.Player] = n.Reasoning
	}

	out := make([]Recommendation, 0, min(res.Len(), model.MaxPayloadLimit))
	for i, it := range res.Items {
		if i == model.MaxPayloadLimit {
			break
		}
		p := it.Player
		rec := Recommendation{
			ID:          playerID(p.Key),
			Name:        p.Key.Name,
			Position:    p.Position,
			Club:        p.Key.Team,
			League:      p.Key.League,
			Season:      p.Key.Season,
			Nationality: p.Nationality,
			Score:       round(it.Score),
			Stats:       make(map[string]float64, len(stats)),
			Reasoning:   reasons[p.Key.Name],
		}
		if age, ok := p.Age(); ok {
			rec.Age = &age
		}
		for _, s := range stats {
			if s == "" {
				continue
			}
			rec.Stats[s] = round(p.Value(s))
		}
		out = append(out, rec)
	}
	return out
}

// playerID is stable across restarts for the same league, season, team and name.
func playerID(k model.PlayerKey) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(k.String()))
}

func round(v float64) float64 { return math.Round(v*1000) / 1000 }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Fallback is the payload embedded in error responses so the frontend fields
// exist even when no outcome was produced.
func Fallback(text string, suggestions []string) Payload {
	return Payload{
		Success:         false,
		ResponseText:    text,
		Recommendations: []Recommendation{},
		Summary:         "",
		QueryType:       TypeUnknown,
		Metadata:        Metadata{Insights: []string{}, Suggestions: nonNil(suggestions)},
	}
}
