package model

import (
	"fmt"
	"strings"
)

// Kind names the analysis a request asks for.
type Kind string

const (
	KindPlayerSearch     Kind = "player_search"
	KindComparison       Kind = "comparison"
	KindYoungProspects   Kind = "young_prospects"
	KindTopPerformers    Kind = "top_performers"
	KindCustomFilter     Kind = "custom_filter"
	KindTacticalAnalysis Kind = "tactical_analysis"
	KindUnknown          Kind = "unknown"
)

// Tier records which interpreter stage produced a request.
type Tier string

const (
	TierPattern Tier = "pattern"
	TierDynamic Tier = "dynamic"
	TierLLM     Tier = "llm"
	TierNone    Tier = "none"
)

// Meta is shared by every request variant.
type Meta struct {
	Query      string  `json:"query"`
	Confidence float64 `json:"confidence"`
	Tier       Tier    `json:"tier"`
}

func (m Meta) Info() Meta { return m }

func (Meta) sealed() {}

// Request is a closed union of request kinds. The set of implementations is
// fixed to the types in this file; consumers switch on the concrete type.
type Request interface {
	Kind() Kind
	Info() Meta
	// CacheParts identifies the analysis the request asks for:
	// kind, names, position, league, stat and context.
	CacheParts() []string
	sealed()
}

// Defaults carried over from the analyses each kind feeds.
const (
	DefaultMinMinutes         = 500
	DefaultProspectMinMinutes = 1000
	DefaultProspectMaxAge     = 23
	DefaultCustomFilterLimit  = 20
)

// DefaultComparisonStats are the metrics shown side by side in a comparison.
var DefaultComparisonStats = []string{MetricGoals, MetricAssists, MetricGoalsPer90, MetricAssistsPer90}

type PlayerSearch struct {
	Meta
	Name     string   `json:"name"`
	Criteria Criteria `json:"criteria"`
}

func (PlayerSearch) Kind() Kind { return KindPlayerSearch }

func (r PlayerSearch) CacheParts() []string {
	return []string{string(KindPlayerSearch), r.Name, r.Criteria.Position, r.Criteria.League, r.Criteria.SortKey, r.Criteria.Fingerprint()}
}

type Comparison struct {
	Meta
	Names      []string `json:"names"`
	Stats      []string `json:"stats"`
	MinMinutes float64  `json:"min_minutes"`
}

func (Comparison) Kind() Kind { return KindComparison }

func (r Comparison) CacheParts() []string {
	return []string{string(KindComparison), strings.Join(r.Names, ","), "", "", strings.Join(r.Stats, ","), fmt.Sprintf("min=%g", r.MinMinutes)}
}

// YoungProspects uses Criteria.AgeMax as the exclusive age ceiling ("under N").
type YoungProspects struct {
	Meta
	MaxAge   int      `json:"max_age"`
	Criteria Criteria `json:"criteria"`
}

func (YoungProspects) Kind() Kind { return KindYoungProspects }

func (r YoungProspects) CacheParts() []string {
	return []string{string(KindYoungProspects), "", r.Criteria.Position, r.Criteria.League, r.Criteria.SortKey, r.Criteria.Fingerprint()}
}

type TopPerformers struct {
	Meta
	Stat     string   `json:"stat"`
	Criteria Criteria `json:"criteria"`
}

func (TopPerformers) Kind() Kind { return KindTopPerformers }

func (r TopPerformers) CacheParts() []string {
	return []string{string(KindTopPerformers), "", r.Criteria.Position, r.Criteria.League, r.Stat, r.Criteria.Fingerprint()}
}

type CustomFilter struct {
	Meta
	Criteria Criteria `json:"criteria"`
}

func (CustomFilter) Kind() Kind { return KindCustomFilter }

func (r CustomFilter) CacheParts() []string {
	return []string{string(KindCustomFilter), "", r.Criteria.Position, r.Criteria.League, r.Criteria.SortKey, r.Criteria.Fingerprint()}
}

type TacticalAnalysis struct {
	Meta
	TargetPlayer  string   `json:"target_player"`
	Context       string   `json:"tactical_context"`
	PriorityStats []string `json:"priority_stats"`
	Reasoning     string   `json:"reasoning"`
	Criteria      Criteria `json:"criteria"`
}

func (TacticalAnalysis) Kind() Kind { return KindTacticalAnalysis }

func (r TacticalAnalysis) CacheParts() []string {
	return []string{
		string(KindTacticalAnalysis), r.TargetPlayer, r.Criteria.Position, r.Criteria.League,
		strings.Join(r.PriorityStats, ","), r.Context + "|" + r.Reasoning + "|" + r.Criteria.Fingerprint(),
	}
}

// Unknown is the terminal state when no tier produced a structured request.
type Unknown struct {
	Meta
	Suggestions []string `json:"suggestions"`
}

func (Unknown) Kind() Kind { return KindUnknown }

func (r Unknown) CacheParts() []string { return []string{string(KindUnknown), "", "", "", "", r.Query} }

func NewPlayerSearch(meta Meta, name string) PlayerSearch {
	return PlayerSearch{Meta: meta, Name: name, Criteria: Criteria{MinMinutes: DefaultMinMinutes, Limit: DefaultLimit}}
}

func NewComparison(meta Meta, names ...string) Comparison {
	stats := make([]string, len(DefaultComparisonStats))
	copy(stats, DefaultComparisonStats)
	return Comparison{Meta: meta, Names: names, Stats: stats, MinMinutes: DefaultMinMinutes}
}

func NewYoungProspects(meta Meta, maxAge int) YoungProspects {
	if maxAge <= 0 {
		maxAge = DefaultProspectMaxAge
	}
	return YoungProspects{
		Meta:     meta,
		MaxAge:   maxAge,
		Criteria: Criteria{AgeMax: IntPtr(maxAge - 1), MinMinutes: DefaultProspectMinMinutes, Limit: DefaultLimit},
	}
}

func NewTopPerformers(meta Meta, stat string) TopPerformers {
	if stat == "" {
		stat = MetricGoals
	}
	return TopPerformers{Meta: meta, Stat: stat, Criteria: Criteria{MinMinutes: DefaultMinMinutes, SortKey: stat, Limit: DefaultLimit}}
}

func NewCustomFilter(meta Meta) CustomFilter {
	return CustomFilter{Meta: meta, Criteria: Criteria{MinMinutes: DefaultMinMinutes, Limit: DefaultCustomFilterLimit}}
}

func NewTacticalAnalysis(meta Meta, target string) TacticalAnalysis {
	return TacticalAnalysis{
		Meta:         meta,
		TargetPlayer: target,
		Criteria:     Criteria{MinMinutes: DefaultMinMinutes, SimilarTo: target, Limit: DefaultLimit},
	}
}
