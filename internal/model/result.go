package model

import "time"

// Ranked pairs a store record with its relevance or similarity score.
type Ranked struct {
	Player *PlayerRecord `json:"player"`
	Score  float64       `json:"score"`
}

// RankedResult is the ordered output of the engine.
type RankedResult struct {
	Items []Ranked `json:"items"`
	// Matched is the number of records that passed the filters before truncation.
	Matched   int           `json:"matched"`
	Reference *PlayerRecord `json:"reference,omitempty"`
	SortKey   string        `json:"sort_key,omitempty"`
}

func (r RankedResult) Len() int { return len(r.Items) }

func (r RankedResult) Players() []*PlayerRecord {
	out := make([]*PlayerRecord, len(r.Items))
	for i, it := range r.Items {
		out[i] = it.Player
	}
	return out
}

// Series is one named line of chart data.
type Series struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

// ChartData is a labelled set of series, one value per label.
type ChartData struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

// Analysis is the per-kind result of running a request against the store.
type Analysis struct {
	Request  Request      `json:"-"`
	Result   RankedResult `json:"result"`
	Summary  string       `json:"summary"`
	Insights []string     `json:"insights,omitempty"`
	Chart    *ChartData   `json:"chart,omitempty"`
	// Breakdown holds grouped counts, e.g. "age_groups" -> {"19 and under": 3}.
	Breakdown map[string]map[string]int `json:"breakdown,omitempty"`
	// Empty marks a valid request that matched nothing. It is not an error.
	Empty       bool     `json:"empty"`
	Message     string   `json:"message,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type NarrativeSource string

const (
	NarrativeLLM      NarrativeSource = "llm"
	NarrativeTemplate NarrativeSource = "template"
)

// Recommendation is one model-written pick with its reasoning.
type Recommendation struct {
	Player    string `json:"player"`
	Reasoning string `json:"reasoning"`
}

// Narrative is the human-readable explanation attached to an analysis.
type Narrative struct {
	Text             string           `json:"text"`
	Source           NarrativeSource  `json:"source"`
	Recommendations  []Recommendation `json:"recommendations,omitempty"`
	TacticalAnalysis string           `json:"tactical_analysis,omitempty"`
}

// Outcome is everything the formatter needs to build a payload.
type Outcome struct {
	ID        string        `json:"id"`
	Request   Request       `json:"-"`
	Analysis  Analysis      `json:"analysis"`
	Narrative Narrative     `json:"narrative"`
	Cached    bool          `json:"cached"`
	Duration  time.Duration `json:"duration"`
}

// DataStatus summarizes what the store holds.
type DataStatus struct {
	TotalPlayers int      `json:"total_players"`
	TotalMetrics int      `json:"total_metrics"`
	Sources      []string `json:"sources"`
	Leagues      []string `json:"leagues"`
}

// Health is reported by GET /api/health.
type Health struct {
	Status     string     `json:"status"`
	DataStatus DataStatus `json:"data_status"`
	LLMEnabled bool       `json:"llm_enabled"`
}

// Capabilities is the static description served by GET /api/capabilities.
type Capabilities struct {
	Categories     []string `json:"categories"`
	ExampleQueries []string `json:"example_queries"`
	Leagues        []string `json:"leagues"`
	Positions      []string `json:"positions"`
	LLMEnabled     bool     `json:"llm_enabled"`
}
