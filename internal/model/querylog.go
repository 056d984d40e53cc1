package model

import "time"

// QueryLogEntry is one audited query.
type QueryLogEntry struct {
	ID              string          `json:"id"`
	Query           string          `json:"query"`
	Kind            Kind            `json:"kind"`
	Tier            Tier            `json:"tier"`
	Confidence      float64         `json:"confidence"`
	ResultCount     int             `json:"result_count"`
	Empty           bool            `json:"empty"`
	Cached          bool            `json:"cached"`
	NarrativeSource NarrativeSource `json:"narrative_source"`
	DurationMS      int64           `json:"duration_ms"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewQueryLogEntry flattens an outcome for the query log.
func NewQueryLogEntry(query string, o Outcome, at time.Time) QueryLogEntry {
	e := QueryLogEntry{
		ID:              o.ID,
		Query:           query,
		ResultCount:     o.Analysis.Result.Len(),
		Empty:           o.Analysis.Empty,
		Cached:          o.Cached,
		NarrativeSource: o.Narrative.Source,
		DurationMS:      o.Duration.Milliseconds(),
		CreatedAt:       at.UTC(),
	}
	if o.Request != nil {
		meta := o.Request.Info()
		e.Kind = o.Request.Kind()
		e.Tier = meta.Tier
		e.Confidence = meta.Confidence
	}
	return e
}
