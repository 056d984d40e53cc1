package response_test

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/pkg/response"
)

func player(name, team string, age float64) *model.PlayerRecord {
	return &model.PlayerRecord{
		Key:         model.PlayerKey{League: "Premier League", Season: "2324", Team: team, Name: name},
		Position:    "Midfielder",
		Nationality: "ENG",
		Metrics: map[string]float64{
			model.MetricAge:          age,
			model.MetricMinutes:      2700,
			model.MetricGoals:        7,
			model.MetricAssists:      5,
			model.MetricGoalsPer90:   0.2333333,
			model.MetricAssistsPer90: 0.1666666,
		},
	}
}

func outcome(req model.Request, items ...model.Ranked) model.Outcome {
	return model.Outcome{
		ID:      "req-1",
		Request: req,
		Analysis: model.Analysis{
			Request: req,
			Summary: "summary text",
			Result:  model.RankedResult{Items: items, Matched: len(items)},
		},
		Narrative: model.Narrative{Text: "narrative text", Source: model.NarrativeTemplate},
		Duration:  1500 * time.Millisecond,
	}
}

func TestFormat_QueryTypes(t *testing.T) {
	meta := model.Meta{Query: "q", Confidence: 0.9, Tier: model.TierPattern}
	cases := []struct {
		req  model.Request
		want string
	}{
		{model.NewPlayerSearch(meta, "Rice"), response.TypeSearch},
		{model.NewCustomFilter(meta), response.TypeSearch},
		{model.NewComparison(meta, "Rice", "Saka"), response.TypeComparison},
		{model.NewYoungProspects(meta, 21), response.TypeScouting},
		{model.NewTopPerformers(meta, model.MetricGoals), response.TypeScouting},
		{model.NewTacticalAnalysis(meta, "Rodri"), response.TypeTactical},
		{model.Unknown{Meta: meta}, response.TypeUnknown},
	}
	for _, tc := range cases {
		t.Run(string(tc.req.Kind()), func(t *testing.T) {
			p := response.Format(outcome(tc.req))
			assert.Equal(t, tc.want, p.QueryType)
			assert.Equal(t, string(tc.req.Kind()), p.Metadata.Kind)
			assert.True(t, p.Success)
			assert.NotNil(t, p.Recommendations)
			assert.NotNil(t, p.Metadata.Insights)
			assert.NotNil(t, p.Metadata.Suggestions)
		})
	}
}

func TestFormat_Recommendations(t *testing.T) {
	req := model.NewTopPerformers(model.Meta{Query: "top assisters", Confidence: 0.9, Tier: model.TierPattern}, model.MetricAssists)
	o := outcome(req, model.Ranked{Player: player("Declan Rice", "Arsenal", 25), Score: 5})
	o.Narrative.Recommendations = []model.Recommendation{{Player: "Declan Rice", Reasoning: "creates from deep"}}

	p := response.Format(o)
	require.Len(t, p.Recommendations, 1)
	r := p.Recommendations[0]
	assert.Equal(t, "Declan Rice", r.Name)
	assert.Equal(t, "Arsenal", r.Club)
	assert.Equal(t, "Premier League", r.League)
	assert.Equal(t, "ENG", r.Nationality)
	require.NotNil(t, r.Age)
	assert.Equal(t, 25, *r.Age)
	assert.Equal(t, 5.0, r.Score)
	assert.Equal(t, 0.233, r.Stats[model.MetricGoalsPer90])
	assert.Contains(t, r.Stats, model.MetricAssists)
	assert.Equal(t, "creates from deep", r.Reasoning)
	assert.Len(t, r.ID, 16)

	again := response.Format(o)
	assert.Equal(t, r.ID, again.Recommendations[0].ID)

	assert.Equal(t, "req-1", p.Metadata.RequestID)
	assert.Equal(t, "top assisters", p.Metadata.Query)
	assert.Equal(t, int64(1500), p.Metadata.ProcessingTimeMS)
	assert.Equal(t, "narrative text", p.ResponseText)
	assert.Equal(t, "summary text", p.Summary)
}

func TestFormat_CapsRecommendations(t *testing.T) {
	items := make([]model.Ranked, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, model.Ranked{Player: player(fmt.Sprintf("Player %d", i), "Club", 20), Score: float64(30 - i)})
	}
	p := response.Format(outcome(model.NewCustomFilter(model.Meta{}), items...))
	assert.Len(t, p.Recommendations, model.MaxPayloadLimit)
	assert.Equal(t, 30, p.Metadata.TotalMatches)
}

func TestFormat_EmptyOutcomeKeepsContract(t *testing.T) {
	req := model.Unknown{Meta: model.Meta{Query: "weather tomorrow", Tier: model.TierNone}, Suggestions: []string{"Try: 'Find young midfielders'"}}
	o := model.Outcome{
		Request: req,
		Analysis: model.Analysis{
			Request:     req,
			Result:      model.RankedResult{},
			Empty:       true,
			Message:     "query not understood",
			Suggestions: req.Suggestions,
		},
	}

	p := response.Format(o)
	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, []any{}, m["recommendations"])
	assert.Equal(t, "query not understood", m["summary"])
	assert.Equal(t, "query not understood", m["response_text"])
	assert.Equal(t, response.TypeUnknown, m["query_type"])
	assert.Equal(t, []string{"Try: 'Find young midfielders'"}, p.Metadata.Suggestions)
}
