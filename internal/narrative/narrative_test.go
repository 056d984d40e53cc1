package narrative

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/maxviazov/soccer-scout-service/internal/llm"
	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompleter struct {
	reply  string
	err    error
	block  bool
	prompt llm.Prompt
}

func (s *stubCompleter) Complete(ctx context.Context, p llm.Prompt) (string, error) {
	s.prompt = p
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.reply, s.err
}

func analysis(n int) model.Analysis {
	items := make([]model.Ranked, n)
	for i := range items {
		items[i] = model.Ranked{
			Player: &model.PlayerRecord{
				Key:     model.PlayerKey{League: "ENG-Premier League", Team: "Arsenal", Name: "Player " + string(rune('A'+i))},
				Metrics: map[string]float64{"age": 21, "minutes": 1800, "goals": 5},
			},
			Score: float64(n - i),
		}
	}
	return model.Analysis{
		Result:   model.RankedResult{Items: items, Matched: n},
		Summary:  "Top performers in goals",
		Insights: []string{"Average age of candidates: 21.0 years"},
	}
}

func newTestGenerator(c llm.Completer, timeout time.Duration) Generator {
	return NewGenerator(c, timeout, zerolog.New(io.Discard))
}

func TestGenerate_StructuredReply(t *testing.T) {
	stub := &stubCompleter{reply: `{"summary":"Player A is the pick.","recommendations":[{"player":"Player A","reasoning":"Most goals"}],"tactical_analysis":"Fits a front three."}`}
	got := newTestGenerator(stub, 0).Generate(context.Background(), "best scorers", analysis(20))

	assert.Equal(t, model.NarrativeLLM, got.Source)
	assert.Equal(t, "Player A is the pick.\n\nFits a front three.", got.Text)
	assert.Equal(t, []model.Recommendation{{Player: "Player A", Reasoning: "Most goals"}}, got.Recommendations)
	assert.Equal(t, "Fits a front three.", got.TacticalAnalysis)

	// Only the first 15 candidates are sent.
	assert.Contains(t, stub.prompt.User, "15. Player O")
	assert.NotContains(t, stub.prompt.User, "16. Player P")
	assert.True(t, stub.prompt.JSON)
}

func TestGenerate_FreeTextReply(t *testing.T) {
	stub := &stubCompleter{reply: "Player A stands out this season."}
	got := newTestGenerator(stub, 0).Generate(context.Background(), "q", analysis(2))
	assert.Equal(t, model.NarrativeLLM, got.Source)
	assert.Equal(t, "Player A stands out this season.", got.Text)
}

func TestGenerate_FallsBackToTemplate(t *testing.T) {
	tests := []struct {
		name string
		c    llm.Completer
	}{
		{name: "no client", c: nil},
		{name: "rate limited", c: &stubCompleter{err: errors.New("llm status 429: rate limited")}},
		{name: "timeout", c: &stubCompleter{block: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestGenerator(tt.c, 20*time.Millisecond).Generate(context.Background(), "q", analysis(3))
			assert.Equal(t, model.NarrativeTemplate, got.Source)
			assert.Contains(t, got.Text, "Found 3 players matching your criteria; top result: Player A (Arsenal).")
			assert.True(t, strings.HasPrefix(got.Text, "Top performers in goals"))
		})
	}
}

func TestGenerate_EmptySkipsModel(t *testing.T) {
	stub := &stubCompleter{reply: `{"summary":"x"}`}
	a := model.Analysis{
		Result:      model.RankedResult{Items: []model.Ranked{}},
		Empty:       true,
		Message:     "No players found matching criteria",
		Suggestions: []string{"Try reducing minimum minutes (currently 500)"},
	}
	got := newTestGenerator(stub, 0).Generate(context.Background(), "q", a)
	require.Equal(t, model.NarrativeTemplate, got.Source)
	assert.Equal(t, "No players found matching criteria\n\nSuggestions:\n- Try reducing minimum minutes (currently 500)", got.Text)
	assert.Empty(t, stub.prompt.User)
}
