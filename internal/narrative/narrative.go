// Package narrative writes the human-readable explanation of an analysis.
package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maxviazov/soccer-scout-service/internal/llm"
	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout = 30 * time.Second
	promptPlayers  = 15
	temperature    = 0.3
	maxTokens      = 1200
)

// Generator never fails: any model problem yields the template narrative.
type Generator interface {
	Generate(ctx context.Context, query string, a model.Analysis) model.Narrative
}

type generator struct {
	llm     llm.Completer
	timeout time.Duration
	log     zerolog.Logger
}

// NewGenerator returns a generator. A nil completer always uses the template.
func NewGenerator(c llm.Completer, timeout time.Duration, logger zerolog.Logger) Generator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	l := logger.With().Str("module", "narrative").Logger()
	return &generator{llm: c, timeout: timeout, log: l}
}

func (g *generator) Generate(ctx context.Context, query string, a model.Analysis) model.Narrative {
	if g.llm == nil || a.Empty || a.Result.Len() == 0 {
		return Template(a)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	content, err := g.llm.Complete(ctx, llm.Prompt{
		System:      systemPrompt,
		User:        buildPrompt(query, a),
		Temperature: temperature,
		MaxTokens:   maxTokens,
		JSON:        true,
	})
	if err != nil {
		g.log.Warn().Err(err).Dur("took", time.Since(start)).Msg("narrative fell back to template")
		return Template(a)
	}

	var reply struct {
		Summary         string                 `json:"summary"`
		Recommendations []model.Recommendation `json:"recommendations"`
		Tactical        string                 `json:"tactical_analysis"`
	}
	if err := llm.DecodeJSON(content, &reply); err != nil || strings.TrimSpace(reply.Summary) == "" {
		// A plain-prose answer is still usable.
		g.log.Debug().Msg("narrative reply was not structured")
		return model.Narrative{Text: strings.TrimSpace(content), Source: model.NarrativeLLM}
	}

	text := strings.TrimSpace(reply.Summary)
	if t := strings.TrimSpace(reply.Tactical); t != "" {
		text += "\n\n" + t
	}
	g.log.Debug().Dur("took", time.Since(start)).Int("recommendations", len(reply.Recommendations)).Msg("narrative generated")
	return model.Narrative{
		Text:             text,
		Source:           model.NarrativeLLM,
		Recommendations:  reply.Recommendations,
		TacticalAnalysis: strings.TrimSpace(reply.Tactical),
	}
}

const systemPrompt = `You are an expert soccer scout. Answer the user's question using ONLY the candidate data provided.
Return a JSON object:
{
  "summary": "2-4 sentences that directly answer the question",
  "recommendations": [{"player": "exact player name from the data", "reasoning": "one sentence grounded in the stats"}],
  "tactical_analysis": "optional short paragraph on fit and playing style"
}
Recommend at most 5 players. Never invent players or statistics.`

func buildPrompt(query string, a model.Analysis) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", query)
	if a.Summary != "" {
		fmt.Fprintf(&b, "Analysis: %s\n", a.Summary)
	}
	if ref := a.Result.Reference; ref != nil {
		fmt.Fprintf(&b, "Reference player: %s\n", describe(ref))
	}
	b.WriteString("\nCandidates (ranked):\n")
	for i, it := range a.Result.Items {
		if i == promptPlayers {
			break
		}
		fmt.Fprintf(&b, "%d. %s | score %.3f\n", i+1, describe(it.Player), it.Score)
	}
	if len(a.Insights) > 0 {
		b.WriteString("\nInsights:\n")
		for _, s := range a.Insights {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	return b.String()
}

func describe(p *model.PlayerRecord) string {
	age := "?"
	if v, ok := p.Age(); ok {
		age = fmt.Sprint(v)
	}
	return fmt.Sprintf("%s (%s, %s) %s, age %s, %d min, %g G, %g A, %.2f G/90, %.2f A/90, %g prog passes, %g prog carries, %.2f def actions/90",
		p.Key.Name, p.Key.Team, p.Key.League, p.Position, age, int(p.Minutes()),
		p.Value(model.MetricGoals), p.Value(model.MetricAssists),
		p.Value(model.MetricGoalsPer90), p.Value(model.MetricAssistsPer90),
		p.Value(model.MetricProgressivePasses), p.Value(model.MetricProgressiveCarries),
		p.DefensiveActions())
}

// Template is the deterministic narrative used whenever the model is not.
func Template(a model.Analysis) model.Narrative {
	var b strings.Builder
	if a.Empty || a.Result.Len() == 0 {
		msg := a.Message
		if msg == "" {
			msg = "No players matched your query."
		}
		b.WriteString(msg)
		if len(a.Suggestions) > 0 {
			b.WriteString("\n\nSuggestions:\n- ")
			b.WriteString(strings.Join(a.Suggestions, "\n- "))
		}
		return model.Narrative{Text: b.String(), Source: model.NarrativeTemplate}
	}

	top := a.Result.Items[0].Player
	if a.Summary != "" {
		b.WriteString(a.Summary)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Found %d players matching your criteria; top result: %s (%s).", a.Result.Matched, top.Key.Name, top.Key.Team)
	if len(a.Insights) > 0 {
		b.WriteString("\n\n- ")
		b.WriteString(strings.Join(a.Insights, "\n- "))
	}
	return model.Narrative{Text: b.String(), Source: model.NarrativeTemplate}
}
