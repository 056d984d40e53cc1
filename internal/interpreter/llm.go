package interpreter

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
	llmConfidence     = 0.8
	llmTemperature    = 0.1
	llmMaxTokens      = 500
	DefaultLLMTimeout = 10 * time.Second
)

const parseSystemPrompt = `You are a soccer analytics expert. Parse natural language queries into structured analysis requests.

Focus on extracting:
1. Player names mentioned
2. Position requirements (midfielder, defender, forward, goalkeeper)
3. League preferences (Premier League, La Liga, Serie A, Bundesliga, Ligue 1)
4. Age constraints (young prospects, experienced, etc.)
5. Tactical requirements (playing style, formation fit, partner compatibility)
6. Statistical priorities (goals, assists, progressive_passes, progressive_carries, tackles, interceptions)

Return only a JSON object with these fields:
{
    "query_type": "player_search|comparison|young_prospects|top_performers|custom_filter|tactical_analysis",
    "players_mentioned": ["player1", "player2"],
    "position": "Midfielder|Defender|Forward|Goalkeeper",
    "league": "ENG-Premier League|ESP-La Liga|ITA-Serie A|GER-Bundesliga|FRA-Ligue 1",
    "age_constraints": {"min": 18, "max": 35},
    "tactical_context": "Description of tactical requirements",
    "priority_stats": ["goals", "assists", "progressive_passes"],
    "reasoning": "Explanation of what the user is looking for",
    "confidence": 0.8
}

Omit fields you cannot infer. If the query asks for players to complement or partner with someone, use "tactical_analysis".`

type parsedQuery struct {
	QueryType        string   `json:"query_type"`
	PlayersMentioned []string `json:"players_mentioned"`
	Position         string   `json:"position"`
	League           string   `json:"league"`
	AgeConstraints   struct {
		Min *int `json:"min"`
		Max *int `json:"max"`
	} `json:"age_constraints"`
	TacticalContext string   `json:"tactical_context"`
	PriorityStats   []string `json:"priority_stats"`
	Reasoning       string   `json:"reasoning"`
	Confidence      *float64 `json:"confidence"`
}

// LLMTier asks a model to turn tactical language into structured criteria.
// Every failure declines; the model never fails the query.
func LLMTier(c llm.Completer, timeout time.Duration, logger zerolog.Logger) Tier {
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	log := logger.With().Str("module", "interpreter").Str("component", "llm_tier").Logger()

	return func(ctx context.Context, query string) (model.Request, bool) {
		if c == nil || !isTactical(query) {
			return nil, false
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		content, err := c.Complete(ctx, llm.Prompt{
			System:      parseSystemPrompt,
			User:        "Parse this soccer query: " + query,
			Temperature: llmTemperature,
			MaxTokens:   llmMaxTokens,
			JSON:        true,
		})
		if err != nil {
			log.Warn().Err(err).Msg("llm parse failed")
			return nil, false
		}
		var parsed parsedQuery
		if err := llm.DecodeJSON(content, &parsed); err != nil {
			log.Warn().Err(err).Str("content", truncateForLog(content)).Msg("llm reply rejected")
			return nil, false
		}
		req, ok := parsed.toRequest(query)
		if !ok {
			log.Debug().Str("query_type", parsed.QueryType).Msg("llm reply not usable")
		}
		return req, ok
	}
}

func (p parsedQuery) toRequest(query string) (model.Request, bool) {
	meta := model.Meta{Query: query, Confidence: llmConfidence, Tier: model.TierLLM}
	if p.Confidence != nil && *p.Confidence >= 0 && *p.Confidence <= 1 {
		meta.Confidence = *p.Confidence
	}

	var players []string
	for _, name := range p.PlayersMentioned {
		if name = strings.TrimSpace(name); name != "" {
			players = append(players, name)
		}
	}
	first := ""
	if len(players) > 0 {
		first = players[0]
	}
	position := canonical(positionAliases, positionRe, p.Position)
	league := canonical(leagueAliases, leagueRe, p.League)
	stats := make([]string, 0, len(p.PriorityStats))
	for _, s := range p.PriorityStats {
		if stat := canonical(statAliases, statRe, s); stat != "" {
			stats = append(stats, stat)
		}
	}
	minMinutes := extractMinutes(query)
	ageMin, ageMax := p.AgeConstraints.Min, p.AgeConstraints.Max

	switch model.Kind(strings.ToLower(strings.TrimSpace(p.QueryType))) {
	case model.KindTacticalAnalysis:
		req := model.NewTacticalAnalysis(meta, first)
		req.Context = p.TacticalContext
		req.PriorityStats = stats
		req.Reasoning = p.Reasoning
		req.Criteria.Position = position
		req.Criteria.League = league
		req.Criteria.AgeMin, req.Criteria.AgeMax = ageMin, ageMax
		req.Criteria.MinMinutes = minMinutes
		return req, true

	case model.KindComparison:
		if len(players) < 2 {
			return nil, false
		}
		req := model.NewComparison(meta, players...)
		req.MinMinutes = minMinutes
		return req, true

	case model.KindYoungProspects:
		maxAge := model.DefaultProspectMaxAge
		if ageMax != nil {
			// The model reports an inclusive maximum; prospects take an exclusive ceiling.
			maxAge = *ageMax + 1
		}
		req := model.NewYoungProspects(meta, maxAge)
		req.Criteria.Position = position
		req.Criteria.League = league
		req.Criteria.MinMinutes = minMinutes
		return req, true

	case model.KindTopPerformers:
		stat := model.MetricGoals
		if len(stats) > 0 {
			stat = stats[0]
		}
		req := model.NewTopPerformers(meta, stat)
		req.Criteria.Position = position
		req.Criteria.League = league
		req.Criteria.AgeMin, req.Criteria.AgeMax = ageMin, ageMax
		req.Criteria.MinMinutes = minMinutes
		return req, true

	default:
		if first != "" {
			req := model.NewPlayerSearch(meta, first)
			req.Criteria.Position = position
			req.Criteria.League = league
			req.Criteria.MinMinutes = minMinutes
			return req, true
		}
		if position == "" && league == "" && ageMin == nil && ageMax == nil && len(stats) == 0 {
			return nil, false
		}
		req := model.NewCustomFilter(meta)
		req.Criteria.Position = position
		req.Criteria.League = league
		req.Criteria.AgeMin, req.Criteria.AgeMax = ageMin, ageMax
		req.Criteria.MinMinutes = minMinutes
		if len(stats) > 0 {
			req.Criteria.SortKey = stats[0]
		}
		return req, true
	}
}

func truncateForLog(s string) string {
	const limit = 200
	if len(s) <= limit {
		return s
	}
	return fmt.Sprintf("%s... (%d bytes)", s[:limit], len(s))
}
