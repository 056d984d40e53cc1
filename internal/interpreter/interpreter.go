// Package interpreter turns free-text questions into typed analysis requests.
//
// Tiers are tried in order and the first one that produces a request wins:
// fixed templates, entity scanning, then an optional model-backed parser.
// A query no tier understands becomes model.Unknown with example queries.
package interpreter

import (
	"context"
	"strings"
	"time"

	"github.com/maxviazov/soccer-scout-service/internal/llm"
	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/rs/zerolog"
)

// Tier produces a request or declines.
type Tier func(ctx context.Context, query string) (model.Request, bool)

// Suggestions returned for queries no tier could interpret.
var Suggestions = []string{
	"Try: 'Compare [player1] vs [player2]'",
	"Try: 'Find young midfielders'",
	"Try: 'Top scorers in Premier League'",
	"Try: 'Show me defenders under 25'",
	"Try: 'Who can play alongside [player name]?'",
}

type namedTier struct {
	name string
	fn   Tier
}

type Interpreter struct {
	tiers []namedTier
	log   zerolog.Logger
}

type Option func(*options)

type options struct {
	completer llm.Completer
	timeout   time.Duration
}

// WithLLM enables the model-backed tier. A nil completer leaves it off.
func WithLLM(c llm.Completer, timeout time.Duration) Option {
	return func(o *options) {
		o.completer = c
		o.timeout = timeout
	}
}

// New builds the tier chain. With a model configured, entity scanning steps
// aside for tactical queries so the model sees them first, and runs again
// afterwards if the model declines.
func New(logger zerolog.Logger, opts ...Option) *Interpreter {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	l := logger.With().Str("module", "interpreter").Logger()

	tiers := []namedTier{{"pattern", PatternTier}}
	if o.completer != nil {
		tiers = append(tiers,
			namedTier{"dynamic", skipTactical(DynamicTier)},
			namedTier{"llm", LLMTier(o.completer, o.timeout, logger)},
			namedTier{"dynamic", DynamicTier},
		)
	} else {
		tiers = append(tiers, namedTier{"dynamic", DynamicTier})
	}
	return &Interpreter{tiers: tiers, log: l}
}

func skipTactical(t Tier) Tier {
	return func(ctx context.Context, query string) (model.Request, bool) {
		if isTactical(query) {
			return nil, false
		}
		return t(ctx, query)
	}
}

// Interpret never fails; an uninterpretable query yields model.Unknown.
func (i *Interpreter) Interpret(ctx context.Context, query string) model.Request {
	q := strings.TrimSpace(query)
	for _, t := range i.tiers {
		if err := ctx.Err(); err != nil {
			break
		}
		if req, ok := t.fn(ctx, q); ok {
			i.log.Info().Str("tier", t.name).Str("kind", string(req.Kind())).Float64("confidence", req.Info().Confidence).Msg("query interpreted")
			return req
		}
	}
	i.log.Info().Str("query", q).Msg("query not understood")
	suggestions := make([]string, len(Suggestions))
	copy(suggestions, Suggestions)
	return model.Unknown{
		Meta:        model.Meta{Query: q, Confidence: 0, Tier: model.TierNone},
		Suggestions: suggestions,
	}
}
