package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maxviazov/soccer-scout-service/internal/cache"
	"github.com/maxviazov/soccer-scout-service/internal/metrics"
	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/narrative"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/rs/zerolog"
)

// DefaultTimeout is the end-to-end budget for one query.
const DefaultTimeout = 50 * time.Second

const queryLogTimeout = 2 * time.Second

// PlayerStore is the part of the store the service needs for health and capabilities.
type PlayerStore interface {
	Status() model.DataStatus
	Ping(ctx context.Context) error
}

type Interpreter interface {
	Interpret(ctx context.Context, query string) model.Request
}

type Analyzer interface {
	Analyze(req model.Request) model.Analysis
}

// Deps are the collaborators of the scout service. Store, Interpreter,
// Analyzer and Narrative are required for queries; a nil Store puts the
// service in not-ready mode. QueryLog, Cache and Metrics are optional.
type Deps struct {
	Store       PlayerStore
	Interpreter Interpreter
	Analyzer    Analyzer
	Narrative   narrative.Generator
	QueryLog    repository.QueryLogRepository
	Cache       *cache.Cache[model.Outcome]
	Metrics     *metrics.Manager
	LLMEnabled  bool
}

type Option func(*scoutService)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *scoutService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxQueryLength overrides DefaultMaxQueryLength. Non-positive values are ignored.
func WithMaxQueryLength(n int) Option {
	return func(s *scoutService) {
		if n > 0 {
			s.maxLen = n
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *scoutService) { s.now = now }
}

type scoutService struct {
	deps    Deps
	timeout time.Duration
	maxLen  int
	now     func() time.Time
	log     zerolog.Logger
}

func NewScoutService(deps Deps, logger zerolog.Logger, opts ...Option) ScoutService {
	s := &scoutService{
		deps:    deps,
		timeout: DefaultTimeout,
		maxLen:  DefaultMaxQueryLength,
		now:     time.Now,
		log:     logger.With().Str("module", "service").Str("component", "scout").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.deps.QueryLog == nil {
		s.deps.QueryLog = repository.NopQueryLog{}
	}
	return s
}

func (s *scoutService) ready() bool {
	return s.deps.Store != nil && s.deps.Interpreter != nil && s.deps.Analyzer != nil && s.deps.Narrative != nil
}

func (s *scoutService) Query(ctx context.Context, text string) (model.Outcome, error) {
	start := s.now()
	q, err := validateQuery(text, s.maxLen)
	if err != nil {
		s.log.Debug().Int("length", len(text)).Interface("field_errors", FieldErrors(err)).Msg("query validation failed")
		return model.Outcome{}, err
	}
	if !s.ready() {
		return model.Outcome{}, ErrNotReady
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.run(ctx, q)
	out.Duration = s.now().Sub(start)
	if err != nil {
		s.deps.Metrics.ObserveQuery(kindOf(out.Request), tierOf(out.Request), metrics.OutcomeTimeout, out.Duration)
		s.log.Warn().Err(err).Str("query", q).Dur("took", out.Duration).Msg("query aborted")
		return out, err
	}

	outcome := metrics.OutcomeResults
	if out.Analysis.Empty {
		outcome = metrics.OutcomeEmpty
	}
	s.deps.Metrics.ObserveQuery(kindOf(out.Request), tierOf(out.Request), outcome, out.Duration)
	s.record(q, out)

	s.log.Info().
		Str("id", out.ID).
		Str("kind", kindOf(out.Request)).
		Str("tier", tierOf(out.Request)).
		Int("results", out.Analysis.Result.Len()).
		Bool("cached", out.Cached).
		Str("narrative", string(out.Narrative.Source)).
		Dur("took", out.Duration).
		Msg("query answered")
	return out, nil
}

func (s *scoutService) run(ctx context.Context, q string) (model.Outcome, error) {
	out := model.Outcome{ID: uuid.NewString()}

	out.Request = s.deps.Interpreter.Interpret(ctx, q)
	if err := budget(ctx, "interpretation"); err != nil {
		return out, err
	}

	key := ""
	if s.deps.Cache != nil {
		key = cache.Key(out.Request.CacheParts()...)
		cached, hit := s.deps.Cache.Get(key)
		s.deps.Metrics.CacheLookup(hit)
		if hit {
			out.Analysis = cached.Analysis
			out.Analysis.Request = out.Request
			out.Narrative = cached.Narrative
			out.Cached = true
			return out, nil
		}
	}

	out.Analysis = s.deps.Analyzer.Analyze(out.Request)
	if err := budget(ctx, "analysis"); err != nil {
		return out, err
	}

	out.Narrative = s.deps.Narrative.Generate(ctx, q, out.Analysis)
	s.deps.Metrics.Narrative(string(out.Narrative.Source))
	if err := budget(ctx, "narrative"); err != nil {
		return out, err
	}

	if key != "" && !out.Analysis.Empty {
		s.deps.Cache.Put(key, out)
	}
	return out, nil
}

// budget reports ErrProcessingTimeout once the query deadline has passed.
func budget(ctx context.Context, stage string) error {
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w during %s", ErrProcessingTimeout, stage)
		}
		return err
	}
	return nil
}

// record writes the audit entry. Failures only cost a warning.
func (s *scoutService) record(q string, out model.Outcome) {
	ctx, cancel := context.WithTimeout(context.Background(), queryLogTimeout)
	defer cancel()
	if err := s.deps.QueryLog.Record(ctx, model.NewQueryLogEntry(q, out, s.now())); err != nil {
		s.deps.Metrics.QueryLogFailed()
		s.log.Warn().Err(err).Str("id", out.ID).Msg("query log write failed")
	}
}

func (s *scoutService) Health(ctx context.Context) model.Health {
	h := model.Health{Status: "healthy", LLMEnabled: s.deps.LLMEnabled}
	if s.deps.Store == nil {
		h.Status = "unavailable"
		return h
	}
	h.DataStatus = s.deps.Store.Status()
	if err := s.deps.Store.Ping(ctx); err != nil {
		h.Status = "degraded"
	}
	return h
}

func (s *scoutService) Capabilities() model.Capabilities {
	c := model.Capabilities{
		Categories:     append([]string(nil), categories...),
		ExampleQueries: append([]string(nil), exampleQueries...),
		Positions:      append([]string(nil), positions...),
		Leagues:        []string{},
		LLMEnabled:     s.deps.LLMEnabled,
	}
	if s.deps.Store != nil {
		if leagues := s.deps.Store.Status().Leagues; len(leagues) > 0 {
			c.Leagues = leagues
		}
	}
	return c
}

func (s *scoutService) RecentQueries(ctx context.Context, page repository.Page) (repository.PageResult[model.QueryLogEntry], error) {
	res, err := s.deps.QueryLog.Recent(ctx, page)
	if err != nil {
		limit, offset := page.Window()
		s.log.Error().Err(err).Int("limit", limit).Int("offset", offset).Msg("list recent queries failed")
		return repository.PageResult[model.QueryLogEntry]{}, err
	}
	return res, nil
}

func kindOf(r model.Request) string {
	if r == nil {
		return "none"
	}
	return string(r.Kind())
}

func tierOf(r model.Request) string {
	if r == nil {
		return string(model.TierNone)
	}
	return string(r.Info().Tier)
}
