package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/soccer-scout-service/internal/cache"
	"github.com/maxviazov/soccer-scout-service/internal/llm"
	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/narrative"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/service"
)

type stubStore struct{ pingErr error }

func (stubStore) Status() model.DataStatus {
	return model.DataStatus{TotalPlayers: 3, TotalMetrics: 12, Sources: []string{"standard"}, Leagues: []string{"La Liga", "Premier League"}}
}
func (s stubStore) Ping(context.Context) error { return s.pingErr }

type stubInterpreter struct {
	req   model.Request
	delay time.Duration
	calls int
}

func (s *stubInterpreter) Interpret(ctx context.Context, q string) model.Request {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	if s.req != nil {
		return s.req
	}
	return model.NewPlayerSearch(model.Meta{Query: q, Confidence: 0.9, Tier: model.TierPattern}, "Pedri")
}

type stubAnalyzer struct {
	empty bool
	calls int
}

func (s *stubAnalyzer) Analyze(req model.Request) model.Analysis {
	s.calls++
	if s.empty {
		return model.Analysis{Request: req, Empty: true, Message: "no players", Result: model.RankedResult{Items: []model.Ranked{}}}
	}
	p := &model.PlayerRecord{
		Key:      model.PlayerKey{League: "La Liga", Season: "2324", Team: "Barcelona", Name: "Pedri"},
		Position: "Midfielder",
		Metrics:  map[string]float64{model.MetricAge: 21, model.MetricMinutes: 2400},
	}
	return model.Analysis{
		Request: req,
		Summary: "Found 1 player(s) matching 'Pedri'",
		Result:  model.RankedResult{Items: []model.Ranked{{Player: p, Score: 1}}, Matched: 1},
	}
}

type stubQueryLog struct {
	repository.NopQueryLog
	mu      sync.Mutex
	entries []model.QueryLogEntry
	err     error
}

func (s *stubQueryLog) Record(_ context.Context, e model.QueryLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

type failingCompleter struct{}

func (failingCompleter) Complete(context.Context, llm.Prompt) (string, error) {
	return "", errors.New("rate limited")
}

func newService(t *testing.T, deps service.Deps, opts ...service.Option) service.ScoutService {
	t.Helper()
	logger := zerolog.New(io.Discard)
	if deps.Store == nil {
		deps.Store = stubStore{}
	}
	if deps.Interpreter == nil {
		deps.Interpreter = &stubInterpreter{}
	}
	if deps.Analyzer == nil {
		deps.Analyzer = &stubAnalyzer{}
	}
	if deps.Narrative == nil {
		deps.Narrative = narrative.NewGenerator(nil, 0, logger)
	}
	return service.NewScoutService(deps, logger, opts...)
}

func TestScoutService_Query_Validation(t *testing.T) {
	svc := newService(t, service.Deps{})

	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   \t "},
		{"too long", strings.Repeat("é", service.DefaultMaxQueryLength+1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Query(context.Background(), tc.input)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			fe := service.FieldErrors(err)
			require.Len(t, fe, 1)
			assert.Equal(t, "query", fe[0].Field)
		})
	}

	_, err := svc.Query(context.Background(), strings.Repeat("é", service.DefaultMaxQueryLength))
	assert.NoError(t, err)
}

func TestScoutService_Query_NotReady(t *testing.T) {
	logger := zerolog.New(io.Discard)
	svc := service.NewScoutService(service.Deps{}, logger)

	_, err := svc.Query(context.Background(), "compare Pedri vs Gavi")
	assert.ErrorIs(t, err, service.ErrNotReady)
	assert.Equal(t, "unavailable", svc.Health(context.Background()).Status)
}

func TestScoutService_Query_Success(t *testing.T) {
	qlog := &stubQueryLog{}
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	svc := newService(t, service.Deps{QueryLog: qlog}, service.WithClock(func() time.Time { return at }))

	out, err := svc.Query(context.Background(), "  tell me about Pedri  ")
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, model.KindPlayerSearch, out.Request.Kind())
	assert.Equal(t, 1, out.Analysis.Result.Len())
	assert.Equal(t, model.NarrativeTemplate, out.Narrative.Source)
	assert.Contains(t, out.Narrative.Text, "Pedri (Barcelona)")
	assert.False(t, out.Cached)

	require.Len(t, qlog.entries, 1)
	e := qlog.entries[0]
	assert.Equal(t, out.ID, e.ID)
	assert.Equal(t, "tell me about Pedri", e.Query)
	assert.Equal(t, model.KindPlayerSearch, e.Kind)
	assert.Equal(t, model.TierPattern, e.Tier)
	assert.Equal(t, 1, e.ResultCount)
	assert.Equal(t, at, e.CreatedAt)
}

func TestScoutService_Query_LLMFailureStillAnswers(t *testing.T) {
	logger := zerolog.New(io.Discard)
	svc := newService(t, service.Deps{
		Narrative:  narrative.NewGenerator(failingCompleter{}, time.Second, logger),
		LLMEnabled: true,
	})

	out, err := svc.Query(context.Background(), "tell me about Pedri")
	require.NoError(t, err)
	assert.Equal(t, model.NarrativeTemplate, out.Narrative.Source)
	assert.NotEmpty(t, out.Narrative.Text)
}

func TestScoutService_Query_Cache(t *testing.T) {
	analyzer := &stubAnalyzer{}
	c := cache.New[model.Outcome]()
	svc := newService(t, service.Deps{Analyzer: analyzer, Cache: c})

	first, err := svc.Query(context.Background(), "tell me about Pedri")
	require.NoError(t, err)
	second, err := svc.Query(context.Background(), "tell me about Pedri")
	require.NoError(t, err)

	assert.Equal(t, 1, analyzer.calls)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Narrative.Text, second.Narrative.Text)
	assert.Equal(t, 1, c.Len())
}

func TestScoutService_Query_EmptyResultsNotCached(t *testing.T) {
	analyzer := &stubAnalyzer{empty: true}
	c := cache.New[model.Outcome]()
	svc := newService(t, service.Deps{Analyzer: analyzer, Cache: c})

	for i := 0; i < 2; i++ {
		out, err := svc.Query(context.Background(), "tell me about Nobody")
		require.NoError(t, err)
		assert.True(t, out.Analysis.Empty)
	}
	assert.Equal(t, 2, analyzer.calls)
	assert.Equal(t, 0, c.Len())
}

func TestScoutService_Query_QueryLogFailureIsNotFatal(t *testing.T) {
	svc := newService(t, service.Deps{QueryLog: &stubQueryLog{err: errors.New("disk full")}})

	out, err := svc.Query(context.Background(), "tell me about Pedri")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Analysis.Result.Len())
}

func TestScoutService_Query_Timeout(t *testing.T) {
	interp := &stubInterpreter{delay: time.Second}
	analyzer := &stubAnalyzer{}
	svc := newService(t, service.Deps{Interpreter: interp, Analyzer: analyzer}, service.WithTimeout(20*time.Millisecond))

	_, err := svc.Query(context.Background(), "tell me about Pedri")
	require.ErrorIs(t, err, service.ErrProcessingTimeout)
	assert.Equal(t, 0, analyzer.calls)
}

func TestScoutService_Health(t *testing.T) {
	svc := newService(t, service.Deps{LLMEnabled: true})
	h := svc.Health(context.Background())
	assert.Equal(t, "healthy", h.Status)
	assert.True(t, h.LLMEnabled)
	assert.Equal(t, 3, h.DataStatus.TotalPlayers)

	degraded := newService(t, service.Deps{Store: stubStore{pingErr: errors.New("empty")}})
	assert.Equal(t, "degraded", degraded.Health(context.Background()).Status)
}

func TestScoutService_Capabilities(t *testing.T) {
	caps := newService(t, service.Deps{}).Capabilities()
	assert.Contains(t, caps.Categories, "tactical_analysis")
	assert.NotEmpty(t, caps.ExampleQueries)
	assert.Equal(t, []string{"La Liga", "Premier League"}, caps.Leagues)
	assert.False(t, caps.LLMEnabled)
}

func TestScoutService_RecentQueries(t *testing.T) {
	svc := newService(t, service.Deps{})
	res, err := svc.RecentQueries(context.Background(), repository.Page{Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}
