package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/soccer-scout-service/internal/model"
	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/service"
)

type stubService struct {
	out      model.Outcome
	err      error
	health   model.Health
	page     repository.Page
	released bool
}

func (s *stubService) Query(context.Context, string) (model.Outcome, error) { return s.out, s.err }
func (s *stubService) Health(context.Context) model.Health { return s.health }
func (s *stubService) Capabilities() model.Capabilities {
	return model.Capabilities{Categories: []string{"comparison"}}
}
func (s *stubService) RecentQueries(_ context.Context, p repository.Page) (repository.PageResult[model.QueryLogEntry], error) {
	s.page = p
	return repository.PageResult[model.QueryLogEntry]{Items: []model.QueryLogEntry{{ID: "q1"}}, Total: 1}, nil
}

func run(t *testing.T, svc *stubService, args ...string) (string, error) {
	t.Helper()
	open := func(context.Context, string, bool) (service.ScoutService, func(), error) {
		return svc, func() { svc.released = true }, nil
	}
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func sampleOutcome() model.Outcome {
	req := model.NewTopPerformers(model.Meta{Query: "top scorers", Confidence: 0.8, Tier: model.TierPattern}, model.MetricGoals)
	p := &model.PlayerRecord{
		Key:      model.PlayerKey{League: "ENG-Premier League", Season: "2425", Team: "Liverpool", Name: "Mohamed Salah"},
		Position: "Forward",
		Metrics:  map[string]float64{model.MetricAge: 32, model.MetricGoals: 29},
	}
	return model.Outcome{
		Request:   req,
		Analysis:  model.Analysis{Request: req, Summary: "Top 1 by goals", Result: model.RankedResult{Items: []model.Ranked{{Player: p, Score: 29}}, Matched: 1}},
		Narrative: model.Narrative{Text: "Salah leads the league in goals.", Source: model.NarrativeTemplate},
	}
}

func TestQuery_Text(t *testing.T) {
	svc := &stubService{out: sampleOutcome()}
	out, err := run(t, svc, "query", "top", "scorers")
	require.NoError(t, err)
	assert.Contains(t, out, "Salah leads the league in goals.")
	assert.Contains(t, out, "Mohamed Salah")
	assert.Contains(t, out, "Liverpool")
	assert.True(t, svc.released)
}

func TestQuery_JSON(t *testing.T) {
	svc := &stubService{out: sampleOutcome()}
	out, err := run(t, svc, "query", "--json", "top scorers")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, "scouting", body["query_type"])
	assert.Equal(t, true, body["success"])
}

func TestQuery_Errors(t *testing.T) {
	_, err := run(t, &stubService{}, "query")
	assert.Error(t, err, "question argument is required")

	_, err = run(t, &stubService{err: service.InvalidField("query", "must not be empty")}, "query", " ")
	assert.EqualError(t, err, "query must not be empty")

	_, err = run(t, &stubService{err: service.ErrNotReady}, "query", "find defenders")
	assert.ErrorIs(t, err, service.ErrNotReady)
}

func TestHealth(t *testing.T) {
	out, err := run(t, &stubService{health: model.Health{Status: "healthy"}}, "health")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "healthy"`)

	_, err = run(t, &stubService{health: model.Health{Status: "unavailable"}}, "health")
	assert.Error(t, err)
}

func TestRecentAndCapabilities(t *testing.T) {
	svc := &stubService{}
	out, err := run(t, svc, "recent", "--limit", "5", "--offset", "2")
	require.NoError(t, err)
	assert.Equal(t, repository.Page{Limit: 5, Offset: 2}, svc.page)
	assert.Contains(t, out, `"total": 1`)

	out, err = run(t, svc, "capabilities")
	require.NoError(t, err)
	assert.Contains(t, out, "comparison")
}

func TestOpenFailure(t *testing.T) {
	cmd := newRootCmd(func(context.Context, string, bool) (service.ScoutService, func(), error) {
		return nil, nil, errors.New("config file not found")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"health"})
	assert.EqualError(t, cmd.Execute(), "config file not found")
}
