package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maxviazov/soccer-scout-service/internal/repository"
	"github.com/maxviazov/soccer-scout-service/internal/service"
	"github.com/maxviazov/soccer-scout-service/pkg/response"
)

type QueryArgs struct {
	Query string `json:"query" jsonschema:"Natural-language scouting question, e.g. 'Find young midfielders under 21' (required)"`
}

type RecentArgs struct {
	Limit  int `json:"limit,omitempty" jsonschema:"Maximum entries (default 50, max 200)"`
	Offset int `json:"offset,omitempty" jsonschema:"Entries to skip"`
}

type NoArgs struct{}

type tools struct {
	svc service.ScoutService
}

func newServer(svc service.ScoutService, version string) *mcp.Server {
	if version == "" {
		version = "0.1.0"
	}
	server := mcp.NewServer(&mcp.Implementation{Name: "soccer-scout", Version: version}, nil)
	t := &tools{svc: svc}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scout_query",
		Description: "Answer a scouting question: player search, comparison, young prospects, top performers, stat filters or tactical fit",
	}, t.query)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scout_capabilities",
		Description: "Query categories, example questions, leagues and positions",
	}, t.capabilities)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scout_health",
		Description: "Loaded player data coverage and whether the language model is configured",
	}, t.health)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "scout_recent_queries",
		Description: "Most recent logged queries, newest first",
	}, t.recent)
	return server
}

func (t *tools) query(ctx context.Context, _ *mcp.CallToolRequest, args QueryArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Query) == "" {
		return toolError(errors.New("query is required")), nil, nil
	}
	out, err := t.svc.Query(ctx, args.Query)
	if err != nil {
		if fe := service.FieldErrors(err); len(fe) > 0 {
			return toolError(fmt.Errorf("%s %s", fe[0].Field, fe[0].Message)), nil, nil
		}
		return toolError(err), nil, nil
	}
	return toolJSON(response.Format(out))
}

func (t *tools) capabilities(_ context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.svc.Capabilities())
}

func (t *tools) health(ctx context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(t.svc.Health(ctx))
}

func (t *tools) recent(ctx context.Context, _ *mcp.CallToolRequest, args RecentArgs) (*mcp.CallToolResult, any, error) {
	res, err := t.svc.RecentQueries(ctx, repository.Page{Limit: args.Limit, Offset: args.Offset})
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(res)
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(raw)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
