// Package mcpserver exposes the league queries as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Dosada05/league-stats/services"
)

type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type NoArgs struct{}

type WeekArgs struct {
	Week int `json:"week" jsonschema:"Week number, starting at 1"`
}

type StandingsArgs struct {
	Week int `json:"week,omitempty" jsonschema:"Standings as of this week (0 = latest played week)"`
}

type Server struct {
	stats    *services.StatsService
	server   *mcp.Server
	registry []ToolInfo
}

func New(stats *services.StatsService, version string) *Server {
	s := &Server{
		stats: stats,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    "league-stats",
			Version: version,
		}, nil),
		registry: make([]ToolInfo, 0, 6),
	}

	addTool(s, &mcp.Tool{
		Name:        "current_week",
		Description: "Current week of the season (first week without scores) and number of scheduled weeks",
	}, s.currentWeek)
	addTool(s, &mcp.Tool{
		Name:        "week_matchups",
		Description: "Head-to-head results for a played week, keyed by player",
	}, s.weekMatchups)
	addTool(s, &mcp.Tool{
		Name:        "week_ranks",
		Description: "Rank bonus earned by each player in a played week",
	}, s.weekRanks)
	addTool(s, &mcp.Tool{
		Name:        "season_summary",
		Description: "Weekly and cumulative totals for every player",
	}, s.seasonSummary)
	addTool(s, &mcp.Tool{
		Name:        "season_standings",
		Description: "Season stats table (wins, rank points, expected wins, close games) as of a week",
	}, s.seasonStandings)
	addTool(s, &mcp.Tool{
		Name:        "week_view",
		Description: "Weekly chart: players sorted by points with matchup numbers and bonuses",
	}, s.weekView)

	return s
}

func addTool[T any](s *Server, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	s.registry = append(s.registry, ToolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(s.server, tool, handler)
}

// Handler serves the streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func (s *Server) Tools() []ToolInfo {
	out := make([]ToolInfo, len(s.registry))
	copy(out, s.registry)
	return out
}

func (s *Server) currentWeek(ctx context.Context, req *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(s.stats.CurrentWeek(ctx))
}

func (s *Server) weekMatchups(ctx context.Context, req *mcp.CallToolRequest, args WeekArgs) (*mcp.CallToolResult, any, error) {
	if args.Week <= 0 {
		return toolError(fmt.Errorf("week is required")), nil, nil
	}
	return toolJSON(s.stats.Matchups(ctx, args.Week))
}

func (s *Server) weekRanks(ctx context.Context, req *mcp.CallToolRequest, args WeekArgs) (*mcp.CallToolResult, any, error) {
	if args.Week <= 0 {
		return toolError(fmt.Errorf("week is required")), nil, nil
	}
	return toolJSON(s.stats.RankBonuses(ctx, args.Week))
}

func (s *Server) seasonSummary(ctx context.Context, req *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	return toolJSON(s.stats.Summary(ctx))
}

func (s *Server) seasonStandings(ctx context.Context, req *mcp.CallToolRequest, args StandingsArgs) (*mcp.CallToolResult, any, error) {
	if args.Week < 0 {
		return toolError(fmt.Errorf("week must not be negative")), nil, nil
	}
	return toolJSON(s.stats.Standings(ctx, args.Week))
}

func (s *Server) weekView(ctx context.Context, req *mcp.CallToolRequest, args WeekArgs) (*mcp.CallToolResult, any, error) {
	if args.Week <= 0 {
		return toolError(fmt.Errorf("week is required")), nil, nil
	}
	return toolJSON(s.stats.WeekView(ctx, args.Week))
}

func toolJSON[T any](v T, err error) (*mcp.CallToolResult, any, error) {
	if err != nil {
		return toolError(err), nil, nil
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
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
