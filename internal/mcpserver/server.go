// Package mcpserver exposes the signal engine and the run ledger as MCP tools
// so editors and agents can check a decision text or inspect the last run.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clearframe/clearframe/internal/ledger"
	"github.com/clearframe/clearframe/internal/logging"
	"github.com/clearframe/clearframe/internal/signal"
	"github.com/clearframe/clearframe/internal/ticket"
	"github.com/clearframe/clearframe/internal/types"
)

// Name is the MCP implementation name.
const Name = "clearframe"

// ErrEmptyText is returned by analyze_text when no text is given.
var ErrEmptyText = errors.New("text is required")

// Server wraps the MCP SDK server with clearframe tools registered.
type Server struct {
	MCPServer *sdkmcp.Server

	engine *signal.Engine
	ledger *ledger.Ledger
	log    *slog.Logger
}

// NewServer creates a server backed by engine and led.
func NewServer(version string, engine *signal.Engine, led *ledger.Ledger) *Server {
	s := &Server{
		MCPServer: sdkmcp.NewServer(&sdkmcp.Implementation{Name: Name, Version: version}, nil),
		engine:    engine,
		ledger:    led,
		log:       logging.New("mcp"),
	}
	s.registerTools()
	return s
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("serving over stdio")
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "analyze_text",
		Description: "Score a decision text for sunk-cost reasoning. Returns classification, signal and intervention; explain adds reasoning and a counterfactual.",
	}, s.handleAnalyzeText)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "replay_last_run",
		Description: "Replay the most recent run that produced artifacts. Read-only.",
	}, s.handleReplayLastRun)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_runs",
		Description: "List the run index, oldest first.",
	}, s.handleListRuns)
}

type analyzeTextInput struct {
	Text    string `json:"text" jsonschema:"decision text to analyze"`
	Explain bool   `json:"explain,omitempty" jsonschema:"include reasoning, counterfactual and consultation"`
}

type replayInput struct{}

type replayOutput struct {
	Replay *ledger.Replay `json:"replay"`
	Text   string         `json:"text"`
}

type listRunsInput struct{}

type listRunsOutput struct {
	Runs []types.RunRecord `json:"runs"`
}

func (s *Server) handleAnalyzeText(ctx context.Context, _ *sdkmcp.CallToolRequest, in analyzeTextInput) (*sdkmcp.CallToolResult, types.Analysis, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, types.Analysis{}, ErrEmptyText
	}
	a := s.engine.Analyze(ctx, in.Text, in.Explain)
	a.BiasType, a.SignalStrength = ticket.ClassifyBias(in.Text, "")
	s.log.Debug("analyze_text", "classification", a.Classification, "signal", a.Signal)
	return nil, a, nil
}

func (s *Server) handleReplayLastRun(_ context.Context, _ *sdkmcp.CallToolRequest, _ replayInput) (*sdkmcp.CallToolResult, replayOutput, error) {
	r, err := s.ledger.Replay()
	if err != nil {
		return nil, replayOutput{}, fmt.Errorf("replay_last_run: %w", err)
	}
	if r.Tickets == nil {
		r.Tickets = []ledger.TicketReplay{}
	}
	var b strings.Builder
	if err := r.Render(&b); err != nil {
		return nil, replayOutput{}, err
	}
	return nil, replayOutput{Replay: r, Text: b.String()}, nil
}

func (s *Server) handleListRuns(_ context.Context, _ *sdkmcp.CallToolRequest, _ listRunsInput) (*sdkmcp.CallToolResult, listRunsOutput, error) {
	records, err := s.ledger.Records()
	if err != nil {
		return nil, listRunsOutput{}, fmt.Errorf("list_runs: %w", err)
	}
	if records == nil {
		records = []types.RunRecord{}
	}
	return nil, listRunsOutput{Runs: records}, nil
}
