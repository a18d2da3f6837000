// Package mcpadapter exposes the analysis engines as MCP tools over stdio.
package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/core/ports"
)

const (
	serverName    = "legal-assistant"
	serverVersion = "1.0.0"
)

type Deps struct {
	Assessor ports.RiskAssessor
	Answerer ports.QuestionAnswerer
	Entities ports.EntityExtractor
	Observer ports.AnalysisObserver
	Logger   *slog.Logger

	DefaultJurisdiction string
	MaxTextChars        int
}

type Server struct {
	deps Deps
	mcp  *server.MCPServer
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	s := &Server{
		deps: deps,
		mcp:  server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(mcp.NewTool("assess_risk",
		mcp.WithDescription("Score the legal risk of contract text: overall score 1-10, level, detected risk factors, missing standard clauses and recommendations."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Full contract text")),
	), s.logged(s.assessRisk))

	s.mcp.AddTool(mcp.NewTool("ask_question",
		mcp.WithDescription("Answer a question about contract text using pattern-based extraction of amounts, parties, dates, governing law, termination and payment terms."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Full contract text")),
		mcp.WithString("question", mcp.Required(), mcp.Description("Question in plain English")),
		mcp.WithString("jurisdiction", mcp.Description("Jurisdiction preference such as US, UK, IN or EU")),
	), s.logged(s.askQuestion))

	s.mcp.AddTool(mcp.NewTool("suggest_questions",
		mcp.WithDescription("List useful questions to ask about a contract for a jurisdiction."),
		mcp.WithString("jurisdiction", mcp.Description("Jurisdiction preference such as US, UK, IN or EU")),
	), s.logged(s.suggestQuestions))

	s.mcp.AddTool(mcp.NewTool("extract_entities",
		mcp.WithDescription("Extract dates, monetary amounts, parties, citations and other legal entities from contract text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Full contract text")),
	), s.logged(s.extractEntities))

	return s
}

func (s *Server) logged(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		res, err := h(ctx, req)
		s.deps.Logger.Info("mcp_tool_call",
			"tool", req.Params.Name,
			"tool_error", err != nil || (res != nil && res.IsError),
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
		return res, err
	}
}

// Serve runs the stdio transport until ctx is cancelled or stdin closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, in, out)
}

func (s *Server) assessRisk(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.requireText(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	assessment := s.deps.Assessor.Assess(text)
	if s.deps.Observer != nil {
		s.deps.Observer.ObserveAssessment(assessment)
	}
	return jsonResult(assessment)
}

func (s *Server) askQuestion(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.requireText(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := req.RequireString("question")
	if err != nil || strings.TrimSpace(question) == "" {
		return mcp.NewToolResultError("question is required"), nil
	}
	result := s.deps.Answerer.Answer(text, question, s.jurisdiction(req))
	if s.deps.Observer != nil {
		s.deps.Observer.ObserveAnswer(result)
	}
	return jsonResult(result)
}

func (s *Server) suggestQuestions(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"questions": s.deps.Answerer.SuggestedQuestions(s.jurisdiction(req)),
	})
}

func (s *Server) extractEntities(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := s.requireText(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	set := s.deps.Entities.Extract(text)
	return jsonResult(map[string]any{"entities": set, "stats": set.Stats()})
}

func (s *Server) requireText(req mcp.CallToolRequest) (string, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.WrapError(domain.ErrDocumentNotLoaded, "read text", fmt.Errorf("text is empty"))
	}
	if limit := s.deps.MaxTextChars; limit > 0 && utf8.RuneCountInString(text) > limit {
		return "", domain.WrapError(domain.ErrInvalidInput, "read text", fmt.Errorf("text exceeds %d characters", limit))
	}
	return text, nil
}

func (s *Server) jurisdiction(req mcp.CallToolRequest) string {
	if j := strings.TrimSpace(req.GetString("jurisdiction", "")); j != "" {
		return j
	}
	return s.deps.DefaultJurisdiction
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
