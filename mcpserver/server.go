// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes the
// code synthesis pipeline as tools. It uses the mark3labs/mcp-go library to
// handle the protocol details and provides execute_sandboxed_code,
// generate_code, and solve_assignment as the tool surface.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/forgeworks/codeforge/agent"
	"github.com/forgeworks/codeforge/assignment"
	"github.com/forgeworks/codeforge/config"
	"github.com/forgeworks/codeforge/language"
	"github.com/forgeworks/codeforge/sandbox"
)

// SessionRunner runs one retry session. *agent.Orchestrator satisfies it.
type SessionRunner interface {
	Run(ctx context.Context, problem, lang string, requirements []string) (agent.Result, error)
}

// BatchRunner solves a whole assignment file. *assignment.Driver satisfies it.
type BatchRunner interface {
	Run(ctx context.Context, contents string) (assignment.BatchResult, error)
}

// MCPServer represents the MCP server
type MCPServer struct {
	config      *config.Config
	logger      *zap.Logger
	sandboxExec sandbox.Executor
	sessions    SessionRunner
	batches     BatchRunner
	registry    *language.Registry
	mcpServer   *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, sandboxExec sandbox.Executor, sessions SessionRunner, batches BatchRunner, registry *language.Registry) (*MCPServer, error) {
	s := &MCPServer{
		config:      cfg,
		logger:      logger,
		sandboxExec: sandboxExec,
		sessions:    sessions,
		batches:     batches,
		registry:    registry,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("sandbox.backend", s.config.Sandbox.Backend),
		zap.Int("sandbox.timeout_sec", s.config.Sandbox.TimeoutSec),
		zap.Int("sandbox.memory_mb", s.config.Sandbox.MemoryMB),
		zap.Int("sandbox.cpus", s.config.Sandbox.CPUs),
		zap.Bool("sandbox.enable_local_backend", s.config.Sandbox.EnableLocalBackend),
		zap.Int("agent.max_iterations", s.config.Agent.MaxIterations),
		zap.Bool("agent.review_enabled", s.config.Agent.ReviewEnabled),
		zap.Int("batch.workers", s.config.Batch.Workers),
		zap.Strings("languages", s.registry.Names()),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("codeforge", "A code synthesis and sandboxed execution server")

	s.registerExecuteSandboxedCodeTool()
	s.registerGenerateCodeTool()
	s.registerSolveAssignmentTool()

	return s, nil
}

// registerExecuteSandboxedCodeTool registers the execute_sandboxed_code tool
func (s *MCPServer) registerExecuteSandboxedCodeTool() {
	tool := mcp.Tool{
		Name:        "execute_sandboxed_code",
		Description: "Execute untrusted code in a sandboxed environment",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "User-provided source code",
				},
				"language": map[string]any{
					"type":        "string",
					"description": "Runtime language",
					"enum":        s.registry.Names(),
				},
			},
			Required: []string{"code", "language"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleExecuteSandboxedCode)
}

// registerGenerateCodeTool registers the generate_code tool
func (s *MCPServer) registerGenerateCodeTool() {
	tool := mcp.Tool{
		Name:        "generate_code",
		Description: "Synthesize, execute, and validate a program for a natural-language problem",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"problem": map[string]any{
					"type":        "string",
					"description": "Natural-language problem statement",
				},
				"language": map[string]any{
					"type":        "string",
					"description": "Target language",
					"enum":        s.registry.Names(),
				},
				"requirements": map[string]any{
					"type":        "array",
					"description": "Additional requirements the program must satisfy (optional)",
					"items":       map[string]any{"type": "string"},
				},
			},
			Required: []string{"problem", "language"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleGenerateCode)
}

// registerSolveAssignmentTool registers the solve_assignment tool
func (s *MCPServer) registerSolveAssignmentTool() {
	tool := mcp.Tool{
		Name:        "solve_assignment",
		Description: "Parse a multi-question assignment file and solve every question",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"contents": map[string]any{
					"type":        "string",
					"description": "Raw assignment file contents",
				},
			},
			Required: []string{"contents"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleSolveAssignment)
}

// handleExecuteSandboxedCode handles the execute_sandboxed_code tool
func (s *MCPServer) handleExecuteSandboxedCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("code execution requested")

	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	lang, err := request.RequireString("language")
	if err != nil {
		return nil, fmt.Errorf("language parameter is required: %w", err)
	}

	if _, ok := s.registry.Lookup(lang); !ok {
		return nil, fmt.Errorf("invalid language: %s, must be one of: %s",
			lang, strings.Join(s.registry.Names(), ", "))
	}

	s.logger.Info("executing code in sandbox", zap.String("language", lang))

	result, err := s.sandboxExec.Execute(ctx, sandbox.ExecuteRequest{
		Language: lang,
		Code:     code,
	})
	if err != nil {
		s.logger.Error("sandbox execution failed",
			zap.Error(err),
			zap.String("language", lang))
		return errorResult(fmt.Sprintf("Execution failed: %v", err)), nil
	}

	s.logger.Info("code execution completed",
		zap.String("language", lang),
		zap.Int("exit_code", result.ExitCode),
		zap.Int("stdout_len", len(result.Stdout)),
		zap.Int("stderr_len", len(result.Stderr)))

	return jsonResult(map[string]any{
		"success":     result.Success,
		"stdout":      result.Stdout,
		"stderr":      result.Stderr,
		"exit_code":   result.ExitCode,
		"duration_ms": result.DurationMS,
	})
}

// handleGenerateCode handles the generate_code tool
func (s *MCPServer) handleGenerateCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	problem, err := request.RequireString("problem")
	if err != nil {
		return nil, fmt.Errorf("problem parameter is required: %w", err)
	}

	lang, err := request.RequireString("language")
	if err != nil {
		return nil, fmt.Errorf("language parameter is required: %w", err)
	}

	spec, ok := s.registry.Lookup(lang)
	if !ok {
		return nil, fmt.Errorf("invalid language: %s, must be one of: %s",
			lang, strings.Join(s.registry.Names(), ", "))
	}

	requirements := request.GetStringSlice("requirements", nil)

	s.logger.Info("code generation requested",
		zap.String("language", spec.Name),
		zap.Int("requirements", len(requirements)))

	result, err := s.sessions.Run(ctx, problem, spec.Name, requirements)
	if err != nil {
		s.logger.Error("session aborted", zap.Error(err))
		return errorResult(fmt.Sprintf("Generation failed: %v", err)), nil
	}

	s.logger.Info("code generation completed",
		zap.String("status", string(result.Status)),
		zap.Int("iterations", result.Iterations),
		zap.Int("tokens_used", result.TokensUsed))

	return jsonResult(map[string]any{
		"status":      string(result.Status),
		"code":        result.Code,
		"output":      result.Output,
		"iterations":  result.Iterations,
		"tokens_used": result.TokensUsed,
		"diagnostics": result.Verdict.Diagnostics,
	})
}

// handleSolveAssignment handles the solve_assignment tool
func (s *MCPServer) handleSolveAssignment(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	contents, err := request.RequireString("contents")
	if err != nil {
		return nil, fmt.Errorf("contents parameter is required: %w", err)
	}

	s.logger.Info("assignment solve requested", zap.Int("contents_len", len(contents)))

	batch, err := s.batches.Run(ctx, contents)
	if err != nil {
		s.logger.Error("assignment solve failed", zap.Error(err))
		return errorResult(fmt.Sprintf("Assignment failed: %v", err)), nil
	}

	items := make([]map[string]any, len(batch.Items))
	for i, item := range batch.Items {
		items[i] = map[string]any{
			"number":   item.Number,
			"language": item.Language,
			"question": item.QuestionText,
			"code":     item.Code,
			"output":   item.Output,
			"status":   string(item.Status),
		}
	}

	s.logger.Info("assignment solve completed",
		zap.Int("questions", len(batch.Items)),
		zap.Int("tokens_used", batch.TokensUsed))

	return jsonResult(map[string]any{
		"subject":           batch.Meta.Subject,
		"assignment_number": batch.Meta.AssignmentNumber,
		"student_name":      batch.Meta.StudentName,
		"items":             items,
		"tokens_used":       batch.TokensUsed,
	})
}

func jsonResult(payload map[string]any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: string(data)},
		},
	}, nil
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: message},
		},
		IsError: true,
	}
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// ServeHTTP starts the server on HTTP
func (s *MCPServer) ServeHTTP() error {
	port := s.config.Server.HTTPPort
	s.logger.Info("starting MCP server on HTTP", zap.Int("port", port))

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	return httpServer.Start(fmt.Sprintf(":%d", port))
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
