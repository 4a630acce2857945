// Package mcp wires the RadFlow tools into an MCP server served over HTTP.
package mcp

import (
	"context"
	"net/http"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	srv "github.com/mark3labs/mcp-go/server"

	"github.com/precise-imaging/radflow-mcp/internal/mcp/tools"
	"github.com/precise-imaging/radflow-mcp/internal/radflow"
)

const greetingURI = "hello://greeting"

// Server wraps the MCP server state for the HTTP transport.
type Server struct {
	handler   http.Handler
	logger    logSDK.Logger
	toolNames []string
}

// NewServer constructs a remote MCP server exposing the RadFlow tools under
// a single HTTP handler.
func NewServer(client *radflow.Client, tokens *radflow.TokenCache, rfSettings radflow.Settings, toolsSettings ToolsSettings, logger logSDK.Logger) (*Server, error) {
	if client == nil {
		return nil, errors.New("radflow client is required")
	}
	if tokens == nil {
		return nil, errors.New("token cache is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	logger = logger.Named("mcp")
	hooks := newMCPHooks(logger.Named("hooks"))

	mcpServer := srv.NewMCPServer(
		"radflow-mcp",
		"1.0.0",
		srv.WithToolCapabilities(true),
		srv.WithResourceCapabilities(false, false),
		srv.WithInstructions("Use the fetch_* and get_* tools to look up RadFlow patients, studies, and case updates."),
		srv.WithRecovery(),
		srv.WithHooks(hooks),
	)

	s := &Server{logger: logger}

	toolLogger := logger.Named("tools")
	registry, err := buildTools(client, tokens, rfSettings, toolsSettings, toolLogger)
	if err != nil {
		return nil, errors.Wrap(err, "build tools")
	}

	for _, tool := range registry {
		def := tool.Definition()
		mcpServer.AddTool(def, tool.Handle)
		s.toolNames = append(s.toolNames, def.Name)
	}

	greeting := mcpgo.NewResource(
		greetingURI,
		"greeting",
		mcpgo.WithResourceDescription("A simple greeting resource."),
		mcpgo.WithMIMEType("text/plain"),
	)
	mcpServer.AddResource(greeting, s.handleGreeting)

	s.handler = srv.NewStreamableHTTPServer(mcpServer)

	logger.Info("mcp server initialized", zap.Strings("tools", s.toolNames))
	return s, nil
}

// buildTools constructs every enabled tool. Constructors run even for
// disabled tools' siblings so misconfiguration surfaces at startup.
func buildTools(client *radflow.Client, tokens *radflow.TokenCache, rfSettings radflow.Settings, toolsSettings ToolsSettings, logger logSDK.Logger) ([]tools.Tool, error) {
	type candidate struct {
		enabled bool
		build   func() (tools.Tool, error)
	}

	candidates := []candidate{
		{toolsSettings.PatientInfoEnabled, func() (tools.Tool, error) {
			return tools.NewPatientInfoTool(client, rfSettings, logger)
		}},
		{toolsSettings.PatientByIDEnabled, func() (tools.Tool, error) {
			return tools.NewPatientByIDTool(client, rfSettings, logger)
		}},
		{toolsSettings.PatientByPhoneEnabled, func() (tools.Tool, error) {
			return tools.NewPatientByPhoneTool(client, rfSettings, logger)
		}},
		{toolsSettings.StudyDetailsEnabled, func() (tools.Tool, error) {
			return tools.NewStudyDetailsTool(client, rfSettings, logger)
		}},
		{toolsSettings.CaseUpdateDetailsEnabled, func() (tools.Tool, error) {
			return tools.NewCaseUpdateDetailsTool(client, rfSettings, logger)
		}},
		{toolsSettings.PatientReportEnabled, func() (tools.Tool, error) {
			return tools.NewPatientReportTool(client, rfSettings, logger)
		}},
		{toolsSettings.CaseUpdateLogEnabled, func() (tools.Tool, error) {
			return tools.NewCaseUpdateLogTool(client, rfSettings, logger)
		}},
		{toolsSettings.TodoStatusEnabled, func() (tools.Tool, error) {
			return tools.NewTodoStatusTool(client, tokens, rfSettings, logger)
		}},
		{toolsSettings.LienBillBalanceEnabled, func() (tools.Tool, error) {
			return tools.NewLienBillBalanceTool(client, rfSettings, logger)
		}},
	}

	var registry []tools.Tool
	for _, c := range candidates {
		if !c.enabled {
			continue
		}
		tool, err := c.build()
		if err != nil {
			return nil, err
		}
		registry = append(registry, tool)
	}

	return registry, nil
}

// Handler returns the HTTP handler that should be mounted to serve MCP traffic.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// AvailableToolNames lists the registered tool names.
func (s *Server) AvailableToolNames() []string {
	return s.toolNames
}

func (s *Server) handleGreeting(ctx context.Context, req mcpgo.ReadResourceRequest) ([]mcpgo.ResourceContents, error) {
	return []mcpgo.ResourceContents{
		mcpgo.TextResourceContents{
			URI:      greetingURI,
			MIMEType: "text/plain",
			Text:     "Hello from your RadFlow MCP server!",
		},
	}, nil
}
