package tools

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/precise-imaging/radflow-mcp/internal/radflow"
)

const (
	defaultDocumentTypeID    = 21
	defaultLoggedPartnerID   = 1
	defaultPreferredLanguage = "english"
)

// TodoStatusTool implements the get_patient_todo_status MCP tool. It is the
// one tool that talks to a token-gated endpoint and therefore consumes the
// bearer-token cache.
type TodoStatusTool struct {
	client   *radflow.Client
	tokens   *radflow.TokenCache
	settings radflow.Settings
	logger   logSDK.Logger
}

// NewTodoStatusTool constructs a TodoStatusTool with the provided dependencies.
func NewTodoStatusTool(client *radflow.Client, tokens *radflow.TokenCache, settings radflow.Settings, logger logSDK.Logger) (*TodoStatusTool, error) {
	if client == nil {
		return nil, errors.New("radflow client is required")
	}
	if tokens == nil {
		return nil, errors.New("token cache is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &TodoStatusTool{client: client, tokens: tokens, settings: settings, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *TodoStatusTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"get_patient_todo_status",
		mcp.WithDescription("Get the to-do status for a patient from the RadFlow API."),
		mcp.WithString(
			"patient_id",
			mcp.Required(),
			mcp.Description("The ID of the patient."),
		),
		mcp.WithNumber(
			"document_type_id",
			mcp.Description("The type ID of the document."),
		),
		mcp.WithNumber(
			"logged_partner_id",
			mcp.Description("The ID of the logged-in partner."),
		),
		mcp.WithString(
			"patient_preferred_language",
			mcp.Description("The patient's preferred language."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

// Handle executes the get_patient_todo_status tool logic. A failed token
// fetch is converted to a structured failure payload here; it never escapes
// to the dispatch layer.
func (t *TodoStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, err := req.RequireString("patient_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return mcp.NewToolResultError("patient_id cannot be empty"), nil
	}

	documentTypeID := defaultDocumentTypeID
	loggedPartnerID := defaultLoggedPartnerID
	language := defaultPreferredLanguage
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		if v, ok := intArg(args, "document_type_id"); ok {
			documentTypeID = v
		}
		if v, ok := intArg(args, "logged_partner_id"); ok {
			loggedPartnerID = v
		}
		if v, ok := args["patient_preferred_language"].(string); ok && v != "" {
			language = v
		}
	}

	t.logger.Info("fetching patient to-do status", zap.String("patient_id", patientID))

	token, err := t.tokens.Get(ctx)
	if err != nil {
		t.logger.Error("obtain jwt token", zap.Error(err))
		return resultJSON(t.logger, "get_patient_todo_status", failurePayload(err.Error()))
	}

	payload := map[string]any{
		"patientId":                patientID,
		"documentTypeId":           documentTypeID,
		"loggedPartnerId":          loggedPartnerID,
		"jwtToken":                 token,
		"patientPreferredLanguage": language,
	}

	body, err := t.client.PostJSONBearer(ctx, t.settings.TodoStatusURL, payload, token)
	if err != nil {
		t.logger.Error("todo status request failed", zap.Error(err))
		return resultJSON(t.logger, "get_patient_todo_status", failurePayload(upstreamFailureMessage(err)))
	}

	data, ok := passthroughData(body)
	if !ok {
		t.logger.Error("todo status endpoint returned invalid json")
		return resultJSON(t.logger, "get_patient_todo_status", failurePayload("Invalid JSON response from API"))
	}

	return resultJSON(t.logger, "get_patient_todo_status", map[string]any{
		"success": true,
		"status":  data,
	})
}

// intArg reads a numeric argument, tolerating the float64 values JSON
// decoding produces.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}
