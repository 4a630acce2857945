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

// ChatbotPassthroughTool forwards a patient-id request to a chatbot endpoint
// under basic auth and returns the upstream JSON unmodified beneath a
// success wrapper. The case-update, report, and lien-balance tools only
// differ in endpoint, description, and the upstream's spelling of the
// patient-id field.
type ChatbotPassthroughTool struct {
	name         string
	description  string
	url          string
	patientIDKey string
	auth         *radflow.BasicAuth
	client       *radflow.Client
	logger       logSDK.Logger
}

func newChatbotPassthroughTool(name, description, url, patientIDKey string, client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*ChatbotPassthroughTool, error) {
	if client == nil {
		return nil, errors.New("radflow client is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if url == "" {
		return nil, errors.Errorf("endpoint url is required for %s", name)
	}

	return &ChatbotPassthroughTool{
		name:         name,
		description:  description,
		url:          url,
		patientIDKey: patientIDKey,
		auth:         settings.ChatbotAuth(),
		client:       client,
		logger:       logger,
	}, nil
}

// NewCaseUpdateDetailsTool constructs the get_case_update_details MCP tool.
func NewCaseUpdateDetailsTool(client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*ChatbotPassthroughTool, error) {
	return newChatbotPassthroughTool(
		"get_case_update_details",
		"Fetch case update details for a given patient.",
		settings.CaseUpdateDetailsURL,
		"patientID",
		client, settings, logger,
	)
}

// NewPatientReportTool constructs the get_patient_report MCP tool.
func NewPatientReportTool(client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*ChatbotPassthroughTool, error) {
	return newChatbotPassthroughTool(
		"get_patient_report",
		"Fetch the report for a given patient.",
		settings.PatientReportURL,
		"patientID",
		client, settings, logger,
	)
}

// NewLienBillBalanceTool constructs the get_patient_lien_bill_balance MCP tool.
func NewLienBillBalanceTool(client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*ChatbotPassthroughTool, error) {
	return newChatbotPassthroughTool(
		"get_patient_lien_bill_balance",
		"Fetch patient lien bill balance details from the RadFlow API.",
		settings.LienBillBalanceURL,
		"patientId",
		client, settings, logger,
	)
}

// Definition returns the MCP metadata describing the tool.
func (t *ChatbotPassthroughTool) Definition() mcp.Tool {
	return mcp.NewTool(
		t.name,
		mcp.WithDescription(t.description),
		mcp.WithString(
			"patient_id",
			mcp.Required(),
			mcp.Description("The ID of the patient."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes the passthrough request.
func (t *ChatbotPassthroughTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, err := req.RequireString("patient_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return mcp.NewToolResultError("patient_id cannot be empty"), nil
	}

	t.logger.Info("calling chatbot endpoint",
		zap.String("tool", t.name),
		zap.String("patient_id", patientID))

	body, err := t.client.PostJSON(ctx, t.url, map[string]string{t.patientIDKey: patientID}, t.auth)
	if err != nil {
		t.logger.Error("chatbot endpoint failed", zap.String("tool", t.name), zap.Error(err))
		return resultJSON(t.logger, t.name, failurePayload(upstreamFailureMessage(err)))
	}

	data, ok := passthroughData(body)
	if !ok {
		t.logger.Error("chatbot endpoint returned invalid json", zap.String("tool", t.name))
		return resultJSON(t.logger, t.name, failurePayload("Invalid JSON response from API"))
	}

	return resultJSON(t.logger, t.name, map[string]any{
		"success": true,
		"data":    data,
	})
}
