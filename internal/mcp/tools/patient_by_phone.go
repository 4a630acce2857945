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

// PatientByPhoneTool implements the fetch_patient_by_phone MCP tool.
type PatientByPhoneTool struct {
	client   *radflow.Client
	settings radflow.Settings
	logger   logSDK.Logger
}

// NewPatientByPhoneTool constructs a PatientByPhoneTool with the provided dependencies.
func NewPatientByPhoneTool(client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*PatientByPhoneTool, error) {
	if client == nil {
		return nil, errors.New("radflow client is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &PatientByPhoneTool{client: client, settings: settings, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *PatientByPhoneTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"fetch_patient_by_phone",
		mcp.WithDescription("Fetch patient data from the RadFlow API using phone number."),
		mcp.WithString(
			"phone",
			mcp.Required(),
			mcp.Description("Phone number to fetch data for."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes the fetch_patient_by_phone tool logic.
func (t *PatientByPhoneTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	phone, err := req.RequireString("phone")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return mcp.NewToolResultError("phone cannot be empty"), nil
	}

	// Upstream stores bare national numbers.
	phone = strings.Replace(phone, "+1", "", 1)

	t.logger.Info("fetching patient data by phone")

	env, err := t.client.PostEnvelope(ctx, t.settings.StudyDetailsURL, patientDetailsPayload("", phone, requiredFieldDetails))
	if err != nil {
		t.logger.Error("fetch patient data by phone failed", zap.Error(err))
		return resultJSON(t.logger, "fetch_patient_by_phone", failurePayload(upstreamFailureMessage(err)))
	}

	result := radflow.NormalizePatients(env, phone)
	if !result.Success {
		t.logger.Error("process patient data failed", zap.String("error", result.Error))
	}

	return resultJSON(t.logger, "fetch_patient_by_phone", result)
}
