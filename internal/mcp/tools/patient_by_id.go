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

// PatientByIDTool implements the fetch_patient_by_id MCP tool.
type PatientByIDTool struct {
	client   *radflow.Client
	settings radflow.Settings
	logger   logSDK.Logger
}

// NewPatientByIDTool constructs a PatientByIDTool with the provided dependencies.
func NewPatientByIDTool(client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*PatientByIDTool, error) {
	if client == nil {
		return nil, errors.New("radflow client is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &PatientByIDTool{client: client, settings: settings, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *PatientByIDTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"fetch_patient_by_id",
		mcp.WithDescription("Fetch patient information by ID from the RadFlow API."),
		mcp.WithString(
			"patient_id",
			mcp.Required(),
			mcp.Description("The patient's ID."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes the fetch_patient_by_id tool logic.
func (t *PatientByIDTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, err := req.RequireString("patient_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return mcp.NewToolResultError("patient_id cannot be empty"), nil
	}

	t.logger.Info("fetching patient data", zap.String("patient_id", patientID))

	result := fetchPatients(ctx, t.client, t.settings.StudyDetailsURL, patientID, "")
	if !result.Success {
		t.logger.Error("fetch patient data failed", zap.String("error", result.Error))
	}

	return resultJSON(t.logger, "fetch_patient_by_id", result)
}
