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

const requiredFieldStudies = "Study Details"

// StudyDetailsTool implements the fetch_study_details MCP tool.
type StudyDetailsTool struct {
	client   *radflow.Client
	settings radflow.Settings
	logger   logSDK.Logger
}

// NewStudyDetailsTool constructs a StudyDetailsTool with the provided dependencies.
func NewStudyDetailsTool(client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*StudyDetailsTool, error) {
	if client == nil {
		return nil, errors.New("radflow client is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &StudyDetailsTool{client: client, settings: settings, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *StudyDetailsTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"fetch_study_details",
		mcp.WithDescription("Fetch study details for a patient by their ID."),
		mcp.WithString(
			"patient_id",
			mcp.Required(),
			mcp.Description("Patient ID to fetch studies for."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes the fetch_study_details tool logic.
func (t *StudyDetailsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, err := req.RequireString("patient_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return mcp.NewToolResultError("patient_id cannot be empty"), nil
	}

	t.logger.Info("fetching study details", zap.String("patient_id", patientID))

	env, err := t.client.PostEnvelope(ctx, t.settings.StudyDetailsURL, patientDetailsPayload(patientID, "", requiredFieldStudies))
	if err != nil {
		t.logger.Error("fetch study details failed", zap.Error(err))
		return resultJSON(t.logger, "fetch_study_details", failurePayload(upstreamFailureMessage(err)))
	}

	result := radflow.NormalizeStudies(env, patientID)
	if !result.Success {
		t.logger.Error("process study details failed", zap.String("error", result.Error))
	}

	return resultJSON(t.logger, "fetch_study_details", result)
}
