package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/precise-imaging/radflow-mcp/internal/radflow"
)

const requiredFieldDetails = "Details"

// fetchPatients performs the upstream patient lookup and normalization shared
// by the patient tools. Transport failures become failure results, never
// errors.
func fetchPatients(ctx context.Context, client *radflow.Client, url, patientID, phone string) radflow.PatientResult {
	env, err := client.PostEnvelope(ctx, url, patientDetailsPayload(patientID, phone, requiredFieldDetails))
	if err != nil {
		return radflow.PatientResult{Success: false, Error: upstreamFailureMessage(err)}
	}

	return radflow.NormalizePatients(env, phone)
}

// PatientInfoTool implements the fetch_patient_info MCP tool. Unlike
// fetch_patient_by_id it wraps the normalization result in a metadata
// envelope echoing the requested patient id.
type PatientInfoTool struct {
	client   *radflow.Client
	settings radflow.Settings
	logger   logSDK.Logger
}

// NewPatientInfoTool constructs a PatientInfoTool with the provided dependencies.
func NewPatientInfoTool(client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*PatientInfoTool, error) {
	if client == nil {
		return nil, errors.New("radflow client is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &PatientInfoTool{client: client, settings: settings, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *PatientInfoTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"fetch_patient_info",
		mcp.WithDescription("Fetch patient information from the RadFlow API using patient ID."),
		mcp.WithString(
			"patient_id",
			mcp.Required(),
			mcp.Description("The patient ID to fetch information for."),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

// Handle executes the fetch_patient_info tool logic.
func (t *PatientInfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
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
	if result.Success {
		t.logger.Info("retrieved patient data", zap.String("message", result.Message))
	} else {
		t.logger.Error("fetch patient data failed", zap.String("error", result.Error))
	}

	message := result.Message
	if message == "" {
		message = fmt.Sprintf("Retrieved patient information for ID: %s", patientID)
	}

	payload := map[string]any{
		"success":    result.Success,
		"patient_id": patientID,
		"data":       result,
		"message":    message,
	}

	return resultJSON(t.logger, "fetch_patient_info", payload)
}
