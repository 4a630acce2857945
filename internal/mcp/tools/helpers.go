package tools

import (
	"encoding/json"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	mcp "github.com/mark3labs/mcp-go/mcp"

	"github.com/precise-imaging/radflow-mcp/internal/radflow"
)

// detailsPayload is the request body shared by the patient and study lookup
// endpoints; requiredField selects which projection the upstream returns.
type detailsPayload struct {
	PatientID       string `json:"patientId"`
	Phone           string `json:"phone"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	BirthDate       string `json:"birthDate"`
	DOI             string `json:"doi"`
	AccessionNumber string `json:"accessionNumber"`
	RequiredField   string `json:"requiredField"`
}

func patientDetailsPayload(patientID, phone, requiredField string) detailsPayload {
	return detailsPayload{
		PatientID:     patientID,
		Phone:         phone,
		RequiredField: requiredField,
	}
}

// failurePayload is the structured failure body every tool returns instead of
// raising an error past the tool boundary.
func failurePayload(message string) map[string]any {
	return map[string]any{
		"success": false,
		"error":   message,
	}
}

// upstreamFailureMessage maps the client's typed errors onto the stable
// messages exposed to MCP callers.
func upstreamFailureMessage(err error) string {
	if errors.Is(err, radflow.ErrTimeout) {
		return "API request timed out after 30 seconds"
	}
	if errors.Is(err, radflow.ErrMalformedResponse) {
		return "Invalid JSON response from API"
	}

	var httpErr *radflow.UpstreamHTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Error()
	}

	return "Connection error: " + err.Error()
}

// resultJSON encodes payload as the tool's JSON text result.
func resultJSON(logger logSDK.Logger, toolName string, payload any) (*mcp.CallToolResult, error) {
	toolResult, err := mcp.NewToolResultJSON(payload)
	if err != nil {
		logger.Error("encode tool result", zap.Error(err), zap.String("tool", toolName))
		return mcp.NewToolResultError("failed to encode tool response"), nil
	}

	return toolResult, nil
}

// passthroughData decodes an upstream body for tools that forward the
// response unmodified under a success wrapper.
func passthroughData(body []byte) (any, bool) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, false
	}
	return data, true
}
