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

// Case-update event ids with extra required fields.
const (
	eventLiabilityCleared = 2
	eventPaymentExpected  = 5
	eventPaymentSent      = 6
	eventNotesOnly        = 7
	eventPaymentEstimated = 20
)

// CaseUpdateLogTool implements the insert_case_update_log MCP tool.
type CaseUpdateLogTool struct {
	client   *radflow.Client
	settings radflow.Settings
	logger   logSDK.Logger
}

// NewCaseUpdateLogTool constructs a CaseUpdateLogTool with the provided dependencies.
func NewCaseUpdateLogTool(client *radflow.Client, settings radflow.Settings, logger logSDK.Logger) (*CaseUpdateLogTool, error) {
	if client == nil {
		return nil, errors.New("radflow client is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &CaseUpdateLogTool{client: client, settings: settings, logger: logger}, nil
}

// Definition returns the MCP metadata describing the tool.
func (t *CaseUpdateLogTool) Definition() mcp.Tool {
	return mcp.NewTool(
		"insert_case_update_log",
		mcp.WithDescription("Insert a case update log for a patient."),
		mcp.WithString("patient_id", mcp.Required(), mcp.Description("The ID of the patient.")),
		mcp.WithString("user_name", mcp.Required(), mcp.Description("The name of the user performing the action.")),
		mcp.WithNumber("event_id", mcp.Required(), mcp.Description("The ID of the event.")),
		mcp.WithString("notes", mcp.Description("Notes for the log.")),
		mcp.WithString("liability_expected_date", mcp.Description("Expected date for liability clearance (MM/DD/YYYY).")),
		mcp.WithString("expected_payment_date", mcp.Description("Expected date for payment (MM/DD/YYYY).")),
		mcp.WithString("payment_date_sent", mcp.Description("Date when payment was sent (MM/DD/YYYY).")),
		mcp.WithString("check_number", mcp.Description("The check number.")),
		mcp.WithNumber("check_amount", mcp.Description("The amount of the check.")),
		mcp.WithString("send_payment_of_estimated_date", mcp.Description("Estimated date for sending payment (MM/DD/YYYY).")),
	)
}

// Handle validates the event-dependent required fields and forwards the log
// entry to the chatbot endpoint.
func (t *CaseUpdateLogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patientID, err := req.RequireString("patient_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	userName, err := req.RequireString("user_name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args, _ := req.Params.Arguments.(map[string]any)
	eventID, ok := intArg(args, "event_id")
	if !ok {
		return mcp.NewToolResultError("event_id is required"), nil
	}

	notes := stringArg(args, "notes")
	liabilityExpectedDate := stringArg(args, "liability_expected_date")
	expectedPaymentDate := stringArg(args, "expected_payment_date")
	paymentDateSent := stringArg(args, "payment_date_sent")
	checkNumber := stringArg(args, "check_number")
	checkAmount, hasCheckAmount := floatArg(args, "check_amount")
	sendPaymentOfEstimatedDate := stringArg(args, "send_payment_of_estimated_date")

	if msg := validateCaseUpdateEvent(eventID, notes, liabilityExpectedDate, expectedPaymentDate,
		paymentDateSent, checkNumber, hasCheckAmount, sendPaymentOfEstimatedDate); msg != "" {
		return resultJSON(t.logger, "insert_case_update_log", failurePayload(msg))
	}

	t.logger.Info("inserting case update log",
		zap.String("patient_id", patientID),
		zap.Int("event_id", eventID))

	payload := map[string]any{
		"patientId":   patientID,
		"userName":    userName,
		"eventId":     eventID,
		"eventStatus": eventID,
	}
	setIfPresent(payload, "notes", notes)
	setIfPresent(payload, "liabilityExpectedDate", liabilityExpectedDate)
	setIfPresent(payload, "expectedPaymentDate", expectedPaymentDate)
	setIfPresent(payload, "paymentDateSent", paymentDateSent)
	setIfPresent(payload, "checkNumber", checkNumber)
	if hasCheckAmount {
		payload["checkAmount"] = checkAmount
	}
	setIfPresent(payload, "sendPaymentOfEstimatedDate", sendPaymentOfEstimatedDate)

	body, err := t.client.PostJSON(ctx, t.settings.CaseUpdateLogURL, payload, t.settings.ChatbotAuth())
	if err != nil {
		t.logger.Error("insert case update log failed", zap.Error(err))
		return resultJSON(t.logger, "insert_case_update_log", failurePayload(upstreamFailureMessage(err)))
	}

	data, ok := passthroughData(body)
	if !ok {
		t.logger.Error("case update log endpoint returned invalid json")
		return resultJSON(t.logger, "insert_case_update_log", failurePayload("Invalid JSON response from API"))
	}

	return resultJSON(t.logger, "insert_case_update_log", map[string]any{
		"success": true,
		"data":    data,
	})
}

// validateCaseUpdateEvent returns a failure message when the event id's
// extra required fields are absent, or "" when the request is acceptable.
func validateCaseUpdateEvent(eventID int, notes, liabilityExpectedDate, expectedPaymentDate,
	paymentDateSent, checkNumber string, hasCheckAmount bool, sendPaymentOfEstimatedDate string) string {
	switch eventID {
	case eventLiabilityCleared:
		if liabilityExpectedDate == "" {
			return "liability_expected_date is required for event_id 2"
		}
	case eventPaymentExpected:
		if expectedPaymentDate == "" {
			return "expected_payment_date is required for event_id 5"
		}
	case eventPaymentSent:
		if paymentDateSent == "" || checkNumber == "" || !hasCheckAmount {
			return "payment_date_sent, check_number, and check_amount are required for event_id 6"
		}
	case eventNotesOnly:
		if notes == "" {
			return "notes is required for event_id 7"
		}
	case eventPaymentEstimated:
		if sendPaymentOfEstimatedDate == "" {
			return "send_payment_of_estimated_date is required for event_id 20"
		}
	}

	return ""
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func floatArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

func setIfPresent(payload map[string]any, key, value string) {
	if value != "" {
		payload[key] = value
	}
}
