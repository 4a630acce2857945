package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	glog "github.com/Laisky/go-utils/v6/log"
	"github.com/stretchr/testify/require"

	"github.com/precise-imaging/radflow-mcp/internal/radflow"
)

func chatbotSettings(url string) radflow.Settings {
	return radflow.Settings{
		CaseUpdateDetailsURL: url,
		PatientReportURL:     url,
		LienBillBalanceURL:   url,
		ChatbotUser:          "Chatbot",
		ChatbotPassword:      "hunter2",
	}
}

func TestCaseUpdateDetailsToolPassthrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "Chatbot", user)
		require.Equal(t, "hunter2", pass)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "P1", payload["patientID"])

		fmt.Fprint(w, `{"updates":[{"note":"cleared"}]}`)
	}))
	defer upstream.Close()

	tool, err := NewCaseUpdateDetailsTool(testClient(t), chatbotSettings(upstream.URL), glog.Shared)
	require.NoError(t, err)
	require.Equal(t, "get_case_update_details", tool.Definition().Name)

	result, err := tool.Handle(context.Background(), newToolRequest(map[string]any{"patient_id": "P1"}))
	require.NoError(t, err)

	payload := decodeToolResult(t, result)
	require.Equal(t, true, payload["success"])

	data := payload["data"].(map[string]any)
	require.Contains(t, data, "updates")
}

func TestLienBillBalanceToolUsesLowercaseIDKey(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var payload map[string]any
		require.NoError(t, json.Unmarshal(body, &payload))
		require.Equal(t, "P1", payload["patientId"])
		require.NotContains(t, payload, "patientID")

		fmt.Fprint(w, `{"balance": 120.5}`)
	}))
	defer upstream.Close()

	tool, err := NewLienBillBalanceTool(testClient(t), chatbotSettings(upstream.URL), glog.Shared)
	require.NoError(t, err)
	require.Equal(t, "get_patient_lien_bill_balance", tool.Definition().Name)

	result, err := tool.Handle(context.Background(), newToolRequest(map[string]any{"patient_id": "P1"}))
	require.NoError(t, err)

	payload := decodeToolResult(t, result)
	require.Equal(t, true, payload["success"])
}

func TestPatientReportToolUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "bad credentials")
	}))
	defer upstream.Close()

	tool, err := NewPatientReportTool(testClient(t), chatbotSettings(upstream.URL), glog.Shared)
	require.NoError(t, err)

	result, err := tool.Handle(context.Background(), newToolRequest(map[string]any{"patient_id": "P1"}))
	require.NoError(t, err)

	payload := decodeToolResult(t, result)
	require.Equal(t, false, payload["success"])
	require.Contains(t, payload["error"], "API request failed with status 401")
}

func TestChatbotToolRequiresEndpoint(t *testing.T) {
	_, err := NewPatientReportTool(testClient(t), radflow.Settings{}, glog.Shared)
	require.Error(t, err)
}

func TestChatbotToolInvalidJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html></html>")
	}))
	defer upstream.Close()

	tool, err := NewCaseUpdateDetailsTool(testClient(t), chatbotSettings(upstream.URL), glog.Shared)
	require.NoError(t, err)

	result, err := tool.Handle(context.Background(), newToolRequest(map[string]any{"patient_id": "P1"}))
	require.NoError(t, err)

	payload := decodeToolResult(t, result)
	require.Equal(t, false, payload["success"])
	require.Equal(t, "Invalid JSON response from API", payload["error"])
}
