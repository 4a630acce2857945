package mcp

import (
	gconfig "github.com/Laisky/go-config/v2"
)

// ToolsSettings captures runtime configuration for enabling or disabling individual MCP tools.
type ToolsSettings struct {
	PatientInfoEnabled       bool
	PatientByIDEnabled       bool
	PatientByPhoneEnabled    bool
	StudyDetailsEnabled      bool
	CaseUpdateDetailsEnabled bool
	PatientReportEnabled     bool
	CaseUpdateLogEnabled     bool
	TodoStatusEnabled        bool
	LienBillBalanceEnabled   bool
}

// AllToolsEnabled returns a ToolsSettings with every tool switched on.
func AllToolsEnabled() ToolsSettings {
	return ToolsSettings{
		PatientInfoEnabled:       true,
		PatientByIDEnabled:       true,
		PatientByPhoneEnabled:    true,
		StudyDetailsEnabled:      true,
		CaseUpdateDetailsEnabled: true,
		PatientReportEnabled:     true,
		CaseUpdateLogEnabled:     true,
		TodoStatusEnabled:        true,
		LienBillBalanceEnabled:   true,
	}
}

// LoadToolsSettingsFromConfig reads the MCP tools configuration and returns a ToolsSettings instance.
// By default, all tools are enabled unless explicitly disabled in the configuration.
func LoadToolsSettingsFromConfig() ToolsSettings {
	return ToolsSettings{
		PatientInfoEnabled:       boolFromConfig("settings.mcp.tools.fetch_patient_info.enabled", true),
		PatientByIDEnabled:       boolFromConfig("settings.mcp.tools.fetch_patient_by_id.enabled", true),
		PatientByPhoneEnabled:    boolFromConfig("settings.mcp.tools.fetch_patient_by_phone.enabled", true),
		StudyDetailsEnabled:      boolFromConfig("settings.mcp.tools.fetch_study_details.enabled", true),
		CaseUpdateDetailsEnabled: boolFromConfig("settings.mcp.tools.get_case_update_details.enabled", true),
		PatientReportEnabled:     boolFromConfig("settings.mcp.tools.get_patient_report.enabled", true),
		CaseUpdateLogEnabled:     boolFromConfig("settings.mcp.tools.insert_case_update_log.enabled", true),
		TodoStatusEnabled:        boolFromConfig("settings.mcp.tools.get_patient_todo_status.enabled", true),
		LienBillBalanceEnabled:   boolFromConfig("settings.mcp.tools.get_patient_lien_bill_balance.enabled", true),
	}
}

// boolFromConfig retrieves a boolean configuration value with a default fallback.
func boolFromConfig(key string, def bool) bool {
	value := gconfig.S.Get(key)
	switch v := value.(type) {
	case nil:
		return def
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch v {
		case "true", "True", "TRUE", "1", "yes", "Yes", "YES":
			return true
		case "false", "False", "FALSE", "0", "no", "No", "NO":
			return false
		default:
			return def
		}
	default:
		return def
	}
}
