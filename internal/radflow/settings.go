package radflow

import (
	gconfig "github.com/Laisky/go-config/v2"
)

// Default upstream endpoints, overridable via the settings file.
const (
	defaultStudyDetailsURL      = "https://app.radflow360.com/chatbotapi/Patient/GetPatientStudyRelatedDetails"
	defaultPartnerTokenURL      = "https://staging-app.radflow360.com/patientportalapi/Partner/GetRefreshToken"
	defaultTodoStatusURL        = "https://staging-app.radflow360.com/patientportalapi/Patient/GetPatientToDoStatus"
	defaultCaseUpdateDetailsURL = "https://staging-app.radflow360.com/chatbotapi/GetCaseUpdateDetailsChatbot"
	defaultPatientReportURL     = "https://staging-app.radflow360.com/chatbotapi/GetPatientReportChatbot"
	defaultCaseUpdateLogURL     = "https://staging-app.radflow360.com/chatbotapi/InsertCaseUpdateLogChatbot"
	defaultLienBillBalanceURL   = "https://staging-app.radflow360.com/chatbotapi/GetPatientLienBillBalanceDetails"
)

// Settings holds the immutable upstream configuration supplied at process
// start: endpoint URLs, the partner API key, and the chatbot basic-auth
// credentials.
type Settings struct {
	StudyDetailsURL      string
	PartnerTokenURL      string
	TodoStatusURL        string
	CaseUpdateDetailsURL string
	PatientReportURL     string
	CaseUpdateLogURL     string
	LienBillBalanceURL   string

	PartnerAPIKey   string
	ChatbotUser     string
	ChatbotPassword string
}

// ChatbotAuth returns the basic-auth credentials for chatbot endpoints.
func (s Settings) ChatbotAuth() *BasicAuth {
	return &BasicAuth{User: s.ChatbotUser, Password: s.ChatbotPassword}
}

// LoadSettingsFromConfig reads the RadFlow section of the shared config.
// Endpoint URLs fall back to the production/staging defaults; credentials
// have no defaults and must be supplied.
func LoadSettingsFromConfig() Settings {
	return Settings{
		StudyDetailsURL:      stringFromConfig("settings.radflow.study_details_url", defaultStudyDetailsURL),
		PartnerTokenURL:      stringFromConfig("settings.radflow.partner_token_url", defaultPartnerTokenURL),
		TodoStatusURL:        stringFromConfig("settings.radflow.todo_status_url", defaultTodoStatusURL),
		CaseUpdateDetailsURL: stringFromConfig("settings.radflow.case_update_details_url", defaultCaseUpdateDetailsURL),
		PatientReportURL:     stringFromConfig("settings.radflow.patient_report_url", defaultPatientReportURL),
		CaseUpdateLogURL:     stringFromConfig("settings.radflow.case_update_log_url", defaultCaseUpdateLogURL),
		LienBillBalanceURL:   stringFromConfig("settings.radflow.lien_bill_balance_url", defaultLienBillBalanceURL),
		PartnerAPIKey:        gconfig.Shared.GetString("settings.radflow.partner_api_key"),
		ChatbotUser:          gconfig.Shared.GetString("settings.radflow.chatbot_user"),
		ChatbotPassword:      gconfig.Shared.GetString("settings.radflow.chatbot_password"),
	}
}

func stringFromConfig(key, def string) string {
	if v := gconfig.Shared.GetString(key); v != "" {
		return v
	}
	return def
}
