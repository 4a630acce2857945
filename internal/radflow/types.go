package radflow

import "encoding/json"

// PatientRecord is the canonical patient shape returned to MCP callers.
// Every field is a plain string; absent upstream fields normalize to "".
type PatientRecord struct {
	PatientID       string `json:"patient_id"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	Sex             string `json:"sex"`
	FinancialType   string `json:"financial_type"`
	Language        string `json:"language"`
	BirthDate       string `json:"birth_date"`
	Address         string `json:"address"`
	DateOfInjury    string `json:"doi"`
	DateOfLoss      string `json:"dol"`
	RadiologistName string `json:"radiologist_name"`
}

// Facility identifies where a study takes place.
type Facility struct {
	FacilityName string `json:"facility_name"`
	Address      string `json:"address"`
}

// StudyRecord is the canonical study shape returned to MCP callers.
type StudyRecord struct {
	AppointmentTime     string   `json:"appointment_time"`
	PreArrivalMinutes   int      `json:"pre_arrival_minutes"`
	Facility            Facility `json:"facility"`
	StudyDescription    string   `json:"study_description"`
	Status              string   `json:"status"`
	Modality            string   `json:"modality"`
	ReferringPhysician  string   `json:"referring_physician"`
	Insurance           string   `json:"insurance"`
	AuthorizationNumber string   `json:"authorization_number"`
	StudyDateTime       string   `json:"study_date_time"`
}

// Envelope is the unprocessed upstream response wrapper shared by the
// patient and study endpoints.
type Envelope struct {
	ResponseStatus string          `json:"responseStatus"`
	Exception      string          `json:"exception"`
	Result         *EnvelopeResult `json:"result"`
}

// EnvelopeResult carries the nested record list. The inner `result` field is
// delivered either as a JSON-encoded string or as a native array; it is kept
// raw here and decoded by unwrapNestedList.
type EnvelopeResult struct {
	Result        json.RawMessage `json:"result"`
	TotalPatients *int            `json:"totalPatients"`
}

// PatientResult is the structured outcome of normalizing a patient response.
type PatientResult struct {
	Success      bool            `json:"success"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
	Patients     []PatientRecord `json:"patients,omitempty"`
	NumberedList string          `json:"numbered_list,omitempty"`
}

// StudyResult is the structured outcome of normalizing a study response.
type StudyResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Error   string        `json:"error,omitempty"`
	Studies []StudyRecord `json:"studies,omitempty"`
}
