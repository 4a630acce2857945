package radflow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	statusSuccess = "Success"

	// defaultPreArrivalMinutes is how early patients are asked to arrive
	// before their appointment; the upstream API does not provide it.
	defaultPreArrivalMinutes = 30

	// sentinelNotScheduled marks an appointment slot that has no real time yet.
	sentinelNotScheduled = "Not Yet Scheduled"
)

// unwrapNestedList decodes the inner `result.result` field, which the
// upstream delivers either as a JSON-encoded string or as a native array.
// A nil slice with a nil error is the empty case (absent field, null, or any
// other unexpected type). A non-nil error means the string variant carried
// invalid JSON.
func unwrapNestedList(res *EnvelopeResult) ([]map[string]any, error) {
	if res == nil {
		return nil, nil
	}

	raw := bytes.TrimSpace(res.Result)
	if len(raw) == 0 {
		return nil, nil
	}

	switch raw[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, err
		}
		var items []map[string]any
		if err := json.Unmarshal([]byte(encoded), &items); err != nil {
			return nil, err
		}
		return items, nil
	case '[':
		var items []map[string]any
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, nil
		}
		return items, nil
	default:
		return nil, nil
	}
}

// NormalizePatients converts a raw upstream envelope into a PatientResult.
// fallbackPhone fills the phone field of patients whose raw record lacks one.
// It never panics; every failure mode becomes a structured failure result.
func NormalizePatients(env *Envelope, fallbackPhone string) PatientResult {
	if env == nil {
		return PatientResult{Success: false, Error: "API response indicates failure"}
	}

	if env.ResponseStatus != statusSuccess {
		msg := env.Exception
		if msg == "" {
			msg = "API response indicates failure"
		}
		return PatientResult{Success: false, Error: msg}
	}

	items, err := unwrapNestedList(env.Result)
	if err != nil {
		return PatientResult{Success: false, Error: "Failed to parse patient data"}
	}

	if len(items) == 0 {
		return PatientResult{Success: false, Error: "No patients found"}
	}

	total := len(items)
	if env.Result.TotalPatients != nil {
		total = *env.Result.TotalPatients
	}

	patients := make([]PatientRecord, 0, len(items))
	labels := make([]string, 0, len(items))

	for i, item := range items {
		p := PatientRecord{
			PatientID:       stringField(item, "PatientId"),
			FirstName:       stringField(item, "FirstName"),
			LastName:        stringField(item, "LastName"),
			Phone:           fallbackPhone,
			Sex:             strings.TrimSpace(stringField(item, "Sex")),
			FinancialType:   stringField(item, "FinancialTypeName"),
			Language:        stringField(item, "LANGUAGE"),
			BirthDate:       stringField(item, "BirthDate"),
			Address:         stringField(item, "ADDRESS"),
			DateOfInjury:    stringField(item, "Doi"),
			DateOfLoss:      stringField(item, "DOL"),
			RadiologistName: stringField(item, "RadiologistName"),
		}
		if _, ok := item["Phone"]; ok {
			p.Phone = stringField(item, "Phone")
		}
		patients = append(patients, p)

		name := strings.TrimSpace(p.FirstName + " " + p.LastName)
		labels = append(labels, fmt.Sprintf("%d. %s (ID: %s)", i+1, name, p.PatientID))
	}

	return PatientResult{
		Success:      true,
		Message:      fmt.Sprintf("Successfully processed %d patients", total),
		Patients:     patients,
		NumberedList: strings.Join(labels, "\n"),
	}
}

// NormalizeStudies converts a raw upstream envelope into a StudyResult for
// the given patient.
func NormalizeStudies(env *Envelope, patientID string) StudyResult {
	if env == nil {
		return StudyResult{Success: false, Error: "API response indicates failure"}
	}

	if env.ResponseStatus != statusSuccess {
		msg := env.Exception
		if msg == "" {
			msg = "API response indicates failure"
		}
		return StudyResult{Success: false, Error: msg}
	}

	items, err := unwrapNestedList(env.Result)
	if err != nil {
		return StudyResult{Success: false, Error: "Failed to parse study data"}
	}

	if len(items) == 0 {
		return StudyResult{Success: false, Error: "No studies found"}
	}

	studies := make([]StudyRecord, 0, len(items))
	for _, item := range items {
		studies = append(studies, normalizeStudy(item))
	}

	return StudyResult{
		Success: true,
		Message: fmt.Sprintf("Successfully retrieved %d studies for patient %s", len(studies), patientID),
		Studies: studies,
	}
}

func normalizeStudy(item map[string]any) StudyRecord {
	// Walk the full status history in order; the final non-empty entry wins.
	status := "Unknown"
	scheduledTime := ""
	if history, ok := item["AppointmentStatuses"].([]any); ok {
		for _, raw := range history {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if v := stringField(entry, "Status"); v != "" {
				status = v
			}
			if v := stringField(entry, "ScheduledFor"); v != "" && v != sentinelNotScheduled {
				scheduledTime = v
			}
		}
	}

	var facility Facility
	if used, ok := item["FacilityUsed"].([]any); ok && len(used) > 0 {
		if first, ok := used[0].(map[string]any); ok {
			facility.FacilityName = stringField(first, "FacilityName")
			facility.Address = stringField(first, "Address")
		}
	}

	return StudyRecord{
		AppointmentTime:     scheduledTime,
		PreArrivalMinutes:   defaultPreArrivalMinutes,
		Facility:            facility,
		StudyDescription:    stringField(item, "StudyDescription"),
		Status:              status,
		Modality:            stringField(item, "Modality"),
		ReferringPhysician:  strings.TrimSpace(stringField(item, "SchedulerName")),
		Insurance:           "",
		AuthorizationNumber: stringField(item, "AccessionNumber"),
		StudyDateTime:       stringField(item, "StudyDateTime"),
	}
}

// stringField reads a string-valued key from a decoded JSON object, mapping
// absent keys and non-string values to "".
func stringField(item map[string]any, key string) string {
	v, ok := item[key].(string)
	if !ok {
		return ""
	}
	return v
}
