package radflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func envelopeFromJSON(t *testing.T, raw string) *Envelope {
	t.Helper()

	env := new(Envelope)
	require.NoError(t, json.Unmarshal([]byte(raw), env))
	return env
}

func TestNormalizePatientsEncodingInvariance(t *testing.T) {
	encoded := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": "[{\"PatientId\":\"P1\",\"FirstName\":\"Jo\",\"LastName\":\"Doe\"},{\"PatientId\":\"P2\",\"FirstName\":\"Amy\",\"LastName\":\"Lee\"}]"}
	}`)
	native := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{"PatientId":"P1","FirstName":"Jo","LastName":"Doe"},{"PatientId":"P2","FirstName":"Amy","LastName":"Lee"}]}
	}`)

	fromEncoded := NormalizePatients(encoded, "555")
	fromNative := NormalizePatients(native, "555")

	require.True(t, fromEncoded.Success)
	require.Equal(t, fromEncoded, fromNative)
}

func TestNormalizePatientsStatusGate(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Failed",
		"exception": "backend unavailable",
		"result": {"result": [{"PatientId":"P1"}]}
	}`)

	result := NormalizePatients(env, "")
	require.False(t, result.Success)
	require.Equal(t, "backend unavailable", result.Error)

	env = envelopeFromJSON(t, `{"responseStatus": "Failed"}`)
	result = NormalizePatients(env, "")
	require.False(t, result.Success)
	require.Equal(t, "API response indicates failure", result.Error)
}

func TestNormalizePatientsEmptyList(t *testing.T) {
	for _, raw := range []string{
		`{"responseStatus": "Success", "result": {"result": []}}`,
		`{"responseStatus": "Success", "result": {"result": "[]"}}`,
		`{"responseStatus": "Success", "result": {}}`,
		`{"responseStatus": "Success", "result": {"result": null}}`,
		`{"responseStatus": "Success", "result": {"result": 42}}`,
		`{"responseStatus": "Success"}`,
	} {
		result := NormalizePatients(envelopeFromJSON(t, raw), "")
		require.False(t, result.Success, raw)
		require.Equal(t, "No patients found", result.Error, raw)
	}
}

func TestNormalizePatientsParseFailure(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": "this is not json"}
	}`)

	result := NormalizePatients(env, "")
	require.False(t, result.Success)
	require.Equal(t, "Failed to parse patient data", result.Error)
}

func TestNormalizePatientsFieldDefaults(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{}]}
	}`)

	result := NormalizePatients(env, "555")
	require.True(t, result.Success)
	require.Len(t, result.Patients, 1)

	p := result.Patients[0]
	require.Equal(t, "555", p.Phone)
	require.Empty(t, p.PatientID)
	require.Empty(t, p.FirstName)
	require.Empty(t, p.LastName)
	require.Empty(t, p.Sex)
	require.Empty(t, p.FinancialType)
	require.Empty(t, p.Language)
	require.Empty(t, p.BirthDate)
	require.Empty(t, p.Address)
	require.Empty(t, p.DateOfInjury)
	require.Empty(t, p.DateOfLoss)
	require.Empty(t, p.RadiologistName)
}

func TestNormalizePatientsEndToEnd(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": "[{\"PatientId\":\"P1\",\"FirstName\":\"Jo\",\"LastName\":\"Doe\"}]", "totalPatients": 1}
	}`)

	result := NormalizePatients(env, "555")
	require.True(t, result.Success)
	require.Equal(t, "Successfully processed 1 patients", result.Message)
	require.Equal(t, "1. Jo Doe (ID: P1)", result.NumberedList)
	require.Equal(t, []PatientRecord{{
		PatientID: "P1",
		FirstName: "Jo",
		LastName:  "Doe",
		Phone:     "555",
	}}, result.Patients)
}

func TestNormalizePatientsTrimsSexAndUsesUpstreamPhone(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{"PatientId":"P1","Sex":"M  ","Phone":"777"}]}
	}`)

	result := NormalizePatients(env, "555")
	require.True(t, result.Success)
	require.Equal(t, "M", result.Patients[0].Sex)
	require.Equal(t, "777", result.Patients[0].Phone)
}

func TestNormalizePatientsTotalFromUpstream(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{"PatientId":"P1"},{"PatientId":"P2"}], "totalPatients": 17}
	}`)

	result := NormalizePatients(env, "")
	require.True(t, result.Success)
	require.Equal(t, "Successfully processed 17 patients", result.Message)
	require.Len(t, result.Patients, 2)
}

func TestNormalizePatientsNumberedListOrder(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{"PatientId":"P1","FirstName":"Jo","LastName":"Doe"},{"PatientId":"P2","FirstName":"Amy","LastName":"Lee"}]}
	}`)

	result := NormalizePatients(env, "")
	require.True(t, result.Success)
	require.Equal(t, "1. Jo Doe (ID: P1)\n2. Amy Lee (ID: P2)", result.NumberedList)
}

func TestNormalizePatientsIdempotent(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{"PatientId":"P1","FirstName":"Jo"}]}
	}`)

	first := NormalizePatients(env, "555")
	second := NormalizePatients(env, "555")
	require.Equal(t, first, second)
}

func TestNormalizeStudiesStatusLastWins(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{"AppointmentStatuses": [{"Status":"A"},{"Status":"B"}]}]}
	}`)

	result := NormalizeStudies(env, "P1")
	require.True(t, result.Success)
	require.Equal(t, "B", result.Studies[0].Status)
}

func TestNormalizeStudiesScheduledTimeSkipsSentinel(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{"AppointmentStatuses": [
			{"Status":"Scheduled","ScheduledFor":"2026-01-02 09:00"},
			{"Status":"Rescheduled","ScheduledFor":"Not Yet Scheduled"}
		]}]}
	}`)

	result := NormalizeStudies(env, "P1")
	require.True(t, result.Success)
	require.Equal(t, "2026-01-02 09:00", result.Studies[0].AppointmentTime)
	require.Equal(t, "Rescheduled", result.Studies[0].Status)
}

func TestNormalizeStudiesDefaults(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{}]}
	}`)

	result := NormalizeStudies(env, "P1")
	require.True(t, result.Success)
	require.Equal(t, "Successfully retrieved 1 studies for patient P1", result.Message)

	s := result.Studies[0]
	require.Equal(t, "Unknown", s.Status)
	require.Equal(t, 30, s.PreArrivalMinutes)
	require.Empty(t, s.AppointmentTime)
	require.Empty(t, s.Facility.FacilityName)
	require.Empty(t, s.Facility.Address)
	require.Empty(t, s.Insurance)
}

func TestNormalizeStudiesFacilityAndPhysician(t *testing.T) {
	env := envelopeFromJSON(t, `{
		"responseStatus": "Success",
		"result": {"result": [{
			"FacilityUsed": [
				{"FacilityName":"Downtown Imaging","Address":"1 Main St"},
				{"FacilityName":"Uptown Imaging","Address":"9 Elm St"}
			],
			"SchedulerName": "  Dr. Smith ",
			"StudyDescription": "MRI Brain",
			"Modality": "MR",
			"AccessionNumber": "ACC-1",
			"StudyDateTime": "2026-01-02 09:00"
		}]}
	}`)

	result := NormalizeStudies(env, "P1")
	require.True(t, result.Success)

	s := result.Studies[0]
	require.Equal(t, "Downtown Imaging", s.Facility.FacilityName)
	require.Equal(t, "1 Main St", s.Facility.Address)
	require.Equal(t, "Dr. Smith", s.ReferringPhysician)
	require.Equal(t, "MRI Brain", s.StudyDescription)
	require.Equal(t, "MR", s.Modality)
	require.Equal(t, "ACC-1", s.AuthorizationNumber)
	require.Equal(t, "2026-01-02 09:00", s.StudyDateTime)
}

func TestNormalizeStudiesEmptyList(t *testing.T) {
	env := envelopeFromJSON(t, `{"responseStatus": "Success", "result": {"result": []}}`)

	result := NormalizeStudies(env, "P1")
	require.False(t, result.Success)
	require.Equal(t, "No studies found", result.Error)
}

func TestNormalizeStudiesParseFailure(t *testing.T) {
	env := envelopeFromJSON(t, `{"responseStatus": "Success", "result": {"result": "{broken"}}`)

	result := NormalizeStudies(env, "P1")
	require.False(t, result.Success)
	require.Equal(t, "Failed to parse study data", result.Error)
}
