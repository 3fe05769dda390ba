package firclient

import (
	"encoding/json"
	"fmt"
)

// PersonalInfo is the complainant data the backend extracts from a
// statement.
type PersonalInfo struct {
	VictimName          string `json:"victim_name,omitempty"`
	FatherOrHusbandName string `json:"father_or_husband_name,omitempty"`
	DOB                 string `json:"dob,omitempty"`
	Nationality         string `json:"nationality,omitempty"`
	Occupation          string `json:"occupation,omitempty"`
	Address             string `json:"address,omitempty"`
	IncidentDate        string `json:"incident_date,omitempty"`
	IncidentTime        string `json:"incident_time,omitempty"`
	IncidentLocation    string `json:"incident_location,omitempty"`
	IncidentDetails     string `json:"incident_details,omitempty"`
	AccusedDescription  string `json:"accused_description,omitempty"`
	StolenProperties    string `json:"stolen_properties,omitempty"`
	TotalValue          string `json:"total_value,omitempty"`
	DelayReason         string `json:"delay_reason,omitempty"`
}

// LegalData is the act/section breakdown extracted by the backend.
type LegalData struct {
	Act1      string `json:"act1,omitempty"`
	Sections1 string `json:"sections1,omitempty"`
	Act2      string `json:"act2,omitempty"`
	Sections2 string `json:"sections2,omitempty"`
	Act3      string `json:"act3,omitempty"`
	Sections3 string `json:"sections3,omitempty"`
}

// Report is the backend's full analysis of an uploaded statement or audio
// file. Sentiment and CrimePredictions are model output with no fixed shape,
// so they stay raw.
type Report struct {
	Status           string          `json:"status"`
	TranscribedText  string          `json:"transcribed_text"`
	PersonalInfo     PersonalInfo    `json:"personal_info"`
	Sentiment        json.RawMessage `json:"sentiment,omitempty"`
	CrimePredictions json.RawMessage `json:"crime_predictions,omitempty"`
	LegalSections    string          `json:"legal_sections,omitempty"`
	LegalData        LegalData       `json:"legal_data,omitempty"`
	FIRDraft         string          `json:"fir_draft"`
	Language         string          `json:"language"`
}

// TranscribeResult is the backend's answer to a transcription request.
type TranscribeResult struct {
	Text         string       `json:"text"`
	PersonalInfo PersonalInfo `json:"personal_info,omitempty"`
	Language     string       `json:"language,omitempty"`
}

// UpdateRequest carries edited report fields back to the backend for a
// regenerated draft.
type UpdateRequest struct {
	VictimName          string `json:"victim_name,omitempty"`
	FatherOrHusbandName string `json:"father_or_husband_name,omitempty"`
	DOB                 string `json:"dob,omitempty"`
	Nationality         string `json:"nationality,omitempty"`
	Occupation          string `json:"occupation,omitempty"`
	Address             string `json:"address,omitempty"`
	IncidentDate        string `json:"incident_date,omitempty"`
	IncidentTime        string `json:"incident_time,omitempty"`
	IncidentLocation    string `json:"incident_location,omitempty"`
	ComplaintDetails    string `json:"complaint_details,omitempty"`
	AccusedDetails      string `json:"accused_details,omitempty"`
	StolenProperties    string `json:"stolen_properties,omitempty"`
	TotalValue          string `json:"total_value,omitempty"`
	InquestReport       string `json:"inquest_report,omitempty"`
	DelayReason         string `json:"delay_reason,omitempty"`
	Language            string `json:"language,omitempty"`
}

// APIError is a non-2xx backend response. Message carries the backend's own
// error text verbatim when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}
