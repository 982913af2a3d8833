package carebridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// VitalKind identifies the measurement being tracked.
type VitalKind string

const (
	VitalBloodPressure VitalKind = "blood_pressure"
	VitalHeartRate     VitalKind = "heart_rate"
	VitalGlucose       VitalKind = "glucose"
	VitalTemperature   VitalKind = "temperature"
	VitalWeight        VitalKind = "weight"
	VitalOxygen        VitalKind = "oxygen"
)

// Vital is one recorded measurement.
type Vital struct {
	ID         string    `json:"id"`
	PatientID  string    `json:"patientId"`
	Kind       VitalKind `json:"kind"`
	Value      float64   `json:"value"`
	Secondary  float64   `json:"secondary,omitempty"`
	Unit       string    `json:"unit"`
	MeasuredAt time.Time `json:"measuredAt"`
	RecordedBy string    `json:"recordedBy,omitempty"`
}

// VitalHistoryPage is one page of historical readings for a single kind.
type VitalHistoryPage struct {
	Total   int     `json:"total"`
	Entries []Vital `json:"entries"`
}

// RecordVitalRequest logs a new measurement. Secondary carries the
// diastolic value for blood pressure readings.
type RecordVitalRequest struct {
	Kind       VitalKind `json:"kind" validate:"required,oneof=blood_pressure heart_rate glucose temperature weight oxygen"`
	Value      float64   `json:"value" validate:"required"`
	Secondary  float64   `json:"secondary,omitempty"`
	Unit       string    `json:"unit" validate:"required"`
	MeasuredAt time.Time `json:"measuredAt" validate:"required"`
}

// Report is an uploaded medical document.
type Report struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"sizeBytes"`
	Notes      string    `json:"notes,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Note is a free-form care note attached to a patient record.
type Note struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordVital logs a measurement for the current patient.
func (c *Client) RecordVital(ctx context.Context, req RecordVitalRequest) (*Vital, error) {
	if err := validateRequest(req); err != nil {
		return nil, ClassifyError(err)
	}

	res, err := Call[Vital](ctx, c, Request{
		Method:  http.MethodPost,
		Path:    "/v1/vitals",
		JSON:    req,
		DataKey: []string{"data", "vital"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// ListVitals returns the patient's most recent reading of each kind.
func (c *Client) ListVitals(ctx context.Context) ([]Vital, error) {
	res, err := Call[[]Vital](ctx, c, Request{
		Method:  http.MethodGet,
		Path:    "/v1/vitals",
		DataKey: []string{"data", "vitals"},
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// VitalHistory returns historical readings of one kind. The backend nests
// the page under data.histories.
func (c *Client) VitalHistory(ctx context.Context, kind VitalKind, page Page) (*VitalHistoryPage, error) {
	if kind == "" {
		return nil, ClassifyError(fmt.Errorf("kind is required"))
	}

	params := url.Values{}
	page.apply(params)

	res, err := Call[VitalHistoryPage](ctx, c, Request{
		Method:  http.MethodGet,
		Path:    "/v1/vitals/" + url.PathEscape(string(kind)) + "/history",
		Params:  params,
		DataKey: []string{"data", "histories"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// UploadReportRequest uploads a medical document. When Content is empty
// the submission degrades to a metadata-only JSON post.
type UploadReportRequest struct {
	Title       string `validate:"required"`
	Notes       string
	Filename    string
	ContentType string
	Content     []byte
}

// UploadReport stores a medical document against the patient record.
func (c *Client) UploadReport(ctx context.Context, req UploadReportRequest) (*Report, error) {
	if err := validateRequest(req); err != nil {
		return nil, ClassifyError(err)
	}

	form := &Form{}
	form.Set("title", req.Title)
	if req.Notes != "" {
		form.Set("notes", req.Notes)
	}
	if len(req.Content) > 0 {
		form.AddFile("file", req.Filename, req.ContentType, req.Content)
	}

	res, err := Call[Report](ctx, c, Request{
		Method:  http.MethodPost,
		Path:    "/v1/reports",
		Form:    form,
		DataKey: []string{"data", "report"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// ListReports returns the patient's uploaded documents.
func (c *Client) ListReports(ctx context.Context, page Page) ([]Report, error) {
	params := url.Values{}
	page.apply(params)

	res, err := Call[[]Report](ctx, c, Request{
		Method:  http.MethodGet,
		Path:    "/v1/reports",
		Params:  params,
		DataKey: []string{"data", "reports"},
	})
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// AddNote attaches a care note to a patient record.
func (c *Client) AddNote(ctx context.Context, patientID, body string) (*Note, error) {
	if patientID == "" || body == "" {
		return nil, ClassifyError(fmt.Errorf("patientID and body are required"))
	}

	res, err := Call[Note](ctx, c, Request{
		Method:  http.MethodPost,
		Path:    "/v1/patients/" + url.PathEscape(patientID) + "/notes",
		JSON:    map[string]string{"body": body},
		DataKey: []string{"data", "note"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}
