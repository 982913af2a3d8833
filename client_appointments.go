package carebridge

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// AppointmentType distinguishes how a visit is delivered.
type AppointmentType string

const (
	AppointmentVirtual    AppointmentType = "virtual"
	AppointmentInHome     AppointmentType = "in_home"
	AppointmentInHospital AppointmentType = "in_hospital"
)

// AppointmentStatus tracks an appointment through its lifecycle.
type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// Appointment mirrors the scheduled-visit entity returned by the backend.
type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patientId"`
	CaregiverID string            `json:"caregiverId"`
	Type        AppointmentType   `json:"type"`
	Status      AppointmentStatus `json:"status"`
	StartsAt    time.Time         `json:"startsAt"`
	EndsAt      time.Time         `json:"endsAt,omitempty"`
	Reason      string            `json:"reason,omitempty"`
	Address     string            `json:"address,omitempty"`
	Hospital    string            `json:"hospital,omitempty"`
	MeetingLink string            `json:"meetingLink,omitempty"`
	Rating      int               `json:"rating,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// AppointmentPage is one page of appointment listings.
type AppointmentPage struct {
	Appointments []Appointment `json:"appointments"`
	Total        int           `json:"total"`
}

// ScheduleAppointmentRequest books a new visit. Address is required for
// in-home visits; Hospital for in-hospital ones.
type ScheduleAppointmentRequest struct {
	CaregiverID string          `json:"caregiverId" validate:"required"`
	Type        AppointmentType `json:"type" validate:"required,oneof=virtual in_home in_hospital"`
	StartsAt    time.Time       `json:"startsAt" validate:"required"`
	Reason      string          `json:"reason,omitempty"`
	Address     string          `json:"address,omitempty" validate:"required_if=Type in_home"`
	Hospital    string          `json:"hospital,omitempty" validate:"required_if=Type in_hospital"`
}

// RateAppointmentRequest records the patient's rating for a completed
// visit.
type RateAppointmentRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment,omitempty"`
}

// ListAppointmentsOptions filters appointment listings.
type ListAppointmentsOptions struct {
	Status AppointmentStatus
	From   time.Time
	To     time.Time
	Page   Page
}

// ListAppointments returns the caller's appointments, newest first.
func (c *Client) ListAppointments(ctx context.Context, opts ListAppointmentsOptions) (*AppointmentPage, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", string(opts.Status))
	}
	if !opts.From.IsZero() {
		params.Set("from", opts.From.Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		params.Set("to", opts.To.Format(time.RFC3339))
	}
	opts.Page.apply(params)

	res, err := Call[AppointmentPage](ctx, c, Request{
		Method: http.MethodGet,
		Path:   "/v1/appointments",
		Params: params,
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// AdminListAppointments returns appointments across all patients for the
// admin dashboard. Requires an admin session.
func (c *Client) AdminListAppointments(ctx context.Context, opts ListAppointmentsOptions) (*AppointmentPage, error) {
	params := url.Values{}
	if opts.Status != "" {
		params.Set("status", string(opts.Status))
	}
	opts.Page.apply(params)

	res, err := Call[AppointmentPage](ctx, c, Request{
		Rail:   RailAdmin,
		Method: http.MethodGet,
		Path:   "/v1/appointments",
		Params: params,
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// ScheduleAppointment books a new visit.
func (c *Client) ScheduleAppointment(ctx context.Context, req ScheduleAppointmentRequest) (*Appointment, error) {
	if err := validateRequest(req); err != nil {
		return nil, ClassifyError(err)
	}

	res, err := Call[Appointment](ctx, c, Request{
		Method:  http.MethodPost,
		Path:    "/v1/appointments",
		JSON:    req,
		DataKey: []string{"data", "appointment"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// RescheduleAppointment moves an existing visit to a new start time.
func (c *Client) RescheduleAppointment(ctx context.Context, appointmentID string, startsAt time.Time) (*Appointment, error) {
	if appointmentID == "" {
		return nil, ClassifyError(fmt.Errorf("appointmentID is required"))
	}

	res, err := Call[Appointment](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/v1/appointments/" + url.PathEscape(appointmentID) + "/reschedule",
		JSON: map[string]string{
			"startsAt": startsAt.Format(time.RFC3339),
		},
		DataKey: []string{"data", "appointment"},
	})
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

// CancelAppointment cancels a scheduled visit.
func (c *Client) CancelAppointment(ctx context.Context, appointmentID, reason string) error {
	if appointmentID == "" {
		return ClassifyError(fmt.Errorf("appointmentID is required"))
	}

	_, err := Call[struct{}](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/v1/appointments/" + url.PathEscape(appointmentID) + "/cancel",
		JSON:   map[string]string{"reason": reason},
	})
	return err
}

// RateAppointment records a rating for a completed visit.
func (c *Client) RateAppointment(ctx context.Context, appointmentID string, req RateAppointmentRequest) error {
	if appointmentID == "" {
		return ClassifyError(fmt.Errorf("appointmentID is required"))
	}
	if err := validateRequest(req); err != nil {
		return ClassifyError(err)
	}

	_, err := Call[struct{}](ctx, c, Request{
		Method: http.MethodPost,
		Path:   "/v1/appointments/" + url.PathEscape(appointmentID) + "/rate",
		JSON:   req,
	})
	return err
}
