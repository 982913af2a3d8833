package carebridge_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	carebridge "github.com/carebridge/sdk-go"
	"github.com/carebridge/sdk-go/internal/fakeapi"
)

func TestListAppointments(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	page, err := client.ListAppointments(context.Background(), carebridge.ListAppointmentsOptions{
		Status: carebridge.AppointmentScheduled,
	})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	require.Len(t, page.Appointments, 1)
	require.Equal(t, carebridge.AppointmentVirtual, page.Appointments[0].Type)
}

func TestScheduleAppointment(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	appt, err := client.ScheduleAppointment(context.Background(), carebridge.ScheduleAppointmentRequest{
		CaregiverID: "cg-9",
		Type:        carebridge.AppointmentVirtual,
		StartsAt:    time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second),
	})
	require.NoError(t, err)
	require.Equal(t, "appt-42", appt.ID)
	require.Equal(t, "cg-9", appt.CaregiverID)
}

func TestScheduleAppointmentRequiresAddressForInHome(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	_, err := client.ScheduleAppointment(context.Background(), carebridge.ScheduleAppointmentRequest{
		CaregiverID: "cg-9",
		Type:        carebridge.AppointmentInHome,
		StartsAt:    time.Now().UTC().Add(48 * time.Hour),
	})
	require.Error(t, err)

	var apiErr *carebridge.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, carebridge.ErrorTypeValidation, apiErr.Type)
	require.Contains(t, apiErr.FieldErrors, "address")
	require.Zero(t, srv.Calls("/v1/appointments"))
}

func TestRescheduleAppointmentRetriesThroughOutage(t *testing.T) {
	srv := fakeapi.New(
		fakeapi.FailFirst("/v1/appointments/appt-42/reschedule", 3, http.StatusInternalServerError, ""),
	)
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	startsAt := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	appt, err := client.RescheduleAppointment(context.Background(), "appt-42", startsAt)
	require.NoError(t, err)
	require.Equal(t, "appt-42", appt.ID)
	require.True(t, appt.StartsAt.Equal(startsAt))

	// 3 failures then the success: 4 attempts total.
	require.Equal(t, 4, srv.Calls("/v1/appointments/appt-42/reschedule"))
}

func TestRateAppointmentValidatesBounds(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	err := client.RateAppointment(context.Background(), "appt-42", carebridge.RateAppointmentRequest{
		Rating: 6,
	})
	require.Error(t, err)

	var apiErr *carebridge.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, carebridge.ErrorTypeValidation, apiErr.Type)
	require.Contains(t, apiErr.FieldErrors, "rating")
}

func TestCancelAppointment(t *testing.T) {
	srv := fakeapi.New()
	defer srv.Close()

	client := newTestClient(t, srv.URL, carebridge.Config{})

	require.NoError(t, client.CancelAppointment(context.Background(), "appt-42", "feeling better"))
	require.Equal(t, 1, srv.Calls("/v1/appointments/appt-42/cancel"))
}

func TestAdminListAppointmentsUsesAdminRail(t *testing.T) {
	adminSrv := fakeapi.New()
	defer adminSrv.Close()
	clientSrv := fakeapi.New()
	defer clientSrv.Close()

	client := newTestClient(t, clientSrv.URL, carebridge.Config{
		AdminBaseURL: adminSrv.URL,
		Sessions: carebridge.StaticSession(carebridge.Session{
			AccessToken: "token-admin",
			IsLoggedIn:  true,
			UserType:    carebridge.UserTypeAdmin,
		}),
	})

	_, err := client.AdminListAppointments(context.Background(), carebridge.ListAppointmentsOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, adminSrv.Calls("/v1/appointments"))
	require.Zero(t, clientSrv.Calls("/v1/appointments"))
}
