package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	carebridge "github.com/carebridge/sdk-go"
)

func newAppointmentsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "List and schedule appointments",
	}

	cmd.AddCommand(
		newAppointmentsListCmd(flags),
		newAppointmentsScheduleCmd(flags),
	)
	return cmd
}

func newAppointmentsListCmd(flags *rootFlags) *cobra.Command {
	var status string
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := client.ListAppointments(cmd.Context(), carebridge.ListAppointmentsOptions{
				Status: carebridge.AppointmentStatus(status),
				Page:   carebridge.Page{Page: page, PerPage: perPage},
			})
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (scheduled, completed, cancelled)")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "page size")

	return cmd
}

func newAppointmentsScheduleCmd(flags *rootFlags) *cobra.Command {
	var caregiverID, visitType, startsAt, reason, address, hospital string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Book a new appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(time.RFC3339, startsAt)
			if err != nil {
				return fmt.Errorf("invalid --starts-at, expected RFC3339: %w", err)
			}

			client, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			appt, err := client.ScheduleAppointment(cmd.Context(), carebridge.ScheduleAppointmentRequest{
				CaregiverID: caregiverID,
				Type:        carebridge.AppointmentType(visitType),
				StartsAt:    start,
				Reason:      reason,
				Address:     address,
				Hospital:    hospital,
			})
			if err != nil {
				return err
			}
			return printJSON(appt)
		},
	}

	cmd.Flags().StringVar(&caregiverID, "caregiver", "", "caregiver ID")
	cmd.Flags().StringVar(&visitType, "type", "virtual", "visit type (virtual, in_home, in_hospital)")
	cmd.Flags().StringVar(&startsAt, "starts-at", "", "start time, RFC3339")
	cmd.Flags().StringVar(&reason, "reason", "", "reason for the visit")
	cmd.Flags().StringVar(&address, "address", "", "address for in-home visits")
	cmd.Flags().StringVar(&hospital, "hospital", "", "hospital for in-hospital visits")
	_ = cmd.MarkFlagRequired("caregiver")
	_ = cmd.MarkFlagRequired("starts-at")

	return cmd
}
