package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	carebridge "github.com/carebridge/sdk-go"
)

func newVitalsCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vitals",
		Short: "Record and review vital sign measurements",
	}

	cmd.AddCommand(
		newVitalsLogCmd(flags),
		newVitalsHistoryCmd(flags),
	)
	return cmd
}

func newVitalsLogCmd(flags *rootFlags) *cobra.Command {
	var kind, unit, measuredAt string
	var value, secondary float64

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Record a new measurement",
		RunE: func(cmd *cobra.Command, args []string) error {
			at := time.Now()
			if measuredAt != "" {
				parsed, err := time.Parse(time.RFC3339, measuredAt)
				if err != nil {
					return fmt.Errorf("invalid --measured-at, expected RFC3339: %w", err)
				}
				at = parsed
			}

			client, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			vital, err := client.RecordVital(cmd.Context(), carebridge.RecordVitalRequest{
				Kind:       carebridge.VitalKind(kind),
				Value:      value,
				Secondary:  secondary,
				Unit:       unit,
				MeasuredAt: at,
			})
			if err != nil {
				return err
			}
			return printJSON(vital)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "measurement kind (blood_pressure, heart_rate, glucose, temperature, weight, oxygen)")
	cmd.Flags().Float64Var(&value, "value", 0, "measured value (systolic for blood pressure)")
	cmd.Flags().Float64Var(&secondary, "secondary", 0, "secondary value (diastolic for blood pressure)")
	cmd.Flags().StringVar(&unit, "unit", "", "measurement unit")
	cmd.Flags().StringVar(&measuredAt, "measured-at", "", "measurement time, RFC3339 (defaults to now)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("unit")

	return cmd
}

func newVitalsHistoryCmd(flags *rootFlags) *cobra.Command {
	var kind string
	var page, perPage int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past readings for one measurement kind",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			history, err := client.VitalHistory(cmd.Context(), carebridge.VitalKind(kind), carebridge.Page{
				Page:    page,
				PerPage: perPage,
			})
			if err != nil {
				return err
			}
			return printJSON(history)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "measurement kind")
	cmd.Flags().IntVar(&page, "page", 0, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "page size")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}
