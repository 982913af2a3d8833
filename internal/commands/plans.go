package commands

import (
	"github.com/spf13/cobra"
)

func newPlansCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List available subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			plans, err := client.ListPlans(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(plans)
		},
	}
}
