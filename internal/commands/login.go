package commands

import (
	"github.com/spf13/cobra"

	carebridge "github.com/carebridge/sdk-go"
)

func newLoginCmd(flags *rootFlags) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and print the access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newClient(flags)
			if err != nil {
				return err
			}
			defer client.Close()

			payload, err := client.Login(cmd.Context(), carebridge.LoginRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}

			return printJSON(map[string]any{
				"accessToken": payload.AccessToken,
				"user":        payload.User,
				"isBoarded":   payload.IsBoarded,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
