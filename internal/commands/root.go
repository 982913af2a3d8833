// Package commands wires the carebridge CLI: thin cobra commands over
// the SDK client, printing JSON results to stdout.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	carebridge "github.com/carebridge/sdk-go"
	"github.com/carebridge/sdk-go/version"
)

type rootFlags struct {
	configPath string
	clientURL  string
	adminURL   string
	token      string
}

// NewRootCmd creates the carebridge root command.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "carebridge",
		Short:         "Interact with the CareBridge healthcare coordination API",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return EnsureConfigDir()
		},
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config.yaml (default ~/.config/carebridge/config.yaml)")
	cmd.PersistentFlags().StringVar(&flags.clientURL, "client-url", "", "patient/caregiver API base URL")
	cmd.PersistentFlags().StringVar(&flags.adminURL, "admin-url", "", "admin API base URL")
	cmd.PersistentFlags().StringVar(&flags.token, "token", "", "bearer token for authenticated calls")

	cmd.AddCommand(
		newLoginCmd(flags),
		newAppointmentsCmd(flags),
		newVitalsCmd(flags),
		newPlansCmd(flags),
	)

	return cmd
}

// Execute runs the CLI and returns a process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// newClient builds an SDK client from flags, file config, and env.
func newClient(flags *rootFlags) (*carebridge.Client, error) {
	fileCfg, err := LoadFileConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	cfg := carebridge.Config{
		ClientBaseURL: firstNonEmpty(flags.clientURL, fileCfg.ClientURL),
		AdminBaseURL:  firstNonEmpty(flags.adminURL, fileCfg.AdminURL),
	}

	if token := firstNonEmpty(flags.token, fileCfg.Token); token != "" {
		cfg.Sessions = carebridge.StaticSession(carebridge.Session{
			AccessToken: token,
			IsLoggedIn:  true,
		})
	}

	return carebridge.NewClient(cfg)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// printJSON renders a command result to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
