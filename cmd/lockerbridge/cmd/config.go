package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/lockerbridge/internal/config"
)

func init() {
	configCmd.AddCommand(configCheckCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration helpers",
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load and validate the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		env := cfg.App.Env
		if cfg.IsMock() {
			env = config.EnvMock
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "environment: %s\n", env)
		fmt.Fprintf(out, "addr:        %s\n", cfg.Server.Addr)
		fmt.Fprintf(out, "public url:  %s\n", cfg.Server.PublicURL)
		fmt.Fprintf(out, "store:       %s\n", cfg.Store.Driver)
		fmt.Fprintf(out, "metrics:     %t\n", cfg.Metrics.Enabled)
		fmt.Fprintln(out, "ok")
		return nil
	},
}
