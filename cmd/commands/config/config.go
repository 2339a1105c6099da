package config

import (
	"gcpops/buildmedic/internal/config"

	"github.com/spf13/cobra"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage buildmedic configuration",
		Long: "View and modify persistent buildmedic settings.\n\n" +
			"Configuration is stored at ~/.config/buildmedic/config.json.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(SetCommand())
	cmd.AddCommand(GetCommand())

	return cmd
}
