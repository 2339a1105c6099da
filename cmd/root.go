package cmd

import (
	"os"

	"gcpops/buildmedic/cmd/commands/audit"
	"gcpops/buildmedic/cmd/commands/builds"
	cfgcmd "gcpops/buildmedic/cmd/commands/config"
	"gcpops/buildmedic/cmd/commands/diagnose"
	"gcpops/buildmedic/cmd/commands/grants"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "buildmedic",
		Short: "Diagnose and fix Cloud Build permission failures",
		Long: `buildmedic inspects Cloud Build logs for known permission-failure
signatures, recommends IAM role grants for the build service account,
applies them with a durable grant record, and can revert them later
from that record.

It wraps the gcloud CLI: gcloud must be installed and authenticated.

Quick start:
  buildmedic config set default-project my-project
  buildmedic builds list                 # Recent builds
  buildmedic diagnose --build <id>       # Inspect a failed build
  buildmedic diagnose --build <id> --apply   # ...and grant missing roles
  buildmedic grants revoke --record <path>   # Undo a previous apply`,
	}

	cmd.AddCommand(builds.NewCommand())
	cmd.AddCommand(diagnose.NewCommand())
	cmd.AddCommand(grants.NewCommand())
	cmd.AddCommand(audit.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
