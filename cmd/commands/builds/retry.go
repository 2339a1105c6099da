package builds

import (
	"fmt"

	"github.com/spf13/cobra"
)

func RetryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry <build-id>",
		Short: "Re-run a build",
		Long: `Re-run a previously submitted build with the same configuration.

Typically used after granting missing roles with 'buildmedic diagnose --apply'.

Examples:
  buildmedic builds retry 6e3c2fbe`,
		Args:         cobra.ExactArgs(1),
		RunE:         runRetry,
		SilenceUsage: true,
	}

	return cmd
}

func runRetry(cmd *cobra.Command, args []string) error {
	client, project, err := newClient(cmd)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Retrying build %s in project %s...\n", args[0], project)
	if err := client.Retry(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Build %s resubmitted.\n", args[0])
	return nil
}
