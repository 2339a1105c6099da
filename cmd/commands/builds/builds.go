package builds

import "github.com/spf13/cobra"

// NewCommand returns the "builds" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "builds",
		Short:        "Inspect Cloud Build history and logs",
		Long:         "List recent builds, show build details, and fetch or follow build logs.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("project", "", "Google Cloud project ID (defaults to configured default-project)")

	cmd.AddCommand(ListCommand())
	cmd.AddCommand(ShowCommand())
	cmd.AddCommand(LogsCommand())
	cmd.AddCommand(RetryCommand())

	return cmd
}
