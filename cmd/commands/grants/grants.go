package grants

import "github.com/spf13/cobra"

// NewCommand returns the "grants" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grants",
		Short: "Apply and revoke IAM role grants for the build service account",
		Long: "Grant roles to the Cloud Build service account and revert them later.\n\n" +
			"Every apply writes a plain-text grant record listing the identity and the\n" +
			"full attempted role set; 'grants revoke' reads such a record (or any console\n" +
			"transcript containing an identity and role names) and removes only the\n" +
			"bindings that still exist.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("project", "", "Google Cloud project ID (defaults to configured default-project)")

	cmd.AddCommand(ApplyCommand())
	cmd.AddCommand(RevokeCommand())

	return cmd
}
