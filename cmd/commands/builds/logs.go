package builds

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func LogsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs <build-id>",
		Short: "Fetch or follow the log of a build",
		Long: `Fetch the full log text of a build, or follow it while the build runs.

Examples:
  buildmedic builds logs 6e3c2fbe
  buildmedic builds logs 6e3c2fbe --stream
  buildmedic builds logs 6e3c2fbe --save /tmp/build.log`,
		Args:         cobra.ExactArgs(1),
		RunE:         runLogs,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("stream", false, "Follow the log until the build finishes")
	cmd.Flags().String("save", "", "Write the log to a file instead of stdout")

	return cmd
}

func runLogs(cmd *cobra.Command, args []string) error {
	stream, _ := cmd.Flags().GetBool("stream")
	save, _ := cmd.Flags().GetString("save")

	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}

	if stream {
		if save != "" {
			return fmt.Errorf("--stream and --save cannot be combined")
		}
		return client.StreamLog(cmd.Context(), args[0], cmd.OutOrStdout())
	}

	text, err := client.Log(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if save != "" {
		if err := os.WriteFile(save, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to save log to %s: %w", save, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Log saved to %s (%d bytes).\n", save, len(text))
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}
