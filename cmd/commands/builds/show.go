package builds

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gcpops/buildmedic/internal/cloudbuild"
)

func ShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <build-id>",
		Short: "Show details for a build",
		Long: `Show structured metadata for a single build.

Examples:
  buildmedic builds show 6e3c2fbe
  buildmedic builds show 6e3c2fbe -o json`,
		Args:         cobra.ExactArgs(1),
		RunE:         runShow,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")

	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}

	build, err := client.Describe(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(build)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	printBuildDetail(cmd, build)
	return nil
}

// printBuildDetail prints a vertical key-value table of build fields.
func printBuildDetail(cmd *cobra.Command, build *cloudbuild.Build) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "  ID:\t%s\n", build.ID)
	fmt.Fprintf(w, "  Status:\t%s\n", build.Status)
	if !build.CreateTime.IsZero() {
		fmt.Fprintf(w, "  Created:\t%s\n", build.CreateTime.UTC().Format("2006-01-02 15:04:05 UTC"))
	}
	if len(build.Images) > 0 {
		fmt.Fprintf(w, "  Images:\t%s\n", strings.Join(build.Images, ", "))
	}
	if build.LogURL != "" {
		fmt.Fprintf(w, "  Log URL:\t%s\n", build.LogURL)
	}

	w.Flush()
}
