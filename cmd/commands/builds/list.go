package builds

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent builds",
		Long: `List recent builds for the target project, newest first.

Examples:
  buildmedic builds list
  buildmedic builds list --limit 50
  buildmedic builds list -o json`,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 20, "Number of builds to display")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}
	output, _ := cmd.Flags().GetString("output")

	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}

	builds, err := client.List(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if output == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}
	if output != "table" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	if len(builds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No builds found.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tIMAGES")
	fmt.Fprintln(w, "--\t------\t-------\t------")
	for _, b := range builds {
		images := "-"
		if len(b.Images) > 0 {
			images = strings.Join(b.Images, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			b.ID,
			b.Status,
			b.CreateTime.UTC().Format("2006-01-02 15:04:05 UTC"),
			images,
		)
	}
	w.Flush()
	return nil
}
