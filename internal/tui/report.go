package tui

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gcpops/buildmedic/internal/remediate"
	"gcpops/buildmedic/internal/tui/styles"
)

// PrintOutcomes renders per-grant outcomes as a table with a styled
// status column.
func PrintOutcomes(w io.Writer, outcomes []remediate.GrantOutcome) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, o := range outcomes {
		detail := ""
		if o.Err != nil {
			detail = o.Err.Error()
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", o.Role, styledStatus(o.Status), detail)
	}
	tw.Flush()
}

func styledStatus(status string) string {
	switch status {
	case remediate.StatusApplied, remediate.StatusRemoved:
		return styles.SuccessText.Render(status)
	case remediate.StatusFailed, remediate.StatusRemoveFailed:
		return styles.ErrorText.Render(status)
	default:
		return styles.WarningText.Render(status)
	}
}

// PrintDiagnosis renders the matched signatures and recommended roles
// of a diagnose run.
func PrintDiagnosis(w io.Writer, matched, roles []string) {
	fmt.Fprintln(w, styles.Title.Render("Diagnosis"))

	if len(matched) == 0 {
		fmt.Fprintln(w, "  No known failure signatures found in the log.")
	} else {
		fmt.Fprintln(w, styles.Label.Render("  Matched signatures:"))
		for _, label := range matched {
			fmt.Fprintf(w, "    %s\n", label)
		}
	}

	fmt.Fprintln(w, styles.Label.Render("  Recommended roles:"))
	for _, role := range roles {
		fmt.Fprintf(w, "    %s\n", role)
	}
}
