package grants

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gcpops/buildmedic/internal/auditlog"
	"gcpops/buildmedic/internal/recommend"
	"gcpops/buildmedic/internal/remediate"
	"gcpops/buildmedic/internal/tui"
)

func ApplyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Grant roles to the build service account",
		Long: `Grant one or more IAM roles to the Cloud Build service account.

A grant record listing the identity and the full attempted role set is
written after the run; keep it to revert the grants later with
'buildmedic grants revoke'.

Examples:
  buildmedic grants apply --role roles/storage.admin
  buildmedic grants apply --role roles/run.admin --role roles/iam.serviceAccountUser --yes
  buildmedic grants apply --role roles/storage.admin --dry-run`,
		RunE:         runApply,
		SilenceUsage: true,
	}

	cmd.Flags().StringArray("role", nil, "Role to grant (repeatable; defaults to the base log-writer grant)")
	cmd.Flags().String("identity", "", "Build service account to grant to (defaults to the project's)")
	cmd.Flags().Bool("dry-run", false, "Print the plan without calling gcloud or writing a record")
	cmd.Flags().BoolP("yes", "y", false, "Apply without interactive confirmation")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	start := time.Now()

	roles, _ := cmd.Flags().GetStringArray("role")
	if len(roles) == 0 {
		roles = recommend.Recommend(nil)
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")

	client, project, err := newIAMClient(cmd)
	if err != nil {
		return err
	}

	if dryRun {
		// The plan needs no identity resolution: no external call at all.
		fmt.Fprintf(cmd.OutOrStdout(), "Would grant to the build service account of project %s:\n", project)
		for _, role := range roles {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", role)
		}
		saveAudit(cmd, &auditlog.AuditEntry{
			Command: "buildmedic grants apply",
			Args:    strings.Join(roles, " "),
			Project: project,
			Outcome: auditlog.OutcomeDryRun,
		})
		return nil
	}

	identity, err := resolveIdentity(cmd, client)
	if err != nil {
		return err
	}

	if !yes {
		if !interactive() {
			return fmt.Errorf("refusing to change IAM bindings without confirmation; re-run with --yes")
		}
		if err := tui.ConfirmGrants(identity, roles, accessible()); err != nil {
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Grant application cancelled.")
				saveAudit(cmd, &auditlog.AuditEntry{
					Command:  "buildmedic grants apply",
					Project:  project,
					Identity: identity,
					Outcome:  auditlog.OutcomeDecline,
				})
				return nil
			}
			return err
		}
	}

	dir, err := recordsDir()
	if err != nil {
		return err
	}

	applier := &remediate.Applier{IAM: client, RecordDir: dir}
	result, err := applier.Apply(cmd.Context(), identity, roles, false)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Granted roles to %s:\n", identity)
	tui.PrintOutcomes(cmd.OutOrStdout(), result.Outcomes)
	fmt.Fprintf(cmd.OutOrStdout(), "Grant record: %s\n", result.RecordPath)
	if failed := result.Failed(); failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d of %d grants failed; retry after reviewing the errors above.\n", failed, len(roles))
	}

	saveAudit(cmd, &auditlog.AuditEntry{
		Command:    "buildmedic grants apply",
		Args:       strings.Join(roles, " "),
		Project:    project,
		Identity:   identity,
		Record:     result.RecordPath,
		Outcome:    runOutcome(result.Failed()),
		DurationMs: time.Since(start).Milliseconds(),
	})
	return nil
}
