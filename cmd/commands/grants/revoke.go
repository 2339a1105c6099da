package grants

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gcpops/buildmedic/internal/auditlog"
	"gcpops/buildmedic/internal/remediate"
	"gcpops/buildmedic/internal/tui"
)

func RevokeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revoke grants recorded by a previous apply",
		Long: `Revoke the role grants listed in a grant record.

The record is parsed tolerantly: any text file containing a build service
account identity and role names works, including raw console transcripts.
Each binding is checked before removal, so re-running revoke on an
already-reverted record is safe.

Examples:
  buildmedic grants revoke --record ~/.config/buildmedic/records/grants-20260801-100000.log
  buildmedic grants revoke --record grants.log --dry-run
  buildmedic grants revoke --record grants.log --identity 42@cloudbuild.gserviceaccount.com --yes`,
		RunE:         runRevoke,
		SilenceUsage: true,
	}

	cmd.Flags().String("record", "", "Path to the grant record to revert (required)")
	cmd.Flags().String("identity", "", "Override the identity extracted from the record")
	cmd.Flags().Bool("dry-run", false, "Report the identity and grant set without touching IAM state")
	cmd.Flags().BoolP("yes", "y", false, "Revoke without interactive confirmation")

	return cmd
}

func runRevoke(cmd *cobra.Command, args []string) error {
	start := time.Now()

	recordPath, _ := cmd.Flags().GetString("record")
	if recordPath == "" {
		return fmt.Errorf("--record is required")
	}
	identityFlag, _ := cmd.Flags().GetString("identity")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")

	client, project, err := newIAMClient(cmd)
	if err != nil {
		return err
	}

	dir, err := recordsDir()
	if err != nil {
		return err
	}
	revoker := &remediate.Revoker{IAM: client, RecordDir: dir}
	opts := remediate.RevokeOptions{DryRun: true, Identity: identityFlag}

	// Parse first (as a dry run) so the confirmation gate can show what
	// would be removed before anything is queried or mutated.
	plan, err := revoker.Revoke(cmd.Context(), recordPath, opts)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would check and remove for %s:\n", plan.Identity)
		for _, role := range plan.Roles {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", role)
		}
		saveAudit(cmd, &auditlog.AuditEntry{
			Command:  "buildmedic grants revoke",
			Args:     "--record " + recordPath,
			Project:  project,
			Identity: plan.Identity,
			Outcome:  auditlog.OutcomeDryRun,
		})
		return nil
	}

	if !yes {
		if !interactive() {
			return fmt.Errorf("refusing to change IAM bindings without confirmation; re-run with --yes")
		}
		if err := tui.ConfirmRevoke(plan.Identity, plan.Roles, accessible()); err != nil {
			if errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Revocation cancelled.")
				saveAudit(cmd, &auditlog.AuditEntry{
					Command:  "buildmedic grants revoke",
					Project:  project,
					Identity: plan.Identity,
					Outcome:  auditlog.OutcomeDecline,
				})
				return nil
			}
			return err
		}
	}

	opts.DryRun = false
	result, err := revoker.Revoke(cmd.Context(), recordPath, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Revoked grants for %s:\n", result.Identity)
	tui.PrintOutcomes(cmd.OutOrStdout(), result.Outcomes)
	fmt.Fprintf(cmd.OutOrStdout(), "Revocation record: %s\n", result.RecordPath)
	if failed := result.Failed(); failed > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%d binding(s) could not be removed; re-run revoke to retry them.\n", failed)
	}

	saveAudit(cmd, &auditlog.AuditEntry{
		Command:    "buildmedic grants revoke",
		Args:       "--record " + recordPath,
		Project:    project,
		Identity:   result.Identity,
		Record:     result.RecordPath,
		Outcome:    runOutcome(result.Failed()),
		DurationMs: time.Since(start).Milliseconds(),
	})
	return nil
}
