// Package diagnose implements the main workflow: fetch a build log,
// scan it for known failure signatures, recommend role grants, and
// optionally apply them.
package diagnose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gcpops/buildmedic/internal/auditlog"
	"gcpops/buildmedic/internal/cache"
	"gcpops/buildmedic/internal/cloudbuild"
	"gcpops/buildmedic/internal/config"
	"gcpops/buildmedic/internal/gcloud"
	"gcpops/buildmedic/internal/iam"
	"gcpops/buildmedic/internal/recommend"
	"gcpops/buildmedic/internal/remediate"
	"gcpops/buildmedic/internal/signature"
	"gcpops/buildmedic/internal/tui"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Scan a build log for permission failures and recommend role grants",
		Long: `Scan a build log for known permission-failure signatures and recommend
IAM role grants for the Cloud Build service account.

The log comes from a build ID (fetched via gcloud) or from a local file.
With --apply, the recommended grants are applied after confirmation and a
grant record is written for later revocation.

Examples:
  buildmedic diagnose --build 6e3c2fbe
  buildmedic diagnose --log-file /tmp/build.log
  buildmedic diagnose --build 6e3c2fbe --apply
  buildmedic diagnose --build 6e3c2fbe --apply --yes
  buildmedic diagnose --build 6e3c2fbe --apply --dry-run
  buildmedic diagnose --show-rules`,
		RunE:         runDiagnose,
		SilenceUsage: true,
	}

	cmd.Flags().String("project", "", "Google Cloud project ID (defaults to configured default-project)")
	cmd.Flags().String("build", "", "Build ID whose log should be analyzed")
	cmd.Flags().String("log-file", "", "Analyze a local log file instead of fetching one")
	cmd.Flags().Bool("apply", false, "Apply the recommended grants after confirmation")
	cmd.Flags().Bool("dry-run", false, "With --apply: print the plan without calling gcloud or writing a record")
	cmd.Flags().BoolP("yes", "y", false, "Apply without interactive confirmation")
	cmd.Flags().Bool("show-rules", false, "Print the built-in signature and role tables and exit")

	return cmd
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	buildID, _ := cmd.Flags().GetString("build")
	logFile, _ := cmd.Flags().GetString("log-file")
	apply, _ := cmd.Flags().GetBool("apply")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	yes, _ := cmd.Flags().GetBool("yes")
	showRules, _ := cmd.Flags().GetBool("show-rules")

	if showRules {
		printRules(cmd)
		return nil
	}

	if (buildID == "") == (logFile == "") {
		return fmt.Errorf("exactly one of --build or --log-file is required")
	}

	// A local log file can be analyzed without gcloud; fetching a log or
	// applying grants cannot.
	needsGcloud := buildID != "" || apply

	var project string
	if needsGcloud {
		if err := gcloud.EnsureAvailable(); err != nil {
			return err
		}
		var err error
		project, err = config.ResolveProject(cmd.Flag("project").Value.String())
		if err != nil {
			return err
		}
	}

	logText, err := fetchLog(cmd, project, buildID, logFile)
	if err != nil {
		return err
	}

	matched := signature.Match(logText, signature.DefaultSet())
	roles := recommend.Recommend(matched)

	tui.PrintDiagnosis(cmd.OutOrStdout(), matched, roles)

	if len(recommend.Extra(roles)) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No remediation needed beyond the base log-writer grant.")
	}

	if !apply {
		return nil
	}
	return applyGrants(cmd, project, buildID, roles, dryRun, yes)
}

// printRules renders the built-in signature and role tables.
func printRules(cmd *cobra.Command) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "SIGNATURE\tPATTERN")
	fmt.Fprintln(w, "---------\t-------")
	for _, sig := range signature.DefaultSet() {
		fmt.Fprintf(w, "%s\t%s\n", sig.Label, sig.Pattern)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SIGNATURE\tRECOMMENDED ROLES")
	fmt.Fprintln(w, "---------\t-----------------")
	for _, rule := range recommend.Table() {
		label := rule.Label
		if label == "" {
			label = "(always)"
		}
		fmt.Fprintf(w, "%s\t%s\n", label, strings.Join(rule.Roles, ", "))
	}
	w.Flush()
}

// fetchLog returns the log text from the build service or a local file.
func fetchLog(cmd *cobra.Command, project, buildID, logFile string) (string, error) {
	if logFile != "" {
		data, err := os.ReadFile(logFile)
		if err != nil {
			return "", fmt.Errorf("failed to read log file %s: %w", logFile, err)
		}
		return string(data), nil
	}

	client := cloudbuild.NewClient(gcloud.Default(), project)

	if !interactive() {
		return client.Log(cmd.Context(), buildID)
	}

	var text string
	var fetchErr error
	spinErr := spinner.New().
		Title(fmt.Sprintf("Fetching log for build %s...", buildID)).
		Accessible(accessible()).
		Output(cmd.ErrOrStderr()).
		ActionWithErr(func(ctx context.Context) error {
			text, fetchErr = client.Log(ctx, buildID)
			return fetchErr
		}).
		Run()
	if spinErr != nil {
		return "", spinErr
	}
	return text, fetchErr
}

func applyGrants(cmd *cobra.Command, project, buildID string, roles []string, dryRun, yes bool) error {
	start := time.Now()

	client := iam.NewClient(gcloud.Default(), project).WithCache(cache.NewDefault())

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would grant to the build service account of project %s:\n", project)
		for _, role := range roles {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", role)
		}
		saveAudit(cmd, &auditlog.AuditEntry{
			Command: "buildmedic diagnose",
			Args:    strings.Join(roles, " "),
			Project: project,
			Build:   buildID,
			Outcome: auditlog.OutcomeDryRun,
		})
		return nil
	}

	identity, err := client.BuildServiceAccount(cmd.Context())
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
					Command:  "buildmedic diagnose",
					Project:  project,
					Identity: identity,
					Build:    buildID,
					Outcome:  auditlog.OutcomeDecline,
				})
				return nil
			}
			return err
		}
	}

	dir, err := config.ResolveRecordsDir(remediate.DefaultRecordDir)
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

	outcome := auditlog.OutcomeSuccess
	if result.Failed() > 0 {
		outcome = auditlog.OutcomePartial
	}
	saveAudit(cmd, &auditlog.AuditEntry{
		Command:    "buildmedic diagnose",
		Args:       strings.Join(roles, " "),
		Project:    project,
		Identity:   identity,
		Build:      buildID,
		Record:     result.RecordPath,
		Outcome:    outcome,
		DurationMs: time.Since(start).Milliseconds(),
	})
	return nil
}

// interactive reports whether stdin is a terminal. Overridden in tests.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func accessible() bool {
	return os.Getenv("ACCESSIBLE") != ""
}

func saveAudit(cmd *cobra.Command, entry *auditlog.AuditEntry) {
	if err := auditlog.Append(entry); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to record run history: %v\n", err)
	}
}
