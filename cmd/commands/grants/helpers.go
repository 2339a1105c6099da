package grants

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"gcpops/buildmedic/internal/auditlog"
	"gcpops/buildmedic/internal/cache"
	"gcpops/buildmedic/internal/config"
	"gcpops/buildmedic/internal/gcloud"
	"gcpops/buildmedic/internal/iam"
	"gcpops/buildmedic/internal/remediate"
)

// newIAMClient verifies gcloud is available, resolves the target
// project, and returns an IAM client scoped to it.
func newIAMClient(cmd *cobra.Command) (*iam.Client, string, error) {
	if err := gcloud.EnsureAvailable(); err != nil {
		return nil, "", err
	}

	project, err := config.ResolveProject(cmd.Flag("project").Value.String())
	if err != nil {
		return nil, "", err
	}

	client := iam.NewClient(gcloud.Default(), project).WithCache(cache.NewDefault())
	return client, project, nil
}

// resolveIdentity returns the --identity override when given, otherwise
// derives the build service account from the project number. Derivation
// runs under a spinner when interactive.
func resolveIdentity(cmd *cobra.Command, client *iam.Client) (string, error) {
	override, _ := cmd.Flags().GetString("identity")
	if override != "" {
		if !iam.ValidIdentity(override) {
			return "", fmt.Errorf("identity %q does not look like a build service account (<project-number>%s)", override, iam.IdentitySuffix)
		}
		return override, nil
	}

	if !interactive() {
		return client.BuildServiceAccount(cmd.Context())
	}

	var identity string
	var deriveErr error
	spinErr := spinner.New().
		Title("Resolving build service account...").
		Accessible(accessible()).
		Output(cmd.ErrOrStderr()).
		ActionWithErr(func(ctx context.Context) error {
			identity, deriveErr = client.BuildServiceAccount(ctx)
			return deriveErr
		}).
		Run()
	if spinErr != nil {
		return "", spinErr
	}
	return identity, deriveErr
}

// recordsDir resolves where grant and revocation records are written.
func recordsDir() (string, error) {
	return config.ResolveRecordsDir(remediate.DefaultRecordDir)
}

// interactive reports whether stdin is a terminal. Overridden in tests.
var interactive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func accessible() bool {
	return os.Getenv("ACCESSIBLE") != ""
}

// saveAudit records the run in the local history. Persistence failures
// are reported but never fail the run.
func saveAudit(cmd *cobra.Command, entry *auditlog.AuditEntry) {
	if err := auditlog.Append(entry); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to record run history: %v\n", err)
	}
}

// runOutcome maps per-grant results to an audit outcome string.
func runOutcome(failed int) string {
	if failed > 0 {
		return auditlog.OutcomePartial
	}
	return auditlog.OutcomeSuccess
}
