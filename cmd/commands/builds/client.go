package builds

import (
	"github.com/spf13/cobra"

	"gcpops/buildmedic/internal/cloudbuild"
	"gcpops/buildmedic/internal/config"
	"gcpops/buildmedic/internal/gcloud"
)

// newClient verifies gcloud is available, resolves the target project,
// and returns a Cloud Build client scoped to it.
func newClient(cmd *cobra.Command) (*cloudbuild.Client, string, error) {
	if err := gcloud.EnsureAvailable(); err != nil {
		return nil, "", err
	}

	project, err := config.ResolveProject(cmd.Flag("project").Value.String())
	if err != nil {
		return nil, "", err
	}

	return cloudbuild.NewClient(gcloud.Default(), project), project, nil
}
