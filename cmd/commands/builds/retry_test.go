package builds

import (
	"strings"
	"testing"

	"gcpops/buildmedic/internal/gcloud"
)

func TestRetryCommand_Resubmits(t *testing.T) {
	fake := &gcloud.Fake{}
	setupFake(t, fake)

	stdout, stderr, err := execBuilds(t, "retry", "abc123", "--project", "my-project")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Build abc123 resubmitted.") {
		t.Errorf("expected resubmit confirmation, got: %q", stdout)
	}
	if !strings.Contains(stderr, "Retrying build abc123 in project my-project") {
		t.Errorf("expected progress message on stderr, got: %q", stderr)
	}

	wantArgs := "builds retry abc123 --project my-project"
	if got := fake.CallArgs(0); got != wantArgs {
		t.Errorf("expected argv %q, got %q", wantArgs, got)
	}
}

func TestRetryCommand_Error(t *testing.T) {
	fake := &gcloud.Fake{Err: errNotFound}
	setupFake(t, fake)

	_, _, err := execBuilds(t, "retry", "abc123", "--project", "my-project")
	if err == nil || !strings.Contains(err.Error(), "failed to retry build abc123") {
		t.Errorf("expected retry error, got: %v", err)
	}
}
