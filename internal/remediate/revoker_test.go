package remediate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTestRecord(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "grants.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test record: %v", err)
	}
	return path
}

func testRevoker(t *testing.T, iam *fakeIAM) *Revoker {
	t.Helper()
	return &Revoker{
		IAM:       iam,
		RecordDir: t.TempDir(),
		Now:       func() time.Time { return time.Date(2026, 8, 1, 11, 0, 0, 0, time.UTC) },
	}
}

const testRecord = `buildmedic grant record
time: 2026-08-01T10:00:00Z
identity: 123456789@cloudbuild.gserviceaccount.com
grant: roles/logging.logWriter applied
grant: roles/storage.admin applied
`

func TestRevoke_RemovesBoundGrants(t *testing.T) {
	iam := newFakeIAM()
	iam.bound[key(testIdentity, "roles/logging.logWriter")] = true
	iam.bound[key(testIdentity, "roles/storage.admin")] = true
	r := testRevoker(t, iam)

	path := writeTestRecord(t, testRecord)
	result, err := r.Revoke(context.Background(), path, RevokeOptions{})
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	for _, o := range result.Outcomes {
		if o.Status != StatusRemoved {
			t.Errorf("role %s: expected %s, got %s", o.Role, StatusRemoved, o.Status)
		}
	}
	if len(iam.removeCalls) != 2 {
		t.Errorf("expected 2 RemoveBinding calls, got %d", len(iam.removeCalls))
	}
	if result.RecordPath == "" {
		t.Error("expected a revocation record path")
	}
}

func TestRevoke_SkipsUnboundGrants(t *testing.T) {
	iam := newFakeIAM()
	iam.bound[key(testIdentity, "roles/logging.logWriter")] = true
	// roles/storage.admin is not bound.
	r := testRevoker(t, iam)

	path := writeTestRecord(t, testRecord)
	result, err := r.Revoke(context.Background(), path, RevokeOptions{})
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if result.Outcomes[1].Status != StatusSkippedNotBound {
		t.Errorf("expected %s, got %s", StatusSkippedNotBound, result.Outcomes[1].Status)
	}
	for _, call := range iam.removeCalls {
		if strings.Contains(call, "roles/storage.admin") {
			t.Error("RemoveBinding called for an unbound grant")
		}
	}

	// The revocation record still captures the skip.
	data, err := os.ReadFile(result.RecordPath)
	if err != nil {
		t.Fatalf("failed to read revocation record: %v", err)
	}
	if !strings.Contains(string(data), "roles/storage.admin "+StatusSkippedNotBound) {
		t.Errorf("revocation record missing skip entry:\n%s", data)
	}
}

func TestRevoke_Idempotent(t *testing.T) {
	iam := newFakeIAM()
	iam.bound[key(testIdentity, "roles/logging.logWriter")] = true
	iam.bound[key(testIdentity, "roles/storage.admin")] = true
	r := testRevoker(t, iam)

	path := writeTestRecord(t, testRecord)
	if _, err := r.Revoke(context.Background(), path, RevokeOptions{}); err != nil {
		t.Fatalf("first Revoke failed: %v", err)
	}

	result, err := r.Revoke(context.Background(), path, RevokeOptions{})
	if err != nil {
		t.Fatalf("second Revoke failed: %v", err)
	}
	for _, o := range result.Outcomes {
		if o.Status != StatusSkippedNotBound {
			t.Errorf("second run, role %s: expected %s, got %s", o.Role, StatusSkippedNotBound, o.Status)
		}
	}
}

func TestRevoke_RemoveFailureContinues(t *testing.T) {
	iam := newFakeIAM()
	iam.bound[key(testIdentity, "roles/logging.logWriter")] = true
	iam.bound[key(testIdentity, "roles/storage.admin")] = true
	iam.removeErr["roles/logging.logWriter"] = errors.New("conflict")
	r := testRevoker(t, iam)

	path := writeTestRecord(t, testRecord)
	result, err := r.Revoke(context.Background(), path, RevokeOptions{})
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if result.Outcomes[0].Status != StatusRemoveFailed {
		t.Errorf("expected %s, got %s", StatusRemoveFailed, result.Outcomes[0].Status)
	}
	if result.Outcomes[1].Status != StatusRemoved {
		t.Errorf("expected later grant still removed, got %s", result.Outcomes[1].Status)
	}
	if result.Failed() != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed())
	}
}

func TestRevoke_DryRun(t *testing.T) {
	iam := newFakeIAM()
	r := testRevoker(t, iam)

	path := writeTestRecord(t, testRecord)
	result, err := r.Revoke(context.Background(), path, RevokeOptions{DryRun: true})
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}

	if result.Identity != testIdentity {
		t.Errorf("dry run should report the intended identity, got %q", result.Identity)
	}
	if len(result.Roles) != 2 {
		t.Errorf("dry run should report the grant set, got %v", result.Roles)
	}
	if len(iam.hasCalls)+len(iam.removeCalls) != 0 {
		t.Error("dry run touched IAM state")
	}
	if result.RecordPath != "" {
		t.Error("dry run wrote a revocation record")
	}
}

func TestRevoke_IdentityOverride(t *testing.T) {
	iam := newFakeIAM()
	override := "42@cloudbuild.gserviceaccount.com"
	iam.bound[key(override, "roles/storage.admin")] = true
	r := testRevoker(t, iam)

	path := writeTestRecord(t, testRecord)
	result, err := r.Revoke(context.Background(), path, RevokeOptions{Identity: override})
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if result.Identity != override {
		t.Errorf("expected identity %q, got %q", override, result.Identity)
	}
	if result.Outcomes[1].Status != StatusRemoved {
		t.Errorf("expected storage.admin removed for override identity, got %s", result.Outcomes[1].Status)
	}
}

func TestRevoke_MalformedRecord(t *testing.T) {
	iam := newFakeIAM()
	r := testRevoker(t, iam)

	path := writeTestRecord(t, "no identity here\nroles/storage.admin\n")
	_, err := r.Revoke(context.Background(), path, RevokeOptions{})
	if !errors.Is(err, ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if len(iam.hasCalls)+len(iam.removeCalls) != 0 {
		t.Error("external calls attempted on malformed record")
	}
}

func TestRevoke_NoGrants(t *testing.T) {
	iam := newFakeIAM()
	r := testRevoker(t, iam)

	path := writeTestRecord(t, "identity: 42@cloudbuild.gserviceaccount.com\nnothing else\n")
	_, err := r.Revoke(context.Background(), path, RevokeOptions{})
	if !errors.Is(err, ErrNoGrantsFound) {
		t.Fatalf("expected ErrNoGrantsFound, got %v", err)
	}
}

func TestRevoke_QueryFailureContinues(t *testing.T) {
	iam := newFakeIAM()
	iam.bound[key(testIdentity, "roles/storage.admin")] = true
	iam.hasErr["roles/logging.logWriter"] = errors.New("timeout")
	r := testRevoker(t, iam)

	path := writeTestRecord(t, testRecord)
	result, err := r.Revoke(context.Background(), path, RevokeOptions{})
	if err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if result.Outcomes[0].Status != StatusRemoveFailed {
		t.Errorf("expected query failure to surface as %s, got %s", StatusRemoveFailed, result.Outcomes[0].Status)
	}
	if result.Outcomes[1].Status != StatusRemoved {
		t.Errorf("expected later grant still processed, got %s", result.Outcomes[1].Status)
	}
}
