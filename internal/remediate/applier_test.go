package remediate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakeIAM is an in-memory IAM collaborator for remediation tests.
type fakeIAM struct {
	bound     map[string]bool // "identity role" -> bound
	addErrs   map[string]error
	removeErr map[string]error
	hasErr    map[string]error

	addCalls    []string
	removeCalls []string
	hasCalls    []string
}

func newFakeIAM() *fakeIAM {
	return &fakeIAM{
		bound:     make(map[string]bool),
		addErrs:   make(map[string]error),
		removeErr: make(map[string]error),
		hasErr:    make(map[string]error),
	}
}

func key(identity, role string) string { return identity + " " + role }

func (f *fakeIAM) AddBinding(_ context.Context, identity, role string) error {
	k := key(identity, role)
	f.addCalls = append(f.addCalls, k)
	if err := f.addErrs[role]; err != nil {
		return err
	}
	f.bound[k] = true
	return nil
}

func (f *fakeIAM) RemoveBinding(_ context.Context, identity, role string) error {
	k := key(identity, role)
	f.removeCalls = append(f.removeCalls, k)
	if err := f.removeErr[role]; err != nil {
		return err
	}
	delete(f.bound, k)
	return nil
}

func (f *fakeIAM) HasBinding(_ context.Context, identity, role string) (bool, error) {
	k := key(identity, role)
	f.hasCalls = append(f.hasCalls, k)
	if err := f.hasErr[role]; err != nil {
		return false, err
	}
	return f.bound[k], nil
}

const testIdentity = "123456789@cloudbuild.gserviceaccount.com"

func testApplier(t *testing.T, iam *fakeIAM) (*Applier, string) {
	t.Helper()
	dir := t.TempDir()
	a := &Applier{
		IAM:       iam,
		RecordDir: dir,
		Now:       func() time.Time { return time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC) },
	}
	return a, dir
}

func TestApply(t *testing.T) {
	iam := newFakeIAM()
	a, _ := testApplier(t, iam)

	roles := []string{"roles/logging.logWriter", "roles/storage.admin"}
	result, err := a.Apply(context.Background(), testIdentity, roles, false)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	for _, o := range result.Outcomes {
		if o.Status != StatusApplied {
			t.Errorf("role %s: expected %s, got %s", o.Role, StatusApplied, o.Status)
		}
	}
	if len(iam.addCalls) != 2 {
		t.Errorf("expected 2 AddBinding calls, got %d", len(iam.addCalls))
	}
	if result.RecordPath == "" {
		t.Fatal("expected a record path")
	}

	data, err := os.ReadFile(result.RecordPath)
	if err != nil {
		t.Fatalf("failed to read record: %v", err)
	}
	rec, err := ParseRecord(data)
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	if rec.Identity != testIdentity {
		t.Errorf("record identity mismatch: %q", rec.Identity)
	}
	if diff := cmp.Diff(roles, rec.Roles); diff != "" {
		t.Errorf("record round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_DryRun(t *testing.T) {
	iam := newFakeIAM()
	a, dir := testApplier(t, iam)

	result, err := a.Apply(context.Background(), testIdentity, []string{"roles/storage.admin"}, true)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(iam.addCalls) != 0 {
		t.Errorf("dry run made %d external calls", len(iam.addCalls))
	}
	if result.Outcomes[0].Status != StatusSkippedDryRun {
		t.Errorf("expected %s, got %s", StatusSkippedDryRun, result.Outcomes[0].Status)
	}
	if result.RecordPath != "" {
		t.Errorf("dry run wrote a record at %s", result.RecordPath)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("dry run left %d files in record dir", len(entries))
	}
}

func TestApply_PartialFailureContinues(t *testing.T) {
	iam := newFakeIAM()
	iam.addErrs["roles/storage.admin"] = errors.New("backend unavailable")
	a, _ := testApplier(t, iam)

	roles := []string{"roles/logging.logWriter", "roles/storage.admin", "roles/run.admin"}
	result, err := a.Apply(context.Background(), testIdentity, roles, false)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if len(iam.addCalls) != 3 {
		t.Fatalf("expected all 3 grants attempted, got %d", len(iam.addCalls))
	}
	if result.Failed() != 1 {
		t.Errorf("expected 1 failure, got %d", result.Failed())
	}
	if result.Outcomes[1].Status != StatusFailed || result.Outcomes[1].Err == nil {
		t.Errorf("expected middle grant to fail, got %+v", result.Outcomes[1])
	}
	if result.Outcomes[2].Status != StatusApplied {
		t.Errorf("expected grant after failure to be applied, got %s", result.Outcomes[2].Status)
	}

	// The record still lists the full attempted set, including the failure.
	data, err := os.ReadFile(result.RecordPath)
	if err != nil {
		t.Fatalf("failed to read record: %v", err)
	}
	rec, err := ParseRecord(data)
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}
	if diff := cmp.Diff(roles, rec.Roles); diff != "" {
		t.Errorf("record roles mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_Idempotent(t *testing.T) {
	iam := newFakeIAM()
	a, _ := testApplier(t, iam)

	roles := []string{"roles/storage.admin"}
	for i := 0; i < 2; i++ {
		result, err := a.Apply(context.Background(), testIdentity, roles, false)
		if err != nil {
			t.Fatalf("Apply run %d failed: %v", i+1, err)
		}
		if result.Failed() != 0 {
			t.Errorf("run %d: unexpected failures", i+1)
		}
	}
}

func TestApply_RecordFileName(t *testing.T) {
	iam := newFakeIAM()
	a, _ := testApplier(t, iam)

	result, err := a.Apply(context.Background(), testIdentity, []string{"roles/storage.admin"}, false)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got, want := filepath.Base(result.RecordPath), "grants-20260801-100000.log"; got != want {
		t.Errorf("record name mismatch: want %q, got %q", want, got)
	}
}
