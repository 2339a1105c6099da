package audit

import (
	"strings"
	"testing"
	"time"

	"gcpops/buildmedic/internal/auditlog"
)

func TestPruneCommand_RequiresOlderThan(t *testing.T) {
	setupTestDB(t)

	_, _, err := execAudit(t, "prune")
	if err == nil || !strings.Contains(err.Error(), "--older-than is required") {
		t.Errorf("expected required-flag error, got: %v", err)
	}
}

func TestPruneCommand_RemovesOldEntries(t *testing.T) {
	setupTestDB(t)
	seedEntries(t,
		&auditlog.AuditEntry{Command: "buildmedic diagnose", Timestamp: time.Now().UTC().Add(-40 * 24 * time.Hour), Outcome: auditlog.OutcomeSuccess},
		&auditlog.AuditEntry{Command: "buildmedic diagnose", Timestamp: time.Now().UTC(), Outcome: auditlog.OutcomeSuccess},
	)

	stdout, _, err := execAudit(t, "prune", "--older-than", "30d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Removed 1 audit entr(y/ies).") {
		t.Errorf("expected one removal, got: %s", stdout)
	}

	repo, err := auditlog.Open()
	if err != nil {
		t.Fatalf("failed to open repository: %v", err)
	}
	defer repo.Close()
	entries, err := repo.List(10)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected 1 remaining entry, got %d", len(entries))
	}
}

func TestParseDuration(t *testing.T) {
	cases := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"30d", 30 * 24 * time.Hour, false},
		{"72h", 72 * time.Hour, false},
		{"90m", 90 * time.Minute, false},
		{"", 0, true},
		{"-5d", 0, true},
		{"soon", 0, true},
	}

	for _, tc := range cases {
		got, err := parseDuration(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseDuration(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseDuration(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
