package auditlog

import "time"

const (
	OutcomeSuccess = "success"
	OutcomePartial = "partial"
	OutcomeError   = "error"
	OutcomeDryRun  = "dry-run"
	OutcomeDecline = "declined"
)

// AuditEntry represents a persisted audit event: one apply, revoke, or
// retry run. This local history is separate from the text grant records
// the revoker consumes; it exists so operators can see what the tool
// did and when.
type AuditEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Command    string    `json:"command"`
	Args       string    `json:"args,omitempty"`
	Project    string    `json:"project,omitempty"`
	Identity   string    `json:"identity,omitempty"`
	Build      string    `json:"build,omitempty"`
	Record     string    `json:"record,omitempty"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}
