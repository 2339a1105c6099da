// Package remediate applies and reverts IAM role grants for the Cloud
// Build service account, keeping a durable record of every attempt.
package remediate

import (
	"context"
	"fmt"
	"time"
)

// Per-grant outcome statuses.
const (
	StatusApplied         = "applied"
	StatusFailed          = "failed"
	StatusSkippedDryRun   = "skipped-dry-run"
	StatusRemoved         = "removed"
	StatusRemoveFailed    = "remove-failed"
	StatusSkippedNotBound = "skipped-not-bound"
)

// IAM is the subset of the IAM collaborator the remediation workflows
// need. *iam.Client satisfies it.
type IAM interface {
	AddBinding(ctx context.Context, identity, role string) error
	RemoveBinding(ctx context.Context, identity, role string) error
	HasBinding(ctx context.Context, identity, role string) (bool, error)
}

// GrantOutcome is the result of processing a single role.
type GrantOutcome struct {
	Role   string
	Status string
	Err    error
}

// ApplyResult reports an apply run.
type ApplyResult struct {
	Identity   string
	Outcomes   []GrantOutcome
	RecordPath string
}

// Failed returns the number of grants that could not be applied.
func (r *ApplyResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Applier grants roles to an identity.
type Applier struct {
	IAM       IAM
	RecordDir string

	// Now is stubbed in tests.
	Now func() time.Time
}

func (a *Applier) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Apply attempts every role in order. A failed grant does not stop the
// run: partial failure is a reportable outcome, not a fatal one. Unless
// dryRun is set, a grant record listing the full attempted set is
// written afterwards regardless of per-grant outcomes.
//
// With dryRun set, no external call is made and no record is written.
func (a *Applier) Apply(ctx context.Context, identity string, roles []string, dryRun bool) (*ApplyResult, error) {
	result := &ApplyResult{Identity: identity}

	if dryRun {
		for _, role := range roles {
			result.Outcomes = append(result.Outcomes, GrantOutcome{Role: role, Status: StatusSkippedDryRun})
		}
		return result, nil
	}

	for _, role := range roles {
		outcome := GrantOutcome{Role: role, Status: StatusApplied}
		if err := a.IAM.AddBinding(ctx, identity, role); err != nil {
			outcome.Status = StatusFailed
			outcome.Err = err
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	at := a.now()
	name := fmt.Sprintf("grants-%s.log", at.UTC().Format("20060102-150405"))
	path, err := writeRecord(a.RecordDir, name, grantRecordContent(identity, result.Outcomes, at))
	if err != nil {
		return result, err
	}
	result.RecordPath = path
	return result, nil
}
