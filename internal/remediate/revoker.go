package remediate

import (
	"context"
	"fmt"
	"os"
	"time"
)

// RevokeResult reports a revoke run.
type RevokeResult struct {
	Identity   string
	Roles      []string
	Outcomes   []GrantOutcome
	RecordPath string
}

// Failed returns the number of bindings that could not be removed.
func (r *RevokeResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusRemoveFailed {
			n++
		}
	}
	return n
}

// RevokeOptions control a revoke run.
type RevokeOptions struct {
	// DryRun reports the identity and role set that would be processed
	// without querying or mutating IAM state, and writes no record.
	DryRun bool

	// Identity, when non-empty, overrides the identity extracted from
	// the grant record.
	Identity string
}

// Revoker removes role bindings previously recorded by an apply run.
type Revoker struct {
	IAM       IAM
	RecordDir string

	// Now is stubbed in tests.
	Now func() time.Time
}

func (r *Revoker) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Revoke parses the grant record at path and removes each extracted
// role binding that is still present. Bindings are checked before
// removal, so re-running revoke on an already-reverted record is safe:
// every grant comes back skipped-not-bound. A removal failure does not
// stop the run. Unless opts.DryRun is set, a timestamped revocation
// record is written capturing every processed grant and its outcome.
func (r *Revoker) Revoke(ctx context.Context, path string, opts RevokeOptions) (*RevokeResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("remediate: failed to read grant record %s: %w", path, err)
	}

	rec, err := ParseRecord(data)
	if err != nil {
		return nil, err
	}

	identity := rec.Identity
	if opts.Identity != "" {
		identity = opts.Identity
	}

	result := &RevokeResult{Identity: identity, Roles: rec.Roles}

	if opts.DryRun {
		for _, role := range rec.Roles {
			result.Outcomes = append(result.Outcomes, GrantOutcome{Role: role, Status: StatusSkippedDryRun})
		}
		return result, nil
	}

	for _, role := range rec.Roles {
		result.Outcomes = append(result.Outcomes, r.revokeOne(ctx, identity, role))
	}

	at := r.now()
	name := fmt.Sprintf("revoke-%s.log", at.UTC().Format("20060102-150405"))
	recordPath, err := writeRecord(r.RecordDir, name, revokeRecordContent(identity, result.Outcomes, at))
	if err != nil {
		return result, err
	}
	result.RecordPath = recordPath
	return result, nil
}

func (r *Revoker) revokeOne(ctx context.Context, identity, role string) GrantOutcome {
	bound, err := r.IAM.HasBinding(ctx, identity, role)
	if err != nil {
		return GrantOutcome{Role: role, Status: StatusRemoveFailed, Err: err}
	}
	if !bound {
		return GrantOutcome{Role: role, Status: StatusSkippedNotBound}
	}
	if err := r.IAM.RemoveBinding(ctx, identity, role); err != nil {
		return GrantOutcome{Role: role, Status: StatusRemoveFailed, Err: err}
	}
	return GrantOutcome{Role: role, Status: StatusRemoved}
}
