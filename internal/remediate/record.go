package remediate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gcpops/buildmedic/internal/iam"
)

// Grant records are plain text so that raw console transcripts are
// valid revoke input. Parsing is whole-blob pattern extraction, not
// line-oriented: any file containing one build service account identity
// and one or more role identifiers can be revoked from.
var (
	identityPattern = regexp.MustCompile(`\b\d+` + regexp.QuoteMeta(iam.IdentitySuffix) + `\b`)
	rolePattern     = regexp.MustCompile(`\broles/[A-Za-z0-9_.]+`)
)

// ErrMalformedRecord indicates a grant record contains no build service
// account identity.
var ErrMalformedRecord = errors.New("no build service account identity found in record")

// ErrNoGrantsFound indicates a grant record contains no role identifiers.
var ErrNoGrantsFound = errors.New("no role identifiers found in record")

// Record is the parsed content of a grant record.
type Record struct {
	Identity string
	Roles    []string
}

// ParseRecord extracts the identity and the deduplicated role list from
// a grant record blob.
func ParseRecord(data []byte) (*Record, error) {
	text := string(data)

	identity := identityPattern.FindString(text)
	if identity == "" {
		return nil, ErrMalformedRecord
	}

	var roles []string
	seen := make(map[string]bool)
	for _, role := range rolePattern.FindAllString(text, -1) {
		if seen[role] {
			continue
		}
		seen[role] = true
		roles = append(roles, role)
	}
	if len(roles) == 0 {
		return nil, ErrNoGrantsFound
	}

	return &Record{Identity: identity, Roles: roles}, nil
}

// writeRecord persists a text record to dir, creating it if needed.
func writeRecord(dir, name string, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("remediate: failed to create record directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("remediate: failed to write record %s: %w", path, err)
	}
	return path, nil
}

// grantRecordContent renders the record written after an apply run. It
// always lists the full attempted role set, not just successes, so a
// later revoke can clean up grants whose bind outcome was uncertain.
func grantRecordContent(identity string, outcomes []GrantOutcome, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "buildmedic grant record\n")
	fmt.Fprintf(&b, "time: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "identity: %s\n", identity)
	for _, o := range outcomes {
		fmt.Fprintf(&b, "grant: %s %s\n", o.Role, o.Status)
	}
	return b.String()
}

// revokeRecordContent renders the record written after a revoke run.
func revokeRecordContent(identity string, outcomes []GrantOutcome, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "buildmedic revocation record\n")
	fmt.Fprintf(&b, "time: %s\n", at.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "identity: %s\n", identity)
	for _, o := range outcomes {
		fmt.Fprintf(&b, "revoke: %s %s\n", o.Role, o.Status)
	}
	return b.String()
}

// DefaultRecordDir returns the default directory for grant and
// revocation records.
func DefaultRecordDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("remediate: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, "buildmedic", "records"), nil
}
