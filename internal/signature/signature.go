// Package signature scans build log text for known failure signatures.
package signature

import "strings"

// Signature pairs a stable label with the literal pattern that
// identifies it in log text.
type Signature struct {
	Label   string
	Pattern string
}

// The set of failure signatures buildmedic knows about. Matching is
// case-insensitive substring presence; order determines the order of
// matched labels.
var defaultSet = []Signature{
	{Label: "permission-denied", Pattern: "PERMISSION_DENIED"},
	{Label: "artifact-registry", Pattern: "artifactregistry"},
	{Label: "container-registry", Pattern: "gcr.io"},
	{Label: "storage", Pattern: "storage.googleapis.com"},
	{Label: "cloud-run", Pattern: "Cloud Run"},
	{Label: "secret-manager", Pattern: "Secret Manager"},
}

// DefaultSet returns a copy of the built-in signature set.
func DefaultSet() []Signature {
	out := make([]Signature, len(defaultSet))
	copy(out, defaultSet)
	return out
}

// Match returns the labels of all signatures present in log, in set
// order. An empty result means no known failure signature was found and
// is not an error.
func Match(log string, set []Signature) []string {
	lower := strings.ToLower(log)

	var matched []string
	for _, sig := range set {
		if strings.Contains(lower, strings.ToLower(sig.Pattern)) {
			matched = append(matched, sig.Label)
		}
	}
	return matched
}
