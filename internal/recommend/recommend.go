// Package recommend maps matched failure signatures to IAM role grants
// using a fixed, ordered decision table.
package recommend

// BaseRole is granted on every recommendation so the build service
// account can always write its own logs.
const BaseRole = "roles/logging.logWriter"

// Rule maps a signature label to the roles that remediate it. A rule
// with an empty Label is unconditional.
type Rule struct {
	Label string
	Roles []string
}

// The decision table. Rules are evaluated in order, so output ordering
// is reproducible for a given matched-label set. The unconditional base
// rule is deliberately the first entry rather than special-cased code.
//
// permission-denied carries no roles of its own: it flags that a
// failure is permission-shaped, while the service-specific signatures
// pick the grant.
var table = []Rule{
	{Label: "", Roles: []string{BaseRole}},
	{Label: "artifact-registry", Roles: []string{"roles/artifactregistry.writer"}},
	{Label: "container-registry", Roles: []string{"roles/storage.admin"}},
	{Label: "storage", Roles: []string{"roles/storage.admin"}},
	{Label: "cloud-run", Roles: []string{"roles/run.admin", "roles/iam.serviceAccountUser"}},
	{Label: "secret-manager", Roles: []string{"roles/secretmanager.secretAccessor"}},
}

// Table returns a copy of the decision table, for display.
func Table() []Rule {
	out := make([]Rule, len(table))
	for i, r := range table {
		out[i] = Rule{Label: r.Label, Roles: append([]string(nil), r.Roles...)}
	}
	return out
}

// Recommend returns the deduplicated, ordered role list for the matched
// labels. The base role is always present and always first; with no
// matches the result is exactly [BaseRole].
func Recommend(matched []string) []string {
	set := make(map[string]bool, len(matched))
	for _, label := range matched {
		set[label] = true
	}

	var roles []string
	seen := make(map[string]bool)
	for _, rule := range table {
		if rule.Label != "" && !set[rule.Label] {
			continue
		}
		for _, role := range rule.Roles {
			if seen[role] {
				continue
			}
			seen[role] = true
			roles = append(roles, role)
		}
	}
	return roles
}

// Extra returns the non-base portion of a recommendation. An empty
// result means no remediation is needed.
func Extra(roles []string) []string {
	var out []string
	for _, r := range roles {
		if r != BaseRole {
			out = append(out, r)
		}
	}
	return out
}
