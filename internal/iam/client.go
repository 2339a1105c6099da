// Package iam manages project-level IAM role bindings for the Cloud
// Build service account, via the gcloud CLI.
package iam

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gcpops/buildmedic/internal/cache"
	"gcpops/buildmedic/internal/gcloud"
)

// IdentitySuffix is the domain of the automatically provisioned Cloud
// Build service account.
const IdentitySuffix = "@cloudbuild.gserviceaccount.com"

var identityRe = regexp.MustCompile(`^\d+` + regexp.QuoteMeta(IdentitySuffix) + `$`)

// ValidIdentity reports whether s has the <project-number>@<suffix> form
// of a Cloud Build service account.
func ValidIdentity(s string) bool { return identityRe.MatchString(s) }

// ServiceAccount derives the Cloud Build service account identity from
// a numeric project number.
func ServiceAccount(projectNumber string) string {
	return projectNumber + IdentitySuffix
}

// Project numbers never change, so cached values stay usable for a
// long time. The TTL only bounds garbage from deleted projects.
const projectNumberTTL = 30 * 24 * time.Hour

// Client wraps per-project IAM policy calls.
type Client struct {
	runner  gcloud.Runner
	project string
	cache   *cache.Cache
}

// NewClient returns a client scoped to a project.
func NewClient(runner gcloud.Runner, project string) *Client {
	return &Client{runner: runner, project: project}
}

// WithCache returns a copy of the client that caches project-number
// lookups in c.
func (c *Client) WithCache(fc *cache.Cache) *Client {
	clone := *c
	clone.cache = fc
	return &clone
}

// ProjectNumber resolves the project ID to its immutable numeric number.
func (c *Client) ProjectNumber(ctx context.Context) (string, error) {
	key := "project-number-" + c.project

	var cached string
	if hit, err := c.cache.Get(key, projectNumberTTL, &cached); err == nil && hit && cached != "" {
		return cached, nil
	}

	out, err := c.runner.Output(ctx,
		"projects", "describe", c.project,
		"--format", "value(projectNumber)",
	)
	if err != nil {
		return "", fmt.Errorf("iam: failed to resolve project number for %s: %w", c.project, err)
	}

	num := strings.TrimSpace(string(out))
	if num == "" {
		return "", fmt.Errorf("iam: empty project number for %s", c.project)
	}

	// Best effort: a failed cache write costs one extra lookup later.
	_ = c.cache.Set(key, num)

	return num, nil
}

// BuildServiceAccount resolves the default Cloud Build identity for the
// project.
func (c *Client) BuildServiceAccount(ctx context.Context) (string, error) {
	num, err := c.ProjectNumber(ctx)
	if err != nil {
		return "", err
	}
	return ServiceAccount(num), nil
}

// AddBinding grants role to identity on the project. Re-granting an
// already-held role is a no-op at the IAM layer.
func (c *Client) AddBinding(ctx context.Context, identity, role string) error {
	err := c.runner.Run(ctx,
		"projects", "add-iam-policy-binding", c.project,
		"--member", member(identity),
		"--role", role,
	)
	if err != nil {
		return fmt.Errorf("iam: failed to grant %s to %s: %w", role, identity, err)
	}
	return nil
}

// RemoveBinding removes the role binding for identity on the project.
func (c *Client) RemoveBinding(ctx context.Context, identity, role string) error {
	err := c.runner.Run(ctx,
		"projects", "remove-iam-policy-binding", c.project,
		"--member", member(identity),
		"--role", role,
	)
	if err != nil {
		return fmt.Errorf("iam: failed to revoke %s from %s: %w", role, identity, err)
	}
	return nil
}

// binding mirrors one entry of the project IAM policy.
type binding struct {
	Role    string   `json:"role"`
	Members []string `json:"members"`
}

// HasBinding reports whether (identity, role) is currently bound on the
// project.
func (c *Client) HasBinding(ctx context.Context, identity, role string) (bool, error) {
	out, err := c.runner.Output(ctx,
		"projects", "get-iam-policy", c.project,
		"--format", "json",
	)
	if err != nil {
		return false, fmt.Errorf("iam: failed to get IAM policy for %s: %w", c.project, err)
	}

	var policy struct {
		Bindings []binding `json:"bindings"`
	}
	if err := json.Unmarshal(out, &policy); err != nil {
		return false, fmt.Errorf("iam: failed to parse IAM policy: %w", err)
	}

	m := member(identity)
	for _, b := range policy.Bindings {
		if b.Role != role {
			continue
		}
		for _, got := range b.Members {
			if got == m {
				return true, nil
			}
		}
	}
	return false, nil
}

func member(identity string) string {
	return "serviceAccount:" + identity
}
