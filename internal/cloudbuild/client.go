// Package cloudbuild exposes the Cloud Build operations buildmedic
// consumes, backed by the gcloud CLI.
package cloudbuild

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gcpops/buildmedic/internal/gcloud"
)

// Build is the subset of Cloud Build metadata the tool cares about.
type Build struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	CreateTime time.Time `json:"createTime"`
	LogURL     string    `json:"logUrl,omitempty"`
	Images     []string  `json:"images,omitempty"`
}

// Client wraps per-project Cloud Build calls.
type Client struct {
	runner  gcloud.Runner
	project string
}

// NewClient returns a client scoped to a project.
func NewClient(runner gcloud.Runner, project string) *Client {
	return &Client{runner: runner, project: project}
}

// List returns the most recent builds, newest first.
func (c *Client) List(ctx context.Context, limit int) ([]Build, error) {
	out, err := c.runner.Output(ctx,
		"builds", "list",
		"--project", c.project,
		"--limit", fmt.Sprintf("%d", limit),
		"--format", "json",
	)
	if err != nil {
		return nil, fmt.Errorf("cloudbuild: failed to list builds: %w", err)
	}

	var builds []Build
	if err := json.Unmarshal(out, &builds); err != nil {
		return nil, fmt.Errorf("cloudbuild: failed to parse build list: %w", err)
	}
	return builds, nil
}

// Describe returns structured metadata for a single build.
func (c *Client) Describe(ctx context.Context, id string) (*Build, error) {
	out, err := c.runner.Output(ctx,
		"builds", "describe", id,
		"--project", c.project,
		"--format", "json",
	)
	if err != nil {
		return nil, fmt.Errorf("cloudbuild: failed to describe build %s: %w", id, err)
	}

	b := new(Build)
	if err := json.Unmarshal(out, b); err != nil {
		return nil, fmt.Errorf("cloudbuild: failed to parse build %s: %w", id, err)
	}
	return b, nil
}

// Log fetches the complete log text for a build. An empty log is not an
// error; callers treat any text as analyzable.
func (c *Client) Log(ctx context.Context, id string) (string, error) {
	out, err := c.runner.Output(ctx,
		"builds", "log", id,
		"--project", c.project,
	)
	if err != nil {
		return "", fmt.Errorf("cloudbuild: failed to fetch log for build %s: %w", id, err)
	}
	return string(out), nil
}

// StreamLog follows the log of a build, copying output to w until the
// build finishes or ctx is cancelled.
func (c *Client) StreamLog(ctx context.Context, id string, w io.Writer) error {
	err := c.runner.Stream(ctx, w,
		"builds", "log", id,
		"--stream",
		"--project", c.project,
	)
	if err != nil {
		return fmt.Errorf("cloudbuild: failed to stream log for build %s: %w", id, err)
	}
	return nil
}

// Retry re-runs a previously submitted build.
func (c *Client) Retry(ctx context.Context, id string) error {
	err := c.runner.Run(ctx,
		"builds", "retry", id,
		"--project", c.project,
	)
	if err != nil {
		return fmt.Errorf("cloudbuild: failed to retry build %s: %w", id, err)
	}
	return nil
}
