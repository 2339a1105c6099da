// Package gcloud wraps invocations of the gcloud command-line tool.
//
// Every remote operation in buildmedic (build listing, log retrieval,
// IAM policy changes) is a blocking round-trip through the gcloud
// binary. The Runner interface is the single seam between the rest of
// the codebase and that binary, so tests can substitute a fake that
// records argv and returns canned output.
package gcloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// ErrMissingGcloud indicates the gcloud binary is not installed or not
// on PATH. It is fatal: nothing else in the tool can proceed without it.
var ErrMissingGcloud = errors.New("gcloud CLI not found in PATH")

// Runner issues gcloud invocations. All methods block until the
// subprocess exits.
type Runner interface {
	// Output runs gcloud with the given arguments and returns its stdout.
	Output(ctx context.Context, args ...string) ([]byte, error)

	// Run runs gcloud with the given arguments, discarding stdout.
	Run(ctx context.Context, args ...string) error

	// Stream runs gcloud with the given arguments, copying stdout to w
	// as it is produced. Used for long-running log follows.
	Stream(ctx context.Context, w io.Writer, args ...string) error
}

// execRunner shells out to the real gcloud binary. Subprocess stderr is
// passed through so gcloud's own error messages reach the operator.
type execRunner struct{}

// debugf echoes each gcloud invocation to stderr when BUILDMEDIC_DEBUG
// is set, so operators can replay exactly what the tool ran.
func debugf(args []string) {
	if os.Getenv("BUILDMEDIC_DEBUG") == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "+ gcloud %s\n", strings.Join(args, " "))
}

func (execRunner) Output(ctx context.Context, args ...string) ([]byte, error) {
	debugf(args)
	cmd := exec.CommandContext(ctx, "gcloud", args...)
	cmd.Stderr = os.Stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("gcloud %s: %w", args[0], err)
	}
	return out, nil
}

func (execRunner) Run(ctx context.Context, args ...string) error {
	debugf(args)
	cmd := exec.CommandContext(ctx, "gcloud", args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gcloud %s: %w", args[0], err)
	}
	return nil
}

func (execRunner) Stream(ctx context.Context, w io.Writer, args ...string) error {
	debugf(args)
	cmd := exec.CommandContext(ctx, "gcloud", args...)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("gcloud %s: %w", args[0], err)
	}
	return nil
}

var defaultRunner Runner = execRunner{}

// Default returns the runner used by commands.
func Default() Runner { return defaultRunner }

// SetRunner replaces the default runner. Intended for testing.
func SetRunner(r Runner) { defaultRunner = r }

// ResetRunner restores the real gcloud runner. Intended for testing.
func ResetRunner() { defaultRunner = execRunner{} }

var lookPath = exec.LookPath

// SetLookPath replaces the PATH probe used by EnsureAvailable. Intended
// for testing.
func SetLookPath(fn func(string) (string, error)) { lookPath = fn }

// ResetLookPath restores the real PATH probe. Intended for testing.
func ResetLookPath() { lookPath = exec.LookPath }

// EnsureAvailable verifies the gcloud binary can be found. Commands that
// talk to Google Cloud call this before doing any other work.
func EnsureAvailable() error {
	if _, err := lookPath("gcloud"); err != nil {
		return fmt.Errorf("%w: install the Google Cloud SDK from https://cloud.google.com/sdk", ErrMissingGcloud)
	}
	return nil
}
