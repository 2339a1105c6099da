package gcloud

import (
	"context"
	"io"
	"strings"
)

// FakeCall records a single invocation made against a Fake runner.
type FakeCall struct {
	Args []string
}

// Fake is an in-memory Runner for tests. Responses are keyed by the
// first matching prefix of the argv joined with spaces; unmatched
// invocations return Err (or succeed with empty output when Err is nil).
type Fake struct {
	// Responses maps an argv prefix (e.g. "builds log") to canned stdout.
	Responses map[string]string

	// Errs maps an argv prefix to an error returned for that invocation.
	Errs map[string]error

	// Err is the fallback error for invocations with no matching entry
	// in Errs.
	Err error

	Calls []FakeCall
}

func (f *Fake) record(args []string) string {
	f.Calls = append(f.Calls, FakeCall{Args: args})
	return strings.Join(args, " ")
}

func (f *Fake) lookup(key string) (string, error) {
	for prefix, err := range f.Errs {
		if strings.HasPrefix(key, prefix) {
			return "", err
		}
	}
	for prefix, out := range f.Responses {
		if strings.HasPrefix(key, prefix) {
			return out, nil
		}
	}
	return "", f.Err
}

func (f *Fake) Output(_ context.Context, args ...string) ([]byte, error) {
	out, err := f.lookup(f.record(args))
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func (f *Fake) Run(_ context.Context, args ...string) error {
	_, err := f.lookup(f.record(args))
	return err
}

func (f *Fake) Stream(_ context.Context, w io.Writer, args ...string) error {
	out, err := f.lookup(f.record(args))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// CallArgs returns the argv of call i joined with spaces, or "" if out
// of range. Convenience for command assertions.
func (f *Fake) CallArgs(i int) string {
	if i < 0 || i >= len(f.Calls) {
		return ""
	}
	return strings.Join(f.Calls[i].Args, " ")
}
