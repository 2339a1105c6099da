// Package tui holds the interactive confirmation forms used before any
// IAM mutation.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user cancels a confirmation form.
// Declining is a normal outcome, not an error condition for the run.
var ErrAborted = errors.New("aborted by operator")

// ConfirmGrants shows the identity and role list about to be granted and
// asks for explicit confirmation. It returns ErrAborted when the user
// declines or cancels.
func ConfirmGrants(identity string, roles []string, accessible bool) error {
	summary := grantSummary(identity, roles)

	note := huh.NewNote().
		Title("Grants to apply").
		Description(summary)

	confirm := false
	confirmField := huh.NewConfirm().
		Title(fmt.Sprintf("Grant %d role(s) to the build service account?", len(roles))).
		Affirmative("Yes, apply").
		Negative("Cancel").
		Value(&confirm)

	if err := runForm(accessible, huh.NewGroup(note, confirmField)); err != nil {
		return err
	}
	if !confirm {
		return ErrAborted
	}
	return nil
}

// ConfirmRevoke shows the identity and role list extracted from a grant
// record and asks for confirmation before any binding is removed.
func ConfirmRevoke(identity string, roles []string, accessible bool) error {
	summary := grantSummary(identity, roles)

	note := huh.NewNote().
		Title("Grants to revoke").
		Description(summary)

	confirm := false
	confirmField := huh.NewConfirm().
		Title(fmt.Sprintf("Remove up to %d binding(s)? Bindings no longer present are skipped.", len(roles))).
		Affirmative("Yes, revoke").
		Negative("Cancel").
		Value(&confirm)

	if err := runForm(accessible, huh.NewGroup(note, confirmField)); err != nil {
		return err
	}
	if !confirm {
		return ErrAborted
	}
	return nil
}

func grantSummary(identity string, roles []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Identity: %s\n\nRoles:\n", identity)
	for _, role := range roles {
		fmt.Fprintf(&b, "  %s\n", role)
	}
	return b.String()
}

// runForm creates and runs a huh.Form, translating ErrUserAborted to
// ErrAborted.
func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}
