package util

import "testing"

func TestValidateProjectID_Valid(t *testing.T) {
	valid := []string{
		"my-project",
		"abc123",
		"a23456",
		"team-builds-prod",
	}
	for _, id := range valid {
		if err := ValidateProjectID(id); err != nil {
			t.Errorf("ValidateProjectID(%q) = %v, want nil", id, err)
		}
	}
}

func TestValidateProjectID_Invalid(t *testing.T) {
	invalid := []string{
		"short",
		"1starts-with-digit",
		"ends-with-hyphen-",
		"Has-Uppercase",
		"under_score",
		"this-project-id-is-far-too-long-to-be-valid",
	}
	for _, id := range invalid {
		if err := ValidateProjectID(id); err == nil {
			t.Errorf("ValidateProjectID(%q) = nil, want error", id)
		}
	}
}
