package domain

import (
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// FieldErrors maps an offending field name to a human-readable message.
// A non-empty map blocks submission before any network call is made.
type FieldErrors map[string]string

// ValidateProfileSetup performs the client-side schema check on a
// profile-setup submission. Per-game IDs are optional and unchecked.
func ValidateProfileSetup(in ProfileSetup) FieldErrors {
	errs := FieldErrors{}

	if len(strings.TrimSpace(in.FullName)) < 3 {
		errs["fullName"] = "Full name is required"
	}

	if strings.TrimSpace(in.GamerTag) == "" {
		errs["gamerTag"] = "GamerTag is required"
	}

	if !phonePattern.MatchString(in.Phone) {
		errs["phone"] = "Phone number must be exactly 10 digits"
	}

	return errs
}

// ValidateTeamCreate checks the team-creation form.
func ValidateTeamCreate(in TeamCreate) FieldErrors {
	errs := FieldErrors{}

	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Team name is required"
	}

	if strings.TrimSpace(in.Game) == "" {
		errs["game"] = "Game is required"
	}

	return errs
}
