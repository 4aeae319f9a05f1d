package services

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"paldeck_server/models"
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 8

// ValidateSignUp checks the sign-up form
func ValidateSignUp(email, password, confirm string) error {
	if _, err := NormalizeEmail(email); err != nil {
		return err
	}
	if password == "" {
		return invalid("password", "is required")
	}
	if password != confirm {
		return invalid("passwordConfirm", "passwords do not match")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return invalid("password", "must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// NormalizeEmail lowercases and validates an address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email", "is not a valid address")
	}
	return email, nil
}

// ValidateProfile checks that a profile is complete. It normalizes interests in
// place: trimmed, empty tags dropped, duplicates removed ignoring case.
func ValidateProfile(p *models.UserProfile, minAge int) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Location = strings.TrimSpace(p.Location)
	p.Bio = strings.TrimSpace(p.Bio)
	p.Interests = normalizeInterests(p.Interests)

	switch {
	case p.Name == "":
		return invalid("name", "is required")
	case p.Location == "":
		return invalid("location", "is required")
	case p.Bio == "":
		return invalid("bio", "is required")
	case p.Age < minAge:
		return invalid("age", "must be at least %d", minAge)
	case len(p.Interests) < models.MinInterests:
		return invalid("interests", "pick at least %d", models.MinInterests)
	}
	if p.Latitude < -90 || p.Latitude > 90 || p.Longitude < -180 || p.Longitude > 180 {
		return invalid("location", "coordinates out of range")
	}
	return nil
}

func normalizeInterests(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		k := strings.ToLower(tag)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ValidateMessageText trims text and enforces the length bounds
func ValidateMessageText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalid("text", "is required")
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return "", invalid("text", "must be at most %d characters", models.MaxMessageLength)
	}
	return text, nil
}
