// Package masking provides display-time redaction of PII fields.
// Masking never mutates stored contact data; it is applied only when
// building a masked projection for display.
package masking

import "strings"

// emailMask is the fixed mask appended to the visible part of an email user.
const emailMask = "****"

// MaskEmail redacts the local part of an email address for display.
// Strings that are not of the form user@domain, including ones with multiple
// "@", are returned unchanged. When the user part is longer than two
// characters, only the first two are kept; otherwise the whole user part is
// kept and the mask appended.
func MaskEmail(email string) string {
	if strings.Count(email, "@") != 1 {
		return email
	}

	user, domain, _ := strings.Cut(email, "@")

	if len(user) > 2 {
		return user[:2] + emailMask + "@" + domain
	}
	return user + emailMask + "@" + domain
}

// MaskPhone redacts a phone number for display, keeping the last four digits.
// All non-digit characters are stripped first; one "*" is emitted per hidden
// digit. Inputs with four or fewer digits are returned unchanged.
func MaskPhone(phone string) string {
	if phone == "" {
		return phone
	}

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	clean := digits.String()
	if len(clean) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(clean)-4) + clean[len(clean)-4:]
}
