// Package validation contains input validation helpers.
package validation

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether the string is a plausible bare e-mail
// address. Display names ("Ana <a@b.com>") are rejected.
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	return addr.Name == "" && addr.Address == email
}
