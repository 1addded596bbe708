// Package account checks password strength and runs the sign-in, sign-up
// and sign-out flows against the backend.
package account

import (
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is the shortest accepted password, in characters.
const MinPasswordLength = 8

// Problems reported by CheckPassword, in report order.
const (
	ProblemLength  = "At least 8 characters"
	ProblemUpper   = "One uppercase letter"
	ProblemLower   = "One lowercase letter"
	ProblemNumber  = "One number"
	ProblemSpecial = "One special character (recommended)"
)

const specialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordReport is the outcome of CheckPassword.
type PasswordReport struct {
	Valid    bool
	Problems []string
}

// CheckPassword applies the signup password policy. A missing special
// character is reported but does not make the password invalid.
func CheckPassword(pw string) PasswordReport {
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	long := utf8.RuneCountInString(pw) >= MinPasswordLength

	var problems []string
	if !long {
		problems = append(problems, ProblemLength)
	}
	if !upper {
		problems = append(problems, ProblemUpper)
	}
	if !lower {
		problems = append(problems, ProblemLower)
	}
	if !digit {
		problems = append(problems, ProblemNumber)
	}
	if !special {
		problems = append(problems, ProblemSpecial)
	}

	return PasswordReport{
		Valid:    long && upper && lower && digit,
		Problems: problems,
	}
}
