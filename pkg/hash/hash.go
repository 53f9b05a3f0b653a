package hash

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const Cost = 12

const specialChars = `!@#$%^&*(),.?":{}|<>`

func HashPassword(password string) (string, error) {
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), Cost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Policy describes what a password has to contain.
type Policy struct {
	MinLen         int
	RequireSpecial bool
}

var (
	// BasicPolicy applies to accounts created through the users API.
	BasicPolicy = Policy{MinLen: 6}
	// StrongPolicy applies to self-registration and password changes.
	StrongPolicy = Policy{MinLen: 8, RequireSpecial: true}
)

// Satisfied reports whether password has the minimum length and at least one
// lower-case letter, upper-case letter and digit (plus a special character
// when the policy asks for one).
func (p Policy) Satisfied(password string) bool {
	if len(password) < p.MinLen {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	if p.RequireSpecial && !special {
		return false
	}
	return lower && upper && digit
}
