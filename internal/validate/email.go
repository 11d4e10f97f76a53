package validate

import (
	"errors"
	"strings"
)

// ErrInvalidEmail is returned for malformed addresses.
var ErrInvalidEmail = errors.New("invalid email format")

// RFC 5321 limits.
const (
	maxEmailLength   = 254
	maxLocalLength   = 64
	maxLabelLength   = 63
	minTLDLength     = 2
	localPunctuation = "._%+-"
)

// Email validates an email address and returns it trimmed and lowercased.
// Only unquoted dot-atom local parts and DNS host names are accepted.
func Email(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmpty
	}
	if len(email) > maxEmailLength {
		return "", ErrStringTooLong
	}

	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "", ErrInvalidEmail
	}
	if len(local) > maxLocalLength {
		return "", ErrStringTooLong
	}
	if !validLocalPart(local) || !validDomain(domain) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func validLocalPart(local string) bool {
	if local == "" {
		return false
	}
	for _, r := range local {
		if !isASCIIAlnum(r) && !strings.ContainsRune(localPunctuation, r) {
			return false
		}
	}
	return true
}

// validDomain requires at least two labels and an alphabetic TLD.
func validDomain(domain string) bool {
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || len(label) > maxLabelLength {
			return false
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return false
		}
		for _, r := range label {
			if !isASCIIAlnum(r) && r != '-' {
				return false
			}
		}
	}

	tld := labels[len(labels)-1]
	if len(tld) < minTLDLength {
		return false
	}
	for _, r := range tld {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
