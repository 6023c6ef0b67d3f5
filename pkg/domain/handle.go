package domain

import (
	"strings"
	"unicode"

	dErrors "callguard/pkg/domain-errors"
)

// Handle is the calling address of an inbound call: a phone number or an
// opaque string (SIP URI, alias). It may be empty when the caller withholds it.
type Handle string

const maxHandleLength = 256

// ParseHandle validates external input. An empty handle is allowed.
func ParseHandle(s string) (Handle, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxHandleLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "handle is too long")
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "handle contains control characters")
		}
	}
	return Handle(s), nil
}

func (h Handle) String() string { return string(h) }
func (h Handle) IsEmpty() bool  { return h == "" }

// Normalize strips visual separators from phone-number handles so
// "+1 (555) 010-2000" and "+15550102000" compare equal. Handles containing
// letters or '@' are treated as opaque and only lowercased.
func (h Handle) Normalize() Handle {
	s := strings.TrimSpace(string(h))
	if strings.ContainsAny(s, "@:") || strings.IndexFunc(s, unicode.IsLetter) >= 0 {
		return Handle(strings.ToLower(s))
	}
	var b strings.Builder
	for i, r := range s {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return Handle(b.String())
}

// Variants returns the normalized handle plus its form with the leading '+'
// toggled, for lookups against stores that were fed inconsistent input.
func (h Handle) Variants() []string {
	n := string(h.Normalize())
	if n == "" || n == "+" {
		return nil
	}
	if strings.HasPrefix(n, "+") {
		return []string{n, n[1:]}
	}
	if n[0] >= '0' && n[0] <= '9' {
		return []string{n, "+" + n}
	}
	return []string{n}
}
