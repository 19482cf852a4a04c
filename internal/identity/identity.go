// Package identity handles the self-asserted phone-number identity
// that scopes a patron's bookings and reviews.  There is no credential
// behind it: the caller supplies a phone number, the service
// normalizes it and uses the normalized form as an opaque identity
// token.  Nothing here verifies that the caller owns the number.
package identity

import "strings"

// Normalize strips formatting from a raw phone input and validates its
// shape.  Korean mobile and landline numbers are 10 or 11 digits.  The
// second return value is false when the input does not normalize to a
// usable identity.
func Normalize(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 || len(digits) > 11 {
		return "", false
	}
	return digits, true
}

// Mask derives the public display name for a phone identity: the last
// four digits prefixed with asterisks ("***1234").  Review listings
// show this instead of the raw number.
func Mask(phone string) string {
	if len(phone) < 4 {
		return "***" + phone
	}
	return "***" + phone[len(phone)-4:]
}

// Format renders a normalized phone number in the familiar dashed form
// (010-1234-5678) for operator-facing screens.  Inputs that are not
// plain digit strings are returned with non-digits stripped first.
func Format(phone string) string {
	raw := phone
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 7:
		return d[:3] + "-" + d[3:]
	default:
		if len(d) > 11 {
			d = d[:11]
		}
		return d[:3] + "-" + d[3:7] + "-" + d[7:]
	}
}
