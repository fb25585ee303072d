package internal

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// PhoneMatch is the quality of a match between two phone numbers.
type PhoneMatch int

const (
	PhoneNoMatch PhoneMatch = iota
	PhonePartialMatch
	PhoneExactMatch
)

func (m PhoneMatch) String() string {
	switch m {
	case PhonePartialMatch:
		return "partial"
	case PhoneExactMatch:
		return "exact"
	}
	return "none"
}

// NormalizePhoneNumber strips formatting from a phone number, keeping
// digits and the dialable characters "+", "*" and "#".
func NormalizePhoneNumber(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '#' {
			return r
		}
		if m, ok := phonenumbers.DIALLABLE_CHAR_MAPPINGS[r]; ok {
			return m
		}
		return -1
	}, s)
}

// ComparePhoneNumbers classifies how well two phone numbers match. Numbers
// that agree on country code, national number and extension are an exact
// match. Numbers that only agree on the national number, or where one
// national number is a suffix of the other, are a partial match.
func ComparePhoneNumbers(a, b string) PhoneMatch {
	switch phonenumbers.IsNumberMatch(a, b) {
	case phonenumbers.EXACT_MATCH:
		return PhoneExactMatch
	case phonenumbers.NSN_MATCH, phonenumbers.SHORT_NSN_MATCH:
		return PhonePartialMatch
	default:
		return PhoneNoMatch
	}
}
