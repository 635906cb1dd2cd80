// Package normalize derives canonical comparison keys and merchant tokens
// from raw transaction descriptions.
package normalize

import (
	"regexp"
	"strings"
)

var (
	digitsRe     = regexp.MustCompile(`[0-9]`)
	nonWordRe    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	leadingVerbRe  = regexp.MustCompile(`^(purchase|payment|debit|credit|pos|online|recurring)\s+`)
	trailingNounRe = regexp.MustCompile(`\s+(payment|purchase|transaction)$`)
	referenceRunRe = regexp.MustCompile(`\s*\d{4,}.*$`)
	trailingDateRe = regexp.MustCompile(`\s+\d+/\d+.*$`)
	trailingRefRe  = regexp.MustCompile(`\s*#.*$`)
)

const (
	maxMerchantWords    = 5
	merchantFallbackLen = 30
	minSignificantLen   = 3
)

// Normalize produces the canonical comparison key for a description:
// lower-cased, digits stripped, punctuation replaced with spaces, runs of
// whitespace collapsed, trimmed. Pure and idempotent.
func Normalize(description string) string {
	if description == "" {
		return ""
	}
	s := strings.ToLower(description)
	s = digitsRe.ReplaceAllString(s, "")
	s = nonWordRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ExtractMerchant derives a short merchant token from a raw description.
// It strips common transaction verbs, reference numbers, and embedded
// dates, then keeps up to five significant words. When nothing survives,
// it falls back to the first 30 characters of the lower-cased input.
func ExtractMerchant(description string) string {
	original := strings.TrimSpace(strings.ToLower(description))
	s := original

	s = leadingVerbRe.ReplaceAllString(s, "")
	s = trailingNounRe.ReplaceAllString(s, "")
	s = referenceRunRe.ReplaceAllString(s, "")
	s = trailingDateRe.ReplaceAllString(s, "")
	s = trailingRefRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	var words []string
	for _, w := range strings.Fields(s) {
		if len(w) >= minSignificantLen {
			words = append(words, w)
		}
	}
	if len(words) > maxMerchantWords {
		words = words[:maxMerchantWords]
	}

	merchant := strings.Join(words, " ")
	if merchant == "" {
		if len(original) > merchantFallbackLen {
			return original[:merchantFallbackLen]
		}
		return original
	}
	return merchant
}

// SignificantWords splits a normalized description into the words the
// scorer considers meaningful (length greater than two).
func SignificantWords(normalized string) []string {
	var words []string
	for _, w := range strings.Fields(normalized) {
		if len(w) >= minSignificantLen {
			words = append(words, w)
		}
	}
	return words
}
