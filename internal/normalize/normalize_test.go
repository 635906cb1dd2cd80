package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips digits and punctuation",
			input: "Payment #4821 STARBUCKS 04/21",
			want:  "payment starbucks",
		},
		{
			name:  "collapses whitespace",
			input: "  SHELL   GAS    STATION  ",
			want:  "shell gas station",
		},
		{
			name:  "lower-cases",
			input: "AMAZON.COM",
			want:  "amazon com",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "only digits and punctuation",
			input: "12345 *** 6789",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "#")
			assert.NotRegexp(t, `[0-9]`, got)
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Payment #4821 STARBUCKS 04/21",
		"POS Purchase AMAZON.COM*1A2B3C4D 123456789",
		"TRADER JOE'S #552",
		"",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "normalize must be idempotent for %q", input)
	}
}

func TestExtractMerchant(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips leading verb and reference run",
			input: "POS Purchase AMAZON.COM*1A2B3C4D 123456789",
			want:  "purchase amazon.com*1a2b3c4d",
		},
		{
			name:  "strips trailing noun",
			input: "Netflix payment",
			want:  "netflix",
		},
		{
			name:  "strips trailing date fragment",
			input: "Shell Gas Station 04/21/2024",
			want:  "shell gas station",
		},
		{
			name:  "strips trailing reference",
			input: "Starbucks #123",
			want:  "starbucks",
		},
		{
			name:  "caps at five significant words",
			input: "one two alpha beta gamma delta epsilon zeta",
			want:  "one two alpha beta gamma",
		},
		{
			name:  "drops short tokens",
			input: "je suis whole foods market",
			want:  "suis whole foods market",
		},
		{
			name:  "falls back to prefix when nothing survives",
			input: "a b c 1 2",
			want:  "a b c 1 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractMerchant(tt.input))
		})
	}
}

func TestExtractMerchant_FallbackTruncates(t *testing.T) {
	// Every token is too short, so the fallback kicks in and truncates
	// the lower-cased original to 30 characters.
	input := "1 2 3 4 5 6 7 8 9 10 11 12 13 14 15 16 17 18"
	got := ExtractMerchant(input)
	assert.Len(t, got, 30)
	assert.Equal(t, input[:30], got)
}

func TestSignificantWords(t *testing.T) {
	assert.Equal(t, []string{"shell", "gas", "station"}, SignificantWords("shell gas station"))
	assert.Empty(t, SignificantWords("a b c"))
	assert.Empty(t, SignificantWords(""))
}
