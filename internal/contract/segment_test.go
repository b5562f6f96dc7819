package contract

import (
	"reflect"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "empty text",
			text:     "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			text:     "   \n\t  ",
			expected: nil,
		},
		{
			name:     "single sentence with period",
			text:     "This agreement may be terminated by either party.",
			expected: []string{"This agreement may be terminated by either party."},
		},
		{
			name: "multiple sentences",
			text: "Payment is due within thirty days. Late fees apply thereafter! Are refunds available?",
			expected: []string{
				"Payment is due within thirty days.",
				"Late fees apply thereafter!",
				"Are refunds available?",
			},
		},
		{
			name: "abbreviations do not split",
			text: "The agreement involves Dr. Smith. It terminates in 2025.",
			expected: []string{
				"The agreement involves Dr. Smith.",
				"It terminates in 2025.",
			},
		},
		{
			name: "corporate abbreviations",
			text: "Acme Inc. shall indemnify the buyer. Beta Corp. accepts the terms.",
			expected: []string{
				"Acme Inc. shall indemnify the buyer.",
				"Beta Corp. accepts the terms.",
			},
		},
		{
			name: "latin abbreviations mid-sentence",
			text: "Confidential material, e.g. trade secrets, stays protected. Disclosure is prohibited.",
			expected: []string{
				"Confidential material, e.g. trade secrets, stays protected.",
				"Disclosure is prohibited.",
			},
		},
		{
			name:     "short fragments dropped",
			text:     "Yes. No. The contract remains in force.",
			expected: []string{"The contract remains in force."},
		},
		{
			name:     "no terminal punctuation",
			text:     "This clause survives termination of the agreement",
			expected: []string{"This clause survives termination of the agreement"},
		},
		{
			name: "newline as sentence separator",
			text: "The term ends on December 31.\nRenewal requires written notice.",
			expected: []string{
				"The term ends on December 31.",
				"Renewal requires written notice.",
			},
		},
		{
			name: "repeated punctuation stays with sentence",
			text: "Liability is strictly limited!! The cap is one million dollars.",
			expected: []string{
				"Liability is strictly limited!!",
				"The cap is one million dollars.",
			},
		},
		{
			name:     "punctuation without following space does not split",
			text:     "See section 3.2 for payment terms applicable here.",
			expected: []string{"See section 3.2 for payment terms applicable here."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SplitSentences(%q) = %#v, want %#v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestSplitSentencesNoPlaceholderLeaks(t *testing.T) {
	text := "Mr. Jones signed on behalf of Acme Ltd. today. The notice period is e.g. thirty days."
	for _, sentence := range SplitSentences(text) {
		for _, r := range sentence {
			if r == '\x00' {
				t.Fatalf("placeholder byte leaked into sentence %q", sentence)
			}
		}
	}
}

func TestNormalizeForMatch(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{"lowercases", "TERMINATION Clause", "termination clause"},
		{"collapses whitespace", "payment   terms\n\tapply", "payment terms apply"},
		{"trims", "  liability  ", "liability"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeForMatch(tt.text); got != tt.expected {
				t.Errorf("normalizeForMatch(%q) = %q, want %q", tt.text, got, tt.expected)
			}
		})
	}
}
