package contract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Sentences shorter than this (after trimming) are dropped as fragments.
const minSentenceLength = 5

// periodPlaceholder temporarily stands in for periods inside known
// abbreviations so they do not trigger sentence breaks. NUL bytes cannot
// occur in extracted text.
const periodPlaceholder = "\x00"

// abbreviations lists period-bearing tokens that must not end a sentence.
// The list is fixed; extending it is a configuration change.
var abbreviations = []string{
	"Dr.", "Mr.", "Mrs.", "Ms.", "Jr.", "Sr.", "Inc.", "Ltd.", "Corp.",
	"vs.", "etc.", "i.e.", "e.g.", "a.m.", "p.m.", "U.S.", "U.K.",
}

// SplitSentences breaks text into sentences. A boundary is sentence-ending
// punctuation (. ! ?) followed by whitespace; the punctuation stays with the
// preceding sentence. Periods inside known abbreviations are masked before
// splitting so "Dr. Smith" stays in one sentence. Fragments of 5 characters
// or fewer are discarded.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	for _, abbr := range abbreviations {
		masked := strings.ReplaceAll(abbr, ".", periodPlaceholder)
		text = strings.ReplaceAll(text, abbr, masked)
	}

	var parts []string
	start := 0
	for i := 0; i < len(text); {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i+1:])
		if size == 0 || !unicode.IsSpace(r) {
			i++
			continue
		}
		parts = append(parts, text[start:i+1])
		j := i + 1
		for j < len(text) {
			r, size := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsSpace(r) {
				break
			}
			j += size
		}
		start = j
		i = j
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}

	sentences := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ReplaceAll(part, periodPlaceholder, ".")
		part = strings.TrimSpace(part)
		if len(part) > minSentenceLength {
			sentences = append(sentences, part)
		}
	}
	return sentences
}

// normalizeForMatch lowercases text and collapses all whitespace runs to
// single spaces. Used only for keyword matching; the original sentence text
// is what results carry.
func normalizeForMatch(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
