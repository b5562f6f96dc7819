package contract

import (
	"math"
	"strings"
)

// DefaultHighlightLimit is the per-category cap used for preview views.
const DefaultHighlightLimit = 2

// Classifier buckets contract sentences into clause categories by keyword
// containment. It holds no mutable state; a single instance may be shared
// across goroutines.
type Classifier struct {
	table *Table
}

// NewClassifier creates a classifier over the given category table. A nil
// table selects the built-in default.
func NewClassifier(table *Table) *Classifier {
	if table == nil {
		table = DefaultTable()
	}
	return &Classifier{table: table}
}

// Table returns the category table the classifier was built with.
func (c *Classifier) Table() *Table {
	return c.table
}

// Result maps every category name in the table to the sentences matched to
// it, in order of first match. All categories are present even when empty.
type Result struct {
	Clauses map[string][]string `json:"clauses"`
}

// Summary carries derived statistics for a classification result.
type Summary struct {
	TotalClauses       int            `json:"total_clauses"`
	CategoriesFound    []string       `json:"categories_found"`
	CategoryCounts     map[string]int `json:"category_counts"`
	CoveragePercentage float64        `json:"coverage_percentage"`
}

// Classify splits text into sentences and assigns each to every category
// whose keywords it contains. Matching is case-insensitive substring
// containment against a whitespace-normalized copy of the sentence; the
// stored sentence is the original. A sentence may land in several
// categories, but appears at most once per category.
func (c *Classifier) Classify(text string) *Result {
	clauses := make(map[string][]string, c.table.Len())
	for _, cat := range c.table.categories {
		clauses[cat.Name] = []string{}
	}
	result := &Result{Clauses: clauses}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return result
	}

	seen := make(map[string]map[string]bool, c.table.Len())
	for _, sentence := range sentences {
		normalized := normalizeForMatch(sentence)
		for _, cat := range c.table.categories {
			if !containsAny(normalized, cat.Keywords) {
				continue
			}
			if seen[cat.Name] == nil {
				seen[cat.Name] = make(map[string]bool)
			}
			if seen[cat.Name][sentence] {
				continue
			}
			seen[cat.Name][sentence] = true
			clauses[cat.Name] = append(clauses[cat.Name], sentence)
		}
	}

	return result
}

// containsAny reports whether text contains any keyword as a substring.
// Deliberately not word-boundary matching: keyword lists include both stems
// and longer forms, and substring containment keeps behavior stable across
// them.
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Summarize derives per-category counts, the categories with at least one
// match, the total clause count, and the coverage percentage (share of
// categories with matches, rounded to one decimal).
func (c *Classifier) Summarize(result *Result) Summary {
	summary := Summary{
		CategoriesFound: []string{},
		CategoryCounts:  make(map[string]int, c.table.Len()),
	}
	if result == nil {
		return summary
	}

	for _, cat := range c.table.categories {
		count := len(result.Clauses[cat.Name])
		summary.CategoryCounts[cat.Name] = count
		summary.TotalClauses += count
		if count > 0 {
			summary.CategoriesFound = append(summary.CategoriesFound, cat.Name)
		}
	}

	pct := float64(len(summary.CategoriesFound)) / float64(c.table.Len()) * 100
	summary.CoveragePercentage = math.Round(pct*10) / 10
	return summary
}

// Highlights returns a condensed view of a result with at most
// maxPerCategory sentences per category (the first N, not a sample).
// Non-positive limits fall back to DefaultHighlightLimit.
func (c *Classifier) Highlights(result *Result, maxPerCategory int) map[string][]string {
	if maxPerCategory <= 0 {
		maxPerCategory = DefaultHighlightLimit
	}

	highlights := make(map[string][]string, c.table.Len())
	if result == nil {
		return highlights
	}
	for name, sentences := range result.Clauses {
		if len(sentences) > maxPerCategory {
			sentences = sentences[:maxPerCategory]
		}
		highlights[name] = sentences
	}
	return highlights
}

// SearchKeywords returns the sentences of text containing any of the given
// keywords, case-insensitively, as a flat deduplicated list in source
// order. Each sentence is tested until its first matching keyword.
func SearchKeywords(text string, keywords []string) []string {
	if text == "" || len(keywords) == 0 {
		return nil
	}

	var matches []string
	matched := make(map[string]bool)
	for _, sentence := range SplitSentences(text) {
		normalized := normalizeForMatch(sentence)
		for _, kw := range keywords {
			if kw == "" || !strings.Contains(normalized, strings.ToLower(kw)) {
				continue
			}
			if !matched[sentence] {
				matched[sentence] = true
				matches = append(matches, sentence)
			}
			break
		}
	}
	return matches
}
