package contract

import (
	"fmt"
	"strings"
)

// Category pairs a clause category name with the keywords that signal it.
type Category struct {
	Name     string
	Keywords []string
}

// Table is an immutable, ordered set of clause categories. It is built once
// at startup and shared across classifiers; concurrent reads are safe.
type Table struct {
	categories []Category
}

// NewTable builds a category table from the given categories. Keywords are
// lowercased at construction so matching never normalizes them again. Every
// category must carry at least one non-blank keyword.
func NewTable(categories []Category) (*Table, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("category table cannot be empty")
	}

	seen := make(map[string]bool, len(categories))
	copied := make([]Category, 0, len(categories))
	for _, cat := range categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("category name cannot be empty")
		}
		if seen[cat.Name] {
			return nil, fmt.Errorf("duplicate category: %s", cat.Name)
		}
		seen[cat.Name] = true

		keywords := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("category %s has no keywords", cat.Name)
		}

		copied = append(copied, Category{Name: cat.Name, Keywords: keywords})
	}

	return &Table{categories: copied}, nil
}

// DefaultTable returns the built-in five-category table used for contract
// analysis. Category names are stable identifiers; they appear as keys in
// every classification result.
func DefaultTable() *Table {
	table, err := NewTable([]Category{
		{
			Name: "Termination",
			Keywords: []string{
				"termination",
				"terminate",
				"cancel",
				"cancellation",
				"end agreement",
				"end of agreement",
				"notice period",
				"right to terminate",
				"termination for cause",
				"termination for convenience",
			},
		},
		{
			Name: "Liability",
			Keywords: []string{
				"liability",
				"indemnify",
				"indemnification",
				"damages",
				"liable",
				"limitation of liability",
				"hold harmless",
				"indemnity",
				"consequential damages",
				"direct damages",
			},
		},
		{
			Name: "Payment",
			Keywords: []string{
				"payment",
				"fee",
				"invoice",
				"compensation",
				"remuneration",
				"price",
				"billing",
				"pay",
				"cost",
				"charges",
				"payment terms",
				"due date",
				"late payment",
			},
		},
		{
			Name: "Confidentiality",
			Keywords: []string{
				"confidential",
				"confidentiality",
				"nda",
				"non-disclosure",
				"secret",
				"proprietary information",
				"confidential information",
				"trade secret",
				"disclose",
				"disclosure",
			},
		},
		{
			Name: "Intellectual Property",
			Keywords: []string{
				"intellectual property",
				"copyright",
				"trademark",
				"patent",
				"ip rights",
				"proprietary rights",
				"ownership of work",
				"work for hire",
				"license",
				"royalty",
				"invention",
			},
		},
	})
	if err != nil {
		// The built-in table is static; a construction failure is a bug.
		panic(fmt.Sprintf("default category table: %v", err))
	}
	return table
}

// Len returns the number of categories in the table.
func (t *Table) Len() int {
	return len(t.categories)
}

// Names returns the category names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.categories))
	for i, cat := range t.categories {
		names[i] = cat.Name
	}
	return names
}

// Keywords returns the keywords for a category, or nil if the category is
// not in the table. The returned slice must not be modified.
func (t *Table) Keywords(name string) []string {
	for _, cat := range t.categories {
		if cat.Name == name {
			return cat.Keywords
		}
	}
	return nil
}
