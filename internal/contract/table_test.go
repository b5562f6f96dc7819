package contract

import (
	"reflect"
	"testing"
)

func TestNewTable(t *testing.T) {
	tests := []struct {
		name        string
		categories  []Category
		expectError bool
	}{
		{
			name: "valid table",
			categories: []Category{
				{Name: "A", Keywords: []string{"alpha"}},
				{Name: "B", Keywords: []string{"beta", "gamma"}},
			},
			expectError: false,
		},
		{
			name:        "empty table",
			categories:  nil,
			expectError: true,
		},
		{
			name: "empty category name",
			categories: []Category{
				{Name: "", Keywords: []string{"alpha"}},
			},
			expectError: true,
		},
		{
			name: "duplicate category name",
			categories: []Category{
				{Name: "A", Keywords: []string{"alpha"}},
				{Name: "A", Keywords: []string{"beta"}},
			},
			expectError: true,
		},
		{
			name: "category without keywords",
			categories: []Category{
				{Name: "A", Keywords: nil},
			},
			expectError: true,
		},
		{
			name: "blank keywords rejected",
			categories: []Category{
				{Name: "A", Keywords: []string{"  ", ""}},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTable(tt.categories)
			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if table.Len() != len(tt.categories) {
				t.Errorf("Len() = %d, want %d", table.Len(), len(tt.categories))
			}
		})
	}
}

func TestNewTableNormalizesKeywords(t *testing.T) {
	table, err := NewTable([]Category{
		{Name: "A", Keywords: []string{"  ALPHA ", "Beta"}},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	want := []string{"alpha", "beta"}
	if got := table.Keywords("A"); !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords(A) = %v, want %v", got, want)
	}
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	wantNames := []string{"Termination", "Liability", "Payment", "Confidentiality", "Intellectual Property"}
	if got := table.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Errorf("Names() = %v, want %v", got, wantNames)
	}

	for _, name := range wantNames {
		if len(table.Keywords(name)) == 0 {
			t.Errorf("category %s has no keywords", name)
		}
	}

	if table.Keywords("Unknown") != nil {
		t.Error("Keywords for unknown category should be nil")
	}
}
