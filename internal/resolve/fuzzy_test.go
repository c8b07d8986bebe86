package resolve_test

import (
	"errors"
	"testing"

	"github.com/arabah/arabah-cli/internal/api"
	"github.com/arabah/arabah-cli/internal/resolve"
)

var categories = []api.Category{
	{ID: 1, Name: "Dairy"},
	{ID: 2, Name: "Bakery"},
	{ID: 3, Name: "Beverages"},
	{ID: 4, Name: "Frozen Food"},
}

func TestFuzzyMatch(t *testing.T) {
	items := []resolve.Named{{ID: 1, Name: "Fresh Milk"}, {ID: 2, Name: "Milk Powder"}}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"exact", "Fresh Milk", 1},
		{"case insensitive exact", "MILK POWDER", 2},
		{"partial", "powd", 2},
		{"surrounding space", "  fresh ", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolve.FuzzyMatch(tt.query, items)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("FuzzyMatch(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestFuzzyMatch_Errors(t *testing.T) {
	items := []resolve.Named{{ID: 1, Name: "Dates"}}

	if _, err := resolve.FuzzyMatch(" ", items); !errors.Is(err, resolve.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := resolve.FuzzyMatch("x", nil); !errors.Is(err, resolve.ErrEmptyItems) {
		t.Errorf("expected ErrEmptyItems, got %v", err)
	}
	if _, err := resolve.FuzzyMatch("zzz", items); err == nil {
		t.Error("expected no-match error")
	}
}

func TestFuzzyMatch_Ambiguous(t *testing.T) {
	items := []resolve.Named{{ID: 1, Name: "Rice A"}, {ID: 2, Name: "Rice B"}}

	_, err := resolve.FuzzyMatch("rice", items)
	var amb *resolve.AmbiguousError
	if !errors.As(err, &amb) {
		t.Fatalf("expected *AmbiguousError, got %v", err)
	}
	if len(amb.Matches) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(amb.Matches))
	}
	if want := "ambiguous match for \"rice\", candidates:"; len(err.Error()) < len(want) || err.Error()[:len(want)] != want {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestFuzzyMatchAll(t *testing.T) {
	items := []resolve.Named{{ID: 1, Name: "Bread"}, {ID: 2, Name: "Brown Bread"}, {ID: 3, Name: "Butter"}}

	got := resolve.FuzzyMatchAll("bread", items, 1)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("unexpected matches: %+v", got)
	}
	if resolve.FuzzyMatchAll("", items, 3) != nil {
		t.Error("empty query should give nil")
	}
	if resolve.FuzzyMatchAll("bread", items, 0) != nil {
		t.Error("zero limit should give nil")
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{"3", 3, false},
		{"dairy", 1, false},
		{"bak", 2, false},
		{"frozen", 4, false},
		{"99", 0, true},
		{"electronics", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := resolve.Category(tt.value, categories)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Category(%q) expected error, got %d", tt.value, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Category(%q): %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("Category(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestCategory_EmptyCatalog(t *testing.T) {
	if _, err := resolve.Category("dairy", nil); err == nil || err.Error() != "the catalog has no categories" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestProduct(t *testing.T) {
	products := []api.Product{{ID: 10, Name: "Almarai Milk 1L"}, {ID: 11, Name: "Nadec Laban"}}
	id, err := resolve.Product("laban", products)
	if err != nil || id != 11 {
		t.Errorf("Product = %d, %v", id, err)
	}
}
