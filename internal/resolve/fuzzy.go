// Package resolve turns user-typed category and product names into IDs.
package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/arabah/arabah-cli/internal/api"
)

// Named is anything with an ID and a display name.
type Named struct {
	ID   int
	Name string
}

// Match is a ranked candidate.
type Match struct {
	ID    int
	Name  string
	Score int
}

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrEmptyItems = errors.New("no items to match against")
)

// maxCandidates caps the list shown in ambiguity errors.
const maxCandidates = 5

// AmbiguousError means the best candidates scored the same.
type AmbiguousError struct {
	Query   string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ambiguous match for %q", e.Query)
	if len(e.Matches) > 0 {
		b.WriteString(", candidates:")
		for _, m := range e.Matches {
			_, _ = fmt.Fprintf(&b, "\n  %d: %s", m.ID, m.Name)
		}
	}
	return b.String()
}

type lowerNames []Named

func (s lowerNames) String(i int) string { return strings.ToLower(s[i].Name) }
func (s lowerNames) Len() int            { return len(s) }

// FuzzyMatch returns the ID of the item whose name best matches query.
// A case-insensitive exact name wins outright; a tie between the two best
// fuzzy scores is an *AmbiguousError.
func FuzzyMatch(query string, items []Named) (int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, ErrEmptyQuery
	}
	if len(items) == 0 {
		return 0, ErrEmptyItems
	}

	for _, item := range items {
		if strings.EqualFold(item.Name, query) {
			return item.ID, nil
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), lowerNames(items))
	if len(results) == 0 {
		return 0, fmt.Errorf("no match found for %q", query)
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		return 0, &AmbiguousError{Query: query, Matches: buildMatches(items, results, maxCandidates)}
	}
	return items[results[0].Index].ID, nil
}

// FuzzyMatchAll returns up to limit matches, best first.
func FuzzyMatchAll(query string, items []Named, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || len(items) == 0 || limit <= 0 {
		return nil
	}
	return buildMatches(items, fuzzy.FindFrom(strings.ToLower(query), lowerNames(items)), limit)
}

// Category resolves a category flag value. Numeric values are taken as IDs
// when such a category exists; anything else is matched by name.
func Category(value string, categories []api.Category) (int, error) {
	items := make([]Named, len(categories))
	for i, c := range categories {
		items[i] = Named{ID: c.ID, Name: c.Name}
	}
	if id, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
		for _, item := range items {
			if item.ID == id {
				return id, nil
			}
		}
		return 0, fmt.Errorf("category %d not found", id)
	}
	id, err := FuzzyMatch(value, items)
	if errors.Is(err, ErrEmptyItems) {
		return 0, errors.New("the catalog has no categories")
	}
	return id, err
}

// Product picks a product from search results by name.
func Product(value string, products []api.Product) (int, error) {
	items := make([]Named, len(products))
	for i, p := range products {
		items[i] = Named{ID: p.ID, Name: p.Name}
	}
	return FuzzyMatch(value, items)
}

func buildMatches(items []Named, results fuzzy.Matches, limit int) []Match {
	if len(results) == 0 || limit <= 0 {
		return nil
	}
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{ID: items[r.Index].ID, Name: items[r.Index].Name, Score: r.Score}
	}
	return matches
}
