package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"search", "search", 0},
		{"serch", "search", 1},
		{"kitten", "sitting", 3},
		{"notes", "ntoes", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%s/%s", tt.a, tt.b)
		assert.Equal(t, tt.want, levenshtein(tt.b, tt.a), "symmetric %s/%s", tt.b, tt.a)
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []string{"auth", "notes", "search", "shopping-list", "tickets", "version"}

	assert.Equal(t, "search", suggestCommand("serch", commands))
	assert.Equal(t, "notes", suggestCommand("NOTE", commands))
	assert.Equal(t, "shopping-list", suggestCommand("shoplist", commands))
	assert.Empty(t, suggestCommand("zzzzzzzz", commands))
	assert.Empty(t, suggestCommand("", commands))
}

func TestSuggestFlag(t *testing.T) {
	flagNames := []string{"--category", "--min-price", "--max-price", "--sort"}

	assert.Equal(t, "--category", suggestFlag("--categroy", flagNames))
	assert.Equal(t, "--sort", suggestFlag("-sotr", flagNames))
	assert.Equal(t, "--max-price", suggestFlag("--maxprice", flagNames))
	assert.Empty(t, suggestFlag("--qqqqqqqqqq", flagNames))
}
