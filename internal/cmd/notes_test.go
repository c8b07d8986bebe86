package cmd

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleNotes = []map[string]any{
	{"id": 1, "text": "buy milk", "created_at": "2026-01-02", "updated_at": "2026-01-03"},
	{"id": 2, "text": "compare rice prices", "created_at": "2026-01-04"},
}

func TestNotesList_Text(t *testing.T) {
	h := newRouteHandler().On(http.MethodGet, "notes", okResponse(sampleNotes))
	setupTestEnv(t, h)

	res := runCLI(t, "notes", "list")
	require.NoError(t, res.Err, res.Stderr)
	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TEXT")
	assert.Contains(t, lines[1], "2026-01-03")
	assert.Contains(t, lines[2], "2026-01-04")

	reqs := h.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer test-token", reqs[0].Header.Get("Authorization"))
	assert.Equal(t, "en", reqs[0].Header.Get("language_type"))
}

func TestNotesList_JQ(t *testing.T) {
	h := newRouteHandler().On(http.MethodGet, "notes", okResponse(sampleNotes))
	setupTestEnv(t, h)

	res := runCLI(t, "notes", "list", "--jq", "[.items[].text]", "--compact-json")
	require.NoError(t, res.Err)
	assert.Equal(t, `["buy milk","compare rice prices"]`+"\n", res.Stdout)
}

func TestNotesList_Empty(t *testing.T) {
	h := newRouteHandler().On(http.MethodGet, "notes", okResponse([]any{}))
	setupTestEnv(t, h)

	res := runCLI(t, "notes", "list")
	require.NoError(t, res.Err)
	assert.Empty(t, res.Stdout)
	assert.Contains(t, res.Stderr, "No notes")
}

func TestNotesCreate(t *testing.T) {
	h := newRouteHandler().On(http.MethodPost, "notes/create", okResponse(map[string]any{"id": 9, "text": "eggs"}))
	setupTestEnv(t, h)

	res := runCLI(t, "notes", "create", "eggs", "and", "bread")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Stdout, "Created note 9")

	reqs := h.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "eggs and bread", decodeBody(t, reqs[0])["text"])
}

func TestNotesCreate_BlankIsValidationError(t *testing.T) {
	h := newRouteHandler()
	setupTestEnv(t, h)

	res := runCLI(t, "notes", "create", "   ")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "note is required")
	assert.Equal(t, exitUsage, res.ExitCode())
	assert.Empty(t, h.Requests())
}

func TestNotesUpdate(t *testing.T) {
	h := newRouteHandler().On(http.MethodPut, "notes/update/4", okResponse(map[string]any{"id": 4, "text": "new"}))
	setupTestEnv(t, h)

	res := runCLI(t, "notes", "update", "4", "new")
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "Updated note 4")
}

func TestNotesUpdate_BadID(t *testing.T) {
	h := newRouteHandler()
	setupTestEnv(t, h)

	res := runCLI(t, "notes", "update", "abc", "new")
	require.Error(t, res.Err)
	assert.Contains(t, res.Stderr, "invalid note ID")
	assert.Equal(t, exitUsage, res.ExitCode())
}

func TestNotesDelete(t *testing.T) {
	h := newRouteHandler().On(http.MethodDelete, "notes/delete/3", okResponse(nil))
	setupTestEnv(t, h)

	res := runCLI(t, "notes", "delete", "3", "--force")
	require.NoError(t, res.Err, res.Stderr)
	assert.Contains(t, res.Stdout, "Deleted note 3")

	res = runCLI(t, "notes", "delete", "3", "--yes", "--json")
	require.NoError(t, res.Err)
	assert.JSONEq(t, `{"ok":true,"id":3}`, res.Stdout)
	assert.Equal(t, 2, h.Count(http.MethodDelete, "notes/delete/3"))
}

func TestNotesCreate_DryRun(t *testing.T) {
	h := newRouteHandler()
	setupTestEnv(t, h)

	res := runCLI(t, "--dry-run", "notes", "create", "eggs")
	require.NoError(t, res.Err)
	assert.Empty(t, res.Stdout)
	assert.Contains(t, res.Stderr, "[DRY-RUN] Would send POST")
	assert.Contains(t, res.Stderr, "notes/create")
	assert.Contains(t, res.Stderr, "Bearer ***")
	assert.NotContains(t, res.Stderr, "test-token")
	assert.Empty(t, h.Requests())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a\n  b", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
