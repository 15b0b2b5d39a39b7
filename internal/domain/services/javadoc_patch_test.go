package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSearchScript = `$("#search").autocomplete({
    select: function(event, ui) {
        if (ui.item.p == item.l) {
            url += "module-summary.html";
        }
    }
});
`

func TestPatchSearchScript(t *testing.T) {
	once := PatchSearchScript(testSearchScript)
	assert.Contains(t, once, "if (item.m && ui.item.p == item.l) {")
	assert.NotContains(t, once, "        if (ui.item.p == item.l) {")

	assert.Equal(t, once, PatchSearchScript(once), "patch must be idempotent")
	assert.Equal(t, "var x = 1;\n", PatchSearchScript("var x = 1;\n"))
}

func TestPatchJavadocSearch(t *testing.T) {
	dir := t.TempDir()

	changed, err := PatchJavadocSearch(dir)
	require.NoError(t, err)
	assert.False(t, changed, "missing search.js is a no-op")

	path := filepath.Join(dir, "search.js")
	require.NoError(t, os.WriteFile(path, []byte(testSearchScript), 0644))

	changed, err = PatchJavadocSearch(dir)
	require.NoError(t, err)
	assert.True(t, changed)

	//nolint:gosec // G304: test file
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err = PatchJavadocSearch(dir)
	require.NoError(t, err)
	assert.False(t, changed)

	//nolint:gosec // G304: test file
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
