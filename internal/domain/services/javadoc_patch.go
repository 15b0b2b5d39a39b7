package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Javadoc 11 search.js selects the wrong entry when a member shares its name with a
// package (JDK-8215291). Guarding the comparison with item.m restores the navigation.
const (
	searchScriptName     = "search.js"
	searchPredicate      = "if (ui.item.p == item.l) {"
	searchPredicateFixed = "if (item.m && ui.item.p == item.l) {"
)

// PatchSearchScript rewrites the broken search predicate. Applying it twice yields the same output.
func PatchSearchScript(script string) string {
	lines := strings.SplitAfter(script, "\n")
	for i, line := range lines {
		lines[i] = strings.ReplaceAll(line, searchPredicate, searchPredicateFixed)
	}
	return strings.Join(lines, "")
}

// PatchJavadocSearch patches search.js inside a generated javadoc directory.
// Returns false when the directory has no search.js (newer javadoc layouts) or nothing changed.
func PatchJavadocSearch(javadocDir string) (bool, error) {
	path := filepath.Join(javadocDir, searchScriptName)

	//nolint:gosec // G304: path is inside the javadoc output directory
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	patched := PatchSearchScript(string(content))
	if patched == string(content) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}

	return true, nil
}
