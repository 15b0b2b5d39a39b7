package services

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// PluginsBuildName is the included build that enables version updating
const PluginsBuildName = "plugins"

// VersionUpdaterService keeps documentation snippets in line with the project version
type VersionUpdaterService struct{}

// NewVersionUpdaterService creates a new version updater
func NewVersionUpdaterService() *VersionUpdaterService {
	return &VersionUpdaterService{}
}

// Enabled reports whether the plugins companion build is present
func (s *VersionUpdaterService) Enabled(project *entities.Project) bool {
	build, ok := project.IncludedBuild(PluginsBuildName)
	return ok && build.Present && len(project.VersionUpdaterFiles) > 0
}

// UpdateCoordinates rewrites every group:artifact:<version> occurrence to the given version
func UpdateCoordinates(content string, coords entities.Coordinates) string {
	re := regexp.MustCompile(regexp.QuoteMeta(coords.Group+":"+coords.Artifact+":") + `[0-9][0-9A-Za-z+\-]*(?:\.[0-9A-Za-z+\-]+)*`)
	return re.ReplaceAllLiteralString(content, coords.Group+":"+coords.Artifact+":"+coords.Version)
}

// Update rewrites the configured files and returns the ones that changed
func (s *VersionUpdaterService) Update(project *entities.Project) ([]string, error) {
	var changed []string
	for _, file := range project.VersionUpdaterFiles {
		path := file
		if !filepath.IsAbs(path) {
			path = filepath.Join(project.Dir, file)
		}

		//nolint:gosec // G304: path is listed in the project descriptor
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		updated := UpdateCoordinates(string(content), project.Coordinates)
		if updated == string(content) {
			continue
		}

		if err := os.WriteFile(path, []byte(updated), 0600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		changed = append(changed, path)
	}
	return changed, nil
}
