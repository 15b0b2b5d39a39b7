package yaml

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// DescriptorGlob matches the descriptor variants of a project directory
const DescriptorGlob = "sdk*.yml"

// ProjectRepository implements repositories.ProjectRepository using YAML descriptors
type ProjectRepository struct {
	projectDir string
	parser     *DescriptorParser
}

// NewProjectRepository creates a repository over the descriptors in projectDir
func NewProjectRepository(projectDir string, opts ...ParserOption) *ProjectRepository {
	return &ProjectRepository{
		projectDir: projectDir,
		parser:     NewDescriptorParser(append([]ParserOption{WithBaseDir(projectDir)}, opts...)...),
	}
}

// GetProject loads a descriptor variant by name
func (r *ProjectRepository) GetProject(_ context.Context, name string) (*entities.Project, error) {
	for _, ext := range []string{".yml", ".yaml"} {
		filePath := filepath.Join(r.projectDir, name+ext)
		if _, err := os.Stat(filePath); err == nil {
			return r.parser.ParseFile(filePath)
		}
	}
	return nil, fmt.Errorf("project descriptor not found: %s", name)
}

// ListProjects loads every descriptor variant. A variant that fails to parse fails the listing.
func (r *ProjectRepository) ListProjects(_ context.Context) ([]*entities.Project, error) {
	matches, err := filepath.Glob(filepath.Join(r.projectDir, DescriptorGlob))
	if err != nil {
		return nil, fmt.Errorf("failed to list descriptors: %w", err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no descriptors matching %s in %s", DescriptorGlob, r.projectDir)
	}
	sort.Strings(matches)

	projects := make([]*entities.Project, 0, len(matches))
	for _, filePath := range matches {
		project, err := r.parser.ParseFile(filePath)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}
