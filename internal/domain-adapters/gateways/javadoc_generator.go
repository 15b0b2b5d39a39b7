package gateways

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// DefaultJavadocLinkBase hosts the published javadoc of Maven Central artifacts
const DefaultJavadocLinkBase = "https://javadoc.io/doc/"

// JavadocGenerator renders API documentation with the javadoc tool
type JavadocGenerator struct {
	executor *ToolchainExecutor
	linkBase string
}

// NewJavadocGenerator creates a new javadoc generator
func NewJavadocGenerator(executor *ToolchainExecutor) *JavadocGenerator {
	return &JavadocGenerator{executor: executor, linkBase: DefaultJavadocLinkBase}
}

// Generate writes the documentation of the project sources into docsDir
func (g *JavadocGenerator) Generate(ctx context.Context, project *entities.Project, deps []entities.ResolvedDependency, docsDir string) error {
	sources, err := FindJavaSources(project.SourceDirs)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no Java sources to document")
	}

	if err := os.RemoveAll(docsDir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", docsDir, err)
	}
	if err := os.MkdirAll(docsDir, 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", docsDir, err)
	}

	title := project.JavadocTitle()
	args := []string{
		"-d", docsDir,
		"--release", strconv.Itoa(javaRelease(project)),
		"-encoding", "UTF-8",
		"-docencoding", "UTF-8",
		"-charset", "UTF-8",
		"-doctitle", title,
		"-windowtitle", title,
		"-quiet",
	}
	args = append(args, classpathArgs(deps, false)...)
	if project.Docs.Links {
		args = append(args, g.LinkArgs(deps)...)
	}
	args = append(args, sources...)

	result := g.executor.Run(ctx, ToolConfig{
		Tool:        "javadoc",
		Args:        args,
		WorkingDir:  project.Dir,
		Description: "javadoc " + project.Coordinates.String(),
	})
	if !result.Success {
		return result.Failure("javadoc")
	}
	return nil
}

// LinkArgs links every remote direct dependency to its javadoc.io page
func (g *JavadocGenerator) LinkArgs(deps []entities.ResolvedDependency) []string {
	var args []string
	for _, d := range deps {
		if d.Local || d.Transitive || d.Version == "" {
			continue
		}
		args = append(args, "-link", fmt.Sprintf("%s%s/%s/%s/", g.linkBase, d.Dependency.Group, d.Dependency.Name, d.Version))
	}
	return args
}
