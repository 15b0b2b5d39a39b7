package gateways

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

// DefaultJavaRelease is used when the descriptor does not pin a release
const DefaultJavaRelease = 11

// JavacCompiler compiles project sources with javac
type JavacCompiler struct {
	executor *ToolchainExecutor
}

// NewJavacCompiler creates a new javac compiler
func NewJavacCompiler(executor *ToolchainExecutor) *JavacCompiler {
	return &JavacCompiler{executor: executor}
}

// Compile compiles every source root into classesDir. The directory is recreated on each run.
func (c *JavacCompiler) Compile(ctx context.Context, project *entities.Project, deps []entities.ResolvedDependency, classesDir string) error {
	sources, err := FindJavaSources(project.SourceDirs)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no Java sources found in %s", strings.Join(project.SourceDirs, ", "))
	}

	if err := os.RemoveAll(classesDir); err != nil {
		return fmt.Errorf("failed to clean %s: %w", classesDir, err)
	}
	if err := os.MkdirAll(classesDir, 0750); err != nil {
		return fmt.Errorf("failed to create %s: %w", classesDir, err)
	}

	args := []string{
		"-d", classesDir,
		"--release", strconv.Itoa(javaRelease(project)),
		"-encoding", "UTF-8",
		"-g",
	}
	args = append(args, classpathArgs(deps, true)...)
	args = append(args, sources...)

	result := c.executor.Run(ctx, ToolConfig{
		Tool:        "javac",
		Args:        args,
		WorkingDir:  project.Dir,
		Description: "compile " + project.Coordinates.String(),
	})
	if !result.Success {
		return result.Failure("javac")
	}
	return nil
}

// FindJavaSources lists .java files below the given roots in a stable order
func FindJavaSources(roots []string) ([]string, error) {
	var sources []string
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".java") {
				sources = append(sources, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", root, err)
		}
	}
	sort.Strings(sources)
	return sources, nil
}

// classpathArgs builds -classpath and, for included builds without a jar, --source-path.
// With implicitNone javac does not emit classes found only on the source path.
func classpathArgs(deps []entities.ResolvedDependency, implicitNone bool) []string {
	var jars, sourceDirs []string
	for _, d := range deps {
		switch {
		case d.JarPath != "":
			jars = append(jars, d.JarPath)
		case d.SourceDir != "":
			sourceDirs = append(sourceDirs, d.SourceDir)
		}
	}

	var args []string
	if len(jars) > 0 {
		args = append(args, "-classpath", strings.Join(jars, string(os.PathListSeparator)))
	}
	if len(sourceDirs) > 0 {
		args = append(args, "--source-path", strings.Join(sourceDirs, string(os.PathListSeparator)))
		if implicitNone {
			args = append(args, "-implicit:none")
		}
	}
	return args
}

func javaRelease(project *entities.Project) int {
	if project.JavaRelease > 0 {
		return project.JavaRelease
	}
	return DefaultJavaRelease
}
