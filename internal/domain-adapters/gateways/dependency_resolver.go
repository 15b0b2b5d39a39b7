package gateways

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	"github.com/hivemq/sdkpub/internal/domain/interfaces"
)

// maxTransitiveDepth bounds the transitive walk below direct dependencies
const maxTransitiveDepth = 10

// LocalBuildResolver resolves dependencies substituted by an included build on disk
type LocalBuildResolver struct{}

// NewLocalBuildResolver creates a new local build resolver
func NewLocalBuildResolver() *LocalBuildResolver {
	return &LocalBuildResolver{}
}

// ResolveLocal prefers the included build's packaged jar and falls back to its source tree
func (r *LocalBuildResolver) ResolveLocal(project *entities.Project, dep entities.Dependency, build entities.IncludedBuild) (entities.ResolvedDependency, error) {
	dir := build.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(project.Dir, dir)
	}

	resolved := entities.ResolvedDependency{
		Dependency: dep,
		Version:    dep.Version,
		Local:      true,
	}

	if jar := findBuildJar(filepath.Join(dir, "build", "libs"), dep.Name, dep.Version); jar != "" {
		resolved.JarPath = jar
		return resolved, nil
	}

	src := filepath.Join(dir, "src", "main", "java")
	if info, err := os.Stat(src); err == nil && info.IsDir() {
		resolved.SourceDir = src
		return resolved, nil
	}

	return resolved, fmt.Errorf("included build %s provides neither build/libs jar nor src/main/java for %s", build.Name, dep.Key())
}

// findBuildJar returns name-version.jar when present, else the last plain jar in libsDir
func findBuildJar(libsDir, name, version string) string {
	if version != "" {
		exact := filepath.Join(libsDir, fmt.Sprintf("%s-%s.jar", name, version))
		if _, err := os.Stat(exact); err == nil {
			return exact
		}
	}

	matches, err := filepath.Glob(filepath.Join(libsDir, name+"*.jar"))
	if err != nil {
		return ""
	}
	var plain []string
	for _, m := range matches {
		base := strings.TrimSuffix(filepath.Base(m), ".jar")
		if strings.HasSuffix(base, "-sources") || strings.HasSuffix(base, "-javadoc") || strings.HasSuffix(base, "-plain") {
			continue
		}
		plain = append(plain, m)
	}
	if len(plain) == 0 {
		return ""
	}
	sort.Strings(plain)
	return plain[len(plain)-1]
}

// RemoteResolver resolves dependencies against a Maven repository
type RemoteResolver struct {
	downloader *MavenDownloader
	versions   *VersionResolver
	logger     interfaces.Logger
}

// NewRemoteResolver creates a new remote resolver
func NewRemoteResolver(downloader *MavenDownloader, logger interfaces.Logger) *RemoteResolver {
	return &RemoteResolver{
		downloader: downloader,
		versions:   NewVersionResolver(downloader),
		logger:     interfaces.OrNoOp(logger),
	}
}

// PlatformVersions returns the versions managed by the project's platform BOM
func (r *RemoteResolver) PlatformVersions(ctx context.Context, platform *entities.Platform) (map[string]string, error) {
	if platform == nil {
		return map[string]string{}, nil
	}
	bom, err := r.downloader.FetchEffectivePOM(ctx, platform.Group, platform.Name, platform.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform %s:%s:%s: %w", platform.Group, platform.Name, platform.Version, err)
	}
	return bom.ManagedVersions(), nil
}

// Resolve downloads deps and their compile-scope transitive closure. Keys in exclude are
// provided elsewhere and never fetched. Nearest declaration wins; direct dependencies come first.
func (r *RemoteResolver) Resolve(ctx context.Context, project *entities.Project, deps []entities.Dependency, exclude map[string]bool) ([]entities.ResolvedDependency, error) {
	managed, err := r.PlatformVersions(ctx, project.Platform)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(exclude))
	for k := range exclude {
		seen[k] = true
	}

	type pending struct {
		group, name, version string
		depth                int
	}
	var queue []pending
	var resolved []entities.ResolvedDependency

	for _, dep := range deps {
		if seen[dep.Key()] {
			continue
		}
		seen[dep.Key()] = true

		version := dep.Version
		if version == "" {
			version = managed[dep.Key()]
			if version == "" {
				return nil, fmt.Errorf("no version for %s and none managed by the platform", dep.Key())
			}
		}
		version, err = r.versions.Resolve(ctx, dep.Group, dep.Name, version)
		if err != nil {
			return nil, err
		}

		jar, err := r.downloader.DownloadJar(ctx, dep.Group, dep.Name, version)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s:%s: %w", dep.Key(), version, err)
		}
		r.logger.Debug("Resolved dependency", interfaces.F("dependency", dep.Key()), interfaces.F("version", version))

		resolved = append(resolved, entities.ResolvedDependency{Dependency: dep, Version: version, JarPath: jar})
		queue = append(queue, pending{dep.Group, dep.Name, version, 1})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth > maxTransitiveDepth {
			continue
		}

		pom, err := r.downloader.FetchEffectivePOM(ctx, cur.group, cur.name, cur.version)
		if err != nil {
			return nil, fmt.Errorf("failed to read POM of %s:%s:%s: %w", cur.group, cur.name, cur.version, err)
		}
		local := pom.ManagedVersions()

		for _, md := range pom.Dependencies {
			if !md.IsCompileScope() || seen[md.Key()] {
				continue
			}
			seen[md.Key()] = true

			version := md.Version
			if version == "" {
				version = local[md.Key()]
			}
			if version == "" {
				version = managed[md.Key()]
			}
			if version == "" || strings.Contains(version, "${") {
				r.logger.Warn("Skipping transitive dependency without version",
					interfaces.F("dependency", md.Key()), interfaces.F("via", cur.group+":"+cur.name))
				continue
			}
			version, err = r.versions.Resolve(ctx, md.GroupID, md.ArtifactID, version)
			if err != nil {
				return nil, err
			}

			dep := entities.Dependency{Group: md.GroupID, Name: md.ArtifactID, Version: version, Scope: "api"}
			item := entities.ResolvedDependency{Dependency: dep, Version: version, Transitive: true}
			if md.Type == "" || md.Type == "jar" {
				jar, err := r.downloader.DownloadJar(ctx, md.GroupID, md.ArtifactID, version)
				if err != nil {
					return nil, fmt.Errorf("failed to download %s:%s: %w", md.Key(), version, err)
				}
				item.JarPath = jar
			}
			resolved = append(resolved, item)
			queue = append(queue, pending{md.GroupID, md.ArtifactID, version, cur.depth + 1})
		}
	}

	return resolved, nil
}

// CompositeResolver routes each dependency to its included build when one is present and to
// the remote repository otherwise
type CompositeResolver struct {
	local  *LocalBuildResolver
	remote *RemoteResolver
	logger interfaces.Logger
}

// NewCompositeResolver creates a new composite resolver
func NewCompositeResolver(local *LocalBuildResolver, remote *RemoteResolver, logger interfaces.Logger) *CompositeResolver {
	return &CompositeResolver{local: local, remote: remote, logger: interfaces.OrNoOp(logger)}
}

// Resolve returns direct dependencies in declaration order followed by transitive ones
func (c *CompositeResolver) Resolve(ctx context.Context, project *entities.Project) ([]entities.ResolvedDependency, error) {
	localByKey := make(map[string]entities.ResolvedDependency)
	exclude := make(map[string]bool)
	var remoteDeps []entities.Dependency

	for _, dep := range project.Dependencies {
		build, ok := project.Substitution(dep)
		if !ok {
			remoteDeps = append(remoteDeps, dep)
			continue
		}
		resolved, err := c.local.ResolveLocal(project, dep, build)
		if err != nil {
			return nil, err
		}
		c.logger.Info("Using included build", interfaces.F("dependency", dep.Key()), interfaces.F("build", build.Name))
		localByKey[dep.Key()] = resolved
		exclude[dep.Key()] = true
	}

	var remote []entities.ResolvedDependency
	if len(remoteDeps) > 0 {
		var err error
		remote, err = c.remote.Resolve(ctx, project, remoteDeps, exclude)
		if err != nil {
			return nil, err
		}
	}

	remoteByKey := make(map[string]entities.ResolvedDependency, len(remote))
	var transitive []entities.ResolvedDependency
	for _, r := range remote {
		if r.Transitive {
			transitive = append(transitive, r)
			continue
		}
		remoteByKey[r.Dependency.Key()] = r
	}

	out := make([]entities.ResolvedDependency, 0, len(project.Dependencies)+len(transitive))
	for _, dep := range project.Dependencies {
		if r, ok := localByKey[dep.Key()]; ok {
			out = append(out, r)
		} else if r, ok := remoteByKey[dep.Key()]; ok {
			out = append(out, r)
		}
	}
	return append(out, transitive...), nil
}
