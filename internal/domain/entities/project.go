package entities

import (
	"fmt"
	"strings"
)

// Coordinates identifies a Maven artifact
type Coordinates struct {
	Group    string
	Artifact string
	Version  string
}

// String returns the group:artifact:version notation
func (c Coordinates) String() string {
	return fmt.Sprintf("%s:%s:%s", c.Group, c.Artifact, c.Version)
}

// IsSnapshot reports whether the version is a development snapshot
func (c Coordinates) IsSnapshot() bool {
	return strings.HasSuffix(c.Version, "-SNAPSHOT")
}

// RepositoryPath returns the directory of the version inside a Maven repository layout
func (c Coordinates) RepositoryPath() string {
	return fmt.Sprintf("%s/%s/%s", strings.ReplaceAll(c.Group, ".", "/"), c.Artifact, c.Version)
}

// FileName returns the file name of an artifact with the given classifier and extension
func (c Coordinates) FileName(classifier, extension string) string {
	if classifier == "" {
		return fmt.Sprintf("%s-%s.%s", c.Artifact, c.Version, extension)
	}
	return fmt.Sprintf("%s-%s-%s.%s", c.Artifact, c.Version, classifier, extension)
}

// Organization is the vendor stamped into manifests and POMs
type Organization struct {
	Name string
	URL  string
}

// License describes the project license
type License struct {
	ID   string // SPDX identifier
	Name string
	URL  string
}

// Developer is a person listed in the published POM
type Developer struct {
	ID       string
	FullName string
	Email    string
}

// GitHubLink connects the project to its GitHub repository
type GitHubLink struct {
	Org    string
	Repo   string
	Issues bool
}

// Slug returns "org/repo", or an empty string when the link is not configured
func (g GitHubLink) Slug() string {
	if g.Org == "" || g.Repo == "" {
		return ""
	}
	return g.Org + "/" + g.Repo
}

// URL returns the repository web URL
func (g GitHubLink) URL() string {
	if g.Slug() == "" {
		return ""
	}
	return "https://github.com/" + g.Slug()
}

// Metadata holds the human-readable project description
type Metadata struct {
	ReadableName string
	Organization Organization
	License      License
	Developers   []Developer
	GitHub       GitHubLink
}

// Dependency is a declared external library
type Dependency struct {
	Group   string
	Name    string
	Version string // pinned version, range ("[1.0,2.0)") or empty when inherited from the platform
	Scope   string // "api" or "implementation"
}

// Key returns group:name
func (d Dependency) Key() string {
	return d.Group + ":" + d.Name
}

// IsRange reports whether the version is a Maven version range
func (d Dependency) IsRange() bool {
	return strings.HasPrefix(d.Version, "[") || strings.HasPrefix(d.Version, "(")
}

// String returns the dependency notation
func (d Dependency) String() string {
	if d.Version == "" {
		return d.Key()
	}
	return d.Key() + ":" + d.Version
}

// ResolvedDependency is a dependency with a concrete version and a location on disk
type ResolvedDependency struct {
	Dependency Dependency
	Version    string // concrete version used for compilation
	JarPath    string
	SourceDir  string // set when substituted by an included build without a jar
	Local      bool
	Transitive bool
}

// Platform is a BOM whose dependencyManagement section supplies missing versions
type Platform struct {
	Group   string
	Name    string
	Version string
}

// IncludedBuild is a sibling source tree used in place of a published artifact or plugin
type IncludedBuild struct {
	Name        string
	Path        string
	Substitutes string // group:name the build replaces, empty for build tooling
	Present     bool   // evaluated once when the project is loaded
}

// LicenseHeader configures the header enforcement
type LicenseHeader struct {
	File  string
	Style string // only SLASHSTAR_STYLE is supported
	Text  string
}

// DocsConfig configures javadoc generation
type DocsConfig struct {
	Links bool
}

// RepositoryConfig configures the publishing target
type RepositoryConfig struct {
	Name             string
	URL              string
	SnapshotURL      string
	StagingProfileID string
	RequireSigning   bool
}

// Project is the immutable configuration record built once per pipeline run
type Project struct {
	Name                string
	Description         string
	Coordinates         Coordinates
	Metadata            Metadata
	Dependencies        []Dependency
	Platform            *Platform
	JavaRelease         int
	Dir                 string
	SourceDirs          []string
	ResourceDirs        []string
	OutputDir           string
	License             LicenseHeader
	IncludedBuilds      []IncludedBuild
	VersionUpdaterFiles []string
	Docs                DocsConfig
	Repository          RepositoryConfig
	Variant             string // descriptor file name without extension
}

// IncludedBuild returns the included build with the given name
func (p *Project) IncludedBuild(name string) (IncludedBuild, bool) {
	for _, b := range p.IncludedBuilds {
		if b.Name == name {
			return b, true
		}
	}
	return IncludedBuild{}, false
}

// Substitution returns the present included build that replaces the dependency
func (p *Project) Substitution(dep Dependency) (IncludedBuild, bool) {
	for _, b := range p.IncludedBuilds {
		if b.Present && b.Substitutes == dep.Key() {
			return b, true
		}
	}
	return IncludedBuild{}, false
}

// JavadocTitle returns the title used for generated API documentation
func (p *Project) JavadocTitle() string {
	return fmt.Sprintf("%s %s API", p.Metadata.ReadableName, p.Coordinates.Version)
}
