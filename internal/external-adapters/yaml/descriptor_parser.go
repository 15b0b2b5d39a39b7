// Package yaml provides YAML-based project descriptor parsing and repository implementations.
package yaml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hivemq/sdkpub/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// Descriptor defaults
const (
	DefaultJavaRelease  = 11
	DefaultOutputDir    = "build"
	DefaultHeaderFile   = "HEADER"
	DefaultHeaderStyle  = "SLASHSTAR_STYLE"
	DefaultRepository   = "sonatype"
	catalogAliasPrefix  = "libs."
	defaultSourceDir    = "src/main/java"
	defaultResourcesDir = "src/main/resources"
)

// yamlDescriptor represents the raw YAML structure
type yamlDescriptor struct {
	Name                string            `yaml:"name"`
	Group               string            `yaml:"group"`
	Version             string            `yaml:"version"`
	Description         string            `yaml:"description"`
	JavaRelease         int               `yaml:"java_release"`
	Metadata            yamlMetadata      `yaml:"metadata"`
	Dependencies        yamlDependencies  `yaml:"dependencies"`
	Platform            string            `yaml:"platform"`
	Sources             []string          `yaml:"sources"`
	Resources           []string          `yaml:"resources"`
	Output              string            `yaml:"output"`
	LicenseHeader       yamlLicenseHeader `yaml:"license_header"`
	IncludedBuilds      []yamlIncluded    `yaml:"included_builds"`
	VersionUpdaterFiles []string          `yaml:"version_updater_files"`
	Docs                yamlDocs          `yaml:"docs"`
	Repository          yamlRepository    `yaml:"repository"`
	Extra               map[string]any    `yaml:",inline"`
}

type yamlMetadata struct {
	ReadableName string           `yaml:"readable_name"`
	Organization yamlOrganization `yaml:"organization"`
	License      yamlLicense      `yaml:"license"`
	Developers   []yamlDeveloper  `yaml:"developers"`
	GitHub       yamlGitHub       `yaml:"github"`
}

type yamlOrganization struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type yamlDeveloper struct {
	ID       string `yaml:"id"`
	FullName string `yaml:"full_name"`
	Email    string `yaml:"email"`
}

type yamlGitHub struct {
	Org    string `yaml:"org"`
	Repo   string `yaml:"repo"`
	Issues bool   `yaml:"issues"`
}

type yamlDependencies struct {
	API            []string `yaml:"api"`
	Implementation []string `yaml:"implementation"`
}

type yamlLicenseHeader struct {
	File  string `yaml:"file"`
	Style string `yaml:"style"`
}

type yamlIncluded struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Substitutes string `yaml:"substitutes"`
}

type yamlDocs struct {
	Links bool `yaml:"links"`
}

type yamlRepository struct {
	Name             string `yaml:"name"`
	URL              string `yaml:"url"`
	SnapshotURL      string `yaml:"snapshot_url"`
	StagingProfileID string `yaml:"staging_profile_id"`
	RequireSigning   *bool  `yaml:"require_signing"`
}

// yamlLicense accepts a known shorthand ("apache2") or an explicit mapping
type yamlLicense entities.License

var knownLicenses = map[string]entities.License{
	"apache2": {ID: "Apache-2.0", Name: "Apache License, Version 2.0", URL: "https://www.apache.org/licenses/LICENSE-2.0.txt"},
	"mit":     {ID: "MIT", Name: "MIT License", URL: "https://opensource.org/licenses/MIT"},
}

// UnmarshalYAML decodes either form of the license field
func (l *yamlLicense) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		known, ok := knownLicenses[strings.ToLower(value.Value)]
		if !ok {
			return fmt.Errorf("unknown license shorthand %q", value.Value)
		}
		*l = yamlLicense(known)
		return nil
	}

	var raw struct {
		ID   string `yaml:"id"`
		Name string `yaml:"name"`
		URL  string `yaml:"url"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*l = yamlLicense{ID: raw.ID, Name: raw.Name, URL: raw.URL}
	return nil
}

// CatalogResolver looks up version catalog aliases
type CatalogResolver interface {
	Library(alias string) (entities.Dependency, error)
}

// SCMInspector infers repository facts from the working copy
type SCMInspector interface {
	GitHubSlug() (string, error)
}

// DescriptorParser parses YAML project descriptors
type DescriptorParser struct {
	baseDir string
	version string
	catalog CatalogResolver
	scm     SCMInspector
}

// ParserOption configures a DescriptorParser
type ParserOption func(*DescriptorParser)

// WithBaseDir resolves relative paths against dir
func WithBaseDir(dir string) ParserOption {
	return func(p *DescriptorParser) { p.baseDir = dir }
}

// WithVersion overrides the descriptor version
func WithVersion(version string) ParserOption {
	return func(p *DescriptorParser) { p.version = version }
}

// WithCatalog enables libs.<alias> dependency references
func WithCatalog(catalog CatalogResolver) ParserOption {
	return func(p *DescriptorParser) { p.catalog = catalog }
}

// WithSCM fills the GitHub link from the working copy when the descriptor omits it
func WithSCM(scm SCMInspector) ParserOption {
	return func(p *DescriptorParser) { p.scm = scm }
}

// NewDescriptorParser creates a new YAML parser
func NewDescriptorParser(opts ...ParserOption) *DescriptorParser {
	p := &DescriptorParser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile parses a descriptor file. The variant is the file name without extension.
func (p *DescriptorParser) ParseFile(filePath string) (*entities.Project, error) {
	//nolint:gosec // G304: filePath is a descriptor in the project directory
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	project, err := p.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filePath), err)
	}
	project.Variant = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return project, nil
}

// Parse parses YAML bytes into a Project entity
func (p *DescriptorParser) Parse(data []byte) (*entities.Project, error) {
	var desc yamlDescriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(desc.Extra) > 0 {
		keys := make([]string, 0, len(desc.Extra))
		for k := range desc.Extra {
			keys = append(keys, k)
		}
		return nil, fmt.Errorf("unknown descriptor fields: %s", strings.Join(keys, ", "))
	}

	if p.version != "" {
		desc.Version = p.version
	}

	// Validate required fields
	if desc.Name == "" {
		return nil, fmt.Errorf("descriptor must have a name")
	}
	if desc.Group == "" {
		return nil, fmt.Errorf("descriptor must have a group")
	}
	if desc.Version == "" {
		return nil, fmt.Errorf("descriptor must have a version")
	}

	vars := map[string]string{
		"name":    desc.Name,
		"group":   desc.Group,
		"version": desc.Version,
	}

	project := &entities.Project{
		Name:                desc.Name,
		Description:         strings.TrimSpace(desc.Description),
		Coordinates:         entities.Coordinates{Group: desc.Group, Artifact: desc.Name, Version: desc.Version},
		JavaRelease:         desc.JavaRelease,
		Dir:                 p.baseDir,
		SourceDirs:          p.paths(desc.Sources, defaultSourceDir),
		ResourceDirs:        p.paths(desc.Resources, defaultResourcesDir),
		OutputDir:           p.path(orDefault(desc.Output, DefaultOutputDir)),
		VersionUpdaterFiles: desc.VersionUpdaterFiles,
		Docs:                entities.DocsConfig{Links: desc.Docs.Links},
	}
	if project.JavaRelease == 0 {
		project.JavaRelease = DefaultJavaRelease
	}

	project.Metadata = p.convertMetadata(desc.Metadata)

	var err error
	if project.Dependencies, err = p.convertDependencies(desc.Dependencies, vars); err != nil {
		return nil, err
	}
	if desc.Platform != "" {
		dep, err := parseNotation(expand(desc.Platform, vars), "platform")
		if err != nil {
			return nil, err
		}
		if dep.Version == "" {
			return nil, fmt.Errorf("platform %s must declare a version", dep.Key())
		}
		project.Platform = &entities.Platform{Group: dep.Group, Name: dep.Name, Version: dep.Version}
	}

	if project.License, err = p.convertLicenseHeader(desc.LicenseHeader); err != nil {
		return nil, err
	}
	project.IncludedBuilds = p.convertIncludedBuilds(desc.IncludedBuilds)
	project.Repository = convertRepository(desc.Repository)

	return project, nil
}

func (p *DescriptorParser) convertMetadata(ym yamlMetadata) entities.Metadata {
	meta := entities.Metadata{
		ReadableName: ym.ReadableName,
		Organization: entities.Organization{Name: ym.Organization.Name, URL: ym.Organization.URL},
		License:      entities.License(ym.License),
		GitHub:       entities.GitHubLink{Org: ym.GitHub.Org, Repo: ym.GitHub.Repo, Issues: ym.GitHub.Issues},
	}
	for _, d := range ym.Developers {
		meta.Developers = append(meta.Developers, entities.Developer{ID: d.ID, FullName: d.FullName, Email: d.Email})
	}

	if meta.GitHub.Slug() == "" && p.scm != nil {
		slug, err := p.scm.GitHubSlug()
		if err == nil && slug != "" {
			org, repo, _ := strings.Cut(slug, "/")
			if meta.GitHub.Org == "" {
				meta.GitHub.Org = org
			}
			if meta.GitHub.Repo == "" {
				meta.GitHub.Repo = repo
			}
		}
	}
	return meta
}

func (p *DescriptorParser) convertDependencies(yd yamlDependencies, vars map[string]string) ([]entities.Dependency, error) {
	var deps []entities.Dependency
	for _, group := range []struct {
		scope     string
		notations []string
	}{
		{"api", yd.API},
		{"implementation", yd.Implementation},
	} {
		for _, notation := range group.notations {
			dep, err := p.resolveNotation(expand(notation, vars), group.scope)
			if err != nil {
				return nil, err
			}
			deps = append(deps, dep)
		}
	}
	return deps, nil
}

// resolveNotation accepts "group:name[:version]" or a catalog alias "libs.<alias>"
func (p *DescriptorParser) resolveNotation(notation, scope string) (entities.Dependency, error) {
	alias, isAlias := strings.CutPrefix(notation, catalogAliasPrefix)
	if !isAlias {
		return parseNotation(notation, scope)
	}
	if p.catalog == nil {
		return entities.Dependency{}, fmt.Errorf("dependency %s references the version catalog, but no catalog was found", notation)
	}
	dep, err := p.catalog.Library(alias)
	if err != nil {
		return entities.Dependency{}, fmt.Errorf("dependency %s: %w", notation, err)
	}
	dep.Scope = scope
	return dep, nil
}

func parseNotation(notation, scope string) (entities.Dependency, error) {
	parts := strings.Split(strings.TrimSpace(notation), ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return entities.Dependency{}, fmt.Errorf("invalid dependency notation %q: expected group:name[:version]", notation)
	}
	dep := entities.Dependency{Group: parts[0], Name: parts[1], Scope: scope}
	if len(parts) == 3 {
		dep.Version = parts[2]
	}
	if strings.Contains(dep.Version, "${") {
		return entities.Dependency{}, fmt.Errorf("unresolved variable in dependency %q", notation)
	}
	return dep, nil
}

func (p *DescriptorParser) convertLicenseHeader(yh yamlLicenseHeader) (entities.LicenseHeader, error) {
	header := entities.LicenseHeader{
		File:  p.path(orDefault(yh.File, DefaultHeaderFile)),
		Style: orDefault(yh.Style, DefaultHeaderStyle),
	}

	//nolint:gosec // G304: header file is configured in the descriptor
	data, err := os.ReadFile(header.File)
	switch {
	case err == nil:
		header.Text = string(data)
	case os.IsNotExist(err) && yh.File == "":
		// no default HEADER file; the license gate reports it
	default:
		return header, fmt.Errorf("failed to read license header: %w", err)
	}
	return header, nil
}

// convertIncludedBuilds evaluates presence once, at load time
func (p *DescriptorParser) convertIncludedBuilds(builds []yamlIncluded) []entities.IncludedBuild {
	out := make([]entities.IncludedBuild, 0, len(builds))
	for _, b := range builds {
		path := p.path(b.Path)
		info, err := os.Stat(path)
		name := b.Name
		if name == "" {
			name = filepath.Base(path)
		}
		out = append(out, entities.IncludedBuild{
			Name:        name,
			Path:        path,
			Substitutes: b.Substitutes,
			Present:     err == nil && info.IsDir(),
		})
	}
	return out
}

func convertRepository(yr yamlRepository) entities.RepositoryConfig {
	repo := entities.RepositoryConfig{
		Name:             orDefault(yr.Name, DefaultRepository),
		URL:              yr.URL,
		SnapshotURL:      yr.SnapshotURL,
		StagingProfileID: yr.StagingProfileID,
		RequireSigning:   true,
	}
	if yr.RequireSigning != nil {
		repo.RequireSigning = *yr.RequireSigning
	}
	return repo
}

func (p *DescriptorParser) path(rel string) string {
	if filepath.IsAbs(rel) || p.baseDir == "" {
		return rel
	}
	return filepath.Join(p.baseDir, rel)
}

func (p *DescriptorParser) paths(rels []string, fallback string) []string {
	if len(rels) == 0 {
		rels = []string{fallback}
	}
	out := make([]string, 0, len(rels))
	for _, r := range rels {
		out = append(out, p.path(r))
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// expand replaces ${name}, ${group} and ${version}
func expand(s string, vars map[string]string) string {
	return os.Expand(s, func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		return "${" + key + "}"
	})
}
