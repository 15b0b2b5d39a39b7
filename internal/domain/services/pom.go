package services

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hivemq/sdkpub/internal/domain/entities"
)

type pomProject struct {
	XMLName        xml.Name            `xml:"project"`
	Xmlns          string              `xml:"xmlns,attr"`
	XmlnsXSI       string              `xml:"xmlns:xsi,attr"`
	SchemaLocation string              `xml:"xsi:schemaLocation,attr"`
	ModelVersion   string              `xml:"modelVersion"`
	GroupID        string              `xml:"groupId"`
	ArtifactID     string              `xml:"artifactId"`
	Version        string              `xml:"version"`
	Name           string              `xml:"name,omitempty"`
	Description    string              `xml:"description,omitempty"`
	URL            string              `xml:"url,omitempty"`
	Organization   *pomOrganization    `xml:"organization,omitempty"`
	Licenses       []pomLicense        `xml:"licenses>license,omitempty"`
	Developers     []pomDeveloper      `xml:"developers>developer,omitempty"`
	SCM            *pomSCM             `xml:"scm,omitempty"`
	Issues         *pomIssueManagement `xml:"issueManagement,omitempty"`
	Dependencies   []pomDependency     `xml:"dependencies>dependency,omitempty"`
}

type pomOrganization struct {
	Name string `xml:"name"`
	URL  string `xml:"url,omitempty"`
}

type pomLicense struct {
	Name string `xml:"name"`
	URL  string `xml:"url,omitempty"`
}

type pomDeveloper struct {
	ID    string `xml:"id"`
	Name  string `xml:"name"`
	Email string `xml:"email,omitempty"`
}

type pomSCM struct {
	Connection          string `xml:"connection"`
	DeveloperConnection string `xml:"developerConnection"`
	URL                 string `xml:"url"`
}

type pomIssueManagement struct {
	System string `xml:"system"`
	URL    string `xml:"url"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Scope      string `xml:"scope"`
}

// PomService renders the Maven POM of the publication
type PomService struct{}

// NewPomService creates a new POM service
func NewPomService() *PomService {
	return &PomService{}
}

// Render returns the POM document for the project and its direct dependencies
func (s *PomService) Render(project *entities.Project, resolved []entities.ResolvedDependency) ([]byte, error) {
	meta := project.Metadata
	pom := pomProject{
		Xmlns:          "http://maven.apache.org/POM/4.0.0",
		XmlnsXSI:       "http://www.w3.org/2001/XMLSchema-instance",
		SchemaLocation: "http://maven.apache.org/POM/4.0.0 https://maven.apache.org/xsd/maven-4.0.0.xsd",
		ModelVersion:   "4.0.0",
		GroupID:        project.Coordinates.Group,
		ArtifactID:     project.Coordinates.Artifact,
		Version:        project.Coordinates.Version,
		Name:           meta.ReadableName,
		Description:    project.Description,
		URL:            meta.GitHub.URL(),
	}

	if meta.Organization.Name != "" {
		pom.Organization = &pomOrganization{Name: meta.Organization.Name, URL: meta.Organization.URL}
	}
	if meta.License.Name != "" {
		pom.Licenses = []pomLicense{{Name: meta.License.Name, URL: meta.License.URL}}
	}
	for _, d := range meta.Developers {
		pom.Developers = append(pom.Developers, pomDeveloper{ID: d.ID, Name: d.FullName, Email: d.Email})
	}
	if slug := meta.GitHub.Slug(); slug != "" {
		pom.SCM = &pomSCM{
			Connection:          fmt.Sprintf("scm:git:https://github.com/%s.git", slug),
			DeveloperConnection: fmt.Sprintf("scm:git:ssh://git@github.com/%s.git", slug),
			URL:                 meta.GitHub.URL(),
		}
		if meta.GitHub.Issues {
			pom.Issues = &pomIssueManagement{System: "GitHub Issues", URL: meta.GitHub.URL() + "/issues"}
		}
	}

	for _, r := range resolved {
		if r.Transitive {
			continue
		}
		version := r.Dependency.Version
		if version == "" {
			version = r.Version
		}
		scope := "compile"
		if r.Dependency.Scope == "implementation" {
			scope = "runtime"
		}
		pom.Dependencies = append(pom.Dependencies, pomDependency{
			GroupID:    r.Dependency.Group,
			ArtifactID: r.Dependency.Name,
			Version:    version,
			Scope:      scope,
		})
	}

	out, err := xml.MarshalIndent(pom, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal POM: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// WritePOM renders the POM into outputDir and returns it as an artifact
func (s *PomService) WritePOM(project *entities.Project, resolved []entities.ResolvedDependency, outputDir string) (*entities.Artifact, error) {
	data, err := s.Render(project, resolved)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	name := project.Coordinates.FileName("", "pom")
	path := filepath.Join(outputDir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write POM: %w", err)
	}

	return &entities.Artifact{
		Name:      name,
		Version:   project.Coordinates.Version,
		Extension: "pom",
		Path:      path,
		Type:      entities.ArtifactTypePOM,
	}, nil
}
